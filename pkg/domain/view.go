package domain

// TileKind tells the renderer what a tile stands for.
type TileKind string

const (
	TileCategory TileKind = "category"
	TileNode     TileKind = "node"
	TileItem     TileKind = "item"
)

// Tile is one selectable cell of the grid.
type Tile struct {
	Kind  TileKind `json:"kind"`
	ID    string   `json:"id"`
	Label string   `json:"label"`
}

// ResultCard is the committed outcome shown next to the grid.
// A pending winner is never shown: it would spoil the reveal.
type ResultCard struct {
	ItemID string `json:"item_id"`
	Label  string `json:"label"`
}

// Controls tells the renderer which buttons are meaningful.
type Controls struct {
	CanBack    bool `json:"can_back"`
	ShowHome   bool `json:"show_home"`
	ShowReplay bool `json:"show_replay"`
	CanDecide  bool `json:"can_decide"`
}

// View is a structural representation of what the host should render.
type View struct {
	Title       string      `json:"title"`
	Breadcrumbs []Crumb     `json:"breadcrumbs"`
	Tiles       []Tile      `json:"tiles"`
	Result      *ResultCard `json:"result,omitempty"`
	Controls    Controls    `json:"controls"`
}

// TileIDs returns the ids of the tiles in display order.
func (v View) TileIDs() []string {
	ids := make([]string, len(v.Tiles))
	for i, t := range v.Tiles {
		ids[i] = t.ID
	}
	return ids
}
