package loam

// NodeMetadata is the frontmatter of one node document.
//
// A document may omit category when it lives in a directory named after it.
// Pool entries are either plain labels or {id, label} maps.
type NodeMetadata struct {
	ID            string   `json:"id" mapstructure:"id"`
	Label         string   `json:"label" mapstructure:"label"`
	Category      string   `json:"category" mapstructure:"category"`
	CategoryLabel string   `json:"category_label" mapstructure:"category_label"`
	Children      []string `json:"children" mapstructure:"children"`
	Pool          []any    `json:"pool" mapstructure:"pool"`
}
