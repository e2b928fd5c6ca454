package tree

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/aretw0/letluck/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Document is the on-disk shape of a content file. JSON files use the same keys.
//
//	categories:
//	  - id: food
//	    label: Food
//	    nodes:
//	      - id: food_root
//	        children: [pasta]
//	      - id: pasta
//	        pool: [Carbonara, {id: pesto, label: Pesto}]
type Document struct {
	Categories []CategoryDocument `mapstructure:"categories"`
}

// CategoryDocument declares one category.
type CategoryDocument struct {
	ID    string         `mapstructure:"id"`
	Label string         `mapstructure:"label"`
	Nodes []NodeDocument `mapstructure:"nodes"`
}

// NodeDocument declares one node. The kind is derived from children and pool.
type NodeDocument struct {
	ID       string        `mapstructure:"id"`
	Label    string        `mapstructure:"label"`
	Children []string      `mapstructure:"children"`
	Pool     []domain.Item `mapstructure:"pool"`
}

// ToNode converts the document into a tagged domain node.
func (d NodeDocument) ToNode() domain.Node {
	label := d.Label
	if label == "" {
		label = d.ID
	}
	return domain.ClassifyNode(d.ID, label, d.Children, d.Pool)
}

// Parse decodes YAML (or JSON) content into a Tree.
func Parse(data []byte) (*Tree, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse tree document: %w", err)
	}
	doc, err := DecodeDocument(raw)
	if err != nil {
		return nil, err
	}
	return doc.Build()
}

// DecodeDocument maps a generic value (as produced by a YAML or JSON decoder) onto a Document.
func DecodeDocument(raw map[string]any) (Document, error) {
	var doc Document
	if err := Decode(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to decode tree document: %w", err)
	}
	return doc, nil
}

// Decode runs mapstructure with the hooks content files rely on:
// a bare string pool entry becomes an Item whose id is a slug of the label.
func Decode(input any, output any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       itemFromString,
		WeaklyTypedInput: true,
		Result:           output,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

var itemType = reflect.TypeOf(domain.Item{})

func itemFromString(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != itemType {
		return data, nil
	}
	label := data.(string)
	return domain.Item{ID: Slug(label), Label: label}, nil
}

// Build turns the document into a Tree.
func (d Document) Build() (*Tree, error) {
	t := New()
	for _, c := range d.Categories {
		nodes := make([]domain.Node, 0, len(c.Nodes))
		for _, n := range c.Nodes {
			nodes = append(nodes, n.ToNode())
		}
		if err := t.AddCategory(domain.Category{ID: c.ID, Label: c.Label}, nodes...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Slug lowercases s and joins its alphanumeric runs with dashes.
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
