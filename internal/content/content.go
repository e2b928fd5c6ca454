// Package content embeds the sample category tree.
package content

import (
	_ "embed"

	"github.com/aretw0/letluck/pkg/tree"
)

//go:embed sample.yaml
var sample []byte

// Sample returns the raw sample document.
func Sample() []byte {
	return sample
}

// SampleTree parses the sample document.
func SampleTree() (*tree.Tree, error) {
	return tree.Parse(sample)
}
