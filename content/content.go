// Package content embeds the default world shipped with the binary.
package content

import (
	_ "embed"

	"github.com/aretw0/quest/pkg/adapters/yaml"
	"github.com/aretw0/quest/pkg/graph"
)

//go:embed eldoria.yaml
var eldoria []byte

// Eldoria returns the raw YAML of the default world.
func Eldoria() []byte {
	return eldoria
}

// Loader returns a graph loader over the default world.
func Loader() *yaml.Loader {
	return yaml.NewFromBytes(eldoria)
}

// Default builds the default world.
func Default() (*graph.Graph, error) {
	return yaml.Parse(eldoria)
}
