package docs

import (
	"encoding/json"
	"fmt"

	"github.com/go-openapi/spec"
	"gopkg.in/yaml.v3"

	"github.com/simp-lee/flyingpig/internal/urls"
)

// Document is a built schema together with its serialized forms.
type Document struct {
	Swagger *spec.Swagger
	JSON    []byte
	YAML    []byte
}

// NewDocument builds and serializes the schema for routes.
func NewDocument(routes []urls.Route, info Info) (*Document, error) {
	sw := Build(routes, info)
	data, err := json.MarshalIndent(sw, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema json: %w", err)
	}
	// Round trip through a generic value so YAML keys follow the json tags.
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("decode schema json: %w", err)
	}
	out, err := yaml.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("marshal schema yaml: %w", err)
	}
	return &Document{Swagger: sw, JSON: data, YAML: out}, nil
}
