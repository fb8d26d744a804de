package node

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Schema describes the node inputs as a JSON Schema object, including
// defaults, numeric bounds and COMBO choices.
func (n Node) Schema() (*jsonschema.Schema, error) {
	schema := &jsonschema.Schema{
		Type:        "object",
		Title:       n.Title,
		Description: n.Description,
		Properties:  make(map[string]*jsonschema.Schema, len(n.Inputs)),
	}

	for _, s := range n.Inputs {
		prop, err := s.schema()
		if err != nil {
			return nil, fmt.Errorf("node %s: schema: %w", n.Name, err)
		}
		schema.Properties[s.Name] = prop

		if s.Required && s.defaultValue() == nil {
			schema.Required = append(schema.Required, s.Name)
		}
	}

	return schema, nil
}

// RawSchema returns Schema encoded as JSON.
func (n Node) RawSchema() (json.RawMessage, error) {
	schema, err := n.Schema()
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("node %s: schema: %w", n.Name, err)
	}

	return data, nil
}

func (s Slot) schema() (*jsonschema.Schema, error) {
	prop := &jsonschema.Schema{Description: s.Description}

	switch s.Type {
	case Int:
		prop.Type = "integer"
		if s.IntMin != nil {
			prop.Minimum = Ptr(float64(*s.IntMin))
		}
		if s.IntMax != nil {
			prop.Maximum = Ptr(float64(*s.IntMax))
		}
	case Float:
		prop.Type = "number"
		prop.Minimum = s.Min
		prop.Maximum = s.Max
	case String:
		prop.Type = "string"
	case Boolean:
		prop.Type = "boolean"
	case Combo:
		prop.Type = "string"
		for _, c := range s.Choices {
			prop.Enum = append(prop.Enum, c)
		}
	case SamplerConfig:
		prop.Type = "array"
	case Any:
		// An empty schema encodes as the boolean true; keep it an object.
		if prop.Description == "" {
			prop.Description = "any value"
		}
	default:
		return nil, fmt.Errorf("slot %s: unknown type %q", s.Name, s.Type)
	}

	if def := s.defaultValue(); def != nil {
		data, err := json.Marshal(def)
		if err != nil {
			return nil, fmt.Errorf("slot %s: default: %w", s.Name, err)
		}
		prop.Default = data
	}

	return prop, nil
}
