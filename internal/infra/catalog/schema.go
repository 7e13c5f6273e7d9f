package catalog

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"

	"agentbuilder/internal/domain"
)

// ParamSchema exports the deploy parameters of a tool as a JSON Schema object.
func (r *Registry) ParamSchema(id string) (*jsonschema.Schema, error) {
	entry, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return DeployParamSchema(entry), nil
}

func DeployParamSchema(entry domain.ToolEntry) *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Type:        "object",
		Title:       entry.Name,
		Description: entry.Description,
		Properties:  make(map[string]*jsonschema.Schema, len(entry.DeployParams)),
	}
	for _, name := range entry.DeployParams.Names() {
		spec := entry.DeployParams[name]
		prop := &jsonschema.Schema{
			Type:        schemaType(spec.Default),
			Title:       entry.DeployParams.Label(name),
			Description: spec.Description,
		}
		if prop.Type == "array" {
			prop.Items = &jsonschema.Schema{Type: "string"}
		}
		if spec.Default != nil {
			if raw, err := json.Marshal(spec.Default); err == nil {
				prop.Default = raw
			}
		}
		schema.Properties[name] = prop
		if spec.Required {
			schema.Required = append(schema.Required, name)
		}
	}
	return schema
}

func schemaType(value any) string {
	switch value.(type) {
	case []any, []string:
		return "array"
	case bool:
		return "boolean"
	case float64, json.Number, int:
		return "number"
	default:
		return "string"
	}
}
