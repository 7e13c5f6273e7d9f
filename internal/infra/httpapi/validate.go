package httpapi

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"

	"agentbuilder/internal/domain"
)

// Validator checks request bodies against schemas reflected from Go types.
type Validator struct {
	reflector *jsonschema.Reflector

	mu      sync.Mutex
	schemas map[reflect.Type]*gojsonschema.Schema
}

func NewValidator() *Validator {
	return &Validator{
		reflector: &jsonschema.Reflector{
			DoNotReference:             true,
			ExpandedStruct:             true,
			AllowAdditionalProperties:  true,
			RequiredFromJSONSchemaTags: true,
		},
		schemas: make(map[reflect.Type]*gojsonschema.Schema),
	}
}

// Validate checks body against the schema of target's type.
func (v *Validator) Validate(body []byte, target any) error {
	const op = "httpapi.validate"

	schema, err := v.schemaFor(target)
	if err != nil {
		return domain.Wrap(domain.CodeInternal, op, err)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return domain.E(domain.CodeInvalidArgument, op, fmt.Sprintf("invalid JSON body: %v", err), err)
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return domain.E(domain.CodeInvalidArgument, op, strings.Join(problems, "; "), nil)
}

func (v *Validator) schemaFor(target any) (*gojsonschema.Schema, error) {
	typ := reflect.TypeOf(target)
	v.mu.Lock()
	defer v.mu.Unlock()

	if schema, ok := v.schemas[typ]; ok {
		return schema, nil
	}
	reflected := v.reflector.Reflect(target)
	// Draft and id markers are dropped so the schema loads without remote lookups.
	reflected.Version = ""
	reflected.ID = ""
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(reflected))
	if err != nil {
		return nil, fmt.Errorf("compile schema for %s: %w", typ, err)
	}
	v.schemas[typ] = schema
	return schema, nil
}
