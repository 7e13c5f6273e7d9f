package descriptor

import (
	"net/url"

	"agentbuilder/internal/domain"
)

// Normalize returns a copy of doc that the platform accepts: 3.1 documents
// are downgraded to the 3.0.2 dialect and a server entry is synthesized from
// sourceURL when the document has no servers key.
func Normalize(doc Document, sourceURL string) Document {
	out := Clone(doc)
	if out == nil {
		out = Document{}
	}
	if NeedsDowngrade(Version(out)) {
		out = Downgrade(out)
	}
	ensureServers(out, sourceURL)
	return out
}

// Downgrade rewrites 3.1-only schema constructs into their 3.0 equivalents
// and stamps the target version. doc is modified in place and returned.
func Downgrade(doc Document) Document {
	doc["openapi"] = domain.TargetDescriptorVersion

	if components, ok := doc["components"].(map[string]any); ok {
		if schemas, ok := components["schemas"].(map[string]any); ok {
			for _, schema := range schemas {
				fixSchema(schema)
			}
		}
	}

	paths, _ := doc["paths"].(map[string]any)
	for _, item := range paths {
		pathItem, ok := item.(map[string]any)
		if !ok {
			continue
		}
		fixParameters(pathItem["parameters"])
		for key, op := range pathItem {
			if !IsMethodKey(key) {
				continue
			}
			operation, ok := op.(map[string]any)
			if !ok {
				continue
			}
			fixOperation(operation)
		}
	}
	return doc
}

func fixOperation(operation map[string]any) {
	fixParameters(operation["parameters"])
	if body, ok := operation["requestBody"].(map[string]any); ok {
		fixContent(body["content"])
	}
	responses, _ := operation["responses"].(map[string]any)
	for _, resp := range responses {
		if response, ok := resp.(map[string]any); ok {
			fixContent(response["content"])
		}
	}
}

func fixParameters(raw any) {
	params, _ := raw.([]any)
	for _, p := range params {
		if param, ok := p.(map[string]any); ok {
			fixSchema(param["schema"])
		}
	}
}

func fixContent(raw any) {
	content, _ := raw.(map[string]any)
	for _, media := range content {
		if mediaType, ok := media.(map[string]any); ok {
			fixSchema(mediaType["schema"])
		}
	}
}

func fixSchema(raw any) {
	schema, ok := raw.(map[string]any)
	if !ok {
		return
	}

	collapseNullableUnion(schema, "anyOf")
	collapseNullableUnion(schema, "oneOf")
	collapseTypeArray(schema)

	if all, ok := schema["allOf"].([]any); ok && len(all) == 1 {
		delete(schema, "allOf")
		if inner, ok := all[0].(map[string]any); ok {
			for key, value := range inner {
				if _, exists := schema[key]; !exists {
					schema[key] = value
				}
			}
		}
	}

	if value, ok := schema["const"]; ok {
		delete(schema, "const")
		if _, exists := schema["enum"]; !exists {
			schema["enum"] = []any{value}
		}
	}
	if examples, ok := schema["examples"].([]any); ok {
		delete(schema, "examples")
		if _, exists := schema["example"]; !exists && len(examples) > 0 {
			schema["example"] = examples[0]
		}
	}

	if props, ok := schema["properties"].(map[string]any); ok {
		for _, prop := range props {
			fixSchema(prop)
		}
	}
	fixSchema(schema["items"])
	if extra, ok := schema["additionalProperties"].(map[string]any); ok {
		fixSchema(extra)
	}
	for _, key := range []string{"anyOf", "oneOf", "allOf"} {
		branches, _ := schema[key].([]any)
		for _, branch := range branches {
			fixSchema(branch)
		}
	}
}

// collapseNullableUnion turns {key: [X, {type: null}]} into X + nullable and
// a union of only null branches into a nullable string.
func collapseNullableUnion(schema map[string]any, key string) {
	branches, ok := schema[key].([]any)
	if !ok {
		return
	}
	nonNull := make([]any, 0, len(branches))
	for _, branch := range branches {
		if !isNullSchema(branch) {
			nonNull = append(nonNull, branch)
		}
	}
	if len(nonNull) == len(branches) {
		return
	}
	switch len(nonNull) {
	case 0:
		delete(schema, key)
		schema["type"] = "string"
		schema["nullable"] = true
	case 1:
		delete(schema, key)
		if inner, ok := nonNull[0].(map[string]any); ok {
			for k, v := range inner {
				schema[k] = v
			}
		}
		schema["nullable"] = true
	}
}

func collapseTypeArray(schema map[string]any) {
	types, ok := schema["type"].([]any)
	if !ok {
		return
	}
	nonNull := make([]any, 0, len(types))
	for _, t := range types {
		if name, _ := t.(string); name != "null" {
			nonNull = append(nonNull, t)
		}
	}
	hasNull := len(nonNull) < len(types)
	switch {
	case len(nonNull) == 0:
		schema["type"] = "string"
	case len(nonNull) == 1:
		schema["type"] = nonNull[0]
	default:
		return
	}
	if hasNull {
		schema["nullable"] = true
	}
}

func isNullSchema(raw any) bool {
	schema, ok := raw.(map[string]any)
	if !ok {
		return false
	}
	t, _ := schema["type"].(string)
	return t == "null"
}

// ensureServers adds a server derived from sourceURL only when the document
// has no servers key at all. An explicit empty list is kept.
func ensureServers(doc Document, sourceURL string) {
	if _, ok := doc["servers"]; ok {
		return
	}
	parsed, err := url.Parse(sourceURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return
	}
	doc["servers"] = []any{
		map[string]any{"url": parsed.Scheme + "://" + parsed.Host},
	}
}
