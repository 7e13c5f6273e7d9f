package descriptor

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Document is a decoded OpenAPI descriptor.
type Document = map[string]any

// methodKeys are the path-item keys that hold operations.
var methodKeys = map[string]struct{}{
	"get":     {},
	"post":    {},
	"put":     {},
	"patch":   {},
	"delete":  {},
	"options": {},
	"head":    {},
}

// IsMethodKey reports whether key names an HTTP operation on a path item.
func IsMethodKey(key string) bool {
	_, ok := methodKeys[key]
	return ok
}

// Version returns the declared dialect version tag.
func Version(doc Document) string {
	v, _ := doc["openapi"].(string)
	return v
}

// Title returns info.title when present.
func Title(doc Document) string {
	info, _ := doc["info"].(map[string]any)
	title, _ := info["title"].(string)
	return title
}

// NeedsDowngrade reports whether version belongs to the 3.1 dialect.
func NeedsDowngrade(version string) bool {
	version = strings.TrimSpace(version)
	if version == "" {
		return false
	}
	canonical := "v" + strings.TrimPrefix(version, "v")
	if semver.IsValid(canonical) {
		return semver.MajorMinor(canonical) == "v3.1"
	}
	return strings.HasPrefix(version, "3.1")
}

// CountOperations counts method entries across all paths.
func CountOperations(doc Document) int {
	paths, _ := doc["paths"].(map[string]any)
	count := 0
	for _, item := range paths {
		pathItem, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for key := range pathItem {
			if IsMethodKey(key) {
				count++
			}
		}
	}
	return count
}

func clone(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = clone(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = clone(item)
		}
		return out
	default:
		return v
	}
}

// Clone returns a deep copy of doc.
func Clone(doc Document) Document {
	if doc == nil {
		return nil
	}
	return clone(doc).(map[string]any)
}
