package descriptor

// FilterOperations keeps only operations whose operationId is in allowed.
// Paths left without any operation are dropped. An empty allow-list keeps
// everything.
func FilterOperations(doc Document, allowed []string) Document {
	if len(allowed) == 0 {
		return doc
	}
	allow := make(map[string]struct{}, len(allowed))
	for _, id := range allowed {
		allow[id] = struct{}{}
	}

	out := make(Document, len(doc))
	for key, value := range doc {
		out[key] = value
	}

	paths, _ := doc["paths"].(map[string]any)
	filtered := make(map[string]any, len(paths))
	for path, item := range paths {
		pathItem, ok := item.(map[string]any)
		if !ok {
			continue
		}
		kept := make(map[string]any, len(pathItem))
		methods := 0
		for key, value := range pathItem {
			if !IsMethodKey(key) {
				kept[key] = value
				continue
			}
			operation, _ := value.(map[string]any)
			opID, _ := operation["operationId"].(string)
			if _, ok := allow[opID]; ok && opID != "" {
				kept[key] = value
				methods++
			}
		}
		if methods > 0 {
			filtered[path] = kept
		}
	}
	out["paths"] = filtered
	return out
}
