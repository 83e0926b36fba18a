package source

import (
	"gopkg.in/yaml.v3"

	"github.com/roach88/viewdb/internal/record"
)

// decodeYAML accepts YAML and JSON documents.
func decodeYAML(path string, data []byte) ([]record.Object, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, newLoadError(ErrCodeDecode, path, "parse yaml", err)
	}

	switch top := doc.(type) {
	case nil:
		return []record.Object{}, nil
	case []any:
		return objectsFromList(path, top)
	case map[string]any:
		items, ok := top["records"].([]any)
		if !ok {
			if _, present := top["records"]; present {
				return nil, newLoadError(ErrCodeShape, path, `"records" must be a list`, nil)
			}
			return nil, newLoadError(ErrCodeShape, path, `mapping has no "records" list`, nil)
		}
		return objectsFromList(path, items)
	default:
		return nil, newLoadError(ErrCodeShape, path, "document must be a list or a mapping with records", nil)
	}
}
