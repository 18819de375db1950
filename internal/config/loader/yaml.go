package loader

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAML is the YAML codec.
type YAML struct{}

// Decode parses YAML data into a map. Nested mappings must use string keys.
func (YAML) Decode(source string, data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		perr := &ParseError{
			Path:    source,
			Message: err.Error(),
			Err:     err,
		}
		var terr *yaml.TypeError
		if errors.As(err, &terr) && len(terr.Errors) > 0 {
			perr.Message = terr.Errors[0]
		}
		return nil, perr
	}
	if doc == nil {
		doc = make(map[string]any)
	}
	if err := checkStringKeys(doc, ""); err != nil {
		return nil, &ParseError{Path: source, Message: err.Error(), Err: err}
	}
	return doc, nil
}

// Encode serializes a map as YAML. Floats always carry a float form so
// that 1.0 does not read back as an integer.
func (YAML) Encode(doc map[string]any) ([]byte, error) {
	return yaml.Marshal(tagFloats(doc))
}

// tagFloats copies v, replacing every float64 with an explicitly tagged
// scalar node.
func tagFloats(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = tagFloats(item)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = tagFloats(item)
		}
		return out
	case float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatFloat(x)}
	default:
		return v
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// checkStringKeys rejects mappings with non-string keys, which yaml.v3
// decodes as map[any]any.
func checkStringKeys(doc map[string]any, prefix string) error {
	for key, v := range doc {
		switch x := v.(type) {
		case map[string]any:
			if err := checkStringKeys(x, prefix+key+"/"); err != nil {
				return err
			}
		case map[any]any:
			return fmt.Errorf("%s%s: mapping keys must be strings", prefix, key)
		}
	}
	return nil
}
