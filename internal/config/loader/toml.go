package loader

import (
	"errors"

	"github.com/pelletier/go-toml/v2"
)

// TOML is the TOML codec.
type TOML struct{}

// Decode parses TOML data into a map.
func (TOML) Decode(source string, data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		perr := &ParseError{
			Path:    source,
			Message: err.Error(),
			Err:     err,
		}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return nil, perr
	}
	if doc == nil {
		doc = make(map[string]any)
	}
	return doc, nil
}

// Encode serializes a map as TOML. Keys are written in sorted order.
func (TOML) Encode(doc map[string]any) ([]byte, error) {
	return toml.Marshal(doc)
}
