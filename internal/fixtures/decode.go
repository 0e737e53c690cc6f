package fixtures

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Decode maps a row onto a struct whose fields carry `fixture:"column"`
// tags. Values are weakly typed: "3" fills an int, "yes" fills a bool.
// Blank cells leave the zero value.
func Decode(r Row, dst any) error {
	input := map[string]any{}
	for k, v := range r.Map() {
		if v != "" {
			input[k] = v
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "fixture",
		WeaklyTypedInput: true,
		DecodeHook:       boolMarkerHook,
		Result:           dst,
		MatchName: func(mapKey, fieldName string) bool {
			return normalizeColumn(mapKey) == normalizeColumn(fieldName)
		},
	})
	if err != nil {
		return fmt.Errorf("decoder: %w", err)
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("row %d: %w", r.Index, err)
	}
	return nil
}

// boolMarkerHook accepts spreadsheet checkbox markers for bool fields
func boolMarkerHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Bool {
		return data, nil
	}
	switch strings.ToLower(strings.TrimSpace(data.(string))) {
	case "yes", "y", "x", "checked", "on":
		return true, nil
	case "no", "n", "unchecked", "off":
		return false, nil
	}
	return data, nil
}
