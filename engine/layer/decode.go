package layer

import (
	"fmt"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
)

var (
	ruleEntryType    = reflect.TypeOf(RuleEntry{})
	severityType     = reflect.TypeOf(Severity(""))
	globalAccessType = reflect.TypeOf(GlobalAccess(""))
	stringSliceType  = reflect.TypeOf([]string(nil))
)

// Decode converts a generic document (as produced by a YAML, TOML or JSON
// decoder) into a Layer. Unknown keys are rejected and the result is
// validated.
func Decode(raw any) (Layer, error) {
	var out Layer
	if raw == nil {
		return out, fmt.Errorf("layer is empty")
	}
	if l, ok := raw.(Layer); ok {
		out = l.Clone()
	} else {
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				ruleEntryHook,
				severityHook,
				globalAccessHook,
				singletonSliceHook,
			),
			ErrorUnused: true,
			Result:      &out,
			TagName:     "mapstructure",
		})
		if err != nil {
			return out, err
		}
		if err := decoder.Decode(raw); err != nil {
			return out, err
		}
	}
	if err := out.Validate(); err != nil {
		return out, err
	}
	return out, nil
}

// DecodeAll decodes a list of generic layer documents.
func DecodeAll(raw []any) ([]Layer, error) {
	out := make([]Layer, 0, len(raw))
	for i, item := range raw {
		l, err := Decode(item)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		out = append(out, l)
	}
	return out, nil
}

func ruleEntryHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != ruleEntryType {
		return data, nil
	}
	return ParseRuleEntry(data)
}

func severityHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != severityType {
		return data, nil
	}
	if b, ok := data.(bool); ok {
		if b {
			return SeverityWarn, nil
		}
		return SeverityOff, nil
	}
	return ParseSeverity(data)
}

func globalAccessHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != globalAccessType {
		return data, nil
	}
	switch val := data.(type) {
	case bool:
		if val {
			return GlobalWritable, nil
		}
		return GlobalReadonly, nil
	case string:
		switch val {
		case "readable":
			return GlobalReadonly, nil
		case "writeable":
			return GlobalWritable, nil
		}
	}
	return data, nil
}

// singletonSliceHook lets a single pattern stand in for a one-element list.
// Commas are kept since brace expansion uses them.
func singletonSliceHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != stringSliceType {
		return data, nil
	}
	return []string{reflect.ValueOf(data).String()}, nil
}
