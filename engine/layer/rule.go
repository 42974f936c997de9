package layer

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Severity is the normalized severity of a rule.
type Severity string

const (
	SeverityOff   Severity = "off"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// Level returns the numeric form used by the engine (0, 1 or 2).
func (s Severity) Level() int {
	switch s {
	case SeverityWarn:
		return 1
	case SeverityError:
		return 2
	default:
		return 0
	}
}

// Enabled reports whether the rule reports anything.
func (s Severity) Enabled() bool {
	return s == SeverityWarn || s == SeverityError
}

func (s Severity) Valid() bool {
	return s == SeverityOff || s == SeverityWarn || s == SeverityError
}

func (s Severity) String() string {
	return string(s)
}

// ParseSeverity accepts "off"/"warn"/"error" or 0/1/2 in any numeric form.
func ParseSeverity(v any) (Severity, error) {
	switch val := v.(type) {
	case Severity:
		if val.Valid() {
			return val, nil
		}
		return "", fmt.Errorf("invalid severity %q", string(val))
	case string:
		s := Severity(strings.TrimSpace(val))
		switch s {
		case "0":
			return SeverityOff, nil
		case "1":
			return SeverityWarn, nil
		case "2":
			return SeverityError, nil
		}
		if s.Valid() {
			return s, nil
		}
		return "", fmt.Errorf("invalid severity %q", val)
	case int:
		return severityFromLevel(int64(val))
	case int64:
		return severityFromLevel(val)
	case uint64:
		if val > 2 {
			return "", fmt.Errorf("invalid severity %d", val)
		}
		return severityFromLevel(int64(val))
	case float64:
		if val != math.Trunc(val) {
			return "", fmt.Errorf("invalid severity %v", val)
		}
		return severityFromLevel(int64(val))
	default:
		return "", fmt.Errorf("invalid severity of type %T", v)
	}
}

func severityFromLevel(n int64) (Severity, error) {
	switch n {
	case 0:
		return SeverityOff, nil
	case 1:
		return SeverityWarn, nil
	case 2:
		return SeverityError, nil
	default:
		return "", fmt.Errorf("invalid severity %d", n)
	}
}

// RuleEntry is a severity plus optional rule-specific options.
type RuleEntry struct {
	Severity Severity `validate:"required,severity"`
	Options  []any
}

// Rule builds a RuleEntry; it is the shorthand used by the built-in tables.
func Rule(severity Severity, options ...any) RuleEntry {
	if len(options) == 0 {
		return RuleEntry{Severity: severity}
	}
	return RuleEntry{Severity: severity, Options: options}
}

// ParseRuleEntry converts a decoded rule value ("warn", 2, ["error", {...}]).
func ParseRuleEntry(v any) (RuleEntry, error) {
	switch val := v.(type) {
	case RuleEntry:
		return val, nil
	case *RuleEntry:
		if val == nil {
			return RuleEntry{}, fmt.Errorf("rule entry is nil")
		}
		return *val, nil
	case []any:
		if len(val) == 0 {
			return RuleEntry{}, fmt.Errorf("rule entry array is empty")
		}
		sev, err := ParseSeverity(val[0])
		if err != nil {
			return RuleEntry{}, err
		}
		return Rule(sev, val[1:]...), nil
	case []string:
		items := make([]any, len(val))
		for i := range val {
			items[i] = val[i]
		}
		return ParseRuleEntry(items)
	default:
		sev, err := ParseSeverity(v)
		if err != nil {
			return RuleEntry{}, err
		}
		return RuleEntry{Severity: sev}, nil
	}
}

// Value returns the engine representation: the severity alone, or
// [severity, options...] when options are present.
func (r RuleEntry) Value() any {
	if len(r.Options) == 0 {
		return string(r.Severity)
	}
	out := make([]any, 0, len(r.Options)+1)
	out = append(out, string(r.Severity))
	out = append(out, r.Options...)
	return out
}

func (r RuleEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Value())
}

func (r *RuleEntry) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseRuleEntry(raw)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func (r RuleEntry) MarshalYAML() (any, error) {
	return r.Value(), nil
}

func (r *RuleEntry) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseRuleEntry(raw)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Rules maps rule identifiers to their entries.
type Rules map[string]RuleEntry

// Keys returns the rule identifiers in sorted order.
func (r Rules) Keys() []string {
	return slices.Sorted(maps.Keys(r))
}
