package compose

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/compozy/lintcompose/engine/layer"
)

// PatternConflictWarning reports two layers with overlapping scopes that set
// the same rule to different severities. The later layer wins.
type PatternConflictWarning struct {
	Rule            string         `json:"rule"            yaml:"rule"`
	Earlier         string         `json:"earlier"         yaml:"earlier"`
	EarlierIndex    int            `json:"earlierIndex"    yaml:"earlierIndex"`
	EarlierSeverity layer.Severity `json:"earlierSeverity" yaml:"earlierSeverity"`
	Later           string         `json:"later"           yaml:"later"`
	LaterIndex      int            `json:"laterIndex"      yaml:"laterIndex"`
	LaterSeverity   layer.Severity `json:"laterSeverity"   yaml:"laterSeverity"`
	Patterns        []string       `json:"patterns"        yaml:"patterns"`
}

func (w PatternConflictWarning) Error() string {
	return fmt.Sprintf(
		"rule %q is %s in layer %d (%s) and %s in layer %d (%s) for overlapping patterns [%s]",
		w.Rule,
		w.EarlierSeverity, w.EarlierIndex, w.Earlier,
		w.LaterSeverity, w.LaterIndex, w.Later,
		strings.Join(w.Patterns, ", "),
	)
}

// DetectConflicts compares every pair of layers i < j and reports each rule
// both set with a different severity when their scopes overlap. Results are
// ordered by i, then j, then rule id.
func DetectConflicts(seq []layer.Layer) []PatternConflictWarning {
	var out []PatternConflictWarning
	for j := 1; j < len(seq); j++ {
		later := &seq[j]
		if len(later.Rules) == 0 {
			continue
		}
		for i := 0; i < j; i++ {
			earlier := &seq[i]
			if len(earlier.Rules) == 0 || !ScopesOverlap(earlier.Files, later.Files) {
				continue
			}
			for _, id := range later.Rules.Keys() {
				prev, ok := earlier.Rules[id]
				if !ok || prev.Severity == later.Rules[id].Severity {
					continue
				}
				out = append(out, PatternConflictWarning{
					Rule:            id,
					Earlier:         earlier.Name,
					EarlierIndex:    i,
					EarlierSeverity: prev.Severity,
					Later:           later.Name,
					LaterIndex:      j,
					LaterSeverity:   later.Rules[id].Severity,
					Patterns:        overlapPatterns(earlier.Files, later.Files),
				})
			}
		}
	}
	sortWarnings(out)
	return out
}

func sortWarnings(ws []PatternConflictWarning) {
	slices.SortStableFunc(ws, func(x, y PatternConflictWarning) int {
		return cmp.Or(
			cmp.Compare(x.EarlierIndex, y.EarlierIndex),
			cmp.Compare(x.LaterIndex, y.LaterIndex),
			strings.Compare(x.Rule, y.Rule),
		)
	})
}

// ScopesOverlap reports whether some file could fall in both scopes. An
// empty scope overlaps everything. Two patterns overlap when they are equal,
// when one matches the other as a path, or when a probe path built from one
// matches the other.
func ScopesOverlap(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return true
	}
	for _, pa := range positives(a) {
		for _, pb := range positives(b) {
			if patternsOverlap(pa, pb) {
				return true
			}
		}
	}
	return false
}

func patternsOverlap(a, b string) bool {
	if a == b {
		return true
	}
	if layer.MatchFile([]string{a}, b) || layer.MatchFile([]string{b}, a) {
		return true
	}
	return layer.MatchFile([]string{b}, probePath(a)) || layer.MatchFile([]string{a}, probePath(b))
}

func positives(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if !strings.HasPrefix(p, "!") {
			out = append(out, p)
		}
	}
	return out
}

func overlapPatterns(a, b []string) []string {
	switch {
	case len(a) == 0:
		return append([]string{}, b...)
	case len(b) == 0:
		return append([]string{}, a...)
	}
	var out []string
	for _, pa := range positives(a) {
		for _, pb := range positives(b) {
			if patternsOverlap(pa, pb) {
				out = appendUnique(out, pa)
				out = appendUnique(out, pb)
			}
		}
	}
	return out
}

func appendUnique(list []string, s string) []string {
	if slices.Contains(list, s) {
		return list
	}
	return append(list, s)
}

// probePath turns a glob into one concrete path it matches: wildcards become
// a placeholder name, braces take their first alternative and character
// classes their first member.
func probePath(pattern string) string {
	var sb strings.Builder
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch c {
		case '*':
			if i+2 < len(pattern) && pattern[i+1] == '*' && pattern[i+2] == '/' {
				i += 2
				continue
			}
			for i+1 < len(pattern) && pattern[i+1] == '*' {
				i++
			}
			sb.WriteByte('x')
		case '?':
			sb.WriteByte('x')
		case '{':
			end := strings.IndexByte(pattern[i:], '}')
			if end < 0 {
				sb.WriteByte(c)
				continue
			}
			body := pattern[i+1 : i+end]
			first, _, _ := strings.Cut(body, ",")
			sb.WriteString(probePath(first))
			i += end
		case '[':
			end := strings.IndexByte(pattern[i:], ']')
			if end < 0 {
				sb.WriteByte(c)
				continue
			}
			body := pattern[i+1 : i+end]
			switch {
			case body == "" || body[0] == '!' || body[0] == '^':
				sb.WriteByte('_')
			default:
				sb.WriteByte(body[0])
			}
			i += end
		case '\\':
			if i+1 < len(pattern) {
				i++
				sb.WriteByte(pattern[i])
			}
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
