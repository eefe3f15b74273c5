package entity

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"symbol_backend/internal/feature/exchanges/domain"
)

// footnotePattern matches bracketed footnote markers such as "[1]" and their
// percent-encoded form "%5B1%5D" left behind by the source tables.
var footnotePattern = regexp.MustCompile(`(%5B\d+%5D|\[\d+\])`)

// TickerRule rewrites a raw table cell into the provider's ticker spelling.
// The set of rules is closed: SuffixRule and PatternRule.
type TickerRule interface {
	apply(raw string) string
	// String describes the rule for listings and logs.
	String() string
}

// SuffixRule appends a fixed suffix, e.g. ".L" for London-listed tickers.
type SuffixRule struct {
	Suffix string
}

// Suffix returns a SuffixRule appending text.
func Suffix(text string) SuffixRule {
	return SuffixRule{Suffix: text}
}

func (r SuffixRule) apply(raw string) string {
	// 空セルには付与しない
	if raw == "" {
		return raw
	}
	return raw + r.Suffix
}

func (r SuffixRule) String() string {
	return fmt.Sprintf("suffix(%q)", r.Suffix)
}

// RewriteCase is one pattern/replacement pair of a PatternRule.
// Replacement uses regexp.Expand syntax ($1, ${1}, $name, ${name}).
type RewriteCase struct {
	Pattern     string
	Replacement string
}

type rewrite struct {
	source      string
	re          *regexp.Regexp
	replacement string
}

// PatternRule rewrites a raw value with the first case whose pattern matches
// the whole value. Values matching no case pass through unchanged.
type PatternRule struct {
	cases []rewrite
}

// NewPatternRule builds a single-case PatternRule.
func NewPatternRule(pattern, replacement string) (PatternRule, error) {
	return NewRoutingRule(RewriteCase{Pattern: pattern, Replacement: replacement})
}

// NewRoutingRule builds a PatternRule that routes a value to the first matching case,
// e.g. "SSE: 600000" to "600000.SS" and "SZSE: 000001" to "000001.SZ".
func NewRoutingRule(cases ...RewriteCase) (PatternRule, error) {
	if len(cases) == 0 {
		return PatternRule{}, fmt.Errorf("%w: pattern rule has no cases", domain.ErrConfiguration)
	}
	rule := PatternRule{cases: make([]rewrite, 0, len(cases))}
	for _, c := range cases {
		re, err := regexp.Compile(`^(?:` + c.Pattern + `)$`)
		if err != nil {
			return PatternRule{}, fmt.Errorf("%w: pattern %q: %v", domain.ErrConfiguration, c.Pattern, err)
		}
		if err := checkTemplate(re, c.Replacement); err != nil {
			return PatternRule{}, fmt.Errorf("%w: replacement %q for pattern %q: %v",
				domain.ErrConfiguration, c.Replacement, c.Pattern, err)
		}
		rule.cases = append(rule.cases, rewrite{source: c.Pattern, re: re, replacement: c.Replacement})
	}
	return rule, nil
}

// MustPatternRule is like NewRoutingRule but panics on error. Intended for static defaults.
func MustPatternRule(cases ...RewriteCase) PatternRule {
	rule, err := NewRoutingRule(cases...)
	if err != nil {
		panic(err)
	}
	return rule
}

// Cases returns the rule's cases in evaluation order.
func (r PatternRule) Cases() []RewriteCase {
	out := make([]RewriteCase, 0, len(r.cases))
	for _, c := range r.cases {
		out = append(out, RewriteCase{Pattern: c.source, Replacement: c.replacement})
	}
	return out
}

func (r PatternRule) apply(raw string) string {
	for _, c := range r.cases {
		m := c.re.FindStringSubmatchIndex(raw)
		if m == nil {
			continue
		}
		return string(c.re.ExpandString(nil, c.replacement, raw, m))
	}
	return raw
}

func (r PatternRule) String() string {
	parts := make([]string, 0, len(r.cases))
	for _, c := range r.cases {
		parts = append(parts, fmt.Sprintf("%s -> %s", c.source, c.replacement))
	}
	return "pattern(" + strings.Join(parts, "; ") + ")"
}

// Normalize applies rule to raw and then strips footnote markers.
// Every "[N]" or "%5BN%5D" marker is removed wherever it appears in the value,
// not only at the end: "BT[3].A" becomes "BT.A".
// A nil rule only strips footnotes.
func Normalize(raw string, rule TickerRule) string {
	out := raw
	if rule != nil {
		out = rule.apply(raw)
	}
	return footnotePattern.ReplaceAllString(out, "")
}

// checkTemplate rejects templates that reference groups the pattern does not define.
func checkTemplate(re *regexp.Regexp, template string) error {
	names := map[string]bool{}
	for _, n := range re.SubexpNames() {
		if n != "" {
			names[n] = true
		}
	}
	for i := 0; i < len(template); i++ {
		if template[i] != '$' {
			continue
		}
		if i+1 < len(template) && template[i+1] == '$' {
			i++
			continue
		}
		name, width := templateRef(template[i+1:])
		if width == 0 {
			// regexp.Expand copies a malformed reference verbatim
			continue
		}
		i += width
		if n, err := strconv.Atoi(name); err == nil {
			if n > re.NumSubexp() {
				return fmt.Errorf("group %d not in pattern", n)
			}
			continue
		}
		if !names[name] {
			return fmt.Errorf("group %q not in pattern", name)
		}
	}
	return nil
}

// templateRef parses the reference following a '$', returning its name and the
// number of bytes consumed. width is 0 when the reference is malformed.
func templateRef(s string) (name string, width int) {
	if s == "" {
		return "", 0
	}
	if s[0] == '{' {
		end := strings.IndexByte(s, '}')
		if end < 2 || !isGroupName(s[1:end]) {
			return "", 0
		}
		return s[1:end], end + 1
	}
	n := 0
	for n < len(s) && isNameByte(s[n]) {
		n++
	}
	if n == 0 {
		return "", 0
	}
	return s[:n], n
}

func isGroupName(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isNameByte(s[i]) {
			return false
		}
	}
	return s != ""
}

func isNameByte(c byte) bool {
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
