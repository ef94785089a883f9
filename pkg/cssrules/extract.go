package cssrules

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var (
	commentRe   = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineBreakRe = regexp.MustCompile(`[\n\r\t]+`)
)

// Extractor turns raw style text into rules. It never fails: text it cannot
// make sense of is dropped and reported at debug level.
type Extractor struct {
	log *zap.Logger
}

func NewExtractor(log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{log: log.Named("css-rules")}
}

// Extract returns the rules of raw in source order.
func (e *Extractor) Extract(raw string) []*Rule {
	return e.parseBlocks(clean(raw), nil)
}

// ParseDeclaration parses a single `selector { ... }` block. It returns nil
// unless the text holds exactly one rule.
func (e *Extractor) ParseDeclaration(raw string) *Rule {
	rules := e.parseBlocks(clean(raw), nil)
	if len(rules) != 1 {
		return nil
	}
	return rules[0]
}

func clean(raw string) string {
	s := commentRe.ReplaceAllString(raw, "")
	s = lineBreakRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// parseBlocks extracts consecutive rules from s. Inside a block (parent set)
// loose declarations outside of any child rule belong to the parent.
func (e *Extractor) parseBlocks(s string, parent *Rule) []*Rule {
	var rules []*Rule
	for {
		start := strings.IndexByte(s, '{')
		if start < 0 {
			e.trailing(s, parent)
			return rules
		}

		prefix := s[:start]
		decls, selector := splitPrefix(prefix)
		if parent != nil {
			parent.Declarations.Merge(parseProperties(decls))
		}

		remainder := s[start+1:]
		end := strings.IndexByte(remainder, '}')
		if end < 0 {
			e.log.Debug("Unterminated rule dropped", zap.String("selector", selector))
			return rules
		}

		var rule *Rule
		if next := strings.IndexByte(remainder, '{'); next >= 0 && next < end {
			end = balancingBrace(remainder)
			if end < 0 {
				e.log.Debug("Unterminated block dropped", zap.String("selector", selector))
				return rules
			}
			rule = newRule(selector)
			if !rule.Type.IsBlock() {
				rule.Type = RuleTypeUnknown
				rule.Identifier = DefaultIdentifier
			}
			rule.Nested = e.parseBlocks(remainder[:end], rule)
		} else {
			rule = newRule(selector)
			rule.Declarations = parseProperties(remainder[:end])
			if rule.Type.IsBlock() {
				rule.Nested = make([]*Rule, 0)
			}
		}
		rule.parent = parent
		s = remainder[end+1:]

		if selector == "" {
			e.log.Debug("Rule without selector dropped")
			continue
		}
		rules = append(rules, rule)
	}
}

func (e *Extractor) trailing(s string, parent *Rule) {
	if strings.TrimSpace(s) == "" {
		return
	}
	if parent != nil {
		parent.Declarations.Merge(parseProperties(s))
		return
	}
	e.log.Debug("Trailing text dropped", zap.String("text", s))
}

// splitPrefix separates the declarations preceding a selector from the
// selector itself: the selector is whatever follows the last semicolon.
func splitPrefix(prefix string) (decls, selector string) {
	i := strings.LastIndexByte(prefix, ';')
	if i < 0 {
		return "", strings.TrimSpace(prefix)
	}
	return prefix[:i], strings.TrimSpace(prefix[i+1:])
}

// balancingBrace returns the index of the brace closing a block whose
// opening brace was just consumed, or -1.
func balancingBrace(s string) int {
	depth := 1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func parseProperties(s string) Declarations {
	var d Declarations
	for _, set := range strings.Split(s, ";") {
		key, value, ok := strings.Cut(set, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if key == "" || value == "" {
			continue
		}
		d.Set(key, value)
	}
	return d
}
