package css

import (
	"errors"
	"io"
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	tdcss "github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Rule represents a CSS rule (selector + declarations)
type Rule struct {
	Selector     Selector
	Declarations map[string]string // property -> value, shorthands expanded
	MediaQuery   string
	Order        int // source position, breaks specificity ties
}

// Stylesheet represents a parsed CSS stylesheet
type Stylesheet struct {
	Rules []Rule
}

// Parser turns stylesheet text into rules used for computed style.
type Parser struct {
	log *zap.Logger
}

func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// ParseStylesheet parses CSS stylesheet content into rules
func ParseStylesheet(css string) (*Stylesheet, error) {
	return NewParser(nil).Parse(css), nil
}

// Parse never fails: malformed rules and unsupported at-rules are skipped.
func (p *Parser) Parse(text string) *Stylesheet {
	sheet := &Stylesheet{Rules: make([]Rule, 0)}
	if strings.TrimSpace(text) == "" {
		return sheet
	}

	parser := tdcss.NewParser(parse.NewInputString(text), false)
	var media []string
	order := 0

	for {
		gt, _, data := parser.Next()
		switch gt {
		case tdcss.ErrorGrammar:
			if err := parser.Err(); err == nil || errors.Is(err, io.EOF) || !parser.HasParseError() {
				return sheet
			}
			p.log.Debug("CSS parse error", zap.Error(parser.Err()))

		case tdcss.BeginAtRuleGrammar:
			name := strings.ToLower(string(data))
			if strings.TrimPrefix(name, "@") == "media" {
				media = append(media, tokensToString(parser.Values()))
				continue
			}
			p.log.Debug("Skipping @-rule", zap.String("rule", name))
			p.skipAtRuleBlock(parser)

		case tdcss.EndAtRuleGrammar:
			if len(media) > 0 {
				media = media[:len(media)-1]
			}

		case tdcss.AtRuleGrammar:
			p.log.Debug("Skipping @-rule", zap.String("rule", string(data)))

		case tdcss.BeginRulesetGrammar:
			selectorText := tokensToString(parser.Values())
			decls := p.parseDeclarations(parser)
			for _, member := range SplitSelectorGroup(selectorText) {
				sel, err := ParseSelector(member)
				if err != nil {
					p.log.Debug("Skipping selector", zap.String("selector", member), zap.Error(err))
					continue
				}
				copied := make(map[string]string, len(decls))
				for k, v := range decls {
					copied[k] = v
				}
				sheet.Rules = append(sheet.Rules, Rule{
					Selector:     sel,
					Declarations: copied,
					MediaQuery:   strings.Join(media, " and "),
					Order:        order,
				})
				order++
			}
		}
	}
}

func (p *Parser) parseDeclarations(parser *tdcss.Parser) map[string]string {
	style := NewStyle()
	for {
		gt, _, data := parser.Next()
		switch gt {
		case tdcss.ErrorGrammar:
			if !parser.HasParseError() {
				return style.Properties
			}
			// a broken declaration, keep going until the ruleset ends
		case tdcss.EndRulesetGrammar:
			return style.Properties
		case tdcss.DeclarationGrammar:
			value := tokensToString(parser.Values())
			if value != "" {
				expandShorthand(style, string(data), value)
			}
		}
	}
}

func (p *Parser) skipAtRuleBlock(parser *tdcss.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case tdcss.BeginAtRuleGrammar, tdcss.BeginRulesetGrammar:
			depth++
		case tdcss.EndAtRuleGrammar, tdcss.EndRulesetGrammar:
			depth--
		case tdcss.ErrorGrammar:
			if !parser.HasParseError() {
				return
			}
		}
	}
}

func tokensToString(tokens []tdcss.Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.Write(t.Data)
	}
	return strings.TrimSpace(sb.String())
}

// EvaluateMediaQuery supports media types and min/max width and height
// features joined by "and". Unknown features evaluate to true.
func EvaluateMediaQuery(query string, viewportWidth, viewportHeight float64) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, cond := range strings.Split(query, " and ") {
		cond = strings.TrimSpace(cond)
		switch cond {
		case "", "all", "screen", "only screen":
			continue
		case "print", "speech":
			return false
		}
		if !strings.HasPrefix(cond, "(") {
			continue
		}
		feature, value, ok := strings.Cut(strings.Trim(cond, "()"), ":")
		if !ok {
			continue
		}
		px, ok := ResolveLength(value, DefaultFontSize, 0)
		if !ok {
			if n, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
				px = n
			} else {
				continue
			}
		}
		switch strings.TrimSpace(feature) {
		case "min-width":
			if viewportWidth < px {
				return false
			}
		case "max-width":
			if viewportWidth > px {
				return false
			}
		case "min-height":
			if viewportHeight < px {
				return false
			}
		case "max-height":
			if viewportHeight > px {
				return false
			}
		}
	}
	return true
}
