package html

import (
	"errors"
	"io"
	"strings"
	"unicode"

	nethtml "golang.org/x/net/html"
)

type TokenType int

const (
	TokenStartTag TokenType = iota
	TokenEndTag
	TokenText
	TokenEOF
)

type Token struct {
	Type        TokenType
	TagName     string
	Attributes  map[string]string
	Text        string
	SelfClosing bool // True for tags ending with /> (XHTML self-closing syntax)
}

// Tokenizer turns HTML source into a flat token stream. Comments, doctypes
// and whitespace-only text between tags are dropped; text inside <style> and
// <script> is passed through verbatim.
type Tokenizer struct {
	z      *nethtml.Tokenizer
	rawTag string
}

func NewTokenizer(html string) *Tokenizer {
	return &Tokenizer{z: nethtml.NewTokenizer(strings.NewReader(html))}
}

func (t *Tokenizer) NextToken() (Token, error) {
	for {
		tt := t.z.Next()
		switch tt {
		case nethtml.ErrorToken:
			if err := t.z.Err(); err != nil && !errors.Is(err, io.EOF) {
				return Token{}, err
			}
			return Token{Type: TokenEOF}, nil

		case nethtml.StartTagToken, nethtml.SelfClosingTagToken:
			tok := t.z.Token()
			name := strings.ToLower(tok.Data)
			attributes := make(map[string]string, len(tok.Attr))
			for _, a := range tok.Attr {
				attributes[strings.ToLower(a.Key)] = a.Val
			}
			selfClosing := tt == nethtml.SelfClosingTagToken
			if !selfClosing && (name == "style" || name == "script") {
				t.rawTag = name
			}
			return Token{Type: TokenStartTag, TagName: name, Attributes: attributes, SelfClosing: selfClosing}, nil

		case nethtml.EndTagToken:
			tok := t.z.Token()
			name := strings.ToLower(tok.Data)
			if name == t.rawTag {
				t.rawTag = ""
			}
			return Token{Type: TokenEndTag, TagName: name}, nil

		case nethtml.TextToken:
			raw := string(t.z.Text())
			if t.rawTag != "" {
				return Token{Type: TokenText, Text: raw}, nil
			}
			// Whitespace-only text between tags is indentation.
			if strings.TrimSpace(raw) == "" {
				continue
			}
			return Token{Type: TokenText, Text: normalizeWhitespace(raw)}, nil

		default:
			// comments, doctype
			continue
		}
	}
}

// normalizeWhitespace collapses runs of whitespace to a single space,
// preserving a single space at boundaries. This is important for inline
// flow: "text <em>word</em> more" must keep the spaces between the text
// nodes and the inline element.
func normalizeWhitespace(s string) string {
	hasLeading := len(s) > 0 && unicode.IsSpace(rune(s[0]))
	hasTrailing := len(s) > 0 && unicode.IsSpace(rune(s[len(s)-1]))

	fields := strings.Fields(s)
	if len(fields) == 0 {
		if hasLeading || hasTrailing {
			return " "
		}
		return ""
	}

	result := strings.Join(fields, " ")
	if hasLeading {
		result = " " + result
	}
	if hasTrailing {
		result = result + " "
	}
	return result
}
