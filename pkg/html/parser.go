package html

import (
	"fmt"
	"strings"
)

type Parser struct {
	tokenizer *Tokenizer
	doc       *Document
	stack     []*Node
	rawNode   *Node // open <style> or <script>
}

func NewParser(html string) *Parser {
	return &Parser{
		tokenizer: NewTokenizer(html),
		doc:       NewDocument(),
	}
}

func (p *Parser) Parse() (*Document, error) {
	p.stack = []*Node{p.doc.Root}

	for {
		token, err := p.tokenizer.NextToken()
		if err != nil {
			return nil, fmt.Errorf("tokenizer error: %w", err)
		}
		if token.Type == TokenEOF {
			break
		}

		switch token.Type {
		case TokenStartTag:
			// Auto-close <p> when a block-level element is encountered inside it
			if p.isBlockElement(token.TagName) {
				p.autoCloseP()
			}

			node := NewElement(token.TagName, token.Attributes)
			p.currentParent().AddChild(node)

			switch token.TagName {
			case "link":
				rel, _ := node.GetAttribute("rel")
				href, ok := node.GetAttribute("href")
				if ok && strings.Contains(strings.ToLower(rel), "stylesheet") {
					p.doc.Styles = append(p.doc.Styles, StyleRef{Href: strings.TrimSpace(href)})
				}
			case "base":
				if href, ok := node.GetAttribute("href"); ok && p.doc.BaseURL == "" {
					p.doc.BaseURL = strings.TrimSpace(href)
				}
			case "style", "script":
				if !token.SelfClosing {
					p.rawNode = node
				}
			}

			if !p.isSelfClosing(token.TagName) && !token.SelfClosing {
				p.push(node)
			}

		case TokenText:
			if p.rawNode != nil {
				p.rawNode.AppendText(token.Text)
				continue
			}
			if token.Text != "" {
				p.currentParent().AppendText(token.Text)
			}

		case TokenEndTag:
			if p.rawNode != nil && token.TagName == p.rawNode.TagName {
				p.finishRaw(p.rawNode)
				p.rawNode = nil
			}
			p.closeTag(token.TagName)
		}
	}

	return p.doc, nil
}

func (p *Parser) finishRaw(n *Node) {
	text := n.TextContent()
	switch n.TagName {
	case "style":
		p.doc.Styles = append(p.doc.Styles, StyleRef{Inline: true, Text: text})
	case "script":
		if _, external := n.GetAttribute("src"); !external && strings.TrimSpace(text) != "" {
			p.doc.Scripts = append(p.doc.Scripts, text)
		}
	}
}

// currentParent returns the current parent node (top of stack)
func (p *Parser) currentParent() *Node {
	if len(p.stack) == 0 {
		return p.doc.Root
	}
	return p.stack[len(p.stack)-1]
}

func (p *Parser) push(node *Node) {
	p.stack = append(p.stack, node)
}

// isSelfClosing returns true for void/self-closing HTML elements
func (p *Parser) isSelfClosing(tagName string) bool {
	return isVoidElement(tagName)
}

// closeTag pops the stack until the matching tag is found and closed
func (p *Parser) closeTag(tagName string) {
	for i := len(p.stack) - 1; i >= 1; i-- {
		if p.stack[i].TagName == tagName {
			p.stack = p.stack[:i]
			return
		}
	}
	// Tag not found on stack; ignore the end tag
}

// autoCloseP closes an open <p> element if one is on the stack
func (p *Parser) autoCloseP() {
	for i := len(p.stack) - 1; i >= 1; i-- {
		if p.stack[i].TagName == "p" {
			p.stack = p.stack[:i]
			return
		}
		// Don't close past block-level containers
		if p.isBlockElement(p.stack[i].TagName) {
			return
		}
	}
}

// isBlockElement returns true for elements that auto-close <p>
func (p *Parser) isBlockElement(tagName string) bool {
	return IsBlockTag(tagName) && tagName != "body" && tagName != "html"
}

// IsBlockTag reports whether tag is block-level by default.
func IsBlockTag(tagName string) bool {
	switch tagName {
	case "address", "article", "aside", "blockquote", "body", "details", "dialog",
		"dd", "div", "dl", "dt", "fieldset", "figcaption", "figure",
		"footer", "form", "h1", "h2", "h3", "h4", "h5", "h6",
		"header", "hgroup", "hr", "html", "li", "main", "nav", "ol",
		"p", "pre", "section", "table", "ul":
		return true
	}
	return false
}

func Parse(html string) (*Document, error) {
	parser := NewParser(html)
	return parser.Parse()
}

// ParseFragment parses markup as the content of an element and returns the
// resulting top-level nodes, detached. Scripts and styles inside the
// fragment are kept as elements but not collected.
func ParseFragment(markup string) ([]*Node, error) {
	doc, err := Parse(markup)
	if err != nil {
		return nil, err
	}
	nodes := doc.Root.RemoveChildren()
	return nodes, nil
}
