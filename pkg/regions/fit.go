package regions

import (
	"strings"
	"unicode"

	"regionflow/pkg/html"
)

// isImageLike reports elements that are never split across regions.
func isImageLike(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.TagName {
	case "img", "fig", "svg", "video", "canvas", "object", "embed", "iframe":
		return true
	}
	return false
}

// collectAtoms returns the leaf content units of n in document order:
// image-like elements, whose subtrees are not visited, and text nodes with
// non-blank text.
func collectAtoms(n *html.Node) []*html.Node {
	return n.Collect(func(c *html.Node) html.FilterResult {
		switch {
		case isImageLike(c):
			return html.FilterAcceptLeaf
		case c.Type == html.TextNode && strings.TrimSpace(c.Text) != "":
			return html.FilterAccept
		}
		return html.FilterSkip
	})
}

// atom is one leaf of a unit being split, with the position it had before
// the search started mutating the unit.
type atom struct {
	node   *html.Node
	parent *html.Node
	index  int
	text   string
}

func (a *atom) isText() bool { return a.node.Type == html.TextNode }

// splitState tracks which atoms of a unit are currently present. Atoms
// [0, present) are in place with their original content; the others are
// emptied (text) or detached (elements).
type splitState struct {
	unit    *html.Node
	atoms   []*atom
	present int
}

func newSplitState(unit *html.Node, nodes []*html.Node) *splitState {
	s := &splitState{unit: unit, atoms: make([]*atom, len(nodes)), present: len(nodes)}
	for i, n := range nodes {
		s.atoms[i] = &atom{node: n, parent: n.Parent, index: n.IndexInParent(), text: n.Text}
	}
	return s
}

// keep makes exactly the first k atoms present. Removal runs backwards and
// restoration forwards so captured sibling indexes stay valid.
func (s *splitState) keep(k int) {
	for i := s.present - 1; i >= k; i-- {
		a := s.atoms[i]
		if a.isText() {
			a.node.Text = ""
		} else if a.parent != nil {
			a.parent.RemoveChild(a.node)
		}
	}
	for i := s.present; i < k; i++ {
		s.restore(s.atoms[i])
	}
	s.present = k
}

func (s *splitState) restore(a *atom) {
	if a.isText() {
		a.node.Text = a.text
		return
	}
	if a.parent != nil && a.node.Parent == nil {
		a.parent.InsertAt(a.node, a.index)
	}
}

// wordSplit is the boundary inside a text atom.
type wordSplit struct {
	leading bool
	words   []string
}

func newWordSplit(text string) wordSplit {
	return wordSplit{
		leading: len(text) > 0 && unicode.IsSpace(rune(text[0])),
		words:   strings.Fields(text),
	}
}

// kept returns the text left in the earlier region when j words stay. With
// no words only the leading space, if any, stays.
func (w wordSplit) kept(j int) string {
	if j == 0 {
		if w.leading {
			return " "
		}
		return ""
	}
	s := strings.Join(w.words[:j], " ") + " "
	if w.leading {
		s = " " + s
	}
	return s
}

// carried returns the text moved on when j words stay.
func (w wordSplit) carried(j int) string {
	return strings.Join(w.words[j:], " ") + " "
}

// searchPrefix returns the largest i in [lo+1, hi] for which fits(i) holds,
// or lo when none does. fits must be monotonic.
func searchPrefix(lo, hi int, fits func(int) bool) int {
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if fits(mid) {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// addContentToRegion appends unit to the region at index ri. It returns nil
// when the whole unit fits, otherwise the part that must go to the next
// region. The returned remainder is unit itself when nothing could be
// placed.
func (e *Engine) addContentToRegion(f *NamedFlow, unit, region *html.Node, ri int) *html.Node {
	region.AddChild(unit)
	if !e.measure.Overflows(region) {
		f.place(unit, region, ri)
		return nil
	}
	region.RemoveChild(unit)

	nodes := collectAtoms(unit)
	if len(nodes) == 0 || (len(nodes) == 1 && isImageLike(nodes[0])) {
		return unit
	}

	fits := func() bool {
		region.AddChild(unit)
		ok := !e.measure.Overflows(region)
		region.RemoveChild(unit)
		return ok
	}

	s := newSplitState(unit, nodes)
	// k atoms stay whole; atom k is the first one that does not.
	k := searchPrefix(-1, len(nodes)-1, func(i int) bool {
		s.keep(i)
		return fits()
	})
	if k < 0 {
		s.keep(len(nodes))
		return unit
	}
	s.keep(k)

	boundary := s.atoms[k]
	j := 0
	var ws wordSplit
	if boundary.isText() {
		ws = newWordSplit(boundary.text)
		j = searchPrefix(0, len(ws.words)-1, func(i int) bool {
			boundary.node.Text = ws.kept(i)
			return fits()
		})
		if j > 0 {
			boundary.node.Text = ws.kept(j)
		} else {
			boundary.node.Text = ""
		}
	}
	if k == 0 && j == 0 {
		s.keep(len(nodes))
		return unit
	}

	last := boundary.node
	if j == 0 {
		last = s.atoms[k-1].node
	}
	piece := trimAfter(unit, last)
	region.AddChild(piece)
	f.place(piece, region, ri)

	// Reassemble what is left in the original unit.
	s.keep(len(nodes))
	if j > 0 {
		boundary.node.Text = ws.carried(j)
	}
	for i := 0; i < k; i++ {
		removeAndPrune(s.atoms[i].node, unit)
	}
	for x := boundary.node; x != unit && x.Parent != nil; x = x.Parent {
		for prev := x.PreviousSibling(); prev != nil; prev = x.PreviousSibling() {
			x.Parent.RemoveChild(prev)
		}
	}
	return unit
}

// trimAfter clones unit and removes from the clone everything that follows
// last in document order, so no emptied wrapper is left trailing.
func trimAfter(unit, last *html.Node) *html.Node {
	clone := unit.CloneNode(true)
	at := clone.Follow(last.Path(unit))
	if at == nil {
		return clone
	}
	for x := at; x != clone && x.Parent != nil; x = x.Parent {
		for next := x.NextSibling(); next != nil; next = x.NextSibling() {
			x.Parent.RemoveChild(next)
		}
	}
	return clone
}

// removeAndPrune detaches n and then every ancestor below root left empty.
func removeAndPrune(n, root *html.Node) {
	p := n.Parent
	if p == nil || n == root {
		return
	}
	p.RemoveChild(n)
	for p != root && p.Parent != nil && isBlank(p) {
		gp := p.Parent
		gp.RemoveChild(p)
		p = gp
	}
}

// isBlank reports an element without children other than whitespace text.
func isBlank(n *html.Node) bool {
	for _, c := range n.Children {
		if c.Type != html.TextNode || strings.TrimSpace(c.Text) != "" {
			return false
		}
	}
	return true
}
