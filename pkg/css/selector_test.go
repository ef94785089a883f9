package css

import "testing"

func TestParseSelector_Compound(t *testing.T) {
	sel, err := ParseSelector(`div#main.a.b[data-x="1"]:first-child`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sel.Parts) != 1 {
		t.Fatalf("expected 1 part, got %d", len(sel.Parts))
	}
	p := sel.Parts[0]
	if p.Element != "div" || p.ID != "main" || len(p.Classes) != 2 {
		t.Errorf("unexpected part %+v", p)
	}
	if len(p.Attributes) != 1 || p.Attributes[0] != (AttributeSelector{Name: "data-x", Operator: "=", Value: "1"}) {
		t.Errorf("unexpected attributes %+v", p.Attributes)
	}
	if len(p.PseudoClasses) != 1 || p.PseudoClasses[0] != "first-child" {
		t.Errorf("unexpected pseudo-classes %+v", p.PseudoClasses)
	}
	// 1 id, 2 classes + 1 attribute + 1 pseudo-class, 1 element
	if sel.Specificity != 141 {
		t.Errorf("expected specificity 141, got %d", sel.Specificity)
	}
}

func TestParseSelector_Combinators(t *testing.T) {
	sel, err := ParseSelector("article  p > span + em ~ b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Combinator{DescendantCombinator, ChildCombinator, AdjacentSiblingCombinator, GeneralSiblingCombinator}
	if len(sel.Combinators) != len(want) {
		t.Fatalf("expected %d combinators, got %d", len(want), len(sel.Combinators))
	}
	for i := range want {
		if sel.Combinators[i] != want[i] {
			t.Errorf("combinator %d: expected %v, got %v", i, want[i], sel.Combinators[i])
		}
	}
}

func TestParseSelector_PseudoElement(t *testing.T) {
	for _, raw := range []string{"p::before", "p:after"} {
		sel, err := ParseSelector(raw)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", raw, err)
		}
		if sel.PseudoElement == "" {
			t.Errorf("%s: expected pseudo-element", raw)
		}
	}
}

func TestParseSelector_Errors(t *testing.T) {
	for _, raw := range []string{"", "div >", "#", "p[x", "!!"} {
		if _, err := ParseSelector(raw); err == nil {
			t.Errorf("%q: expected error", raw)
		}
	}
}

func TestSplitSelectorGroup(t *testing.T) {
	got := SplitSelectorGroup(`a, b[title="x,y"] , :not(c, d)`)
	want := []string{"a", `b[title="x,y"]`, ":not(c, d)"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("member %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
