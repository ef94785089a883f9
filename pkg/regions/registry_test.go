package regions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"regionflow/pkg/html"
)

func TestRegistry_GetOrCreate(t *testing.T) {
	r := NewRegistry(zaptest.NewLogger(t), nil)

	a := r.GetOrCreate("a")
	assert.Same(t, a, r.GetOrCreate("a"))
	assert.Equal(t, DefaultFlowName, r.GetOrCreate("").Name())
	assert.Equal(t, 2, r.Len())

	assert.True(t, a.Overset(), "a new flow starts overset")
	assert.Equal(t, -1, a.FirstEmptyRegionIndex())
	assert.Equal(t, -1, a.LastRegionWithContentIndex())
}

func TestRegistry_AddWithoutDuplicates(t *testing.T) {
	r := NewRegistry(nil, nil)
	n1 := html.NewElement("div", nil)
	n2 := html.NewElement("div", nil)

	require.NoError(t, r.AddSource("f", n1))
	require.NoError(t, r.AddSource("f", n1))
	require.NoError(t, r.AddRegion("f", n1))
	require.NoError(t, r.AddRegion("f", n2))
	require.NoError(t, r.AddRegion("f", n2))

	f := r.Get("f")
	assert.Equal(t, []*html.Node{n1}, f.Content())
	assert.Equal(t, []*html.Node{n1, n2}, f.Regions())
}

func TestRegistry_NilNode(t *testing.T) {
	r := NewRegistry(nil, nil)
	assert.ErrorIs(t, r.AddSource("f", nil), ErrInvalidArgument)
	assert.ErrorIs(t, r.AddRegion("f", nil), ErrInvalidArgument)
	assert.Equal(t, 0, r.Len(), "a rejected call creates no flow")
}

func TestRegistry_Invalidate(t *testing.T) {
	r := NewRegistry(nil, nil)
	a, b := r.GetOrCreate("a"), r.GetOrCreate("b")
	for _, f := range []*NamedFlow{a, b} {
		f.mu.Lock()
		f.valid = true
		f.mu.Unlock()
	}

	r.Invalidate("b")
	assert.True(t, a.Valid())
	assert.False(t, b.Valid())

	r.Invalidate()
	assert.False(t, a.Valid())
}

func TestCollection(t *testing.T) {
	_, err := NewCollection(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	empty, err := NewCollection([]*NamedFlow{})
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
	assert.Nil(t, empty.Item(0))

	r := NewRegistry(nil, nil)
	r.GetOrCreate("first")
	r.GetOrCreate("second")
	c := r.List()
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, "second", c.Item(1).Name())
	assert.Nil(t, c.Item(-1))
	assert.Nil(t, c.Item(2))
	assert.Equal(t, "first", c.NamedItem("first").Name())
	assert.Nil(t, c.NamedItem("third"))
}

func TestObservers(t *testing.T) {
	requested := 0
	o := newObservers(func() { requested++ })

	var got []string
	id1 := o.Subscribe("x", func(ev Event) { got = append(got, "one:"+ev.Type) })
	o.Subscribe("x", func(ev Event) { got = append(got, "two:"+ev.Type) })
	o.Subscribe("y", func(ev Event) { got = append(got, "three:"+ev.Type) })
	assert.Equal(t, 3, requested)
	assert.Zero(t, o.Subscribe("x", nil))

	o.Fire(Event{Type: "x"})
	assert.Equal(t, []string{"one:x", "two:x"}, got)

	assert.True(t, o.Unsubscribe("x", id1))
	assert.False(t, o.Unsubscribe("x", id1))
	got = nil
	o.Fire(Event{Type: "x"})
	assert.Equal(t, []string{"two:x"}, got)
	assert.Equal(t, 1, o.Count("x"))
}

func TestObservers_UnsubscribeDuringFire(t *testing.T) {
	o := newObservers(nil)
	calls := 0
	var id Subscription
	id = o.Subscribe("x", func(Event) {
		calls++
		o.Unsubscribe("x", id)
	})
	o.Fire(Event{Type: "x"})
	o.Fire(Event{Type: "x"})
	assert.Equal(t, 1, calls)
}
