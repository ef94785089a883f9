package regions

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regionflow/pkg/html"
)

func TestNodeTable(t *testing.T) {
	tbl := newNodeTable[string]()
	a := html.NewElement("div", nil)
	b := html.NewElement("div", nil)

	_, ok := tbl.get(a)
	assert.False(t, ok)

	tbl.set(a, "block")
	tbl.set(a, "flex")
	tbl.set(b, "inline")
	v, ok := tbl.get(a)
	assert.True(t, ok)
	assert.Equal(t, "flex", v)
	assert.Equal(t, 2, tbl.len())

	tbl.remove(b)
	_, ok = tbl.get(b)
	assert.False(t, ok)
	assert.Equal(t, 1, tbl.len())
	runtime.KeepAlive(a)
}

func TestNodeTable_DropsCollectedNodes(t *testing.T) {
	tbl := newNodeTable[int]()
	func() {
		for i := range 8 {
			tbl.set(html.NewElement("span", nil), i)
		}
	}()
	keep := html.NewElement("p", nil)
	tbl.set(keep, 42)

	require.Eventually(t, func() bool {
		runtime.GC()
		return tbl.len() == 1
	}, 2*time.Second, 10*time.Millisecond)

	v, ok := tbl.get(keep)
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}
