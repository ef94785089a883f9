package regions

import (
	"runtime"
	"sync"
	"weak"

	"regionflow/pkg/html"
)

// nodeTable attaches bookkeeping to document nodes without holding them
// alive. An entry is dropped once its node has been collected.
type nodeTable[T any] struct {
	mu sync.Mutex
	m  map[weak.Pointer[html.Node]]T
}

func newNodeTable[T any]() *nodeTable[T] {
	return &nodeTable[T]{m: make(map[weak.Pointer[html.Node]]T)}
}

func (t *nodeTable[T]) get(n *html.Node) (T, bool) {
	key := weak.Make(n)
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.m[key]
	return v, ok
}

func (t *nodeTable[T]) set(n *html.Node, v T) {
	key := weak.Make(n)
	t.mu.Lock()
	_, seen := t.m[key]
	t.m[key] = v
	t.mu.Unlock()
	if !seen {
		// cleanups run on their own goroutine, hence the mutex
		runtime.AddCleanup(n, t.delete, key)
	}
}

func (t *nodeTable[T]) remove(n *html.Node) {
	t.delete(weak.Make(n))
}

func (t *nodeTable[T]) delete(key weak.Pointer[html.Node]) {
	t.mu.Lock()
	delete(t.m, key)
	t.mu.Unlock()
}

func (t *nodeTable[T]) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.m)
}
