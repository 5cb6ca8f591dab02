package rank

import "container/heap"

// boundedHeap is a min-heap whose root is the worst-ranked item kept so far.
type boundedHeap[T any] struct {
	items []T
	below func(a, b T) bool
}

func (h *boundedHeap[T]) Len() int           { return len(h.items) }
func (h *boundedHeap[T]) Less(i, j int) bool { return h.below(h.items[i], h.items[j]) }
func (h *boundedHeap[T]) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *boundedHeap[T]) Push(x any) {
	h.items = append(h.items, x.(T))
}

func (h *boundedHeap[T]) Pop() any {
	last := h.items[len(h.items)-1]
	h.items = h.items[:len(h.items)-1]
	return last
}

// selectTop returns the n best items, best first. below(a, b) reports whether a ranks
// strictly below b and must be a total order, so the result does not depend on the
// order of items. n is capped to len(items).
func selectTop[T any](items []T, n int, below func(a, b T) bool) []T {
	n = min(n, len(items))
	if n <= 0 {
		return []T{}
	}

	h := &boundedHeap[T]{items: make([]T, 0, n), below: below}
	for _, item := range items {
		if h.Len() < n {
			heap.Push(h, item)
			continue
		}
		if below(h.items[0], item) {
			h.items[0] = item
			heap.Fix(h, 0)
		}
	}

	// popping yields worst first
	top := make([]T, h.Len())
	for i := len(top) - 1; i >= 0; i-- {
		top[i] = heap.Pop(h).(T)
	}
	return top
}
