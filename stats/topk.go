package stats

import (
	"container/heap"
	"slices"
)

// TopK returns the k largest items under less, ordered by greater
// (greater(a, b) true means a comes first). The bool reports whether items
// held at least k elements; if not, all items are returned.
//
// Selection uses a bounded heap of size k, so it runs in O(n log k).
func TopK[T any](k int, items []T, less, greater func(a, b T) bool) ([]T, bool) {
	if k <= 0 {
		return nil, len(items) >= k
	}

	h := &boundedHeap[T]{items: make([]T, 0, min(k, len(items))), less: less}
	for _, it := range items {
		if h.Len() < k {
			heap.Push(h, it)
			continue
		}
		if less(h.items[0], it) {
			h.items[0] = it
			heap.Fix(h, 0)
		}
	}

	out := h.items
	slices.SortStableFunc(out, func(a, b T) int {
		switch {
		case greater(a, b):
			return -1
		case greater(b, a):
			return 1
		}
		return 0
	})
	return out, len(items) >= k
}

// boundedHeap keeps the smallest retained item at the root.
type boundedHeap[T any] struct {
	items []T
	less  func(a, b T) bool
}

func (h *boundedHeap[T]) Len() int           { return len(h.items) }
func (h *boundedHeap[T]) Less(i, j int) bool { return h.less(h.items[i], h.items[j]) }
func (h *boundedHeap[T]) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *boundedHeap[T]) Push(x any)         { h.items = append(h.items, x.(T)) }

func (h *boundedHeap[T]) Pop() any {
	n := len(h.items)
	it := h.items[n-1]
	h.items = h.items[:n-1]
	return it
}
