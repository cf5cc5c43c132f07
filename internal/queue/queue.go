// Package queue provides the bounded top-k heap used for candidate scoring.
package queue

// Item is a scored corpus index.
type Item struct {
	ID    uint32  // ID is the corpus index.
	Score float32 // Score is the similarity; larger is better.
}

// Better reports whether a ranks before b: higher score first,
// lower ID on equal scores.
func Better(a, b Item) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.ID < b.ID
}

// TopK keeps the k best items seen so far.
// The worst retained item sits at the root so it can be evicted in O(log k).
// Value-based storage, not safe for concurrent use.
type TopK struct {
	k     int
	items []Item
}

// NewTopK returns an empty TopK retaining at most k items.
func NewTopK(k int) *TopK {
	return &TopK{
		k:     k,
		items: make([]Item, 0, max(k, 0)),
	}
}

// Len returns the number of retained items.
func (q *TopK) Len() int { return len(q.items) }

// Cap returns k.
func (q *TopK) Cap() int { return q.k }

// Full reports whether k items are retained.
func (q *TopK) Full() bool { return len(q.items) >= q.k }

// Worst returns the lowest-ranked retained item.
func (q *TopK) Worst() (Item, bool) {
	if len(q.items) == 0 {
		return Item{}, false
	}
	return q.items[0], true
}

// Push offers item and reports whether it was retained.
func (q *TopK) Push(item Item) bool {
	if q.k <= 0 {
		return false
	}
	if len(q.items) < q.k {
		q.items = append(q.items, item)
		q.siftUp(len(q.items) - 1)
		return true
	}
	if !Better(item, q.items[0]) {
		return false
	}
	q.items[0] = item
	q.siftDown(0)
	return true
}

// Merge offers every item of other to q.
func (q *TopK) Merge(other *TopK) {
	for _, it := range other.items {
		q.Push(it)
	}
}

// Drain empties the queue and returns its items best first.
func (q *TopK) Drain() []Item {
	out := make([]Item, len(q.items))
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = q.pop()
	}
	return out
}

// Reset clears the queue for reuse.
func (q *TopK) Reset() {
	q.items = q.items[:0]
}

func (q *TopK) pop() Item {
	n := len(q.items)
	root := q.items[0]
	q.items[0] = q.items[n-1]
	q.items = q.items[:n-1]
	if n-1 > 0 {
		q.siftDown(0)
	}
	return root
}

// worse orders the heap: the root is the item every other item beats.
func (q *TopK) worse(i, j int) bool {
	return Better(q.items[j], q.items[i])
}

func (q *TopK) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !q.worse(i, p) {
			return
		}
		q.items[i], q.items[p] = q.items[p], q.items[i]
		i = p
	}
}

func (q *TopK) siftDown(i int) {
	n := len(q.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		w := l
		r := l + 1
		if r < n && q.worse(r, l) {
			w = r
		}
		if !q.worse(w, i) {
			return
		}
		q.items[i], q.items[w] = q.items[w], q.items[i]
		i = w
	}
}
