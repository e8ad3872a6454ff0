package vector

import (
	"container/heap"
	"sort"
)

// Candidate is one scored entry retained by TopK.
type Candidate struct {
	ID    int64
	Score float64
	// Raw is the unmapped metric Score was derived from, such as cosine
	// similarity.
	Raw float64
	// Order is the position at which the candidate was offered; it breaks
	// score ties so the result is deterministic for a given scan order.
	Order int
}

// TopK keeps the k highest-scoring candidates seen so far.
type TopK struct {
	k       int
	offered int
	h       minHeap
}

// NewTopK returns a selector of capacity k. k <= 0 retains nothing.
func NewTopK(k int) *TopK {
	if k < 0 {
		k = 0
	}
	return &TopK{k: k, h: make(minHeap, 0, k)}
}

// Offer considers a candidate ranked by score and carrying raw. While fewer
// than k are held it is always admitted; afterwards it replaces the current
// minimum only when its score is strictly greater.
func (t *TopK) Offer(id int64, score, raw float64) {
	c := Candidate{ID: id, Score: score, Raw: raw, Order: t.offered}
	t.offered++
	if t.k == 0 {
		return
	}
	if len(t.h) < t.k {
		heap.Push(&t.h, c)
		return
	}
	if score > t.h[0].Score {
		t.h[0] = c
		heap.Fix(&t.h, 0)
	}
}

// Len returns the number of retained candidates.
func (t *TopK) Len() int { return len(t.h) }

// Sorted returns the retained candidates by descending score, ties by offer order.
func (t *TopK) Sorted() []Candidate {
	out := make([]Candidate, len(t.h))
	copy(out, t.h)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Order < out[j].Order
	})
	return out
}

// minHeap orders by ascending score; among equal scores the later offer is
// smaller so it is evicted first.
type minHeap []Candidate

func (h minHeap) Len() int { return len(h) }
func (h minHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	return h[i].Order > h[j].Order
}
func (h minHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x any)   { *h = append(*h, x.(Candidate)) }
func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}
