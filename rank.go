package fnbound

import (
	"container/heap"
	"slices"
)

// Ranked is one binary's value for a ranked metric.
type Ranked struct {
	Binary string  `json:"binary" yaml:"binary"`
	Value  float64 `json:"value" yaml:"value"`
	// Share is Value relative to the binary's ground-truth count. It is only
	// set for count metrics.
	Share float64 `json:"share,omitempty" yaml:"share,omitempty"`
}

// rankHeap keeps the k best-ranked items seen so far. Its root is the
// worst-ranked of them, so a better candidate replaces it in O(log k).
type rankHeap struct {
	items  []Ranked
	before func(a, b Ranked) bool
}

func (h *rankHeap) Len() int           { return len(h.items) }
func (h *rankHeap) Less(i, j int) bool { return h.before(h.items[j], h.items[i]) }
func (h *rankHeap) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *rankHeap) Push(x any)         { h.items = append(h.items, x.(Ranked)) }

func (h *rankHeap) Pop() any {
	old := h.items
	n := len(old)
	x := old[n-1]
	h.items = old[:n-1]
	return x
}

// selectTop returns the k items that rank first under before, in rank order.
// before must be a strict total order.
func selectTop(items []Ranked, k int, before func(a, b Ranked) bool) []Ranked {
	if k <= 0 {
		return nil
	}
	h := &rankHeap{items: make([]Ranked, 0, k), before: before}
	for _, it := range items {
		if h.Len() < k {
			heap.Push(h, it)
			continue
		}
		if before(it, h.items[0]) {
			h.items[0] = it
			heap.Fix(h, 0)
		}
	}

	out := h.items
	slices.SortFunc(out, func(a, b Ranked) int {
		switch {
		case before(a, b):
			return -1
		case before(b, a):
			return 1
		}
		return 0
	})
	return out
}

// highestFirst ranks larger values first, ties by binary name.
func highestFirst(a, b Ranked) bool {
	if a.Value != b.Value {
		return a.Value > b.Value
	}
	return a.Binary < b.Binary
}

// lowestFirst ranks smaller values first, ties by binary name.
func lowestFirst(a, b Ranked) bool {
	if a.Value != b.Value {
		return a.Value < b.Value
	}
	return a.Binary < b.Binary
}
