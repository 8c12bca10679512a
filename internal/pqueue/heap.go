// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package pqueue provides a binary min-heap with a caller-supplied comparator.
package pqueue

// Node is a heap entry. InsertionID is assigned by the owner of the heap and
// is typically used as a tie-breaker by the comparator.
type Node[T, M any] struct {
	Data        T   `json:"data"`
	Metric      M   `json:"metric"`
	InsertionID int `json:"insertion_id"`
}

// Less reports whether a must be popped before b.
type Less[T, M any] func(a, b *Node[T, M]) bool

// Heap is a binary heap ordered by a Less function.
// It is not safe for concurrent use.
type Heap[T, M any] struct {
	nodes []Node[T, M]
	less  Less[T, M]
}

// New creates an empty heap ordered by less.
// Panics if less is nil.
func New[T, M any](less Less[T, M]) *Heap[T, M] {
	if less == nil {
		panic("pqueue.New: less cannot be nil")
	}
	return &Heap[T, M]{less: less}
}

// Len returns the number of nodes in the heap.
func (h *Heap[T, M]) Len() int {
	return len(h.nodes)
}

// Push inserts a node.
func (h *Heap[T, M]) Push(n Node[T, M]) {
	h.nodes = append(h.nodes, n)
	h.up(len(h.nodes) - 1)
}

// Peek returns the minimal node without removing it.
func (h *Heap[T, M]) Peek() (Node[T, M], bool) {
	if len(h.nodes) == 0 {
		return Node[T, M]{}, false
	}
	return h.nodes[0], true
}

// Pop removes and returns the minimal node.
func (h *Heap[T, M]) Pop() (Node[T, M], bool) {
	if len(h.nodes) == 0 {
		return Node[T, M]{}, false
	}
	top := h.nodes[0]
	h.removeAt(0)
	return top, true
}

// Find returns the first node, in backing-array order, for which match
// returns true.
func (h *Heap[T, M]) Find(match func(Node[T, M]) bool) (Node[T, M], bool) {
	for _, n := range h.nodes {
		if match(n) {
			return n, true
		}
	}
	return Node[T, M]{}, false
}

// Remove deletes the first node for which match returns true and reports
// whether one was found. The last node takes the freed slot and is sifted
// into place, so callers that need a specific node must supply a predicate
// that selects exactly one node.
func (h *Heap[T, M]) Remove(match func(Node[T, M]) bool) bool {
	for i := range h.nodes {
		if match(h.nodes[i]) {
			h.removeAt(i)
			return true
		}
	}
	return false
}

// Each calls fn with a pointer to every node, in backing-array order.
// fn may mutate a node only in a way that keeps the relative order of all
// nodes unchanged, such as shifting every metric by the same amount.
func (h *Heap[T, M]) Each(fn func(n *Node[T, M])) {
	for i := range h.nodes {
		fn(&h.nodes[i])
	}
}

// Clear removes every node.
func (h *Heap[T, M]) Clear() {
	h.nodes = nil
}

// State returns a copy of the backing array.
func (h *Heap[T, M]) State() []Node[T, M] {
	out := make([]Node[T, M], len(h.nodes))
	copy(out, h.nodes)
	return out
}

// Restore replaces the heap contents with nodes, pushing them one by one.
func (h *Heap[T, M]) Restore(nodes []Node[T, M]) {
	h.Clear()
	for _, n := range nodes {
		h.Push(n)
	}
}

func (h *Heap[T, M]) removeAt(i int) {
	last := len(h.nodes) - 1
	if i != last {
		h.nodes[i] = h.nodes[last]
	}
	var zero Node[T, M]
	h.nodes[last] = zero
	h.nodes = h.nodes[:last]
	if i < len(h.nodes) {
		if !h.down(i) {
			h.up(i)
		}
	}
}

func (h *Heap[T, M]) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(&h.nodes[i], &h.nodes[parent]) {
			return
		}
		h.nodes[i], h.nodes[parent] = h.nodes[parent], h.nodes[i]
		i = parent
	}
}

// down sifts the node at i toward the leaves and reports whether it moved.
func (h *Heap[T, M]) down(i int) bool {
	start := i
	n := len(h.nodes)
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		smallest := left
		if right := left + 1; right < n && h.less(&h.nodes[right], &h.nodes[left]) {
			smallest = right
		}
		if !h.less(&h.nodes[smallest], &h.nodes[i]) {
			break
		}
		h.nodes[i], h.nodes[smallest] = h.nodes[smallest], h.nodes[i]
		i = smallest
	}
	return i > start
}
