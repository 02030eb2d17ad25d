// Package pqueue provides an indexed min-priority queue over small dense
// integer ids such as mesh element ids.
package pqueue

import (
	"container/heap"
	"fmt"

	"golang.org/x/exp/constraints"
)

const absent = -1

type node[P constraints.Float] struct {
	id       int
	priority P
}

// nodeHeap implements heap.Interface and keeps the id->slot index current.
type nodeHeap[P constraints.Float] struct {
	nodes []node[P]
	index []int
}

func (h *nodeHeap[P]) Len() int           { return len(h.nodes) }
func (h *nodeHeap[P]) Less(i, j int) bool { return h.nodes[i].priority < h.nodes[j].priority }
func (h *nodeHeap[P]) Swap(i, j int) {
	h.nodes[i], h.nodes[j] = h.nodes[j], h.nodes[i]
	h.index[h.nodes[i].id] = i
	h.index[h.nodes[j].id] = j
}

func (h *nodeHeap[P]) Push(x any) {
	n := x.(node[P])
	h.index[n.id] = len(h.nodes)
	h.nodes = append(h.nodes, n)
}

func (h *nodeHeap[P]) Pop() any {
	last := len(h.nodes) - 1
	n := h.nodes[last]
	h.nodes = h.nodes[:last]
	h.index[n.id] = absent
	return n
}

// Indexed is a min-heap of ids keyed by priority. Each id is present at most
// once and its priority may be changed in place. The zero value is an empty
// queue; ids grow the index table on demand.
type Indexed[P constraints.Float] struct {
	h nodeHeap[P]
}

// Initialize empties the queue and sizes the index table for ids in [0, maxID).
func (q *Indexed[P]) Initialize(maxID int) {
	q.h.nodes = q.h.nodes[:0]
	if cap(q.h.index) >= maxID {
		q.h.index = q.h.index[:maxID]
	} else {
		q.h.index = make([]int, maxID)
	}
	for i := range q.h.index {
		q.h.index[i] = absent
	}
}

// Clear removes every entry, keeping the index table.
func (q *Indexed[P]) Clear() { q.Initialize(len(q.h.index)) }

// Len returns the number of queued ids.
func (q *Indexed[P]) Len() int { return len(q.h.nodes) }

// Contains reports whether id is queued.
func (q *Indexed[P]) Contains(id int) bool {
	return id >= 0 && id < len(q.h.index) && q.h.index[id] != absent
}

// Insert queues id with the given priority. Inserting a queued id panics.
func (q *Indexed[P]) Insert(id int, priority P) {
	if id < 0 {
		panic(fmt.Sprintf("pqueue: negative id %d", id))
	}
	if q.Contains(id) {
		panic(fmt.Sprintf("pqueue: id %d already queued", id))
	}
	for len(q.h.index) <= id {
		q.h.index = append(q.h.index, absent)
	}
	heap.Push(&q.h, node[P]{id: id, priority: priority})
}

// Update changes the priority of a queued id. It is a no-op for absent ids.
func (q *Indexed[P]) Update(id int, priority P) {
	if !q.Contains(id) {
		return
	}
	i := q.h.index[id]
	q.h.nodes[i].priority = priority
	heap.Fix(&q.h, i)
}

// Remove drops id from the queue if present.
func (q *Indexed[P]) Remove(id int) {
	if q.Contains(id) {
		heap.Remove(&q.h, q.h.index[id])
	}
}

// Priority returns the queued priority of id.
func (q *Indexed[P]) Priority(id int) (P, bool) {
	if !q.Contains(id) {
		return 0, false
	}
	return q.h.nodes[q.h.index[id]].priority, true
}

// FirstPriority returns the minimum priority without removing it.
// It panics on an empty queue.
func (q *Indexed[P]) FirstPriority() P { return q.h.nodes[0].priority }

// First returns the id with the minimum priority without removing it.
// It panics on an empty queue.
func (q *Indexed[P]) First() int { return q.h.nodes[0].id }

// Dequeue removes and returns the id with the minimum priority.
// It panics on an empty queue.
func (q *Indexed[P]) Dequeue() int {
	if len(q.h.nodes) == 0 {
		panic("pqueue: dequeue from empty queue")
	}
	return heap.Pop(&q.h).(node[P]).id
}
