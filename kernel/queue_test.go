package kernel

import "testing"

// node is a minimal linked[*node] implementation used only to exercise
// fifo in isolation, without dragging in Process or Block.
type node struct {
	id   int
	next *node
}

func (n *node) getNext() *node  { return n.next }
func (n *node) setNext(m *node) { n.next = m }

func drain(q *fifo[*node]) []int {
	var ids []int
	for !q.Empty() {
		ids = append(ids, q.PopFront().id)
	}
	return ids
}

func TestFifoPushBackIsFIFO(t *testing.T) {
	q := newFifo[*node]()
	q.PushBack(&node{id: 1})
	q.PushBack(&node{id: 2})
	q.PushBack(&node{id: 3})

	got := drain(q)
	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestFifoPushFrontJumpsQueue(t *testing.T) {
	q := newFifo[*node]()
	q.PushBack(&node{id: 1})
	q.PushBack(&node{id: 2})
	q.PushFront(&node{id: 0})

	got := drain(q)
	want := []int{0, 1, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestFifoEmptyAfterDraining(t *testing.T) {
	q := newFifo[*node]()
	if !q.Empty() {
		t.Fatal("new queue should be empty")
	}
	q.PushBack(&node{id: 1})
	if q.Empty() {
		t.Fatal("queue with one item should not be empty")
	}
	q.PopFront()
	if !q.Empty() {
		t.Fatal("queue should be empty after popping its only item")
	}
}

func TestFifoRemoveAtHeadMiddleTail(t *testing.T) {
	head, mid, tail := &node{id: 1}, &node{id: 2}, &node{id: 3}

	q := newFifo[*node]()
	q.PushBack(head)
	q.PushBack(mid)
	q.PushBack(tail)
	if !q.RemoveAt(mid) {
		t.Fatal("expected to find mid")
	}
	if got := drain(q); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("got %v, want [1 3]", got)
	}

	q2 := newFifo[*node]()
	q2.PushBack(head)
	q2.PushBack(mid)
	q2.PushBack(tail)
	if !q2.RemoveAt(head) {
		t.Fatal("expected to find head")
	}
	if got := drain(q2); len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Fatalf("got %v, want [2 3]", got)
	}

	q3 := newFifo[*node]()
	q3.PushBack(head)
	q3.PushBack(mid)
	q3.PushBack(tail)
	if !q3.RemoveAt(tail) {
		t.Fatal("expected to find tail")
	}
	// Removing the tail must fix up q3.last; pushing again should still work.
	q3.PushBack(&node{id: 4})
	if got := drain(q3); len(got) != 3 || got[2] != 4 {
		t.Fatalf("got %v, want [1 2 4]", got)
	}
}

func TestFifoRemoveAtNotFound(t *testing.T) {
	q := newFifo[*node]()
	q.PushBack(&node{id: 1})
	if q.RemoveAt(&node{id: 99}) {
		t.Fatal("RemoveAt should report false for a node never pushed")
	}
}
