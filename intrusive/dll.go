package intrusive

// Node is an intrusive doubly-linked list node, embedded as a field of the
// owning T. It is not safe for concurrent use; every list it belongs to must
// be mutated from a single thread.
type Node[T any] struct {
	prev, next *Node[T]
	owner      *T
}

// NewNode returns a node owned by the given value, initially unlinked.
func NewNode[T any](owner *T) *Node[T] {
	return &Node[T]{owner: owner}
}

// Owner returns the value this node is embedded in.
func (n *Node[T]) Owner() *T { return n.owner }

// IsUnlinked reports whether the node is not currently a member of any list.
func (n *Node[T]) IsUnlinked() bool { return n.next == nil }

func (n *Node[T]) assertUnlinked() {
	if n.next != nil {
		panic("intrusive: node already linked")
	}
}

func (n *Node[T]) unlinkFields() {
	n.prev = nil
	n.next = nil
}

// List is a circular doubly-linked list with a sentinel head node. The zero
// value is not ready for use; call NewList.
type List[T any] struct {
	sentinel Node[T]
}

// NewList returns an empty list.
func NewList[T any]() *List[T] {
	l := &List[T]{}
	l.sentinel.prev = &l.sentinel
	l.sentinel.next = &l.sentinel
	return l
}

// IsEmpty reports whether the list has no members.
func (l *List[T]) IsEmpty() bool {
	return l.sentinel.next == &l.sentinel
}

// InsertAfter links n immediately after at, which must currently be a member
// of this list (or the sentinel). n must be unlinked.
func (l *List[T]) InsertAfter(at, n *Node[T]) {
	n.assertUnlinked()
	next := at.next
	n.prev = at
	n.next = next
	at.next = n
	next.prev = n
}

// InsertBefore links n immediately before at, which must currently be a
// member of this list (or the sentinel). n must be unlinked.
func (l *List[T]) InsertBefore(at, n *Node[T]) {
	l.InsertAfter(at.prev, n)
}

// Append links n as the new tail of the list.
func (l *List[T]) Append(n *Node[T]) {
	l.InsertBefore(&l.sentinel, n)
}

// Prepend links n as the new head of the list.
func (l *List[T]) Prepend(n *Node[T]) {
	l.InsertAfter(&l.sentinel, n)
}

// Unlink removes n from whichever list it is a member of. n must be a member
// of this list.
func (l *List[T]) Unlink(n *Node[T]) {
	if n.IsUnlinked() {
		return
	}
	n.prev.next = n.next
	n.next.prev = n.prev
	n.unlinkFields()
}

// PopFront removes and returns the owner of the first node, if any.
func (l *List[T]) PopFront() (*T, bool) {
	if l.IsEmpty() {
		return nil, false
	}
	n := l.sentinel.next
	l.Unlink(n)
	return n.owner, true
}

// PopBack removes and returns the owner of the last node, if any.
func (l *List[T]) PopBack() (*T, bool) {
	if l.IsEmpty() {
		return nil, false
	}
	n := l.sentinel.prev
	l.Unlink(n)
	return n.owner, true
}

// TakeFrom splices other's entire membership into l, leaving other empty.
// l must be empty.
func (l *List[T]) TakeFrom(other *List[T]) {
	if !l.IsEmpty() {
		panic("intrusive: TakeFrom requires an empty destination list")
	}
	if other.IsEmpty() {
		return
	}
	first := other.sentinel.next
	last := other.sentinel.prev

	l.sentinel.next = first
	first.prev = &l.sentinel
	l.sentinel.prev = last
	last.next = &l.sentinel

	other.sentinel.next = &other.sentinel
	other.sentinel.prev = &other.sentinel
}

// Each calls fn for every member, front to back. fn must not mutate the list.
func (l *List[T]) Each(fn func(*T)) {
	for n := l.sentinel.next; n != &l.sentinel; n = n.next {
		fn(n.owner)
	}
}
