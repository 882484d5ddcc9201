// Package stringqueue implements a queue of strings on an owning singly linked
// chain. It supports insertion at both ends, removal at the head into a
// caller-supplied buffer, in-place reversal and in-place ascending sort.
//
// A nil *Queue stands for an absent queue: every method accepts it and
// reports failure or does nothing. The queue is not safe for concurrent use.
package stringqueue

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/timzifer/string_queue/internal/alloc"
	"github.com/timzifer/string_queue/internal/list"
)

// Block sizes charged to the allocator for the queue header and for each node.
// A stored value is charged separately at len(value)+1.
const (
	headerSize = 32
	nodeSize   = 24
)

// ErrNoQueue is returned by Check for a nil or freed queue.
var ErrNoQueue = errors.New("stringqueue: no queue")

// Queue owns a chain of string nodes plus cached head, tail and size.
type Queue struct {
	head  *list.Node
	tail  *list.Node
	size  int
	alloc alloc.Allocator
}

// New creates an empty queue. It returns nil if the allocator refuses the
// queue header.
func New(options ...Option) *Queue {
	opts := defaultOptions()
	for _, opt := range options {
		opt(&opts)
	}
	if opts.Allocator == nil {
		opts.Allocator = defaultOptions().Allocator
	}

	if !opts.Allocator.Reserve(headerSize) {
		return nil
	}
	return &Queue{alloc: opts.Allocator}
}

// Free releases every node, every stored value and the queue itself. A freed
// queue behaves like a nil queue.
func (q *Queue) Free() {
	if !q.live() {
		return
	}

	for q.head != nil {
		node := q.head
		q.head = node.Next
		q.releaseNode(node)
	}
	q.tail = nil
	q.size = 0

	q.alloc.Release(headerSize)
	q.alloc = nil
}

// InsertHead stores a copy of s in front of the current head.
// It returns false if q is nil or storage for the copy cannot be reserved.
func (q *Queue) InsertHead(s string) bool {
	if !q.live() {
		return false
	}
	node := q.newNode(s)
	if node == nil {
		return false
	}

	node.Next = q.head
	q.head = node
	if q.size == 0 {
		q.tail = node
	}
	q.size++
	return true
}

// InsertTail stores a copy of s after the current tail.
// It returns false if q is nil or storage for the copy cannot be reserved.
func (q *Queue) InsertTail(s string) bool {
	if !q.live() {
		return false
	}
	node := q.newNode(s)
	if node == nil {
		return false
	}

	if q.size == 0 {
		q.head = node
	} else {
		q.tail.Next = node
	}
	q.tail = node
	q.size++
	return true
}

// RemoveHead detaches the head node and copies its value into buf, truncated
// to len(buf)-1 bytes and followed by a NUL byte. An empty non-nil buf
// receives nothing but the node is still removed. It returns false, leaving
// the queue untouched, if q is nil, buf is nil or the queue is empty.
func (q *Queue) RemoveHead(buf []byte) bool {
	if !q.live() || buf == nil || q.head == nil {
		return false
	}

	node := q.detachHead()
	copyTerminated(buf, node.Value)
	q.releaseNode(node)
	return true
}

// PopHead removes the head node and returns its full value.
func (q *Queue) PopHead() (string, bool) {
	if !q.live() || q.head == nil {
		return "", false
	}

	node := q.detachHead()
	value := node.Value
	q.releaseNode(node)
	return value, true
}

// Size returns the number of stored values, or 0 for a nil queue.
func (q *Queue) Size() int {
	if !q.live() {
		return 0
	}
	return q.size
}

// Head returns the value at the front without removing it.
func (q *Queue) Head() (string, bool) {
	if !q.live() || q.head == nil {
		return "", false
	}
	return q.head.Value, true
}

// Tail returns the value at the back without removing it.
func (q *Queue) Tail() (string, bool) {
	if !q.live() || q.tail == nil {
		return "", false
	}
	return q.tail.Value, true
}

// Values returns a copy of the stored values from head to tail.
func (q *Queue) Values() []string {
	if !q.live() {
		return nil
	}
	return list.Values(q.head)
}

// Reverse flips the order of the queue in place. The old head becomes the
// tail and the old tail becomes the head. No node is created or released.
func (q *Queue) Reverse() {
	if !q.live() || q.head == nil {
		return
	}
	q.tail = q.head
	q.head = list.Reverse(q.head)
}

// Sort orders the queue ascending by byte-wise comparison. Equal values keep
// their relative order. No node is created or released.
func (q *Queue) Sort() {
	if !q.live() || q.size < 2 {
		return
	}
	q.head, q.tail = list.Sort(q.head)
}

// Check verifies that size, head and tail agree with the chain.
func (q *Queue) Check() error {
	if !q.live() {
		return ErrNoQueue
	}
	if (q.head == nil) != (q.tail == nil) {
		return errors.Errorf("head present=%t but tail present=%t", q.head != nil, q.tail != nil)
	}

	count := 0
	var last *list.Node
	for node := q.head; node != nil; node = node.Next {
		count++
		if count > q.size {
			return errors.Errorf("more than %d nodes reachable from head", q.size)
		}
		last = node
	}
	if count != q.size {
		return errors.Errorf("size is %d but %d nodes are reachable", q.size, count)
	}
	if last != q.tail {
		return errors.New("tail is not the last reachable node")
	}
	return nil
}

func (q *Queue) live() bool {
	return q != nil && q.alloc != nil
}

func (q *Queue) newNode(s string) *list.Node {
	if !q.alloc.Reserve(nodeSize) {
		return nil
	}
	if !q.alloc.Reserve(len(s) + 1) {
		q.alloc.Release(nodeSize)
		return nil
	}
	return &list.Node{Value: strings.Clone(s)}
}

func (q *Queue) releaseNode(node *list.Node) {
	q.alloc.Release(len(node.Value) + 1)
	q.alloc.Release(nodeSize)
	node.Next = nil
}

func (q *Queue) detachHead() *list.Node {
	node := q.head
	q.head = node.Next
	if q.head == nil {
		q.tail = nil
	}
	q.size--
	return node
}

func copyTerminated(dst []byte, value string) {
	if len(dst) == 0 {
		return
	}
	n := copy(dst[:len(dst)-1], value)
	dst[n] = 0
}
