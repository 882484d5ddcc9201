package list

// Node is one element of a chain. A node owns its successor.
type Node struct {
	Value string
	Next  *Node
}

// Len counts the nodes reachable from head.
func Len(head *Node) int {
	n := 0
	for node := head; node != nil; node = node.Next {
		n++
	}
	return n
}

// Last walks to the final node of the chain, or nil for an empty chain.
func Last(head *Node) *Node {
	if head == nil {
		return nil
	}
	node := head
	for node.Next != nil {
		node = node.Next
	}
	return node
}

// Values copies the chain's values in traversal order.
func Values(head *Node) []string {
	var out []string
	for node := head; node != nil; node = node.Next {
		out = append(out, node.Value)
	}
	return out
}

// Reverse flips every successor link in place and returns the new head.
// The old head becomes the last node.
func Reverse(head *Node) *Node {
	var prev *Node
	cur := head
	for cur != nil {
		next := cur.Next
		cur.Next = prev
		prev = cur
		cur = next
	}
	return prev
}

// Split cuts the chain after its first n nodes and returns the head of the
// remainder. The chain starting at head is left with at most n nodes.
func Split(head *Node, n int) *Node {
	if head == nil || n <= 0 {
		return head
	}
	node := head
	for i := 1; i < n && node.Next != nil; i++ {
		node = node.Next
	}
	rest := node.Next
	node.Next = nil
	return rest
}

// merge combines two ascending chains into one and returns its first and last
// nodes. On equal values the node from a comes first.
func merge(a, b *Node) (head, tail *Node) {
	link := &head
	for a != nil && b != nil {
		if a.Value <= b.Value {
			tail, a = a, a.Next
		} else {
			tail, b = b, b.Next
		}
		*link = tail
		link = &tail.Next
	}

	rest := a
	if rest == nil {
		rest = b
	}
	*link = rest
	if rest != nil {
		tail = Last(rest)
	}
	return head, tail
}

// Sort orders the chain ascending by byte-wise comparison of values and
// returns its new first and last nodes.
func Sort(head *Node) (*Node, *Node) {
	if head == nil || head.Next == nil {
		return head, head
	}

	n := Len(head)
	var tail *Node
	for width := 1; width < n; width *= 2 {
		var sorted *Node
		tail = nil
		cur := head
		for cur != nil {
			left := cur
			right := Split(left, width)
			cur = Split(right, width)

			h, t := merge(left, right)
			if tail == nil {
				sorted = h
			} else {
				tail.Next = h
			}
			tail = t
		}
		head = sorted
	}
	return head, tail
}
