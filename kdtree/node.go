package kdtree

// Kind records how a node hangs off its parent.
type Kind uint8

const (
	Root Kind = iota
	LeftChild
	RightChild
)

func (k Kind) String() string {
	switch k {
	case Root:
		return "root"
	case LeftChild:
		return "left"
	case RightChild:
		return "right"
	}
	return "unknown"
}

func (k Kind) opposite() Kind {
	switch k {
	case LeftChild:
		return RightChild
	case RightChild:
		return LeftChild
	}
	return Root
}

const (
	absent    = 0
	rootIndex = 1
)

// Node is a single arena slot. Parent, Left and Right are arena handles;
// zero means absent.
type Node[P any] struct {
	Point     P
	Kind      Kind
	Parent    int
	Left      int
	Right     int
	Dimension int
	Level     int
}

// child returns the handle stored on the kind side, or absent.
func (n *Node[P]) child(kind Kind) int {
	switch kind {
	case LeftChild:
		return n.Left
	case RightChild:
		return n.Right
	}
	return absent
}

func (n *Node[P]) attach(kind Kind, index int) {
	if kind == LeftChild {
		n.Left = index
		return
	}
	n.Right = index
}
