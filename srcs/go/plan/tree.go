package plan

import (
	"fmt"
	"strings"
)

// Tree is a spanning tree over ranks 0..n-1 stored as parent links.
type Tree struct {
	Root     int
	parent   []int
	children [][]int
}

// BinaryTree places rank (i + root) mod size at heap position i, so that
// root is at the top and every rank has at most two children.
func BinaryTree(size, root int) (*Tree, error) {
	if size < 1 || root < 0 || root >= size {
		return nil, fmt.Errorf("%w: root %d of %d", errInvalidRank, root, size)
	}
	t := &Tree{
		Root:     root,
		parent:   make([]int, size),
		children: make([][]int, size),
	}
	at := func(i int) int { return (i + root) % size }
	t.parent[root] = -1
	for i := 1; i < size; i++ {
		p, c := at((i-1)/2), at(i)
		t.parent[c] = p
		t.children[p] = append(t.children[p], c)
	}
	return t, nil
}

func (t *Tree) Size() int { return len(t.parent) }

// Parent returns false for the root.
func (t *Tree) Parent(rank int) (int, bool) {
	p := t.parent[rank]
	return p, p >= 0
}

// Children are in heap order.
func (t *Tree) Children(rank int) []int { return t.children[rank] }

func (t *Tree) String() string {
	var parts []string
	for r, cs := range t.children {
		if len(cs) > 0 {
			parts = append(parts, fmt.Sprintf("%d->%v", r, cs))
		}
	}
	return fmt.Sprintf("tree(%d)[%s]", t.Root, strings.Join(parts, " "))
}
