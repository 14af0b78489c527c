package tree

import (
	"github.com/benz9527/xbst/lib/infra"
)

type bstNode[T any] struct {
	parent *bstNode[T]
	left   *bstNode[T]
	right  *bstNode[T]
	val    T
}

func (node *bstNode[T]) Val() T {
	return node.val
}

func (node *bstNode[T]) Left() BSTNode[T] {
	if node == nil || node.left == nil {
		return nil
	}
	return node.left
}

func (node *bstNode[T]) Right() BSTNode[T] {
	if node == nil || node.right == nil {
		return nil
	}
	return node.right
}

func (node *bstNode[T]) Parent() BSTNode[T] {
	if node == nil || node.parent == nil {
		return nil
	}
	return node.parent
}

func (node *bstNode[T]) minimum() *bstNode[T] {
	aux := node
	for ; aux != nil && aux.left != nil; aux = aux.left {
	}
	return aux
}

func (node *bstNode[T]) maximum() *bstNode[T] {
	aux := node
	for ; aux != nil && aux.right != nil; aux = aux.right {
	}
	return aux
}

func (node *bstNode[T]) unlink() {
	node.parent, node.left, node.right = nil, nil, nil
}

type bsTree[T any] struct {
	root   *bstNode[T]
	count  int64
	cmp    infra.Comparator[T]
	isDesc bool
	stats  *bstStats
}

func (tree *bsTree[T]) Len() int64 {
	return tree.count
}

func (tree *bsTree[T]) Root() BSTNode[T] {
	if tree.root == nil {
		return nil
	}
	return tree.root
}

func (tree *bsTree[T]) Insert(val T) {
	var x, y *bstNode[T] = tree.root, nil
	isLeft, depth := false, int64(0)
	for x != nil {
		y = x
		depth++
		if /* less */ tree.cmp(val, x.val) < 0 {
			x, isLeft = x.left, true
		} else /* greater or equal, ties go right */ {
			x, isLeft = x.right, false
		}
	}

	z := &bstNode[T]{
		val:    val,
		parent: y,
	}
	switch {
	case y == nil:
		tree.root = z
	case isLeft:
		y.left = z
	default:
		y.right = z
	}
	tree.count++
	tree.stats.recordInsert(depth)
}

// search never compares against an absent node: one three-way comparison
// per step, then advance or return.
func (tree *bsTree[T]) search(key T) (*bstNode[T], int64) {
	depth := int64(0)
	for aux := tree.root; aux != nil; {
		depth++
		res := tree.cmp(key, aux.val)
		if res == 0 {
			return aux, depth
		} else if res < 0 {
			aux = aux.left
		} else {
			aux = aux.right
		}
	}
	return nil, depth
}

func (tree *bsTree[T]) Find(key T) (BSTNode[T], error) {
	x, depth := tree.search(key)
	tree.stats.recordFind(x != nil, depth)
	if x == nil {
		return nil, ErrBSTKeyNotFound
	}
	return x, nil
}

func (tree *bsTree[T]) Minimum() (BSTNode[T], error) {
	if tree.root == nil {
		return nil, ErrBSTEmpty
	}
	return tree.root.minimum(), nil
}

func (tree *bsTree[T]) Maximum() (BSTNode[T], error) {
	if tree.root == nil {
		return nil, ErrBSTEmpty
	}
	return tree.root.maximum(), nil
}

func (tree *bsTree[T]) Remove(key T) (T, error) {
	x, depth := tree.search(key)
	tree.stats.recordRemove(x != nil, depth)
	if x == nil {
		var zero T
		return zero, ErrBSTKeyNotFound
	}
	tree.removeNode(x)
	tree.count--
	return x.val, nil
}

// transplant puts the subtree v into u's slot under u's parent.
// u keeps its own links, v may be nil.
func (tree *bsTree[T]) transplant(u, v *bstNode[T]) {
	switch {
	case u.parent == nil:
		tree.root = v
	case u == u.parent.left:
		u.parent.left = v
	default:
		u.parent.right = v
	}
	if v != nil {
		v.parent = u.parent
	}
}

/*
r1: X has no child, the nil right subtree is transplanted, X is detached.

r2: X has only one child, the child subtree is transplanted into X's slot.

	  |              |
	  X              L
	 /     ====>    / \
	L              ..  ..

r3: X has two children. Y is the successor (the minimum of X.right) and Y
has no left child. Promote Y.right into Y's slot, hand X.right to Y, then
relocate Y into X's slot and hand X.left to Y.

	  |                         |
	  X                         Y
	 / \                       / \
	L   R                     L   R
	   / \       ====>           / \
	  Y  ..                     Yr  ..
	   \
	   Yr

When Y is X.right itself the promotion rewrites X.right to Yr, so handing
X.right back to Y restores Y.right == Yr.

	  |                   |
	  X                   Y
	 / \      ====>      / \
	L   Y               L   Yr
	     \
	     Yr
*/
func (tree *bsTree[T]) removeNode(x *bstNode[T]) {
	switch {
	case /* r1, r2 */ x.left == nil:
		tree.transplant(x, x.right)
	case /* r2 */ x.right == nil:
		tree.transplant(x, x.left)
	default /* r3 */ :
		y := x.right.minimum()
		tree.transplant(y, y.right)
		y.right = x.right
		if y.right != nil {
			y.right.parent = y
		}
		tree.transplant(x, y)
		y.left = x.left
		y.left.parent = y
	}
	x.unlink()
}

type BSTOpt[T any] func(*bsTree[T])

// WithBSTDesc reverses the comparator, so the tree keeps its values in
// descending order.
func WithBSTDesc[T any]() BSTOpt[T] {
	return func(tree *bsTree[T]) {
		tree.isDesc = true
	}
}

// WithBSTStats enables otel metrics for the tree.
func WithBSTStats[T any](name string) BSTOpt[T] {
	return func(tree *bsTree[T]) {
		tree.stats = newBSTStats(name)
	}
}

func NewBST[T any](cmp infra.Comparator[T], opts ...BSTOpt[T]) BST[T] {
	if cmp == nil {
		panic( /* debug assertion */ "[bst] nil comparator")
	}
	tree := &bsTree[T]{
		cmp: cmp,
	}
	for _, o := range opts {
		if o != nil {
			o(tree)
		}
	}
	if tree.isDesc {
		tree.cmp = infra.Reverse(tree.cmp)
	}
	return tree
}

func NewOrderedBST[K infra.OrderedKey](opts ...BSTOpt[K]) BST[K] {
	return NewBST[K](infra.NaturalOrder[K], opts...)
}
