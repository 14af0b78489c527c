package tree

import "errors"

var (
	ErrBSTEmpty       = errors.New("[bst] empty tree")
	ErrBSTKeyNotFound = errors.New("[bst] key not found")
)

// BSTNode is the read-only view of a node. Absent relations are returned
// as a nil interface, never as a typed nil.
type BSTNode[T any] interface {
	Val() T
	Left() BSTNode[T]
	Right() BSTNode[T]
	Parent() BSTNode[T]
}

// BST is an unbalanced binary search tree. Equal values are kept as
// distinct nodes placed in the right subtree.
// It is not safe for concurrent use.
type BST[T any] interface {
	Len() int64
	Root() BSTNode[T]
	Insert(val T)
	// Find returns the match closest to the root.
	Find(key T) (BSTNode[T], error)
	Minimum() (BSTNode[T], error)
	Maximum() (BSTNode[T], error)
	Remove(key T) (T, error)
}
