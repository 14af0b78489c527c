package tree

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/benz9527/xbst/lib/infra"
)

var (
	ErrBSTOrderViolation = errors.New("[bst] order violation")
	ErrBSTLinkViolation  = errors.New("[bst] link violation")
)

// bst rule validation utilities.

func subtreeMaximum[T any](node BSTNode[T]) BSTNode[T] {
	aux := node
	for ; aux != nil && aux.Right() != nil; aux = aux.Right() {
	}
	return aux
}

// OrderViolationValidate walks the tree in order. The sequence must be
// non-decreasing under cmp and every left subtree must be strictly less
// than its parent (equal values always live on the right).
func OrderViolationValidate[T any](tree BST[T], cmp infra.Comparator[T]) error {
	if cmp == nil {
		return fmt.Errorf("%w: nil comparator", ErrBSTOrderViolation)
	}
	var aux = tree.Root()
	if aux == nil {
		return nil
	}

	stack := make([]BSTNode[T], 0, 32)
	defer func() {
		clear(stack)
	}()
	for ; aux != nil; aux = aux.Left() {
		stack = append(stack, aux)
	}

	var prev BSTNode[T]
	for visited := int64(0); len(stack) > 0; visited++ {
		if visited > tree.Len() {
			return fmt.Errorf("%w: more than %d nodes reachable", ErrBSTOrderViolation, tree.Len())
		}
		aux = stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if prev != nil && cmp(prev.Val(), aux.Val()) > 0 {
			return fmt.Errorf("%w: %v visited before %v", ErrBSTOrderViolation, prev.Val(), aux.Val())
		}
		if l := aux.Left(); l != nil {
			if lMax := subtreeMaximum(l); cmp(lMax.Val(), aux.Val()) >= 0 {
				return fmt.Errorf("%w: left subtree value %v not less than %v", ErrBSTOrderViolation, lMax.Val(), aux.Val())
			}
		}
		prev = aux

		for aux = aux.Right(); aux != nil; aux = aux.Left() {
			stack = append(stack, aux)
		}
	}
	return nil
}

// LinkViolationValidate checks the parent back references and that the
// reachable node count equals Len().
func LinkViolationValidate[T any](tree BST[T]) error {
	root := tree.Root()
	if root == nil {
		if tree.Len() != 0 {
			return fmt.Errorf("%w: empty root with len %d", ErrBSTLinkViolation, tree.Len())
		}
		return nil
	}
	if root.Parent() != nil {
		return fmt.Errorf("%w: root %v has a parent", ErrBSTLinkViolation, root.Val())
	}

	stack := make([]BSTNode[T], 0, 32)
	defer func() {
		clear(stack)
	}()
	stack = append(stack, root)

	reachable := int64(0)
	for len(stack) > 0 {
		aux := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reachable++; reachable > tree.Len() {
			return fmt.Errorf("%w: more than %d nodes reachable", ErrBSTLinkViolation, tree.Len())
		}

		for _, child := range [2]BSTNode[T]{aux.Left(), aux.Right()} {
			if child == nil {
				continue
			}
			if child.Parent() != aux {
				return fmt.Errorf("%w: child %v of %v points to another parent", ErrBSTLinkViolation, child.Val(), aux.Val())
			}
			stack = append(stack, child)
		}
	}
	if reachable != tree.Len() {
		return fmt.Errorf("%w: %d nodes reachable, len %d", ErrBSTLinkViolation, reachable, tree.Len())
	}
	return nil
}

// ValidateBST runs every validation and combines the violations.
func ValidateBST[T any](tree BST[T], cmp infra.Comparator[T]) error {
	return multierr.Combine(
		LinkViolationValidate[T](tree),
		OrderViolationValidate[T](tree, cmp),
	)
}
