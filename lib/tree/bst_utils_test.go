package tree

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/benz9527/xbst/lib/infra"
)

func TestOrderViolationValidate(t *testing.T) {
	cmp := infra.NaturalOrder[int]

	tree := buildOrderedBST(5, 2, 8).(*bsTree[int])
	require.NoError(t, OrderViolationValidate[int](tree, cmp))

	tree.root.left.val = 9
	require.ErrorIs(t, OrderViolationValidate[int](tree, cmp), ErrBSTOrderViolation)

	// Equal value on the left is a violation even though the in-order
	// sequence stays non-decreasing.
	tree.root.left.val = 5
	require.ErrorIs(t, OrderViolationValidate[int](tree, cmp), ErrBSTOrderViolation)

	require.ErrorIs(t, OrderViolationValidate[int](tree, nil), ErrBSTOrderViolation)
}

func TestLinkViolationValidate(t *testing.T) {
	tree := buildOrderedBST(5, 2, 8, 6).(*bsTree[int])
	require.NoError(t, LinkViolationValidate[int](tree))

	n6 := tree.root.right.left
	n6.parent = tree.root
	require.ErrorIs(t, LinkViolationValidate[int](tree), ErrBSTLinkViolation)
	n6.parent = tree.root.right
	require.NoError(t, LinkViolationValidate[int](tree))

	tree.root.parent = n6
	require.ErrorIs(t, LinkViolationValidate[int](tree), ErrBSTLinkViolation)
	tree.root.parent = nil

	tree.count++
	require.ErrorIs(t, LinkViolationValidate[int](tree), ErrBSTLinkViolation)
	tree.count -= 2
	require.ErrorIs(t, LinkViolationValidate[int](tree), ErrBSTLinkViolation)
	tree.count++

	empty := NewOrderedBST[int]().(*bsTree[int])
	empty.count = 1
	require.ErrorIs(t, LinkViolationValidate[int](empty), ErrBSTLinkViolation)
}

func TestValidateBSTCombines(t *testing.T) {
	tree := buildOrderedBST(5, 2, 8).(*bsTree[int])
	require.NoError(t, ValidateBST[int](tree, infra.NaturalOrder[int]))

	tree.root.left.val = 9
	tree.root.right.parent = nil
	err := ValidateBST[int](tree, infra.NaturalOrder[int])
	require.Len(t, multierr.Errors(err), 2)
	require.ErrorIs(t, err, ErrBSTOrderViolation)
	require.ErrorIs(t, err, ErrBSTLinkViolation)
}
