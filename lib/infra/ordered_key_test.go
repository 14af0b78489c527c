package infra

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNaturalOrder(t *testing.T) {
	require.Equal(t, int64(-1), NaturalOrder(1, 2))
	require.Equal(t, int64(1), NaturalOrder(uint8(9), uint8(3)))
	require.Equal(t, int64(0), NaturalOrder("abc", "abc"))
	require.Equal(t, int64(-1), NaturalOrder("abc", "abd"))
	require.Equal(t, int64(1), NaturalOrder(2.5, -0.5))
}

func TestReverse(t *testing.T) {
	rev := Reverse[int](NaturalOrder[int])
	require.Equal(t, int64(1), rev(1, 2))
	require.Equal(t, int64(-1), rev(2, 1))
	require.Equal(t, int64(0), rev(7, 7))
	require.Nil(t, Reverse[int](nil))

	var cmp Comparator[string] = NaturalOrder[string]
	require.Equal(t, int64(-1), Reverse(cmp)("b", "a"))
}
