package infra

type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is a constraint that permits any unsigned integer type.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Integer is a constraint that permits any integer type.
type Integer interface {
	Signed | Unsigned
}

// Float is a constraint that permits any floating-point type.
type Float interface {
	~float32 | ~float64
}

// OrderedKey
// byte => ~uint8
type OrderedKey interface {
	Integer | Float | ~string
}

// Comparator
// Assume i is the new key.
//  1. i == j, return 0
//  2. i > j, return 1, turn to right part.
//  3. i < j, return -1, turn to left part.
//
// Any positive or negative value is accepted, only the sign matters.
type Comparator[T any] func(i, j T) int64

// NaturalOrder compares builtin ordered keys by < and ==.
// NaN is treated as equal to everything, so float trees must not hold NaN.
func NaturalOrder[K OrderedKey](i, j K) int64 {
	if i < j {
		return -1
	} else if i > j {
		return 1
	}
	return 0
}

// Reverse flips the sign of cmp.
func Reverse[T any](cmp Comparator[T]) Comparator[T] {
	if cmp == nil {
		return nil
	}
	return func(i, j T) int64 {
		return cmp(j, i)
	}
}
