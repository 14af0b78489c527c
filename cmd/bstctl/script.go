package main

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/multierr"
)

type opKind uint8

const (
	opInsert opKind = iota
	opRemove
	opFind
	opMin
	opMax
	opLen
	opCheck
)

type opSyntax struct {
	kind opKind
	// -1 means one or more keys.
	arity int
}

var opTable = map[string]opSyntax{
	"insert": {kind: opInsert, arity: -1},
	"remove": {kind: opRemove, arity: 1},
	"find":   {kind: opFind, arity: 1},
	"min":    {kind: opMin, arity: 0},
	"max":    {kind: opMax, arity: 0},
	"len":    {kind: opLen, arity: 0},
	"check":  {kind: opCheck, arity: 0},
}

var opNames = [...]string{"insert", "remove", "find", "min", "max", "len", "check"}

func (k opKind) String() string {
	if int(k) < len(opNames) {
		return opNames[k]
	}
	return "unknown"
}

type scriptOp[T any] struct {
	line int
	kind opKind
	keys []T
}

type keyParser[T any] func(string) (T, error)

func parseInt64Key(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func parseStringKey(s string) (string, error) {
	return s, nil
}

// parseScript reads one op per line. Blank lines and text after '#' are
// ignored. Every malformed line is reported, not only the first one.
func parseScript[T any](r io.Reader, parse keyParser[T]) ([]scriptOp[T], error) {
	var (
		ops    []scriptOp[T]
		merr   error
		lineNo int
	)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		op, err := parseLine(lineNo, fields, parse)
		if err != nil {
			merr = multierr.Append(merr, err)
			continue
		}
		ops = append(ops, op)
	}
	if err := scanner.Err(); err != nil {
		merr = multierr.Append(merr, err)
	}
	if merr != nil {
		return nil, merr
	}
	return ops, nil
}

func parseLine[T any](lineNo int, fields []string, parse keyParser[T]) (scriptOp[T], error) {
	name := strings.ToLower(fields[0])
	syntax, ok := opTable[name]
	if !ok {
		names := lo.Keys(opTable)
		slices.Sort(names)
		return scriptOp[T]{}, fmt.Errorf("line %d: unknown op %q, want one of %s",
			lineNo, fields[0], strings.Join(names, ", "))
	}
	args := fields[1:]
	switch {
	case syntax.arity < 0 && len(args) == 0:
		return scriptOp[T]{}, fmt.Errorf("line %d: %s needs at least one key", lineNo, name)
	case syntax.arity >= 0 && len(args) != syntax.arity:
		return scriptOp[T]{}, fmt.Errorf("line %d: %s takes %d key(s), got %d", lineNo, name, syntax.arity, len(args))
	default:
	}
	keys := make([]T, 0, len(args))
	for _, arg := range args {
		key, err := parse(arg)
		if err != nil {
			return scriptOp[T]{}, fmt.Errorf("line %d: bad key %q: %w", lineNo, arg, err)
		}
		keys = append(keys, key)
	}
	return scriptOp[T]{line: lineNo, kind: syntax.kind, keys: keys}, nil
}
