package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/safeopen"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xbst/lib/infra"
	"github.com/benz9527/xbst/lib/tree"
	"github.com/benz9527/xbst/xlog"
)

var errReplayCheck = errors.New("[bstctl] replay check failed")

type replayConfig struct {
	script  string
	strings bool
	desc    bool
}

type replayer[T infra.OrderedKey] struct {
	tree tree.BST[T]
	// cmp is the order check validates against.
	cmp    infra.Comparator[T]
	logger xlog.XLogger
}

func newReplayer[T infra.OrderedKey](logger xlog.XLogger, desc bool) *replayer[T] {
	opts := []tree.BSTOpt[T]{tree.WithBSTStats[T]("replay")}
	cmp := infra.Comparator[T](infra.NaturalOrder[T])
	if desc {
		opts = append(opts, tree.WithBSTDesc[T]())
		cmp = infra.Reverse(cmp)
	}
	return &replayer[T]{
		tree:   tree.NewOrderedBST[T](opts...),
		cmp:    cmp,
		logger: logger,
	}
}

// run applies every op in order. Misses are logged and skipped, failed
// checks are collected.
func (r *replayer[T]) run(ops []scriptOp[T]) error {
	var merr error
	for _, op := range ops {
		if err := r.apply(op); err != nil {
			merr = multierr.Append(merr, fmt.Errorf("line %d: %w", op.line, err))
		}
	}
	return merr
}

func (r *replayer[T]) apply(op scriptOp[T]) error {
	fields := []zap.Field{
		zap.Int("line", op.line),
		zap.Stringer("op", op.kind),
	}
	switch op.kind {
	case opInsert:
		for _, key := range op.keys {
			r.tree.Insert(key)
		}
		r.logger.Info("applied", append(fields,
			zap.Any("key", op.keys),
			zap.Int64("len", r.tree.Len()),
		)...)
	case opRemove:
		val, err := r.tree.Remove(op.keys[0])
		r.logResult(fields, op.keys[0], val, err)
	case opFind:
		var val T
		node, err := r.tree.Find(op.keys[0])
		if err == nil {
			val = node.Val()
		}
		r.logResult(fields, op.keys[0], val, err)
	case opMin:
		var val T
		node, err := r.tree.Minimum()
		if err == nil {
			val = node.Val()
		}
		r.logResult(fields, nil, val, err)
	case opMax:
		var val T
		node, err := r.tree.Maximum()
		if err == nil {
			val = node.Val()
		}
		r.logResult(fields, nil, val, err)
	case opLen:
		r.logger.Info("applied", append(fields, zap.Int64("len", r.tree.Len()))...)
	case opCheck:
		if err := tree.ValidateBST[T](r.tree, r.cmp); err != nil {
			r.logger.ErrorStack(infra.WrapErrorStack(err), "check failed", fields...)
			return multierr.Append(errReplayCheck, err)
		}
		r.logger.Info("check passed", append(fields, zap.Int64("len", r.tree.Len()))...)
	default:
	}
	return nil
}

func (r *replayer[T]) logResult(fields []zap.Field, key any, val T, err error) {
	if key != nil {
		fields = append(fields, zap.Any("key", key))
	}
	fields = append(fields, zap.Int64("len", r.tree.Len()))
	if err != nil {
		r.logger.Warn("missed", append(fields, zap.String("result", err.Error()))...)
		return
	}
	r.logger.Info("applied", append(fields, zap.Any("result", val))...)
}

func openScript(path string) (*os.File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[bstctl] script path")
	}
	f, err := safeopen.OpenBeneath(filepath.Dir(abs), filepath.Base(abs))
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[bstctl] open script")
	}
	return f, nil
}

func replayScript[T infra.OrderedKey](f *os.File, parse keyParser[T], desc bool, logger xlog.XLogger) error {
	ops, err := parseScript[T](f, parse)
	if err != nil {
		return err
	}
	r := newReplayer[T](logger, desc)
	if err = r.run(ops); err != nil {
		return err
	}
	logger.Info("replay finished", zap.Int("ops", len(ops)), zap.Int64("len", r.tree.Len()))
	return nil
}

func runReplay(cfg replayConfig, logger xlog.XLogger) error {
	f, err := openScript(cfg.script)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	if cfg.strings {
		return replayScript[string](f, parseStringKey, cfg.desc, logger)
	}
	return replayScript[int64](f, parseInt64Key, cfg.desc, logger)
}
