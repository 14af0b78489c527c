package main

import (
	"context"
	"errors"
	"fmt"
	randv2 "math/rand/v2"
	"os"
	"sync"
	"sync/atomic"
	"time"

	antsv2 "github.com/panjf2000/ants/v2"
	"github.com/samber/lo"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xbst/lib/infra"
	"github.com/benz9527/xbst/lib/tree"
	"github.com/benz9527/xbst/xlog"
)

type soakConfig struct {
	trees    int
	ops      int
	keySpace int
	workers  int
	seed     uint64
}

type soakReport struct {
	trees   int
	ops     int64
	elapsed time.Duration
	rss     uint64
}

// soakTree drives one tree from a single goroutine and mirrors every op
// in a multiset keyed by value.
type soakTree struct {
	id     int
	tree   tree.BST[int64]
	shadow map[int64]int64
	rng    *randv2.Rand
}

func newSoakTree(id int, seed uint64) *soakTree {
	return &soakTree{
		id:     id,
		tree:   tree.NewOrderedBST[int64](tree.WithBSTStats[int64]("soak")),
		shadow: make(map[int64]int64, 64),
		rng:    randv2.New(randv2.NewPCG(seed, uint64(id))),
	}
}

func (st *soakTree) step(keySpace int) error {
	key := st.rng.Int64N(int64(keySpace))
	switch st.rng.IntN(3) {
	case 0:
		st.tree.Insert(key)
		st.shadow[key]++
	case 1:
		val, err := st.tree.Remove(key)
		if st.shadow[key] == 0 {
			if !errors.Is(err, tree.ErrBSTKeyNotFound) {
				return fmt.Errorf("tree %d: remove(%d) of absent key returned %v", st.id, key, err)
			}
			return nil
		}
		if err != nil || val != key {
			return fmt.Errorf("tree %d: remove(%d) returned (%d, %v)", st.id, key, val, err)
		}
		if st.shadow[key]--; st.shadow[key] == 0 {
			delete(st.shadow, key)
		}
	default:
		node, err := st.tree.Find(key)
		if st.shadow[key] == 0 {
			if !errors.Is(err, tree.ErrBSTKeyNotFound) {
				return fmt.Errorf("tree %d: find(%d) of absent key returned %v", st.id, key, err)
			}
			return nil
		}
		if err != nil || node.Val() != key {
			return fmt.Errorf("tree %d: find(%d) failed: %v", st.id, key, err)
		}
	}
	return nil
}

func (st *soakTree) verify() error {
	var merr error
	if err := tree.ValidateBST[int64](st.tree, infra.NaturalOrder[int64]); err != nil {
		merr = multierr.Append(merr, fmt.Errorf("tree %d: %w", st.id, err))
	}
	if expected := lo.Sum(lo.Values(st.shadow)); expected != st.tree.Len() {
		merr = multierr.Append(merr, fmt.Errorf("tree %d: len %d, expected %d", st.id, st.tree.Len(), expected))
	}
	if len(st.shadow) == 0 {
		if _, err := st.tree.Minimum(); !errors.Is(err, tree.ErrBSTEmpty) {
			merr = multierr.Append(merr, fmt.Errorf("tree %d: minimum of empty tree returned %v", st.id, err))
		}
		return merr
	}
	keys := lo.Keys(st.shadow)
	if node, err := st.tree.Minimum(); err != nil || node.Val() != lo.Min(keys) {
		merr = multierr.Append(merr, fmt.Errorf("tree %d: minimum mismatch: %v", st.id, err))
	}
	if node, err := st.tree.Maximum(); err != nil || node.Val() != lo.Max(keys) {
		merr = multierr.Append(merr, fmt.Errorf("tree %d: maximum mismatch: %v", st.id, err))
	}
	return merr
}

func (st *soakTree) run(ctx context.Context, cfg soakConfig) (int64, error) {
	applied := int64(0)
	for i := 0; i < cfg.ops; i++ {
		if i&0x3ff == 0 && ctx.Err() != nil {
			return applied, ctx.Err()
		}
		if err := st.step(cfg.keySpace); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, st.verify()
}

func validateSoakConfig(cfg soakConfig) error {
	var merr error
	if cfg.trees <= 0 {
		merr = multierr.Append(merr, errors.New("--trees must be positive"))
	}
	if cfg.ops < 0 {
		merr = multierr.Append(merr, errors.New("--ops must not be negative"))
	}
	if cfg.keySpace <= 0 {
		merr = multierr.Append(merr, errors.New("--key-space must be positive"))
	}
	if cfg.workers <= 0 {
		merr = multierr.Append(merr, errors.New("--workers must be positive"))
	}
	return merr
}

func processRSS(ctx context.Context) (uint64, error) {
	p, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return 0, err
	}
	mem, err := p.MemoryInfoWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return mem.RSS, nil
}

func runSoak(ctx context.Context, cfg soakConfig, logger xlog.XLogger) (soakReport, error) {
	report := soakReport{trees: cfg.trees}
	if err := validateSoakConfig(cfg); err != nil {
		return report, err
	}

	pool, err := antsv2.NewPool(cfg.workers,
		antsv2.WithLogger(xlog.NewAntsXLogger(logger)),
		antsv2.WithPreAlloc(false),
	)
	if err != nil {
		return report, infra.WrapErrorStackWithMessage(err, "[bstctl] soak pool")
	}
	defer pool.Release()

	var (
		wg      sync.WaitGroup
		lock    sync.Mutex
		merr    error
		applied atomic.Int64
	)
	appendErr := func(err error) {
		lock.Lock()
		merr = multierr.Append(merr, err)
		lock.Unlock()
	}
	start := time.Now()
	for i := 0; i < cfg.trees; i++ {
		st := newSoakTree(i, cfg.seed)
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			n, err := st.run(ctx, cfg)
			applied.Add(n)
			if err != nil {
				appendErr(err)
				return
			}
			logger.Debug("soak tree done", zap.Int("tree", st.id), zap.Int64("len", st.tree.Len()))
		}); err != nil {
			wg.Done()
			appendErr(fmt.Errorf("tree %d: submit: %w", i, err))
		}
	}
	wg.Wait()

	report.ops = applied.Load()
	report.elapsed = time.Since(start)
	if rss, err := processRSS(ctx); err != nil {
		logger.Warn("rss unavailable", zap.String("result", err.Error()))
	} else {
		report.rss = rss
	}

	fields := []zap.Field{
		zap.Int("trees", report.trees),
		zap.Int64("ops", report.ops),
		zap.Duration("elapsed", report.elapsed),
		zap.Uint64("rss", report.rss),
	}
	if merr != nil {
		logger.Error(merr, "soak failed", append(fields, zap.Int("failures", len(multierr.Errors(merr))))...)
		return report, merr
	}
	logger.Info("soak passed", fields...)
	return report, nil
}
