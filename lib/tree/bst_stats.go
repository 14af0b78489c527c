package tree

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	BSTStatsName = "xboot/bst"
)

var (
	hitAttrs  = metric.WithAttributeSet(attribute.NewSet(attribute.Bool("bst.search.hit", true)))
	missAttrs = metric.WithAttributeSet(attribute.NewSet(attribute.Bool("bst.search.hit", false)))
)

type bstStats struct {
	nodeCount   metric.Int64UpDownCounter
	insertCount metric.Int64Counter
	removeCount metric.Int64Counter
	findCount   metric.Int64Counter
	searchDepth metric.Int64Histogram
}

func (stats *bstStats) recordInsert(depth int64) {
	if stats == nil {
		return
	}
	stats.nodeCount.Add(context.Background(), 1)
	stats.insertCount.Add(context.Background(), 1)
	stats.searchDepth.Record(context.Background(), depth)
}

func (stats *bstStats) recordFind(hit bool, depth int64) {
	if stats == nil {
		return
	}
	stats.findCount.Add(context.Background(), 1, lo.Ternary(hit, hitAttrs, missAttrs))
	stats.searchDepth.Record(context.Background(), depth)
}

func (stats *bstStats) recordRemove(hit bool, depth int64) {
	if stats == nil {
		return
	}
	stats.removeCount.Add(context.Background(), 1, lo.Ternary(hit, hitAttrs, missAttrs))
	stats.searchDepth.Record(context.Background(), depth)
	if hit {
		stats.nodeCount.Add(context.Background(), -1)
	}
}

func newBSTStats(name string) *bstStats {
	if len(strings.TrimSpace(name)) == 0 {
		name = "default"
	}
	meter := otel.Meter(fmt.Sprintf("%s/%s", BSTStatsName, name))
	return &bstStats{
		nodeCount: lo.Must[metric.Int64UpDownCounter](meter.
			Int64UpDownCounter(
				"bst.node.count",
				metric.WithDescription("The number of nodes in the tree."),
			),
		),
		insertCount: lo.Must[metric.Int64Counter](meter.
			Int64Counter(
				"bst.insert.count",
				metric.WithDescription("The number of inserted values."),
			),
		),
		removeCount: lo.Must[metric.Int64Counter](meter.
			Int64Counter(
				"bst.remove.count",
				metric.WithDescription("The number of remove calls, split by hit or miss."),
			),
		),
		findCount: lo.Must[metric.Int64Counter](meter.
			Int64Counter(
				"bst.find.count",
				metric.WithDescription("The number of find calls, split by hit or miss."),
			),
		),
		searchDepth: lo.Must[metric.Int64Histogram](meter.
			Int64Histogram(
				"bst.search.depth",
				metric.WithDescription("The number of nodes visited by one walk from the root."),
				metric.WithUnit("{node}"),
			),
		),
	}
}
