package tree

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func findBSTMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func sumBSTMetric(t *testing.T, rm metricdata.ResourceMetrics, name string, hit *bool) int64 {
	t.Helper()
	m, ok := findBSTMetric(rm, name)
	require.Truef(t, ok, "metric %s not found", name)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.Truef(t, ok, "metric %s is not an int64 sum", name)

	total := int64(0)
	for _, dp := range sum.DataPoints {
		if hit != nil {
			v, ok := dp.Attributes.Value("bst.search.hit")
			if !ok || v.AsBool() != *hit {
				continue
			}
		}
		total += dp.Value
	}
	return total
}

func TestBSTStats(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)
	defer func() {
		_ = mp.Shutdown(ctx)
	}()

	tree := NewOrderedBST[int](WithBSTStats[int]("stats-test"))
	for _, k := range []int{5, 2, 8, 6, 9, 7} {
		tree.Insert(k)
	}
	_, err := tree.Find(7)
	require.NoError(t, err)
	_, err = tree.Find(100)
	require.ErrorIs(t, err, ErrBSTKeyNotFound)
	_, err = tree.Remove(5)
	require.NoError(t, err)
	_, err = tree.Remove(5)
	require.ErrorIs(t, err, ErrBSTKeyNotFound)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	hit, miss := true, false
	require.Equal(t, int64(6), sumBSTMetric(t, rm, "bst.insert.count", nil))
	require.Equal(t, int64(5), sumBSTMetric(t, rm, "bst.node.count", nil))
	require.Equal(t, int64(1), sumBSTMetric(t, rm, "bst.find.count", &hit))
	require.Equal(t, int64(1), sumBSTMetric(t, rm, "bst.find.count", &miss))
	require.Equal(t, int64(1), sumBSTMetric(t, rm, "bst.remove.count", &hit))
	require.Equal(t, int64(1), sumBSTMetric(t, rm, "bst.remove.count", &miss))

	// Find and remove share one search attribute.
	for _, name := range []string{"bst.find.count", "bst.remove.count"} {
		m, ok := findBSTMetric(rm, name)
		require.True(t, ok)
		for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
			require.Equal(t, 1, dp.Attributes.Len())
			require.True(t, dp.Attributes.HasValue("bst.search.hit"))
		}
	}

	m, ok := findBSTMetric(rm, "bst.search.depth")
	require.True(t, ok)
	hist, ok := m.Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	count := uint64(0)
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	// 6 inserts, 2 finds, 2 removes.
	require.Equal(t, uint64(10), count)
}

func TestBSTStatsNilReceiver(t *testing.T) {
	var stats *bstStats
	require.NotPanics(t, func() {
		stats.recordInsert(1)
		stats.recordFind(true, 1)
		stats.recordRemove(false, 1)
	})
}
