package batch

import (
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/RoGogDBD/telemetry-sdk/internal/clock"
	models "github.com/RoGogDBD/telemetry-sdk/internal/model"
	"github.com/stretchr/testify/require"
)

func TestAttributesKey_OrderIndependent(t *testing.T) {
	a := models.Attributes{}
	a["a"] = 1
	a["b"] = 2
	b := models.Attributes{}
	b["b"] = 2
	b["a"] = 1

	require.Equal(t, attributesKey(a), attributesKey(b))
	require.Equal(t, "", attributesKey(nil))
	require.Equal(t, "", attributesKey(models.Attributes{}))
	require.NotEqual(t, attributesKey(models.Attributes{"a": "1"}), attributesKey(models.Attributes{"a": 1}))
}

func TestMetricBatch_Merge_TableDriven(t *testing.T) {
	tests := []struct {
		name    string
		record  func(b *MetricBatch, value float64)
		values  []float64
		check   func(t *testing.T, m models.Metric)
		expType models.MetricType
	}{
		{
			name:    "gauge last write wins",
			record:  func(b *MetricBatch, v float64) { b.RecordGauge("m", v, nil) },
			values:  []float64{1, 7, 2},
			expType: models.Gauge,
			check: func(t *testing.T, m models.Metric) {
				require.InDelta(t, 2.0, m.Value, 1e-9)
				require.NotZero(t, m.Timestamp)
				require.Nil(t, m.Summary)
			},
		},
		{
			name:    "count sums",
			record:  func(b *MetricBatch, v float64) { b.RecordCount("m", v, nil) },
			values:  []float64{1, 2, 3.5},
			expType: models.Count,
			check: func(t *testing.T, m models.Metric) {
				require.InDelta(t, 6.5, m.Value, 1e-9)
				require.Zero(t, m.Timestamp)
			},
		},
		{
			name:    "summary aggregates",
			record:  func(b *MetricBatch, v float64) { b.RecordSummary("m", v, nil) },
			values:  []float64{4, -1, 10},
			expType: models.Summary,
			check: func(t *testing.T, m models.Metric) {
				require.NotNil(t, m.Summary)
				require.Equal(t, models.SummaryValue{Count: 3, Sum: 13, Min: -1, Max: 10}, *m.Summary)
				require.Zero(t, m.Timestamp)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewMetricBatch(nil)
			for _, v := range tt.values {
				tt.record(b, v)
			}

			items, common := b.Flush()
			require.Len(t, items, 1)
			require.Equal(t, "m", items[0].Name)
			require.Equal(t, tt.expType, items[0].Type)
			require.Nil(t, items[0].Attributes)
			require.NotNil(t, common)
			tt.check(t, items[0])
		})
	}
}

func TestMetricBatch_TagOrderMergesIntoOneIdentity(t *testing.T) {
	b := NewMetricBatch(nil)

	first := models.Attributes{}
	first["a"] = 1
	first["b"] = 2
	second := models.Attributes{}
	second["b"] = 2
	second["a"] = 1

	b.RecordGauge("x", 1, first)
	b.RecordGauge("x", 2, second)

	items, _ := b.Flush()
	require.Len(t, items, 1)
	require.InDelta(t, 2.0, items[0].Value, 1e-9)
	require.Equal(t, models.Attributes{"a": 1, "b": 2}, items[0].Attributes)
}

func TestMetricBatch_DifferentKindsAreDistinct(t *testing.T) {
	b := NewMetricBatch(nil)
	b.RecordGauge("x", 1, nil)
	b.RecordCount("x", 1, nil)
	b.RecordSummary("x", 1, nil)
	b.RecordCount("x", 1, models.Attributes{"k": "v"})

	items, _ := b.Flush()
	require.Len(t, items, 4)
}

func TestMetricBatch_FlushEmptyTwice(t *testing.T) {
	start := time.UnixMilli(1_000_000)
	c := clock.Fake(start)
	b := NewMetricBatch(models.Attributes{"host": "h1"}, WithClock(c))

	c.Advance(1500 * time.Millisecond)
	items1, common1 := b.Flush()
	c.Advance(500 * time.Millisecond)
	items2, common2 := b.Flush()

	require.Empty(t, items1)
	require.Empty(t, items2)
	require.NotSame(t, common1, common2)

	require.Equal(t, int64(1_000_000), *common1.Timestamp)
	require.Equal(t, int64(1500), *common1.IntervalMs)
	require.Equal(t, int64(1_001_500), *common2.Timestamp)
	require.Equal(t, int64(500), *common2.IntervalMs)
	require.LessOrEqual(t, *common1.Timestamp, *common2.Timestamp)

	common1.Attributes["host"] = "mutated"
	require.Equal(t, "h1", common2.Attributes["host"])
}

func TestMetricBatch_FlushClearsState(t *testing.T) {
	b := NewMetricBatch(nil)
	b.RecordCount("c", 5, nil)

	items, _ := b.Flush()
	require.Len(t, items, 1)

	b.RecordCount("c", 1, nil)
	items, _ = b.Flush()
	require.Len(t, items, 1)
	require.InDelta(t, 1.0, items[0].Value, 1e-9)
}

func TestMetricBatch_CountSaturatesOnOverflow(t *testing.T) {
	b := NewMetricBatch(nil)
	b.RecordCount("c", math.MaxFloat64, nil)
	b.RecordCount("c", math.MaxFloat64, nil)
	b.RecordCount("neg", -math.MaxFloat64, nil)
	b.RecordCount("neg", -math.MaxFloat64, nil)
	b.RecordCount("ok", 1, nil)
	b.RecordSummary("s", math.MaxFloat64, nil)
	b.RecordSummary("s", math.MaxFloat64, nil)

	items, common := b.Flush()
	require.Len(t, items, 4)

	byName := make(map[string]models.Metric, len(items))
	for _, m := range items {
		byName[m.Name] = m
	}
	require.Equal(t, math.MaxFloat64, byName["c"].Value)
	require.Equal(t, -math.MaxFloat64, byName["neg"].Value)
	require.Equal(t, 1.0, byName["ok"].Value)
	require.Equal(t, math.MaxFloat64, byName["s"].Summary.Sum)
	require.Equal(t, int64(2), byName["s"].Summary.Count)

	// Насыщенный батч по-прежнему кодируется целиком.
	_, err := json.Marshal([]map[string]any{{"metrics": items, "common": common}})
	require.NoError(t, err)
}

func TestMetricBatch_NonFiniteValuesDropped(t *testing.T) {
	b := NewMetricBatch(nil)
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		b.RecordGauge("g", v, nil)
		b.RecordCount("c", v, nil)
		b.RecordSummary("s", v, nil)
	}
	b.RecordGauge("g", 3, nil)
	b.RecordGauge("g", math.NaN(), nil)

	items, _ := b.Flush()
	require.Len(t, items, 1)
	require.Equal(t, "g", items[0].Name)
	require.Equal(t, 3.0, items[0].Value)
}

func TestMetricBatch_GaugeTimestampFromClock(t *testing.T) {
	c := clock.Fake(time.UnixMilli(5000))
	b := NewMetricBatch(nil, WithClock(c))

	b.RecordGauge("g", 1, nil)
	c.Advance(time.Second)
	b.RecordGauge("g", 2, nil)

	items, _ := b.Flush()
	require.Len(t, items, 1)
	require.Equal(t, int64(6000), items[0].Timestamp)
}

func TestMetricBatch_NoCommonAttributesWithoutTags(t *testing.T) {
	b := NewMetricBatch(nil)
	_, common := b.Flush()
	require.Nil(t, common.Attributes)
	require.NotNil(t, common.Timestamp)
	require.NotNil(t, common.IntervalMs)
}

func TestMetricBatch_ConcurrentRecord(t *testing.T) {
	const (
		workers = 8
		perW    = 1000
	)
	b := NewMetricBatch(nil)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		total    float64
		observed int64
	)
	collect := func() {
		items, _ := b.Flush()
		mu.Lock()
		defer mu.Unlock()
		for _, m := range items {
			switch m.Type {
			case models.Count:
				total += m.Value
			case models.Summary:
				observed += m.Summary.Count
			}
		}
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perW; i++ {
				b.RecordCount("requests", 1, models.Attributes{"worker": fmt.Sprint(w % 2)})
				b.RecordSummary("latency", float64(i), nil)
				if i%100 == 0 {
					collect()
				}
			}
		}(w)
	}
	wg.Wait()
	collect()

	require.InDelta(t, float64(workers*perW), total, 1e-9)
	require.Equal(t, int64(workers*perW), observed)
}
