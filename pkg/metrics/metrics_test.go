package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterWithoutStorage(t *testing.T) {
	require.NoError(t, Close())
	before := Counter("test_counter_nostore")
	Incr("test_counter_nostore")
	assert.Equal(t, before+1, Counter("test_counter_nostore"))

	points, err := Query("test_counter_nostore", time.Now().Add(-time.Minute), time.Now())
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestIncrAndQuery(t *testing.T) {
	require.NoError(t, InitMetrics(t.TempDir()))
	defer Close()

	Incr(ReviewCreated)
	Incr(ReviewCreated)
	SetGauge("system_memuse", 512)

	now := time.Now()
	points, err := Query(ReviewCreated, now.Add(-time.Minute), now.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, float64(2), points[len(points)-1].Value)

	gauge, err := Query("system_memuse", now.Add(-time.Minute), now.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, gauge, 1)
	assert.Equal(t, float64(512), gauge[0].Value)

	empty, err := Query("never_written", now.Add(-time.Minute), now)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
