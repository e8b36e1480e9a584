package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveOperation(t *testing.T) {
	okBefore := testutil.ToFloat64(Operations.WithLabelValues("create", "ok"))
	nfBefore := testutil.ToFloat64(Operations.WithLabelValues("delete", "not_found"))

	ObserveOperation("create", "")
	ObserveOperation("create", "")
	ObserveOperation("delete", "not_found")

	assert.Equal(t, okBefore+2, testutil.ToFloat64(Operations.WithLabelValues("create", "ok")))
	assert.Equal(t, nfBefore+1, testutil.ToFloat64(Operations.WithLabelValues("delete", "not_found")))
}

func TestObservePass(t *testing.T) {
	before := testutil.ToFloat64(Passes.WithLabelValues("partial"))

	ObservePass("partial", 4, 250*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(Passes.WithLabelValues("partial")))
	assert.Equal(t, 4.0, testutil.ToFloat64(DesiredInterests))
	assert.Equal(t, 1, testutil.CollectAndCount(PassDuration))
}

func TestWriteTextfile(t *testing.T) {
	ObservePass("ok", 2, time.Second)
	path := filepath.Join(t.TempDir(), "interest_sync.prom")

	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "interest_sync_passes_total")
	assert.Contains(t, string(data), "interest_sync_pass_duration_seconds_bucket")
}
