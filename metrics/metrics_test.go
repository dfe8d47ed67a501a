package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockberries/vesting"
)

func useBackend(t *testing.T, b Backend) {
	t.Helper()
	setBackend(b)
	t.Cleanup(func() { setBackend(noopBackend{}) })
}

func gather(t *testing.T, b *promBackend) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := b.registry.Gather()
	require.NoError(t, err)
	got := make(map[string]*dto.MetricFamily)
	for _, mf := range families {
		got[mf.GetName()] = mf
	}
	return got
}

// labelled returns the counter value of the series whose only label
// has the given value.
func labelled(t *testing.T, mf *dto.MetricFamily, value string) float64 {
	t.Helper()
	require.NotNil(t, mf)
	for _, m := range mf.GetMetric() {
		if len(m.GetLabel()) == 1 && m.GetLabel()[0].GetValue() == value {
			return m.GetCounter().GetValue()
		}
	}
	t.Fatalf("%s has no series %q", mf.GetName(), value)
	return 0
}

func TestNoopBackend(t *testing.T) {
	useBackend(t, noopBackend{})

	TxVerified(vesting.CodeOK)
	TxChecked(vesting.CodeStaleHeader)
	OperationAccepted("claim")
	BlockVerified(time.Millisecond)
	Committed(3)
	Simulated()
	UnknownQuery()

	assert.Nil(t, HTTPHandler())
}

func TestVerifierMeters(t *testing.T) {
	b := newPromBackend()
	useBackend(t, b)

	TxVerified(vesting.CodeOK)
	TxVerified(vesting.CodeOK)
	TxVerified(vesting.CodeStaleHeader)
	TxChecked(vesting.CodeUnauthorized)
	OperationAccepted("claim")
	OperationAccepted("terminate")
	OperationAccepted("claim")
	BlockVerified(3 * time.Millisecond)
	Committed(42)
	Simulated()
	UnknownQuery()
	UnknownQuery()

	got := gather(t, b)
	assert.Equal(t, float64(2), labelled(t, got["vesting_txs_total"], "OK"))
	assert.Equal(t, float64(1), labelled(t, got["vesting_txs_total"], "StaleHeader"))
	assert.Equal(t, float64(1), labelled(t, got["vesting_checktx_total"], "Unauthorized"))
	assert.Equal(t, float64(2), labelled(t, got["vesting_operations_total"], "claim"))
	assert.Equal(t, float64(1), labelled(t, got["vesting_operations_total"], "terminate"))

	require.Contains(t, got, "vesting_block_verify_seconds")
	hist := got["vesting_block_verify_seconds"].GetMetric()[0].GetHistogram()
	assert.Equal(t, uint64(1), hist.GetSampleCount())
	assert.InDelta(t, 0.003, hist.GetSampleSum(), 1e-9)

	assert.Equal(t, float64(42), got["vesting_height"].GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, float64(1), got["vesting_simulations_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, float64(2), got["vesting_unknown_queries_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Contains(t, got, "go_goroutines")
}

func TestMeterFollowsBackend(t *testing.T) {
	useBackend(t, noopBackend{})
	Simulated()

	b := newPromBackend()
	setBackend(b)
	Simulated()
	Simulated()

	got := gather(t, b)
	assert.Equal(t, float64(2), got["vesting_simulations_total"].GetMetric()[0].GetCounter().GetValue())
}

func TestInitializePrometheusMetrics(t *testing.T) {
	useBackend(t, noopBackend{})

	InitializePrometheusMetrics()
	first := current()
	require.IsType(t, &promBackend{}, first)

	InitializePrometheusMetrics()
	assert.Same(t, first, current())

	Committed(7)
	h := HTTPHandler()
	require.NotNil(t, h)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "vesting_height 7")
}
