package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordOperation(t *testing.T) {
	before := testutil.ToFloat64(operationsTotal.WithLabelValues("start", ResultError))

	RecordOperation("start", errors.New("boom"))
	RecordOperation("start", nil)

	assert.Equal(t, before+1, testutil.ToFloat64(operationsTotal.WithLabelValues("start", ResultError)))
}

func TestRecordTransitionIgnoresNoops(t *testing.T) {
	before := testutil.ToFloat64(transitionsTotal.WithLabelValues("CREATED", "CREATED"))
	RecordTransition("CREATED", "CREATED")
	assert.Equal(t, before, testutil.ToFloat64(transitionsTotal.WithLabelValues("CREATED", "CREATED")))

	before = testutil.ToFloat64(transitionsTotal.WithLabelValues("CREATED", "RUNNING"))
	RecordTransition("CREATED", "RUNNING")
	assert.Equal(t, before+1, testutil.ToFloat64(transitionsTotal.WithLabelValues("CREATED", "RUNNING")))
}

func TestProvisionStarted(t *testing.T) {
	done := ProvisionStarted()
	assert.Equal(t, float64(1), testutil.ToFloat64(provisionsInFlight))
	done("success")
	assert.Equal(t, float64(0), testutil.ToFloat64(provisionsInFlight))
}

func TestHandlerExposesLifecycleMetrics(t *testing.T) {
	RecordOperation("create", nil)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "traefiker_lifecycle_operations_total")
}
