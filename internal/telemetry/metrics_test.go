package telemetry

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistration(t *testing.T) {
	// Two instances must not collide.
	m1 := NewMetrics()
	m2 := NewMetrics()

	m1.ReportsProcessed.WithLabelValues("sdk").Inc()
	m1.ReportFailures.WithLabelValues("parse_failed").Add(2)
	m2.Verdicts.WithLabelValues("significant").Inc()

	srv := httptest.NewServer(m1.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)

	buf := make([]byte, 64*1024)
	n, _ := resp.Body.Read(buf)
	body := string(buf[:n])
	assert.Contains(t, body, `aasbench_reports_processed_total{tier="sdk"} 1`)
	assert.Contains(t, body, `aasbench_report_failures_total{state="parse_failed"} 2`)
	// m2's verdict counter lives in its own registry.
	assert.NotContains(t, body, "significant")
}
