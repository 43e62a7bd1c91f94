package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertBizMetricLine checks that the Prometheus output contains a metric matching
// the given name, partial label pattern, and value. The exporter injects extra
// OTel scope labels, hence the regex.
func assertBizMetricLine(t *testing.T, output, name, labels, value string) {
	t.Helper()
	pattern := name + `\{[^}]*` + labels + `[^}]*\} ` + value
	assert.Regexp(t, pattern, output)
}

func scrape(t *testing.T, provider *Provider) string {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	provider.Handler().ServeHTTP(w, req)
	return w.Body.String()
}

func TestNewBusinessMetrics(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "test_app")

	require.NoError(t, err)
	assert.NotNil(t, bm)
}

func TestNewNoOpBusinessMetrics(t *testing.T) {
	noOp := NewNoOpBusinessMetrics()

	assert.IsType(t, &NoOpBusinessMetrics{}, noOp)

	ctx := context.Background()
	noOp.RecordOperation(ctx, "webhook", "webhook_create", "success")
	noOp.RecordDuration(ctx, "reminder", "reminder_start", 10*time.Millisecond, "error")
	noOp.RecordDelivery(ctx, "webhook", "subscription.created", OutcomeFailed)
}

func TestBusinessMetrics_Integration(t *testing.T) {
	provider, err := NewProvider("integration_test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "integration_test")
	require.NoError(t, err)

	ctx := context.Background()

	bm.RecordOperation(ctx, "subscription", "subscription_create", "success")
	bm.RecordOperation(ctx, "subscription", "subscription_create", "success")
	bm.RecordOperation(ctx, "subscription", "subscription_create", "error")
	bm.RecordOperation(ctx, "reminder", "reminder_start", "success")

	bm.RecordDuration(ctx, "subscription", "subscription_create", 50*time.Millisecond, "success")
	bm.RecordDuration(ctx, "subscription", "subscription_create", 60*time.Millisecond, "success")

	bm.RecordDelivery(ctx, "webhook", "subscription.created", OutcomeDelivered)
	bm.RecordDelivery(ctx, "webhook", "subscription.created", OutcomeFailed)
	bm.RecordDelivery(ctx, "webhook", "subscription.created", OutcomeFailed)
	bm.RecordDelivery(ctx, "email", "7 days before", OutcomeSkipped)

	output := scrape(t, provider)

	assertBizMetricLine(
		t,
		output,
		`integration_test_operations_total`,
		`domain="subscription".*operation="subscription_create".*status="success"`,
		`2`,
	)
	assertBizMetricLine(
		t,
		output,
		`integration_test_operations_total`,
		`domain="subscription".*operation="subscription_create".*status="error"`,
		`1`,
	)
	assertBizMetricLine(
		t,
		output,
		`integration_test_operation_duration_seconds_count`,
		`domain="subscription".*operation="subscription_create".*status="success"`,
		`2`,
	)
	assertBizMetricLine(
		t,
		output,
		`integration_test_deliveries_total`,
		`channel="webhook".*event="subscription.created".*outcome="failed"`,
		`2`,
	)
	assertBizMetricLine(
		t,
		output,
		`integration_test_deliveries_total`,
		`channel="email".*outcome="skipped"`,
		`1`,
	)
}
