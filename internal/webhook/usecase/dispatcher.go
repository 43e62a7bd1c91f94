package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sourcegraph/conc/pool"

	"github.com/nazarli-shabnam/subscription-tracker/internal/clock"
	apperrors "github.com/nazarli-shabnam/subscription-tracker/internal/errors"
	"github.com/nazarli-shabnam/subscription-tracker/internal/metrics"
	"github.com/nazarli-shabnam/subscription-tracker/internal/webhook/domain"
	"github.com/nazarli-shabnam/subscription-tracker/internal/webhook/service"
)

// Delivery request headers.
const (
	HeaderSignature = "X-Webhook-Signature"
	HeaderEvent     = "X-Webhook-Event"
	HeaderWebhookID = "X-Webhook-Id"
)

const metricsChannel = "webhook"

// DispatcherConfig tunes outbound delivery.
type DispatcherConfig struct {
	Timeout        time.Duration
	MaxConcurrency int
	MaxRetries     int
}

// NewHTTPClient builds the delivery client. Each attempt is bounded by timeout;
// non-2xx responses are handed back to the caller unchanged.
func NewHTTPClient(timeout time.Duration, maxRetries int, logger *slog.Logger) *http.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = maxRetries
	client.RetryWaitMin = 100 * time.Millisecond
	client.RetryWaitMax = time.Second
	client.HTTPClient.Timeout = timeout
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.Logger = nil
	if logger != nil {
		client.Logger = logger
	}
	return client.StandardClient()
}

// EventDispatcher signs and POSTs domain events to registered webhooks.
type EventDispatcher struct {
	webhookRepo    WebhookRepository
	keeper         service.SecretKeeper
	signer         service.Signer
	httpClient     *http.Client
	clock          clock.Clock
	metrics        metrics.BusinessMetrics
	logger         *slog.Logger
	maxConcurrency int
}

// NewEventDispatcher creates a new EventDispatcher
func NewEventDispatcher(
	webhookRepo WebhookRepository,
	keeper service.SecretKeeper,
	signer service.Signer,
	httpClient *http.Client,
	config DispatcherConfig,
	clk clock.Clock,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) *EventDispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if businessMetrics == nil {
		businessMetrics = metrics.NewNoOpBusinessMetrics()
	}
	if httpClient == nil {
		httpClient = NewHTTPClient(config.Timeout, config.MaxRetries, logger)
	}
	maxConcurrency := config.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	return &EventDispatcher{
		webhookRepo:    webhookRepo,
		keeper:         keeper,
		signer:         signer,
		httpClient:     httpClient,
		clock:          clk,
		metrics:        businessMetrics,
		logger:         logger,
		maxConcurrency: maxConcurrency,
	}
}

// Dispatch delivers event to every active webhook of ownerID subscribed to it
// and waits for all deliveries to finish.
func (d *EventDispatcher) Dispatch(ctx context.Context, ownerID uuid.UUID, event string, data json.RawMessage) {
	webhooks, err := d.webhookRepo.ListActiveForEvent(ctx, ownerID, domain.Event(event))
	if err != nil {
		d.logger.Error("failed to load webhooks for event",
			slog.String("owner_id", ownerID.String()),
			slog.String("event", event),
			slog.Any("error", err),
		)
		return
	}
	if len(webhooks) == 0 {
		return
	}

	payload, body, err := d.encode(event, data)
	if err != nil {
		d.logger.Error("failed to encode webhook payload",
			slog.String("event", event),
			slog.Any("error", err),
		)
		return
	}

	p := pool.New().WithMaxGoroutines(d.maxConcurrency)
	for _, webhook := range webhooks {
		p.Go(func() {
			d.deliver(ctx, webhook, event, payload, body)
		})
	}
	p.Wait()
}

// encode returns the compacted data that gets signed and the full request body.
// HTML escaping stays off so the data inside the body is byte-for-byte the
// signed payload.
func (d *EventDispatcher) encode(event string, data json.RawMessage) ([]byte, []byte, error) {
	if len(data) == 0 {
		data = json.RawMessage("null")
	}

	var payload bytes.Buffer
	if err := json.Compact(&payload, data); err != nil {
		return nil, nil, apperrors.Wrap(err, "invalid event data")
	}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	enc.SetEscapeHTML(false)
	err := enc.Encode(domain.Delivery{
		Event:     event,
		Timestamp: d.clock.Now(),
		Data:      payload.Bytes(),
	})
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to marshal delivery")
	}
	return payload.Bytes(), bytes.TrimSuffix(body.Bytes(), []byte("\n")), nil
}

func (d *EventDispatcher) deliver(ctx context.Context, webhook *domain.Webhook, event string, payload, body []byte) {
	if err := d.post(ctx, webhook, event, payload, body); err != nil {
		d.logger.Warn("webhook delivery failed",
			slog.String("webhook_id", webhook.ID.String()),
			slog.String("event", event),
			slog.Any("error", err),
		)
		d.recordFailure(ctx, webhook, event)
		return
	}

	if err := d.webhookRepo.RecordSuccess(ctx, webhook.ID, d.clock.Now()); err != nil {
		d.logger.Error("failed to record webhook success",
			slog.String("webhook_id", webhook.ID.String()),
			slog.Any("error", err),
		)
	}
	d.metrics.RecordDelivery(ctx, metricsChannel, event, metrics.OutcomeDelivered)
}

func (d *EventDispatcher) post(ctx context.Context, webhook *domain.Webhook, event string, payload, body []byte) error {
	secret, err := d.keeper.Open(ctx, webhook.SealedSecret)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook.URL, bytes.NewReader(body))
	if err != nil {
		return apperrors.Wrap(err, "failed to build webhook request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderSignature, d.signer.Sign(secret, payload))
	req.Header.Set(HeaderEvent, event)
	req.Header.Set(HeaderWebhookID, webhook.ID.String())

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(err, "webhook request failed")
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.New("webhook responded with status " + resp.Status)
	}
	return nil
}

func (d *EventDispatcher) recordFailure(ctx context.Context, webhook *domain.Webhook, event string) {
	state, err := d.webhookRepo.RecordFailure(ctx, webhook.ID, d.clock.Now())
	if err != nil {
		d.logger.Error("failed to record webhook failure",
			slog.String("webhook_id", webhook.ID.String()),
			slog.Any("error", err),
		)
		d.metrics.RecordDelivery(ctx, metricsChannel, event, metrics.OutcomeFailed)
		return
	}

	if !state.IsActive {
		d.logger.Warn("webhook deactivated after consecutive failures",
			slog.String("webhook_id", webhook.ID.String()),
			slog.Int("failure_count", state.FailureCount),
		)
		d.metrics.RecordDelivery(ctx, metricsChannel, event, metrics.OutcomeDeactivated)
		return
	}
	d.metrics.RecordDelivery(ctx, metricsChannel, event, metrics.OutcomeFailed)
}
