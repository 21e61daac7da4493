// Package webhook turns carrier callbacks into status commands.
//
// Ingestion is fail-safe by contract: the carrier retries on non-200 and
// blocks the whole callback queue behind a poisoned payload, so every
// payload is acknowledged. Payloads that cannot be applied are written to a
// structured dead-letter log entry carrying the raw body.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ingestResults = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "fulfillment",
	Subsystem: "webhook",
	Name:      "ingest_results_total",
	Help:      "Webhook payload outcomes by result.",
}, []string{"result"})

// Payload is the carrier's callback body.
type Payload struct {
	Event string `json:"event"`
	Data  struct {
		AWBCode           string `json:"awb_code"`
		CurrentStatus     string `json:"current_status"`
		CurrentStatusTime string `json:"current_status_time"`
		Location          string `json:"location,omitempty"`
	} `json:"data"`
}

// Outcome reports what ingestion did with a payload. Every outcome is
// acknowledged upstream; Applied distinguishes real state changes from
// drops.
type Outcome struct {
	Applied bool
	Result  string
}

const (
	resultApplied    = "applied"
	resultDuplicate  = "duplicate"
	resultMalformed  = "malformed"
	resultUnknownAWB = "unknown_awb"
	resultDropped    = "dropped"
	resultDeadLetter = "dead_letter"
)

type eventHandler func(ctx context.Context, payload Payload) (Outcome, error)

// orderLookup resolves webhook AWB codes to order identifiers.
type orderLookup interface {
	Create() commands.OrderUoW
}

// statusApplier is implemented by the external status command handler.
type statusApplier interface {
	Handle(ctx context.Context, cmd commands.ApplyExternalStatusCommand) (commands.ApplyExternalStatusResult, error)
}

// Ingestor validates carrier callbacks and dispatches them by event name.
// The dispatch table is fixed at construction; registering a handler for an
// event name outside the carrier's published vocabulary is a construction
// error, which catches typos before they silently drop traffic.
type Ingestor struct {
	uowFactory orderLookup
	applier    statusApplier
	handlers   map[string]eventHandler
	logger     *slog.Logger
}

// knownEvents is the carrier's published webhook vocabulary.
var knownEvents = map[string]struct{}{
	"shipment.status_update": {},
	"shipment.delivered":     {},
	"shipment.cancelled":     {},
	"shipment.rto_initiated": {},
}

// NewIngestor creates a webhook ingestor with the full dispatch table.
func NewIngestor(
	uowFactory orderLookup,
	applier statusApplier,
	logger *slog.Logger,
) (*Ingestor, error) {
	ing := &Ingestor{
		uowFactory: uowFactory,
		applier:    applier,
		logger:     logger.With(slog.String("component", "webhook_ingestor")),
	}

	table := map[string]eventHandler{
		"shipment.status_update": ing.applyStatus,
		"shipment.delivered":     ing.applyStatus,
		"shipment.cancelled":     ing.applyStatus,
		"shipment.rto_initiated": ing.applyStatus,
	}

	for event := range table {
		if _, ok := knownEvents[event]; !ok {
			return nil, errs.NewValueIsInvalidErrorWithCause("event",
				fmt.Errorf("%q is not a known carrier event", event))
		}
	}
	ing.handlers = table

	return ing, nil
}

// Ingest processes one raw callback body. It never returns an error: every
// payload is acknowledged and failures are logged, counted and dead-lettered
// instead of bounced back to the carrier.
func (ing *Ingestor) Ingest(ctx context.Context, raw []byte) Outcome {
	outcome := ing.ingest(ctx, raw)
	ingestResults.WithLabelValues(outcome.Result).Inc()
	return outcome
}

func (ing *Ingestor) ingest(ctx context.Context, raw []byte) Outcome {
	var payload Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		ing.logger.Warn("malformed webhook payload",
			slog.String("body", string(raw)), slog.Any("error", err))
		return Outcome{Result: resultMalformed}
	}

	handler, ok := ing.handlers[payload.Event]
	if !ok {
		ing.logger.Info("unhandled webhook event", slog.String("event", payload.Event))
		return Outcome{Result: resultDropped}
	}

	outcome, err := handler(ctx, payload)
	if err != nil {
		// Dead letter: the payload was valid but could not be applied.
		// The full body is preserved so it can be replayed by hand.
		ing.logger.Error("webhook dead letter",
			slog.String("event", payload.Event),
			slog.String("awb_code", payload.Data.AWBCode),
			slog.String("body", string(raw)),
			slog.Any("error", err))
		return Outcome{Result: resultDeadLetter}
	}

	return outcome
}

func (ing *Ingestor) applyStatus(ctx context.Context, payload Payload) (Outcome, error) {
	if payload.Data.AWBCode == "" || payload.Data.CurrentStatus == "" {
		ing.logger.Warn("webhook payload missing awb_code or current_status",
			slog.String("event", payload.Event))
		return Outcome{Result: resultMalformed}, nil
	}

	eventTime, err := parseEventTime(payload.Data.CurrentStatusTime)
	if err != nil {
		ing.logger.Warn("webhook payload has unparseable event time",
			slog.String("event", payload.Event),
			slog.String("current_status_time", payload.Data.CurrentStatusTime))
		return Outcome{Result: resultMalformed}, nil
	}

	orderID, err := ing.resolveAWB(ctx, payload.Data.AWBCode)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			ing.logger.Warn("webhook for unknown awb",
				slog.String("awb_code", payload.Data.AWBCode))
			return Outcome{Result: resultUnknownAWB}, nil
		}
		return Outcome{}, err
	}

	cmd, err := commands.NewApplyExternalStatusCommand(
		orderID, payload.Data.CurrentStatus, eventTime, payload.Data.Location)
	if err != nil {
		return Outcome{}, err
	}

	result, err := ing.applier.Handle(ctx, cmd)
	if err != nil {
		return Outcome{}, err
	}

	if !result.Recorded {
		return Outcome{Result: resultDuplicate}, nil
	}

	return Outcome{Applied: true, Result: resultApplied}, nil
}

func (ing *Ingestor) resolveAWB(ctx context.Context, awbCode string) (kernel.UUID, error) {
	uow := ing.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return kernel.UUID{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.OrderRepository().GetByAWB(ctx, awbCode)
	if err != nil {
		return kernel.UUID{}, err
	}

	return aggregate.ID(), nil
}

// parseEventTime accepts the carrier's two observed timestamp shapes.
func parseEventTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", s)
}
