// Package http exposes the fulfillment use cases over a REST API.
package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/application/webhook"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server routes HTTP requests to command and query handlers.
type Server struct {
	createShipmentHandler   commands.CreateShipmentCommandHandler
	cancelShipmentHandler   commands.CancelShipmentCommandHandler
	updateStatusHandler     commands.UpdateStatusCommandHandler
	refreshTrackingHandler  commands.RefreshTrackingCommandHandler
	generateDocumentHandler commands.GenerateDocumentCommandHandler
	schedulePickupHandler   commands.SchedulePickupCommandHandler
	bulkOperationHandler    commands.BulkOperationCommandHandler

	checkServiceabilityHandler queries.CheckServiceabilityQueryHandler
	getActiveShipmentsHandler  queries.GetActiveShipmentsQueryHandler

	ingestor *webhook.Ingestor
}

// NewServer creates an HTTP server with the required handlers.
func NewServer(
	createShipmentHandler commands.CreateShipmentCommandHandler,
	cancelShipmentHandler commands.CancelShipmentCommandHandler,
	updateStatusHandler commands.UpdateStatusCommandHandler,
	refreshTrackingHandler commands.RefreshTrackingCommandHandler,
	generateDocumentHandler commands.GenerateDocumentCommandHandler,
	schedulePickupHandler commands.SchedulePickupCommandHandler,
	bulkOperationHandler commands.BulkOperationCommandHandler,
	checkServiceabilityHandler queries.CheckServiceabilityQueryHandler,
	getActiveShipmentsHandler queries.GetActiveShipmentsQueryHandler,
	ingestor *webhook.Ingestor,
) *Server {
	return &Server{
		createShipmentHandler:      createShipmentHandler,
		cancelShipmentHandler:      cancelShipmentHandler,
		updateStatusHandler:        updateStatusHandler,
		refreshTrackingHandler:     refreshTrackingHandler,
		generateDocumentHandler:    generateDocumentHandler,
		schedulePickupHandler:      schedulePickupHandler,
		bulkOperationHandler:       bulkOperationHandler,
		checkServiceabilityHandler: checkServiceabilityHandler,
		getActiveShipmentsHandler:  getActiveShipmentsHandler,
		ingestor:                   ingestor,
	}
}

// RegisterRoutes attaches all endpoints to the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.POST("/order/shiprocket/create/:orderId", s.CreateShipment)
	api.GET("/order/shiprocket/track/:orderId", s.TrackShipment)
	api.GET("/order/shiprocket/label/:orderId", s.GenerateLabel)
	api.GET("/order/shiprocket/invoice/:orderId", s.GenerateInvoice)
	api.POST("/order/shiprocket/manifest", s.BulkGenerateManifest)
	api.POST("/order/shiprocket/manifest/:orderId", s.GenerateManifest)
	api.POST("/order/shiprocket/pickup", s.BulkSchedulePickup)
	api.POST("/order/shiprocket/pickup/:orderId", s.SchedulePickup)
	api.POST("/order/shiprocket/cancel/:orderId", s.CancelShipment)
	api.GET("/order/shiprocket/serviceability", s.CheckServiceability)
	api.POST("/order/shiprocket/bulk", s.BulkOperation)
	api.PUT("/order/status/:orderId", s.UpdateStatus)
	api.GET("/shipments/active", s.GetActiveShipments)
	api.POST("/webhook/shiprocket", s.ShiprocketWebhook)
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// writeError maps domain and application errors to HTTP statuses.
func writeError(ctx echo.Context, err error) error {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, errs.ErrValueIsInvalid), errors.Is(err, errs.ErrValueIsRequired):
		status = http.StatusBadRequest
	case errors.Is(err, errs.ErrObjectNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrUpstreamRejected):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrUpstreamTransient):
		status = http.StatusBadGateway
	case errors.Is(err, order.ErrOrderIsTerminal),
		errors.Is(err, order.ErrShipmentAlreadyExists),
		errors.Is(err, order.ErrNoShipment),
		errors.Is(err, order.ErrTransitionNotAllowed):
		status = http.StatusConflict
	}

	return ctx.JSON(status, ErrorResponse{Code: status, Message: err.Error()})
}

func orderIDParam(ctx echo.Context) (kernel.UUID, error) {
	return kernel.UUIDFromString(ctx.Param("orderId"))
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// CreateShipmentResponse is the JSON body for shipment creation.
type CreateShipmentResponse struct {
	ProviderOrderID string   `json:"provider_order_id"`
	ShipmentID      string   `json:"shipment_id"`
	AWBCode         string   `json:"awb_code,omitempty"`
	CourierName     string   `json:"courier_name,omitempty"`
	LabelURL        string   `json:"label_url,omitempty"`
	AlreadyExists   bool     `json:"already_exists,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
}

// CreateShipment handles POST /api/order/shiprocket/create/:orderId.
// The follow-up AWB and label steps are best effort; their failures come
// back as warnings on a successful response.
func (s *Server) CreateShipment(ctx echo.Context) error {
	orderID, err := orderIDParam(ctx)
	if err != nil {
		return writeError(ctx, err)
	}

	force := ctx.QueryParam("force") == "true"

	cmd, err := commands.NewCreateShipmentCommand(orderID, force)
	if err != nil {
		return writeError(ctx, err)
	}

	result, err := s.createShipmentHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}

	status := http.StatusCreated
	if result.AlreadyExists {
		status = http.StatusOK
	}

	return ctx.JSON(status, CreateShipmentResponse{
		ProviderOrderID: result.ProviderOrderID,
		ShipmentID:      result.ShipmentID,
		AWBCode:         result.AWBCode,
		CourierName:     result.CourierName,
		LabelURL:        result.LabelURL,
		AlreadyExists:   result.AlreadyExists,
		Warnings:        result.Warnings,
	})
}

// TrackingEventResponse is one checkpoint in a tracking response.
type TrackingEventResponse struct {
	Status    string    `json:"status"`
	RawStatus string    `json:"raw_status"`
	Location  string    `json:"location,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TrackShipmentResponse is the JSON body for tracking.
type TrackShipmentResponse struct {
	AWBCode       string                  `json:"awb_code"`
	CourierName   string                  `json:"courier_name"`
	CurrentStatus string                  `json:"current_status"`
	History       []TrackingEventResponse `json:"history"`
}

// TrackShipment handles GET /api/order/shiprocket/track/:orderId.
// It refreshes from the carrier and returns the merged history.
func (s *Server) TrackShipment(ctx echo.Context) error {
	orderID, err := orderIDParam(ctx)
	if err != nil {
		return writeError(ctx, err)
	}

	cmd, err := commands.NewRefreshTrackingCommand(orderID)
	if err != nil {
		return writeError(ctx, err)
	}

	result, err := s.refreshTrackingHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}

	history := make([]TrackingEventResponse, len(result.History))
	for i, event := range result.History {
		history[i] = TrackingEventResponse{
			Status:    event.Status.String(),
			RawStatus: event.RawStatus,
			Location:  event.Location,
			Timestamp: event.At,
		}
	}

	return ctx.JSON(http.StatusOK, TrackShipmentResponse{
		AWBCode:       result.AWBCode,
		CourierName:   result.CourierName,
		CurrentStatus: result.CurrentStatus.String(),
		History:       history,
	})
}

// DocumentResponse is the JSON body for document generation.
type DocumentResponse struct {
	URL    string `json:"url"`
	Cached bool   `json:"cached,omitempty"`
}

func (s *Server) generateDocument(ctx echo.Context, kind commands.DocumentKind) error {
	orderID, err := orderIDParam(ctx)
	if err != nil {
		return writeError(ctx, err)
	}

	cmd, err := commands.NewGenerateDocumentCommand(orderID, kind)
	if err != nil {
		return writeError(ctx, err)
	}

	result, err := s.generateDocumentHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, DocumentResponse{URL: result.URL, Cached: result.Cached})
}

// GenerateLabel handles GET /api/order/shiprocket/label/:orderId.
func (s *Server) GenerateLabel(ctx echo.Context) error {
	return s.generateDocument(ctx, commands.DocumentLabel)
}

// GenerateInvoice handles GET /api/order/shiprocket/invoice/:orderId.
func (s *Server) GenerateInvoice(ctx echo.Context) error {
	return s.generateDocument(ctx, commands.DocumentInvoice)
}

// GenerateManifest handles POST /api/order/shiprocket/manifest/:orderId.
func (s *Server) GenerateManifest(ctx echo.Context) error {
	return s.generateDocument(ctx, commands.DocumentManifest)
}

// SchedulePickupResponse is the JSON body for pickup scheduling.
type SchedulePickupResponse struct {
	ScheduledAt time.Time `json:"scheduled_at"`
}

// SchedulePickup handles POST /api/order/shiprocket/pickup/:orderId.
func (s *Server) SchedulePickup(ctx echo.Context) error {
	orderID, err := orderIDParam(ctx)
	if err != nil {
		return writeError(ctx, err)
	}

	cmd, err := commands.NewSchedulePickupCommand(orderID)
	if err != nil {
		return writeError(ctx, err)
	}

	result, err := s.schedulePickupHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, SchedulePickupResponse{ScheduledAt: result.ScheduledAt})
}

// CancelShipmentRequest is the JSON body for cancellation.
type CancelShipmentRequest struct {
	Reason string `json:"reason"`
}

// CancelShipmentResponse is the JSON body for a cancellation outcome.
type CancelShipmentResponse struct {
	Status   string   `json:"status"`
	Warnings []string `json:"warnings,omitempty"`
}

// CancelShipment handles POST /api/order/shiprocket/cancel/:orderId.
// Cancellation is fail-open: a carrier refusal is a warning, not an error.
func (s *Server) CancelShipment(ctx echo.Context) error {
	orderID, err := orderIDParam(ctx)
	if err != nil {
		return writeError(ctx, err)
	}

	var body CancelShipmentRequest
	if err = ctx.Bind(&body); err != nil {
		return writeError(ctx, errs.NewValueIsInvalidErrorWithCause("body", err))
	}

	cmd, err := commands.NewCancelShipmentCommand(orderID, body.Reason)
	if err != nil {
		return writeError(ctx, err)
	}

	result, err := s.cancelShipmentHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, CancelShipmentResponse{
		Status:   result.Status.String(),
		Warnings: result.Warnings,
	})
}

// UpdateStatusRequest is the JSON body for a manual status change.
type UpdateStatusRequest struct {
	Status   string `json:"status"`
	Notes    string `json:"notes,omitempty"`
	Override bool   `json:"override,omitempty"`
}

// UpdateStatus handles PUT /api/order/status/:orderId.
func (s *Server) UpdateStatus(ctx echo.Context) error {
	orderID, err := orderIDParam(ctx)
	if err != nil {
		return writeError(ctx, err)
	}

	var body UpdateStatusRequest
	if err = ctx.Bind(&body); err != nil {
		return writeError(ctx, errs.NewValueIsInvalidErrorWithCause("body", err))
	}

	newStatus, err := order.StatusFromString(body.Status)
	if err != nil {
		return writeError(ctx, err)
	}

	cmd, err := commands.NewUpdateStatusCommand(orderID, newStatus, body.Notes, body.Override)
	if err != nil {
		return writeError(ctx, err)
	}

	if err = s.updateStatusHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]string{"status": newStatus.String()})
}

// CheckServiceabilityResponse is the JSON body for serviceability checks.
type CheckServiceabilityResponse struct {
	Serviceable bool                    `json:"serviceable"`
	Options     []CourierOptionResponse `json:"options"`
}

// CourierOptionResponse is one courier offered for the lane.
type CourierOptionResponse struct {
	CourierName string  `json:"courier_name"`
	Rate        float64 `json:"rate"`
	ETADays     int     `json:"eta_days"`
}

// CheckServiceability handles GET /api/order/shiprocket/serviceability.
func (s *Server) CheckServiceability(ctx echo.Context) error {
	var params struct {
		PickupPincode   string  `query:"pickup_pincode"`
		DeliveryPincode string  `query:"delivery_pincode"`
		WeightKg        float64 `query:"weight_kg"`
		COD             bool    `query:"cod"`
	}
	if err := ctx.Bind(&params); err != nil {
		return writeError(ctx, errs.NewValueIsInvalidErrorWithCause("query", err))
	}

	query, err := queries.NewCheckServiceabilityQuery(
		params.PickupPincode, params.DeliveryPincode, params.WeightKg, params.COD)
	if err != nil {
		return writeError(ctx, err)
	}

	result, err := s.checkServiceabilityHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	options := make([]CourierOptionResponse, len(result.Options))
	for i, option := range result.Options {
		options[i] = CourierOptionResponse{
			CourierName: option.CourierName,
			Rate:        option.Rate,
			ETADays:     option.ETADays,
		}
	}

	return ctx.JSON(http.StatusOK, CheckServiceabilityResponse{
		Serviceable: result.Serviceable,
		Options:     options,
	})
}

// BulkOperationRequest is the JSON body for a bulk run.
type BulkOperationRequest struct {
	Operation string   `json:"operation"`
	OrderIDs  []string `json:"order_ids"`
}

// BulkItemResponse is one order's outcome in a bulk run.
type BulkItemResponse struct {
	OrderID string `json:"order_id"`
	Success bool   `json:"success"`
	Skipped bool   `json:"skipped,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Error   string `json:"error,omitempty"`
}

// BulkOperationResponse is the JSON body for a bulk run outcome.
type BulkOperationResponse struct {
	Items     []BulkItemResponse `json:"items"`
	Succeeded int                `json:"succeeded"`
	Skipped   int                `json:"skipped"`
	Failed    int                `json:"failed"`
}

// BulkOperation handles POST /api/order/shiprocket/bulk.
// Per-order failures live in the item list; the endpoint itself succeeds
// as long as the batch ran.
func (s *Server) BulkOperation(ctx echo.Context) error {
	var body BulkOperationRequest
	if err := ctx.Bind(&body); err != nil {
		return writeError(ctx, errs.NewValueIsInvalidErrorWithCause("body", err))
	}

	return s.runBulk(ctx, body.OrderIDs, commands.BulkOp(body.Operation))
}

// BulkOrderSetRequest is the legacy JSON body carrying an order set.
type BulkOrderSetRequest struct {
	OrderIDs []string `json:"orderIds"`
}

// BulkSchedulePickup handles POST /api/order/shiprocket/pickup.
func (s *Server) BulkSchedulePickup(ctx echo.Context) error {
	var body BulkOrderSetRequest
	if err := ctx.Bind(&body); err != nil {
		return writeError(ctx, errs.NewValueIsInvalidErrorWithCause("body", err))
	}

	return s.runBulk(ctx, body.OrderIDs, commands.BulkPickup)
}

// BulkGenerateManifest handles POST /api/order/shiprocket/manifest.
func (s *Server) BulkGenerateManifest(ctx echo.Context) error {
	var body BulkOrderSetRequest
	if err := ctx.Bind(&body); err != nil {
		return writeError(ctx, errs.NewValueIsInvalidErrorWithCause("body", err))
	}

	return s.runBulk(ctx, body.OrderIDs, commands.BulkManifest)
}

func (s *Server) runBulk(ctx echo.Context, rawIDs []string, op commands.BulkOp) error {
	orderIDs := make([]kernel.UUID, 0, len(rawIDs))
	for _, raw := range rawIDs {
		id, err := kernel.UUIDFromString(raw)
		if err != nil {
			return writeError(ctx, err)
		}
		orderIDs = append(orderIDs, id)
	}

	cmd, err := commands.NewBulkOperationCommand(orderIDs, op)
	if err != nil {
		return writeError(ctx, err)
	}

	result, err := s.bulkOperationHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}

	items := make([]BulkItemResponse, len(result.Items))
	for i, item := range result.Items {
		items[i] = BulkItemResponse{
			OrderID: item.OrderID,
			Success: item.Success,
			Skipped: item.Skipped,
			Detail:  item.Detail,
			Error:   item.Error,
		}
	}

	return ctx.JSON(http.StatusOK, BulkOperationResponse{
		Items:     items,
		Succeeded: result.Succeeded,
		Skipped:   result.Skipped,
		Failed:    result.Failed,
	})
}

// ActiveShipmentResponse is one trackable shipment.
type ActiveShipmentResponse struct {
	OrderID     string `json:"order_id"`
	AWBCode     string `json:"awb_code"`
	CourierName string `json:"courier_name"`
	Status      string `json:"status"`
}

// GetActiveShipments handles GET /api/shipments/active.
func (s *Server) GetActiveShipments(ctx echo.Context) error {
	query := queries.NewGetActiveShipmentsQuery()

	shipments, err := s.getActiveShipmentsHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	response := make([]ActiveShipmentResponse, len(shipments))
	for i, shipment := range shipments {
		response[i] = ActiveShipmentResponse{
			OrderID:     shipment.OrderID.String(),
			AWBCode:     shipment.AWBCode,
			CourierName: shipment.CourierName,
			Status:      shipment.Status.String(),
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// WebhookResponse acknowledges a carrier callback.
type WebhookResponse struct {
	Applied bool   `json:"applied"`
	Result  string `json:"result"`
}

// ShiprocketWebhook handles POST /api/webhook/shiprocket.
// The carrier retries on any non-200, so every payload is acknowledged;
// what happened to it is reported in the body.
func (s *Server) ShiprocketWebhook(ctx echo.Context) error {
	raw, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return ctx.JSON(http.StatusOK, WebhookResponse{Result: "unreadable"})
	}

	outcome := s.ingestor.Ingest(ctx.Request().Context(), raw)

	return ctx.JSON(http.StatusOK, WebhookResponse{
		Applied: outcome.Applied,
		Result:  outcome.Result,
	})
}
