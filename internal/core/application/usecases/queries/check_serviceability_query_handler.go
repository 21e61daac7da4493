package queries

import (
	"context"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// CheckServiceabilityQueryHandler passes serviceability checks through to
// the carrier. Nothing is persisted; the answer is informational.
type CheckServiceabilityQueryHandler struct {
	provider ports.ShipmentProviderClient
}

// NewCheckServiceabilityQueryHandler creates a handler for serviceability checks.
func NewCheckServiceabilityQueryHandler(provider ports.ShipmentProviderClient) CheckServiceabilityQueryHandler {
	return CheckServiceabilityQueryHandler{provider: provider}
}

// Handle executes the serviceability check against the carrier.
func (h CheckServiceabilityQueryHandler) Handle(
	ctx context.Context,
	query CheckServiceabilityQuery,
) (CheckServiceabilityQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return CheckServiceabilityQueryResponse{}, err
	}

	result, err := h.provider.CheckServiceability(
		ctx, query.PickupPincode(), query.DeliveryPincode(), query.WeightKg(), query.COD())
	if err != nil {
		return CheckServiceabilityQueryResponse{}, err
	}
	if result.Failure != nil {
		if result.Failure.Retryable() {
			return CheckServiceabilityQueryResponse{}, errs.NewUpstreamTransientError(
				"check serviceability", result.Failure.Message, result.Failure.StatusCode)
		}
		return CheckServiceabilityQueryResponse{}, errs.NewUpstreamRejectedError(
			"check serviceability", result.Failure.Message, result.Failure.StatusCode)
	}

	options := make([]CourierOption, 0, len(result.Options))
	for _, option := range result.Options {
		options = append(options, CourierOption{
			CourierName: option.CourierName,
			Rate:        option.Rate,
			ETADays:     option.EstimatedDays,
		})
	}

	return CheckServiceabilityQueryResponse{
		Serviceable: result.Serviceable,
		Options:     options,
	}, nil
}
