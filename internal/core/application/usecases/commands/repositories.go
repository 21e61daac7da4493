// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management, and persistence.
package commands

import (
	"context"
	"fmt"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// Unit of Work interfaces provide transaction management for command handlers.
// These abstractions ensure data consistency across aggregate boundaries.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// OrderUoW manages transactions for order operations.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}
)

// upstreamError converts a provider failure into the matching error from the
// taxonomy. Callers use it only where a refusal must fail the command; soft
// paths keep the failure as a warning instead.
func upstreamError(operation string, f *ports.Failure) error {
	msg := fmt.Sprintf("%s (http %d)", f.Message, f.StatusCode)
	if f.Retryable() {
		return errs.NewUpstreamTransientError(operation, msg, f.StatusCode)
	}

	return errs.NewUpstreamRejectedError(operation, msg, f.StatusCode)
}
