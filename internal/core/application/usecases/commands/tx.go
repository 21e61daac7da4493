package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// withOrder runs fn against the order aggregate inside its own transaction.
// The order row is locked by Get for the duration, so concurrent commands on
// the same order serialize here. The mutated aggregate is returned on commit.
func withOrder(
	ctx context.Context,
	factory OrderUoWFactory,
	id kernel.UUID,
	fn func(o *order.Order) error,
) (*order.Order, error) {
	uow := factory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	aggregate, err := repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err = fn(aggregate); err != nil {
		return nil, err
	}

	if err = repo.Update(ctx, aggregate); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return aggregate, nil
}
