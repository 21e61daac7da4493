package guard_test

import (
	"errors"
	"testing"

	"fulfillment/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorGuard_Validate(t *testing.T) {
	t.Run("constructed_guard_returns_nil", func(t *testing.T) {
		g := guard.NewConstructorGuard()

		require.NoError(t, g.Validate(errors.New("not constructed")))
		require.NoError(t, g.Validate(nil))
	})

	t.Run("zero_value_guard_returns_custom_error", func(t *testing.T) {
		var g guard.ConstructorGuard
		expectedError := errors.New("entity not constructed")

		err := g.Validate(expectedError)

		require.Error(t, err)
		assert.Equal(t, expectedError, err)
	})

	t.Run("zero_value_guard_returns_default_error_when_nil", func(t *testing.T) {
		var g guard.ConstructorGuard

		err := g.Validate(nil)

		require.Error(t, err)
		assert.Equal(t, guard.ErrDefaultConstructorGuard, err)
	})
}

func TestConstructorGuard_UsageInDomainObject(t *testing.T) {
	type shipmentRef struct {
		id    string
		guard guard.ConstructorGuard
	}

	errNotConstructed := errors.New("shipmentRef must be created via newShipmentRef")

	newShipmentRef := func(id string) (shipmentRef, error) {
		if id == "" {
			return shipmentRef{}, errors.New("id is required")
		}
		return shipmentRef{id: id, guard: guard.NewConstructorGuard()}, nil
	}

	t.Run("constructed_object_passes_validation", func(t *testing.T) {
		ref, err := newShipmentRef("S100")
		require.NoError(t, err)
		require.NoError(t, ref.guard.Validate(errNotConstructed))
	})

	t.Run("zero_value_object_fails_validation", func(t *testing.T) {
		var ref shipmentRef
		err := ref.guard.Validate(errNotConstructed)
		require.Error(t, err)
		assert.Equal(t, errNotConstructed, err)
	})

	t.Run("guard_can_be_safely_passed_by_value", func(t *testing.T) {
		ref, err := newShipmentRef("S100")
		require.NoError(t, err)

		refCopy := ref
		require.NoError(t, refCopy.guard.Validate(errNotConstructed))
	})
}
