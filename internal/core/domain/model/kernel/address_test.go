package kernel_test

import (
	"testing"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAddress(t *testing.T) {
	t.Run("valid address is constructed", func(t *testing.T) {
		address, err := kernel.NewAddress("221B Baker Street", "Mumbai", "Maharashtra", "400001")

		require.NoError(t, err)
		require.NoError(t, address.Validate())
		assert.Equal(t, "221B Baker Street", address.Line1())
		assert.Equal(t, "Mumbai", address.City())
		assert.Equal(t, "Maharashtra", address.State())
		assert.Equal(t, "400001", address.Pincode())
	})

	t.Run("missing fields are rejected", func(t *testing.T) {
		tests := []struct {
			name                        string
			line1, city, state, pincode string
		}{
			{"empty line1", "", "Mumbai", "Maharashtra", "400001"},
			{"empty city", "221B Baker Street", "", "Maharashtra", "400001"},
			{"empty state", "221B Baker Street", "Mumbai", "", "400001"},
			{"empty pincode", "221B Baker Street", "Mumbai", "Maharashtra", ""},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				_, err := kernel.NewAddress(tc.line1, tc.city, tc.state, tc.pincode)
				require.ErrorIs(t, err, errs.ErrValueIsRequired)
			})
		}
	})

	t.Run("malformed pincode is rejected", func(t *testing.T) {
		for _, pincode := range []string{"4000", "4000011", "40000a", "4000 1"} {
			_, err := kernel.NewAddress("221B Baker Street", "Mumbai", "Maharashtra", pincode)
			require.ErrorIs(t, err, errs.ErrValueIsInvalid, "pincode %q", pincode)
		}
	})
}

func TestAddress_Validate(t *testing.T) {
	t.Run("zero value fails validation", func(t *testing.T) {
		var address kernel.Address
		require.ErrorIs(t, address.Validate(), errs.ErrValueIsRequired)
	})
}

func TestAddress_IsEqual(t *testing.T) {
	a, err := kernel.NewAddress("221B Baker Street", "Mumbai", "Maharashtra", "400001")
	require.NoError(t, err)
	b, err := kernel.NewAddress("221B Baker Street", "Mumbai", "Maharashtra", "400001")
	require.NoError(t, err)
	c, err := kernel.NewAddress("10 Downing Street", "Delhi", "Delhi", "110001")
	require.NoError(t, err)

	assert.True(t, a.IsEqual(b))
	assert.False(t, a.IsEqual(c))
}
