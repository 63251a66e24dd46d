package payment

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionMetadataRoundTrip(t *testing.T) {
	userID := uuid.New()
	md, err := SessionMetadata(CheckoutRequest{
		Email:       " a@b.com ",
		Phone:       "0123",
		Destination: "X St",
		UserID:      &userID,
		Quantities:  map[int64]int{5: 1, 7: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", md[MetadataEmail])
	assert.Equal(t, userID.String(), md[MetadataUserUUID])

	out, err := NormalizeCheckoutSession(checkoutEvent(t, "sess_roundtrip", md))
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{5: 1, 7: 2}, out.Cart.Quantities())
	require.NotNil(t, out.UserID)
	assert.Equal(t, userID, *out.UserID)
}

func TestSessionMetadataGuestHasNoUUID(t *testing.T) {
	md, err := SessionMetadata(CheckoutRequest{Email: "a@b.com", Destination: "X St", Quantities: map[int64]int{5: 1}})
	require.NoError(t, err)
	_, ok := md[MetadataUserUUID]
	assert.False(t, ok)
}

func TestSessionMetadataRejects(t *testing.T) {
	_, err := SessionMetadata(CheckoutRequest{Destination: "X St", Quantities: map[int64]int{5: 1}})
	assert.ErrorIs(t, err, ErrIncompleteOrderData)

	_, err = SessionMetadata(CheckoutRequest{Email: "a@b.com", Destination: "X St"})
	assert.ErrorIs(t, err, ErrEmptyCart)
}
