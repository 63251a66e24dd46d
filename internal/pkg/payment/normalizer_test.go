package payment

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMetadata() map[string]string {
	return map[string]string{
		MetadataEmail:       "a@b.com",
		MetadataDestination: "X St",
		MetadataCart:        `{"5":{"quantity":1}}`,
	}
}

func TestNormalizeCheckoutSession(t *testing.T) {
	userID := uuid.New()
	md := validMetadata()
	md[MetadataPhone] = " +49 123 "
	md[MetadataUserUUID] = userID.String()

	out, err := NormalizeCheckoutSession(checkoutEvent(t, "sess_1", md))
	require.NoError(t, err)
	assert.Equal(t, "sess_1", out.SessionID)
	assert.Equal(t, "a@b.com", out.Email)
	assert.Equal(t, "+49 123", out.Phone)
	assert.Equal(t, "X St", out.Destination)
	require.NotNil(t, out.UserID)
	assert.Equal(t, userID, *out.UserID)
	assert.Equal(t, []int64{5}, out.Cart.Units())
}

func TestNormalizeCheckoutSessionGuest(t *testing.T) {
	out, err := NormalizeCheckoutSession(checkoutEvent(t, "sess_guest", validMetadata()))
	require.NoError(t, err)
	assert.Nil(t, out.UserID)
	assert.Empty(t, out.Phone)
}

func TestNormalizeCheckoutSessionMalformedUUIDIsGuest(t *testing.T) {
	md := validMetadata()
	md[MetadataUserUUID] = "not-a-uuid"

	out, err := NormalizeCheckoutSession(checkoutEvent(t, "sess_bad_uuid", md))
	require.NoError(t, err)
	assert.Nil(t, out.UserID)
}

func TestNormalizeCheckoutSessionErrors(t *testing.T) {
	without := func(key string) map[string]string {
		md := validMetadata()
		delete(md, key)
		return md
	}
	with := func(key, value string) map[string]string {
		md := validMetadata()
		md[key] = value
		return md
	}

	tests := []struct {
		name string
		ev   *Event
		want error
	}{
		{"nil event", nil, ErrMalformedEvent},
		{"no object", &Event{Type: EventTypeSessionCompleted}, ErrMalformedEvent},
		{"null object", &Event{Object: json.RawMessage(`null`)}, ErrMalformedEvent},
		{"undecodable object", &Event{Object: json.RawMessage(`"str"`)}, ErrMalformedEvent},
		{"no session id", &Event{Object: json.RawMessage(`{"object":"checkout.session","metadata":{}}`)}, ErrMalformedEvent},
		{"no metadata", checkoutEvent(t, "sess_nomd", nil), ErrMalformedEvent},
		{"no email", checkoutEvent(t, "sess_a", without(MetadataEmail)), ErrIncompleteOrderData},
		{"email too long", checkoutEvent(t, "sess_e", with(MetadataEmail, strings.Repeat("a", 250)+"@b.com")), ErrIncompleteOrderData},
		{"phone too long", checkoutEvent(t, "sess_f", with(MetadataPhone, strings.Repeat("1", 51))), ErrIncompleteOrderData},
		{"session id too long", checkoutEvent(t, "cs_"+strings.Repeat("x", 200), validMetadata()), ErrIncompleteOrderData},
		{"blank destination", checkoutEvent(t, "sess_b", with(MetadataDestination, "  ")), ErrIncompleteOrderData},
		{"no cart", checkoutEvent(t, "sess_c", without(MetadataCart)), ErrEmptyCart},
		{"bad cart", checkoutEvent(t, "sess_d", with(MetadataCart, `{"5":{"quantity":0}}`)), ErrMalformedCart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeCheckoutSession(tt.ev)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsInputError(err))
		})
	}
}

func TestIncompleteOrderDataNamesFields(t *testing.T) {
	md := validMetadata()
	delete(md, MetadataEmail)
	delete(md, MetadataDestination)

	_, err := NormalizeCheckoutSession(checkoutEvent(t, "sess_fields", md))
	require.ErrorIs(t, err, ErrIncompleteOrderData)
	assert.Contains(t, err.Error(), "email")
	assert.Contains(t, err.Error(), "destination")
}

func TestIncompleteOrderDataNamesLengthLimit(t *testing.T) {
	md := validMetadata()
	md[MetadataEmail] = strings.Repeat("a", 250) + "@b.com"
	delete(md, MetadataDestination)

	_, err := NormalizeCheckoutSession(checkoutEvent(t, "sess_len", md))
	require.ErrorIs(t, err, ErrIncompleteOrderData)
	assert.Equal(t, "incomplete order data: destination is required; email exceeds 200 characters", err.Error())
}
