package payment

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// CheckoutRequest is what the checkout producer knows when it creates the
// provider session.
type CheckoutRequest struct {
	Email       string
	Phone       string
	Destination string
	UserID      *uuid.UUID
	Quantities  map[int64]int
}

// SessionMetadata builds the session metadata that later comes back on the
// webhook. The cart is written in the object encoding.
func SessionMetadata(req CheckoutRequest) (map[string]string, error) {
	email := strings.TrimSpace(req.Email)
	destination := strings.TrimSpace(req.Destination)
	if email == "" || destination == "" {
		return nil, fmt.Errorf("%w: email and destination are required", ErrIncompleteOrderData)
	}
	cart, err := EncodeCart(req.Quantities)
	if err != nil {
		return nil, err
	}

	md := map[string]string{
		MetadataEmail:       email,
		MetadataPhone:       strings.TrimSpace(req.Phone),
		MetadataDestination: destination,
		MetadataCart:        cart,
	}
	if req.UserID != nil {
		md[MetadataUserUUID] = req.UserID.String()
	}
	return md, nil
}
