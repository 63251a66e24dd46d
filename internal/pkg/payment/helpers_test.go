package payment

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"
	"gorm.io/gorm"

	"github.com/ManuelReschke/FoxShop/app/models"
	"github.com/ManuelReschke/FoxShop/internal/pkg/database"
)

const testSecret = "whsec_test_secret"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(database.Config{
		Driver: database.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// seedProduct creates a product and, for physical products, its stock row.
func seedProduct(t *testing.T, db *gorm.DB, id int64, virtual bool, stock int) {
	t.Helper()

	require.NoError(t, db.Create(&models.Product{
		ID:      id,
		Name:    fmt.Sprintf("product-%d", id),
		Price:   1000,
		Virtual: virtual,
		Listed:  true,
	}).Error)
	if !virtual {
		require.NoError(t, db.Create(&models.Stock{ProductID: id, Quantity: stock}).Error)
	}
}

func stockOf(t *testing.T, db *gorm.DB, id int64) int {
	t.Helper()

	var s models.Stock
	require.NoError(t, db.First(&s, "product_id = ?", id).Error)
	return s.Quantity
}

func countOrders(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(&models.Order{}).Count(&n).Error)
	return n
}

func eventPayload(t *testing.T, eventType, sessionID string, metadata map[string]string) []byte {
	t.Helper()

	session := map[string]interface{}{
		"id":     sessionID,
		"object": "checkout.session",
	}
	if metadata != nil {
		session["metadata"] = metadata
	}
	b, err := json.Marshal(map[string]interface{}{
		"id":          "evt_" + sessionID,
		"object":      "event",
		"type":        eventType,
		"api_version": "2020-08-27",
		"data":        map[string]interface{}{"object": session},
	})
	require.NoError(t, err)
	return b
}

func signPayload(payload []byte, secret string, ts time.Time) string {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: ts,
	})
	return signed.Header
}

func checkoutEvent(t *testing.T, sessionID string, metadata map[string]string) *Event {
	t.Helper()

	payload := eventPayload(t, "checkout.session.completed", sessionID, metadata)
	ev, err := NewVerifier(Config{WebhookSecret: testSecret}).Verify(payload, signPayload(payload, testSecret, time.Now()))
	require.NoError(t, err)
	return ev
}

func checkoutFor(t *testing.T, sessionID, cart string) *CompletedCheckout {
	t.Helper()

	c, err := ParseCart(cart)
	require.NoError(t, err)
	return &CompletedCheckout{
		SessionID:   sessionID,
		Email:       "a@b.com",
		Destination: "X St",
		Cart:        c,
	}
}
