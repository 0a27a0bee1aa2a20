package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gearhaus.dev/gear-web/internal/kvstore"
)

func TestHandoffWriteThenConsume(t *testing.T) {
	h := NewHandoff(kvstore.NewMemory())

	written := HandoffRecord{
		Shipping:     validForm(),
		DeliveryMode: ModePickup,
		OrderID:      "12345",
	}
	require.NoError(t, h.Write(written))

	rec, ok := h.Consume()
	require.True(t, ok)
	assert.Equal(t, written.Shipping, rec.Shipping)
	assert.Equal(t, ModePickup, rec.DeliveryMode)
	assert.Equal(t, "12345", rec.OrderID)
}

func TestHandoffConsumeIsOneShot(t *testing.T) {
	h := NewHandoff(kvstore.NewMemory())
	require.NoError(t, h.Write(HandoffRecord{Shipping: validForm(), OrderID: "12345"}))

	_, ok := h.Consume()
	require.True(t, ok)

	rec, ok := h.Consume()
	assert.False(t, ok, "second read must find nothing")
	assert.Equal(t, ShippingForm{}, rec.Shipping)
	assert.Equal(t, ModeDeliver, rec.DeliveryMode)
	assert.Empty(t, rec.OrderID)
}

func TestHandoffConsumeWithoutWriteReturnsDefaults(t *testing.T) {
	h := NewHandoff(kvstore.NewMemory())

	rec, ok := h.Consume()
	assert.False(t, ok)
	assert.Equal(t, ModeDeliver, rec.DeliveryMode)
	assert.Empty(t, rec.OrderID)
}

func TestHandoffWriteTrimsShippingFields(t *testing.T) {
	h := NewHandoff(kvstore.NewMemory())
	form := validForm()
	form.FullName = "  Dana Reyes  "
	form.City = " San Francisco "
	require.NoError(t, h.Write(HandoffRecord{Shipping: form, DeliveryMode: ModeDeliver, OrderID: "1"}))

	rec, ok := h.Consume()
	require.True(t, ok)
	assert.Equal(t, "Dana Reyes", rec.Shipping.FullName)
	assert.Equal(t, "San Francisco", rec.Shipping.City)
}

func TestHandoffWriteReplacesPendingRecord(t *testing.T) {
	h := NewHandoff(kvstore.NewMemory())
	require.NoError(t, h.Write(HandoffRecord{Shipping: validForm(), DeliveryMode: ModeDeliver, OrderID: "1"}))
	require.NoError(t, h.Write(HandoffRecord{Shipping: validForm(), DeliveryMode: ModePickup, OrderID: "2"}))

	rec, ok := h.Consume()
	require.True(t, ok)
	assert.Equal(t, "2", rec.OrderID)
	assert.Equal(t, ModePickup, rec.DeliveryMode)
}
