package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tixflow/listing-service/internal/domain"
)

func TestHub_RoutesPerSession(t *testing.T) {
	h := NewHub()
	a := h.Subscribe("a")
	b := h.Subscribe("b")
	defer a.Close()
	defer b.Close()

	n := h.Broadcast("a", Update{Status: domain.PaymentFailed})
	assert.Equal(t, 1, n)
	assert.Len(t, a.Updates(), 1)
	assert.Len(t, b.Updates(), 0)
}

func TestHub_CloseEndsUpdates(t *testing.T) {
	h := NewHub()
	s := h.Subscribe("a")
	assert.True(t, h.Listening("a"))

	s.Close()
	assert.False(t, h.Listening("a"))
	_, open := <-s.Updates()
	assert.False(t, open)
	assert.Equal(t, 0, h.Broadcast("a", Update{}))
}

func TestHub_SlowReaderDoesNotBlock(t *testing.T) {
	h := NewHub()
	s := h.Subscribe("a")
	defer s.Close()

	for i := 0; i < 10; i++ {
		h.Broadcast("a", Update{Status: domain.PaymentFailed})
	}
	assert.Len(t, s.Updates(), cap(s.ch))
}
