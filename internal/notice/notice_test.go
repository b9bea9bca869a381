package notice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueue_DrainReturnsInOrderAndEmpties(t *testing.T) {
	var q Queue
	q.Notify(Notice{Level: Success, Message: "Added Suya to cart"})
	q.Notify(Notice{Level: Error, Message: "Quantity must be a whole number."})

	got := q.Drain()
	assert.Equal(t, []Notice{
		{Level: Success, Message: "Added Suya to cart"},
		{Level: Error, Message: "Quantity must be a whole number."},
	}, got)
	assert.Empty(t, q.Drain())
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Discard.Notify(Notice{Level: Warning, Message: "ignored"}) })
}
