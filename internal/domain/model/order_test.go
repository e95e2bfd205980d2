package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusCancelled, true},
		{OrderStatusProcessing, OrderStatusDelivered, false},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusShipped, OrderStatusProcessing, false},
		{OrderStatusDelivered, OrderStatusShipped, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusProcessing, false},
		{OrderStatusCancelled, OrderStatusShipped, false},
	}

	for _, c := range cases {
		got := CanTransition(c.from, c.to)
		assert.Equal(t, c.want, got, "%s -> %s", c.from, c.to)
	}
}

// 未知のステータスからは遷移させない
func TestCanTransition_UnknownStatus(t *testing.T) {
	assert.False(t, CanTransition(OrderStatus("UNKNOWN"), OrderStatusShipped))
	assert.False(t, CanTransition(OrderStatusProcessing, OrderStatus("UNKNOWN")))
}
