package domain

import "testing"

func TestCanAdvanceOrderStatus(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{name: "pending advances to in_production", from: OrderStatusPending, to: OrderStatusInProduction, want: true},
		{name: "in_production advances to stamping", from: OrderStatusInProduction, to: OrderStatusStamping, want: true},
		{name: "stamping advances to quality_check", from: OrderStatusStamping, to: OrderStatusQualityCheck, want: true},
		{name: "quality_check advances to shipped", from: OrderStatusQualityCheck, to: OrderStatusShipped, want: true},
		{name: "shipped advances to delivered", from: OrderStatusShipped, to: OrderStatusDelivered, want: true},
		{name: "skipping a step is rejected", from: OrderStatusPending, to: OrderStatusStamping, want: false},
		{name: "backward move is rejected", from: OrderStatusShipped, to: OrderStatusQualityCheck, want: false},
		{name: "same status is rejected", from: OrderStatusStamping, to: OrderStatusStamping, want: false},
		{name: "any non-terminal state may cancel", from: OrderStatusQualityCheck, to: OrderStatusCancelled, want: true},
		{name: "pending may cancel", from: OrderStatusPending, to: OrderStatusCancelled, want: true},
		{name: "delivered is terminal", from: OrderStatusDelivered, to: OrderStatusCancelled, want: false},
		{name: "cancelled is terminal", from: OrderStatusCancelled, to: OrderStatusInProduction, want: false},
		{name: "unknown source status is rejected", from: "warehouse", to: OrderStatusShipped, want: false},
		{name: "unknown target status is rejected", from: OrderStatusPending, to: "warehouse", want: false},
		{name: "input is case and whitespace insensitive", from: " Pending ", to: "IN_PRODUCTION", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanAdvanceOrderStatus(tt.from, tt.to)
			if got != tt.want {
				t.Fatalf("CanAdvanceOrderStatus(%q, %q) = %t, want %t", tt.from, tt.to, got, tt.want)
			}
		})
	}
}
