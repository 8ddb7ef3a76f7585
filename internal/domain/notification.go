/**
 * @description
 * Wire types for payment-gateway webhook notifications. The field names and
 * nesting mirror the gateway's payload exactly, so the camelCase JSON keys are
 * intentional and must not be changed to match internal conventions.
 */

package domain

import "strings"

// Gateway payment status for a confirmed payment.
const GatewayStatusApproved = "approved"

// PaymentNotification is the body the gateway POSTs to the webhook endpoint.
type PaymentNotification struct {
	Type string                  `json:"type"`
	Data PaymentNotificationData `json:"data"`
}

// PaymentNotificationData carries the gateway payment identifier, its status,
// and optional metadata identifying a subscription purchase.
type PaymentNotificationData struct {
	ID       string                       `json:"id"`
	Status   string                       `json:"status"`
	Metadata *PaymentNotificationMetadata `json:"metadata,omitempty"`
}

// PaymentNotificationMetadata is attached by us when creating a subscription
// checkout preference and echoed back by the gateway.
type PaymentNotificationMetadata struct {
	UserID string `json:"userId"`
	Plan   string `json:"plan"`
}

// IsApproved reports whether the gateway confirmed the payment.
func (d PaymentNotificationData) IsApproved() bool {
	return strings.EqualFold(strings.TrimSpace(d.Status), GatewayStatusApproved)
}

// SubscriptionMetadata returns the account id and plan when the notification
// refers to a subscription payment.
func (d PaymentNotificationData) SubscriptionMetadata() (userID string, plan string, ok bool) {
	if d.Metadata == nil {
		return "", "", false
	}
	userID = strings.TrimSpace(d.Metadata.UserID)
	plan = strings.TrimSpace(d.Metadata.Plan)
	return userID, plan, userID != "" && plan != ""
}

// WebhookAck is the acknowledgement returned for processed notifications.
type WebhookAck struct {
	Received bool `json:"received"`
}
