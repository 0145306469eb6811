package domain

import "strings"

// Purchase order statuses as stored on the order header.
const (
	OrderStatusDraft            = "Draft"
	OrderStatusOnHold           = "On Hold"
	OrderStatusToReceiveAndBill = "To Receive and Bill"
	OrderStatusToBill           = "To Bill"
	OrderStatusToReceive        = "To Receive"
	OrderStatusCompleted        = "Completed"
	OrderStatusDelivered        = "Delivered"
	OrderStatusStopped          = "Stopped"
	OrderStatusClosed           = "Closed"
	OrderStatusCancelled        = "Cancelled"
)

// DocStatusSubmitted marks a finalized document (orders, invoices, receipts).
const DocStatusSubmitted = 1

var orderStatusLabels = map[string]string{
	"draft":               OrderStatusDraft,
	"on hold":             OrderStatusOnHold,
	"to receive and bill": OrderStatusToReceiveAndBill,
	"to bill":             OrderStatusToBill,
	"to receive":          OrderStatusToReceive,
	"completed":           OrderStatusCompleted,
	"delivered":           OrderStatusDelivered,
	"stopped":             OrderStatusStopped,
	"closed":              OrderStatusClosed,
	"cancelled":           OrderStatusCancelled,
}

// ExcludedOrderStatuses never appear in the analysis regardless of filters.
var ExcludedOrderStatuses = []string{OrderStatusStopped, OrderStatusClosed}

// ParseOrderStatus returns the canonical status label for the given input (case-insensitive).
func ParseOrderStatus(label string) (string, bool) {
	status, ok := orderStatusLabels[strings.ToLower(strings.TrimSpace(label))]

	return status, ok
}
