package domain

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	// CREATED - new order, awaiting admin approval
	OrderStatusCreated OrderStatus = "created"
	// APPROVED - order accepted by admin
	OrderStatusApproved OrderStatus = "approved"
	// PACKED - order packed, ready for pickup
	OrderStatusPacked OrderStatus = "packed"
	// IN_TRANSIT - driver picked up the order
	OrderStatusInTransit OrderStatus = "in-transit"
	// DELIVERED - order delivered to the customer
	OrderStatusDelivered OrderStatus = "delivered"
)

// OrderStatusOrder is the fixed forward ordering of the order lifecycle.
// The milestone builder derives the history prefix from this slice.
var OrderStatusOrder = []OrderStatus{
	OrderStatusCreated,
	OrderStatusApproved,
	OrderStatusPacked,
	OrderStatusInTransit,
	OrderStatusDelivered,
}

// IsValid checks if the order status is in the closed vocabulary
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusCreated,
		OrderStatusApproved,
		OrderStatusPacked,
		OrderStatusInTransit,
		OrderStatusDelivered:
		return true
	default:
		return false
	}
}

// Index returns the position of the status in the lifecycle ordering,
// or -1 for an unrecognized value.
func (s OrderStatus) Index() int {
	for i, st := range OrderStatusOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// DeliveryStatus represents the status of a delivery. Deliveries carry a
// separate vocabulary from orders: failed is a side branch reachable from
// any non-terminal state.
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "pending"
	DeliveryStatusAssigned  DeliveryStatus = "assigned"
	DeliveryStatusInTransit DeliveryStatus = "in-transit"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusFailed    DeliveryStatus = "failed"
)

// IsValid checks if the delivery status is in the closed vocabulary
func (s DeliveryStatus) IsValid() bool {
	switch s {
	case DeliveryStatusPending,
		DeliveryStatusAssigned,
		DeliveryStatusInTransit,
		DeliveryStatusDelivered,
		DeliveryStatusFailed:
		return true
	default:
		return false
	}
}

// Role represents a user's role. Checks are exact-match: admin does not
// implicitly satisfy a driver check or vice versa.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
	RoleDriver   Role = "driver"
)

// IsValid checks if the role is recognized
func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleAdmin, RoleDriver:
		return true
	default:
		return false
	}
}

// DriverStatus represents a driver's availability
type DriverStatus string

const (
	DriverStatusAvailable  DriverStatus = "available"
	DriverStatusOnDelivery DriverStatus = "on-delivery"
	DriverStatusOffDuty    DriverStatus = "off-duty"
)

// PaymentMethod is the payment option chosen at checkout
type PaymentMethod string

const (
	PaymentMethodCOD   PaymentMethod = "cod"
	PaymentMethodGCash PaymentMethod = "gcash"
)

// IsValid checks if the payment method is recognized
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCOD || m == PaymentMethodGCash
}

// ReturnStatus represents the state of a return request
type ReturnStatus string

const (
	ReturnStatusPending   ReturnStatus = "pending"
	ReturnStatusApproved  ReturnStatus = "approved"
	ReturnStatusRejected  ReturnStatus = "rejected"
	ReturnStatusCompleted ReturnStatus = "completed"
)

// IsValid checks if the return status is recognized
func (s ReturnStatus) IsValid() bool {
	switch s {
	case ReturnStatusPending, ReturnStatusApproved, ReturnStatusRejected, ReturnStatusCompleted:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a return status transition is valid:
// pending -> approved|rejected, approved -> completed.
func (s ReturnStatus) CanTransitionTo(newStatus ReturnStatus) bool {
	switch s {
	case ReturnStatusPending:
		return newStatus == ReturnStatusApproved || newStatus == ReturnStatusRejected
	case ReturnStatusApproved:
		return newStatus == ReturnStatusCompleted
	default:
		return false // rejected and completed are terminal
	}
}

// RefundMethod is how an approved return is refunded
type RefundMethod string

const (
	RefundMethodWalletCredit RefundMethod = "wallet-credit"
	RefundMethodStoreCredit  RefundMethod = "store-credit"
)

// IsValid checks if the refund method is recognized
func (m RefundMethod) IsValid() bool {
	return m == RefundMethodWalletCredit || m == RefundMethodStoreCredit
}

// NotificationType tags the notification feed entry
type NotificationType string

const (
	NotificationTypeOrder    NotificationType = "order"
	NotificationTypeDelivery NotificationType = "delivery"
	NotificationTypeReturn   NotificationType = "return"
)
