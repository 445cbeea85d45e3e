package model

import "fmt"

// OrderType 订单类型
type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine_in"
	OrderTypeTakeout  OrderType = "takeout"
	OrderTypeDelivery OrderType = "delivery"
)

func ParseOrderType(s string) (OrderType, error) {
	switch OrderType(s) {
	case OrderTypeDineIn, OrderTypeTakeout, OrderTypeDelivery:
		return OrderType(s), nil
	}
	return "", fmt.Errorf("unknown order type %q", s)
}

// OrderStatus 订单履约状态。合法链路 pending → preparing → ready →
// completed；cancelled 可以从任何非终态进入。状态集是封闭的：
// 未知字符串在解析阶段就被拒绝，不靠落库时的约束兜底。
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusReady,
		OrderStatusCompleted, OrderStatusCancelled:
		return OrderStatus(s), nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// Terminal 终态不再流转
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// CanTransition 判定一次状态流转是否合法。原状态重写视为合法的空操作。
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	if s == to {
		return true
	}
	if s.Terminal() {
		return false
	}
	if to == OrderStatusCancelled {
		return true
	}
	switch s {
	case OrderStatusPending:
		return to == OrderStatusPreparing
	case OrderStatusPreparing:
		return to == OrderStatusReady
	case OrderStatusReady:
		return to == OrderStatusCompleted
	}
	return false
}

// PaymentStatus 订单侧支付状态，单向流转：unpaid → paid → refunded。
// refunded 只能从 paid 进入，不存在回退。
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentStatusUnpaid, PaymentStatusPaid, PaymentStatusRefunded:
		return PaymentStatus(s), nil
	}
	return "", fmt.Errorf("unknown payment status %q", s)
}

func (s PaymentStatus) CanTransition(to PaymentStatus) bool {
	if s == to {
		return true
	}
	switch s {
	case PaymentStatusUnpaid:
		return to == PaymentStatusPaid
	case PaymentStatusPaid:
		return to == PaymentStatusRefunded
	}
	return false
}
