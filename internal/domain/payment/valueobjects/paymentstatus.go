package valueobjects

import (
	"fmt"
	"strings"
)

// OrderStatus is the lifecycle state of a gateway order.
type OrderStatus string

const (
	OrderStatusCreated  OrderStatus = "created"
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusPaid     OrderStatus = "paid"
	OrderStatusRejected OrderStatus = "rejected"
	OrderStatusExpired  OrderStatus = "expired"
)

// Gateway wire codes. Orders that exist locally but have no gateway code yet
// are OrderStatusCreated.
const (
	GatewayCodePending  = "1"
	GatewayCodePaid     = "2"
	GatewayCodeRejected = "3"
	GatewayCodeExpired  = "4"
)

// ParseGatewayStatus maps the gateway's numeric status code.
func ParseGatewayStatus(code string) (OrderStatus, error) {
	switch strings.TrimSpace(code) {
	case GatewayCodePending:
		return OrderStatusPending, nil
	case GatewayCodePaid:
		return OrderStatusPaid, nil
	case GatewayCodeRejected:
		return OrderStatusRejected, nil
	case GatewayCodeExpired:
		return OrderStatusExpired, nil
	default:
		return "", fmt.Errorf("unknown gateway status code %q", code)
	}
}

// IsPaidCode reports whether a raw status code is the gateway's "paid" code.
func IsPaidCode(code string) bool {
	return strings.TrimSpace(code) == GatewayCodePaid
}

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusCreated, OrderStatusPending, OrderStatusPaid, OrderStatusRejected, OrderStatusExpired:
		return true
	default:
		return false
	}
}

func (s OrderStatus) IsPaid() bool {
	return s == OrderStatusPaid
}

func (s OrderStatus) IsFinal() bool {
	return s == OrderStatusPaid || s == OrderStatusRejected || s == OrderStatusExpired
}

func (s OrderStatus) String() string {
	return string(s)
}
