package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "UNPAID"
	PaymentStatusPaid   PaymentStatus = "PAID"
	PaymentStatusFailed PaymentStatus = "FAILED"
)

type PaymentMethod string

const (
	PaymentMethodMomo PaymentMethod = "MOMO"
	PaymentMethodCOD  PaymentMethod = "COD"
)

// OrderRefはMoMo側に渡す外部参照ID。内部IDとは別物。
type Order struct {
	ID              int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          int64         `gorm:"not null;index" json:"user_id"`
	OrderRef        string        `gorm:"type:varchar(64);not null;uniqueIndex" json:"order_ref"`
	Status          OrderStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentStatus   PaymentStatus `gorm:"type:varchar(20);not null;index" json:"payment_status"`
	PaymentMethod   PaymentMethod `gorm:"type:varchar(20);not null" json:"payment_method"`
	TotalPrice      int64         `gorm:"not null" json:"total_price"`
	ShippingName    string        `gorm:"type:varchar(255)" json:"shipping_name"`
	ShippingPhone   string        `gorm:"type:varchar(50)" json:"shipping_phone"`
	ShippingAddress string        `gorm:"type:varchar(500)" json:"shipping_address"`
	PromotionCode   string        `gorm:"type:varchar(50)" json:"promotion_code,omitempty"`
	DiscountAmount  int64         `gorm:"not null;default:0" json:"discount_amount"`
	CreatedAt       time.Time     `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
