package model

import "time"

type DiscountType string

const (
	DiscountTypePercent DiscountType = "PERCENT"
	DiscountTypeFixed   DiscountType = "FIXED"
)

type PromotionStatus string

const (
	PromotionStatusActive   PromotionStatus = "ACTIVE"
	PromotionStatusInactive PromotionStatus = "INACTIVE"
)

type Promotion struct {
	ID                int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name              string          `gorm:"type:varchar(255);not null" json:"name"`
	Code              string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"code"`
	Description       string          `gorm:"type:text" json:"description"`
	DiscountType      DiscountType    `gorm:"type:varchar(20);not null" json:"discount_type"`
	DiscountValue     int64           `gorm:"not null" json:"discount_value"`
	MaxDiscountAmount *int64          `json:"max_discount_amount,omitempty"`
	MinOrderAmount    int64           `gorm:"not null;default:0" json:"min_order_amount"`
	UsageLimit        *int64          `json:"usage_limit,omitempty"`
	UsedCount         int64           `gorm:"not null;default:0" json:"used_count"`
	StartDate         time.Time       `gorm:"not null" json:"start_date"`
	EndDate           time.Time       `gorm:"not null" json:"end_date"`
	Status            PromotionStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`
	CreatedAt         time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 有効期間内かつ利用上限に達していないか
func (p Promotion) IsActiveAt(now time.Time) bool {
	if p.Status != PromotionStatusActive {
		return false
	}
	if now.Before(p.StartDate) || now.After(p.EndDate) {
		return false
	}
	if p.UsageLimit != nil && p.UsedCount >= *p.UsageLimit {
		return false
	}
	return true
}

// 割引額の計算。注文金額を超えることはない。
func (p Promotion) CalculateDiscount(orderAmount int64) int64 {
	if orderAmount < p.MinOrderAmount {
		return 0
	}

	var discount int64
	if p.DiscountType == DiscountTypePercent {
		discount = orderAmount * p.DiscountValue / 100
		if p.MaxDiscountAmount != nil && discount > *p.MaxDiscountAmount {
			discount = *p.MaxDiscountAmount
		}
	} else {
		discount = p.DiscountValue
	}

	if discount > orderAmount {
		discount = orderAmount
	}
	return discount
}
