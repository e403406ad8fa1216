package model

import "time"

// 1ユーザー1プロモーション1回きり。(user_id, promotion_id)のユニーク制約が最後の砦。
type UserPromotion struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64     `gorm:"not null;uniqueIndex:idx_user_promotion" json:"user_id"`
	PromotionID int64     `gorm:"not null;uniqueIndex:idx_user_promotion" json:"promotion_id"`
	OrderID     *int64    `json:"order_id,omitempty"`
	UsedAt      time.Time `gorm:"not null;autoCreateTime" json:"used_at"`
}
