package model

import "time"

type PaymentState string

const (
	PaymentStatePending PaymentState = "PENDING"
	PaymentStateSuccess PaymentState = "SUCCESS"
	PaymentStateFailed  PaymentState = "FAILED"
)

// TransactionIDは決済作成時はMoMoのrequestId、確定時に本物のtransIdで上書きする。
// SUCCESS/FAILEDは終端。そこから先は絶対に動かさない。
type Payment struct {
	ID            int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID       int64        `gorm:"not null;index" json:"order_id"`
	TransactionID string       `gorm:"type:varchar(64);index" json:"transaction_id"`
	Amount        int64        `gorm:"not null" json:"amount"`
	Status        PaymentState `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt     time.Time    `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
