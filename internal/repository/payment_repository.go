package repository

import (
	"context"

	"app/internal/domain/model"
)

type PaymentRepository interface {
	Create(ctx context.Context, p model.Payment) (int64, error)
	FindByOrderID(ctx context.Context, orderID int64) (model.Payment, error)
	// 行ロック付き取得。決済確定はこの行をロックしてから判定する
	FindByOrderIDForUpdate(ctx context.Context, orderID int64) (model.Payment, error)
	UpdateResult(ctx context.Context, paymentID int64, status model.PaymentState, transactionID string) error
	UpdateTransactionID(ctx context.Context, paymentID int64, transactionID string) error
}
