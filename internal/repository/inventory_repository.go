package repository

import "context"

type InventoryRepository interface {
	// 決済確定後の在庫減算。0未満にはならない（下限0）
	DecreaseStockFloored(ctx context.Context, productID int64, qty int64) error
}
