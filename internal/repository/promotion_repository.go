package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
)

// ユニーク制約違反（すでに使用済み）
var ErrConflict = errors.New("conflict")

type PromotionRepository interface {
	FindByCode(ctx context.Context, code string) (model.Promotion, error)
	// used_countをアトミックに+1
	IncrementUsedCount(ctx context.Context, promotionID int64) error
}

type UserPromotionRepository interface {
	Exists(ctx context.Context, userID int64, promotionID int64) (bool, error)
	// (user_id, promotion_id)が既にあればErrConflict
	Create(ctx context.Context, up model.UserPromotion) error
}
