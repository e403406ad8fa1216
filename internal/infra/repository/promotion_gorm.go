package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type PromotionGormRepository struct {
	db *gorm.DB
}

func NewPromotionGormRepository(db *gorm.DB) *PromotionGormRepository {
	return &PromotionGormRepository{db: db}
}

func (r *PromotionGormRepository) FindByCode(ctx context.Context, code string) (model.Promotion, error) {
	var p model.Promotion
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Promotion{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Promotion{}, err
	}
	return p, nil
}

// used_countの+1はDB側でアトミックに行う
func (r *PromotionGormRepository) IncrementUsedCount(ctx context.Context, promotionID int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Promotion{}).
		Where("id = ?", promotionID).
		Update("used_count", gorm.Expr("used_count + 1"))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

type UserPromotionGormRepository struct {
	db *gorm.DB
}

func NewUserPromotionGormRepository(db *gorm.DB) *UserPromotionGormRepository {
	return &UserPromotionGormRepository{db: db}
}

func (r *UserPromotionGormRepository) Exists(ctx context.Context, userID int64, promotionID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.UserPromotion{}).
		Where("user_id = ? AND promotion_id = ?", userID, promotionID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ユニーク制約(user_id, promotion_id)違反はErrConflictに変換する。
// 二重確定の最後の砦なので、呼び出し側は「既に記録済み」として扱える。
func (r *UserPromotionGormRepository) Create(ctx context.Context, up model.UserPromotion) error {
	err := r.db.WithContext(ctx).Create(&up).Error
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return repo.ErrConflict
	}
	return err
}
