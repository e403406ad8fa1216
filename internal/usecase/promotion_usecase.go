package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	repo "app/internal/repository"
)

type PromotionUsecase struct {
	promotions     repo.PromotionRepository
	userPromotions repo.UserPromotionRepository
}

func NewPromotionUsecase(promotions repo.PromotionRepository, userPromotions repo.UserPromotionRepository) *PromotionUsecase {
	return &PromotionUsecase{promotions: promotions, userPromotions: userPromotions}
}

type ApplyPromotionOutput struct {
	Code           string `json:"code"`
	DiscountAmount int64  `json:"discount_amount"`
}

// Apply はcheckout前の割引計算。使用記録はここでは作らない。
// 記録されるのは決済がSUCCESSで確定したときだけ。
func (u *PromotionUsecase) Apply(ctx context.Context, userID int64, code string, orderAmount int64) (ApplyPromotionOutput, error) {
	if userID <= 0 {
		return ApplyPromotionOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return ApplyPromotionOutput{}, NewHTTPError(http.StatusBadRequest, "invalid code")
	}
	if orderAmount <= 0 {
		return ApplyPromotionOutput{}, NewHTTPError(http.StatusBadRequest, "invalid amount")
	}

	promo, err := u.promotions.FindByCode(ctx, code)
	if errors.Is(err, repo.ErrNotFound) {
		return ApplyPromotionOutput{}, NewHTTPError(http.StatusNotFound, "promotion not found")
	}
	if err != nil {
		return ApplyPromotionOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if !promo.IsActiveAt(time.Now()) {
		return ApplyPromotionOutput{}, NewHTTPError(http.StatusBadRequest, "promotion not active")
	}

	//1ユーザー1回きり
	used, err := u.userPromotions.Exists(ctx, userID, promo.ID)
	if err != nil {
		return ApplyPromotionOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if used {
		return ApplyPromotionOutput{}, NewHTTPError(http.StatusBadRequest, "promotion already used")
	}

	if orderAmount < promo.MinOrderAmount {
		return ApplyPromotionOutput{}, NewHTTPError(http.StatusBadRequest, "order amount below minimum")
	}

	return ApplyPromotionOutput{
		Code:           promo.Code,
		DiscountAmount: promo.CalculateDiscount(orderAmount),
	}, nil
}

type ValidatePromotionOutput struct {
	Valid          bool   `json:"valid"`
	Code           string `json:"code"`
	DiscountAmount int64  `json:"discount_amount"`
}

// Validate はApplyの投げない版。エラーはvalid=falseに落とす
func (u *PromotionUsecase) Validate(ctx context.Context, userID int64, code string, orderAmount int64) (ValidatePromotionOutput, error) {
	out, err := u.Apply(ctx, userID, code, orderAmount)
	if err != nil {
		if he, ok := AsHTTPError(err); ok && he.Status != http.StatusInternalServerError {
			return ValidatePromotionOutput{Valid: false, Code: strings.TrimSpace(code)}, nil
		}
		return ValidatePromotionOutput{}, err
	}
	return ValidatePromotionOutput{
		Valid:          true,
		Code:           out.Code,
		DiscountAmount: out.DiscountAmount,
	}, nil
}
