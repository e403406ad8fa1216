package usecase_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// mocks（promotion用）
// =====================

type MockPromotionRepo struct {
	mock.Mock
}

func (m *MockPromotionRepo) FindByCode(ctx context.Context, code string) (model.Promotion, error) {
	args := m.Called(ctx, code)
	p, _ := args.Get(0).(model.Promotion)
	return p, args.Error(1)
}

func (m *MockPromotionRepo) IncrementUsedCount(ctx context.Context, promotionID int64) error {
	args := m.Called(ctx, promotionID)
	return args.Error(0)
}

type MockUserPromotionRepo struct {
	mock.Mock
}

func (m *MockUserPromotionRepo) Exists(ctx context.Context, userID int64, promotionID int64) (bool, error) {
	args := m.Called(ctx, userID, promotionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserPromotionRepo) Create(ctx context.Context, up model.UserPromotion) error {
	args := m.Called(ctx, up)
	return args.Error(0)
}

// =====================
// fixtures
// =====================

func activePercentPromo(maxDiscount int64) model.Promotion {
	return model.Promotion{
		ID:                7,
		Name:              "10% off",
		Code:              "SAVE10",
		DiscountType:      model.DiscountTypePercent,
		DiscountValue:     10,
		MaxDiscountAmount: &maxDiscount,
		MinOrderAmount:    100000,
		StartDate:         time.Now().Add(-24 * time.Hour),
		EndDate:           time.Now().Add(24 * time.Hour),
		Status:            model.PromotionStatusActive,
	}
}

// =====================
// Apply tests
// =====================

func TestPromotionApply_PercentWithCap(t *testing.T) {
	promos := new(MockPromotionRepo)
	userPromos := new(MockUserPromotionRepo)

	promo := activePercentPromo(50000)
	promos.On("FindByCode", mock.Anything, "SAVE10").Return(promo, nil)
	userPromos.On("Exists", mock.Anything, int64(1), int64(7)).Return(false, nil)

	uc := usecase.NewPromotionUsecase(promos, userPromos)

	// 10% of 1,000,000 = 100,000 だが上限50,000で頭打ち
	out, err := uc.Apply(context.Background(), 1, "SAVE10", 1000000)
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", out.Code)
	assert.Equal(t, int64(50000), out.DiscountAmount)
}

func TestPromotionApply_UnknownCode(t *testing.T) {
	promos := new(MockPromotionRepo)
	userPromos := new(MockUserPromotionRepo)
	promos.On("FindByCode", mock.Anything, "NOPE").Return(model.Promotion{}, repo.ErrNotFound)

	uc := usecase.NewPromotionUsecase(promos, userPromos)

	_, err := uc.Apply(context.Background(), 1, "NOPE", 200000)
	assertHTTPError(t, err, http.StatusNotFound, "promotion not found")
}

func TestPromotionApply_Expired(t *testing.T) {
	promos := new(MockPromotionRepo)
	userPromos := new(MockUserPromotionRepo)

	promo := activePercentPromo(50000)
	promo.EndDate = time.Now().Add(-time.Hour)
	promos.On("FindByCode", mock.Anything, "SAVE10").Return(promo, nil)

	uc := usecase.NewPromotionUsecase(promos, userPromos)

	_, err := uc.Apply(context.Background(), 1, "SAVE10", 200000)
	assertHTTPError(t, err, http.StatusBadRequest, "promotion not active")
}

func TestPromotionApply_UsageLimitReached(t *testing.T) {
	promos := new(MockPromotionRepo)
	userPromos := new(MockUserPromotionRepo)

	limit := int64(100)
	promo := activePercentPromo(50000)
	promo.UsageLimit = &limit
	promo.UsedCount = 100
	promos.On("FindByCode", mock.Anything, "SAVE10").Return(promo, nil)

	uc := usecase.NewPromotionUsecase(promos, userPromos)

	_, err := uc.Apply(context.Background(), 1, "SAVE10", 200000)
	assertHTTPError(t, err, http.StatusBadRequest, "promotion not active")
}

func TestPromotionApply_AlreadyUsed(t *testing.T) {
	promos := new(MockPromotionRepo)
	userPromos := new(MockUserPromotionRepo)

	promos.On("FindByCode", mock.Anything, "SAVE10").Return(activePercentPromo(50000), nil)
	userPromos.On("Exists", mock.Anything, int64(1), int64(7)).Return(true, nil)

	uc := usecase.NewPromotionUsecase(promos, userPromos)

	_, err := uc.Apply(context.Background(), 1, "SAVE10", 200000)
	assertHTTPError(t, err, http.StatusBadRequest, "promotion already used")
}

func TestPromotionApply_BelowMinimum(t *testing.T) {
	promos := new(MockPromotionRepo)
	userPromos := new(MockUserPromotionRepo)

	promos.On("FindByCode", mock.Anything, "SAVE10").Return(activePercentPromo(50000), nil)
	userPromos.On("Exists", mock.Anything, int64(1), int64(7)).Return(false, nil)

	uc := usecase.NewPromotionUsecase(promos, userPromos)

	_, err := uc.Apply(context.Background(), 1, "SAVE10", 50000)
	assertHTTPError(t, err, http.StatusBadRequest, "order amount below minimum")
}

func TestPromotionApply_EmptyCode(t *testing.T) {
	uc := usecase.NewPromotionUsecase(new(MockPromotionRepo), new(MockUserPromotionRepo))

	_, err := uc.Apply(context.Background(), 1, "   ", 200000)
	assertHTTPError(t, err, http.StatusBadRequest, "invalid code")
}

// =====================
// Validate tests
// =====================

func TestPromotionValidate_ValidCode(t *testing.T) {
	promos := new(MockPromotionRepo)
	userPromos := new(MockUserPromotionRepo)

	promos.On("FindByCode", mock.Anything, "SAVE10").Return(activePercentPromo(50000), nil)
	userPromos.On("Exists", mock.Anything, int64(1), int64(7)).Return(false, nil)

	uc := usecase.NewPromotionUsecase(promos, userPromos)

	out, err := uc.Validate(context.Background(), 1, "SAVE10", 200000)
	require.NoError(t, err)
	assert.True(t, out.Valid)
	assert.Equal(t, int64(20000), out.DiscountAmount)
}

func TestPromotionValidate_InvalidCodeDoesNotError(t *testing.T) {
	promos := new(MockPromotionRepo)
	userPromos := new(MockUserPromotionRepo)
	promos.On("FindByCode", mock.Anything, "NOPE").Return(model.Promotion{}, repo.ErrNotFound)

	uc := usecase.NewPromotionUsecase(promos, userPromos)

	out, err := uc.Validate(context.Background(), 1, "NOPE", 200000)
	require.NoError(t, err)
	assert.False(t, out.Valid)
	assert.Equal(t, int64(0), out.DiscountAmount)
}

func TestPromotionValidate_DBErrorPropagates(t *testing.T) {
	promos := new(MockPromotionRepo)
	userPromos := new(MockUserPromotionRepo)
	promos.On("FindByCode", mock.Anything, "SAVE10").Return(model.Promotion{}, assert.AnError)

	uc := usecase.NewPromotionUsecase(promos, userPromos)

	_, err := uc.Validate(context.Background(), 1, "SAVE10", 200000)
	assertHTTPError(t, err, http.StatusInternalServerError, "db error")
}
