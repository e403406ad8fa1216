package usecase_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"app/internal/domain/model"
	"app/internal/momo"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =====================
// mocks（payment用）
// =====================

type MockUserRepoForPayment struct {
	mock.Mock
}

func (m *MockUserRepoForPayment) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepoForPayment) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepoForPayment) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepoForPayment) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type MockPaymentGateway struct {
	mock.Mock

	// 送られたリクエストを検証用に保持
	LastRequest momo.CreateRequest
}

func (m *MockPaymentGateway) CreatePayment(ctx context.Context, req momo.CreateRequest) (momo.CreateResponse, error) {
	m.LastRequest = req
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(momo.CreateResponse)
	return resp, args.Error(1)
}

// =====================
// helpers
// =====================

func assertHTTPError(t *testing.T, err error, wantStatus int, wantSubstr string) {
	t.Helper()
	require.Error(t, err)
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok, "err=%v is not an HTTPError", err)
	assert.Equal(t, wantStatus, he.Status)
	assert.True(t, strings.Contains(he.Message, wantSubstr), "message=%q want contains %q", he.Message, wantSubstr)
}

func activeUser(id int64) *model.User {
	return &model.User{ID: id, Email: "buyer@example.com", Role: model.RoleUser, IsActive: true}
}

func newPaymentUC(s *memStore, users *MockUserRepoForPayment, gw *MockPaymentGateway) *usecase.PaymentUsecase {
	return usecase.NewPaymentUsecase(s, users, gw, testMoMoCfg, zap.NewNop())
}

// =====================
// CreateMomoPayment tests
// =====================

func TestCreateMomoPayment_Success(t *testing.T) {
	s := newMemStore()
	product := model.Product{ID: s.id(), Name: "Mechanical Keyboard", Price: 1200000, Stock: 5, IsActive: true}
	s.products[product.ID] = product

	users := new(MockUserRepoForPayment)
	users.On("FindByID", mock.Anything, int64(1)).Return(activeUser(1), nil)

	gw := new(MockPaymentGateway)
	gw.On("CreatePayment", mock.Anything, mock.Anything).Return(momo.CreateResponse{
		ResultCode: 0,
		Message:    "Successful.",
		PayURL:     "https://test-payment.momo.vn/pay/abc",
		RequestID:  "req-xyz",
	}, nil)

	uc := newPaymentUC(s, users, gw)

	out, err := uc.CreateMomoPayment(context.Background(), 1, usecase.CreateMomoPaymentInput{
		Items:           []usecase.CheckoutItem{{ProductID: product.ID, Quantity: 2}},
		ShippingName:    "Nguyen Van A",
		ShippingPhone:   "0900000000",
		ShippingAddress: "1 Le Loi, Q1, HCMC",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://test-payment.momo.vn/pay/abc", out.PayURL)
	assert.Equal(t, "req-xyz", out.RequestID)
	assert.True(t, strings.HasPrefix(out.OrderRef, "ORDER_"), "orderRef=%q", out.OrderRef)

	order := s.orders[out.OrderID]
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, model.PaymentStatusUnpaid, order.PaymentStatus)
	assert.Equal(t, model.PaymentMethodMomo, order.PaymentMethod)
	assert.Equal(t, int64(2400000), order.TotalPrice)

	items := s.orderItems[out.OrderID]
	require.Len(t, items, 1)
	assert.Equal(t, "Mechanical Keyboard", items[0].ProductNameSnapshot)
	assert.Equal(t, int64(1200000), items[0].UnitPriceSnapshot)

	payment := s.payments[s.paymentByOrder[out.OrderID]]
	assert.Equal(t, model.PaymentStatePending, payment.Status)
	assert.Equal(t, int64(2400000), payment.Amount)
	// 確定前の相関IDとしてrequestIdが入る
	assert.Equal(t, "req-xyz", payment.TransactionID)

	// 在庫は決済確定まで減らない
	assert.Equal(t, int64(5), s.products[product.ID].Stock)

	// 送ったリクエストの署名が正しいこと
	req := gw.LastRequest
	raw := momo.CreateRawSignature(
		testMoMoCfg.AccessKey, req.Amount, req.ExtraData, req.IpnURL,
		req.OrderID, req.OrderInfo, testMoMoCfg.PartnerCode,
		req.RedirectURL, req.RequestID, req.RequestType,
	)
	assert.Equal(t, momo.Sign(raw, testMoMoCfg.SecretKey), req.Signature)
	assert.Equal(t, "2400000", req.Amount)
	assert.Equal(t, out.OrderRef, req.OrderID)

	users.AssertExpectations(t)
	gw.AssertExpectations(t)
}

func TestCreateMomoPayment_WithDiscount(t *testing.T) {
	s := newMemStore()
	product := model.Product{ID: s.id(), Name: "Headphones", Price: 500000, Stock: 3, IsActive: true}
	s.products[product.ID] = product

	users := new(MockUserRepoForPayment)
	users.On("FindByID", mock.Anything, int64(1)).Return(activeUser(1), nil)

	gw := new(MockPaymentGateway)
	gw.On("CreatePayment", mock.Anything, mock.Anything).Return(momo.CreateResponse{
		PayURL:    "https://test-payment.momo.vn/pay/abc",
		RequestID: "req-xyz",
	}, nil)

	uc := newPaymentUC(s, users, gw)

	out, err := uc.CreateMomoPayment(context.Background(), 1, usecase.CreateMomoPaymentInput{
		Items:          []usecase.CheckoutItem{{ProductID: product.ID, Quantity: 1}},
		PromotionCode:  "WELCOME50",
		DiscountAmount: 50000,
	})
	require.NoError(t, err)

	order := s.orders[out.OrderID]
	assert.Equal(t, int64(450000), order.TotalPrice)
	assert.Equal(t, "WELCOME50", order.PromotionCode)
	assert.Equal(t, int64(50000), order.DiscountAmount)
	assert.Equal(t, "450000", gw.LastRequest.Amount)
}

func TestCreateMomoPayment_EmptyItems(t *testing.T) {
	s := newMemStore()
	users := new(MockUserRepoForPayment)
	gw := new(MockPaymentGateway)

	uc := newPaymentUC(s, users, gw)

	_, err := uc.CreateMomoPayment(context.Background(), 1, usecase.CreateMomoPaymentInput{})
	assertHTTPError(t, err, http.StatusBadRequest, "empty items")
}

func TestCreateMomoPayment_UnknownUser(t *testing.T) {
	s := newMemStore()
	users := new(MockUserRepoForPayment)
	users.On("FindByID", mock.Anything, int64(42)).Return(nil, nil)
	gw := new(MockPaymentGateway)

	uc := newPaymentUC(s, users, gw)

	_, err := uc.CreateMomoPayment(context.Background(), 42, usecase.CreateMomoPaymentInput{
		Items: []usecase.CheckoutItem{{ProductID: 1, Quantity: 1}},
	})
	assertHTTPError(t, err, http.StatusNotFound, "user not found")
}

func TestCreateMomoPayment_InactiveProduct(t *testing.T) {
	s := newMemStore()
	product := model.Product{ID: s.id(), Name: "Old SKU", Price: 100000, Stock: 5, IsActive: false}
	s.products[product.ID] = product

	users := new(MockUserRepoForPayment)
	users.On("FindByID", mock.Anything, int64(1)).Return(activeUser(1), nil)
	gw := new(MockPaymentGateway)

	uc := newPaymentUC(s, users, gw)

	_, err := uc.CreateMomoPayment(context.Background(), 1, usecase.CreateMomoPaymentInput{
		Items: []usecase.CheckoutItem{{ProductID: product.ID, Quantity: 1}},
	})
	assertHTTPError(t, err, http.StatusBadRequest, "invalid product")
}

func TestCreateMomoPayment_InsufficientStock(t *testing.T) {
	s := newMemStore()
	product := model.Product{ID: s.id(), Name: "Limited Edition Mouse", Price: 100000, Stock: 1, IsActive: true}
	s.products[product.ID] = product

	users := new(MockUserRepoForPayment)
	users.On("FindByID", mock.Anything, int64(1)).Return(activeUser(1), nil)
	gw := new(MockPaymentGateway)

	uc := newPaymentUC(s, users, gw)

	_, err := uc.CreateMomoPayment(context.Background(), 1, usecase.CreateMomoPaymentInput{
		Items: []usecase.CheckoutItem{{ProductID: product.ID, Quantity: 3}},
	})
	assertHTTPError(t, err, http.StatusBadRequest, "insufficient stock")

	// 注文は作られない
	assert.Empty(t, s.orders)
}

func TestCreateMomoPayment_DiscountExceedsTotal(t *testing.T) {
	s := newMemStore()
	product := model.Product{ID: s.id(), Name: "Cable", Price: 30000, Stock: 10, IsActive: true}
	s.products[product.ID] = product

	users := new(MockUserRepoForPayment)
	users.On("FindByID", mock.Anything, int64(1)).Return(activeUser(1), nil)
	gw := new(MockPaymentGateway)

	uc := newPaymentUC(s, users, gw)

	_, err := uc.CreateMomoPayment(context.Background(), 1, usecase.CreateMomoPaymentInput{
		Items:          []usecase.CheckoutItem{{ProductID: product.ID, Quantity: 1}},
		DiscountAmount: 50000,
	})
	assertHTTPError(t, err, http.StatusBadRequest, "invalid discount")
}

func TestCreateMomoPayment_ProviderFailure_KeepsRows(t *testing.T) {
	s := newMemStore()
	product := model.Product{ID: s.id(), Name: "Webcam", Price: 800000, Stock: 4, IsActive: true}
	s.products[product.ID] = product

	users := new(MockUserRepoForPayment)
	users.On("FindByID", mock.Anything, int64(1)).Return(activeUser(1), nil)

	gw := new(MockPaymentGateway)
	gw.On("CreatePayment", mock.Anything, mock.Anything).Return(momo.CreateResponse{}, &momo.ProviderError{
		ResultCode: 1001,
		Message:    "insufficient balance",
	})

	uc := newPaymentUC(s, users, gw)

	_, err := uc.CreateMomoPayment(context.Background(), 1, usecase.CreateMomoPaymentInput{
		Items: []usecase.CheckoutItem{{ProductID: product.ID, Quantity: 1}},
	})
	assertHTTPError(t, err, http.StatusBadGateway, "insufficient balance")

	// Order/Paymentは残る。あとからIPNが届けば確定できる
	require.Len(t, s.orders, 1)
	require.Len(t, s.payments, 1)
	for _, p := range s.payments {
		assert.Equal(t, model.PaymentStatePending, p.Status)
	}
}
