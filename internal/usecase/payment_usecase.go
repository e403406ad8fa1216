package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/momo"
	repo "app/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MoMoへの決済作成を約束（テストでは偽物を注入する）
type PaymentGateway interface {
	CreatePayment(ctx context.Context, req momo.CreateRequest) (momo.CreateResponse, error)
}

type PaymentUsecase struct {
	tx      repo.TransactionManager
	users   repo.UserRepository
	gateway PaymentGateway
	momoCfg config.MoMoConfig
	logger  *zap.Logger
}

func NewPaymentUsecase(
	tx repo.TransactionManager,
	users repo.UserRepository,
	gateway PaymentGateway,
	momoCfg config.MoMoConfig,
	logger *zap.Logger,
) *PaymentUsecase {
	return &PaymentUsecase{
		tx:      tx,
		users:   users,
		gateway: gateway,
		momoCfg: momoCfg,
		logger:  logger,
	}
}

type CheckoutItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type CreateMomoPaymentInput struct {
	Items           []CheckoutItem
	ShippingName    string
	ShippingPhone   string
	ShippingAddress string
	PromotionCode   string
	DiscountAmount  int64
}

type CreateMomoPaymentOutput struct {
	PayURL    string `json:"pay_url"`
	OrderID   int64  `json:"order_id"`
	OrderRef  string `json:"order_ref"`
	RequestID string `json:"request_id"`
}

// CreateMomoPayment は注文+PENDINGの決済行を作り、MoMoへ署名付きリクエストを投げる。
// ここでは在庫を減らさない。減算は決済確定（settlement）側で1回だけ行う。
// MoMo呼び出しが失敗しても作成済みのOrder/Paymentはロールバックしない。
// 後からIPNが届けばそのまま確定できるようにするため。
func (u *PaymentUsecase) CreateMomoPayment(ctx context.Context, userID int64, in CreateMomoPaymentInput) (CreateMomoPaymentOutput, error) {
	if userID <= 0 {
		return CreateMomoPaymentOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if len(in.Items) == 0 {
		return CreateMomoPaymentOutput{}, NewHTTPError(http.StatusBadRequest, "empty items")
	}
	for _, it := range in.Items {
		if it.ProductID <= 0 || it.Quantity <= 0 {
			return CreateMomoPaymentOutput{}, NewHTTPError(http.StatusBadRequest, "invalid item")
		}
	}
	if in.DiscountAmount < 0 {
		return CreateMomoPaymentOutput{}, NewHTTPError(http.StatusBadRequest, "invalid discount")
	}

	//ユーザー存在確認
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return CreateMomoPaymentOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if user == nil {
		return CreateMomoPaymentOutput{}, NewHTTPError(http.StatusNotFound, "user not found")
	}

	var (
		orderID   int64
		paymentID int64
		orderRef  string
		total     int64
	)

	//注文作成はトランザクション
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		now := time.Now()

		//在庫チェック＋価格スナップショット。減算はしない
		orderItems := make([]model.OrderItem, 0, len(in.Items))
		for _, it := range in.Items {
			p, err := r.Products().FindByID(ctx, it.ProductID)
			if errors.Is(err, repo.ErrNotFound) || (err == nil && !p.IsActive) {
				return NewHTTPError(http.StatusBadRequest, "invalid product")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if p.Stock < it.Quantity {
				return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("insufficient stock: %s", p.Name))
			}

			orderItems = append(orderItems, model.OrderItem{
				ProductID:           it.ProductID,
				ProductNameSnapshot: p.Name,
				UnitPriceSnapshot:   p.Price,
				Quantity:            it.Quantity,
				CreatedAt:           now,
			})
			total += p.Price * it.Quantity
		}

		if in.DiscountAmount > 0 {
			if in.DiscountAmount > total {
				return NewHTTPError(http.StatusBadRequest, "invalid discount")
			}
			total -= in.DiscountAmount
		}

		//外部参照ID。ns精度＋user_idで衝突しない（uniqueIndexが最後の砦）
		orderRef = fmt.Sprintf("ORDER_%d_%d", now.UnixNano(), userID)

		id, err := r.Orders().Create(ctx, model.Order{
			UserID:          userID,
			OrderRef:        orderRef,
			Status:          model.OrderStatusPending,
			PaymentStatus:   model.PaymentStatusUnpaid,
			PaymentMethod:   model.PaymentMethodMomo,
			TotalPrice:      total,
			ShippingName:    in.ShippingName,
			ShippingPhone:   in.ShippingPhone,
			ShippingAddress: in.ShippingAddress,
			PromotionCode:   in.PromotionCode,
			DiscountAmount:  in.DiscountAmount,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		orderID = id

		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//決済行。金額は注文合計のスナップショット
		pid, err := r.Payments().Create(ctx, model.Payment{
			OrderID:   orderID,
			Amount:    total,
			Status:    model.PaymentStatePending,
			CreatedAt: now,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		paymentID = pid

		return nil
	})
	if err != nil {
		return CreateMomoPaymentOutput{}, err
	}

	//MoMoへリクエスト作成（署名付き）
	requestID := uuid.NewString()
	amount := strconv.FormatInt(total, 10)
	orderInfo := "Thanh toan don hang " + orderRef
	extraData := ""
	requestType := "payWithATM"

	rawSignature := momo.CreateRawSignature(
		u.momoCfg.AccessKey,
		amount,
		extraData,
		u.momoCfg.NotifyURL,
		orderRef,
		orderInfo,
		u.momoCfg.PartnerCode,
		u.momoCfg.RedirectURL,
		requestID,
		requestType,
	)

	req := momo.CreateRequest{
		PartnerCode: u.momoCfg.PartnerCode,
		PartnerName: "Electronic Store",
		StoreID:     "ElectronicStore",
		RequestID:   requestID,
		Amount:      amount,
		OrderID:     orderRef,
		OrderInfo:   orderInfo,
		RedirectURL: u.momoCfg.RedirectURL,
		IpnURL:      u.momoCfg.NotifyURL,
		Lang:        "vi",
		ExtraData:   extraData,
		RequestType: requestType,
		Signature:   momo.Sign(rawSignature, u.momoCfg.SecretKey),
	}

	resp, err := u.gateway.CreatePayment(ctx, req)
	if err != nil {
		//Order/Paymentは残す。あとからIPNで確定できる
		u.logger.Warn("momo create payment failed",
			zap.String("order_ref", orderRef),
			zap.Error(err),
		)
		var pe *momo.ProviderError
		if errors.As(err, &pe) {
			return CreateMomoPaymentOutput{}, NewHTTPError(http.StatusBadGateway, pe.Message)
		}
		return CreateMomoPaymentOutput{}, NewHTTPError(http.StatusBadGateway, "payment provider unavailable")
	}

	//確定前の相関IDとしてrequestIdを保存。settle時にtransIdで上書きされる
	if err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		return r.Payments().UpdateTransactionID(ctx, paymentID, resp.RequestID)
	}); err != nil {
		u.logger.Error("save momo request id failed",
			zap.String("order_ref", orderRef),
			zap.Error(err),
		)
	}

	u.logger.Info("momo payment created",
		zap.String("order_ref", orderRef),
		zap.Int64("order_id", orderID),
		zap.Int64("amount", total),
		zap.String("request_id", resp.RequestID),
	)

	return CreateMomoPaymentOutput{
		PayURL:    resp.PayURL,
		OrderID:   orderID,
		OrderRef:  orderRef,
		RequestID: resp.RequestID,
	}, nil
}
