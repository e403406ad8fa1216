package usecase

import (
	"context"
	"errors"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/momo"
	repo "app/internal/repository"

	"go.uber.org/zap"
)

// MoMoへ返す確認応答。0以外を返すとMoMo側がリトライしてくる。
type Ack struct {
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
}

const (
	AckAccepted     = 0  // 受理（副作用適用済み or 適用済みの再送）
	AckBadSignature = 97 // 署名不一致
	AckError        = 99 // 注文なし・内部エラー
)

// SettlementUsecase は決済確定の状態機械。
// IPN（サーバー間通知）とreturn（ブラウザリダイレクト）の2経路から同じcoreに入る。
// 経路間の順序保証は一切なく、重複も起こる。安全性はPENDINGゲートだけに依存する。
type SettlementUsecase struct {
	tx      repo.TransactionManager
	momoCfg config.MoMoConfig
	logger  *zap.Logger
}

func NewSettlementUsecase(tx repo.TransactionManager, momoCfg config.MoMoConfig, logger *zap.Logger) *SettlementUsecase {
	return &SettlementUsecase{tx: tx, momoCfg: momoCfg, logger: logger}
}

// HandleIPN はMoMoからの非同期通知を処理する。こちらが信頼できる情報源。
// 署名検証に失敗したら何も触らずに97を返す。
func (u *SettlementUsecase) HandleIPN(ctx context.Context, msg momo.IPNMessage) Ack {
	if !momo.VerifyIPN(msg, u.momoCfg.AccessKey, u.momoCfg.SecretKey) {
		u.logger.Warn("momo ipn signature mismatch",
			zap.String("order_ref", msg.OrderID),
		)
		return Ack{ResultCode: AckBadSignature, Message: "invalid signature"}
	}

	return u.settle(ctx, msg.OrderID, msg.ResultCode, msg.TransID, false)
}

// returnエンドポイントの入力（署名なし）
type ReturnInput struct {
	OrderRef   string
	ResultCode string
	TransID    string
	Message    string
}

// ブラウザを結果ページへ返すための値
type ReturnOutput struct {
	OrderRef   string
	ResultCode string
	Message    string
}

// HandleReturn はブラウザ経由のreturnを処理する。
// IPNが届かない環境（ローカル開発など）のフォールバックとして、
// 署名検証なしで同じcoreを呼ぶ。checkoutセッション経由でしか到達しない前提の
// 割り切りで、汎用の無認証確定エンドポイントにしてはいけない。
// 確定に失敗してもリダイレクトは必ず返す。
func (u *SettlementUsecase) HandleReturn(ctx context.Context, in ReturnInput) ReturnOutput {
	ack := u.settle(ctx, in.OrderRef, in.ResultCode, in.TransID, true)
	if ack.ResultCode != AckAccepted {
		u.logger.Warn("return fallback settlement not applied",
			zap.String("order_ref", in.OrderRef),
			zap.Int("ack", ack.ResultCode),
			zap.String("message", ack.Message),
		)
	}

	return ReturnOutput{
		OrderRef:   in.OrderRef,
		ResultCode: in.ResultCode,
		Message:    in.Message,
	}
}

// settle が共有core。1トランザクション内でPayment行をロックしてから判定する。
// cancelOnFailureはreturn経路だけtrue。決済失敗時の注文キャンセルは
// 「ユーザーのブラウザが戻ってきた」経路でのみ行うという方針。
func (u *SettlementUsecase) settle(ctx context.Context, orderRef string, resultCode string, transID string, cancelOnFailure bool) Ack {
	ack := Ack{ResultCode: AckAccepted, Message: "success"}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := r.Orders().FindByOrderRef(ctx, orderRef)
		if errors.Is(err, repo.ErrNotFound) {
			ack = Ack{ResultCode: AckError, Message: "order not found"}
			return nil
		}
		if err != nil {
			return err
		}

		//行ロック。同一注文への同時確定はここで直列化される
		payment, err := r.Payments().FindByOrderIDForUpdate(ctx, order.ID)
		if errors.Is(err, repo.ErrNotFound) {
			ack = Ack{ResultCode: AckError, Message: "payment not found"}
			return nil
		}
		if err != nil {
			return err
		}

		//冪等ゲート。PENDING以外は確定済み。副作用なしで受理を返す
		if payment.Status != model.PaymentStatePending {
			u.logger.Info("settlement already applied, skipping",
				zap.String("order_ref", orderRef),
				zap.String("payment_status", string(payment.Status)),
			)
			return nil
		}

		if resultCode == momo.ResultCodeSuccess {
			return u.applySuccess(ctx, r, order, payment, transID)
		}

		return u.applyFailure(ctx, r, order, payment, transID, cancelOnFailure)
	})

	if err != nil {
		//内部エラーは境界を越えない。99を返してMoMoのリトライに任せる
		u.logger.Error("settlement failed",
			zap.String("order_ref", orderRef),
			zap.Error(err),
		)
		return Ack{ResultCode: AckError, Message: "internal server error"}
	}

	return ack
}

// 成功確定：決済SUCCESS、注文PAID、在庫減算、プロモーション使用記録。
// 注文のstatusはここでは進めない（発送はadminのワークフロー）。
func (u *SettlementUsecase) applySuccess(ctx context.Context, r repo.TxRepos, order model.Order, payment model.Payment, transID string) error {
	if err := r.Payments().UpdateResult(ctx, payment.ID, model.PaymentStateSuccess, transID); err != nil {
		return err
	}
	if err := r.Orders().UpdatePaymentStatus(ctx, order.ID, model.PaymentStatusPaid); err != nil {
		return err
	}

	//在庫減算。注文時のスナップショットではなく現在の在庫から引く
	items, err := r.OrderItems().ListByOrderID(ctx, order.ID)
	if err != nil {
		return err
	}
	for _, it := range items {
		if err := r.Inventory().DecreaseStockFloored(ctx, it.ProductID, it.Quantity); err != nil {
			return err
		}
	}

	if err := u.recordPromotionUsage(ctx, r, order); err != nil {
		return err
	}

	u.logger.Info("settlement applied",
		zap.String("order_ref", order.OrderRef),
		zap.Int64("order_id", order.ID),
		zap.String("trans_id", transID),
		zap.Int("items", len(items)),
	)
	return nil
}

// 失敗確定：決済FAILED、注文のpayment_statusもFAILED。
// IPN経路はstatusを触らない。return経路だけキャンセルする。
func (u *SettlementUsecase) applyFailure(ctx context.Context, r repo.TxRepos, order model.Order, payment model.Payment, transID string, cancelOrder bool) error {
	if err := r.Payments().UpdateResult(ctx, payment.ID, model.PaymentStateFailed, transID); err != nil {
		return err
	}
	if err := r.Orders().UpdatePaymentStatus(ctx, order.ID, model.PaymentStatusFailed); err != nil {
		return err
	}

	if cancelOrder {
		if err := r.Orders().UpdateStatus(ctx, order.ID, model.OrderStatusCanceled); err != nil {
			return err
		}
	}

	u.logger.Info("settlement marked failed",
		zap.String("order_ref", order.OrderRef),
		zap.Bool("order_canceled", cancelOrder),
	)
	return nil
}

// プロモーション使用記録。(user, promotion)につき1回だけ。
// 冪等ゲートとは独立にExists＋ユニーク制約で再入を防ぐ。
func (u *SettlementUsecase) recordPromotionUsage(ctx context.Context, r repo.TxRepos, order model.Order) error {
	if order.PromotionCode == "" {
		return nil
	}

	promo, err := r.Promotions().FindByCode(ctx, order.PromotionCode)
	if errors.Is(err, repo.ErrNotFound) {
		//コードが消えていても決済確定は止めない
		u.logger.Warn("promotion code not found at settlement",
			zap.String("order_ref", order.OrderRef),
			zap.String("code", order.PromotionCode),
		)
		return nil
	}
	if err != nil {
		return err
	}

	exists, err := r.UserPromotions().Exists(ctx, order.UserID, promo.ID)
	if err != nil {
		return err
	}
	if exists {
		u.logger.Info("promotion usage already recorded, skipping",
			zap.String("order_ref", order.OrderRef),
		)
		return nil
	}

	orderID := order.ID
	err = r.UserPromotions().Create(ctx, model.UserPromotion{
		UserID:      order.UserID,
		PromotionID: promo.ID,
		OrderID:     &orderID,
	})
	if errors.Is(err, repo.ErrConflict) {
		//並走していた相手が先に書いた。記録済みなので何もしない
		return nil
	}
	if err != nil {
		return err
	}

	return r.Promotions().IncrementUsedCount(ctx, promo.ID)
}
