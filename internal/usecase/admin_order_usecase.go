package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type AdminOrderUsecase struct {
	tx repo.TransactionManager
}

func NewAdminOrderUsecase(tx repo.TransactionManager) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx}
}

type AdminUpdateOrderStatusInput struct {
	Status string
}

// 文字列は境界でenumに落とす。知らない値はここで弾く
func parseOrderStatus(s string) (model.OrderStatus, bool) {
	switch model.OrderStatus(strings.TrimSpace(s)) {
	case model.OrderStatusPending:
		return model.OrderStatusPending, true
	case model.OrderStatusShipped:
		return model.OrderStatusShipped, true
	case model.OrderStatusCompleted:
		return model.OrderStatusCompleted, true
	case model.OrderStatusCanceled:
		return model.OrderStatusCanceled, true
	default:
		return "", false
	}
}

// 許可される遷移だけを列挙。COMPLETED/CANCELEDは終端。
func isValidStatusTransition(from model.OrderStatus, to model.OrderStatus) bool {
	switch from {
	case model.OrderStatusPending:
		return to == model.OrderStatusShipped || to == model.OrderStatusCanceled
	case model.OrderStatusShipped:
		return to == model.OrderStatusCompleted || to == model.OrderStatusCanceled
	default:
		return false
	}
}

// ステータス更新。決済の副作用はここでは一切触らない
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminUserID int64, orderID int64, in AdminUpdateOrderStatusInput) error {
	if actorAdminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	newStatus, ok := parseOrderStatus(in.Status)
	if !ok {
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 注文取得
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// すでに同じなら何もしない（200）
		if o.Status == newStatus {
			return nil
		}

		if !isValidStatusTransition(o.Status, newStatus) {
			return NewHTTPError(http.StatusBadRequest, "invalid transition")
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		return nil
	})
}
