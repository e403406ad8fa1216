package handler

import (
	"net/http"
	"net/url"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/momo"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	paymentUC    *usecase.PaymentUsecase
	settlementUC *usecase.SettlementUsecase
}

func NewPaymentHandler(paymentUC *usecase.PaymentUsecase, settlementUC *usecase.SettlementUsecase) *PaymentHandler {
	return &PaymentHandler{
		paymentUC:    paymentUC,
		settlementUC: settlementUC,
	}
}

// createだけ認証必須。notify/returnはMoMo側から叩かれるので認証なし。
func (h *PaymentHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	api := e.Group("/api")
	api.Use(middleware.AuthJWT(cfg))
	api.POST("/payment/momo/create", h.create)

	e.POST("/payment/momo/notify", h.notify)
	e.GET("/payment/momo/return", h.browserReturn)
}

type createPaymentRequest struct {
	Items           []usecase.CheckoutItem `json:"items"`
	ShippingName    string                 `json:"shipping_name"`
	ShippingPhone   string                 `json:"shipping_phone"`
	ShippingAddress string                 `json:"shipping_address"`
	PromotionCode   string                 `json:"promotion_code"`
	DiscountAmount  int64                  `json:"discount_amount"`
}

func (h *PaymentHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req createPaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	out, err := h.paymentUC.CreateMomoPayment(c.Request().Context(), userID, usecase.CreateMomoPaymentInput{
		Items:           req.Items,
		ShippingName:    req.ShippingName,
		ShippingPhone:   req.ShippingPhone,
		ShippingAddress: req.ShippingAddress,
		PromotionCode:   req.PromotionCode,
		DiscountAmount:  req.DiscountAmount,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

// IPN。応答のresultCodeが0以外だとMoMoが再送してくるので、
// 処理結果はステータスコードではなくAckのbodyで表現する。
func (h *PaymentHandler) notify(c echo.Context) error {
	var msg momo.IPNMessage
	if err := c.Bind(&msg); err != nil {
		return c.JSON(http.StatusOK, usecase.Ack{
			ResultCode: usecase.AckError,
			Message:    "invalid request body",
		})
	}

	ack := h.settlementUC.HandleIPN(c.Request().Context(), msg)
	return c.JSON(http.StatusOK, ack)
}

// return。確定の成否に関係なく必ず結果ページへ302で返す。
func (h *PaymentHandler) browserReturn(c echo.Context) error {
	out := h.settlementUC.HandleReturn(c.Request().Context(), usecase.ReturnInput{
		OrderRef:   c.QueryParam("orderId"),
		ResultCode: c.QueryParam("resultCode"),
		TransID:    c.QueryParam("transId"),
		Message:    c.QueryParam("message"),
	})

	q := url.Values{}
	q.Set("resultCode", out.ResultCode)
	q.Set("orderId", out.OrderRef)
	q.Set("message", out.Message)

	return c.Redirect(http.StatusFound, "/payment/result?"+q.Encode())
}
