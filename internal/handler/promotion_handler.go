package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type PromotionHandler struct {
	uc *usecase.PromotionUsecase
}

func NewPromotionHandler(uc *usecase.PromotionUsecase) *PromotionHandler {
	return &PromotionHandler{uc: uc}
}

func (h *PromotionHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	api := e.Group("/api")
	api.Use(middleware.AuthJWT(cfg))

	api.POST("/promotions/apply", h.apply)
	api.POST("/promotions/validate", h.validate)
}

type promotionRequest struct {
	Code        string `json:"code"`
	OrderAmount int64  `json:"order_amount"`
}

func (h *PromotionHandler) apply(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req promotionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	out, err := h.uc.Apply(c.Request().Context(), userID, req.Code, req.OrderAmount)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *PromotionHandler) validate(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req promotionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	out, err := h.uc.Validate(c.Request().Context(), userID, req.Code, req.OrderAmount)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
