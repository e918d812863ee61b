package handler

import (
	"context"
	"net/http"

	"cartify/internal/cart"
	repo "cartify/internal/repository"
	"cartify/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /checkoutのHTTP
type CheckoutHandler struct {
	uc       *usecase.CheckoutUsecase
	sessions repo.CartSessionStore
}

// DI
func NewCheckoutHandler(uc *usecase.CheckoutUsecase, sessions repo.CartSessionStore) *CheckoutHandler {
	return &CheckoutHandler{uc: uc, sessions: sessions}
}

// /checkout, /checkout/status を登録。limitはPOSTだけに掛ける
func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo, auth echo.MiddlewareFunc, limit echo.MiddlewareFunc) {
	g := e.Group("/checkout")
	g.Use(auth)

	g.POST("", h.submit, limit)
	g.GET("/status", h.status)
}

func (h *CheckoutHandler) submit(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	//タブを閉じても途中で止めない（タイムアウトはusecase側で掛かる）
	ctx := context.WithoutCancel(c.Request().Context())

	out, err := h.uc.SubmitOrder(ctx, userID, cart.NewSession(h.sessions, userID))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CheckoutHandler) status(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	return c.JSON(http.StatusOK, h.uc.Status(userID))
}
