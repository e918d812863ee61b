package handler

import (
	"net/http"

	"cartify/internal/middleware"
	"cartify/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//注文確定の失敗は種類に関係なく同じ文言
	if kind, ok := usecase.CheckoutErrorKindOf(err); ok {
		if kind == usecase.ErrKindCheckoutInProgress {
			return c.JSON(http.StatusConflict, ErrorResponse{Error: "checkout already in progress"})
		}
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: usecase.CheckoutFailedMessage})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func getUserIDFromContext(c echo.Context) (string, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	if v == nil {
		return "", false
	}

	id, ok := v.(string)
	if !ok || id == "" {
		return "", false
	}

	return id, true
}
