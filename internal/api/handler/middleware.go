package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/labstack/echo/v4"
)

type ctxKey string

var ctxKeyAuthUserID ctxKey = "AUTH_USER_ID"

// Authn trusts the identity header stamped by the upstream gateway; no
// credential material reaches this service. It does not terminate
// unauthenticated requests, read paths stay open.
func Authn() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("X-User-ID")
			if header == "" {
				return next(c)
			}

			userID, err := strconv.ParseInt(header, 10, 64)
			if err != nil {
				return next(c)
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, ctxKeyAuthUserID, userID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func ResolveUserID(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(ctxKeyAuthUserID).(int64)
	if !ok {
		return 0, errorx.Wrap(errors.New("missing session"), errorx.Authn)
	}

	return userID, nil
}
