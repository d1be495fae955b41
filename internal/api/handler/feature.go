package handler

import (
	"strconv"

	"pawtrait/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupFeature struct {
	container *do.Injector
}

func (gr *groupFeature) Today(c echo.Context) error {
	ctx := c.Request().Context()

	serviceFeature, err := do.Invoke[*services.ServiceFeature](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	feature, err := serviceFeature.GetToday(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, feature, nil)
}

func (gr *groupFeature) ByDate(c echo.Context) error {
	ctx := c.Request().Context()

	serviceFeature, err := do.Invoke[*services.ServiceFeature](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	feature, err := serviceFeature.GetByDate(ctx, c.Param("date"))
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, feature, nil)
}

func (gr *groupFeature) CurrentDraw(c echo.Context) error {
	ctx := c.Request().Context()

	serviceDraw, err := do.Invoke[*services.ServiceDraw](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	draw, err := serviceDraw.GetCurrent(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, draw, nil)
}

// ConfirmPrize is hit by the external payout process after the prize
// actually lands.
func (gr *groupFeature) ConfirmPrize(c echo.Context) error {
	ctx := c.Request().Context()

	drawID, err := strconv.ParseInt(c.Param("draw"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	serviceDraw, err := do.Invoke[*services.ServiceDraw](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	flipped, err := serviceDraw.MarkPrizeAwarded(ctx, drawID)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, map[string]any{"awarded": flipped}, nil)
}
