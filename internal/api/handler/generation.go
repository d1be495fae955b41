package handler

import (
	"errors"
	"strconv"

	"pawtrait/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupGeneration struct {
	container *do.Injector
}

// Charge answers whether this generation rides the free allowance. When
// free=false nothing was consumed; the client must settle payment and then
// hit Record.
func (gr *groupGeneration) Charge(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := ResolveUserID(ctx); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	petID, err := strconv.ParseInt(c.Param("pet"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	serviceQuota, err := do.Invoke[*services.ServiceQuota](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	result, err := serviceQuota.ChargeGeneration(ctx, petID)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, result, nil)
}

// Record is the unconditional post-payment increment, called after the
// external payment layer confirms.
func (gr *groupGeneration) Record(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := ResolveUserID(ctx); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	petID, err := strconv.ParseInt(c.Param("pet"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	serviceQuota, err := do.Invoke[*services.ServiceQuota](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	if err := serviceQuota.RecordGeneration(ctx, petID); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, map[string]any{"recorded": true}, nil)
}

func (gr *groupGeneration) ConsumeCredit(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := ResolveUserID(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceQuota, err := do.Invoke[*services.ServiceQuota](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	consumed, err := serviceQuota.ConsumeFreeCredit(ctx, userID)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, map[string]any{"consumed": consumed}, nil)
}

// Mint is the callback surface for the external minting pipeline.
func (gr *groupGeneration) Mint(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := ResolveUserID(ctx); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	petID, err := strconv.ParseInt(c.Param("pet"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	serviceQuota, err := do.Invoke[*services.ServiceQuota](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	if err := serviceQuota.RecordMint(ctx, petID); err != nil {
		if errors.Is(err, services.ErrPetNotReady) {
			return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
		}

		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, map[string]any{"minted": true}, nil)
}
