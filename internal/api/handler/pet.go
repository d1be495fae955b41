package handler

import (
	"strconv"

	"pawtrait/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupPet struct {
	container *do.Injector
}

func (gr *groupPet) Create(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := ResolveUserID(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	servicePet, err := do.Invoke[*services.ServicePet](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	pet, err := servicePet.Create(ctx, userID, payload.Name)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, pet, nil)
}

func (gr *groupPet) Show(c echo.Context) error {
	ctx := c.Request().Context()

	petID, err := strconv.ParseInt(c.Param("pet"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	servicePet, err := do.Invoke[*services.ServicePet](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	pet, err := servicePet.Get(ctx, petID)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.NotExist))
	}

	return httpx.RestAbort(c, pet, nil)
}

func (gr *groupPet) Mine(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := ResolveUserID(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	servicePet, err := do.Invoke[*services.ServicePet](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	pets, err := servicePet.ListByOwner(ctx, userID)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, pets, nil)
}

func (gr *groupPet) Leaderboard(c echo.Context) error {
	ctx := c.Request().Context()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	servicePet, err := do.Invoke[*services.ServicePet](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	pets, err := servicePet.Leaderboard(ctx, limit)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, pets, nil)
}

// SetArtwork is the callback surface for the external image pipeline.
func (gr *groupPet) SetArtwork(c echo.Context) error {
	ctx := c.Request().Context()

	petID, err := strconv.ParseInt(c.Param("pet"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	var payload struct {
		ImageURL string `json:"image_url"`
	}
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	servicePet, err := do.Invoke[*services.ServicePet](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	if err := servicePet.SetArtwork(ctx, petID, payload.ImageURL); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, map[string]any{"ok": true}, nil)
}

func (gr *groupPet) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := ResolveUserID(ctx); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	petID, err := strconv.ParseInt(c.Param("pet"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	servicePet, err := do.Invoke[*services.ServicePet](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	if err := servicePet.Delete(ctx, petID); err != nil {
		if err == services.ErrPetMinted {
			return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
		}

		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, map[string]any{"ok": true}, nil)
}
