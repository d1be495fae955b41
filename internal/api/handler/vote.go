package handler

import (
	"database/sql"
	"errors"
	"strconv"

	"pawtrait/internal/pkg/limiter"
	"pawtrait/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupVote struct {
	container *do.Injector
}

func (gr *groupVote) CastVote(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := ResolveUserID(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	petID, err := strconv.ParseInt(c.Param("pet"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	serviceVote, err := do.Invoke[*services.ServiceVote](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	if err := serviceVote.CastVote(ctx, userID, petID); err != nil {
		return httpx.RestAbort(c, nil, wrapVoteError(err))
	}

	return httpx.RestAbort(c, map[string]any{"voted": true}, nil)
}

func (gr *groupVote) HasVoted(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := ResolveUserID(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	petID, err := strconv.ParseInt(c.Param("pet"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	serviceVote, err := do.Invoke[*services.ServiceVote](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	voted, err := serviceVote.HasVoted(ctx, userID, petID)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, map[string]any{"voted": voted}, nil)
}

func (gr *groupVote) CastDailyVote(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := ResolveUserID(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	featureID, err := strconv.ParseInt(c.Param("feature"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	serviceVote, err := do.Invoke[*services.ServiceVote](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	if err := serviceVote.CastDailyVote(ctx, userID, featureID); err != nil {
		return httpx.RestAbort(c, nil, wrapVoteError(err))
	}

	return httpx.RestAbort(c, map[string]any{"voted": true}, nil)
}

func (gr *groupVote) HasVotedDaily(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := ResolveUserID(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	featureID, err := strconv.ParseInt(c.Param("feature"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	serviceVote, err := do.Invoke[*services.ServiceVote](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	voted, err := serviceVote.HasVotedDaily(ctx, userID, featureID)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, map[string]any{"voted": voted}, nil)
}

// A duplicate vote is an expected outcome, surfaced as a client error and
// never retried.
func wrapVoteError(err error) error {
	switch {
	case errors.Is(err, services.ErrAlreadyVoted):
		return errorx.Wrap(err, errorx.Invalid)
	case errors.Is(err, limiter.ErrRateLimited):
		return errorx.Wrap(err, errorx.RateLimiting)
	case errors.Is(err, sql.ErrNoRows):
		return errorx.Wrap(err, errorx.NotExist)
	default:
		return errorx.Wrap(err, errorx.Service)
	}
}
