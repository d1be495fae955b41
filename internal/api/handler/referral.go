package handler

import (
	"errors"
	"strconv"

	"pawtrait/internal/pkg/limiter"
	"pawtrait/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupReferral struct {
	container *do.Injector
}

func (gr *groupReferral) MyCode(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := ResolveUserID(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceReferral, err := do.Invoke[*services.ServiceReferral](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	code, err := serviceReferral.IssueOrGetCode(ctx, userID)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, code, nil)
}

// Click tracks a referral-link visit. An unknown code is not an error, the
// response just carries no referrer.
func (gr *groupReferral) Click(c echo.Context) error {
	ctx := c.Request().Context()

	serviceReferral, err := do.Invoke[*services.ServiceReferral](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	referrerID, err := serviceReferral.TrackClick(ctx, c.Param("code"))
	if err != nil {
		if errors.Is(err, limiter.ErrRateLimited) {
			return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.RateLimiting))
		}

		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, map[string]any{"referrer_id": referrerID}, nil)
}

func (gr *groupReferral) CompleteSignup(c echo.Context) error {
	ctx := c.Request().Context()

	var payload struct {
		Code      string `json:"code"`
		NewUserID int64  `json:"new_user_id"`
	}
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	serviceReferral, err := do.Invoke[*services.ServiceReferral](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	referral, err := serviceReferral.CompleteSignup(ctx, payload.Code, payload.NewUserID)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, referral, nil)
}

// Reward grants the referral reward exactly once; repeats report
// granted=false rather than failing.
func (gr *groupReferral) Reward(c echo.Context) error {
	ctx := c.Request().Context()

	referralID, err := strconv.ParseInt(c.Param("referral"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	serviceReferral, err := do.Invoke[*services.ServiceReferral](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	granted, err := serviceReferral.GrantReward(ctx, referralID)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, map[string]any{"granted": granted}, nil)
}

func (gr *groupReferral) MyStats(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := ResolveUserID(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceReferral, err := do.Invoke[*services.ServiceReferral](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	stats, err := serviceReferral.GetStats(ctx, userID)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, stats, nil)
}

func (gr *groupReferral) MyReferrals(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := ResolveUserID(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceReferral, err := do.Invoke[*services.ServiceReferral](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	referrals, err := serviceReferral.ListReferrals(ctx, userID)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, referrals, nil)
}
