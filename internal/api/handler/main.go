package handler

import (
	"net/http"

	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/do"
)

type Config struct {
	Container *do.Injector
	Mode      string
	Origins   []string
}

func New(cfg *Config) (http.Handler, error) {
	r := echo.New()
	r.Pre(middleware.RemoveTrailingSlash())
	if cfg.Mode == "debug" {
		r.Debug = true
		pprof.Register(r)
	}

	r.JSONSerializer = httpx.SegmentJSONSerializer{}
	r.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339}\t${method}\t${uri}\t${status}\t${latency_human}\n",
	}))
	r.Use(middleware.Recover())

	r.GET("", func(c echo.Context) error {
		return c.String(http.StatusOK, "🐾")
	})

	routesAPIv1 := r.Group("/api/v1")
	{
		cors := middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.Origins,
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			AllowCredentials: true,
			MaxAge:           60 * 60,
		})

		routesAPIv1.Use(cors)
		routesAPIv1.Use(Authn()) // Authn will NOT terminate unauthenticated requests.

		p := groupPet{cfg.Container}
		routesAPIv1.POST("/pets", p.Create)
		routesAPIv1.GET("/pets/mine", p.Mine)
		routesAPIv1.GET("/pets/leaderboard", p.Leaderboard)
		routesAPIv1.GET("/pet/:pet", p.Show)
		routesAPIv1.POST("/pet/:pet/artwork", p.SetArtwork)
		routesAPIv1.DELETE("/pet/:pet", p.Delete)

		v := groupVote{cfg.Container}
		routesAPIv1.POST("/pet/:pet/vote", v.CastVote)
		routesAPIv1.GET("/pet/:pet/vote", v.HasVoted)
		routesAPIv1.POST("/feature/:feature/vote", v.CastDailyVote)
		routesAPIv1.GET("/feature/:feature/vote", v.HasVotedDaily)

		g := groupGeneration{cfg.Container}
		routesAPIv1.POST("/pet/:pet/generation/charge", g.Charge)
		routesAPIv1.POST("/pet/:pet/generation", g.Record)
		routesAPIv1.POST("/pet/:pet/mint", g.Mint)
		routesAPIv1.POST("/user/me/credits/consume", g.ConsumeCredit)

		rf := groupReferral{cfg.Container}
		routesAPIv1.GET("/user/me/referral-code", rf.MyCode)
		routesAPIv1.GET("/user/me/referral-stats", rf.MyStats)
		routesAPIv1.GET("/user/me/referrals", rf.MyReferrals)
		routesAPIv1.POST("/referral/click/:code", rf.Click)
		routesAPIv1.POST("/referral/signup", rf.CompleteSignup)
		routesAPIv1.POST("/referral/:referral/reward", rf.Reward)

		f := groupFeature{cfg.Container}
		routesAPIv1.GET("/feature/today", f.Today)
		routesAPIv1.GET("/feature/date/:date", f.ByDate)
		routesAPIv1.GET("/draw/current", f.CurrentDraw)
		routesAPIv1.POST("/draw/:draw/prize", f.ConfirmPrize)

		b := groupBadge{cfg.Container}
		routesAPIv1.GET("/badges", b.Catalog)
		routesAPIv1.GET("/user/me/badges", b.Mine)

		a := groupActivity{cfg.Container}
		routesAPIv1.GET("/activity", a.Recent)
	}

	return r, nil
}
