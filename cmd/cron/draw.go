package main

import (
	"context"
	"errors"
	"log"
	"time"

	"pawtrait/internal/services"

	"github.com/go-redsync/redsync/v4"
	"github.com/robfig/cron/v3"
	"github.com/samber/do"
)

type DrawJob struct {
	container *do.Injector
	rs        *redsync.Redsync
}

func NewDrawJob(container *do.Injector, rs *redsync.Redsync) *DrawJob {
	return &DrawJob{container: container, rs: rs}
}

func (j *DrawJob) Start(cronRunner *cron.Cron) error {
	ctx := context.Background()

	serviceConfig, err := do.Invoke[*services.ServiceConfig](j.container)
	if err != nil {
		return err
	}

	schedule, err := serviceConfig.GetStringConfig(ctx, services.CONFIG_CRONJOB_TIME_WEEKLY_DRAW, services.DEFAULT_CRON_WEEKLY_DRAW)
	if err != nil {
		log.Println("weekly draw schedule config:", err)
	}

	_, err = cronRunner.AddFunc(schedule, j.runScheduledTask)
	log.Println("Weekly draw cronjob start at:", time.Now().Format("2006-01-02 15:04:05"), "cron:", schedule, err)
	return err
}

func (j *DrawJob) runScheduledTask() {
	ctx := context.Background()

	mutex := j.rs.NewMutex("cron:weekly_draw", redsync.WithExpiry(time.Minute))
	if err := mutex.Lock(); err != nil {
		log.Println("weekly draw tick skipped:", err)
		return
	}
	//nolint:errcheck
	defer mutex.Unlock()

	serviceDraw, err := do.Invoke[*services.ServiceDraw](j.container)
	if err != nil {
		log.Println("draw service:", err)
		return
	}

	draw, err := serviceDraw.DrawForCompletedWeek(ctx)
	if errors.Is(err, services.ErrNoEntriesThisWeek) {
		log.Println("no entries this week; retrying next tick")
		return
	}
	if err != nil {
		log.Println("weekly draw:", err)
		return
	}

	log.Println("Weekly draw:", draw.WeekStart, "feature:", draw.DailyFeatureID, "pet:", draw.PetID)
}
