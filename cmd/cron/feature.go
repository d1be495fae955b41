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

type FeatureJob struct {
	container *do.Injector
	rs        *redsync.Redsync
}

func NewFeatureJob(container *do.Injector, rs *redsync.Redsync) *FeatureJob {
	return &FeatureJob{container: container, rs: rs}
}

func (j *FeatureJob) Start(cronRunner *cron.Cron) error {
	ctx := context.Background()

	serviceConfig, err := do.Invoke[*services.ServiceConfig](j.container)
	if err != nil {
		return err
	}

	schedule, err := serviceConfig.GetStringConfig(ctx, services.CONFIG_CRONJOB_TIME_DAILY_FEATURE, services.DEFAULT_CRON_DAILY_FEATURE)
	if err != nil {
		log.Println("daily feature schedule config:", err)
	}

	_, err = cronRunner.AddFunc(schedule, j.runScheduledTask)
	log.Println("Daily feature cronjob start at:", time.Now().Format("2006-01-02 15:04:05"), "cron:", schedule, err)
	return err
}

func (j *FeatureJob) runScheduledTask() {
	ctx := context.Background()

	mutex := j.rs.NewMutex("cron:daily_feature", redsync.WithExpiry(time.Minute))
	if err := mutex.Lock(); err != nil {
		// another replica holds the tick; selection is idempotent anyway
		log.Println("daily feature tick skipped:", err)
		return
	}
	//nolint:errcheck
	defer mutex.Unlock()

	serviceFeature, err := do.Invoke[*services.ServiceFeature](j.container)
	if err != nil {
		log.Println("feature service:", err)
		return
	}

	feature, err := serviceFeature.SelectForToday(ctx)
	if errors.Is(err, services.ErrNoEligiblePets) {
		log.Println("no eligible pets today; retrying next tick")
		return
	}
	if err != nil {
		log.Println("daily feature selection:", err)
		return
	}

	log.Println("Daily feature selected:", feature.Date, "pet:", feature.PetID)
}
