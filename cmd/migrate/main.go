package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"strconv"

	"pawtrait/internal/datastore"
	"pawtrait/internal/services"

	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/urfave/cli/v2"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

func main() {
	app := &cli.App{
		Name: "migrate",
		Commands: []*cli.Command{
			commandMigration(),
			commandConfigSeed(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandMigration() *cli.Command {
	return &cli.Command{
		Name: "migrate",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			creators := []func(context.Context, *bun.DB) error{
				datastore.CreateTablePet,
				datastore.CreateTablePetVote,
				datastore.CreateTableDailyVote,
				datastore.CreateTableDailyFeature,
				datastore.CreateTableWeeklyDraw,
				datastore.CreateTableReferral,
				datastore.CreateTableUserBadge,
				datastore.CreateTableConfig,
			}

			for _, create := range creators {
				if err := create(ctx, db); err != nil {
					log.Fatal(err)
				}
			}

			log.Println("migration done")
			return nil
		},
	}
}

func commandConfigSeed() *cli.Command {
	return &cli.Command{
		Name: "seed-config",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			defaults := map[string]string{
				services.CONFIG_CRONJOB_TIME_DAILY_FEATURE: services.DEFAULT_CRON_DAILY_FEATURE,
				services.CONFIG_CRONJOB_TIME_WEEKLY_DRAW:   services.DEFAULT_CRON_WEEKLY_DRAW,
				services.CONFIG_FEATURE_MIN_VOTES:          strconv.Itoa(services.DEFAULT_FEATURE_MIN_VOTES),
				services.CONFIG_FEATURE_COOLDOWN_DAYS:      strconv.Itoa(services.DEFAULT_FEATURE_COOLDOWN_DAYS),
				services.CONFIG_WEEKLY_PRIZE_AMOUNT:        strconv.Itoa(services.DEFAULT_WEEKLY_PRIZE_AMOUNT),
				services.CONFIG_REFERRAL_REWARD_AMOUNT:     strconv.Itoa(services.DEFAULT_REFERRAL_REWARD),
			}

			for key, value := range defaults {
				if err := datastore.SeedConfig(ctx, db, key, value); err != nil {
					log.Fatal(err)
				}
			}

			log.Println("config seeded")
			return nil
		},
	}
}

func getDb() (*bun.DB, error) {
	godotenv.Load()
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(os.Getenv("DB_DSN")),
		pgdriver.WithPassword(os.Getenv("DB_PASSWORD")),
	))

	return bun.NewDB(sqldb, pgdialect.New()), nil
}
