// Command schedctl runs the scheduling engine against the database from the shell.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/nekogravitycat/meeting-scheduler-backend/internal/app"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/config"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/db"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/logging"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/meeting"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/notification"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/scheduling"
	schedHttp "github.com/nekogravitycat/meeting-scheduler-backend/internal/scheduling/http"
)

func main() {
	cliApp := &cli.App{
		Name:  "schedctl",
		Usage: "Check conflicts and find meeting slots without going through the API.",
		Commands: []*cli.Command{
			checkCommand(),
			suggestCommand(),
			nextSlotCommand(),
			remindCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "schedctl:", err)
		os.Exit(1)
	}
}

// engineFlags are shared by the commands that query the scheduling engine.
func engineFlags(extra ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{Name: "organizer", Aliases: []string{"o"}, Required: true, Usage: "organizer user id"},
		&cli.StringSliceFlag{Name: "participant", Aliases: []string{"p"}, Usage: "participant user id (repeatable)"},
		&cli.IntFlag{Name: "duration", Aliases: []string{"d"}, Value: scheduling.DefaultDurationMinutes, Usage: "meeting length in minutes"},
	}, extra...)
}

type env struct {
	container *app.Container
	logger    *zap.Logger
	close     func()
}

// setup loads the server configuration and wires the same services the API uses.
func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := logging.New(cfg.LogLevel, false)
	if err != nil {
		return nil, err
	}

	start, err := scheduling.ParseTimeOfDay(cfg.BusinessHoursStart)
	if err != nil {
		return nil, err
	}
	end, err := scheduling.ParseTimeOfDay(cfg.BusinessHoursEnd)
	if err != nil {
		return nil, err
	}

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return nil, err
	}

	var publisher notification.Publisher = notification.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = notification.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopicPrefix)
	}

	container := app.NewContainer(app.Config{
		DBPool:        pool,
		JWTSecret:     cfg.JWTSecret,
		JWTTTL:        cfg.JWTAccessTokenTTL,
		PasswordCost:  cfg.BcryptCost,
		Logger:        logger,
		DefaultZone:   cfg.DefaultTimezone,
		BusinessHours: scheduling.BusinessHours{Start: start, End: end},
		Publisher:     publisher,
		Reminders:     meeting.ReminderConfig{Horizon: cfg.ReminderHorizon, Interval: cfg.ReminderInterval},
	})

	return &env{
		container: container,
		logger:    logger,
		close: func() {
			_ = publisher.Close()
			pool.Close()
			_ = logger.Sync()
		},
	}, nil
}

// withEnv runs fn with a wired environment and prints its result as JSON.
func withEnv(fn func(c *cli.Context, e *env) (any, error)) cli.ActionFunc {
	return func(c *cli.Context) error {
		e, err := setup(c.Context)
		if err != nil {
			return err
		}
		defer e.close()

		out, err := fn(c, e)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
}

func logSkipped(e *env, skipped []string) {
	if len(skipped) > 0 {
		e.logger.Warn("unknown participants skipped", zap.Strings("participant_ids", skipped))
	}
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Report conflicts for a proposed meeting.",
		Flags: engineFlags(
			&cli.TimestampFlag{Name: "start", Layout: time.RFC3339, Required: true},
			&cli.StringFlag{Name: "exclude", Usage: "meeting id to ignore"},
		),
		Action: withEnv(func(c *cli.Context, e *env) (any, error) {
			report, err := e.container.SchedulingService.CheckConflicts(c.Context, c.String("organizer"), scheduling.Candidate{
				Start:            *c.Timestamp("start"),
				DurationMinutes:  c.Int("duration"),
				ParticipantIDs:   c.StringSlice("participant"),
				ExcludeMeetingID: c.String("exclude"),
			})
			if err != nil {
				return nil, err
			}
			logSkipped(e, report.SkippedParticipantIDs)
			return schedHttp.NewAggregateReportResponse(report), nil
		}),
	}
}

func suggestCommand() *cli.Command {
	return &cli.Command{
		Name:  "suggest",
		Usage: "List free slots starting from a date.",
		Flags: engineFlags(
			&cli.TimestampFlag{Name: "date", Layout: "2006-01-02", Required: true},
			&cli.IntFlag{Name: "num", Value: scheduling.DefaultNumSuggestions},
			&cli.IntFlag{Name: "days", Value: scheduling.DefaultDaysToSearch},
		),
		Action: withEnv(func(c *cli.Context, e *env) (any, error) {
			slots, skipped, err := e.container.SchedulingService.SuggestSlots(c.Context, scheduling.SuggestRequest{
				OrganizerID:     c.String("organizer"),
				ParticipantIDs:  c.StringSlice("participant"),
				DurationMinutes: c.Int("duration"),
				PreferredDate:   *c.Timestamp("date"),
				NumSuggestions:  c.Int("num"),
				DaysToSearch:    c.Int("days"),
			})
			if err != nil {
				return nil, err
			}
			logSkipped(e, skipped)
			return schedHttp.NewSlotResponses(slots), nil
		}),
	}
}

func nextSlotCommand() *cli.Command {
	return &cli.Command{
		Name:  "next-slot",
		Usage: "Find the earliest free slot.",
		Flags: engineFlags(
			&cli.TimestampFlag{Name: "after", Layout: time.RFC3339, Usage: "defaults to now"},
			&cli.IntFlag{Name: "max-days", Value: scheduling.DefaultMaxDays},
		),
		Action: withEnv(func(c *cli.Context, e *env) (any, error) {
			after := time.Now()
			if ts := c.Timestamp("after"); ts != nil {
				after = *ts
			}
			slot, skipped, err := e.container.SchedulingService.FindNextAvailableSlot(c.Context, scheduling.NextSlotRequest{
				OrganizerID:     c.String("organizer"),
				ParticipantIDs:  c.StringSlice("participant"),
				DurationMinutes: c.Int("duration"),
				After:           after,
				MaxDays:         c.Int("max-days"),
			})
			if err != nil {
				return nil, err
			}
			logSkipped(e, skipped)
			if slot == nil {
				return map[string]any{"slot": nil}, nil
			}
			return map[string]any{"slot": schedHttp.NewSlotResponse(*slot)}, nil
		}),
	}
}

func remindCommand() *cli.Command {
	return &cli.Command{
		Name:  "remind",
		Usage: "Send due meeting reminders once and exit.",
		Action: withEnv(func(c *cli.Context, e *env) (any, error) {
			sent, err := e.container.ReminderWorker.RunOnce(c.Context)
			if err != nil {
				return nil, err
			}
			return map[string]int{"sent": sent}, nil
		}),
	}
}
