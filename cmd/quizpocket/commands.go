package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"quiz-pocket/internal/assets"
	"quiz-pocket/internal/quiz"
)

func refreshCommand() *cli.Command {
	return &cli.Command{
		Name:  "refresh",
		Usage: "Pull fresh data through the read-through cache",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "category", Usage: "refresh topics for this category id"},
			&cli.IntFlag{Name: "topic", Usage: "refresh this topic's detail and questions"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			a, cleanup, err := buildApp(c)
			if err != nil {
				return err
			}
			defer cleanup()

			// Opportunistic drain: the user just asked for network
			// activity, so connectivity was plausibly restored.
			if stats, err := a.engine.DrainOnce(ctx); err != nil {
				a.logger.Warn("startup drain failed", "error", err)
			} else if stats.Uploaded > 0 || stats.Failed > 0 {
				a.logger.Info("startup drain", "uploaded", stats.Uploaded, "failed", stats.Failed)
			}

			switch {
			case c.Int("topic") > 0:
				topicID := int(c.Int("topic"))
				topic, err := a.service.Topic(ctx, topicID)
				if err != nil {
					return err
				}
				questions, err := a.service.Questions(ctx, topicID)
				if err != nil {
					return err
				}
				fmt.Printf("topic %d (%s): %d questions cached\n", topic.ID, topic.Title, len(questions))
			case c.Int("category") > 0:
				topics, err := a.service.Topics(ctx, int(c.Int("category")))
				if err != nil {
					return err
				}
				fmt.Printf("category %d: %d topics cached\n", c.Int("category"), len(topics))
			default:
				categories, err := a.service.Categories(ctx)
				if err != nil {
					return err
				}
				banners, bannerErr := a.service.Banners(ctx)
				if bannerErr != nil && !errors.Is(bannerErr, quiz.ErrNoData) {
					return bannerErr
				}
				fmt.Printf("%d categories, %d banners cached\n", len(categories), len(banners))
			}
			return nil
		},
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Read a collection (falls back to the local store when offline)",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "category", Usage: "show topics for this category id"},
			&cli.IntFlag{Name: "topic", Usage: "show questions for this topic id"},
			&cli.BoolFlag{Name: "banners", Usage: "show banners instead of categories"},
			&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			a, cleanup, err := buildApp(c)
			if err != nil {
				return err
			}
			defer cleanup()

			switch {
			case c.Int("topic") > 0:
				questions, err := a.service.Questions(ctx, int(c.Int("topic")))
				if err != nil {
					return err
				}
				if c.Bool("json") {
					return printJSON(questions)
				}
				for _, q := range questions {
					fmt.Printf("%d. %s (worth %d)\n", q.ID, q.Title, q.Score)
				}
			case c.Int("category") > 0:
				topics, err := a.service.Topics(ctx, int(c.Int("category")))
				if err != nil {
					return err
				}
				if c.Bool("json") {
					return printJSON(topics)
				}
				for _, t := range topics {
					source := assets.Source(c.Bool("offline"), t.LocalImagePath, t.Image)
					fmt.Printf("%d. %s [%s] %d questions (%s)\n", t.ID, t.Title, t.CategoryTitle, t.QuestionCount, source)
				}
			case c.Bool("banners"):
				banners, err := a.service.Banners(ctx)
				if err != nil {
					return err
				}
				if c.Bool("json") {
					return printJSON(banners)
				}
				for _, b := range banners {
					fmt.Printf("%d. %s -> %s\n", b.ID, b.Title, b.URL)
				}
			default:
				categories, err := a.service.Categories(ctx)
				if err != nil {
					return err
				}
				if c.Bool("json") {
					return printJSON(categories)
				}
				for _, cat := range categories {
					fmt.Printf("%d. %s\n", cat.ID, cat.Title)
				}
			}
			return nil
		},
	}
}

func completeCommand() *cli.Command {
	return &cli.Command{
		Name:  "complete",
		Usage: "Record a finished quiz in the pending queue, then try to sync",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "quiz", Required: true},
			&cli.IntFlag{Name: "score", Required: true},
			&cli.IntFlag{Name: "correct", Required: true},
			&cli.IntFlag{Name: "total", Required: true},
			&cli.StringFlag{Name: "payload", Value: "[]", Usage: "serialized question+answer JSON"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			a, cleanup, err := buildApp(c)
			if err != nil {
				return err
			}
			defer cleanup()

			if a.settings.CurrentUserID == 0 {
				return errors.New("no current user; run 'quizpocket profile --set <id>' first")
			}

			id, err := a.engine.Enqueue(ctx, quiz.ProgressRecord{
				UserID:         a.settings.CurrentUserID,
				QuizID:         int(c.Int("quiz")),
				Score:          int(c.Int("score")),
				CorrectAnswers: int(c.Int("correct")),
				TotalQuestions: int(c.Int("total")),
				Payload:        c.String("payload"),
			})
			if err != nil {
				return err
			}
			fmt.Printf("progress #%d queued\n", id)

			stats, err := a.engine.DrainOnce(ctx)
			if err != nil {
				a.logger.Warn("post-completion drain failed", "error", err)
				return nil
			}
			fmt.Printf("sync: %d uploaded, %d still pending\n", stats.Uploaded, stats.Failed)
			return nil
		},
	}
}

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Drain the pending-progress queue once",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			a, cleanup, err := buildApp(c)
			if err != nil {
				return err
			}
			defer cleanup()

			stats, err := a.engine.DrainOnce(ctx)
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return printJSON(stats)
			}
			fmt.Printf("uploaded=%d failed=%d skipped=%d\n", stats.Uploaded, stats.Failed, stats.Skipped)
			return nil
		},
	}
}

func profileCommand() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Show or set the device's current user",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "set", Usage: "set the current user id"},
			&cli.BoolFlag{Name: "intro-shown", Usage: "mark the intro as shown"},
			&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			a, cleanup, err := buildApp(c)
			if err != nil {
				return err
			}
			defer cleanup()

			if id := int(c.Int("set")); id > 0 {
				if err := a.settings.SetCurrentUser(id); err != nil {
					return err
				}
			}
			if c.Bool("intro-shown") && !a.settings.IntroShown {
				if err := a.settings.MarkIntroShown(); err != nil {
					return err
				}
			}

			fmt.Printf("device=%s user=%d intro_shown=%v\n",
				a.settings.DeviceID, a.settings.CurrentUserID, a.settings.IntroShown)

			if a.settings.CurrentUserID != 0 {
				user, err := a.store.GetUser(ctx, a.settings.CurrentUserID)
				switch {
				case errors.Is(err, quiz.ErrUserNotFound):
					fmt.Println("profile not cached locally yet")
				case err != nil:
					return err
				case c.Bool("json"):
					return printJSON(user)
				default:
					fmt.Printf("%s <%s> badge=%d premium=%v\n", user.Fullname, user.Email, user.Badge, user.Premium)
				}
			}
			return nil
		},
	}
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
