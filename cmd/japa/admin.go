package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/japa/internal/achievement"
	"github.com/verte-zerg/japa/internal/model"
	"github.com/verte-zerg/japa/internal/session"
	"github.com/verte-zerg/japa/internal/stats"
	"github.com/verte-zerg/japa/internal/store"
)

var (
	adminPoints       int
	adminSessions     int
	adminAchievements string
	adminReaward      bool
	adminJSON         bool
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Inspect and correct stored progress",
	}

	show := &cobra.Command{
		Use:   "show <user>",
		Short: "Print a user's record",
		Args:  cobra.ExactArgs(1),
		RunE:  runAdminShowCmd,
	}
	show.Flags().BoolVar(&adminJSON, "json", false, "print the record as JSON")

	set := &cobra.Command{
		Use:   "set <user>",
		Short: "Overwrite points, sessions or achievements",
		Args:  cobra.ExactArgs(1),
		RunE:  runAdminSetCmd,
	}
	set.Flags().IntVar(&adminPoints, "points", 0, "total points")
	set.Flags().IntVar(&adminSessions, "sessions", 0, "completed sessions")
	set.Flags().StringVar(&adminAchievements, "achievements", "", "comma-separated achievement ids (empty string clears)")
	set.Flags().BoolVar(&adminReaward, "reaward", false, "grant every achievement the points qualify for")

	reset := &cobra.Command{
		Use:   "reset <user>",
		Short: "Reset a user's record to zero",
		Args:  cobra.ExactArgs(1),
		RunE:  runAdminResetCmd,
	}
	del := &cobra.Command{
		Use:   "delete <user>",
		Short: "Delete a user and their repetition log",
		Args:  cobra.ExactArgs(1),
		RunE:  runAdminDeleteCmd,
	}
	find := &cobra.Command{
		Use:   "find <pattern>",
		Short: "Fuzzy-search stored user keys",
		Args:  cobra.ExactArgs(1),
		RunE:  runAdminFindCmd,
	}

	cmd.AddCommand(show, set, reset, del, find)
	return cmd
}

func withStore(fn func(ctx context.Context, st *store.Store) error) error {
	st, err := store.Open(resolveDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	return fn(context.Background(), st)
}

func runAdminShowCmd(cmd *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, st *store.Store) error {
		p, err := st.Load(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to load progress: %w", err)
		}
		if adminJSON {
			return printProgress(cmd, p)
		}
		reps, err := st.ListRepetitions(ctx, args[0], plainRepetitions)
		if err != nil {
			return fmt.Errorf("failed to load repetitions: %w", err)
		}
		return stats.RenderProgress(cmd.OutOrStdout(), p, reps)
	})
}

func runAdminSetCmd(cmd *cobra.Command, args []string) error {
	correction, err := correctionFromFlags(cmd)
	if err != nil {
		return err
	}
	return withStore(func(ctx context.Context, st *store.Store) error {
		current, err := st.Load(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to load progress: %w", err)
		}
		updated := correction.Apply(current)
		if err := st.Save(ctx, updated); err != nil {
			return fmt.Errorf("failed to save progress: %w", err)
		}
		return printProgress(cmd, updated)
	})
}

func runAdminResetCmd(cmd *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, st *store.Store) error {
		current, err := st.Load(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to load progress: %w", err)
		}
		updated := session.Reset(current)
		if err := st.Save(ctx, updated); err != nil {
			return fmt.Errorf("failed to save progress: %w", err)
		}
		return printProgress(cmd, updated)
	})
}

func runAdminDeleteCmd(cmd *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, st *store.Store) error {
		existed, err := st.DeleteUser(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		if !existed {
			return fmt.Errorf("user %q not found", args[0])
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return err
	})
}

func runAdminFindCmd(cmd *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, st *store.Store) error {
		records, err := st.ListProgress(ctx)
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}
		keys := lo.Map(records, func(p model.Progress, _ int) string { return p.UserKey })
		for _, match := range fuzzy.Find(args[0], keys) {
			p := records[match.Index]
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d points\t%d sessions\n", p.UserKey, p.TotalPoints, p.CompletedSessions); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		return nil
	})
}

func correctionFromFlags(cmd *cobra.Command) (session.Correction, error) {
	var c session.Correction
	flags := cmd.Flags()
	if flags.Changed("points") {
		points := adminPoints
		c.TotalPoints = &points
	}
	if flags.Changed("sessions") {
		sessions := adminSessions
		c.CompletedSessions = &sessions
	}
	if flags.Changed("achievements") {
		ids, err := parseAchievementList(adminAchievements)
		if err != nil {
			return session.Correction{}, err
		}
		c.Achievements = ids
	}
	c.Reaward = adminReaward
	if c.TotalPoints == nil && c.CompletedSessions == nil && c.Achievements == nil && !c.Reaward {
		return session.Correction{}, fmt.Errorf("nothing to set: use --points, --sessions, --achievements or --reaward")
	}
	return c, nil
}

func parseAchievementList(raw string) ([]achievement.ID, error) {
	ids := []achievement.ID{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := achievement.Parse(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func printProgress(cmd *cobra.Command, p model.Progress) error {
	out := cmd.OutOrStdout()
	if adminJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}
	names := lo.Map(p.Achievements, func(id achievement.ID, _ int) string { return id.String() })
	_, err := fmt.Fprintf(out, "user: %s\npoints: %d\nsessions: %d\nachievements: %s\n",
		p.UserKey, p.TotalPoints, p.CompletedSessions, strings.Join(names, ", "))
	return err
}
