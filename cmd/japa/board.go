package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/japa/internal/boardui"
	"github.com/verte-zerg/japa/internal/config"
	"github.com/verte-zerg/japa/internal/model"
	"github.com/verte-zerg/japa/internal/stats"
	"github.com/verte-zerg/japa/internal/store"
)

const (
	defaultBoardLimit   = 20
	defaultBoardRefresh = 5 * time.Second
	plainRepetitions    = 30
)

var (
	boardUser    string
	boardLimit   int
	boardRefresh time.Duration
	boardPlain   bool
)

func newBoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show the leaderboard",
		Args:  cobra.NoArgs,
		RunE:  runBoardCmd,
	}
	cmd.Flags().StringVar(&boardUser, "user", "", "user shown on the Achievements and Progress tabs")
	cmd.Flags().IntVar(&boardLimit, "limit", defaultBoardLimit, "number of rows (0 = all)")
	cmd.Flags().DurationVar(&boardRefresh, "refresh", defaultBoardRefresh, "refresh interval")
	cmd.Flags().BoolVar(&boardPlain, "plain", false, "print the leaderboard as text and exit")
	return cmd
}

func runBoardCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "user", &boardUser, fileCfg.Board.User)
	applyIntConfig(cmd, "limit", &boardLimit, fileCfg.Board.Limit)
	if fileCfg.Board.Refresh != nil && !cmd.Flags().Changed("refresh") {
		boardRefresh = fileCfg.Board.Refresh.Duration
	}

	cfg := model.BoardConfig{
		User:    boardUser,
		Limit:   boardLimit,
		Refresh: boardRefresh,
	}
	if err := validateBoardConfig(cfg); err != nil {
		return err
	}

	st, err := store.Open(resolveDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if boardPlain {
		return renderPlainBoard(cmd, st, cfg)
	}

	m := boardui.NewModel(st, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run leaderboard TUI: %w", err)
	}
	return nil
}

func renderPlainBoard(cmd *cobra.Command, st *store.Store, cfg model.BoardConfig) error {
	report, err := stats.BuildReport(context.Background(), st, cfg.User, cfg.Limit, plainRepetitions)
	if err != nil {
		return fmt.Errorf("failed to build leaderboard: %w", err)
	}
	width := 0
	if stats.IsTerminal() {
		width = stats.TerminalWidth()
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderLeaderboard(out, report.Entries, width); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if cfg.User == "" {
		return nil
	}
	if _, err := fmt.Fprintln(out, ""); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderProgress(out, report.Progress, report.Repetitions); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func validateBoardConfig(cfg model.BoardConfig) error {
	if cfg.Limit < 0 {
		return fmt.Errorf("--limit must be >= 0")
	}
	if cfg.Refresh < time.Second {
		return fmt.Errorf("--refresh must be at least 1s")
	}
	return nil
}
