// Package main provides the CLI entrypoint for japa.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/japa/internal/config"
	"github.com/verte-zerg/japa/internal/mantra"
	"github.com/verte-zerg/japa/internal/model"
	"github.com/verte-zerg/japa/internal/scorer"
	"github.com/verte-zerg/japa/internal/session"
	"github.com/verte-zerg/japa/internal/store"
	"github.com/verte-zerg/japa/internal/tui"
)

const defaultVariant = "roman"

var (
	practiceUser     string
	practiceVariant  string
	practiceTextFile string
	dbPath           string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "japa",
		Short:         "Mantra typing practice",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default: XDG data dir)")
	rootCmd.Flags().StringVar(&practiceUser, "user", "", "user key (default: login name)")
	rootCmd.Flags().StringVar(&practiceVariant, "variant", defaultVariant, "script variant: roman or devanagari")
	rootCmd.Flags().StringVar(&practiceTextFile, "text-file", "", "custom mantra text file")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newTextsCmd())
	rootCmd.AddCommand(newBoardCmd())
	rootCmd.AddCommand(newAdminCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "user", &practiceUser, fileCfg.Practice.User)
	applyStringConfig(cmd, "variant", &practiceVariant, fileCfg.Practice.Variant)
	applyStringConfig(cmd, "text-file", &practiceTextFile, fileCfg.Practice.TextFile)

	cfg := model.Config{
		User:     practiceUser,
		Variant:  practiceVariant,
		TextFile: practiceTextFile,
	}
	if strings.TrimSpace(cfg.User) == "" {
		cfg.User = config.DefaultUser()
	}
	variant, err := mantra.ParseVariant(cfg.Variant)
	if err != nil {
		return fmt.Errorf("invalid --variant: %w", err)
	}
	text, err := mantra.Resolve(variant, cfg.TextFile)
	if err != nil {
		return err
	}
	sc, err := scorer.New(text, variant)
	if err != nil {
		return fmt.Errorf("failed to prepare scorer: %w", err)
	}

	// A database that cannot be opened still allows local-only practice.
	var persister session.Persister
	st, err := store.Open(resolveDBPath())
	if err != nil {
		logErrf("failed to open db, progress will not be saved: %v\n", err)
	} else {
		persister = st
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
	}

	ctrl, warning := session.New(context.Background(), session.Config{
		UserKey:   cfg.User,
		Scorer:    sc,
		Persister: persister,
	})
	if warning != "" {
		logErrln(warning)
	}
	m := tui.NewModel(ctrl, warning)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	p := ctrl.Progress()
	logErrf("%s: %d points, %d sessions\n", p.UserKey, p.TotalPoints, p.CompletedSessions)
	if persister != nil && ctrl.LocalOnly() {
		logErrln("progress from this run was kept locally only and was not saved")
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newTextsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "texts",
		Short: "List mantra variants and their texts",
		Args:  cobra.NoArgs,
		RunE:  runTextsCmd,
	}
}

func runTextsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	for _, v := range mantra.Variants() {
		path := fileCfg.Server.TextFiles[v.String()]
		if fileCfg.Practice.TextFile != nil && fileCfg.Practice.Variant != nil {
			if pv, err := mantra.ParseVariant(*fileCfg.Practice.Variant); err == nil && pv == v {
				path = *fileCfg.Practice.TextFile
			}
		}
		text, err := mantra.Resolve(v, path)
		source := "builtin"
		if path != "" {
			source = path
		}
		if err != nil {
			logErrf("%s: %v\n", v, err)
			continue
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n  %s\n", v, source, text); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func resolveDBPath() string {
	if strings.TrimSpace(dbPath) != "" {
		return dbPath
	}
	return config.DefaultDBPath()
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# japa configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# user = "you"             # User key (default: login name)
# variant = %q         # Script variant: roman or devanagari
# text-file = ""           # Custom mantra text file

[board]
# user = "you"             # User shown on the Achievements and Progress tabs
# limit = %d               # Number of leaderboard rows (0 = all)
# refresh = %q            # Refresh interval

[server]
# addr = %q           # Listen address (env JAPA_ADDR)
# admin-token = ""         # Bearer token for admin routes (env JAPA_ADMIN_TOKEN)
# allowed-origins = ["*"]  # CORS origins (env JAPA_ALLOWED_ORIGINS)
# db-path = ""             # Database path (env JAPA_DB_PATH)

# [server.text-files]
# roman = "/path/to/roman.txt"
# devanagari = "/path/to/devanagari.txt"
`,
		defaultVariant,
		defaultBoardLimit,
		defaultBoardRefresh.String(),
		config.DefaultServerConfig().Addr,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
