// Command plannerctl inspects the planner store from the terminal: the
// month view, the archives, the history since signup and the raw keys. It
// can also push a month's expenses to the spreadsheet.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"planner/internal/archive"
	"planner/internal/cli"
	"planner/internal/config"
	"planner/internal/core"
	"planner/internal/keys"
	"planner/internal/kv"
	"planner/internal/log"
	"planner/internal/planner"
)

var (
	flagYear    int
	flagMonth   int
	flagJSON    bool
	flagBackend string
	flagDBPath  string
	flagDataDir string
)

var rootCmd = &cobra.Command{
	Use:           "plannerctl",
	Short:         "Digital planner store inspector",
	Long:          "Read months, archives and history straight from the planner store.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	cli.LoadEnvFile()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&flagYear, "year", "y", 0, "Year (default: current)")
	rootCmd.PersistentFlags().IntVarP(&flagMonth, "month", "m", 0, "Month 1-12 (default: current)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print JSON instead of tables")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "Override DATA_BACKEND (memory, sqlite, file)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Override SQLITE_DB_PATH")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Override DATA_DIR")
}

// session is what every command reads through.
type session struct {
	cfg     *config.Config
	store   kv.Store
	scheme  keys.Scheme
	archive *archive.Builder
	logger  *log.Logger
	now     func() time.Time
	close   func() error
}

func (s *session) openPlanner(ctx context.Context, scope core.Scope) (*planner.Planner, error) {
	ref, err := planner.ParseHabitReference(s.cfg.HabitReference)
	if err != nil {
		return nil, err
	}
	return planner.Open(ctx, s.store, planner.Options{
		Scheme:    s.scheme,
		Now:       s.now,
		Scope:     scope,
		Reference: ref,
		Logger:    s.logger.WithComponent(log.ComponentPlanner),
	})
}

// openSession is replaced in tests.
var openSession = func(ctx context.Context) (*session, error) {
	cfg := config.Load()
	if flagBackend != "" {
		cfg.DataBackend = flagBackend
	}
	if flagDBPath != "" {
		cfg.SQLiteDBPath = flagDBPath
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	// Reads never publish change events.
	cfg.AMQPURL = ""
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := log.New(log.Config{Level: log.ParseLevel(cfg.LogLevel), Component: log.ComponentCLI, Output: os.Stderr})
	res, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		return nil, err
	}
	scheme := keys.New(cfg.KeyPrefix)
	return &session{
		cfg:     cfg,
		store:   res.Store,
		scheme:  scheme,
		archive: archive.NewBuilder(res.Store, scheme, logger.WithComponent(log.ComponentArchive)),
		logger:  logger,
		now:     time.Now,
		close:   res.Cleanup,
	}, nil
}

// withSession opens the store, runs fn and releases the store.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if s.close != nil {
			if err := s.close(); err != nil {
				s.logger.Warn("Closing store failed", log.FieldError, err)
			}
		}
	}()
	return fn(ctx, s)
}

// selectedScope applies the --year and --month flags over now.
func selectedScope(now time.Time) (core.Scope, error) {
	scope := core.ScopeOf(now)
	if flagYear != 0 {
		scope.Year = flagYear
	}
	if flagMonth != 0 {
		scope.Month = time.Month(flagMonth)
	}
	if err := scope.Validate(); err != nil {
		return core.Scope{}, err
	}
	return scope, nil
}

func selectedYear(now time.Time) int {
	if flagYear != 0 {
		return flagYear
	}
	return now.Year()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
