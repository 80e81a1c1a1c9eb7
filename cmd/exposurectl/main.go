package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/focusnest/exposure-service/internal/challenge"
	"github.com/focusnest/exposure-service/internal/platform/logging"
	"github.com/focusnest/exposure-service/internal/progression"
	"github.com/focusnest/exposure-service/internal/sentiment"
	"github.com/focusnest/exposure-service/internal/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	dbPath  string
	userID  string
	verbose bool
}

// app is an engine over a local SQLite file.
type app struct {
	engine *progression.Engine
	store  *store.SQLiteStore
}

func (a *app) Close() error {
	a.engine.Wait()
	return a.store.Close()
}

func defaultDBPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "exposure", "exposure.db")
	}
	return "exposure.db"
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "exposurectl",
		Short:         "Daily exposure challenges from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.dbPath, "db", defaultDBPath(), "SQLite database path")
	root.PersistentFlags().StringVar(&opts.userID, "user", "local", "user id")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(
		newTodayCmd(opts),
		newCompleteCmd(opts),
		newSkipCmd(opts),
		newAssessCmd(opts),
		newFocusCmd(opts),
		newProfileCmd(opts),
		newHistoryCmd(opts),
		newCatalogCmd(),
		newResetCmd(opts),
	)
	return root
}

func openApp(ctx context.Context, cmd *cobra.Command, opts *options) (*app, error) {
	s, err := store.NewSQLite(ctx, opts.dbPath)
	if err != nil {
		return nil, err
	}
	catalog, err := challenge.Default()
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	logger := logging.Discard()
	if opts.verbose {
		logger = logging.NewLoggerTo(cmd.ErrOrStderr(), "exposurectl")
	}

	engine, err := progression.NewEngine(progression.Config{
		Store:    s,
		Selector: challenge.NewSelector(catalog, challenge.NewGenerator(catalog.Templates(), nil)),
		Analyzer: sentiment.NewLexiconAnalyzer(),
		Logger:   logger,
	})
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return &app{engine: engine, store: s}, nil
}

// withApp opens the local engine, runs fn and prints its result.
func withApp(opts *options, fn func(ctx context.Context, a *app) (any, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := openApp(ctx, cmd, opts)
		if err != nil {
			return err
		}
		defer a.Close()

		out, err := fn(ctx, a)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), out)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTodayCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's challenge, assigning one if needed",
		RunE: withApp(opts, func(ctx context.Context, a *app) (any, error) {
			return a.engine.Load(ctx, opts.userID)
		}),
	}
}

func newCompleteCmd(opts *options) *cobra.Command {
	var feeling, notes string
	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Complete today's challenge with a reflection",
		RunE: withApp(opts, func(ctx context.Context, a *app) (any, error) {
			return a.engine.Complete(ctx, opts.userID, progression.ReflectionInput{
				Feeling: progression.Feeling(feeling),
				Notes:   notes,
			})
		}),
	}
	cmd.Flags().StringVar(&feeling, "feeling", "", "Confident|Excited|Anxious|Relief")
	cmd.Flags().StringVar(&notes, "notes", "", "what happened (at least 10 characters)")
	_ = cmd.MarkFlagRequired("feeling")
	_ = cmd.MarkFlagRequired("notes")
	return cmd
}

func newSkipCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "skip",
		Short: "Swap today's challenge for another one",
		RunE: withApp(opts, func(ctx context.Context, a *app) (any, error) {
			return a.engine.Skip(ctx, opts.userID)
		}),
	}
}

func newAssessCmd(opts *options) *cobra.Command {
	var answers []int
	cmd := &cobra.Command{
		Use:   "assess <a1> <a2> <a3>",
		Short: "Submit the onboarding quiz (option numbers 1-3)",
		Args:  cobra.ExactArgs(len(progression.Questions())),
		PreRunE: func(_ *cobra.Command, args []string) error {
			answers = answers[:0]
			for _, arg := range args {
				n, err := strconv.Atoi(arg)
				if err != nil {
					return fmt.Errorf("answer %q is not a number", arg)
				}
				answers = append(answers, n)
			}
			return nil
		},
		RunE: withApp(opts, func(ctx context.Context, a *app) (any, error) {
			return a.engine.SubmitAssessment(ctx, opts.userID, answers)
		}),
	}
	return cmd
}

func newFocusCmd(opts *options) *cobra.Command {
	var key string
	return &cobra.Command{
		Use:   "focus <key>",
		Short: "Set the preferred focus area",
		Args:  cobra.ExactArgs(1),
		PreRun: func(_ *cobra.Command, args []string) {
			key = args[0]
		},
		RunE: withApp(opts, func(ctx context.Context, a *app) (any, error) {
			if err := a.engine.SetFocus(ctx, opts.userID, key); err != nil {
				return nil, err
			}
			return map[string]string{"focus": key}, nil
		}),
	}
}

func newProfileCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show level, streak and badges",
		RunE: withApp(opts, func(ctx context.Context, a *app) (any, error) {
			return a.engine.Profile(ctx, opts.userID)
		}),
	}
}

func newHistoryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List reflections, newest first",
		RunE: withApp(opts, func(ctx context.Context, a *app) (any, error) {
			return a.engine.History(ctx, opts.userID)
		}),
	}
}

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the curated challenges and focus areas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := challenge.Default()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"challenges":  catalog.All(),
				"focus_areas": catalog.FocusAreas(),
			})
		},
	}
}

func newResetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete all progress for the user",
		RunE: withApp(opts, func(ctx context.Context, a *app) (any, error) {
			if err := a.engine.Reset(ctx, opts.userID); err != nil {
				return nil, err
			}
			return map[string]string{"status": "reset"}, nil
		}),
	}
}
