// Package main provides the CLI entrypoint for keystride.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/avolkov/keystride/internal/config"
	"github.com/avolkov/keystride/internal/model"
	"github.com/avolkov/keystride/internal/practice"
	"github.com/avolkov/keystride/internal/report"
	"github.com/avolkov/keystride/internal/store"
	"github.com/avolkov/keystride/internal/text"
	"github.com/avolkov/keystride/internal/tui"
)

const (
	defaultWordLength     = 5.0
	defaultRefreshEvery   = 5
	defaultMinTransitions = 30
	defaultIdleSeconds    = 5
	defaultWidth          = 0
	defaultMinedWindow    = 10
)

const sampleText = "The quick brown fox jumps over the lazy dog while the " +
	"patient gray cat watches from the windowsill and waits for the " +
	"kettle to sing."

var (
	practiceFile       string
	practiceWidth      int
	practiceNewlineSp  bool
	practiceWordLength float64
	practiceRefresh    int
	practiceMinTrans   int
	practiceDowncase   bool
	practiceIdleSecs   int

	minedWindow int

	historySince string
	historyLast  int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "keystride [file]",
		Short:         "TUI typing trainer with replayable sessions",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practiceFile, "file", "", "practice text file (default: built-in sample)")
	addOptionFlags(rootCmd)

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newWordsCmd())
	rootCmd.AddCommand(newTransitionsCmd())
	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

func addOptionFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&practiceWidth, "width", defaultWidth, "reflow text to this column width (0: keep as-is)")
	cmd.Flags().BoolVar(&practiceNewlineSp, "newline-as-space", true, "treat typed whitespace as matching a source newline")
	cmd.Flags().Float64Var(&practiceWordLength, "word-length", defaultWordLength, "characters per word for WPM")
	cmd.Flags().IntVar(&practiceRefresh, "refresh-every", defaultRefreshEvery, "keystrokes between status refreshes")
	cmd.Flags().IntVar(&practiceMinTrans, "min-transitions", defaultMinTransitions, "minimum items in a transitions practice text")
	cmd.Flags().BoolVar(&practiceDowncase, "downcase", false, "downcase words in practice texts")
	cmd.Flags().IntVar(&practiceIdleSecs, "idle-timeout", defaultIdleSeconds, "seconds of idle time before auto-pause (0: off)")
}

func loadOptions(cmd *cobra.Command) (model.Options, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Options{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyBoolConfig(cmd, "newline-as-space", &practiceNewlineSp, fileCfg.Practice.NewlineAsSpace)
	applyFloatConfig(cmd, "word-length", &practiceWordLength, fileCfg.Practice.WordLength)
	applyIntConfig(cmd, "refresh-every", &practiceRefresh, fileCfg.Practice.RefreshEvery)
	applyIntConfig(cmd, "min-transitions", &practiceMinTrans, fileCfg.Practice.MinTransitions)
	applyBoolConfig(cmd, "downcase", &practiceDowncase, fileCfg.Practice.Downcase)
	applyIntConfig(cmd, "idle-timeout", &practiceIdleSecs, fileCfg.Practice.IdleTimeout)
	applyIntConfig(cmd, "width", &practiceWidth, fileCfg.Practice.Width)

	opts := model.Options{
		NewlineAsSpace: practiceNewlineSp,
		WordLength:     practiceWordLength,
		RefreshEvery:   practiceRefresh,
		MinTransitions: practiceMinTrans,
		DowncaseWords:  practiceDowncase,
		IdleTimeout:    time.Duration(practiceIdleSecs) * time.Second,
	}
	if err := validateOptions(opts); err != nil {
		return model.Options{}, err
	}
	return opts, nil
}

func validateOptions(opts model.Options) error {
	if opts.WordLength <= 0 {
		return fmt.Errorf("--word-length must be > 0")
	}
	if opts.RefreshEvery <= 0 {
		return fmt.Errorf("--refresh-every must be > 0")
	}
	if opts.MinTransitions < 0 {
		return fmt.Errorf("--min-transitions must be >= 0")
	}
	if opts.IdleTimeout < 0 {
		return fmt.Errorf("--idle-timeout must be >= 0")
	}
	return nil
}

func runPracticeCmd(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}

	source := sampleText
	path := practiceFile
	if path == "" && len(args) > 0 {
		path = args[0]
	}
	if path != "" {
		source, err = text.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load text %s: %w", path, err)
		}
	}
	if practiceWidth > 0 {
		source = text.Reflow(source, practiceWidth)
	}

	return runSession(source, opts)
}

func runSession(source string, opts model.Options) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	m := tui.NewModel(source, opts, st)
	program := tea.NewProgram(m, tea.WithAltScreen())
	m.SetIdleNotifier(func() {
		program.Send(tui.IdlePause())
	})
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newWordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "words",
		Short: "Practice recently mistyped words",
		Args:  cobra.NoArgs,
		RunE:  runWordsCmd,
	}
	cmd.Flags().IntVar(&minedWindow, "sessions", defaultMinedWindow, "number of recent sessions to mine")
	addOptionFlags(cmd)
	return cmd
}

func runWordsCmd(cmd *cobra.Command, _ []string) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	words, err := loadMined(func(ctx context.Context, st *store.Store) ([]string, error) {
		return st.ListMistypedWords(ctx, minedWindow)
	})
	if err != nil {
		return err
	}
	source, err := practice.MistypedWords(words, opts.DowncaseWords)
	if err != nil {
		logErrln("no mistyped words recorded yet; nothing to practice")
		return nil
	}
	return runSession(source, opts)
}

func newTransitionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transitions",
		Short: "Practice recently mined hard key transitions",
		Args:  cobra.NoArgs,
		RunE:  runTransitionsCmd,
	}
	cmd.Flags().IntVar(&minedWindow, "sessions", defaultMinedWindow, "number of recent sessions to mine")
	addOptionFlags(cmd)
	return cmd
}

func runTransitionsCmd(cmd *cobra.Command, _ []string) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	transitions, err := loadMined(func(ctx context.Context, st *store.Store) ([]string, error) {
		return st.ListHardTransitions(ctx, minedWindow)
	})
	if err != nil {
		return err
	}
	source, err := practice.HardTransitions(transitions, opts.MinTransitions, practice.NewRand())
	if err != nil {
		logErrln("no hard transitions recorded yet; nothing to practice")
		return nil
	}
	return runSession(source, opts)
}

func loadMined(load func(context.Context, *store.Store) ([]string, error)) ([]string, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	return load(context.Background(), st)
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past sessions",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N sessions")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if historySince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", historySince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	sessions, err := st.ListSessions(context.Background(), model.HistoryConfig{Since: sinceTime, Last: historyLast})
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	out := cmd.OutOrStdout()
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(out, "No sessions found.")
		return err
	}
	if err := report.RenderHistory(out, sessions, terminalWidth()); err != nil {
		return fmt.Errorf("failed to render history: %w", err)
	}
	return nil
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
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

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# keystride configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# newline-as-space = true  # Typed whitespace matches a source newline
# word-length = %.1f       # Characters per word for WPM
# refresh-every = %d       # Keystrokes between status refreshes
# min-transitions = %d     # Minimum items in a transitions practice text
# downcase = false         # Downcase words in practice texts
# idle-timeout = %d        # Seconds of idle time before auto-pause (0: off)
# width = %d               # Reflow column width (0: keep text as-is)
`,
		defaultWordLength,
		defaultRefreshEvery,
		defaultMinTransitions,
		defaultIdleSeconds,
		defaultWidth,
	)
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

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
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
