// Package main provides the CLI entrypoint for tuiread.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuiread/internal/assist"
	"github.com/verte-zerg/tuiread/internal/config"
	"github.com/verte-zerg/tuiread/internal/library"
	"github.com/verte-zerg/tuiread/internal/libraryui"
	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/plain"
	"github.com/verte-zerg/tuiread/internal/rsvp"
	"github.com/verte-zerg/tuiread/internal/stats"
	"github.com/verte-zerg/tuiread/internal/store"
	"github.com/verte-zerg/tuiread/internal/tui"
)

const (
	defaultWPM         = 300
	defaultFontSize    = string(model.FontMedium)
	defaultFontFamily  = string(model.FamilyMonospace)
	defaultTheme       = string(model.ThemeDark)
	defaultZenTimeout  = 5 * time.Second
	defaultSkip        = 10
	defaultCurveWindow = 5
)

var (
	readWPM        int
	readFontSize   string
	readFontFamily string
	readTheme      string
	readZenTimeout time.Duration
	readSkip       int
	readPlain      bool
	readRestart    bool

	statsDoc         string
	statsSince       string
	statsLast        int
	statsCurveWindow int

	libraryBrowse bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuiread [file]",
		Short:         "Terminal speed reader",
		Long:          "Read a document one word at a time. Without a file, the last opened document is resumed.",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.MaximumNArgs(1),
		RunE:          runReadCmd,
	}

	rootCmd.Flags().IntVar(&readWPM, "wpm", defaultWPM, fmt.Sprintf("words per minute (%d-%d)", rsvp.MinWPM, rsvp.MaxWPM))
	rootCmd.Flags().StringVar(&readFontSize, "font-size", defaultFontSize, "font size (small, medium, large, extra-large)")
	rootCmd.Flags().StringVar(&readFontFamily, "font-family", defaultFontFamily, "font family (monospace, sans, serif)")
	rootCmd.Flags().StringVar(&readTheme, "theme", defaultTheme, "color theme (dark, amoled, sepia, light)")
	rootCmd.Flags().DurationVar(&readZenTimeout, "zen-timeout", defaultZenTimeout, "hide the footer after this much inactivity (0 disables)")
	rootCmd.Flags().IntVar(&readSkip, "skip", defaultSkip, "words to skip with left/right")
	rootCmd.Flags().BoolVar(&readPlain, "plain", false, "stream words to stdout instead of the full-screen UI")
	rootCmd.Flags().BoolVar(&readRestart, "restart", false, "start from the first word instead of the saved position")

	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newLibraryCmd())
	rootCmd.AddCommand(newForgetCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runReadCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	lib := library.NewService(st)
	var opened library.Opened
	if len(args) == 1 {
		opened, err = lib.Open(cmd.Context(), args[0])
	} else {
		opened, err = lib.Resume(cmd.Context())
	}
	if errors.Is(err, library.ErrEmptyLibrary) {
		return fmt.Errorf("nothing to resume yet; run: tuiread <file>")
	}
	if err != nil {
		return err
	}
	return readDocument(cmd, st, fileCfg, opened)
}

// readDocument resolves settings for opened and runs the reader on it.
func readDocument(cmd *cobra.Command, st *store.Store, fileCfg config.FileConfig, opened library.Opened) error {
	cfg, warnings, err := resolveReaderConfig(cmd, fileCfg, opened)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		logErrln("config:", w)
	}
	start := opened.Position.Cursor
	if cfg.Restart {
		start = 0
	}

	var program atomic.Pointer[tea.Program]
	saver := store.NewSaver(st, func(err error) {
		if p := program.Load(); p != nil {
			p.Send(tui.StatusMsg(fmt.Sprintf("Failed to save progress: %v", err)))
			return
		}
		logErrf("failed to save progress: %v\n", err)
	})
	defer saver.Close()

	if cfg.Plain || !isTerminal(os.Stdout) {
		return readPlainMode(cmd.Context(), opened, start, cfg, saver)
	}

	configPath := config.DefaultConfigPath()
	if _, err := os.Stat(configPath); err != nil {
		configPath = ""
	}
	m := tui.NewModel(tui.Options{
		Document:   opened.Document,
		Tokens:     opened.Tokens,
		Start:      start,
		Config:     cfg,
		Assist:     assist.New(config.ResolveAssist(fileCfg.Assist)),
		Saver:      saver,
		ConfigPath: configPath,
		Pinned:     pinnedReaderKeys(cmd),
	})
	p := tea.NewProgram(m, tea.WithAltScreen())
	program.Store(p)
	_, err = p.Run()
	program.Store(nil)
	if err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func readPlainMode(ctx context.Context, opened library.Opened, start int, cfg model.Config, saver *store.Saver) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	docID := opened.Document.ID
	tracker := library.NewTracker(docID, func() int { return cfg.WPM }, saver.Record)
	save := func(_ string, cursor int) {
		saver.Save(model.Position{
			DocumentID: docID,
			Cursor:     cursor,
			WPM:        cfg.WPM,
			Display:    cfg.Display,
			UpdatedAt:  time.Now(),
		})
	}
	cursor, err := plain.Run(ctx, os.Stdout, plain.Options{
		DocumentID: docID,
		Tokens:     opened.Tokens,
		Start:      start,
		WPM:        cfg.WPM,
		Observers: []rsvp.Option{
			rsvp.WithPositionObserver(save),
			rsvp.WithStateObserver(tracker.Observe),
			rsvp.WithTickObserver(tracker.Advance),
		},
	})
	save(docID, cursor)
	if err != nil {
		return fmt.Errorf("failed to stream document: %w", err)
	}
	return nil
}

// resolveReaderConfig merges flags, the stored rate, the config file and
// defaults, in that order of precedence.
func resolveReaderConfig(cmd *cobra.Command, fileCfg config.FileConfig, opened library.Opened) (model.Config, []string, error) {
	wpm, fontSize, fontFamily, theme := readWPM, readFontSize, readFontFamily, readTheme
	zenTimeout, skip := readZenTimeout, readSkip

	applyIntConfig(cmd, "wpm", &wpm, fileCfg.Reader.WPM)
	if opened.HasPosition && opened.Position.WPM > 0 && !cmd.Flags().Changed("wpm") {
		wpm = opened.Position.WPM
	}
	applyStringConfig(cmd, "font-size", &fontSize, fileCfg.Reader.FontSize)
	applyStringConfig(cmd, "font-family", &fontFamily, fileCfg.Reader.FontFamily)
	applyStringConfig(cmd, "theme", &theme, fileCfg.Reader.Theme)
	applyDurationConfig(cmd, "zen-timeout", &zenTimeout, fileCfg.Reader.ZenTimeout)
	applyIntConfig(cmd, "skip", &skip, fileCfg.Reader.Skip)

	if zenTimeout < 0 {
		return model.Config{}, nil, fmt.Errorf("--zen-timeout must be >= 0")
	}
	cfg := model.Config{Plain: readPlain, Restart: readRestart}
	warnings, err := config.ApplyReader(config.ReaderConfig{
		WPM:        &wpm,
		FontSize:   &fontSize,
		FontFamily: &fontFamily,
		Theme:      &theme,
		ZenTimeout: &config.Duration{Duration: zenTimeout},
		Skip:       &skip,
	}, &cfg)
	if err != nil {
		return model.Config{}, nil, err
	}
	return cfg, warnings, nil
}

// pinnedReaderKeys returns the [reader] keys given as flags.
func pinnedReaderKeys(cmd *cobra.Command) []string {
	var pinned []string
	for _, name := range config.ReaderKeys {
		if cmd.Flags().Changed(name) {
			pinned = append(pinned, name)
		}
	}
	return pinned
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>...",
		Short: "Add documents to the library without reading them",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runImportCmd,
	}
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	lib := library.NewService(st)
	failed := 0
	for _, path := range args {
		doc, err := lib.Import(cmd.Context(), path)
		if err != nil {
			logErrf("%s: %v\n", path, err)
			failed++
			continue
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s  %s (%d words)\n", stats.ShortID(doc.ID), doc.Title, doc.WordCount); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to import %d of %d files", failed, len(args))
	}
	return nil
}

func newLibraryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library",
		Short: "List documents and reading progress",
		Args:  cobra.NoArgs,
		RunE:  runLibraryCmd,
	}
	cmd.Flags().BoolVarP(&libraryBrowse, "browse", "b", false, "pick a document to read interactively")
	return cmd
}

func runLibraryCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if !libraryBrowse {
		docs, err := st.ListDocuments(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list documents: %w", err)
		}
		if len(docs) == 0 {
			logErrln("Library is empty. Import a file with: tuiread import <file>")
			return nil
		}
		return stats.RenderLibrary(cmd.OutOrStdout(), docs)
	}

	browser := libraryui.NewModel(st)
	if _, err := tea.NewProgram(browser, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("failed to run library browser: %w", err)
	}
	id, ok := browser.Selected()
	if !ok {
		return nil
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	opened, err := library.NewService(st).OpenID(cmd.Context(), id)
	if err != nil {
		return err
	}
	return readDocument(cmd.Root(), st, fileCfg, opened)
}

func newForgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forget <id>",
		Short: "Remove a document and its reading history",
		Args:  cobra.ExactArgs(1),
		RunE:  runForgetCmd,
	}
}

func runForgetCmd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	doc, err := st.FindDocument(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to find document %q: %w", args[0], err)
	}
	if err := st.DeleteDocument(cmd.Context(), doc.ID); err != nil {
		return fmt.Errorf("failed to forget document: %w", err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Forgot %s  %s\n", stats.ShortID(doc.ID), doc.Title); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show reading stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsDoc, "doc", "", "document id or id prefix")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N reading sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow <= 0 {
		return fmt.Errorf("--curve-window must be > 0")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	cfg := model.StatsConfig{
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}
	if statsDoc != "" {
		doc, err := st.FindDocument(cmd.Context(), statsDoc)
		if err != nil {
			return fmt.Errorf("failed to find document %q: %w", statsDoc, err)
		}
		cfg.DocumentID = doc.ID
	}

	report, err := stats.BuildReport(cmd.Context(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, report.Readings); err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}
	if len(report.Readings) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderTrend(out, report.Readings, cfg.CurveWindow, 0); err != nil {
		return fmt.Errorf("failed to render trend: %w", err)
	}
	if len(report.Library) > 0 {
		if err := stats.RenderLibrary(out, report.Library); err != nil {
			return fmt.Errorf("failed to render library: %w", err)
		}
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

func openStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
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

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *config.Duration) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = value.Duration
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tuiread configuration
# Uncomment a value to enable it. CLI flags override config values.
# Changes to [reader] apply to a running reader when the file is saved.

[reader]
# wpm = %d                  # Words per minute (%d-%d)
# font-size = %q       # small, medium, large, extra-large
# font-family = %q  # monospace, sans, serif
# theme = %q             # dark, amoled, sepia, light
# zen-timeout = %q          # Hide the footer after inactivity ("0s" disables)
# skip = %d                  # Words to skip with left/right

[assist]
# Any OpenAI-compatible chat completions endpoint enables summarize (s)
# and define (d).
# endpoint = "http://localhost:11434/v1/chat/completions"
# model = "llama3.2"
# api-key-env = "OPENAI_API_KEY"  # Environment variable holding the API key
# timeout = "30s"
`,
		defaultWPM,
		rsvp.MinWPM,
		rsvp.MaxWPM,
		defaultFontSize,
		defaultFontFamily,
		defaultTheme,
		defaultZenTimeout.String(),
		defaultSkip,
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
