package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sclint/internal/diag"
	"sclint/internal/diagfmt"
	"sclint/internal/driver"
	"sclint/internal/logging"
	"sclint/internal/project"
	"sclint/internal/version"
)

var lintCmd = &cobra.Command{
	Use:   "lint [flags] <file|directory|->...",
	Short: "Report short-circuit operands that may be skipped",
	Long: `Lint JavaScript files, or every .js/.mjs/.cjs/.jsx file under a directory.
"-" reads a single document from stdin. Defaults come from the nearest
sclint.toml; flags override it.`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runLint,
}

func init() {
	addLintFlags(lintCmd)
}

// addLintFlags registers the flags of the lint command used by resolveLintSettings.
func addLintFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "pretty", "output format (pretty|short|json|sarif|msgpack)")
	cmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	cmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	cmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	cmd.Flags().String("ui", "auto", "progress UI for directories (auto|on|off)")
	cmd.Flags().Bool("fail-on-warning", true, "exit with status 1 when warnings are reported")
	cmd.Flags().String("config", "", "path to sclint.toml (default: search upward from the first target)")
	addProfileFlags(cmd)
}

// lintSettings is the merged view of defaults, sclint.toml and flags.
type lintSettings struct {
	format         string
	color          bool
	pathMode       diagfmt.PathMode
	quiet          bool
	timings        bool
	withNotes      bool
	failOnWarning  bool
	ui             uiMode
	jobs           int
	maxDiagnostics int
	extensions     []string
	exclude        []string
	configPath     string
}

var validFormats = []string{"pretty", "short", "json", "sarif", "msgpack"}

// loadProjectConfig returns the explicit --config file, or the nearest
// sclint.toml above the first target, or the defaults.
func loadProjectConfig(configFlag string, targets []string) (project.Config, string, error) {
	if configFlag != "" {
		m, err := project.LoadFile(configFlag)
		if err != nil {
			return project.Config{}, "", err
		}
		return m.Config, m.Path, nil
	}
	start := "."
	if len(targets) > 0 && targets[0] != "-" {
		start = targets[0]
	}
	m, err := project.Load(start)
	if errors.Is(err, project.ErrNoConfig) {
		return project.Default(), "", nil
	}
	if err != nil {
		return project.Config{}, "", err
	}
	return m.Config, m.Path, nil
}

// resolveLintSettings applies explicitly set flags on top of cfg.
func resolveLintSettings(cmd *cobra.Command, cfg project.Config, configPath string) (lintSettings, error) {
	flags := cmd.Flags()
	s := lintSettings{
		format:         cfg.Output.Format,
		jobs:           cfg.Lint.Jobs,
		maxDiagnostics: cfg.Lint.MaxDiagnostics,
		extensions:     cfg.Lint.Extensions,
		exclude:        cfg.Lint.Exclude,
		configPath:     configPath,
	}

	var err error
	if flags.Changed("format") {
		if s.format, err = flags.GetString("format"); err != nil {
			return s, fmt.Errorf("failed to get format flag: %w", err)
		}
	}
	s.format = strings.ToLower(strings.TrimSpace(s.format))
	if !slices.Contains(validFormats, s.format) {
		return s, fmt.Errorf("unknown format %q (expected %s)", s.format, strings.Join(validFormats, "|"))
	}

	if flags.Changed("jobs") {
		if s.jobs, err = flags.GetInt("jobs"); err != nil {
			return s, fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}
	if s.jobs < 0 {
		return s, fmt.Errorf("--jobs must be >= 0, got %d", s.jobs)
	}
	if flags.Changed("max-diagnostics") {
		if s.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
			return s, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
		}
	}

	colorMode := cfg.Output.Color
	if flags.Changed("color") {
		if colorMode, err = flags.GetString("color"); err != nil {
			return s, fmt.Errorf("failed to get color flag: %w", err)
		}
	}
	if s.color, err = resolveColor(colorMode, isTerminal(os.Stdout)); err != nil {
		return s, err
	}

	if s.pathMode, err = diagfmt.ParsePathMode(cfg.Output.PathMode); err != nil {
		return s, err
	}
	fullPath, err := flags.GetBool("fullpath")
	if err != nil {
		return s, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	if fullPath {
		s.pathMode = diagfmt.PathModeAbsolute
	}

	if s.withNotes, err = flags.GetBool("with-notes"); err != nil {
		return s, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if s.failOnWarning, err = flags.GetBool("fail-on-warning"); err != nil {
		return s, fmt.Errorf("failed to get fail-on-warning flag: %w", err)
	}
	if s.quiet, err = flags.GetBool("quiet"); err != nil {
		return s, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if s.timings, err = flags.GetBool("timings"); err != nil {
		return s, fmt.Errorf("failed to get timings flag: %w", err)
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return s, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if s.ui, err = readUIMode(uiValue); err != nil {
		return s, err
	}
	return s, nil
}

// resolveColor maps auto|on|off to a decision; auto follows the terminal
// and NO_COLOR.
func resolveColor(mode string, tty bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		return tty && !color.NoColor, nil
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid color mode %q (expected auto|on|off)", mode)
	}
}

// runLint executes the "lint" command. It exits with status 1 when warnings
// were reported and --fail-on-warning is set, or when a file could not be read.
func runLint(cmd *cobra.Command, args []string) error {
	configFlag, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, configPath, err := loadProjectConfig(configFlag, args)
	if err != nil {
		return err
	}
	settings, err := resolveLintSettings(cmd, cfg, configPath)
	if err != nil {
		return err
	}
	if configPath != "" {
		logging.L().Debugw("using config", "path", configPath)
	}

	cleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := driver.Options{
		MaxDiagnostics: settings.maxDiagnostics,
		Jobs:           settings.jobs,
		WithNotes:      settings.withNotes,
		Extensions:     settings.extensions,
		Exclude:        settings.exclude,
		Logger:         logging.L(),
	}

	var res *driver.Result
	switch {
	case slices.Contains(args, "-"):
		if len(args) != 1 {
			return fmt.Errorf("\"-\" cannot be combined with other targets")
		}
		content, readErr := io.ReadAll(cmd.InOrStdin())
		if readErr != nil {
			return fmt.Errorf("failed to read stdin: %w", readErr)
		}
		res, err = driver.LintSource(cmd.Context(), "<stdin>", content, opts)
	case settings.format == "pretty" && shouldUseTUI(settings.ui):
		files, listErr := driver.ListFiles(args, opts.Extensions, opts.Exclude)
		if listErr != nil {
			return listErr
		}
		res, err = runLintWithUI(cmd.Context(), "Linting", files, args, opts)
	default:
		res, err = driver.LintPaths(cmd.Context(), args, opts)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := writeReport(out, res, settings); err != nil {
		return err
	}
	if !settings.quiet && settings.format == "pretty" {
		writeSummary(cmd.ErrOrStderr(), res)
	}
	if settings.timings {
		fmt.Fprint(cmd.ErrOrStderr(), res.Timer.Summary())
		fmt.Fprint(cmd.ErrOrStderr(), res.FileTimings().Summary("per-file"))
	}

	bag := res.Bag()
	if bag.HasErrors() || (settings.failOnWarning && bag.HasWarnings()) {
		return errFindings
	}
	return nil
}

// writeReport renders the merged diagnostics of res in the selected format.
func writeReport(w io.Writer, res *driver.Result, s lintSettings) error {
	bag := res.Bag()
	fs := res.FileSet
	switch s.format {
	case "pretty":
		diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
			Color:     s.color,
			Context:   0,
			PathMode:  s.pathMode,
			ShowNotes: s.withNotes,
		})
		return nil
	case "short":
		text := diag.FormatShortDiagnostics(bag.Items(), fs, s.withNotes)
		if text == "" {
			return nil
		}
		_, err := fmt.Fprintln(w, text)
		return err
	case "json":
		return diagfmt.JSON(w, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         s.pathMode,
			IncludeNotes:     s.withNotes,
		})
	case "sarif":
		return diagfmt.Sarif(w, bag, fs, diagfmt.SarifRunMeta{
			ToolName:       "sclint",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
		})
	case "msgpack":
		return diagfmt.Msgpack(w, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         s.pathMode,
			IncludeNotes:     s.withNotes,
		})
	default:
		return fmt.Errorf("unknown format %q", s.format)
	}
}

func writeSummary(w io.Writer, res *driver.Result) {
	files := len(res.Files)
	findings := res.FindingCount()
	fmt.Fprintf(w, "%d %s in %d %s", findings, plural(findings, "finding", "findings"), files, plural(files, "file", "files"))
	if skipped := len(res.ParseFailures()); skipped > 0 {
		fmt.Fprintf(w, ", %d skipped (syntax errors, see --debug)", skipped)
	}
	fmt.Fprintln(w)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
