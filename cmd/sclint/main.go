package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sclint/internal/logging"
	"sclint/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "sclint",
	Short: "Short-circuit evaluation linter for JavaScript",
	Long: `sclint reports logical expressions whose right operand is a call or a
binary expression: with && and || that operand may never be evaluated.`,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

// errFindings is returned by commands that completed but reported problems;
// main turns it into exit status 1 without printing anything else.
var errFindings = errors.New("findings reported")

// main registers subcommands and persistent flags and executes the root
// command. Any error results in exit status 1.
func main() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	// Добавляем команды
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(astCmd)
	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	addPersistentFlags(rootCmd)

	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		if !errors.Is(err, errFindings) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	cmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	cmd.PersistentFlags().Bool("timings", false, "show timing information")
	cmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics per file")
	cmd.PersistentFlags().Bool("debug", false, "verbose logging to stderr")
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	debug, err := cmd.Flags().GetBool("debug")
	if err != nil {
		return fmt.Errorf("failed to get debug flag: %w", err)
	}
	if _, err := logging.Init(debug); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	return nil
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
