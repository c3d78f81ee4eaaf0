package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"sclint/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default sclint.toml",
	Long: `Write sclint.toml with the default settings into [path] (the current
directory when omitted). A missing directory is created; an existing
sclint.toml is never overwritten.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return err
	}

	if st, err := os.Stat(abs); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", abs, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", abs)
	}

	path, err := project.WriteDefault(abs)
	if err != nil {
		return err
	}
	rel := path
	if wd, err := os.Getwd(); err == nil {
		if r, err2 := filepath.Rel(wd, path); err2 == nil {
			rel = r
		}
	}
	quiet, _ := cmd.Flags().GetBool("quiet")
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", rel)
	}
	return nil
}
