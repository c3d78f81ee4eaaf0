package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"sclint/internal/diagfmt"
	"sclint/internal/jsparse"
	"sclint/internal/source"
)

var astCmd = &cobra.Command{
	Use:          "ast [flags] <file|->",
	Short:        "Print the syntax tree the linter sees",
	Long:         `Parse a JavaScript file and print the tree of logical, call and binary expressions the checks run on.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runAST,
}

func init() {
	astCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runAST(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}

	fs := source.NewFileSet()
	var fileID source.FileID
	if args[0] == "-" {
		raw, readErr := io.ReadAll(cmd.InOrStdin())
		if readErr != nil {
			return fmt.Errorf("failed to read stdin: %w", readErr)
		}
		content, flags, normErr := source.Normalize(raw)
		if normErr != nil {
			return fmt.Errorf("<stdin>: %w", normErr)
		}
		fileID = fs.Add("<stdin>", content, flags|source.FileVirtual)
	} else if fileID, err = fs.Load(args[0]); err != nil {
		return fmt.Errorf("failed to load %s: %w", args[0], err)
	}

	file := fs.Get(fileID)
	root, err := jsparse.Parse(cmd.Context(), file.Content)
	if err != nil {
		return fmt.Errorf("%s: %w", file.Path, err)
	}
	text := string(file.Content)
	if format == "json" {
		return diagfmt.FormatASTJSON(cmd.OutOrStdout(), root, text)
	}
	return diagfmt.FormatASTPretty(cmd.OutOrStdout(), root, text)
}
