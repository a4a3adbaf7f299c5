package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/CageChen/cspellio/internal/gzip"
)

func newGzipCmd(a *app) *cobra.Command {
	var (
		dir   string
		level int
	)

	cmd := &cobra.Command{
		Use:   "gzip <glob>...",
		Short: "Compress matching files to <file>.gz",
		Long: `Compress every regular file under --dir whose slash separated relative
path matches one of the globs. "*" stays within a directory, "**" crosses
directories. The compressed copy is written next to the original.

Examples:
  cspellio gzip --dir dicts "**.txt"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			written, err := gzip.Compress(cmd.Context(), dir, args, gzip.Options{Level: level, Logger: a.log})
			for _, f := range written {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.GreenString("compressed"), f)
			}
			if err != nil {
				return err
			}
			if len(written) == 0 {
				a.log.Warn("no files matched", "dir", dir, "globs", args)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory globs are relative to")
	cmd.Flags().IntVar(&level, "level", 0, "Compression level 1-9, 0 for best")
	return cmd
}
