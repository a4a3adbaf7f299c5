package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	mfs "github.com/CageChen/cspellio/internal/fs"
)

// statResult is the JSON form of one stat line.
type statResult struct {
	Address string    `json:"address"`
	URL     string    `json:"url,omitempty"`
	Stats   mfs.Stats `json:"stats"`
	Kind    string    `json:"kind"`
}

func (a *app) printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatKind(k mfs.FileKind) string {
	switch k {
	case mfs.KindFile:
		return color.GreenString(k.String())
	case mfs.KindDirectory:
		return color.BlueString(k.String())
	case mfs.KindSymlink:
		return color.CyanString(k.String())
	default:
		return color.YellowString(k.String())
	}
}

func newCatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cat <address>",
		Short: "Print the decoded text of a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.io.ReadFile(cmd.Context(), mfs.Path(args[0]))
			if err != nil {
				return err
			}
			if a.jsonMode {
				return a.printJSON(cmd.OutOrStdout(), struct {
					URL string `json:"url"`
					mfs.TextFileResource
				}{res.URL.String(), res})
			}
			_, err = io.WriteString(cmd.OutOrStdout(), res.Content)
			return err
		},
	}
}

func newStatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stat <address>...",
		Short: "Show size, modification time and kind of resources",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]statResult, 0, len(args))
			for _, arg := range args {
				addr := mfs.Path(arg)
				st, err := a.io.GetStat(cmd.Context(), addr)
				if err != nil {
					return err
				}
				r := statResult{Address: arg, Stats: st, Kind: st.Kind.String()}
				if u, err := a.io.ToURL(addr); err == nil {
					r.URL = u.String()
				}
				results = append(results, r)
			}

			if a.jsonMode {
				return a.printJSON(cmd.OutOrStdout(), results)
			}
			out := cmd.OutOrStdout()
			for _, r := range results {
				fmt.Fprintf(out, "%s\n", color.New(color.Bold).Sprint(r.Address))
				fmt.Fprintf(out, "  Kind:     %s\n", formatKind(r.Stats.Kind))
				fmt.Fprintf(out, "  Size:     %d\n", r.Stats.Size)
				fmt.Fprintf(out, "  Modified: %s\n", r.Stats.ModTime.Format(time.RFC3339Nano))
				if r.Stats.ETag != "" {
					fmt.Fprintf(out, "  ETag:     %s\n", r.Stats.ETag)
				}
			}
			return nil
		},
	}
}

func newCompareCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <left> <right>",
		Short: "Order two resources by their stats, oldest first",
		Long: `Stat both resources and compare the snapshots. The result is -1 when
left is older, 0 when the snapshots are identical and 1 when left is newer.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			left, err := a.io.GetStat(cmd.Context(), mfs.Path(args[0]))
			if err != nil {
				return err
			}
			right, err := a.io.GetStat(cmd.Context(), mfs.Path(args[1]))
			if err != nil {
				return err
			}
			result := a.io.CompareStats(left, right)

			if a.jsonMode {
				return a.printJSON(cmd.OutOrStdout(), map[string]int{"result": result})
			}
			var verdict string
			switch {
			case result < 0:
				verdict = color.YellowString("older than")
			case result > 0:
				verdict = color.GreenString("newer than")
			default:
				verdict = color.CyanString("same as")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s is %s %s\n", result, args[0], verdict, args[1])
			return nil
		},
	}
}

func newURLCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "url <address>",
		Short: "Show the normalized URL, basename and dirname of an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := mfs.Path(args[0])
			u, err := a.io.ToURL(addr)
			if err != nil {
				return err
			}
			base, err := a.io.URIBasename(addr)
			if err != nil {
				return err
			}
			dir, err := a.io.URIDirname(addr)
			if err != nil {
				return err
			}

			if a.jsonMode {
				return a.printJSON(cmd.OutOrStdout(), map[string]string{
					"url":      u.String(),
					"basename": base,
					"dirname":  dir.String(),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "URL:      %s\n", u)
			fmt.Fprintf(out, "Basename: %s\n", base)
			fmt.Fprintf(out, "Dirname:  %s\n", dir)
			return nil
		},
	}
}

func newWriteCmd(a *app) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "write <address>",
		Short: "Write text to a resource from stdin or a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if from == "" || from == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(from)
			}
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			if err := a.io.WriteFile(cmd.Context(), mfs.Path(args[0]), string(data)); err != nil {
				return err
			}
			a.log.Info("wrote resource", "address", args[0], "bytes", len(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&from, "from", "f", "-", "Input file, - for stdin")
	return cmd
}
