package main

import (
	"errors"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/CageChen/cspellio/internal/config"
	mfs "github.com/CageChen/cspellio/internal/fs"
)

// app carries the flag values and the backend built from them.
type app struct {
	configPath string
	backend    string
	root       string
	gitRef     string
	logLevel   string
	jsonMode   bool
	noColor    bool

	cfg *config.Config
	log *slog.Logger
	io  mfs.CSpellIO
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "cspellio",
		Short: "Read, write and stat text resources through pluggable backends",
		Long: `cspellio reads, writes and stats text resources through a pluggable
backend: the native filesystem, a git ref, an in-memory filesystem, S3
compatible object storage, HTTP, or a scheme router combining them.

Examples:
  # Print a file
  cspellio cat README.md

  # Compare two snapshots, oldest first
  cspellio compare words.txt words.txt.gz

  # Read a file as of a git ref
  cspellio --backend git --git-ref v1.0.0 cat docs/guide.md

  # Serve the HTTP API
  cspellio serve --port 9090`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to config.yaml")
	flags.StringVarP(&a.backend, "backend", "b", "", "Backend: native, web, git, memory, object, http or router")
	flags.StringVarP(&a.root, "root", "r", "", "Directory relative paths resolve against")
	flags.StringVar(&a.gitRef, "git-ref", "", "Git ref read by the git backend")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.BoolVar(&a.jsonMode, "json", false, "Output in JSON format")
	flags.BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(
		newCatCmd(a),
		newStatCmd(a),
		newCompareCmd(a),
		newURLCmd(a),
		newWriteCmd(a),
		newGzipCmd(a),
		newServeCmd(a),
	)
	return cmd
}

// setup loads the config file, applies explicitly set flags over it and
// builds the backend. Priority: default < config file < flag.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.noColor {
		color.NoColor = true
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend = a.backend
	}
	if flags.Changed("root") {
		cfg.Root = a.root
	}
	if flags.Changed("git-ref") {
		cfg.GitRef = a.gitRef
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.log = cfg.NewLogger(cmd.ErrOrStderr())
	a.io, err = cfg.NewBackend(a.log)
	return err
}

// exitCode distinguishes unsupported operations from other failures.
func exitCode(err error) int {
	switch {
	case errors.Is(err, mfs.ErrNotImplemented):
		return 3
	case errors.Is(err, mfs.ErrNotFound):
		return 2
	default:
		return 1
	}
}
