package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/moffa90/go-dsmc/dsmc"
	"github.com/moffa90/go-dsmc/nand"
	"github.com/moffa90/go-dsmc/profile"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

type globalFlags struct {
	safe      bool
	port      int32
	config    string
	profile   string
	simulate  bool
	verbose   bool
	logFormat string
	progress  bool
}

// app holds the state shared by all subcommands.
type app struct {
	flags  globalFlags
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger

	// simulator builds the device object used with --simulate
	simulator func(g nand.Geometry) dsmc.Object
	// openLibrary loads the vendor library
	openLibrary func(name string) (dsmc.Object, error)
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout: stdout,
		stderr: stderr,
		simulator: func(g nand.Geometry) dsmc.Object {
			return dsmc.NewSimulator(dsmc.WithSectors(g.BlockSize, g.TotalSectors))
		},
		openLibrary: dsmc.OpenLibrary,
	}
}

// usageError marks errors caused by the command line itself.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...interface{}) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dsmcflash",
		Short:         "Read and write NAND flash through the DSMC programmer",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setupLogger()
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	pf := root.PersistentFlags()
	pf.BoolVarP(&a.flags.safe, "safe", "s", false, "safe transfer mode (verification of each read/write transaction)")
	pf.Int32Var(&a.flags.port, "port", 0, "programmer port")
	pf.StringVar(&a.flags.config, "config", "", "device profile file (YAML)")
	pf.StringVar(&a.flags.profile, "profile", "", "profile name in the --config file")
	pf.BoolVar(&a.flags.simulate, "simulate", false, "use an in-memory simulated device instead of the vendor library")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "debug logging, including every native call")
	pf.StringVar(&a.flags.logFormat, "log-format", "text", "log format: text or json")
	pf.BoolVar(&a.flags.progress, "progress", false, "show the progress bar even when stderr is not a terminal")

	root.AddCommand(a.readCmd(), a.writeCmd(), a.digestCmd())
	return root
}

// execute runs the command line and returns the process exit code.
func (a *app) execute(ctx context.Context, args []string) int {
	root := a.rootCmd()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var ue *usageError
	if errors.As(err, &ue) || nand.IsUsageError(err) {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return exitUsage
	}
	fmt.Fprintf(a.stderr, "[ERR] %v\n", err)
	return exitFailure
}

func (a *app) setupLogger() error {
	level := slog.LevelWarn
	if a.flags.verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	switch a.flags.logFormat {
	case "text":
		a.logger = slog.New(slog.NewTextHandler(a.stderr, opts))
	case "json":
		a.logger = slog.New(slog.NewJSONHandler(a.stderr, opts))
	default:
		return usagef("invalid --log-format %q (want text or json)", a.flags.logFormat)
	}
	return nil
}

// resolveProfile returns the selected device profile with command line
// overrides applied.
func (a *app) resolveProfile(cmd *cobra.Command) (*profile.Profile, error) {
	p := profile.Builtin()
	if a.flags.config != "" {
		f, err := profile.Load(a.flags.config)
		if err != nil {
			return nil, err
		}
		if p, err = f.Lookup(a.flags.profile); err != nil {
			return nil, &usageError{err: err}
		}
	} else if a.flags.profile != "" && a.flags.profile != profile.BuiltinName {
		return nil, usagef("--profile %q requires --config", a.flags.profile)
	}

	resolved := *p
	flags := cmd.Flags()
	if flags.Changed("port") {
		resolved.Port = a.flags.port
	}
	if flags.Changed("safe") {
		resolved.Safe = a.flags.safe
	}
	if err := resolved.Validate(); err != nil {
		return nil, &usageError{err: err}
	}

	a.logger.Debug("profile selected",
		"profile", resolved.Name,
		"library", resolved.Library,
		"port", resolved.Port,
		"safe", resolved.Safe,
	)
	return &resolved, nil
}

// open returns the device object for the profile.
func (a *app) open(p *profile.Profile) (dsmc.Object, error) {
	var obj dsmc.Object
	if a.flags.simulate {
		obj = a.simulator(p.NANDGeometry())
	} else {
		var err error
		if obj, err = a.openLibrary(p.Library); err != nil {
			return nil, err
		}
	}
	if a.flags.verbose {
		obj = dsmc.Trace(obj, a.logger)
	}
	return obj, nil
}

// session opens the device and runs fn inside a programming session.
// The device object is released on every path.
func (a *app) session(ctx context.Context, p *profile.Profile, progress nand.ProgressCallback, fn func(context.Context, *nand.Session) error) error {
	obj, err := a.open(p)
	if err != nil {
		return err
	}

	opts := append(p.Options(), nand.WithLogger(a.logger))
	if progress != nil {
		opts = append(opts, nand.WithProgressCallback(progress))
	}

	return nand.Run(ctx, obj, func(ctx context.Context, s *nand.Session) error {
		fmt.Fprintf(a.stdout, "dsmcdll version: %d\n", s.Version())
		return fn(ctx, s)
	}, opts...)
}
