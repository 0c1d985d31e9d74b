package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tliron/commonlog"
	"github.com/urfave/cli/v3"

	"github.com/rubiojr/redislua/check"
	"github.com/rubiojr/redislua/compiler"
	"github.com/rubiojr/redislua/diag"
	"github.com/rubiojr/redislua/doc"
	"github.com/rubiojr/redislua/lint"
	"github.com/rubiojr/redislua/server"

	_ "github.com/tliron/commonlog/simple"
)

// Execute runs the redislua CLI with the given version string.
func Execute(version string) {
	if err := newCommand(version).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newCommand(version string) *cli.Command {
	return &cli.Command{
		Name:                   "redislua",
		Usage:                  "Check Redis Lua scripts embedded in Go and generate typed builders",
		Version:                version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Lint configuration `FILE` overlaying the bundled rules",
			},
			&cli.BoolFlag{
				Name:  "warnings-as-errors",
				Usage: "Report lint warnings as errors",
			},
			&cli.BoolFlag{
				Name:  "fuse-compound",
				Usage: "Rejoin `..`, `==` and `~=` split by the Go tokenizer",
			},
			&cli.BoolFlag{
				Name:    "no-color",
				Aliases: []string{"C"},
				Usage:   "Disable ANSI color output",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log pipeline progress to stderr",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			verbosity := 0
			if cmd.Bool("verbose") {
				verbosity = 2
			}
			commonlog.Configure(verbosity, nil)
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:      "generate",
				Usage:     "Check embedded scripts and write *_redislua.go files",
				ArgsUsage: "[packages...]",
				Action:    generateAction,
			},
			{
				Name:      "check",
				Usage:     "Check embedded scripts without writing files",
				ArgsUsage: "[packages...]",
				Action:    checkAction,
			},
			{
				Name:      "emit",
				Usage:     "Output the generated Go source for one file",
				ArgsUsage: "<file.go>",
				Action:    emitAction,
			},
			{
				Name:      "doc",
				Usage:     "Show the scripts a file embeds and their builder API",
				ArgsUsage: "<file.go> [symbol]",
				Action:    docAction,
			},
			{
				Name:  "lsp",
				Usage: "Run the language server on stdio",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					comp, err := newCompiler(cmd)
					if err != nil {
						return err
					}
					return server.NewLSP(comp, cmd.Root().Version).Run()
				},
			},
		},
	}
}

// newCompiler builds a compiler from the global flags.
func newCompiler(cmd *cli.Command) (*compiler.Compiler, error) {
	opts := check.Options{WarningsAsErrors: cmd.Bool("warnings-as-errors")}
	if path := cmd.String("config"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		cfg, err := lint.ParseConfig(string(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		opts.Config = cfg
		if err := opts.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return &compiler.Compiler{Check: opts, FuseCompound: cmd.Bool("fuse-compound")}, nil
}

func newPrinter(cmd *cli.Command, w io.Writer) *diag.Printer {
	color := !cmd.Bool("no-color") && diag.UseColor(os.Stderr)
	return diag.NewPrinter(w, color)
}

func patterns(cmd *cli.Command) []string {
	if cmd.NArg() == 0 {
		return []string{"."}
	}
	return cmd.Args().Slice()
}

func compileAll(cmd *cli.Command) ([]*compiler.Result, error) {
	comp, err := newCompiler(cmd)
	if err != nil {
		return nil, err
	}
	var results []*compiler.Result
	for _, pattern := range patterns(cmd) {
		res, err := comp.CompilePackage(pattern)
		if err != nil {
			return nil, err
		}
		results = append(results, res...)
	}
	return results, nil
}

// report prints every diagnostic of results to stderr.
func report(cmd *cli.Command, results []*compiler.Result) bool {
	var all []diag.Diagnostic
	failed := false
	for _, res := range results {
		all = append(all, res.Diagnostics.All()...)
		failed = failed || res.Diagnostics.HasErrors()
	}
	newPrinter(cmd, os.Stderr).PrintAll(all)
	return failed
}

func generateAction(ctx context.Context, cmd *cli.Command) error {
	results, err := compileAll(cmd)
	if err != nil {
		return err
	}
	report(cmd, results)
	return compiler.Generate(results)
}

func checkAction(ctx context.Context, cmd *cli.Command) error {
	results, err := compileAll(cmd)
	if err != nil {
		return err
	}
	if report(cmd, results) {
		return compiler.ErrDiagnostics
	}
	return nil
}

func emitAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 1 {
		return fmt.Errorf("usage: redislua emit <file.go>")
	}
	comp, err := newCompiler(cmd)
	if err != nil {
		return err
	}
	res, err := comp.CompileFile(cmd.Args().First())
	if err != nil {
		return err
	}
	failed := report(cmd, []*compiler.Result{res})
	if res.Generated == nil && !failed {
		return errors.New("no embedded scripts found")
	}
	os.Stdout.Write(res.Generated)
	if failed {
		return compiler.ErrDiagnostics
	}
	return nil
}

func docAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 1 {
		return fmt.Errorf("usage: redislua doc <file.go> [symbol]")
	}
	comp, err := newCompiler(cmd)
	if err != nil {
		return err
	}
	fd, err := doc.ExtractFile(comp, cmd.Args().First())
	if err != nil {
		return err
	}
	if cmd.NArg() < 2 {
		fmt.Print(doc.FormatFile(fd))
		return nil
	}
	symbol := cmd.Args().Get(1)
	docStr, sig, ok := doc.LookupSymbol(fd, symbol)
	if !ok {
		return fmt.Errorf("%s: no script named %s", fd.Path, symbol)
	}
	fmt.Print(doc.FormatSymbol(docStr, sig))
	return nil
}
