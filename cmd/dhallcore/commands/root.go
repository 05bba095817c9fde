package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/smasher164/dhall/ast"
	"github.com/smasher164/dhall/codec"
	"github.com/smasher164/dhall/config"
	"github.com/smasher164/dhall/fsx"
)

type options struct {
	configPath string
	output     string
	jobs       int
	dump       bool

	cfg config.Config
	log zerolog.Logger
}

// Execute runs the root command.
func Execute(ctx context.Context, version string) error {
	return NewRootCommand(version).ExecuteContext(ctx)
}

func NewRootCommand(version string) *cobra.Command {
	o := &options{}
	rootCmd := &cobra.Command{
		Use:   "dhallcore",
		Short: "Type-check, normalize and compare expression trees",
		Long: `dhallcore works on expression trees stored as YAML or JSON documents.

Each file holds one expression. Imports must already be resolved.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&o.configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVarP(&o.output, "output", "o", "", "output format: yaml, json or text")
	rootCmd.PersistentFlags().IntVarP(&o.jobs, "jobs", "j", 0, "files processed in parallel")
	rootCmd.PersistentFlags().BoolVar(&o.dump, "dump", false, "also print the Go structure of each result")

	rootCmd.AddCommand(newTypecheckCommand(o))
	rootCmd.AddCommand(newNormalizeCommand(o))
	rootCmd.AddCommand(newEquivCommand(o))

	return rootCmd
}

func (o *options) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("output") {
		cfg.Output = o.output
	}
	if cmd.Flags().Changed("jobs") {
		cfg.Jobs = o.jobs
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.cfg = cfg
	o.log = cfg.Logger(cmd.ErrOrStderr())
	return nil
}

func readFile(path string) (ast.Expr, error) {
	return codec.ReadFile(fsx.DirFS(filepath.Dir(path)), filepath.Base(path))
}

// eachFile decodes every path and applies f to it, using up to cfg.Jobs
// goroutines. Results are returned in the order of paths.
func (o *options) eachFile(ctx context.Context, paths []string, f func(path string, e ast.Expr) (ast.Expr, error)) ([]ast.Expr, error) {
	out := make([]ast.Expr, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Jobs)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			e, err := readFile(path)
			if err != nil {
				return err
			}
			r, err := f(path, e)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (o *options) print(w io.Writer, results []ast.Expr) error {
	for i, e := range results {
		switch o.cfg.Output {
		case "text":
			fmt.Fprintln(w, e)
		case "json":
			data, err := codec.MarshalJSON(e)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\n", data)
		case "yaml":
			if i > 0 {
				fmt.Fprintln(w, "---")
			}
			if err := codec.Encode(w, e); err != nil {
				return err
			}
		}
		if o.dump {
			fmt.Fprintln(w, ast.Dump(e))
		}
	}
	return nil
}
