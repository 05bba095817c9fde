package commands

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/smasher164/dhall/ast"
	"github.com/smasher164/dhall/codec"
	"github.com/smasher164/dhall/fsx"
	"github.com/smasher164/dhall/normalize"
	"github.com/smasher164/dhall/types"
)

func newNormalizeCommand(o *options) *cobra.Command {
	var writeDir string
	cmd := &cobra.Command{
		Use:   "normalize FILE...",
		Short: "Print the normal form of each well-typed expression",
		Example: `  # Normalize a file
  dhallcore normalize a.yaml

  # Also store the normal forms as trees under out/
  dhallcore normalize -w out a.yaml b.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			checker := types.NewChecker(o.log)
			results, err := o.eachFile(cmd.Context(), args, func(path string, e ast.Expr) (ast.Expr, error) {
				if _, err := checker.TypeOf(e); err != nil {
					return nil, err
				}
				o.log.Debug().Str("file", path).Msg("normalizing")
				return normalize.Normalize(e), nil
			})
			if err != nil {
				return err
			}
			if writeDir != "" {
				if err := writeResults(o, writeDir, args, results); err != nil {
					return err
				}
			}
			return o.print(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().StringVarP(&writeDir, "write-dir", "w", "", "also write each normal form to this directory under the input's file name")
	return cmd
}

func writeResults(o *options, dir string, paths []string, results []ast.Expr) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	out := fsx.DirFS(dir)
	for i, path := range paths {
		name := filepath.Base(path)
		if err := codec.WriteFile(out, name, results[i]); err != nil {
			return err
		}
		o.log.Info().Str("file", path).Str("out", filepath.Join(dir, name)).Msg("wrote normal form")
	}
	return nil
}
