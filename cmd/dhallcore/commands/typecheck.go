package commands

import (
	"github.com/spf13/cobra"

	"github.com/smasher164/dhall/ast"
	"github.com/smasher164/dhall/types"
)

func newTypecheckCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "typecheck FILE...",
		Short: "Print the type of each expression",
		Example: `  # Type-check two files
  dhallcore typecheck a.yaml b.yaml

  # Print types as JSON trees
  dhallcore typecheck -o json a.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			checker := types.NewChecker(o.log)
			results, err := o.eachFile(cmd.Context(), args, func(path string, e ast.Expr) (ast.Expr, error) {
				o.log.Debug().Str("file", path).Msg("type-checking")
				return checker.TypeOf(e)
			})
			if err != nil {
				return err
			}
			return o.print(cmd.OutOrStdout(), results)
		},
	}
}
