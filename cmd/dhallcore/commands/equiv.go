package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smasher164/dhall/ast"
	"github.com/smasher164/dhall/normalize"
	"github.com/smasher164/dhall/types"
)

var ErrNotEquivalent = errors.New("expressions are not equivalent")

func newEquivCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "equiv A B",
		Short: "Report whether two well-typed expressions are equivalent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			checker := types.NewChecker(o.log)
			exprs, err := o.eachFile(cmd.Context(), args, func(path string, e ast.Expr) (ast.Expr, error) {
				if _, err := checker.TypeOf(e); err != nil {
					return nil, err
				}
				return e, nil
			})
			if err != nil {
				return err
			}
			eq := normalize.Equivalent(exprs[0], exprs[1])
			fmt.Fprintln(cmd.OutOrStdout(), eq)
			if !eq {
				return ErrNotEquivalent
			}
			return nil
		},
	}
}
