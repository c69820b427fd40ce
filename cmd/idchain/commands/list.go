package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func listCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored identifiers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := opts.wire.Identities.ListIdentifiers(cmd.Context())
			if err != nil {
				return err
			}
			out := make([]string, 0, len(ids))
			for _, id := range ids {
				out = append(out, id.String())
			}
			return render(cmd.OutOrStdout(), opts.Format, out, func(w io.Writer) error {
				for _, id := range out {
					fmt.Fprintln(w, id)
				}
				return nil
			})
		},
	}
}
