package commands

import (
	"github.com/spf13/cobra"
)

func showCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <identifier>",
		Short: "Verify and print a stored identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIdentifierArg(args[0])
			if err != nil {
				return err
			}
			got, err := opts.wire.Identities.GetIdentity(cmd.Context(), id)
			if err != nil {
				return err
			}
			return renderIdentity(cmd.OutOrStdout(), opts.Format, viewOf(got, true))
		},
	}
}
