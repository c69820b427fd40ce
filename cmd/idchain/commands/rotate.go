package commands

import (
	"github.com/spf13/cobra"
)

func rotateCmd(opts *rootOptions) *cobra.Command {
	var attrs []string
	cmd := &cobra.Command{
		Use:   "rotate <identifier>",
		Short: "Append a change introducing a fresh key",
		Long: "Append a change introducing a fresh key, signed by the current key.\n\n" +
			"Without --attr the current attributes are kept.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIdentifierArg(args[0])
			if err != nil {
				return err
			}
			a, err := parseAttrs(attrs)
			if err != nil {
				return err
			}
			rotated, err := opts.wire.Identities.RotateIdentityKey(cmd.Context(), id, a)
			if err != nil {
				return err
			}
			return renderIdentity(cmd.OutOrStdout(), opts.Format, viewOf(rotated, true))
		},
	}
	cmd.Flags().StringArrayVar(&attrs, "attr", nil, "replace attributes with key=value (repeatable)")
	return cmd
}
