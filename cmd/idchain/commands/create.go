package commands

import (
	"github.com/spf13/cobra"

	"idchain/internal/domain"
	"idchain/internal/services/identity"
)

func createCmd(opts *rootOptions) *cobra.Command {
	var (
		attrs []string
		keyID string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create and store a new identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parseAttrs(attrs)
			if err != nil {
				return err
			}
			var created *identity.Identity
			if keyID != "" {
				created, err = opts.wire.Identities.CreateIdentityWithExistingKey(cmd.Context(), domain.KeyID(keyID))
			} else {
				created, err = opts.wire.Identities.CreateIdentityWithAttributes(cmd.Context(), a)
			}
			if err != nil {
				return err
			}
			return renderIdentity(cmd.OutOrStdout(), opts.Format, viewOf(created, true))
		},
	}
	cmd.Flags().StringArrayVar(&attrs, "attr", nil, "attribute key=value (repeatable)")
	cmd.Flags().StringVar(&keyID, "key-id", "", "use this existing vault key as the root key")
	cmd.MarkFlagsMutuallyExclusive("attr", "key-id")
	return cmd
}
