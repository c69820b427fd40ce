package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"idchain/internal/crypto"
	"idchain/internal/util/fsutil"
)

func exportCmd(opts *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export <identifier>",
		Short: "Write the encoded change history of a stored identity",
		Long: "Write the encoded change history of a stored identity.\n\n" +
			"With --out the raw bytes are written to the file, otherwise they are\n" +
			"printed to stdout as base64.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIdentifierArg(args[0])
			if err != nil {
				return err
			}
			got, err := opts.wire.Identities.GetIdentity(cmd.Context(), id)
			if err != nil {
				return err
			}
			b, err := got.Export()
			if err != nil {
				return err
			}
			if out != "" {
				return fsutil.WriteFile(out, b, 0o644)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), crypto.B64(b))
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write raw bytes to this file")
	return cmd
}
