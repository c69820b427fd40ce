package commands

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"idchain/internal/crypto"
	"idchain/internal/domain"
	"idchain/internal/services/identity"
)

func importCmd(opts *rootOptions) *cobra.Command {
	var expect string
	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Verify an encoded change history and store it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imported, err := importFrom(cmd, opts, args[0], expect)
			if err != nil {
				return err
			}
			if err := opts.wire.Identities.UpdateIdentity(cmd.Context(), imported); err != nil {
				return err
			}
			return renderIdentity(cmd.OutOrStdout(), opts.Format, viewOf(imported, true))
		},
	}
	cmd.Flags().StringVar(&expect, "expect", "", "fail unless the history names this identifier")
	return cmd
}

func verifyCmd(opts *rootOptions) *cobra.Command {
	var expect string
	cmd := &cobra.Command{
		Use:   "verify <file|->",
		Short: "Verify an encoded change history without storing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imported, err := importFrom(cmd, opts, args[0], expect)
			if err != nil {
				return err
			}
			return renderIdentity(cmd.OutOrStdout(), opts.Format, viewOf(imported, false))
		},
	}
	cmd.Flags().StringVar(&expect, "expect", "", "fail unless the history names this identifier")
	return cmd
}

// importFrom reads and verifies the history in path ("-" for stdin).
func importFrom(cmd *cobra.Command, opts *rootOptions, path, expect string) (*identity.Identity, error) {
	var expected *domain.Identifier
	if expect != "" {
		id, err := parseIdentifierArg(expect)
		if err != nil {
			return nil, err
		}
		expected = &id
	}
	data, err := readInput(cmd.InOrStdin(), path)
	if err != nil {
		return nil, usageError("read input", err)
	}
	return opts.wire.Identities.Import(cmd.Context(), expected, data)
}

// readInput returns the raw history in path. Base64 text, as printed by
// export, is decoded first.
func readInput(stdin io.Reader, path string) ([]byte, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	if raw, err := crypto.FromB64(string(b)); err == nil && len(raw) > 0 {
		return raw, nil
	}
	return b, nil
}
