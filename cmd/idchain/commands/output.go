package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"idchain/internal/crypto"
	"idchain/internal/services/identity"
)

type changeView struct {
	Hash        string            `json:"hash"                 yaml:"hash"`
	KeyType     string            `json:"key_type"             yaml:"key_type"`
	PublicKey   string            `json:"public_key"           yaml:"public_key"`
	Fingerprint string            `json:"fingerprint"          yaml:"fingerprint"`
	Attributes  map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	CreatedAt   time.Time         `json:"created_at"           yaml:"created_at"`
}

type identityView struct {
	Identifier  string       `json:"identifier"        yaml:"identifier"`
	Fingerprint string       `json:"fingerprint"       yaml:"fingerprint"`
	Stored      bool         `json:"stored"            yaml:"stored"`
	Changes     []changeView `json:"changes,omitempty" yaml:"changes,omitempty"`
}

func viewOf(id *identity.Identity, stored bool) identityView {
	v := identityView{
		Identifier:  id.Identifier().String(),
		Fingerprint: crypto.Fingerprint(id.PublicKey().Data),
		Stored:      stored,
	}
	for _, c := range id.Changes() {
		v.Changes = append(v.Changes, changeView{
			Hash:        c.Hash.String(),
			KeyType:     c.PublicKey.Type.String(),
			PublicKey:   crypto.B64(c.PublicKey.Data),
			Fingerprint: crypto.Fingerprint(c.PublicKey.Data),
			Attributes:  c.Attributes,
			CreatedAt:   c.CreatedAt.UTC(),
		})
	}
	return v
}

// render writes v as JSON or YAML, or calls text for the text format.
func render(w io.Writer, format string, v any, text func(io.Writer) error) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(w)
	}
}

func renderIdentity(w io.Writer, format string, v identityView) error {
	return render(w, format, v, func(w io.Writer) error {
		fmt.Fprintf(w, "Identifier:  %s\n", v.Identifier)
		fmt.Fprintf(w, "Fingerprint: %s\n", v.Fingerprint)
		fmt.Fprintf(w, "Changes:     %d\n", len(v.Changes))
		for i, c := range v.Changes {
			fmt.Fprintf(w, "  [%d] %s %s %s %s\n",
				i, c.Hash, c.KeyType, c.Fingerprint, c.CreatedAt.Format(time.RFC3339))
			for _, k := range slices.Sorted(maps.Keys(c.Attributes)) {
				fmt.Fprintf(w, "      %s=%s\n", k, c.Attributes[k])
			}
		}
		return nil
	})
}
