package commands

import (
	"fmt"
	"strings"

	"idchain/internal/domain"
)

// parseAttrs turns repeated k=v flags into Attributes. No flags yields nil.
func parseAttrs(pairs []string) (domain.Attributes, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	attrs := make(domain.Attributes, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, usageError(fmt.Sprintf("attribute %q is not key=value", p), nil)
		}
		if _, dup := attrs[k]; dup {
			return nil, usageError(fmt.Sprintf("attribute %q given twice", k), nil)
		}
		attrs[k] = v
	}
	return attrs, nil
}

func parseIdentifierArg(s string) (domain.Identifier, error) {
	id, err := domain.ParseIdentifier(s)
	if err != nil {
		return domain.Identifier{}, usageError("identifier", err)
	}
	return id, nil
}
