package identity

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"idchain/internal/domain"
)

const tracerName = "idchain/internal/services/identity"

// Creation creates, imports and persists identities. It wires Keys to an
// IdentitiesRepository and is safe for concurrent use as long as both are.
type Creation struct {
	repo   domain.IdentitiesRepository
	keys   *Keys
	log    *slog.Logger
	tracer trace.Tracer
}

// CreationOption configures Creation.
type CreationOption func(*Creation)

// WithLogger sets the logger; slog.Default is used when l is nil.
func WithLogger(l *slog.Logger) CreationOption {
	return func(c *Creation) {
		if l != nil {
			c.log = l
		}
	}
}

// WithTracerProvider sets the provider spans are recorded with; the global
// provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) CreationOption {
	return func(c *Creation) { c.tracer = tp.Tracer(tracerName) }
}

// NewCreation returns a Creation persisting to repo and minting with keys.
func NewCreation(repo domain.IdentitiesRepository, keys *Keys, opts ...CreationOption) *Creation {
	c := &Creation{
		repo:   repo,
		keys:   keys,
		log:    slog.Default(),
		tracer: otel.Tracer(tracerName),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Keys returns the key minting service.
func (c *Creation) Keys() *Keys { return c.keys }

// CreateIdentity creates and persists an identity with a fresh key.
func (c *Creation) CreateIdentity(ctx context.Context) (*Identity, error) {
	return c.create(ctx, "", nil)
}

// CreateIdentityWithExistingKey creates and persists an identity whose root
// key is the vault key keyID.
func (c *Creation) CreateIdentityWithExistingKey(ctx context.Context, keyID domain.KeyID) (*Identity, error) {
	return c.create(ctx, keyID, nil)
}

// CreateIdentityWithAttributes creates and persists an identity with a fresh
// key and attrs recorded in its root change.
func (c *Creation) CreateIdentityWithAttributes(ctx context.Context, attrs domain.Attributes) (*Identity, error) {
	return c.create(ctx, "", attrs)
}

func (c *Creation) create(ctx context.Context, keyID domain.KeyID, attrs domain.Attributes) (_ *Identity, err error) {
	ctx, span := c.tracer.Start(ctx, "identity.create",
		trace.WithAttributes(attribute.Bool("identity.existing_key", keyID != "")))
	defer func() { finish(span, err) }()

	identity, err := c.keys.CreateInitialKey(ctx, keyID, attrs)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("identity.id", identity.Identifier().String()))

	if err := c.repo.UpdateIdentity(ctx, identity.Identifier(), identity.ChangeHistory()); err != nil {
		return nil, err
	}
	c.log.InfoContext(ctx, "identity created",
		slog.String("identifier", identity.Identifier().String()),
		slog.String("key_type", identity.PublicKey().Type.String()),
	)
	return identity, nil
}

// Import verifies an encoded history and returns the identity it describes,
// bound to this Creation's vault. Nothing is persisted.
func (c *Creation) Import(ctx context.Context, expected *domain.Identifier, data []byte) (_ *Identity, err error) {
	ctx, span := c.tracer.Start(ctx, "identity.import",
		trace.WithAttributes(attribute.Int("identity.encoded_size", len(data))))
	defer func() { finish(span, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	identity, err := Import(expected, data, c.keys.Vault())
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("identity.id", identity.Identifier().String()))
	c.log.DebugContext(ctx, "identity verified",
		slog.String("identifier", identity.Identifier().String()),
		slog.Int("changes", len(identity.history)),
	)
	return identity, nil
}

// UpdateIdentity persists a verified identity. The repository accepts it
// only if it equals or extends what is stored.
func (c *Creation) UpdateIdentity(ctx context.Context, identity *Identity) (err error) {
	ctx, span := c.tracer.Start(ctx, "identity.update",
		trace.WithAttributes(attribute.String("identity.id", identity.Identifier().String())))
	defer func() { finish(span, err) }()

	if err := c.repo.UpdateIdentity(ctx, identity.Identifier(), identity.ChangeHistory()); err != nil {
		return err
	}
	c.log.InfoContext(ctx, "identity stored",
		slog.String("identifier", identity.Identifier().String()),
		slog.Int("changes", len(identity.history)),
	)
	return nil
}

// GetIdentity loads id from the repository and verifies it again. It fails
// with domain.ErrNotFound when the repository has no record.
func (c *Creation) GetIdentity(ctx context.Context, id domain.Identifier) (_ *Identity, err error) {
	ctx, span := c.tracer.Start(ctx, "identity.get",
		trace.WithAttributes(attribute.String("identity.id", id.String())))
	defer func() { finish(span, err) }()

	history, err := c.repo.GetIdentity(ctx, id)
	if err != nil {
		return nil, err
	}
	return ImportFromChangeHistory(&id, history, c.keys.Vault())
}

// RetrieveIdentity is GetIdentity reporting ok=false for unknown identifiers.
func (c *Creation) RetrieveIdentity(ctx context.Context, id domain.Identifier) (_ *Identity, ok bool, err error) {
	ctx, span := c.tracer.Start(ctx, "identity.retrieve",
		trace.WithAttributes(attribute.String("identity.id", id.String())))
	defer func() { finish(span, err) }()

	history, ok, err := c.repo.RetrieveIdentity(ctx, id)
	if err != nil || !ok {
		return nil, false, err
	}
	identity, err := ImportFromChangeHistory(&id, history, c.keys.Vault())
	if err != nil {
		return nil, false, err
	}
	return identity, true, nil
}

// ListIdentifiers returns every identifier held by the repository.
func (c *Creation) ListIdentifiers(ctx context.Context) ([]domain.Identifier, error) {
	return c.repo.ListIdentifiers(ctx)
}

// RotateIdentityKey loads id, appends a change introducing a fresh key and
// persists the result. Nil attrs keep the current attributes.
func (c *Creation) RotateIdentityKey(
	ctx context.Context,
	id domain.Identifier,
	attrs domain.Attributes,
) (_ *Identity, err error) {
	ctx, span := c.tracer.Start(ctx, "identity.rotate",
		trace.WithAttributes(attribute.String("identity.id", id.String())))
	defer func() { finish(span, err) }()

	current, err := c.GetIdentity(ctx, id)
	if err != nil {
		return nil, err
	}
	rotated, err := c.keys.RotateKey(ctx, current, attrs)
	if err != nil {
		return nil, err
	}
	if err := c.repo.UpdateIdentity(ctx, id, rotated.ChangeHistory()); err != nil {
		return nil, err
	}
	c.log.InfoContext(ctx, "identity key rotated",
		slog.String("identifier", id.String()),
		slog.Int("changes", len(rotated.history)),
	)
	return rotated, nil
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
