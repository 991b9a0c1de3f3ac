package providers

import (
	"context"
	"log/slog"
	"sync"

	"modelgate/internal/catalog"
	"modelgate/internal/core"
)

// FallbackReason states why the resolver substituted the fallback provider
// instead of the requested route.
type FallbackReason string

const (
	FallbackNone               FallbackReason = "none"
	FallbackModelNotFound      FallbackReason = "model_not_found"
	FallbackCredentialNotFound FallbackReason = "credential_not_found"
	FallbackCredentialDisabled FallbackReason = "credential_disabled"
	FallbackConstructionFailed FallbackReason = "construction_failed"
)

// Resolution is the outcome of a model lookup. ProviderModel is the vendor
// model or deployment name to pass to the provider; when a fallback occurred
// it is the original gateway model id, and FallbackReason says why.
type Resolution struct {
	Provider       core.Provider
	ProviderModel  string
	FallbackReason FallbackReason
}

// Resolver maps gateway model ids to constructed providers. Lookups that
// cannot complete degrade to the fallback provider rather than failing the
// request; every degradation is logged with its reason.
type Resolver struct {
	factory     *Factory
	models      catalog.ModelStore
	credentials catalog.CredentialStore
	fallback    core.Provider
	logger      *slog.Logger
	wrap        func(core.Provider) core.Provider

	mu    sync.RWMutex
	cache map[string]core.Provider // keyed by credential id
}

// NewResolver creates a resolver. The fallback provider serves any model id
// the catalog cannot route.
func NewResolver(factory *Factory, models catalog.ModelStore, credentials catalog.CredentialStore, fallback core.Provider, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		factory:     factory,
		models:      models,
		credentials: credentials,
		fallback:    fallback,
		logger:      logger,
		cache:       make(map[string]core.Provider),
	}
}

// InstrumentWith sets a decorator applied to every provider the resolver
// constructs, before it enters the cache. The fallback provider is the
// caller's to wrap. Set before the resolver serves requests.
func (r *Resolver) InstrumentWith(wrap func(core.Provider) core.Provider) {
	r.wrap = wrap
}

// Resolve returns the provider serving the given gateway model id.
func (r *Resolver) Resolve(ctx context.Context, modelID string) core.Provider {
	return r.ResolveWithModel(ctx, modelID).Provider
}

// ResolveWithModel resolves the model id and reports how the resolution went.
// The chain is model lookup, credential lookup, enabled check, construction;
// the first failing step selects the fallback.
func (r *Resolver) ResolveWithModel(ctx context.Context, modelID string) Resolution {
	model, ok := r.models.Model(ctx, modelID)
	if !ok {
		return r.degrade(modelID, FallbackModelNotFound, "model", modelID)
	}

	cred, ok := r.credentials.Credential(ctx, model.CredentialID)
	if !ok {
		return r.degrade(modelID, FallbackCredentialNotFound, "credential", model.CredentialID)
	}
	if !cred.Enabled {
		return r.degrade(modelID, FallbackCredentialDisabled, "credential", cred.ID)
	}

	provider, err := r.provider(ctx, cred)
	if err != nil {
		r.logger.Warn("provider construction failed, using fallback",
			"model", modelID,
			"credential", cred.ID,
			"error", err)
		return Resolution{Provider: r.fallback, ProviderModel: modelID, FallbackReason: FallbackConstructionFailed}
	}

	return Resolution{Provider: provider, ProviderModel: model.ProviderModel, FallbackReason: FallbackNone}
}

func (r *Resolver) degrade(modelID string, reason FallbackReason, key, value string) Resolution {
	r.logger.Warn("model resolution degraded to fallback",
		"model", modelID,
		"reason", string(reason),
		key, value)
	return Resolution{Provider: r.fallback, ProviderModel: modelID, FallbackReason: reason}
}

// provider returns the cached adapter for the credential, constructing it on
// first use. Adapters are immutable after construction, so sharing one across
// goroutines is safe.
func (r *Resolver) provider(ctx context.Context, cred *catalog.Credential) (core.Provider, error) {
	r.mu.RLock()
	p, ok := r.cache[cred.ID]
	r.mu.RUnlock()
	if ok {
		return p, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.cache[cred.ID]; ok {
		return p, nil
	}

	p, err := r.factory.CreateForCredential(ctx, cred)
	if err != nil {
		return nil, err
	}
	if r.wrap != nil {
		p = r.wrap(p)
	}
	r.cache[cred.ID] = p
	return p, nil
}

// Invalidate drops the cached adapter for a credential, forcing the next
// resolution to rebuild it. Call after a credential changes.
func (r *Resolver) Invalidate(credentialID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, credentialID)
}
