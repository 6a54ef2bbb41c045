package generate

import (
	"errors"
	"strings"
)

// Supported model keys.
const (
	ModelSeedream   = "seedream"
	ModelNanoBanana = "nano-banana"
)

var (
	// ErrUnknownModel indicates the caller asked for a model key outside the
	// registry. Caller input problem.
	ErrUnknownModel = errors.New("generate: unknown model")
	// ErrMissingVersion indicates the resolved model has no provider version
	// identifier configured. Server configuration problem.
	ErrMissingVersion = errors.New("generate: model version is not configured")
	// ErrMissingPrompt indicates the prompt was absent or blank after trimming.
	ErrMissingPrompt = errors.New("generate: prompt is required")
)

// Model binds a public model key to the provider-side version identifier used
// on the predictions API.
type Model struct {
	Key     string
	Version string
}

// Registry resolves case-insensitive model keys to configured models. Every
// request must resolve to a known model with a non-empty version before any
// network call is made.
type Registry struct {
	models     map[string]Model
	defaultKey string
}

// NewRegistry builds a registry from the configured models. The default key is
// used when the caller omits one; it is normalized but not required to be
// registered (resolution will fail with ErrUnknownModel in that case).
func NewRegistry(defaultKey string, models ...Model) *Registry {
	r := &Registry{
		models:     make(map[string]Model, len(models)),
		defaultKey: normalizeKey(defaultKey),
	}
	for _, m := range models {
		r.models[normalizeKey(m.Key)] = m
	}
	return r
}

// Resolve maps a raw model key (or the default, when blank) to a registered
// model, validating that a provider version is configured for it.
func (r *Registry) Resolve(key string) (Model, error) {
	k := normalizeKey(key)
	if k == "" {
		k = r.defaultKey
	}
	m, ok := r.models[k]
	if !ok {
		return Model{}, ErrUnknownModel
	}
	if strings.TrimSpace(m.Version) == "" {
		return Model{}, ErrMissingVersion
	}
	return m, nil
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
