package lyrics

import (
	"context"
	"errors"

	"github.com/nmartins/melodysync/internal/errs"
	"github.com/nmartins/melodysync/internal/logger"
)

// ErrNotFound indicates no provider in the effective order returned usable lyrics.
var ErrNotFound = errs.New(errs.KindLyrics, "no provider returned usable lyrics")

// Resolver tries an ordered set of providers until one returns valid lyrics.
type Resolver struct {
	providers map[string]Provider
	order     []string // provider names in configured primary-then-fallback order
	minLength int
}

// NewResolver builds a Resolver from providers keyed by name and the
// configured primary/fallback order. Names in order without a matching
// provider are dropped.
func NewResolver(providers []Provider, primary string, fallbacks []string, minLength int) *Resolver {
	byName := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}

	return &Resolver{
		providers: byName,
		order:     effectiveOrder(primary, fallbacks),
		minLength: minLength,
	}
}

// effectiveOrder moves primary to the front of fallbacks without duplicating it.
func effectiveOrder(primary string, fallbacks []string) []string {
	order := make([]string, 0, len(fallbacks)+1)

	if primary != "" {
		order = append(order, primary)
	}

	for _, name := range fallbacks {
		if name == primary {
			continue
		}

		order = append(order, name)
	}

	return order
}

// Resolve searches providers in effective order, returning the first
// validated result. overridePrimary, if non-empty, moves that source to the
// front of the order for this call only, without duplicating it.
func (r *Resolver) Resolve(ctx context.Context, artist, title, album, overridePrimary string) (*Result, error) {
	order := r.order
	if overridePrimary != "" {
		order = effectiveOrder(overridePrimary, r.order)
	}

	for _, name := range order {
		provider, ok := r.providers[name]
		if !ok || !provider.Available() {
			continue
		}

		result, err := r.searchOne(ctx, provider, artist, title, album)
		if err != nil {
			logger.Debugf(ctx, "lyrics: provider %s failed: %v", name, err)

			continue
		}

		if result != nil {
			return result, nil
		}
	}

	return nil, ErrNotFound
}

func (r *Resolver) searchOne(ctx context.Context, provider Provider, artist, title, album string) (*Result, error) {
	plain, err := provider.SearchLyrics(ctx, artist, title, album)
	if err != nil {
		return nil, err
	}

	if plain == "" {
		return nil, nil //nolint:nilnil // absence of a match is not an error.
	}

	cleaned := CleanLyrics(plain)

	if err = Validate(cleaned, r.minLength); err != nil {
		if errors.Is(err, ErrTooShort) || errors.Is(err, ErrNoLyricsPhrase) || errors.Is(err, ErrNotEnoughText) {
			return nil, nil //nolint:nilnil // invalid content is not an error, just a miss.
		}

		return nil, err
	}

	confidence := ConfidenceScore(cleaned, title, r.minLength, HasStructureMarker(plain))

	synced := ""

	if syncedProvider, ok := provider.(SyncedProvider); ok {
		synced, err = syncedProvider.SearchSynced(ctx, artist, title)
		if err != nil {
			logger.Debugf(ctx, "lyrics: provider %s synced search failed: %v", provider.Name(), err)

			synced = ""
		}
	}

	return &Result{Plain: cleaned, Synced: synced, Source: provider.Name(), Confidence: confidence}, nil
}
