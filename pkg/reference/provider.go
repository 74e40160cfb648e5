// Package reference loads dropdown reference data (vendors, core
// business lines, contracts, payment terms) from the backend, with an
// injected TTL cache in front of every fetch.
package reference

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/backend"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/cache"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/cascade"
)

const defaultTTL = 15 * time.Minute

// Provider builds cascade chains whose fetch functions hit the backend
// through the cache.
type Provider struct {
	client *backend.Client
	cache  cache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewProvider(client *backend.Client, cacheStore cache.Cache, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}

	return &Provider{
		client: client,
		cache:  cacheStore,
		ttl:    defaultTTL,
		logger: logger.With("module", "reference_provider"),
	}
}

// WithTTL overrides the cache TTL for every subsequent fetch.
func (p *Provider) WithTTL(ttl time.Duration) *Provider {
	p.ttl = ttl

	return p
}

// VendorChain is the canonical dependent chain of the basic information
// step: vendor → core business → sub core business → contract.
func (p *Provider) VendorChain() []cascade.Link {
	return []cascade.Link{
		{Field: "vendor", Fetch: p.fetcher("/reference/vendors", "")},
		{Field: "core_business", Fetch: p.fetcher("/reference/core-business", "vendorId")},
		{Field: "sub_core_business", Fetch: p.fetcher("/reference/sub-core-business", "coreBusinessId")},
		{Field: "contract", Fetch: p.fetcher("/reference/contracts", "subCoreBusinessId")},
	}
}

// TermsOfPayment loads the flat term-of-payment list.
func (p *Provider) TermsOfPayment(ctx context.Context) ([]cascade.Option, error) {
	return p.fetcher("/reference/terms-of-payment", "")(ctx, "")
}

// Invalidate drops the cached options for one endpoint/parent pair.
func (p *Provider) Invalidate(ctx context.Context, path, parentValue string) error {
	return p.cache.Delete(ctx, cacheKey(path, parentValue))
}

func (p *Provider) fetcher(path, parentParam string) cascade.FetchFunc {
	return func(ctx context.Context, parentValue string) ([]cascade.Option, error) {
		key := cacheKey(path, parentValue)

		if raw, ok, err := p.cache.Get(ctx, key); err == nil && ok {
			var options []cascade.Option
			if err := json.Unmarshal(raw, &options); err == nil {
				return options, nil
			}

			// A corrupt entry falls through to a fresh fetch.
			p.logger.WarnContext(ctx, "Dropping undecodable cache entry", "key", key)
		}

		query := url.Values{}
		if parentParam != "" && parentValue != "" {
			query.Set(parentParam, parentValue)
		}

		data, err := p.client.Get(ctx, path, query)
		if err != nil {
			return nil, err
		}

		var options []cascade.Option
		if err := json.Unmarshal(data, &options); err != nil {
			return nil, fmt.Errorf("decode options for %s: %w", path, err)
		}

		if err := p.cache.Set(ctx, key, data, p.ttl); err != nil {
			p.logger.WarnContext(ctx, "Failed to cache reference data", "key", key, "error", err)
		}

		return options, nil
	}
}

func cacheKey(path, parentValue string) string {
	return "reference:" + path + ":" + parentValue
}
