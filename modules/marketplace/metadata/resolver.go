package metadata

import (
	"context"
	"fmt"
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/openmarket-network/market-indexer/modules/marketplace/datagateway"
	"github.com/openmarket-network/market-indexer/modules/marketplace/entity"
	"github.com/openmarket-network/market-indexer/pkg/httpclient"
	"github.com/valyala/fasthttp"
)

// HTTPResolver resolves token metadata from an external lookup service.
type HTTPResolver struct {
	client *httpclient.Client
}

var _ datagateway.MetadataResolver = (*HTTPResolver)(nil)

func NewHTTPResolver(baseURL string, debug bool) (*HTTPResolver, error) {
	client, err := httpclient.New(baseURL, httpclient.Config{Debug: debug})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create http client")
	}
	return &HTTPResolver{client: client}, nil
}

func (r *HTTPResolver) ResolveMetadata(ctx context.Context, contract common.Address, tokenID *big.Int) (entity.TokenMetadata, error) {
	resp, err := r.client.Get(ctx, fmt.Sprintf("/metadata/%s/%s", contract.Hex(), tokenID.String()), httpclient.RequestOptions{})
	if err != nil {
		return entity.TokenMetadata{}, errors.Wrap(err, "failed to fetch metadata")
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return entity.TokenMetadata{}, errors.Errorf("metadata service returned status %d", resp.StatusCode())
	}
	var metadata entity.TokenMetadata
	if err := resp.UnmarshalBody(&metadata); err != nil {
		return entity.TokenMetadata{}, errors.Wrap(err, "failed to unmarshal metadata")
	}
	return metadata, nil
}

// StaticResolver serves metadata from a fixed map. Used in memory mode and
// tests, where no external lookup service exists.
type StaticResolver struct {
	entries map[string]entity.TokenMetadata
}

var _ datagateway.MetadataResolver = (*StaticResolver)(nil)

func NewStaticResolver() *StaticResolver {
	return &StaticResolver{entries: make(map[string]entity.TokenMetadata)}
}

func (r *StaticResolver) Put(contract common.Address, tokenID *big.Int, metadata entity.TokenMetadata) {
	r.entries[entryKey(contract, tokenID)] = metadata
}

func (r *StaticResolver) ResolveMetadata(ctx context.Context, contract common.Address, tokenID *big.Int) (entity.TokenMetadata, error) {
	metadata, ok := r.entries[entryKey(contract, tokenID)]
	if !ok {
		return entity.TokenMetadata{}, errors.Errorf("no metadata for %s", entryKey(contract, tokenID))
	}
	return metadata, nil
}

func entryKey(contract common.Address, tokenID *big.Int) string {
	return fmt.Sprintf("%s:%s", contract.Hex(), tokenID.String())
}
