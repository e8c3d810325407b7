package entity

import "fmt"

// TokenMetadata is the resolved off-chain metadata for a token. Listings keep
// rendering with placeholder metadata when resolution fails.
type TokenMetadata struct {
	Name       string      `json:"name"`
	Image      string      `json:"image"`
	Attributes []Attribute `json:"attributes,omitempty"`
}

type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

// PlaceholderMetadata is used when a token's metadata cannot be resolved.
func PlaceholderMetadata(tokenID fmt.Stringer) TokenMetadata {
	return TokenMetadata{
		Name: fmt.Sprintf("Token #%s", tokenID.String()),
	}
}
