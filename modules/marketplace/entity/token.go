package entity

// TokenStandard tags the asset flavor of a listing. Unique tokens
// (ERC721-like) have exactly one holder per token id; SemiFungible tokens
// (ERC1155-like) carry per-holder balances, so multiple sellers may list the
// same token id concurrently.
type TokenStandard string

const (
	TokenStandardUnique       TokenStandard = "erc721"
	TokenStandardSemiFungible TokenStandard = "erc1155"
)

func (s TokenStandard) String() string {
	return string(s)
}

func (s TokenStandard) IsValid() bool {
	switch s {
	case TokenStandardUnique, TokenStandardSemiFungible:
		return true
	}
	return false
}
