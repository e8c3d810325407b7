package common

// Network is the EVM network the marketplace contract state lives on.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkSepolia Network = "sepolia"
)

func (n Network) String() string {
	return string(n)
}

func (n Network) IsSupported() bool {
	switch n {
	case NetworkMainnet, NetworkSepolia:
		return true
	}
	return false
}

// ChainID returns the chain id of the network, or 0 if unknown.
func (n Network) ChainID() uint64 {
	switch n {
	case NetworkMainnet:
		return 1
	case NetworkSepolia:
		return 11155111
	}
	return 0
}
