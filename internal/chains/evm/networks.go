package evm

import "github.com/pendergraft/ethlift/internal/chains"

// DefaultNetworks lists the networks served by the Etherscan v2 API.
var DefaultNetworks = []chains.Network{
	{ChainID: 1, Name: "mainnet", DisplayName: "Ethereum Mainnet"},
	{ChainID: 10, Name: "optimism", DisplayName: "OP Mainnet"},
	{ChainID: 56, Name: "bsc", DisplayName: "BNB Smart Chain"},
	{ChainID: 97, Name: "bsc-testnet", DisplayName: "BNB Smart Chain Testnet"},
	{ChainID: 100, Name: "gnosis", DisplayName: "Gnosis"},
	{ChainID: 137, Name: "polygon", DisplayName: "Polygon"},
	{ChainID: 324, Name: "zksync", DisplayName: "zkSync Era"},
	{ChainID: 1101, Name: "polygon-zkevm", DisplayName: "Polygon zkEVM"},
	{ChainID: 1284, Name: "moonbeam", DisplayName: "Moonbeam"},
	{ChainID: 5000, Name: "mantle", DisplayName: "Mantle"},
	{ChainID: 8453, Name: "base", DisplayName: "Base"},
	{ChainID: 17000, Name: "holesky", DisplayName: "Holesky"},
	{ChainID: 42161, Name: "arbitrum", DisplayName: "Arbitrum One"},
	{ChainID: 42170, Name: "arbitrum-nova", DisplayName: "Arbitrum Nova"},
	{ChainID: 43114, Name: "avalanche", DisplayName: "Avalanche C-Chain"},
	{ChainID: 59144, Name: "linea", DisplayName: "Linea"},
	{ChainID: 80002, Name: "amoy", DisplayName: "Polygon Amoy"},
	{ChainID: 81457, Name: "blast", DisplayName: "Blast"},
	{ChainID: 84532, Name: "base-sepolia", DisplayName: "Base Sepolia"},
	{ChainID: 421614, Name: "arbitrum-sepolia", DisplayName: "Arbitrum Sepolia"},
	{ChainID: 534352, Name: "scroll", DisplayName: "Scroll"},
	{ChainID: 11155111, Name: "sepolia", DisplayName: "Sepolia"},
	{ChainID: 11155420, Name: "optimism-sepolia", DisplayName: "OP Sepolia"},
}

// DefaultRegistry returns a registry holding DefaultNetworks
func DefaultRegistry() *chains.Registry {
	return chains.NewRegistry(DefaultNetworks...)
}
