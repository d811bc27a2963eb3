package explorer_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pendergraft/ethlift/internal/chains"
	"github.com/pendergraft/ethlift/pkg/explorer"
	"github.com/pendergraft/ethlift/pkg/explorer/explorertest"
)

const vault = "0x5f18C75AbDAe578b483E5F43f12a39cF75b973a9"

func newClient(t *testing.T, srv *explorertest.Server, apiKey string) *explorer.Client {
	t.Helper()
	return explorer.New(apiKey, explorer.WithBaseURL(srv.URL), explorer.WithRateLimiter(nil))
}

func TestClient_ContractSourceCode_SingleFile(t *testing.T) {
	srv := explorertest.New(t, "key")
	srv.AddContract(explorertest.Contract{
		ChainID:         1,
		Address:         vault,
		ContractName:    "Vault",
		SourceCode:      "pragma solidity 0.6.12;\ncontract Vault {}\n",
		CompilerVersion: "v0.6.12+commit.27d51765",
	})

	src, err := newClient(t, srv, "key").ContractSourceCode(context.Background(), explorer.ContractIdentity{ChainID: 1, Address: vault})
	require.NoError(t, err)

	assert.Equal(t, "Vault", src.ContractName)
	assert.Equal(t, "v0.6.12+commit.27d51765", src.CompilerVersion)
	require.Len(t, src.Files, 1)
	assert.Equal(t, "Vault.sol", src.Files[0].Path)
	assert.Equal(t, "pragma solidity 0.6.12;\ncontract Vault {}\n", src.Source())
}

func TestClient_ContractSourceCode_AddressCaseInsensitive(t *testing.T) {
	srv := explorertest.New(t, "")
	srv.AddContract(explorertest.Contract{ChainID: 1, Address: vault, ContractName: "Vault", SourceCode: "contract Vault {}"})

	lower := "0x5f18c75abdae578b483e5f43f12a39cf75b973a9"
	src, err := newClient(t, srv, "").ContractSourceCode(context.Background(), explorer.ContractIdentity{ChainID: 1, Address: lower})
	require.NoError(t, err)
	assert.Equal(t, "contract Vault {}", src.Source())
}

func TestClient_ContractSourceCode_MultiFile(t *testing.T) {
	files := map[string]map[string]string{
		"contracts/Vault.sol":  {"content": "contract Vault {}"},
		"contracts/Access.sol": {"content": "contract Access {}"},
	}

	multi, err := json.Marshal(files)
	require.NoError(t, err)

	standard, err := json.Marshal(map[string]any{
		"language": "Solidity",
		"sources":  files,
		"settings": map[string]any{"optimizer": map[string]any{"enabled": true}},
	})
	require.NoError(t, err)

	tests := []struct {
		name   string
		source string
	}{
		{"file map", string(multi)},
		{"standard json input", "{" + string(standard) + "}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := explorertest.New(t, "")
			srv.AddContract(explorertest.Contract{ChainID: 1, Address: vault, ContractName: "Vault", SourceCode: tt.source})

			src, err := newClient(t, srv, "").ContractSourceCode(context.Background(), explorer.ContractIdentity{ChainID: 1, Address: vault})
			require.NoError(t, err)

			require.Len(t, src.Files, 2)
			assert.Equal(t, "contracts/Access.sol", src.Files[0].Path)
			assert.Equal(t, "contracts/Vault.sol", src.Files[1].Path)
			assert.Equal(t, "contract Access {}\ncontract Vault {}", src.Source())
		})
	}
}

func TestClient_ContractSourceCode_Failures(t *testing.T) {
	srv := explorertest.New(t, "key")
	srv.AddContract(explorertest.Contract{ChainID: 1, Address: vault, ContractName: "Vault", SourceCode: "contract Vault {}"})

	t.Run("unverified contract", func(t *testing.T) {
		other := "0x0000000000000000000000000000000000000001"
		_, err := newClient(t, srv, "key").ContractSourceCode(context.Background(), explorer.ContractIdentity{ChainID: 1, Address: other})

		assert.ErrorIs(t, err, explorer.ErrRemoteFetchFailed)
		var apiErr *explorer.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Contains(t, apiErr.Message, "not verified")
	})

	t.Run("bad credentials", func(t *testing.T) {
		_, err := newClient(t, srv, "wrong").ContractSourceCode(context.Background(), explorer.ContractIdentity{ChainID: 1, Address: vault})

		assert.ErrorIs(t, err, explorer.ErrRemoteFetchFailed)
		var apiErr *explorer.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "0", apiErr.Status)
		assert.Equal(t, "Invalid API Key", apiErr.Result)
	})

	t.Run("wrong chain", func(t *testing.T) {
		_, err := newClient(t, srv, "key").ContractSourceCode(context.Background(), explorer.ContractIdentity{ChainID: 10, Address: vault})
		assert.ErrorIs(t, err, explorer.ErrRemoteFetchFailed)
	})
}

func TestClient_ContractSourceCode_RejectsBeforeRequest(t *testing.T) {
	srv := explorertest.New(t, "")
	client := newClient(t, srv, "")

	_, err := client.ContractSourceCode(context.Background(), explorer.ContractIdentity{ChainID: 424242, Address: vault})
	assert.ErrorIs(t, err, explorer.ErrRemoteFetchFailed)
	assert.ErrorIs(t, err, chains.ErrInvalidChainID)

	_, err = client.ContractSourceCode(context.Background(), explorer.ContractIdentity{ChainID: 1, Address: "0x1234"})
	assert.ErrorIs(t, err, explorer.ErrRemoteFetchFailed)

	assert.Equal(t, 0, srv.Requests())
}

func TestClient_ContractSourceCode_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	client := explorer.New("", explorer.WithBaseURL(server.URL), explorer.WithRateLimiter(nil))
	_, err := client.ContractSourceCode(context.Background(), explorer.ContractIdentity{ChainID: 1, Address: vault})

	assert.ErrorIs(t, err, explorer.ErrRemoteFetchFailed)
	assert.Contains(t, err.Error(), "HTTP 502")
	assert.Contains(t, err.Error(), "upstream unavailable")
}

func TestClient_ContractSourceCode_SendsQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "137", q.Get("chainid"))
		assert.Equal(t, "contract", q.Get("module"))
		assert.Equal(t, "getsourcecode", q.Get("action"))
		assert.Equal(t, vault, q.Get("address"))
		assert.Equal(t, "secret", q.Get("apikey"))

		json.NewEncoder(w).Encode(map[string]any{
			"status":  "1",
			"message": "OK",
			"result":  []map[string]string{{"SourceCode": "contract X {}", "ContractName": "X"}},
		})
	}))
	defer server.Close()

	client := explorer.New("secret", explorer.WithBaseURL(server.URL), explorer.WithRateLimiter(nil))
	_, err := client.ContractSourceCode(context.Background(), explorer.ContractIdentity{ChainID: 137, Address: vault})
	require.NoError(t, err)
}

func TestClient_ContractSourceCode_CustomNetworks(t *testing.T) {
	srv := explorertest.New(t, "")
	srv.AddContract(explorertest.Contract{ChainID: 31337, Address: vault, ContractName: "Vault", SourceCode: "contract Vault {}"})

	client := explorer.New("",
		explorer.WithBaseURL(srv.URL),
		explorer.WithRateLimiter(nil),
		explorer.WithNetworks(chains.NewRegistry(chains.Network{ChainID: 31337, Name: "anvil", DisplayName: "Anvil"})),
	)

	_, err := client.ContractSourceCode(context.Background(), explorer.ContractIdentity{ChainID: 31337, Address: vault})
	require.NoError(t, err)

	_, err = client.ContractSourceCode(context.Background(), explorer.ContractIdentity{ChainID: 1, Address: vault})
	assert.ErrorIs(t, err, chains.ErrInvalidChainID)
}

func TestClient_ContractSourceCode_ContextCanceled(t *testing.T) {
	srv := explorertest.New(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := explorer.New("", explorer.WithBaseURL(srv.URL)).ContractSourceCode(ctx, explorer.ContractIdentity{ChainID: 1, Address: vault})
	assert.ErrorIs(t, err, explorer.ErrRemoteFetchFailed)
	assert.ErrorIs(t, err, context.Canceled)
}
