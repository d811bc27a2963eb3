// Package explorertest provides an in-process Etherscan-compatible server for
// tests.
package explorertest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Contract is a verified contract served by the fake explorer.
type Contract struct {
	ChainID      uint64
	Address      string
	ContractName string
	// SourceCode is returned verbatim, so it may hold plain Solidity or a
	// JSON-encoded multi-file source.
	SourceCode      string
	CompilerVersion string
}

// Server is a fake explorer API.
type Server struct {
	URL string

	apiKey    string
	mu        sync.RWMutex
	contracts map[string]Contract
	requests  atomic.Int64
	srv       *httptest.Server
}

// New starts a fake explorer that accepts apiKey, or any key when apiKey is
// empty. It is closed when the test ends.
func New(t testing.TB, apiKey string) *Server {
	t.Helper()

	s := &Server{
		apiKey:    apiKey,
		contracts: make(map[string]Contract),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.count)
	r.Get("/api", s.handleAPI)
	r.Get("/v2/api", s.handleAPI)

	s.srv = httptest.NewServer(r)
	s.URL = s.srv.URL + "/v2/api"
	t.Cleanup(s.srv.Close)

	return s
}

// AddContract registers a verified contract.
func (s *Server) AddContract(c Contract) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contracts[key(c.ChainID, c.Address)] = c
}

// Requests returns the number of requests served.
func (s *Server) Requests() int {
	return int(s.requests.Load())
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		next.ServeHTTP(w, r)
	})
}

func key(chainID uint64, address string) string {
	return strconv.FormatUint(chainID, 10) + "/" + strings.ToLower(address)
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if s.apiKey != "" && q.Get("apikey") != s.apiKey {
		writeError(w, "NOTOK", "Invalid API Key")
		return
	}
	if q.Get("module") != "contract" || q.Get("action") != "getsourcecode" {
		writeError(w, "NOTOK", "Error! Missing Or invalid Module name")
		return
	}

	chainID, err := strconv.ParseUint(q.Get("chainid"), 10, 64)
	if err != nil {
		writeError(w, "NOTOK", "Missing or unsupported chainid parameter")
		return
	}

	s.mu.RLock()
	c, ok := s.contracts[key(chainID, q.Get("address"))]
	s.mu.RUnlock()

	entry := map[string]string{
		"SourceCode":      "",
		"ABI":             "Contract source code not verified",
		"ContractName":    "",
		"CompilerVersion": "",
	}
	if ok {
		entry["SourceCode"] = c.SourceCode
		entry["ABI"] = "[]"
		entry["ContractName"] = c.ContractName
		entry["CompilerVersion"] = c.CompilerVersion
	}

	writeJSON(w, map[string]any{
		"status":  "1",
		"message": "OK",
		"result":  []map[string]string{entry},
	})
}

func writeError(w http.ResponseWriter, message, result string) {
	writeJSON(w, map[string]any{
		"status":  "0",
		"message": message,
		"result":  result,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
