// Package explorer provides a Go client for Etherscan-compatible block
// explorer APIs.
package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pendergraft/ethlift/internal/chains"
	"github.com/pendergraft/ethlift/internal/chains/evm"
	"github.com/pendergraft/ethlift/internal/validation"
)

const (
	// DefaultBaseURL is the Etherscan API v2 endpoint, which serves every
	// supported chain through the chainid parameter.
	DefaultBaseURL = "https://api.etherscan.io/v2/api"

	// DefaultRequestsPerSecond matches the Etherscan free tier.
	DefaultRequestsPerSecond = 5

	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second
)

// ErrRemoteFetchFailed is matched by every error returned from a fetch.
var ErrRemoteFetchFailed = errors.New("remote fetch failed")

// ContractIdentity identifies a deployed contract.
type ContractIdentity struct {
	ChainID uint64
	Address string
}

func (id ContractIdentity) String() string {
	return fmt.Sprintf("%s on chain %d", id.Address, id.ChainID)
}

// Error reports a failed fetch.
type Error struct {
	Contract ContractIdentity
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrRemoteFetchFailed, e.Contract, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{ErrRemoteFetchFailed, e.Err}
}

// APIError is a failure reported by the explorer itself.
type APIError struct {
	Status  string
	Message string
	Result  string
}

func (e *APIError) Error() string {
	if e.Result != "" && e.Result != e.Message {
		return fmt.Sprintf("explorer status %s: %s: %s", e.Status, e.Message, e.Result)
	}
	return fmt.Sprintf("explorer status %s: %s", e.Status, e.Message)
}

// Client is an explorer API client
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	networks   *chains.Registry
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithBaseURL points the client at another Etherscan-compatible endpoint
func WithBaseURL(baseURL string) Option {
	return func(client *Client) {
		client.baseURL = baseURL
	}
}

// WithRateLimiter replaces the default request limiter. A nil limiter
// disables limiting.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(client *Client) {
		client.limiter = l
	}
}

// WithNetworks sets the chains the client accepts
func WithNetworks(r *chains.Registry) Option {
	return func(client *Client) {
		client.networks = r
	}
}

// WithLogger sets the request logger
func WithLogger(logger *slog.Logger) Option {
	return func(client *Client) {
		client.logger = logger
	}
}

// New creates a new explorer client
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter:  rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 1),
		networks: evm.DefaultRegistry(),
		logger:   slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// response is the envelope of every Etherscan API reply. Result is an array
// on success and a string on failure.
type response struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type sourceCodeEntry struct {
	SourceCode       string `json:"SourceCode"`
	ContractName     string `json:"ContractName"`
	CompilerVersion  string `json:"CompilerVersion"`
	OptimizationUsed string `json:"OptimizationUsed"`
	Runs             string `json:"Runs"`
	EVMVersion       string `json:"EVMVersion"`
	LicenseType      string `json:"LicenseType"`
	Proxy            string `json:"Proxy"`
	Implementation   string `json:"Implementation"`
}

// ContractSourceCode fetches the verified source of a contract. The chain
// must be known to the client and the address well formed; both are checked
// before any request is made.
func (c *Client) ContractSourceCode(ctx context.Context, id ContractIdentity) (*SourceCode, error) {
	fail := func(err error) (*SourceCode, error) {
		return nil, &Error{Contract: id, Err: err}
	}

	network, err := c.networks.Lookup(id.ChainID)
	if err != nil {
		return fail(err)
	}
	if err := validation.ValidateAddress(id.Address); err != nil {
		return fail(err)
	}

	var resp response
	if err := c.get(ctx, url.Values{
		"chainid": {strconv.FormatUint(id.ChainID, 10)},
		"module":  {"contract"},
		"action":  {"getsourcecode"},
		"address": {id.Address},
	}, &resp); err != nil {
		return fail(err)
	}

	if resp.Status != "1" {
		return fail(resp.apiError())
	}

	var entries []sourceCodeEntry
	if err := json.Unmarshal(resp.Result, &entries); err != nil {
		return fail(fmt.Errorf("decoding result: %w", err))
	}
	if len(entries) == 0 || entries[0].SourceCode == "" {
		return fail(&APIError{Status: resp.Status, Message: "contract source code not verified"})
	}

	entry := entries[0]
	files, err := parseSourceCode(entry.ContractName, entry.SourceCode)
	if err != nil {
		return fail(err)
	}

	c.logger.Debug("fetched verified source",
		"network", network.Name,
		"address", id.Address,
		"contract", entry.ContractName,
		"files", len(files),
	)

	return &SourceCode{
		ContractName:    entry.ContractName,
		CompilerVersion: entry.CompilerVersion,
		License:         entry.LicenseType,
		Proxy:           entry.Proxy == "1",
		Implementation:  entry.Implementation,
		Files:           files,
	}, nil
}

func (r *response) apiError() *APIError {
	e := &APIError{Status: r.Status, Message: r.Message}
	var result string
	if json.Unmarshal(r.Result, &result) == nil {
		e.Result = result
	}
	return e
}

func (c *Client) get(ctx context.Context, params url.Values, result any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	if c.apiKey != "" {
		params.Set("apikey", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.logger.Debug("explorer request",
		"module", params.Get("module"),
		"action", params.Get("action"),
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, msg)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
