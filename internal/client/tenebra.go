package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tmpim/tenebra-wallet/internal/model"
)

const defaultTimeout = 15 * time.Second

// APIError is an error the Tenebra node returned deliberately, e.g.
// "insufficient_funds". Code is the node's machine-readable error string.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("tenebra api error %s: %s", e.Code, e.Message)
	}
	return "tenebra api error " + e.Code
}

// Is matches APIErrors by code, so callers can errors.Is against the
// sentinels below.
func (e *APIError) Is(target error) bool {
	var other *APIError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// Well-known node rejections, surfaced to the UI verbatim.
var (
	ErrInsufficientFunds = &APIError{Code: "insufficient_funds"}
	ErrInvalidParameter  = &APIError{Code: "invalid_parameter"}
	ErrAddressNotFound   = &APIError{Code: "address_not_found"}
	ErrAuthFailed        = &APIError{Code: "auth_failed"}
)

// NetworkError wraps a transport-level failure (node unreachable, timeout).
// Transient and safe to retry; callers must not mutate cached state on it.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "tenebra node unreachable: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNetworkError checks if error is a NetworkError.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// TenebraClient is a client for the Tenebra node's REST API.
type TenebraClient struct {
	baseURL string
	client  *http.Client
}

// NewTenebraClient creates a client for the node at baseURL.
func NewTenebraClient(baseURL string) *TenebraClient {
	return &TenebraClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// apiResponse is the envelope every node response shares.
type apiResponse struct {
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
	Message   string `json:"message,omitempty"`
	Parameter string `json:"parameter,omitempty"`
}

func (c *TenebraClient) request(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+strings.TrimLeft(path, "/"), reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	var envelope apiResponse
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	if !envelope.OK {
		code := envelope.Error
		if code == "" {
			code = fmt.Sprintf("http_%d", resp.StatusCode)
		}
		msg := envelope.Message
		if msg == "" && envelope.Parameter != "" {
			msg = "parameter: " + envelope.Parameter
		}
		return &APIError{Code: code, Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// AddressLookupResults maps each requested address to its record, or nil when
// the node does not know the address.
type AddressLookupResults map[string]*model.Address

// StakeLookupResults maps each requested address to its stake record, or nil.
type StakeLookupResults map[string]*model.Stake

type lookupAddressesResponse struct {
	apiResponse
	Found     int                  `json:"found"`
	NotFound  int                  `json:"notFound"`
	Addresses AddressLookupResults `json:"addresses"`
}

type lookupStakesResponse struct {
	apiResponse
	Found    int                `json:"found"`
	NotFound int                `json:"notFound"`
	Stakes   StakeLookupResults `json:"stakes"`
}

// LookupAddresses fetches balance/firstseen (and name counts, when fetchNames
// is set) for a batch of addresses in a single call.
func (c *TenebraClient) LookupAddresses(ctx context.Context, addresses []string, fetchNames bool) (AddressLookupResults, error) {
	if len(addresses) == 0 {
		return AddressLookupResults{}, nil
	}

	path := "lookup/addresses/" + url.PathEscape(strings.Join(addresses, ","))
	if fetchNames {
		path += "?fetchNames"
	}

	var resp lookupAddressesResponse
	if err := c.request(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Addresses, nil
}

// LookupStakes fetches stake records for a batch of addresses in one call.
func (c *TenebraClient) LookupStakes(ctx context.Context, addresses []string) (StakeLookupResults, error) {
	if len(addresses) == 0 {
		return StakeLookupResults{}, nil
	}

	var resp lookupStakesResponse
	path := "lookup/stakes/" + url.PathEscape(strings.Join(addresses, ","))
	if err := c.request(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Stakes, nil
}

type makeTransactionResponse struct {
	apiResponse
	Transaction *model.Transaction `json:"transaction"`
}

type stakingActionResponse struct {
	apiResponse
	Stake *model.Stake `json:"stake"`
}

// MakeTransaction submits a signed transaction of amount from the private
// key's address to an address or name.
func (c *TenebraClient) MakeTransaction(ctx context.Context, privatekey, to string, amount int64, metadata string) (*model.Transaction, error) {
	body := map[string]interface{}{
		"privatekey": privatekey,
		"to":         to,
		"amount":     amount,
	}
	// Clean up empty metadata rather than sending an empty string.
	if metadata != "" {
		body["metadata"] = metadata
	}

	var resp makeTransactionResponse
	if err := c.request(ctx, http.MethodPost, "transactions", body, &resp); err != nil {
		return nil, err
	}
	return resp.Transaction, nil
}

// Deposit stakes amount from the private key's address.
func (c *TenebraClient) Deposit(ctx context.Context, privatekey string, amount int64) (*model.Stake, error) {
	var resp stakingActionResponse
	body := map[string]interface{}{"privatekey": privatekey, "amount": amount}
	if err := c.request(ctx, http.MethodPost, "staking", body, &resp); err != nil {
		return nil, err
	}
	return resp.Stake, nil
}

// Withdraw unstakes amount back to the private key's address.
func (c *TenebraClient) Withdraw(ctx context.Context, privatekey string, amount int64) (*model.Stake, error) {
	var resp stakingActionResponse
	body := map[string]interface{}{"privatekey": privatekey, "amount": amount}
	if err := c.request(ctx, http.MethodPost, "staking/withdraw", body, &resp); err != nil {
		return nil, err
	}
	return resp.Stake, nil
}

type wsStartResponse struct {
	apiResponse
	URL     string `json:"url"`
	Expires int    `json:"expires"`
}

// StartWebsocket requests a one-time websocket URL from the node. The URL
// expires quickly and must be dialled immediately.
func (c *TenebraClient) StartWebsocket(ctx context.Context) (string, error) {
	var resp wsStartResponse
	if err := c.request(ctx, http.MethodPost, "ws/start", map[string]interface{}{}, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// MOTD fetches the node's message of the day and sync metadata.
func (c *TenebraClient) MOTD(ctx context.Context) (*model.MOTD, error) {
	// The motd endpoint nests most fields at the top level alongside the
	// envelope, so decode twice.
	var resp struct {
		apiResponse
		model.MOTD
	}
	if err := c.request(ctx, http.MethodGet, "motd", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.MOTD, nil
}

// DetailedWork fetches the current work and block value details.
func (c *TenebraClient) DetailedWork(ctx context.Context) (*model.WorkDetailed, error) {
	var resp struct {
		apiResponse
		model.WorkDetailed
	}
	if err := c.request(ctx, http.MethodGet, "work/detailed", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.WorkDetailed, nil
}
