package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ctrlmap-tools/cmapsync/internal/domain"
	"github.com/ctrlmap-tools/cmapsync/pkg/version"
)

// authProvider is the fixed JWT provider identifier the API expects.
const authProvider = "cmapjwt"

// Session is an authenticated HTTP session against the ControlMap API.
// Every call attaches the bearer token and tenant headers; failures are
// mapped onto the domain error taxonomy. The session never retries: retry
// policy belongs to the caller.
type Session struct {
	baseURL    string
	tenant     string
	token      string
	httpClient *http.Client
}

// SessionOptions contains options for creating a Session
type SessionOptions struct {
	BaseURL string // normalized with trailing slash
	Tenant  string
	Token   string
	Timeout time.Duration

	// HTTPClient overrides the default client. Used in tests.
	HTTPClient *http.Client
}

// NewSession creates a new authenticated session
func NewSession(opts SessionOptions) *Session {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	baseURL := opts.BaseURL
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return &Session{
		baseURL:    baseURL,
		tenant:     opts.Tenant,
		token:      opts.Token,
		httpClient: httpClient,
	}
}

// GetJSON performs a GET request and decodes the JSON response into out.
func (s *Session) GetJSON(ctx context.Context, path string, out any) error {
	body, err := s.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return s.decode(path, body, out)
}

// PostJSON performs a POST request with a JSON body and decodes the JSON
// response into out.
func (s *Session) PostJSON(ctx context.Context, path string, reqBody, out any) error {
	var reader io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to encode request body for %s: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	body, err := s.do(ctx, http.MethodPost, path, reader)
	if err != nil {
		return err
	}
	return s.decode(path, body, out)
}

// Close releases session resources.
func (s *Session) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}

func (s *Session) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	normalized := strings.TrimPrefix(path, "/")
	url := s.baseURL + normalized

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", path, err)
	}

	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("x-authprovider", authProvider)
	req.Header.Set("x-tenanturi", s.tenant)
	req.Header.Set("User-Agent", "cmapsync/"+version.Short())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		// Timeout, DNS, TLS and connection failures all surface here.
		return nil, domain.NewAPIError(normalized, 0, fmt.Errorf("%w: %v", domain.ErrNetwork, err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewAPIError(normalized, resp.StatusCode, fmt.Errorf("%w: reading response: %v", domain.ErrNetwork, err))
	}

	if err := mapStatus(normalized, resp.StatusCode, respBody); err != nil {
		return nil, err
	}

	return respBody, nil
}

// mapStatus maps a non-2xx response onto the error taxonomy.
func mapStatus(path string, statusCode int, body []byte) error {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return domain.NewAPIError(path, statusCode, domain.ErrAuth)
	case statusCode == http.StatusNotFound:
		return domain.NewAPIError(path, statusCode, domain.ErrNotFound)
	case statusCode == http.StatusTooManyRequests || statusCode >= 500:
		return domain.NewAPIError(path, statusCode, domain.ErrTransient)
	default:
		apiErr := domain.NewAPIError(path, statusCode, fmt.Errorf("HTTP %d", statusCode))
		apiErr.Body = truncateBody(body)
		return apiErr
	}
}

func (s *Session) decode(path string, body []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("invalid JSON response for %s: %w", path, err)
	}
	return nil
}

// truncateBody keeps error payloads short enough for user-facing messages.
func truncateBody(body []byte) string {
	const max = 512
	s := string(body)
	if len(s) > max {
		return s[:max]
	}
	return s
}
