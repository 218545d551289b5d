// Package api is the HTTP client for the remote TDS approval server.
//
// Every method performs exactly one request: no retries, no caching,
// no pagination. Reads normalize the server's {status, message, data}
// envelope into flat values; failures become *Error carrying the
// server's message verbatim. Cancellation is the caller's job via the
// context passed to each call.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/activus-tech/tdsctl/pkg/randid"
)

// Client talks to the approval server. The zero value is not usable;
// construct with New.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	log     zerolog.Logger
}

// New returns a Client for the server at baseURL. The token may be
// empty until SetToken is called; only login and register work without
// one.
func New(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
		log:     logger,
	}
}

// SetToken installs the bearer credential attached to every
// subsequent protected call.
func (c *Client) SetToken(token string) {
	c.token = token
}

// envelope is the server's standard response wrapper.
type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	// public marks the auth endpoints that work without a credential.
	public bool
}

// do performs one request and decodes the response into out (which may
// be nil for mutations whose payload is ignored). Responses are
// accepted both enveloped and bare: most endpoints wrap their payload
// in {data: ...} but the superadmin queue returns a naked array.
func (c *Client) do(ctx context.Context, req request, out any) error {
	if !req.public && c.token == "" {
		return ErrMissingCredential
	}

	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, req.body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if !req.public {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	reqID := randid.Generate(8)
	logger := c.log.With().Str("request_id", reqID).Str("method", req.method).Str("path", req.path).Logger()
	logger.Debug().Msg("api request")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		logger.Debug().Err(err).Msg("api request failed")
		return fmt.Errorf("call server: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	bits, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	logger.Debug().Int("status", resp.StatusCode).Int("bytes", len(bits)).Msg("api response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.serverError(resp.StatusCode, bits)
	}

	if out == nil {
		return nil
	}
	return decodePayload(bits, out)
}

// serverError extracts the server's message field when present.
func (c *Client) serverError(status int, body []byte) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		return &Error{StatusCode: status, Message: env.Message}
	}
	return &Error{StatusCode: status}
}

func decodePayload(body []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// get performs an enveloped collection or object read.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, request{method: http.MethodGet, path: path, query: query}, out)
}

// putJSON performs a mutation with a JSON body (which may be nil for
// query-parameter-only endpoints).
func (c *Client) putJSON(ctx context.Context, path string, query url.Values, body any) error {
	reader, err := jsonBody(body)
	if err != nil {
		return err
	}
	return c.do(ctx, request{method: http.MethodPut, path: path, query: query, body: reader, contentType: "application/json"}, nil)
}

func (c *Client) postJSON(ctx context.Context, path string, body any, public bool, out any) error {
	reader, err := jsonBody(body)
	if err != nil {
		return err
	}
	return c.do(ctx, request{method: http.MethodPost, path: path, body: reader, contentType: "application/json", public: public}, out)
}

func jsonBody(body any) (io.Reader, error) {
	if body == nil {
		return strings.NewReader("{}"), nil
	}
	bits, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}
	return bytes.NewReader(bits), nil
}
