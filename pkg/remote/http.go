package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	ChatPath = "/chat"
	// ClientIDHeader lets the server keep per-client context.
	ClientIDHeader = "X-Client-ID"
)

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Reply *string `json:"reply"`
}

// HTTPEndpoint talks to a chat backend over `POST /chat`.
type HTTPEndpoint struct {
	baseURL  string
	client   *http.Client
	timeout  time.Duration
	clientID string
}

var _ Endpoint = (*HTTPEndpoint)(nil)

type HTTPEndpointOption func(*HTTPEndpoint)

// WithTimeout bounds a single request. Zero leaves it to the http.Client.
func WithTimeout(timeout time.Duration) HTTPEndpointOption {
	return func(e *HTTPEndpoint) {
		e.timeout = timeout
	}
}

// WithClientID sets the X-Client-ID header, which the reference server uses to
// keep per-client context.
func WithClientID(id string) HTTPEndpointOption {
	return func(e *HTTPEndpoint) {
		e.clientID = id
	}
}

func NewHTTPEndpoint(baseURL string, options ...HTTPEndpointOption) (*HTTPEndpoint, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("http endpoint: empty base url")
	}
	ret := &HTTPEndpoint{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.DefaultClient,
	}
	for _, o := range options {
		o(ret)
	}
	return ret, nil
}

func (e *HTTPEndpoint) Send(ctx context.Context, message string) (string, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	body, err := json.Marshal(ChatRequest{Message: message})
	if err != nil {
		return "", errors.Wrap(err, "encode chat request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+ChatPath, bytes.NewReader(body))
	if err != nil {
		return "", &ServerError{Reason: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if e.clientID != "" {
		req.Header.Set(ClientIDHeader, e.clientID)
	}

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		return "", &ServerError{Reason: "transport", Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	log.Debug().
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("chat request finished")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &ServerError{StatusCode: resp.StatusCode}
	}

	var out ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &ServerError{StatusCode: resp.StatusCode, Reason: "malformed response", Err: err}
	}
	if out.Reply == nil {
		return "", &ServerError{StatusCode: resp.StatusCode, Reason: "response has no reply"}
	}
	if strings.TrimSpace(*out.Reply) == "" {
		return "", &ServerError{StatusCode: resp.StatusCode, Reason: "empty reply"}
	}
	return *out.Reply, nil
}
