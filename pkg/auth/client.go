package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserExists         = errors.New("user already exists")
)

// Client acquires a User record from the backend's /login and /signup routes.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type response struct {
	Message string `json:"message"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Detail  string `json:"detail"`
}

func (c *Client) Login(ctx context.Context, email, password string) (User, error) {
	return c.post(ctx, "/login", LoginRequest{Email: email, Password: password})
}

func (c *Client) Signup(ctx context.Context, name, email, password string) (User, error) {
	return c.post(ctx, "/signup", SignupRequest{Name: name, Email: email, Password: password})
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) (User, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return User{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return User{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return User{}, errors.Wrapf(err, "POST %s", path)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var out response
	decodeErr := json.NewDecoder(resp.Body).Decode(&out)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return User{}, ErrInvalidCredentials
	case resp.StatusCode == http.StatusBadRequest && strings.Contains(strings.ToLower(out.Detail), "already exists"):
		return User{}, ErrUserExists
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		detail := out.Detail
		if detail == "" {
			detail = http.StatusText(resp.StatusCode)
		}
		return User{}, fmt.Errorf("POST %s: %d %s", path, resp.StatusCode, detail)
	case decodeErr != nil:
		return User{}, errors.Wrapf(decodeErr, "POST %s: decode response", path)
	}
	return User{Name: out.Name, Email: out.Email}, nil
}
