package guard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// HTTPChecker asks the verify endpoint about a session cookie.
type HTTPChecker struct {
	BaseURL string
	Cookie  *http.Cookie
	Client  *http.Client
}

func (c *HTTPChecker) Check(ctx context.Context) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(c.BaseURL, "/")+"/api/auth/verify", nil)
	if err != nil {
		return nil, err
	}
	if c.Cookie != nil {
		req.AddCookie(c.Cookie)
	}

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, ErrUnauthenticated
	default:
		return nil, fmt.Errorf("verify: unexpected status %d", res.StatusCode)
	}

	var body struct {
		User User `json:"user"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("verify: decode: %w", err)
	}
	return &body.User, nil
}
