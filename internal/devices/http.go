package devices

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/gophrelease/internal/common"
	"github.com/dmitrijs2005/gophrelease/internal/netx"
)

const feedTokenTTL = time.Minute

// HTTPSource reads a JSON device feed. When a secret is set every request
// carries a short-lived HS256 bearer token.
type HTTPSource struct {
	url    string
	secret []byte
	client netx.Doer
	now    func() time.Time
}

func NewHTTPSource(url string, secret []byte, client netx.Doer) *HTTPSource {
	return &HTTPSource{url: url, secret: secret, client: client, now: time.Now}
}

func (s *HTTPSource) token() (string, error) {
	now := s.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    common.AppName,
		Subject:   "device-feed",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(feedTokenTTL)),
	})
	return t.SignedString(s.secret)
}

func (s *HTTPSource) Fetch(ctx context.Context) ([]Device, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, unavailable("device feed", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", common.UserAgent)

	if len(s.secret) > 0 {
		tok, err := s.token()
		if err != nil {
			return nil, unavailable("device feed", fmt.Errorf("sign feed token: %w", err))
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, unavailable("device feed", err)
	}
	body, err := netx.ReadBody(resp)
	if err != nil {
		return nil, unavailable("device feed", err)
	}
	if !netx.IsSuccess(resp.StatusCode) {
		return nil, unavailable("device feed", fmt.Errorf("%s", netx.RemoteMessage(resp.StatusCode, body)))
	}

	ds, err := DecodeFeed(body)
	if err != nil {
		return nil, unavailable("device feed", err)
	}
	return ds, nil
}
