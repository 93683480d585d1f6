package feed

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"feedsync/internal/logger"
)

const contentScope = "https://www.googleapis.com/auth/content"

// TokenSource exchanges a signed service-account assertion for a short-lived
// access token and caches it until close to expiry.
type TokenSource struct {
	clientEmail string
	keyID       string
	privateKey  *rsa.PrivateKey
	tokenURL    string
	httpClient  *http.Client
	logger      *logger.Logger

	mu      sync.Mutex
	token   string
	expires time.Time
}

func NewTokenSource(clientEmail, privateKeyPEM, keyID, tokenURL string, logger *logger.Logger) (*TokenSource, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privateKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account key: %w", err)
	}

	return &TokenSource{
		clientEmail: clientEmail,
		keyID:       keyID,
		privateKey:  key,
		tokenURL:    tokenURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}, nil
}

// Token returns a valid access token, refreshing it when the cached one is
// within a minute of expiry.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token != "" && time.Until(ts.expires) > time.Minute {
		return ts.token, nil
	}

	assertion, err := ts.signAssertion()
	if err != nil {
		return "", err
	}

	token, expiresIn, err := ts.exchange(ctx, assertion)
	if err != nil {
		return "", err
	}

	ts.token = token
	ts.expires = time.Now().Add(time.Duration(expiresIn) * time.Second)
	ts.logger.Debug("refreshed feed provider access token, expires in %ds", expiresIn)
	return ts.token, nil
}

func (ts *TokenSource) signAssertion() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   ts.clientEmail,
		"scope": contentScope,
		"aud":   ts.tokenURL,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if ts.keyID != "" {
		token.Header["kid"] = ts.keyID
	}

	signed, err := token.SignedString(ts.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token assertion: %w", err)
	}
	return signed, nil
}

func (ts *TokenSource) exchange(ctx context.Context, assertion string) (string, int, error) {
	data := url.Values{}
	data.Set("grant_type", "urn:ietf:params:oauth:grant-type:jwt-bearer")
	data.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, "POST", ts.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", 0, fmt.Errorf("token exchange failed: %d - %s", resp.StatusCode, string(body))
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", 0, fmt.Errorf("failed to decode token response: %w", err)
	}

	return tokenResp.AccessToken, tokenResp.ExpiresIn, nil
}
