package zoom

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// OAuthConfig holds the Zoom OAuth app credentials used to refresh expired
// access tokens.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string

	// TokenURL is the OAuth token endpoint; overridable for tests.
	TokenURL string
}

// Token is a Zoom OAuth token as stored in a credential's key.
type Token struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int       `json:"expires_in"`
	Scope        string    `json:"scope"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// needsRefresh reports whether the token is expired or about to expire
// (5 min buffer).
func (t *Token) needsRefresh() bool {
	return !t.ExpiresAt.IsZero() && time.Now().Add(5*time.Minute).After(t.ExpiresAt)
}

// RefreshToken refreshes an access token using a refresh token
func (c *OAuthConfig) RefreshToken(refreshToken string) (*Token, error) {
	log.Printf("Refreshing Zoom token using refresh token")

	tokenURL := c.TokenURL
	if tokenURL == "" {
		tokenURL = "https://zoom.us/oauth/token"
	}
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)

	req, err := http.NewRequest("POST", tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		log.Printf("ERROR: Failed to create refresh token request: %v", err)
		return nil, fmt.Errorf("failed to create refresh token request: %w", err)
	}

	// Set basic auth and content type
	req.SetBasicAuth(c.ClientID, c.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		log.Printf("ERROR: Failed to send refresh token request: %v", err)
		return nil, fmt.Errorf("failed to send refresh token request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("ERROR: Failed to read refresh token response: %v", err)
		return nil, fmt.Errorf("failed to read refresh token response: %w", err)
	}

	log.Printf("Refresh token response status: %d %s", resp.StatusCode, resp.Status)

	if resp.StatusCode != http.StatusOK {
		log.Printf("ERROR: Token refresh failed: %s", string(respBody))
		return nil, fmt.Errorf("token refresh failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var tokenResp Token
	if err := json.Unmarshal(respBody, &tokenResp); err != nil {
		log.Printf("ERROR: Failed to parse refresh token response: %v", err)
		return nil, fmt.Errorf("failed to parse refresh token response: %w", err)
	}

	// Set expiry time
	tokenResp.ExpiresAt = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)

	log.Printf("Successfully refreshed Zoom token, expires at: %s", tokenResp.ExpiresAt.Format("2006-01-02 15:04:05"))

	return &tokenResp, nil
}
