package sms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// HTTPGateway sends SMS through a JSON-over-HTTP provider that issues
// short-lived bearer tokens on login.
type HTTPGateway struct {
	apiURL   string
	username string
	password string
	mask     string
	client   *http.Client

	// Token management
	token       string
	tokenMutex  sync.RWMutex
	tokenExpiry time.Time
}

// Config holds configuration for the HTTP SMS gateway
type Config struct {
	APIURL   string
	Username string
	Password string
	Mask     string // source address shown to the recipient
}

// NewHTTPGateway creates a new HTTP SMS gateway client
func NewHTTPGateway(cfg Config) *HTTPGateway {
	return &HTTPGateway{
		apiURL:   cfg.APIURL,
		username: cfg.Username,
		password: cfg.Password,
		mask:     cfg.Mask,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

type sendRequest struct {
	Msisdn  string `json:"msisdn"`
	Message string `json:"message"`
	Mask    string `json:"sourceAddress,omitempty"`
}

type sendResponse struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

// Send delivers a message to the given phone number
func (g *HTTPGateway) Send(phone, message string) error {
	token, err := g.getToken()
	if err != nil {
		return fmt.Errorf("failed to authenticate with SMS provider: %w", err)
	}

	payload, err := json.Marshal(sendRequest{
		Msisdn:  phone,
		Message: message,
		Mask:    g.mask,
	})
	if err != nil {
		return fmt.Errorf("failed to encode SMS request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, g.apiURL+"/sms/send", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build SMS request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("SMS send request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read SMS response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("SMS provider returned status %d: %s", resp.StatusCode, string(body))
	}

	var result sendResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to decode SMS response: %w", err)
	}

	if result.Status != "success" {
		return fmt.Errorf("SMS provider rejected message: %s", result.Comment)
	}

	return nil
}

// getToken returns a cached bearer token, logging in again when it is close
// to expiry.
func (g *HTTPGateway) getToken() (string, error) {
	g.tokenMutex.RLock()
	if g.token != "" && time.Now().Before(g.tokenExpiry.Add(-time.Minute)) {
		token := g.token
		g.tokenMutex.RUnlock()
		return token, nil
	}
	g.tokenMutex.RUnlock()

	g.tokenMutex.Lock()
	defer g.tokenMutex.Unlock()

	// Another goroutine may have refreshed while we waited for the lock
	if g.token != "" && time.Now().Before(g.tokenExpiry.Add(-time.Minute)) {
		return g.token, nil
	}

	payload, err := json.Marshal(loginRequest{
		Username: g.username,
		Password: g.password,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode login request: %w", err)
	}

	resp, err := g.client.Post(g.apiURL+"/login", "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("login returned status %d: %s", resp.StatusCode, string(body))
	}

	var result loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode login response: %w", err)
	}

	if result.Token == "" {
		return "", fmt.Errorf("login response contained no token")
	}

	expiresIn := result.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}

	g.token = result.Token
	g.tokenExpiry = time.Now().Add(time.Duration(expiresIn) * time.Second)

	return g.token, nil
}
