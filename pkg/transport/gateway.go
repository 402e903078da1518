package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// GatewayClient sends messages through a token-authenticated messaging
// gateway. It logs in with an API key, holds the resulting session blob
// in memory, and notifies a listener whenever the session changes so it
// can be persisted and restored across restarts.
type GatewayClient struct {
	baseURL string
	apiKey  string
	client  *http.Client

	mu       sync.Mutex
	session  []byte
	token    string
	listener SessionListener
}

// gatewaySession is the shape of the gateway's login response. The blob
// is stored verbatim; only the token field is read out for requests.
type gatewaySession struct {
	Token string `json:"token"`
}

// NewGatewayClient creates a gateway client. No network call is made
// until the first send or an explicit session restore.
func NewGatewayClient(baseURL, apiKey string) *GatewayClient {
	return &GatewayClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (g *GatewayClient) Name() string { return "gateway" }

// RestoreSession seeds the client with a previously persisted session
// blob, avoiding a fresh login. An unparseable blob is rejected and the
// client falls back to logging in on the next send.
func (g *GatewayClient) RestoreSession(blob []byte) error {
	if len(blob) == 0 {
		return nil
	}
	var sess gatewaySession
	if err := json.Unmarshal(blob, &sess); err != nil {
		return fmt.Errorf("parse session blob: %w", err)
	}
	if sess.Token == "" {
		return fmt.Errorf("session blob: missing token")
	}

	g.mu.Lock()
	g.session = blob
	g.token = sess.Token
	g.mu.Unlock()
	return nil
}

// OnSessionChanged registers the listener notified after every login.
func (g *GatewayClient) OnSessionChanged(fn SessionListener) {
	g.mu.Lock()
	g.listener = fn
	g.mu.Unlock()
}

// ActiveSession returns the current session blob, if authenticated.
func (g *GatewayClient) ActiveSession() ([]byte, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.session) == 0 {
		return nil, false
	}
	blob := make([]byte, len(g.session))
	copy(blob, g.session)
	return blob, true
}

// Send delivers one message. A missing session triggers a login first;
// a 401 from the gateway drops the session and fails the send, so the
// next attempt re-authenticates.
func (g *GatewayClient) Send(ctx context.Context, recipient, message string) error {
	token, err := g.ensureSession(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]string{
		"recipient": recipient,
		"text":      message,
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create message request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		g.dropSession()
		return fmt.Errorf("gateway rejected session (status %d)", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}
	return nil
}

// ensureSession returns the current token, logging in if none is held.
func (g *GatewayClient) ensureSession(ctx context.Context) (string, error) {
	g.mu.Lock()
	if g.token != "" {
		token := g.token
		g.mu.Unlock()
		return token, nil
	}
	g.mu.Unlock()

	return g.login(ctx)
}

func (g *GatewayClient) login(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{"api_key": g.apiKey})
	if err != nil {
		return "", fmt.Errorf("marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login returned status %d", resp.StatusCode)
	}

	blob, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read login response: %w", err)
	}

	var sess gatewaySession
	if err := json.Unmarshal(blob, &sess); err != nil {
		return "", fmt.Errorf("parse login response: %w", err)
	}
	if sess.Token == "" {
		return "", fmt.Errorf("login response: missing token")
	}

	g.mu.Lock()
	g.session = blob
	g.token = sess.Token
	listener := g.listener
	g.mu.Unlock()

	if listener != nil {
		listener(blob)
	}
	return sess.Token, nil
}

func (g *GatewayClient) dropSession() {
	g.mu.Lock()
	g.session = nil
	g.token = ""
	g.mu.Unlock()
}
