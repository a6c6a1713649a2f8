package control

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pevans/ytexport/agent"
)

// Transport carries requests to a page agent and reports which page the
// agent is attached to.
type Transport interface {
	Send(ctx context.Context, req agent.Request) (*agent.Response, error)
	ActiveAddress(ctx context.Context) (string, error)
}

// HTTPTransport talks to an agent over its HTTP API.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
}

// NewHTTPTransport creates a transport for the agent at baseURL. The timeout
// bounds a whole request, including a full scroll-and-load extraction.
func NewHTTPTransport(baseURL string, timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Send posts a request to the agent and decodes its answer.
func (t *HTTPTransport) Send(ctx context.Context, req agent.Request) (*agent.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/api/v1/message", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", "ytexport/1.0")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to reach agent: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	var out agent.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if out.ID != req.ID {
		return nil, fmt.Errorf("response %s does not answer request %s", out.ID, req.ID)
	}

	return &out, nil
}

// ActiveAddress asks the agent for the address of its page.
func (t *HTTPTransport) ActiveAddress(ctx context.Context) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/api/v1/tab", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("User-Agent", "ytexport/1.0")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to reach agent: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	var tab agent.TabResponse
	if err := json.NewDecoder(resp.Body).Decode(&tab); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return tab.URL, nil
}

// LocalTransport drives an agent in the same process. Response data is still
// carried in its JSON form, so both sides own separate copies.
type LocalTransport struct {
	agent *agent.Agent
}

// NewLocalTransport creates a transport for an in-process agent.
func NewLocalTransport(a *agent.Agent) *LocalTransport {
	return &LocalTransport{agent: a}
}

func (t *LocalTransport) Send(ctx context.Context, req agent.Request) (*agent.Response, error) {
	resp := t.agent.Handle(ctx, req)
	return &resp, nil
}

func (t *LocalTransport) ActiveAddress(ctx context.Context) (string, error) {
	return t.agent.Address(ctx)
}
