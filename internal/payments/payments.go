// Package payments provides a Paystack-style payment gateway client for
// subscription checkout. When no secret key is configured the client runs in
// simulation mode: it fabricates successful references locally so the rest of
// the subscription flow can be exercised without a real gateway.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/kwame/agrimarket/internal/types"
)

// Status is the settlement state of an initialized charge.
type Status string

// Charge statuses
const (
	StatusSuccess Status = "success"
	StatusPending Status = "pending"
	StatusFailed  Status = "failed"
)

// Charge is an initialized checkout: the buyer completes payment at
// AuthorizationURL, then the reference is verified server-side.
type Charge struct {
	Reference        string                 `json:"reference"`
	AuthorizationURL string                 `json:"authorization_url"`
	Plan             types.SubscriptionPlan `json:"plan"`
	AmountCents      int64                  `json:"amount_cents"`
}

// Client talks to the payment gateway. Safe for concurrent use.
type Client struct {
	http      *retryablehttp.Client
	baseURL   string
	secretKey string

	mu        sync.Mutex
	simulated map[string]types.SubscriptionPlan // reference -> plan, simulation mode only
}

// New builds a gateway client. An empty secretKey selects simulation mode.
func New(baseURL, secretKey string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.Logger = nil

	return &Client{
		http:      rc,
		baseURL:   baseURL,
		secretKey: secretKey,
		simulated: make(map[string]types.SubscriptionPlan),
	}
}

// Simulated reports whether the client fabricates charges locally.
func (c *Client) Simulated() bool {
	return c.secretKey == ""
}

// Initialize starts a checkout for the given plan. In simulation mode the
// returned authorization URL is a placeholder and the reference verifies
// successfully right away.
func (c *Client) Initialize(ctx context.Context, email string, amountCents int64, plan types.SubscriptionPlan) (*Charge, error) {
	if c.Simulated() {
		reference := "sim_" + uuid.NewString()
		c.mu.Lock()
		c.simulated[reference] = plan
		c.mu.Unlock()
		return &Charge{
			Reference:        reference,
			AuthorizationURL: "https://checkout.invalid/simulated/" + reference,
			Plan:             plan,
			AmountCents:      amountCents,
		}, nil
	}

	payload, err := json.Marshal(map[string]any{
		"email":    email,
		"amount":   amountCents,
		"metadata": map[string]string{"plan": string(plan)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode charge request: %w", err)
	}

	body, err := c.post(ctx, "/transaction/initialize", payload)
	if err != nil {
		return nil, err
	}

	reference := gjson.GetBytes(body, "data.reference").String()
	authURL := gjson.GetBytes(body, "data.authorization_url").String()
	if reference == "" || authURL == "" {
		return nil, &GatewayError{Message: "initialize response missing reference or authorization_url"}
	}

	return &Charge{
		Reference:        reference,
		AuthorizationURL: authURL,
		Plan:             plan,
		AmountCents:      amountCents,
	}, nil
}

// Verify reports the settlement status of a previously initialized charge,
// along with the plan it was initialized for.
func (c *Client) Verify(ctx context.Context, reference string) (Status, types.SubscriptionPlan, error) {
	if c.Simulated() {
		c.mu.Lock()
		plan, ok := c.simulated[reference]
		c.mu.Unlock()
		if !ok {
			return StatusFailed, "", &UnknownReferenceError{Reference: reference}
		}
		return StatusSuccess, plan, nil
	}

	body, err := c.get(ctx, "/transaction/verify/"+reference)
	if err != nil {
		return StatusFailed, "", err
	}

	status := gjson.GetBytes(body, "data.status").String()
	plan := types.SubscriptionPlan(gjson.GetBytes(body, "data.metadata.plan").String())
	switch status {
	case "success":
		return StatusSuccess, plan, nil
	case "failed", "abandoned":
		return StatusFailed, plan, nil
	default:
		return StatusPending, plan, nil
	}
}

func (c *Client) post(ctx context.Context, path string, payload []byte) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.send(req)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build gateway request: %w", err)
	}
	return c.send(req)
}

func (c *Client) send(req *retryablehttp.Request) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := gjson.GetBytes(body, "message").String()
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return nil, &GatewayError{StatusCode: resp.StatusCode, Message: message}
	}
	return body, nil
}
