package join

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultTimeout    = 8 * time.Second
	idempotencyHeader = "Idempotency-Key"
	unknownError      = "Unknown error"
)

var tracer = otel.Tracer("digitalgeosciences.com/geo-web/internal/join")

// ErrEndpointNotConfigured is returned when submitting without a form endpoint.
var ErrEndpointNotConfigured = errors.New("join: form endpoint not configured")

// RejectedError carries the message returned by an endpoint that answered ok:false.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return "join: proposal rejected: " + e.Message
}

// Proposal is the payload sent to the form endpoint.
type Proposal struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Result is the decoded endpoint response.
type Result struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Client relays proposals to the third-party form endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient constructs a client for endpoint. An empty endpoint yields a client
// whose Submit always fails with ErrEndpointNotConfigured.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: strings.TrimSpace(endpoint),
		http: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// SetTimeout overrides the request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.http.Timeout = d
	}
}

// Configured reports whether an endpoint is set.
func (c *Client) Configured() bool {
	return c != nil && c.endpoint != ""
}

// Submit posts the proposal as JSON. It returns a *RejectedError when the
// endpoint answers ok:false, and a plain error for transport or decode failures.
func (c *Client) Submit(ctx context.Context, p Proposal) (res Result, err error) {
	if !c.Configured() {
		return Result{}, ErrEndpointNotConfigured
	}
	ctx, span := tracer.Start(ctx, "join.submit")
	defer func() {
		span.SetAttributes(attribute.Bool("join.ok", res.OK))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	payload, err := json.Marshal(p)
	if err != nil {
		return Result{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(idempotencyHeader, uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("join: submit: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return Result{}, fmt.Errorf("join: read response: %w", err)
	}
	var out Result
	if err := json.Unmarshal(body, &out); err != nil {
		if resp.StatusCode >= 400 {
			return Result{}, fmt.Errorf("join: status %d: %s", resp.StatusCode, drainError(body))
		}
		return Result{}, fmt.Errorf("join: decode response: %w", err)
	}
	if !out.OK {
		msg := strings.TrimSpace(out.Error)
		if msg == "" {
			msg = unknownError
		}
		return out, &RejectedError{Message: msg}
	}
	return out, nil
}

func drainError(b []byte) string {
	if len(b) > 256 {
		b = b[:256]
	}
	return strings.TrimSpace(string(b))
}
