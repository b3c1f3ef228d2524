package porkbun

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/evanofslack/porkbun-ddns/internal/metrics"
	"github.com/evanofslack/porkbun-ddns/internal/target"
)

// Client wraps the two Porkbun DNS operations the sync loop needs. Update is
// only valid with a record ID obtained from a preceding Retrieve; the API has
// no way to edit a record that does not exist, and this client never creates
// one.
type Client interface {
	Retrieve(ctx context.Context, t target.Target) (Record, error)
	Update(ctx context.Context, t target.Target, recordID, ip string) error
}

type Httper interface {
	Do(req *http.Request) (*http.Response, error)
}

type Credentials struct {
	APIKey       string
	SecretAPIKey string
}

type client struct {
	baseURL string
	creds   Credentials
	ttl     int
	timeout time.Duration
	http    Httper
	metrics *metrics.Metrics
}

func New(baseURL string, creds Credentials, ttl int, timeout time.Duration, metrics *metrics.Metrics) Client {
	return &client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		creds:   creds,
		ttl:     ttl,
		timeout: timeout,
		http:    &http.Client{},
		metrics: metrics,
	}
}

// Retrieve fetches the current A record for the target's host. A missing
// record is not an error; it comes back as Record{Exists: false}.
func (c *client) Retrieve(ctx context.Context, t target.Target) (Record, error) {
	url := fmt.Sprintf("%s/dns/retrieveByNameType/%s/A/%s", c.baseURL, t.Domain, t.Subdomain)
	payload := authPayload{APIKey: c.creds.APIKey, SecretAPIKey: c.creds.SecretAPIKey}

	var resp retrieveResponse
	err := c.post(ctx, "retrieve", url, payload, &resp)
	c.metrics.IncAPIRequest("retrieve", err == nil)
	if err != nil {
		return Record{}, err
	}

	host := t.FQDN()
	for _, r := range resp.Records {
		if r.Type == "A" && r.Name == host {
			return Record{Exists: true, ID: r.ID, Content: r.Content}, nil
		}
	}
	return Record{Exists: false}, nil
}

// Update rewrites the record's address, keeping its name and type. recordID
// must come from a Retrieve in the same cycle.
func (c *client) Update(ctx context.Context, t target.Target, recordID, ip string) error {
	url := fmt.Sprintf("%s/dns/edit/%s/%s", c.baseURL, t.Domain, recordID)
	payload := editPayload{
		authPayload: authPayload{APIKey: c.creds.APIKey, SecretAPIKey: c.creds.SecretAPIKey},
		Name:        t.Subdomain,
		Type:        "A",
		Content:     ip,
		TTL:         strconv.Itoa(c.ttl),
	}

	var resp apiResponse
	err := c.post(ctx, "edit", url, payload, &resp)
	c.metrics.IncAPIRequest("edit", err == nil)
	return err
}

func (c *client) post(ctx context.Context, op, url string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &APIError{Kind: KindTransient, Op: op, Message: fmt.Sprintf("encode payload: %v", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &APIError{Kind: KindTransient, Op: op, Message: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Kind: KindTransient, Op: op, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &APIError{Kind: KindTransient, Op: op, Message: fmt.Sprintf("read response: %v", err)}
	}

	// The API reports failures both in the HTTP status and in the JSON
	// status field, not always consistently. Pull the envelope first so the
	// message can inform classification either way.
	var envelope apiResponse
	_ = json.Unmarshal(raw, &envelope)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classify(op, resp.StatusCode, envelope.Message)
	}
	if envelope.Status != "SUCCESS" {
		return classify(op, resp.StatusCode, envelope.Message)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{Kind: KindTransient, Op: op, Message: fmt.Sprintf("decode response: %v", err)}
	}

	slog.Debug("Porkbun API request ok", "operation", op, "status", resp.StatusCode)
	return nil
}

func classify(op string, statusCode int, message string) *APIError {
	if message == "" {
		message = fmt.Sprintf("status=%d", statusCode)
	}

	kind := KindTransient
	switch {
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		kind = KindUnauthorized
	case statusCode == http.StatusTooManyRequests:
		kind = KindRateLimited
	case strings.Contains(strings.ToLower(message), "invalid api key"):
		// Porkbun answers bad credentials with 400 and this message.
		kind = KindUnauthorized
	}
	return &APIError{Kind: kind, Op: op, Message: message}
}
