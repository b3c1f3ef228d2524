package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/evanofslack/porkbun-ddns/internal/metrics"
)

// ErrUnreachable covers network failures, timeouts and non-2xx responses from
// the IP echo service. ErrInvalidFormat covers responses that are not a
// well-formed IPv4 address.
var (
	ErrUnreachable   = errors.New("ip echo service unreachable")
	ErrInvalidFormat = errors.New("ip echo response is not a valid IPv4 address")
)

// Resolver returns the machine's current public IPv4 address.
type Resolver interface {
	Resolve(ctx context.Context) (string, error)
}

type Httper interface {
	Do(req *http.Request) (*http.Response, error)
}

type webResolver struct {
	echoURL string
	timeout time.Duration
	http    Httper
	metrics *metrics.Metrics
}

// New builds a resolver that queries a public IP echo endpoint. The endpoint
// must return the caller's address as the response body. Every call is bounded
// by the given timeout so a stalled lookup cannot block the sync loop.
func New(echoURL string, timeout time.Duration, metrics *metrics.Metrics) Resolver {
	return &webResolver{
		echoURL: echoURL,
		timeout: timeout,
		http:    &http.Client{},
		metrics: metrics,
	}
}

func (r *webResolver) Resolve(ctx context.Context) (string, error) {
	ip, err := r.lookup(ctx)
	r.metrics.IncIPLookup(err == nil)
	return ip, err
}

func (r *webResolver) lookup(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.echoURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %w", ErrUnreachable, err)
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := r.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status=%d", ErrUnreachable, resp.StatusCode)
	}

	// An IPv4 dotted-quad is at most 15 bytes; anything much larger is not
	// an address no matter what it parses as.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %w", ErrUnreachable, err)
	}

	raw := strings.TrimSpace(string(body))
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, raw)
	}
	if !addr.Is4() {
		return "", fmt.Errorf("%w: %q is not IPv4", ErrInvalidFormat, raw)
	}

	slog.Debug("Resolved public IP", "ip", addr.String())
	return addr.String(), nil
}
