package reconcile

import (
	"context"
	"log/slog"

	"github.com/evanofslack/porkbun-ddns/internal/metrics"
	"github.com/evanofslack/porkbun-ddns/internal/porkbun"
	"github.com/evanofslack/porkbun-ddns/internal/target"
)

// Engine runs one drift-detection pass over the target set against an
// observed public IP.
type Engine interface {
	Reconcile(ctx context.Context, observedIP string) Results
}

type engine struct {
	client  porkbun.Client
	targets []target.Target
	metrics *metrics.Metrics

	// lastApplied maps host to the address this process last confirmed at
	// the provider. Bookkeeping only: the provider's record stays the
	// source of truth and is re-fetched every cycle, so out-of-band edits
	// are always detected.
	lastApplied map[string]string
}

func NewEngine(client porkbun.Client, targets []target.Target, metrics *metrics.Metrics) *engine {
	return &engine{
		client:      client,
		targets:     targets,
		metrics:     metrics,
		lastApplied: make(map[string]string),
	}
}

// Reconcile fetches each target's record and edits it when the stored address
// differs from observedIP. Targets are handled independently: one failing
// never aborts the rest, and there is no retry inside the cycle. Missing
// records are skipped, never created.
func (e *engine) Reconcile(ctx context.Context, observedIP string) Results {
	results := Results{}

	for _, t := range e.targets {
		host := t.FQDN()

		record, err := e.client.Retrieve(ctx, t)
		if err != nil {
			e.logAPIError("retrieve", host, err)
			results.Failures = append(results.Failures, Failure{Host: host, Op: "retrieve", Error: err.Error()})
			continue
		}

		if !record.Exists {
			slog.Warn("No existing A record; skipping, create it manually at the provider", "host", host)
			results.Missing = append(results.Missing, host)
			continue
		}

		if prev, ok := e.lastApplied[host]; ok && prev != record.Content {
			slog.Info("Record changed out of band since last sync", "host", host, "applied", prev, "found", record.Content)
		}

		if record.Content == observedIP {
			slog.Debug("Record matches current IP, no change", "host", host, "ip", observedIP)
			e.lastApplied[host] = record.Content
			results.Unchanged = append(results.Unchanged, host)
			continue
		}

		if err := e.client.Update(ctx, t, record.ID, observedIP); err != nil {
			e.logAPIError("edit", host, err)
			e.metrics.IncRecordUpdate(host, false)
			results.Failures = append(results.Failures, Failure{Host: host, Op: "edit", Error: err.Error()})
			// lastApplied stays untouched; the drift persists and the
			// next cycle retries naturally.
			continue
		}

		slog.Info("Updated A record", "host", host, "old", record.Content, "new", observedIP)
		e.metrics.IncRecordUpdate(host, true)
		e.lastApplied[host] = observedIP
		results.Updated = append(results.Updated, Change{Host: host, Old: record.Content, New: observedIP})
	}

	return results
}

func (e *engine) logAPIError(op, host string, err error) {
	switch {
	case porkbun.IsUnauthorized(err):
		// Recurs every cycle until the operator fixes the credentials;
		// keep it loud but never fatal.
		slog.Error("Porkbun rejected credentials", "operation", op, "host", host, "error", err)
	case porkbun.IsRateLimited(err):
		slog.Warn("Porkbun rate limit hit, target skipped until next cycle", "operation", op, "host", host)
	default:
		slog.Error("Porkbun request failed", "operation", op, "host", host, "error", err)
	}
}
