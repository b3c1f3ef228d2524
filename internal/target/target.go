package target

import (
	"fmt"
	"strings"
)

// Target is one (domain, subdomain) pair whose A record is kept in sync.
// An empty subdomain denotes the bare domain.
type Target struct {
	Domain    string
	Subdomain string
}

// FQDN returns the fully-qualified host name for the target.
func (t Target) FQDN() string {
	if t.Subdomain == "" {
		return t.Domain
	}
	return t.Subdomain + "." + t.Domain
}

// Parse builds the target set from the base domain and the comma-separated
// subdomain list. An empty list or an empty entry yields the root domain
// target. Entries that normalize to the same host collapse to one target.
func Parse(domain, subdomains string) ([]Target, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return nil, fmt.Errorf("domain must not be empty")
	}

	var targets []Target
	seen := make(map[string]bool)
	for _, sub := range strings.Split(subdomains, ",") {
		t := Target{Domain: domain, Subdomain: strings.TrimSpace(sub)}
		if seen[t.FQDN()] {
			continue
		}
		seen[t.FQDN()] = true
		targets = append(targets, t)
	}
	return targets, nil
}
