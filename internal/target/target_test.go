package target

import (
	"reflect"
	"testing"
)

func TestFQDN(t *testing.T) {
	tests := []struct {
		name     string
		target   Target
		expected string
	}{
		{
			name:     "root domain",
			target:   Target{Domain: "example.com"},
			expected: "example.com",
		},
		{
			name:     "subdomain",
			target:   Target{Domain: "example.com", Subdomain: "www"},
			expected: "www.example.com",
		},
		{
			name:     "nested subdomain",
			target:   Target{Domain: "example.com", Subdomain: "a.b"},
			expected: "a.b.example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.target.FQDN(); got != tt.expected {
				t.Errorf("FQDN() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		domain      string
		subdomains  string
		expected    []Target
		expectError bool
	}{
		{
			name:       "empty subdomain list yields root target",
			domain:     "example.com",
			subdomains: "",
			expected: []Target{
				{Domain: "example.com"},
			},
		},
		{
			name:       "leading empty entry yields root plus subdomains",
			domain:     "example.com",
			subdomains: ",www,blog",
			expected: []Target{
				{Domain: "example.com"},
				{Domain: "example.com", Subdomain: "www"},
				{Domain: "example.com", Subdomain: "blog"},
			},
		},
		{
			name:       "entries are trimmed",
			domain:     "example.com",
			subdomains: " www , blog ",
			expected: []Target{
				{Domain: "example.com", Subdomain: "www"},
				{Domain: "example.com", Subdomain: "blog"},
			},
		},
		{
			name:       "duplicate hosts collapse",
			domain:     "example.com",
			subdomains: "www,www, ,",
			expected: []Target{
				{Domain: "example.com", Subdomain: "www"},
				{Domain: "example.com"},
			},
		},
		{
			name:        "empty domain is an error",
			domain:      "",
			subdomains:  "www",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.domain, tt.subdomains)
			if tt.expectError {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Parse() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}
