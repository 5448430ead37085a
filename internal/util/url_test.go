package util

import "testing"

func TestIsRedirectSafe(t *testing.T) {
	const baseURL = "http://localhost:8080"

	tests := []struct {
		name     string
		redirect string
		expected bool
	}{
		{
			name:     "Empty redirect",
			redirect: "",
			expected: true,
		},
		{
			name:     "Relative path",
			redirect: "/reports",
			expected: true,
		},
		{
			name:     "Relative path with query",
			redirect: "/reports?tab=2",
			expected: true,
		},
		{
			name:     "Protocol-relative URL",
			redirect: "//evil.com",
			expected: false,
		},
		{
			name:     "Backslash variation",
			redirect: "/\\evil.com",
			expected: false,
		},
		{
			name:     "Absolute URL same host",
			redirect: "http://localhost:8080/reports",
			expected: true,
		},
		{
			name:     "Absolute URL other host",
			redirect: "https://attacker.com/phishing",
			expected: false,
		},
		{
			name:     "Javascript scheme",
			redirect: "javascript:alert(1)",
			expected: false,
		},
		{
			name:     "Data scheme",
			redirect: "data:text/html,x",
			expected: false,
		},
		{
			name:     "Header injection",
			redirect: "/reports\r\nSet-Cookie: evil=1",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRedirectSafe(tt.redirect, baseURL); got != tt.expected {
				t.Errorf("IsRedirectSafe(%q) = %v, want %v", tt.redirect, got, tt.expected)
			}
		})
	}
}

func TestCallbackURL(t *testing.T) {
	tests := []struct {
		name     string
		override string
		scheme   string
		host     string
		expected string
	}{
		{
			name:     "Override wins",
			override: "https://example.com/callback",
			scheme:   "http",
			host:     "localhost:8080",
			expected: "https://example.com/callback",
		},
		{
			name:     "Derived from request",
			scheme:   "https",
			host:     "twingo.example.com",
			expected: "https://twingo.example.com/callback",
		},
		{
			name:     "Missing scheme defaults to http",
			host:     "localhost:8080",
			expected: "http://localhost:8080/callback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CallbackURL(tt.override, tt.scheme, tt.host, "/callback")
			if got != tt.expected {
				t.Errorf("CallbackURL() = %q, want %q", got, tt.expected)
			}
		})
	}
}
