package util

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewProxyFuncRouting(t *testing.T) {
	proxyFn := NewProxyFunc("http://proxy:3128", "http://secure-proxy:3128", "localhost,.internal.example.com,api.example.org")

	cases := []struct {
		name string
		url  string
		want string // "" means direct
	}{
		{"http goes through http proxy", "http://elsewhere.com/page", "http://proxy:3128"},
		{"https goes through https proxy", "https://elsewhere.com/page", "http://secure-proxy:3128"},
		{"exact no-proxy entry", "http://api.example.org/v1", ""},
		{"bare entry covers subdomains", "http://sub.api.example.org/v1", ""},
		{"dot entry covers subdomains", "https://svc.internal.example.com/", ""},
		{"dot entry excludes the apex", "https://internal.example.com/", "http://secure-proxy:3128"},
		{"port does not defeat the match", "http://localhost:11434/api/tags", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			u, err := proxyFn(req)
			if err != nil {
				t.Fatalf("proxy func: %v", err)
			}
			got := ""
			if u != nil {
				got = u.String()
			}
			if got != tc.want {
				t.Errorf("proxy for %s = %q, want %q", tc.url, got, tc.want)
			}
		})
	}
}

func TestNewProxyFuncWildcardBypassesAll(t *testing.T) {
	proxyFn := NewProxyFunc("http://proxy:3128", "", "*")

	req := httptest.NewRequest(http.MethodGet, "http://anywhere.com/", nil)
	u, err := proxyFn(req)
	if err != nil {
		t.Fatalf("proxy func: %v", err)
	}
	if u != nil {
		t.Errorf("wildcard no-proxy still routed through %v", u)
	}
}
