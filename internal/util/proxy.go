package util

import (
	"net/http"
	"net/url"

	"golang.org/x/net/http/httpproxy"
)

// NewProxyFunc creates a proxy function based on configuration. When
// neither proxy URL is set the environment (HTTP_PROXY, HTTPS_PROXY,
// NO_PROXY) decides. An https proxy left empty inherits the http one.
// Hosts matching noProxy (comma-separated hosts, domains, CIDRs, "*")
// and loopback addresses always connect directly.
func NewProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	if httpsProxy == "" {
		httpsProxy = httpProxy
	}
	proxyForURL := (&httpproxy.Config{
		HTTPProxy:  httpProxy,
		HTTPSProxy: httpsProxy,
		NoProxy:    noProxy,
	}).ProxyFunc()

	return func(req *http.Request) (*url.URL, error) {
		return proxyForURL(req.URL)
	}
}
