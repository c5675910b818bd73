package utils

import (
	"net"
	"net/http"
	"time"
)

var (
	// GlobalHTTPClient is shared by the translator and attachment downloads.
	GlobalHTTPClient = NewHTTPClient(60 * time.Second)
)

// NewHTTPClient returns a pooled client whose requests give up after timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConnsPerHost:   10,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
