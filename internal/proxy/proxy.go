// Package proxy builds the outbound HTTP client, optionally tunnelled
// through a SOCKS5 proxy for locked-down retail networks.
package proxy

import (
	"context"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/proxy"
)

// NewHTTPClient returns a client for outbound collaborator calls. An
// empty socksAddr means a direct connection.
func NewHTTPClient(socksAddr string, timeout time.Duration) (*http.Client, error) {
	client := &http.Client{Timeout: timeout}
	if socksAddr == "" {
		return client, nil
	}

	dialer, err := proxy.SOCKS5("tcp", socksAddr, nil, proxy.Direct)
	if err != nil {
		return nil, err
	}
	client.Transport = &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		},
	}
	return client, nil
}
