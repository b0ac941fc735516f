package engine

import (
	"context"
	"log/slog"
	"net/http"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
)

// Re-export stealth types and functions for engine consumers.
type (
	RetryConfig   = stealth.RetryConfig
	BrowserClient = stealth.BrowserClient
)

var DefaultRetryConfig = stealth.DefaultRetryConfig

func ChromeHeaders() map[string]string { return stealth.ChromeHeaders() }
func RandomUserAgent() string          { return stealth.RandomUserAgent() }
func IsRetryableStatus(code int) bool  { return stealth.IsRetryableStatus(code) }

func RetryHTTP(ctx context.Context, rc stealth.RetryConfig, fn func() (*http.Response, error)) (*http.Response, error) {
	return stealth.RetryHTTP(ctx, rc, fn)
}

// NewBrowserClient builds the Chrome-fingerprinted fallback client. With a Webshare
// API key, requests rotate through its proxy pool; a pool failure is logged and the
// client runs direct.
func NewBrowserClient(webshareAPIKey string) (*BrowserClient, error) {
	var opts []stealth.ClientOption
	opts = append(opts, stealth.WithTimeout(15))

	if webshareAPIKey != "" {
		pool, err := proxypool.NewWebshare(webshareAPIKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}
	return stealth.NewClient(opts...)
}
