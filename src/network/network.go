package network

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"nepse-gateway/src/logger"
	"nepse-gateway/src/models"
)

type Manager struct {
	Config *models.MUpstreamConfig
	Client *http.Client
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewManager(cfg *models.MUpstreamConfig, log *logger.Logger) *Manager {
	return NewManagerWithTimeout(cfg, log, time.Duration(cfg.RequestTimeout)*time.Second)
}

// -----------------------------------------------------------------------------

// NewManagerWithTimeout builds a manager with an explicit timeout. The
// snapshot updater uses this to get its generous batch timeout without a
// second config section.
func NewManagerWithTimeout(cfg *models.MUpstreamConfig, log *logger.Logger, timeout time.Duration) *Manager {
	transport := &http.Transport{}
	if cfg.InsecureSkipVerify {
		// The upstream terminates TLS with a certificate most roots reject.
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Manager{
		Config: cfg,
		Logger: log,
		Client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
}

// -----------------------------------------------------------------------------

// Get performs a GET request with retries and exponential backoff.
func (nm *Manager) Get(ctx context.Context, urlStr string, params map[string]string) ([]byte, error) {
	reqURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, err
	}

	q := reqURL.Query()
	for k, v := range params {
		q.Add(k, v)
	}
	reqURL.RawQuery = q.Encode()

	finalURL := reqURL.String()

	maxRetries := nm.Config.MaxRetries
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			select {
			case <-time.After(time.Duration(i*i) * time.Second):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, nil)
		if err != nil {
			return nil, err
		}

		if nm.Config.UserAgent != "" {
			req.Header.Set("User-Agent", nm.Config.UserAgent)
		}

		resp, err := nm.Client.Do(req)
		if err != nil {
			lastErr = err
			nm.Logger.Info("Request failed (attempt %d/%d): %v", i+1, maxRetries+1, err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("bad status: %d", resp.StatusCode)
			nm.Logger.Info("Bad status %d for %s", resp.StatusCode, finalURL)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		return body, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %v", lastErr)
}
