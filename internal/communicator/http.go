package communicator

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"os"

	"github.com/bilal/solar-monitor/internal/config"
)

// response bodies are only logged, keep them short
const maxResponseBody = 64 << 10

// HTTPTransport POSTs the payload to a fixed endpoint.
type HTTPTransport struct {
	endpoint string
	client   *http.Client
	token    string
}

func NewHTTPTransport(cfg config.AgentConfig) *HTTPTransport {
	tlsCfg := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}
	// the exchange deadline comes from the request context
	client := &http.Client{
		Transport: &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: tlsCfg,
		},
	}

	token := ""
	if cfg.BackendAuthTokenEnv != "" {
		token = os.Getenv(cfg.BackendAuthTokenEnv)
	}

	return &HTTPTransport{
		endpoint: cfg.BackendURL,
		client:   client,
		token:    token,
	}
}

func (t *HTTPTransport) Name() string { return "http" }

func (t *HTTPTransport) Send(ctx context.Context, correlationID string, payload []byte) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
	if correlationID != "" {
		req.Header.Set("X-Correlation-ID", correlationID)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return Response{Status: resp.StatusCode}, err
	}
	return Response{Status: resp.StatusCode, Body: body}, nil
}

func (t *HTTPTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}
