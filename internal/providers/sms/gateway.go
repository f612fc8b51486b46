package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	obstracing "github.com/smallbiznis/netbill/internal/observability/tracing"
)

const defaultTimeout = 10 * time.Second

var ErrEmptyPhone = errors.New("empty_phone")

type Config struct {
	URL     string
	APIKey  string
	Sender  string
	Timeout time.Duration
}

// GatewayProvider posts messages to an HTTP SMS gateway as JSON.
type GatewayProvider struct {
	cfg        Config
	httpClient *http.Client
}

type sendRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
}

func NewGateway(cfg Config) *GatewayProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &GatewayProvider{
		cfg:        cfg,
		httpClient: obstracing.WrapHTTPClient(&http.Client{Timeout: timeout}),
	}
}

func (p *GatewayProvider) Send(ctx context.Context, phone string, text string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ErrEmptyPhone
	}

	payload, err := json.Marshal(sendRequest{From: p.cfg.Sender, To: phone, Text: text})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms gateway returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return nil
}
