// Package gateway delivers outbound SMS. HTTPSender posts to the provider,
// LogSender stands in when no provider is configured, and BreakerSender
// guards the provider with a circuit breaker.
package gateway

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

	"ridergate/internal/sms/models"
)

const maxResponseBytes = 64 << 10

// ErrGateway marks provider-side failures (transport errors and 5xx) that
// count against the circuit breaker.
var ErrGateway = errors.New("sms gateway failure")

// HTTPSender posts one JSON message per request to the provider.
type HTTPSender struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

func NewHTTPSender(url, apiKey string, timeout time.Duration) *HTTPSender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSender{
		url:        strings.TrimRight(url, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type sendPayload struct {
	To      string `json:"to"`
	From    string `json:"from"`
	SMS     string `json:"sms"`
	Type    string `json:"type"`
	Channel string `json:"channel"`
	APIKey  string `json:"api_key"`
}

type sendResponse struct {
	Code      string `json:"code"`
	MessageID string `json:"message_id"`
}

// Send returns a receipt for any answer the provider gave, accepted or not.
// It returns an error wrapping ErrGateway only when the provider could not
// be reached or failed server-side.
func (s *HTTPSender) Send(ctx context.Context, msg models.Outgoing) (*models.Receipt, error) {
	body, err := json.Marshal(sendPayload{
		To:      msg.To,
		From:    msg.From,
		SMS:     msg.Body,
		Type:    "plain",
		Channel: "generic",
		APIKey:  s.apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("encode sms payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGateway, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrGateway, err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: status %d", ErrGateway, resp.StatusCode)
	}

	receipt := &models.Receipt{Raw: string(raw)}
	var decoded sendResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		// A non-JSON 4xx is still an answer: the message was refused.
		return receipt, nil
	}
	receipt.Accepted = resp.StatusCode < http.StatusMultipleChoices && decoded.Code == "ok"
	receipt.MessageID = decoded.MessageID
	return receipt, nil
}
