// Package notification delivers text messages through an HTTP SMS provider.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// SMSSender is the interface for sending SMS messages.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// ---------------------------------------------------------------------------
// HTTP provider
// ---------------------------------------------------------------------------

// ProviderConfig configures an HTTPSMSSender.
type ProviderConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// HTTPSMSSender posts {"to", "body"} JSON to a provider endpoint using a
// bearer API key.
type HTTPSMSSender struct {
	url    string
	apiKey string
	client *http.Client
}

func NewHTTPSMSSender(cfg ProviderConfig) *HTTPSMSSender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSMSSender{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: timeout},
	}
}

type smsPayload struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

// StatusError reports a non-2xx provider response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sms provider returned status %d", e.StatusCode)
}

func (s *HTTPSMSSender) SendSMS(ctx context.Context, to, body string) error {
	payload, err := json.Marshal(smsPayload{To: to, Body: body})
	if err != nil {
		return fmt.Errorf("encode sms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post sms: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Notifier
// ---------------------------------------------------------------------------

// SMSNotifier sends messages best effort: failures are logged, never
// returned.
type SMSNotifier struct {
	sender SMSSender
	log    zerolog.Logger
}

func NewSMSNotifier(sender SMSSender, logger zerolog.Logger) *SMSNotifier {
	return &SMSNotifier{
		sender: sender,
		log:    logger.With().Str("component", "sms").Logger(),
	}
}

func (n *SMSNotifier) Send(ctx context.Context, phone, body string) {
	to := MaskPhone(phone)
	if err := n.sender.SendSMS(ctx, phone, body); err != nil {
		evt := n.log.Error().Err(err).Str("to", to)
		var se *StatusError
		if errors.As(err, &se) {
			evt = evt.Int("status_code", se.StatusCode)
		}
		evt.Msg("failed to send sms")
		return
	}
	n.log.Info().Str("to", to).Msg("sms sent")
}

// MaskPhone keeps the last four characters of phone.
func MaskPhone(phone string) string {
	r := []rune(phone)
	if len(r) <= 4 {
		return phone
	}
	masked := make([]rune, len(r))
	for i := range r {
		if i < len(r)-4 {
			masked[i] = '*'
		} else {
			masked[i] = r[i]
		}
	}
	return string(masked)
}

// ---------------------------------------------------------------------------
// Test double
// ---------------------------------------------------------------------------

// SMSCall records a single call to SendSMS.
type SMSCall struct {
	To   string
	Body string
}

// MockSMSSender is a test double for SMSSender.
type MockSMSSender struct {
	mu         sync.Mutex
	calls      []SMSCall
	ShouldFail bool
	FailError  string
}

// SendSMS records the call and optionally returns an error.
func (m *MockSMSSender) SendSMS(_ context.Context, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, SMSCall{To: to, Body: body})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded SMS calls.
func (m *MockSMSSender) Calls() []SMSCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SMSCall, len(m.calls))
	copy(out, m.calls)
	return out
}
