package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reserveease/internal/config"

	"github.com/rs/zerolog"
)

// ProxyClient talks to the server-side proxy that fronts the Twilio API.
// Both channels accept the same {to, message} JSON body.
type ProxyClient struct {
	baseURL            string
	smsPath            string
	whatsAppPath       string
	defaultCountryCode string
	httpClient         *http.Client
	logger             *zerolog.Logger
}

func NewProxyClient(cfg config.MessagingConfig, logger *zerolog.Logger) *ProxyClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ProxyClient{
		baseURL:            strings.TrimRight(cfg.ProxyBaseURL, "/"),
		smsPath:            cfg.SMSPath,
		whatsAppPath:       cfg.WhatsAppPath,
		defaultCountryCode: cfg.DefaultCountryCode,
		httpClient:         &http.Client{Timeout: timeout},
		logger:             logger,
	}
}

func (c *ProxyClient) SendSMS(ctx context.Context, to, message string) error {
	return c.post(ctx, c.smsPath, to, message)
}

func (c *ProxyClient) SendWhatsApp(ctx context.Context, to, message string) error {
	return c.post(ctx, c.whatsAppPath, FormatWhatsAppNumber(to, c.defaultCountryCode), message)
}

// FormatWhatsAppNumber prefixes the destination with the whatsapp: scheme
// and falls back to the default country code when the number has no "+".
func FormatWhatsAppNumber(to, defaultCountryCode string) string {
	if strings.HasPrefix(to, "+") {
		return "whatsapp:" + to
	}
	return "whatsapp:" + defaultCountryCode + to
}

type sendRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

type sendResponse struct {
	Success    bool   `json:"success"`
	MessageSID string `json:"messageSid,omitempty"`
	Error      string `json:"error,omitempty"`
}

func (c *ProxyClient) post(ctx context.Context, path, to, message string) error {
	body, err := json.Marshal(sendRequest{To: to, Message: message})
	if err != nil {
		return fmt.Errorf("encode send request: %w", err)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var payload sendResponse
		if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
			return fmt.Errorf("messaging proxy: %s (status %d)", payload.Error, resp.StatusCode)
		}
		return fmt.Errorf("messaging proxy: unexpected status %d", resp.StatusCode)
	}

	c.logger.Debug().Str("path", path).Msg("message handed to proxy")
	return nil
}
