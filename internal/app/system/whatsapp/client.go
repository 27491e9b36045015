// internal/app/system/whatsapp/client.go
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Anaastro/landing-demo/internal/domain/models"
	"go.uber.org/zap"
)

// Config holds the gateway connection settings.
type Config struct {
	APIURL    string
	APIKey    string
	AccountID string
}

// Client sends messages through the WhatsApp HTTP gateway.
type Client struct {
	apiURL    string
	apiKey    string
	accountID string
	http      *http.Client
	log       *zap.Logger
}

// New creates a new gateway client.
func New(cfg Config, log *zap.Logger) *Client {
	return &Client{
		apiURL:    strings.TrimRight(cfg.APIURL, "/"),
		apiKey:    cfg.APIKey,
		accountID: cfg.AccountID,
		http:      &http.Client{Timeout: 30 * time.Second},
		log:       log,
	}
}

// Configured reports whether every gateway setting is present. Sending is
// refused up front when it returns false.
func (c *Client) Configured() bool {
	return c.apiURL != "" && c.apiKey != "" && c.accountID != ""
}

// GatewayError is a non-2xx response from the gateway.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gateway returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gateway returned %d", e.StatusCode)
}

type sendRequest struct {
	ToNumber    string      `json:"toNumber"`
	MessageType string      `json:"messageType"`
	Content     sendContent `json:"content"`
}

type sendContent struct {
	Text     string `json:"text"`
	MediaURL string `json:"mediaUrl,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	FileName string `json:"fileName,omitempty"`
}

// Send delivers one message to a phone number (digits only, no plus).
// A non-2xx gateway response comes back as *GatewayError; transport
// failures are returned as-is.
func (c *Client) Send(ctx context.Context, toNumber, messageType string, content models.MessageContent) error {
	body, err := json.Marshal(sendRequest{
		ToNumber:    toNumber,
		MessageType: messageType,
		Content: sendContent{
			Text:     content.Text,
			MediaURL: content.MediaURL,
			MimeType: content.MimeType,
			FileName: content.FileName,
		},
	})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	url := fmt.Sprintf("%s/whatsapp/accounts/%s/messages", c.apiURL, c.accountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("x-account-id", c.accountID)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := readErrorMessage(resp.Body)
		c.log.Warn("gateway rejected message",
			zap.String("to", toNumber),
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg))
		return &GatewayError{StatusCode: resp.StatusCode, Message: msg}
	}

	// Drain so the connection can be reused.
	io.Copy(io.Discard, resp.Body)
	return nil
}

// readErrorMessage pulls a human-readable message out of an error response.
// The gateway replies with {"message": ...} or {"error": ...}; anything
// else is returned as raw text, truncated.
func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(data))
}
