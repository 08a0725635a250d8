package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Message describes a push notification addressed to a single device token,
// authorized by the owning app's server key.
type Message struct {
	ServerKey string
	To        string
	Title     string
	Body      string
}

// Notifier delivers push notifications to end-user devices.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the structured logger instead of
// delivering them. Used when push delivery is not configured.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification", "to", message.To, "title", message.Title, "body", message.Body)
	return nil
}

// HTTPNotifier posts FCM-style payloads to a push gateway, authorized per
// message by the tenant app's server key.
type HTTPNotifier struct {
	url    string
	client *http.Client
}

// NewHTTPNotifier constructs a push notifier with a bounded HTTP client.
func NewHTTPNotifier(url string, client *http.Client) *HTTPNotifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPNotifier{url: url, client: client}
}

type pushPayload struct {
	To           string `json:"to"`
	Notification struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	} `json:"notification"`
}

// Send posts the notification to the configured gateway.
func (n *HTTPNotifier) Send(ctx context.Context, message Message) error {
	payload := pushPayload{To: message.To}
	payload.Notification.Title = message.Title
	payload.Notification.Body = message.Body

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+message.ServerKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("push gateway returned %d", resp.StatusCode)
	}
	return nil
}
