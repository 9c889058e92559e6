// Package notify delivers best-effort Slack messages over incoming
// webhooks. Delivery failures are logged and never reach the caller;
// nothing here is allowed to fail a poll operation.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bookclub/bookpoll/logger"
)

var client = &http.Client{
	Timeout: time.Second * 10,
}

type Message struct {
	WebhookUrl string
	Channel    string
	Username   string
	Text       string
}

type payload struct {
	Text     string `json:"text"`
	Channel  string `json:"channel,omitempty"`
	Username string `json:"username,omitempty"`
}

// Render substitutes {name} placeholders in a message template.
func Render(template string, vars map[string]string) string {
	out := template
	for k, v := range vars {
		out = strings.ReplaceAll(out, "{"+k+"}", v)
	}
	return out
}

// Post sends the message synchronously. Groups without a webhook are
// skipped silently.
func Post(m Message) error {
	if m.WebhookUrl == "" || m.Text == "" {
		return nil
	}

	body, err := json.Marshal(payload{Text: m.Text, Channel: m.Channel, Username: m.Username})
	if err != nil {
		return err
	}

	response, err := client.Post(m.WebhookUrl, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer func() {
		if response.Body != nil {
			_ = response.Body.Close()
		}
	}()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned status %d", response.StatusCode)
	}
	return nil
}

// Async fires the message on its own goroutine. No retries.
func Async(m Message) {
	go func() {
		if err := Post(m); err != nil {
			logger.Err().Printf("Unable to deliver notification: %s", err.Error())
		}
	}()
}
