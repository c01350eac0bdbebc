package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Notifier posts error reports to a Slack incoming webhook. A nil or
// unconfigured notifier silently drops reports, and a failed delivery is
// logged but never surfaced: reporting an error must not mask the original
// error.
type Notifier struct {
	webhookURL string
	http       *retryablehttp.Client
}

// New constructs a notifier for the given webhook URL. An empty URL disables
// delivery.
func New(webhookURL string) *Notifier {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.HTTPClient.Timeout = 10 * time.Second
	rc.Logger = nil
	return &Notifier{webhookURL: webhookURL, http: rc}
}

// Error reports an error with optional context fields.
func (n *Notifier) Error(ctx context.Context, errType, message string, fields map[string]string) {
	if n == nil || n.webhookURL == "" {
		return
	}

	text := fmt.Sprintf(":rotating_light: *%s*\n%s", errType, message)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		text += fmt.Sprintf("\n> %s: %s", k, fields[k])
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		log.Printf("notify: encoding payload: %v", err)
		return
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(payload))
	if err != nil {
		log.Printf("notify: building request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		log.Printf("notify: delivering report: %v", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("notify: webhook returned HTTP %d", resp.StatusCode)
	}
}
