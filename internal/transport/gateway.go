package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// GatewaySender posts texts to chats through the messaging gateway's send
// endpoint. It backs both replies and the audit log sink.
type GatewaySender struct {
	sendURL  string
	apiToken string
	client   *http.Client
}

func NewGatewaySender(sendURL, apiToken string) *GatewaySender {
	return &GatewaySender{
		sendURL:  sendURL,
		apiToken: apiToken,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type sendRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

func (g *GatewaySender) Send(ctx context.Context, chatID, text string) error {
	if g.sendURL == "" {
		return fmt.Errorf("gateway sender misconfigured: empty send url")
	}

	body, err := json.Marshal(sendRequest{ChatID: chatID, Text: text})
	if err != nil {
		return fmt.Errorf("encode send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.sendURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiToken)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("send to gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("gateway send error: %s", resp.Status)
	}
	return nil
}

// Reply implements Replier by sending back to the originating chat.
func (g *GatewaySender) Reply(ctx context.Context, to, text string) error {
	return g.Send(ctx, to, text)
}
