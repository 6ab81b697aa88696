// Package transport adapts the messaging gateway to the pipeline. The
// gateway itself (WhatsApp session, QR pairing) is an external collaborator;
// only its event and send contracts live here.
package transport

import "context"

// Event is one inbound message as the gateway delivers it.
type Event struct {
	Body      string `json:"body"`
	HasMedia  bool   `json:"has_media"`
	MediaType string `json:"media_type"`
	From      string `json:"from"`
	Media     *Media `json:"media,omitempty"`
}

// Media is the downloaded attachment of an event.
type Media struct {
	Data     []byte `json:"data"`
	MimeType string `json:"mimetype"`
}

// MediaDownloader models the gateway's downloadMedia operation.
type MediaDownloader interface {
	DownloadMedia(ctx context.Context, ev Event) (Media, error)
}

// Replier sends a text back to the chat an event came from.
type Replier interface {
	Reply(ctx context.Context, to, text string) error
}

// Sender pushes a text to an arbitrary chat (used by the audit log sink).
type Sender interface {
	Send(ctx context.Context, chatID, text string) error
}
