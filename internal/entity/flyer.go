package entity

import (
	"time"

	"github.com/google/uuid"
)

// FlyerSubmission is one inbound flyer image plus its sender identity.
// It is transient: the pipeline turns it into a Flyer row and a stored artifact.
type FlyerSubmission struct {
	ID            uuid.UUID
	SourceContact string
	ImageData     []byte
	MimeType      string
	ReceivedAt    time.Time
}

// Flyer represents one persisted flyer submission for data transfer between layers.
type Flyer struct {
	ID              int64     `json:"id"`
	MerchantName    string    `json:"merchant_name"`
	PromotionExpiry *string   `json:"promotion_expiry,omitempty"`
	SourceContact   string    `json:"source_contact"`
	ArtifactPath    string    `json:"artifact_path"`
	CreatedAt       time.Time `json:"created_at"`
}
