package events

import "time"

// Sentinel values in stored events
const (
	// UnknownIP is recorded when no client address could be determined.
	UnknownIP = "unknown"

	// MaxPathLength is the longest path stored verbatim; anything longer
	// is truncated before the write.
	MaxPathLength = 2000

	// MetadataVariantKey is the reserved metadata key carrying the
	// experiment variant assignment.
	MetadataVariantKey = "variant"
)

// Well-known event names produced by the tracking SDK.
const (
	EventPageview       = "pageview"
	EventExperimentView = "experiment_view"
	EventConversion     = "conversion"
	EventClickPreorder  = "click_preorder"
)

// Event is a single row in the append-only event log. Rows are never
// updated after insertion.
type Event struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EventName string    `gorm:"index;not null" json:"event_name"`
	Path      string    `gorm:"size:2000;not null" json:"path"`
	SessionID string    `gorm:"index" json:"session_id"`
	IPAddress string    `gorm:"index" json:"ip_address"`
	Country   string    `json:"country"`
	UserAgent string    `json:"user_agent"`
	Metadata  string    `gorm:"type:text" json:"metadata"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
