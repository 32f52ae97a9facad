package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/karloscodes/cartridge"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"
)

// CollectEventInput defines the input required to record an event.
type CollectEventInput struct {
	EventName string
	Path      string
	SessionID string
	Metadata  map[string]interface{}
	IPAddress string
	UserAgent string
	Country   string
}

// CollectEvent appends a single event to the log. The caller is
// responsible for bot filtering and field validation; this only
// normalizes and writes.
func CollectEvent(dbManager cartridge.DBManager, logger *slog.Logger, input *CollectEventInput) error {
	event, err := prepareEvent(input)
	if err != nil {
		logger.Error("Failed to prepare event", slog.Any("error", err))
		return err
	}

	db := dbManager.GetConnection()
	err = sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Create(event).Error
	})
	if err != nil {
		logger.Error("Failed to store event", slog.Any("error", err))
		return fmt.Errorf("failed to store event: %w", err)
	}

	return nil
}

// prepareEvent normalizes input into a storable Event row.
func prepareEvent(input *CollectEventInput) (*Event, error) {
	if input.EventName == "" {
		return nil, fmt.Errorf("event name is required")
	}
	if input.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	path := input.Path
	if len(path) > MaxPathLength {
		path = path[:MaxPathLength]
	}

	metadata := ""
	if len(input.Metadata) > 0 {
		raw, err := json.Marshal(input.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to encode metadata: %w", err)
		}
		metadata = string(raw)
	}

	ip := input.IPAddress
	if ip == "" {
		ip = UnknownIP
	}

	country := input.Country
	if country == "" {
		country = GetCountryFromIP(ip)
	}

	return &Event{
		EventName: input.EventName,
		Path:      path,
		SessionID: input.SessionID,
		IPAddress: ip,
		Country:   country,
		UserAgent: input.UserAgent,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// VariantFromMetadata extracts the experiment variant from stored
// metadata JSON. Returns "" when the key is absent or unreadable.
func VariantFromMetadata(metadata string) string {
	if metadata == "" {
		return ""
	}
	var metadataMap map[string]interface{}
	if err := json.Unmarshal([]byte(metadata), &metadataMap); err != nil {
		return ""
	}
	if val, ok := metadataMap[MetadataVariantKey].(string); ok {
		return val
	}
	return ""
}
