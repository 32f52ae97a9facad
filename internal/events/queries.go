package events

import (
	"time"

	"gorm.io/gorm"
)

// EventsSince retrieves events created strictly after since, ordered
// oldest first. When excludeIP is non-empty, rows from that address are
// dropped before they reach any aggregator.
func EventsSince(db *gorm.DB, since time.Time, excludeIP string) ([]Event, error) {
	query := db.Model(&Event{}).Where("created_at > ?", since)
	if excludeIP != "" {
		query = query.Where("ip_address <> ?", excludeIP)
	}

	var events []Event
	if err := query.Order("created_at ASC, id ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// LatestEvents retrieves the newest events first, capped at limit. The
// same exclusion rule as EventsSince applies.
func LatestEvents(db *gorm.DB, limit int, excludeIP string) ([]Event, error) {
	query := db.Model(&Event{})
	if excludeIP != "" {
		query = query.Where("ip_address <> ?", excludeIP)
	}

	var events []Event
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// CountEvents returns the total number of stored events.
func CountEvents(db *gorm.DB) (int64, error) {
	var total int64
	if err := db.Model(&Event{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
