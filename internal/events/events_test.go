package events_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackline/internal/events"
	"trackline/internal/testsupport"
)

func TestCollectEvent(t *testing.T) {
	dbManager, logger := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()

	input := &events.CollectEventInput{
		EventName: events.EventPageview,
		Path:      "/pricing",
		SessionID: "session-1",
		Metadata:  map[string]interface{}{"variant": "variant_a"},
		IPAddress: "203.0.113.7",
		UserAgent: "Mozilla/5.0 Test Browser",
	}
	require.NoError(t, events.CollectEvent(dbManager, logger, input))

	var stored events.Event
	require.NoError(t, db.First(&stored).Error)

	assert.Equal(t, events.EventPageview, stored.EventName)
	assert.Equal(t, "/pricing", stored.Path)
	assert.Equal(t, "session-1", stored.SessionID)
	assert.Equal(t, "203.0.113.7", stored.IPAddress)
	assert.Equal(t, "variant_a", events.VariantFromMetadata(stored.Metadata))
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestCollectEventValidation(t *testing.T) {
	dbManager, logger := testsupport.SetupTestDBManager(t)

	t.Run("Missing event name", func(t *testing.T) {
		err := events.CollectEvent(dbManager, logger, &events.CollectEventInput{Path: "/"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "event name is required")
	})

	t.Run("Missing path", func(t *testing.T) {
		err := events.CollectEvent(dbManager, logger, &events.CollectEventInput{EventName: events.EventPageview})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "path is required")
	})
}

func TestCollectEventTruncatesLongPaths(t *testing.T) {
	dbManager, logger := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()

	input := &events.CollectEventInput{
		EventName: events.EventPageview,
		Path:      "/" + strings.Repeat("a", events.MaxPathLength+500),
		IPAddress: "203.0.113.7",
	}
	require.NoError(t, events.CollectEvent(dbManager, logger, input))

	var stored events.Event
	require.NoError(t, db.First(&stored).Error)
	assert.Len(t, stored.Path, events.MaxPathLength)
}

func TestCollectEventSubstitutesUnknownAddress(t *testing.T) {
	dbManager, logger := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()

	input := &events.CollectEventInput{
		EventName: events.EventPageview,
		Path:      "/",
	}
	require.NoError(t, events.CollectEvent(dbManager, logger, input))

	var stored events.Event
	require.NoError(t, db.First(&stored).Error)
	assert.Equal(t, events.UnknownIP, stored.IPAddress)
}

func TestVariantFromMetadata(t *testing.T) {
	tests := []struct {
		name     string
		metadata string
		expected string
	}{
		{name: "Variant present", metadata: `{"variant":"variant_b"}`, expected: "variant_b"},
		{name: "Variant among other keys", metadata: `{"page":"/","variant":"variant_a"}`, expected: "variant_a"},
		{name: "No variant key", metadata: `{"page":"/"}`, expected: ""},
		{name: "Non-string variant", metadata: `{"variant":42}`, expected: ""},
		{name: "Empty metadata", metadata: "", expected: ""},
		{name: "Invalid JSON", metadata: "not-json", expected: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, events.VariantFromMetadata(tc.metadata))
		})
	}
}

func TestEventsSince(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()

	base := time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC)
	testsupport.CreateEvent(t, dbManager, events.EventPageview, "/old", "s1", "1.1.1.1", base.Add(-time.Hour))
	testsupport.CreateEvent(t, dbManager, events.EventPageview, "/boundary", "s1", "1.1.1.1", base)
	testsupport.CreateEvent(t, dbManager, events.EventPageview, "/b", "s2", "2.2.2.2", base.Add(2*time.Minute))
	testsupport.CreateEvent(t, dbManager, events.EventPageview, "/a", "s1", "1.1.1.1", base.Add(time.Minute))

	result, err := events.EventsSince(db, base, "")
	require.NoError(t, err)

	require.Len(t, result, 2, "boundary events are excluded, the lower bound is strict")
	assert.Equal(t, "/a", result[0].Path, "results come back oldest first")
	assert.Equal(t, "/b", result[1].Path)
}

func TestEventsSinceExcludesAddress(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()

	base := time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC)
	testsupport.CreateEvent(t, dbManager, events.EventPageview, "/", "s1", "9.9.9.9", base.Add(time.Minute))
	testsupport.CreateEvent(t, dbManager, events.EventPageview, "/", "s2", "1.1.1.1", base.Add(2*time.Minute))

	result, err := events.EventsSince(db, base, "9.9.9.9")
	require.NoError(t, err)

	require.Len(t, result, 1)
	assert.Equal(t, "1.1.1.1", result[0].IPAddress)
}

func TestLatestEvents(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()

	base := time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		testsupport.CreateEvent(t, dbManager, events.EventPageview, "/", "s1", "1.1.1.1", base.Add(time.Duration(i)*time.Minute))
	}

	result, err := events.LatestEvents(db, 3, "")
	require.NoError(t, err)

	require.Len(t, result, 3)
	assert.True(t, result[0].CreatedAt.After(result[1].CreatedAt), "results come back newest first")
	assert.True(t, result[1].CreatedAt.After(result[2].CreatedAt))
}
