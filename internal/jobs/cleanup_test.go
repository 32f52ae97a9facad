package jobs_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackline/internal/config"
	"trackline/internal/events"
	"trackline/internal/jobs"
	"trackline/internal/testsupport"
)

func TestCleanupJobRemovesExpiredEvents(t *testing.T) {
	dbManager, logger := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	testsupport.CleanAllTables(db)

	cfg := config.GetConfig()
	cfg.EventRetentionDays = 30

	now := time.Now().UTC()
	testsupport.CreateEvent(t, dbManager, events.EventPageview, "/old", "s1", "1.1.1.1", now.AddDate(0, 0, -45))
	testsupport.CreateEvent(t, dbManager, events.EventPageview, "/older", "s1", "1.1.1.1", now.AddDate(0, 0, -31))
	testsupport.CreateEvent(t, dbManager, events.EventPageview, "/fresh", "s2", "2.2.2.2", now.AddDate(0, 0, -5))

	job := jobs.NewCleanupJob(dbManager, logger, cfg)
	require.NoError(t, job.Run())

	var remaining []events.Event
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "/fresh", remaining[0].Path)
}

func TestCleanupJobSkipsWhenRetentionUnlimited(t *testing.T) {
	dbManager, logger := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	testsupport.CleanAllTables(db)

	cfg := config.GetConfig()
	cfg.EventRetentionDays = 0

	now := time.Now().UTC()
	testsupport.CreateEvent(t, dbManager, events.EventPageview, "/ancient", "s1", "1.1.1.1", now.AddDate(-2, 0, 0))

	job := jobs.NewCleanupJob(dbManager, logger, cfg)
	require.NoError(t, job.Run())

	var count int64
	require.NoError(t, db.Model(&events.Event{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "unlimited retention removes nothing")
}
