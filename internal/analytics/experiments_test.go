package analytics_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackline/internal/analytics"
	"trackline/internal/events"
)

func variantEvent(eventName, sessionID, variant string) events.Event {
	metadata := ""
	if variant != "" {
		metadata = fmt.Sprintf(`{"variant":%q}`, variant)
	}
	return events.Event{
		EventName: eventName,
		Path:      "/",
		SessionID: sessionID,
		Metadata:  metadata,
		CreatedAt: time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC),
	}
}

func TestExperimentsFunnel(t *testing.T) {
	evts := []events.Event{
		variantEvent(events.EventExperimentView, "s1", "variant_a"),
		variantEvent(events.EventExperimentView, "s2", "variant_a"),
		variantEvent(events.EventConversion, "s1", "variant_a"),
		variantEvent(events.EventExperimentView, "s3", "variant_b"),
	}

	results := analytics.Experiments(evts)

	require.Len(t, results, 2)

	a := results[0]
	assert.Equal(t, "variant_a", a.Variant)
	assert.Equal(t, 2, a.Visitors)
	assert.Equal(t, 1, a.Conversions)
	assert.Equal(t, 50.0, a.ConversionRate)

	b := results[1]
	assert.Equal(t, "variant_b", b.Variant)
	assert.Equal(t, 1, b.Visitors)
	assert.Equal(t, 0, b.Conversions)
	assert.Equal(t, 0.0, b.ConversionRate)
}

func TestExperimentsDistinctSessions(t *testing.T) {
	evts := []events.Event{
		variantEvent(events.EventExperimentView, "s1", "variant_a"),
		variantEvent(events.EventExperimentView, "s1", "variant_a"),
		variantEvent(events.EventConversion, "s1", "variant_a"),
		variantEvent(events.EventClickPreorder, "s1", "variant_a"),
	}

	results := analytics.Experiments(evts)

	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Visitors, "repeated views from one session count once")
	assert.Equal(t, 1, results[0].Conversions, "conversion and preorder click from one session count once")
}

func TestExperimentsPreorderClickCountsAsConversion(t *testing.T) {
	evts := []events.Event{
		variantEvent(events.EventExperimentView, "s1", "variant_b"),
		variantEvent(events.EventClickPreorder, "s1", "variant_b"),
	}

	results := analytics.Experiments(evts)

	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Conversions)
	assert.Equal(t, 100.0, results[0].ConversionRate)
}

func TestExperimentsVariantWithoutFunnelEvents(t *testing.T) {
	// A variant tag on an unrelated event still surfaces the variant
	evts := []events.Event{
		variantEvent("pageview", "s1", "variant_c"),
	}

	results := analytics.Experiments(evts)

	require.Len(t, results, 1)
	assert.Equal(t, "variant_c", results[0].Variant)
	assert.Equal(t, 0, results[0].Visitors)
	assert.Equal(t, 0.0, results[0].ConversionRate)
}

func TestExperimentsConversionsWithoutViews(t *testing.T) {
	evts := []events.Event{
		variantEvent(events.EventConversion, "s1", "variant_a"),
		variantEvent(events.EventConversion, "s2", "variant_a"),
	}

	results := analytics.Experiments(evts)

	require.Len(t, results, 1)
	assert.Equal(t, 0, results[0].Visitors)
	assert.Equal(t, 2, results[0].Conversions)
	assert.Equal(t, 0.0, results[0].ConversionRate, "no visitors means a zero rate, never a division error")
}

func TestExperimentsSessionlessRecords(t *testing.T) {
	evts := []events.Event{
		variantEvent(events.EventExperimentView, "", "variant_a"),
		variantEvent(events.EventConversion, "", "variant_a"),
	}

	results := analytics.Experiments(evts)

	require.Len(t, results, 1)
	assert.Equal(t, 0, results[0].Visitors, "sessionless records join no distinct count")
	assert.Equal(t, 0, results[0].Conversions)
}

func TestExperimentsIgnoresUntaggedEvents(t *testing.T) {
	evts := []events.Event{
		variantEvent(events.EventExperimentView, "s1", ""),
		{EventName: events.EventPageview, Path: "/", SessionID: "s2", Metadata: "not-json"},
	}

	assert.Empty(t, analytics.Experiments(evts))
}

func TestExperimentsFirstSeenOrder(t *testing.T) {
	evts := []events.Event{
		variantEvent(events.EventExperimentView, "s1", "variant_b"),
		variantEvent(events.EventExperimentView, "s2", "variant_a"),
		variantEvent(events.EventExperimentView, "s3", "variant_b"),
	}

	results := analytics.Experiments(evts)

	require.Len(t, results, 2)
	assert.Equal(t, "variant_b", results[0].Variant)
	assert.Equal(t, "variant_a", results[1].Variant)
}
