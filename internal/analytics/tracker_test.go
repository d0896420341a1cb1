package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkclone9/portfolio-server/pkg/models"
)

func TestAnonymizeAddr(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{"192.168.1.42", "192.168.1.0"},
		{"10.0.0.1", "10.0.0.0"},
		{"255.255.255.255", "255.255.255.0"},
		{"not-an-ip-address", "not-an-i..."},
		{"2001:db8::1", "2001:..."},
		{"", "..."},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			if got := AnonymizeAddr(tt.addr); got != tt.want {
				t.Errorf("AnonymizeAddr(%q) = %q, want %q", tt.addr, got, tt.want)
			}
		})
	}
}

func TestTrack_RequiresResource(t *testing.T) {
	tr := NewTracker(0)
	_, err := tr.Track(models.AnalyticsEvent{Type: models.EventView})
	require.Error(t, err)
}

func TestTrack_RejectsUnknownType(t *testing.T) {
	tr := NewTracker(0)
	_, err := tr.Track(models.AnalyticsEvent{Type: "hover", Resource: "project"})
	require.Error(t, err)
}

func TestTrack_AssignsIDAndTimestamp(t *testing.T) {
	tr := NewTracker(0)
	event, err := tr.Track(models.AnalyticsEvent{
		Type:           models.EventView,
		Resource:       "project",
		ResourceID:     "p1",
		AnonymizedAddr: "1.2.3.4",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.Timestamp.IsZero())
	assert.Equal(t, "1.2.3.0", event.AnonymizedAddr)
	assert.Equal(t, int64(1), tr.TotalViews())
}

func TestTrack_CapacityEviction(t *testing.T) {
	tr := NewTracker(3)
	for i := 0; i < 5; i++ {
		_, err := tr.Track(models.AnalyticsEvent{
			Type:       models.EventClick,
			Resource:   "project",
			ResourceID: fmt.Sprintf("p%d", i),
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, tr.EventCount())
}

func TestRecentRings_MoveToFrontAndEvict(t *testing.T) {
	tr := NewTracker(0)
	for i := 0; i < 12; i++ {
		_, err := tr.Track(models.AnalyticsEvent{
			Type:       models.EventView,
			Resource:   "project",
			ResourceID: fmt.Sprintf("p%d", i),
		})
		require.NoError(t, err)
	}

	recent := tr.RecentProjects()
	require.Len(t, recent, 10)
	assert.Equal(t, "p11", recent[0])
	assert.Equal(t, "p2", recent[9])

	// Revisiting an existing entry moves it to the front without growing.
	_, err := tr.Track(models.AnalyticsEvent{
		Type:       models.EventView,
		Resource:   "project",
		ResourceID: "p5",
	})
	require.NoError(t, err)
	recent = tr.RecentProjects()
	require.Len(t, recent, 10)
	assert.Equal(t, "p5", recent[0])
}

func TestRecentReferrers_Deduplicated(t *testing.T) {
	tr := NewTracker(0)
	referrers := []string{
		"https://news.ycombinator.com/item?id=1",
		"https://news.ycombinator.com/item?id=2",
		"https://google.com/search",
	}
	for _, ref := range referrers {
		_, err := tr.Track(models.AnalyticsEvent{
			Type:     models.EventView,
			Resource: "project",
			Referrer: ref,
		})
		require.NoError(t, err)
	}

	domains := tr.RecentReferrers()
	assert.Equal(t, []string{"google.com", "news.ycombinator.com"}, domains)
}

func TestPopular_Ordering(t *testing.T) {
	tr := NewTracker(0)
	for i := 0; i < 3; i++ {
		_, err := tr.Track(models.AnalyticsEvent{
			Type:       models.EventView,
			Resource:   "project",
			ResourceID: "p1",
		})
		require.NoError(t, err)
	}
	_, err := tr.Track(models.AnalyticsEvent{
		Type:       models.EventView,
		Resource:   "project",
		ResourceID: "p2",
	})
	require.NoError(t, err)

	ranked, err := tr.Popular("projects", 10, "all")
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "p1", ranked[0].ResourceID)
	assert.Equal(t, 3, ranked[0].Count)
	assert.Equal(t, "p2", ranked[1].ResourceID)
	assert.Equal(t, 1, ranked[1].Count)
}

func TestPopular_TiesByRecency(t *testing.T) {
	base := time.Now().UTC()
	tr := NewTracker(0)
	clock := base
	tr.now = func() time.Time { return clock }

	clock = base
	_, err := tr.Track(models.AnalyticsEvent{Type: models.EventView, Resource: "skill", ResourceID: "old"})
	require.NoError(t, err)

	clock = base.Add(time.Minute)
	_, err = tr.Track(models.AnalyticsEvent{Type: models.EventView, Resource: "skill", ResourceID: "new"})
	require.NoError(t, err)

	ranked, err := tr.Popular("skills", 10, "all")
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "new", ranked[0].ResourceID)
	assert.Equal(t, "old", ranked[1].ResourceID)
}

func TestPopular_LimitAndRange(t *testing.T) {
	base := time.Now().UTC()
	tr := NewTracker(0)
	clock := base.Add(-48 * time.Hour)
	tr.now = func() time.Time { return clock }

	// Old event falls outside the "day" range.
	_, err := tr.Track(models.AnalyticsEvent{Type: models.EventView, Resource: "project", ResourceID: "stale"})
	require.NoError(t, err)

	clock = base
	_, err = tr.Track(models.AnalyticsEvent{Type: models.EventView, Resource: "project", ResourceID: "fresh"})
	require.NoError(t, err)

	ranked, err := tr.Popular("projects", 10, "day")
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "fresh", ranked[0].ResourceID)
}

func TestPopular_InvalidRange(t *testing.T) {
	tr := NewTracker(0)
	_, err := tr.Popular("projects", 10, "decade")
	require.Error(t, err)
}

func TestStats_Aggregation(t *testing.T) {
	tr := NewTracker(0)
	events := []models.AnalyticsEvent{
		{Type: models.EventView, Resource: "project", ResourceID: "p1"},
		{Type: models.EventView, Resource: "project", ResourceID: "p1"},
		{Type: models.EventClick, Resource: "skill", ResourceID: "go"},
		{Type: models.EventContact, Resource: "contact"},
	}
	for _, ev := range events {
		_, err := tr.Track(ev)
		require.NoError(t, err)
	}

	report, err := tr.Stats("all", "")
	require.NoError(t, err)
	assert.Equal(t, 4, report.TotalEvents)
	assert.Equal(t, 2, report.ByType["view"])
	assert.Equal(t, 1, report.ByType["click"])
	assert.Equal(t, 2, report.ByResource["project"])
	require.NotEmpty(t, report.TopResources)
	assert.Equal(t, "p1", report.TopResources[0].ResourceID)
	assert.Equal(t, 2, report.TopResources[0].Count)
}

func TestStats_TypeFilter(t *testing.T) {
	tr := NewTracker(0)
	_, err := tr.Track(models.AnalyticsEvent{Type: models.EventView, Resource: "project"})
	require.NoError(t, err)
	_, err = tr.Track(models.AnalyticsEvent{Type: models.EventClick, Resource: "project"})
	require.NoError(t, err)

	report, err := tr.Stats("all", models.EventClick)
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalEvents)
	assert.Zero(t, report.ByType["view"])
}
