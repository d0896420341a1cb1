// Package analytics keeps an append-only interaction log plus rolling
// "recently seen" and "most popular" rankings, all in memory.
package analytics

import (
	"fmt"
	"net"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/darkclone9/portfolio-server/pkg/models"
)

const (
	// recentRingSize caps the per-kind recently-seen and referrer rings.
	recentRingSize = 10

	// DefaultCapacity bounds the in-memory event log. Zero means unbounded,
	// matching the original behavior.
	DefaultCapacity = 10000

	// redactionMarker is appended to truncated non-IPv4 caller addresses.
	redactionMarker = "..."
)

// Tracker records interaction events and serves aggregate queries.
// All state is guarded by one mutex; events are immutable once stored.
type Tracker struct {
	now             func() time.Time
	events          []models.AnalyticsEvent
	recentProjects  []string
	recentSkills    []string
	recentReferrers []string
	capacity        int
	totalViews      int64
	mu              sync.Mutex
}

// NewTracker creates a tracker whose event log holds at most capacity
// events; the oldest events are evicted past that. capacity <= 0 keeps the
// log unbounded.
func NewTracker(capacity int) *Tracker {
	return &Tracker{
		capacity: capacity,
		now:      time.Now,
	}
}

// Track anonymizes, stamps, and stores an interaction event, then updates
// the rolling rankings. The event's Resource must be non-empty.
func (t *Tracker) Track(event models.AnalyticsEvent) (models.AnalyticsEvent, error) {
	if event.Resource == "" {
		return models.AnalyticsEvent{}, fmt.Errorf("analytics event requires a resource")
	}
	if !models.ValidEventType(event.Type) {
		return models.AnalyticsEvent{}, fmt.Errorf("invalid event type: %s", event.Type)
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.AnonymizedAddr != "" {
		event.AnonymizedAddr = AnonymizeAddr(event.AnonymizedAddr)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = t.now().UTC()
	}

	t.events = append(t.events, event)
	if t.capacity > 0 && len(t.events) > t.capacity {
		t.events = t.events[len(t.events)-t.capacity:]
	}

	if event.Type == models.EventView {
		t.totalViews++
	}

	if event.ResourceID != "" {
		switch event.Resource {
		case "project":
			t.recentProjects = moveToFront(t.recentProjects, event.ResourceID)
		case "skill":
			t.recentSkills = moveToFront(t.recentSkills, event.ResourceID)
		}
	}

	if domain := referrerDomain(event.Referrer); domain != "" {
		t.recentReferrers = moveToFront(t.recentReferrers, domain)
	}

	log.Debug().
		Str("type", string(event.Type)).
		Str("resource", event.Resource).
		Str("resource_id", event.ResourceID).
		Msg("Tracked analytics event")

	return event, nil
}

// AnonymizeAddr irreversibly redacts a caller address before storage. IPv4
// addresses have their last octet zeroed; anything else is truncated to half
// length with a redaction marker appended.
func AnonymizeAddr(addr string) string {
	if ip := net.ParseIP(addr); ip != nil {
		if ip4 := ip.To4(); ip4 != nil {
			return fmt.Sprintf("%d.%d.%d.0", ip4[0], ip4[1], ip4[2])
		}
	}
	half := len(addr) / 2
	return addr[:half] + redactionMarker
}

// moveToFront puts id at the front of ring, deduplicating and evicting the
// least recent entry past the ring capacity. Linear scan is fine at size 10.
func moveToFront(ring []string, id string) []string {
	out := make([]string, 0, recentRingSize)
	out = append(out, id)
	for _, existing := range ring {
		if existing == id {
			continue
		}
		out = append(out, existing)
		if len(out) == recentRingSize {
			break
		}
	}
	return out
}

// referrerDomain extracts the host portion of a referrer URL.
func referrerDomain(referrer string) string {
	if referrer == "" {
		return ""
	}
	s := referrer
	if idx := strings.Index(s, "://"); idx >= 0 {
		s = s[idx+3:]
	}
	if idx := strings.IndexAny(s, "/?#"); idx >= 0 {
		s = s[:idx]
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// RecentProjects returns the most recently interacted project IDs, newest first.
func (t *Tracker) RecentProjects() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.recentProjects...)
}

// RecentSkills returns the most recently interacted skill IDs, newest first.
func (t *Tracker) RecentSkills() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.recentSkills...)
}

// RecentReferrers returns the deduplicated recent referrer domains.
func (t *Tracker) RecentReferrers() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.recentReferrers...)
}

// TotalViews returns the running view counter.
func (t *Tracker) TotalViews() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalViews
}

// EventCount returns the number of events currently held in the log.
func (t *Tracker) EventCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.events)
}

// Snapshot summarizes the tracker state for diagnostics endpoints.
func (t *Tracker) Snapshot() map[string]any {
	t.mu.Lock()
	defer t.mu.Unlock()
	return map[string]any{
		"events":           len(t.events),
		"capacity":         t.capacity,
		"total_views":      t.totalViews,
		"recent_projects":  append([]string(nil), t.recentProjects...),
		"recent_skills":    append([]string(nil), t.recentSkills...),
		"recent_referrers": append([]string(nil), t.recentReferrers...),
	}
}

// ResourceCount is one entry in a popularity ranking.
type ResourceCount struct {
	LastSeen   time.Time `json:"last_seen"`
	ResourceID string    `json:"resource_id"`
	Count      int       `json:"count"`
}

// Popular returns the top limit resource IDs of the given content type
// ("projects" or "skills", matched by singular form) ranked by interaction
// count descending; ties keep the most recently seen first.
func (t *Tracker) Popular(contentType string, limit int, timeRange string) ([]ResourceCount, error) {
	cutoff, err := t.cutoffFor(timeRange)
	if err != nil {
		return nil, err
	}
	singular := strings.TrimSuffix(strings.ToLower(contentType), "s")

	t.mu.Lock()
	defer t.mu.Unlock()

	counts := make(map[string]*ResourceCount)
	for i := range t.events {
		ev := &t.events[i]
		if ev.Resource != singular || ev.ResourceID == "" {
			continue
		}
		if !cutoff.IsZero() && ev.Timestamp.Before(cutoff) {
			continue
		}
		rc, ok := counts[ev.ResourceID]
		if !ok {
			rc = &ResourceCount{ResourceID: ev.ResourceID}
			counts[ev.ResourceID] = rc
		}
		rc.Count++
		if ev.Timestamp.After(rc.LastSeen) {
			rc.LastSeen = ev.Timestamp
		}
	}

	ranked := make([]ResourceCount, 0, len(counts))
	for _, rc := range counts {
		ranked = append(ranked, *rc)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].LastSeen.After(ranked[j].LastSeen)
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// Report aggregates events inside a trailing time range, optionally filtered
// by event type.
type Report struct {
	ByType       map[string]int  `json:"by_type"`
	ByResource   map[string]int  `json:"by_resource"`
	ByDay        map[string]int  `json:"by_day"`
	ByHour       map[int]int     `json:"by_hour"`
	TimeRange    string          `json:"time_range"`
	TopResources []ResourceCount `json:"top_resources"`
	TotalEvents  int             `json:"total_events"`
}

// Stats resolves the range keyword (day|week|month|year|all) to a trailing
// cutoff and aggregates matching events.
func (t *Tracker) Stats(timeRange string, typeFilter models.EventType) (*Report, error) {
	cutoff, err := t.cutoffFor(timeRange)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	report := &Report{
		ByType:     make(map[string]int),
		ByResource: make(map[string]int),
		ByDay:      make(map[string]int),
		ByHour:     make(map[int]int),
		TimeRange:  timeRange,
	}

	topByID := make(map[string]*ResourceCount)
	for i := range t.events {
		ev := &t.events[i]
		if !cutoff.IsZero() && ev.Timestamp.Before(cutoff) {
			continue
		}
		if typeFilter != "" && ev.Type != typeFilter {
			continue
		}
		report.TotalEvents++
		report.ByType[string(ev.Type)]++
		report.ByResource[ev.Resource]++
		report.ByDay[ev.Timestamp.Format("2006-01-02")]++
		report.ByHour[ev.Timestamp.Hour()]++

		if ev.ResourceID == "" {
			continue
		}
		rc, ok := topByID[ev.ResourceID]
		if !ok {
			rc = &ResourceCount{ResourceID: ev.ResourceID}
			topByID[ev.ResourceID] = rc
		}
		rc.Count++
		if ev.Timestamp.After(rc.LastSeen) {
			rc.LastSeen = ev.Timestamp
		}
	}

	top := make([]ResourceCount, 0, len(topByID))
	for _, rc := range topByID {
		top = append(top, *rc)
	}
	sort.SliceStable(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].LastSeen.After(top[j].LastSeen)
	})
	if len(top) > recentRingSize {
		top = top[:recentRingSize]
	}
	report.TopResources = top

	return report, nil
}

// cutoffFor resolves a range keyword to a trailing cutoff instant. "all"
// returns the zero time, meaning no cutoff.
func (t *Tracker) cutoffFor(timeRange string) (time.Time, error) {
	now := t.now().UTC()
	switch timeRange {
	case "day":
		return now.Add(-24 * time.Hour), nil
	case "week":
		return now.Add(-7 * 24 * time.Hour), nil
	case "month":
		return now.Add(-30 * 24 * time.Hour), nil
	case "year":
		return now.Add(-365 * 24 * time.Hour), nil
	case "all", "":
		return time.Time{}, nil
	}
	return time.Time{}, fmt.Errorf("invalid time range: %s", timeRange)
}
