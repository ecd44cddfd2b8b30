package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"trackwise/api/models"
)

// Memory is an in-memory variant of the full store, mirroring the Postgres
// semantics closely enough for tests and local runs: public ids are unique,
// session end is last-write-wins, an event against an unknown session fails,
// and deleting a tracking cascades to its children.
type Memory struct {
	mu sync.Mutex

	nextID    int
	users     []memUser
	trackings []memTracking
	sources   []memSource
	visitors  []memVisitor
	sessions  []memSession
	events    []memEvent
}

type memUser struct {
	id         int
	userID     string
	secretCode []byte
	createdAt  time.Time
}

type memTracking struct {
	id         int
	trackingID string
	name       string
	ownerID    int
	createdAt  time.Time
}

type memSource struct {
	id         int
	name       string
	trackingID int
}

type memVisitor struct {
	id        int
	visitor   models.NewVisitor
	createdAt time.Time
}

type memSession struct {
	id           int
	session      models.NewSession
	endTimestamp *time.Time
	endedAt      *time.Time
}

type memEvent struct {
	id         int
	sessionID  int
	trackingID int
	eventType  string
	target     string
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) nextKey() int {
	m.nextID++
	return m.nextID
}

func (m *Memory) CreateUser(_ context.Context, userID string, secretCode []byte) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.userID == userID {
			return nil, errors.New("duplicate user id")
		}
	}

	user := memUser{id: m.nextKey(), userID: userID, secretCode: secretCode, createdAt: time.Now().UTC()}
	m.users = append(m.users, user)

	return &models.User{ID: user.id, UserID: user.userID, CreatedAt: user.createdAt}, nil
}

func (m *Memory) UserCredentials(_ context.Context, userID string) (int, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.userID == userID {
			return u.id, u.secretCode, nil
		}
	}

	return 0, nil, ErrNotFound
}

func (m *Memory) CreateTracking(_ context.Context, tracking *models.NewTracking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.trackings {
		if t.trackingID == tracking.TrackingID {
			return errors.New("duplicate tracking id")
		}
	}

	m.trackings = append(m.trackings, memTracking{
		id:         m.nextKey(),
		trackingID: tracking.TrackingID,
		name:       tracking.Name,
		ownerID:    tracking.OwnerID,
		createdAt:  time.Now().UTC(),
	})

	return nil
}

func (m *Memory) IDFromTrackingID(_ context.Context, trackingID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.trackings {
		if t.trackingID == trackingID {
			return t.id, nil
		}
	}

	return 0, ErrNotFound
}

func (m *Memory) TrackingOwner(_ context.Context, trackingID string) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.trackings {
		if t.trackingID == trackingID {
			return t.id, t.ownerID, nil
		}
	}

	return 0, 0, ErrNotFound
}

func (m *Memory) TrackingName(_ context.Context, id int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.trackings {
		if t.id == id {
			return t.name, nil
		}
	}

	return "", ErrNotFound
}

func (m *Memory) ListTrackings(_ context.Context, ownerID int) ([]models.TrackingSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	trackings := []models.TrackingSummary{}
	for _, t := range m.trackings {
		if t.ownerID != ownerID {
			continue
		}
		summary := models.TrackingSummary{ID: t.trackingID, Name: t.name, CreatedAt: t.createdAt}
		for _, v := range m.visitors {
			if v.visitor.TrackingID == t.id {
				summary.VisitorCount++
			}
		}
		for _, s := range m.sessions {
			if s.session.TrackingID == t.id {
				summary.SessionsCount++
			}
		}
		for _, e := range m.events {
			if e.trackingID == t.id {
				summary.EventsCount++
			}
		}
		for _, src := range m.sources {
			if src.trackingID == t.id {
				summary.SourcesCount++
			}
		}
		trackings = append(trackings, summary)
	}

	return trackings, nil
}

func (m *Memory) RenameTracking(_ context.Context, id int, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.trackings {
		if m.trackings[i].id == id {
			m.trackings[i].name = name
			return nil
		}
	}

	return nil
}

func (m *Memory) DeleteTracking(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	trackings := m.trackings[:0]
	for _, t := range m.trackings {
		if t.id != id {
			trackings = append(trackings, t)
		}
	}
	m.trackings = trackings

	sources := m.sources[:0]
	for _, s := range m.sources {
		if s.trackingID != id {
			sources = append(sources, s)
		}
	}
	m.sources = sources

	visitors := m.visitors[:0]
	for _, v := range m.visitors {
		if v.visitor.TrackingID != id {
			visitors = append(visitors, v)
		}
	}
	m.visitors = visitors

	sessions := m.sessions[:0]
	for _, s := range m.sessions {
		if s.session.TrackingID != id {
			sessions = append(sessions, s)
		}
	}
	m.sessions = sessions

	events := m.events[:0]
	for _, e := range m.events {
		if e.trackingID != id {
			events = append(events, e)
		}
	}
	m.events = events

	return nil
}

func (m *Memory) CreateSource(_ context.Context, trackingID int, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sources {
		if s.trackingID == trackingID && s.name == name {
			return errors.New("duplicate source name")
		}
	}
	m.sources = append(m.sources, memSource{id: m.nextKey(), name: name, trackingID: trackingID})

	return nil
}

func (m *Memory) IDFromSourceName(_ context.Context, trackingID int, name string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sources {
		if s.trackingID == trackingID && s.name == name {
			return s.id, nil
		}
	}

	return 0, ErrNotFound
}

func (m *Memory) ListSources(_ context.Context, trackingID int) ([]models.SourceStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sources := []models.SourceStats{}
	for _, src := range m.sources {
		if src.trackingID != trackingID {
			continue
		}
		stats := models.SourceStats{Name: src.name}
		for _, v := range m.visitors {
			if v.visitor.SourceID != nil && *v.visitor.SourceID == src.id {
				stats.VisitorCount++
				for _, s := range m.sessions {
					if s.session.VisitorID == v.id {
						stats.SessionCount++
					}
				}
			}
		}
		sources = append(sources, stats)
	}

	return sources, nil
}

func (m *Memory) DirectStats(_ context.Context, trackingID int) (models.SourceStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	direct := models.SourceStats{Name: "direct"}
	for _, v := range m.visitors {
		if v.visitor.TrackingID == trackingID && v.visitor.SourceID == nil {
			direct.VisitorCount++
			for _, s := range m.sessions {
				if s.session.VisitorID == v.id {
					direct.SessionCount++
				}
			}
		}
	}

	return direct, nil
}

func (m *Memory) DeleteSource(_ context.Context, trackingID int, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sources := m.sources[:0]
	for _, s := range m.sources {
		if s.trackingID != trackingID || s.name != name {
			sources = append(sources, s)
		}
	}
	m.sources = sources

	return nil
}

func (m *Memory) CreateVisitor(_ context.Context, visitor *models.NewVisitor) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row := memVisitor{id: m.nextKey(), visitor: *visitor, createdAt: time.Now().UTC()}
	m.visitors = append(m.visitors, row)

	return row.id, nil
}

func (m *Memory) IDFromVisitorID(_ context.Context, visitorID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, v := range m.visitors {
		if v.visitor.VisitorID == visitorID {
			return v.id, nil
		}
	}

	return 0, ErrNotFound
}

func (m *Memory) ListVisitors(_ context.Context, trackingID int) ([]models.VisitorInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	visitors := []models.VisitorInfo{}
	for _, v := range m.visitors {
		if v.visitor.TrackingID != trackingID {
			continue
		}
		info := models.VisitorInfo{
			ID:        v.visitor.VisitorID,
			Referer:   v.visitor.Referer,
			OS:        v.visitor.UAOS,
			Device:    v.visitor.UADevice,
			Browser:   v.visitor.UABrowser,
			CreatedAt: v.createdAt,
		}
		if v.visitor.SourceID != nil {
			for _, src := range m.sources {
				if src.id == *v.visitor.SourceID {
					name := src.name
					info.SourceName = &name
				}
			}
		}
		visitors = append(visitors, info)
	}

	return visitors, nil
}

func (m *Memory) CreateSession(_ context.Context, session *models.NewSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions = append(m.sessions, memSession{id: m.nextKey(), session: *session})

	return nil
}

func (m *Memory) EndSession(_ context.Context, sessionID string, endTimestamp time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.sessions {
		if m.sessions[i].session.SessionID == sessionID {
			now := time.Now().UTC()
			m.sessions[i].endTimestamp = &endTimestamp
			m.sessions[i].endedAt = &now
			return nil
		}
	}

	return ErrNotFound
}

func (m *Memory) CreateEvent(_ context.Context, sessionID, eventType, target string, trackingID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sessions {
		if s.session.SessionID == sessionID {
			m.events = append(m.events, memEvent{
				id:         m.nextKey(),
				sessionID:  s.id,
				trackingID: trackingID,
				eventType:  eventType,
				target:     target,
			})
			return nil
		}
	}

	return errors.New("event references unknown session")
}

func (m *Memory) ListSessions(_ context.Context, trackingID int) ([]models.SessionInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sessions := []models.SessionInfo{}
	for _, s := range m.sessions {
		if s.session.TrackingID != trackingID {
			continue
		}
		sessions = append(sessions, models.SessionInfo{
			ID:             s.session.SessionID,
			Title:          s.session.Title,
			Pathname:       s.session.Pathname,
			StartTimestamp: s.session.StartTimestamp,
			EndTimestamp:   s.endTimestamp,
		})
	}

	return sessions, nil
}

func (m *Memory) CountSessionsByWeekday(_ context.Context, trackingID int) ([]models.WeekdayCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	buckets := map[int]int64{}
	for _, s := range m.sessions {
		if s.session.TrackingID == trackingID {
			buckets[int(s.session.StartTimestamp.Weekday())]++
		}
	}

	return weekdayCounts(buckets), nil
}

func (m *Memory) CountVisitorsByWeekday(_ context.Context, trackingID int) ([]models.WeekdayCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	buckets := map[int]int64{}
	for _, v := range m.visitors {
		if v.visitor.TrackingID == trackingID {
			buckets[int(v.createdAt.Weekday())]++
		}
	}

	return weekdayCounts(buckets), nil
}

func (m *Memory) CountSessionsByHour(_ context.Context, trackingID int) ([]models.HourCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	buckets := map[int]int64{}
	for _, s := range m.sessions {
		if s.session.TrackingID == trackingID {
			buckets[s.session.StartTimestamp.Hour()]++
		}
	}

	return hourCounts(buckets), nil
}

func (m *Memory) CountVisitorsByHour(_ context.Context, trackingID int) ([]models.HourCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	buckets := map[int]int64{}
	for _, v := range m.visitors {
		if v.visitor.TrackingID == trackingID {
			buckets[v.createdAt.Hour()]++
		}
	}

	return hourCounts(buckets), nil
}

func (m *Memory) CountVisitorsByOS(_ context.Context, trackingID int) ([]models.FieldCount, error) {
	return m.visitorFieldCounts(trackingID, func(v *models.NewVisitor) string { return v.UAOS })
}

func (m *Memory) CountVisitorsByBrowser(_ context.Context, trackingID int) ([]models.FieldCount, error) {
	return m.visitorFieldCounts(trackingID, func(v *models.NewVisitor) string { return v.UABrowser })
}

func (m *Memory) CountVisitorsByDevice(_ context.Context, trackingID int) ([]models.FieldCount, error) {
	return m.visitorFieldCounts(trackingID, func(v *models.NewVisitor) string { return v.UADevice })
}

func (m *Memory) CountSessionsByPathname(_ context.Context, trackingID int) ([]models.FieldCount, error) {
	return m.sessionFieldCounts(trackingID, func(s *models.NewSession) *string { return &s.Pathname })
}

func (m *Memory) CountSessionsByTitle(_ context.Context, trackingID int) ([]models.FieldCount, error) {
	return m.sessionFieldCounts(trackingID, func(s *models.NewSession) *string { return &s.Title })
}

func (m *Memory) CountSessionsByCountry(_ context.Context, trackingID int) ([]models.FieldCount, error) {
	return m.sessionFieldCounts(trackingID, func(s *models.NewSession) *string { return s.CountryCode })
}

func (m *Memory) CountSessionsByReferral(_ context.Context, trackingID int) ([]models.FieldCount, error) {
	return m.sessionFieldCounts(trackingID, func(s *models.NewSession) *string { return s.Referral })
}

func (m *Memory) ListReferers(_ context.Context, trackingID int) ([]models.FieldCount, error) {
	return m.visitorFieldCounts(trackingID, func(v *models.NewVisitor) string { return v.Referer })
}

func (m *Memory) visitorFieldCounts(trackingID int, field func(*models.NewVisitor) string) ([]models.FieldCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	buckets := map[string]int64{}
	order := []string{}
	for i := range m.visitors {
		v := &m.visitors[i].visitor
		if v.TrackingID != trackingID {
			continue
		}
		name := field(v)
		if _, ok := buckets[name]; !ok {
			order = append(order, name)
		}
		buckets[name]++
	}

	return fieldCountsInOrder(buckets, order), nil
}

func (m *Memory) sessionFieldCounts(trackingID int, field func(*models.NewSession) *string) ([]models.FieldCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	buckets := map[string]int64{}
	order := []string{}
	for i := range m.sessions {
		s := &m.sessions[i].session
		if s.TrackingID != trackingID {
			continue
		}
		name := field(s)
		if name == nil {
			continue
		}
		if _, ok := buckets[*name]; !ok {
			order = append(order, *name)
		}
		buckets[*name]++
	}

	return fieldCountsInOrder(buckets, order), nil
}

func weekdayCounts(buckets map[int]int64) []models.WeekdayCount {
	counts := []models.WeekdayCount{}
	for weekday := 0; weekday < 7; weekday++ {
		if n, ok := buckets[weekday]; ok {
			counts = append(counts, models.WeekdayCount{Weekday: weekday, Count: n})
		}
	}
	return counts
}

func hourCounts(buckets map[int]int64) []models.HourCount {
	counts := []models.HourCount{}
	for hour := 0; hour < 24; hour++ {
		if n, ok := buckets[hour]; ok {
			counts = append(counts, models.HourCount{Hour: hour, Count: n})
		}
	}
	return counts
}

func fieldCountsInOrder(buckets map[string]int64, order []string) []models.FieldCount {
	counts := []models.FieldCount{}
	for _, name := range order {
		counts = append(counts, models.FieldCount{Name: name, Count: buckets[name]})
	}
	return counts
}
