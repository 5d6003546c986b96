package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"nena/internal/models"
)

type MemoryStore struct {
	mu         sync.RWMutex
	recordings map[string][]*models.Recording
	byID       map[string]*models.Recording
	analytics  map[string]*models.UserAnalytics
	badges     []*models.Badge
	userBadges map[string]map[string]*models.UserBadge
	insights   map[string]*models.CoachingInsight
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		recordings: make(map[string][]*models.Recording),
		byID:       make(map[string]*models.Recording),
		analytics:  make(map[string]*models.UserAnalytics),
		userBadges: make(map[string]map[string]*models.UserBadge),
		insights:   make(map[string]*models.CoachingInsight),
	}
}

func cloneList(l models.StringList) models.StringList {
	if l == nil {
		return nil
	}
	return append(make(models.StringList, 0, len(l)), l...)
}

func copyRecording(r *models.Recording) *models.Recording {
	c := *r
	c.ImprovementTips = cloneList(r.ImprovementTips)
	c.Strengths = cloneList(r.Strengths)
	c.Weaknesses = cloneList(r.Weaknesses)
	return &c
}

func copyBadge(b *models.Badge) *models.Badge {
	c := *b
	c.Criteria = append(models.Criteria(nil), b.Criteria...)
	return &c
}

func copyInsight(i *models.CoachingInsight) *models.CoachingInsight {
	c := *i
	c.CustomExercise.Instructions = append([]string(nil), i.CustomExercise.Instructions...)
	c.CustomExercise.Tips = append([]string(nil), i.CustomExercise.Tips...)
	return &c
}

// insertRecordingLocked keeps each user's list ordered by creation time.
func (s *MemoryStore) insertRecordingLocked(rec *models.Recording) error {
	if rec.ID == "" || rec.UserID == "" {
		return models.ErrInvalidInput
	}
	if _, ok := s.byID[rec.ID]; ok {
		return models.ErrAlreadyExists
	}
	c := copyRecording(rec)
	list := s.recordings[rec.UserID]
	i := sort.Search(len(list), func(i int) bool { return list[i].CreatedAt.After(c.CreatedAt) })
	list = append(list, nil)
	copy(list[i+1:], list[i:])
	list[i] = c
	s.recordings[rec.UserID] = list
	s.byID[c.ID] = c
	return nil
}

func (s *MemoryStore) InsertRecording(_ context.Context, rec *models.Recording) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertRecordingLocked(rec)
}

func (s *MemoryStore) GetRecording(_ context.Context, id string) (*models.Recording, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return copyRecording(rec), nil
}

func (s *MemoryStore) RecentRecordings(_ context.Context, userID string, limit int) ([]*models.Recording, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.recordings[userID]
	if limit <= 0 || limit > len(list) {
		limit = len(list)
	}
	out := make([]*models.Recording, 0, limit)
	for i := len(list) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, copyRecording(list[i]))
	}
	return out, nil
}

func (s *MemoryStore) RecordingsBetween(_ context.Context, userID string, from, to time.Time) ([]*models.Recording, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Recording, 0)
	for _, r := range s.recordings[userID] {
		if r.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && !r.CreatedAt.Before(to) {
			break
		}
		out = append(out, copyRecording(r))
	}
	return out, nil
}

func (s *MemoryStore) CountRecordingsSince(_ context.Context, userID string, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.recordings[userID]
	i := sort.Search(len(list), func(i int) bool { return !list[i].CreatedAt.Before(since) })
	return len(list) - i, nil
}

func (s *MemoryStore) ListUserIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.recordings))
	for id := range s.recordings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) GetAnalytics(_ context.Context, userID string) (*models.UserAnalytics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.analytics[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return a.Clone(), nil
}

func (s *MemoryStore) UpdateAnalytics(_ context.Context, userID string, rec *models.Recording, fn AnalyticsMutator) (*models.UserAnalytics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.analytics[userID]
	if ok {
		a = a.Clone()
	} else {
		a = models.NewUserAnalytics(userID)
	}
	if err := fn(a); err != nil {
		return nil, err
	}
	if rec != nil {
		if err := s.insertRecordingLocked(rec); err != nil {
			return nil, err
		}
	}
	s.analytics[userID] = a
	return a.Clone(), nil
}

func (s *MemoryStore) ReplaceAnalytics(_ context.Context, a *models.UserAnalytics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analytics[a.UserID] = a.Clone()
	return nil
}

func (s *MemoryStore) findBadgeLocked(name string) int {
	for i, b := range s.badges {
		if b.Name == name {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) UpsertBadge(_ context.Context, b *models.Badge) (*models.Badge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.findBadgeLocked(b.Name); i >= 0 {
		cur := s.badges[i]
		cur.Description = b.Description
		cur.Category = b.Category
		cur.IconName = b.IconName
		cur.Criteria = append(models.Criteria(nil), b.Criteria...)
		return copyBadge(cur), nil
	}
	c := copyBadge(b)
	c.Position = len(s.badges)
	s.badges = append(s.badges, c)
	return copyBadge(c), nil
}

func (s *MemoryStore) CreateBadge(_ context.Context, b *models.Badge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findBadgeLocked(b.Name) >= 0 {
		return models.ErrAlreadyExists
	}
	c := copyBadge(b)
	c.Position = len(s.badges)
	s.badges = append(s.badges, c)
	b.Position = c.Position
	return nil
}

func (s *MemoryStore) ListActiveBadges(_ context.Context) ([]*models.Badge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Badge, 0, len(s.badges))
	for _, b := range s.badges {
		if b.IsActive {
			out = append(out, copyBadge(b))
		}
	}
	return out, nil
}

func (s *MemoryStore) InsertUserBadge(_ context.Context, ub *models.UserBadge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.userBadges[ub.UserID]
	if !ok {
		set = make(map[string]*models.UserBadge)
		s.userBadges[ub.UserID] = set
	}
	if _, ok := set[ub.BadgeID]; ok {
		return models.ErrAlreadyExists
	}
	c := *ub
	set[ub.BadgeID] = &c
	return nil
}

func (s *MemoryStore) ListUserBadges(_ context.Context, userID string) ([]*models.UserBadge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := s.userBadges[userID]
	out := make([]*models.UserBadge, 0, len(set))
	for _, ub := range set {
		c := *ub
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UnlockedAt.Before(out[j].UnlockedAt) })
	return out, nil
}

func (s *MemoryStore) SaveCoachingInsight(_ context.Context, ins *models.CoachingInsight) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insights[ins.UserID] = copyInsight(ins)
	return nil
}

func (s *MemoryStore) LatestCoachingInsight(_ context.Context, userID string) (*models.CoachingInsight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ins, ok := s.insights[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return copyInsight(ins), nil
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) Snapshot() *models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := models.NewSnapshot()
	for uid, list := range s.recordings {
		cp := make([]*models.Recording, len(list))
		for i, r := range list {
			cp[i] = copyRecording(r)
		}
		snap.Recordings[uid] = cp
	}
	for uid, a := range s.analytics {
		snap.Analytics[uid] = a.Clone()
	}
	for _, b := range s.badges {
		snap.Badges = append(snap.Badges, copyBadge(b))
	}
	for uid, set := range s.userBadges {
		for _, ub := range set {
			c := *ub
			snap.UserBadges[uid] = append(snap.UserBadges[uid], &c)
		}
	}
	for uid, ins := range s.insights {
		snap.Insights[uid] = copyInsight(ins)
	}
	return snap
}

// Restore replaces the whole store content with snap.
func (s *MemoryStore) Restore(snap *models.Snapshot) {
	if snap == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recordings = make(map[string][]*models.Recording, len(snap.Recordings))
	s.byID = make(map[string]*models.Recording)
	for uid, list := range snap.Recordings {
		cp := make([]*models.Recording, 0, len(list))
		for _, r := range list {
			if r == nil {
				continue
			}
			c := copyRecording(r)
			cp = append(cp, c)
			s.byID[c.ID] = c
		}
		sort.SliceStable(cp, func(i, j int) bool { return cp[i].CreatedAt.Before(cp[j].CreatedAt) })
		s.recordings[uid] = cp
	}

	s.analytics = make(map[string]*models.UserAnalytics, len(snap.Analytics))
	for uid, a := range snap.Analytics {
		if a != nil {
			s.analytics[uid] = a.Clone()
		}
	}

	s.badges = make([]*models.Badge, 0, len(snap.Badges))
	for _, b := range snap.Badges {
		if b == nil {
			continue
		}
		c := copyBadge(b)
		c.Position = len(s.badges)
		s.badges = append(s.badges, c)
	}

	s.userBadges = make(map[string]map[string]*models.UserBadge, len(snap.UserBadges))
	for uid, list := range snap.UserBadges {
		set := make(map[string]*models.UserBadge, len(list))
		for _, ub := range list {
			if ub == nil {
				continue
			}
			c := *ub
			set[ub.BadgeID] = &c
		}
		s.userBadges[uid] = set
	}

	s.insights = make(map[string]*models.CoachingInsight, len(snap.Insights))
	for uid, ins := range snap.Insights {
		if ins != nil {
			s.insights[uid] = copyInsight(ins)
		}
	}
}
