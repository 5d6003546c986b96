package models

// SnapshotVersion is bumped whenever the envelope layout changes.
const SnapshotVersion = 1

// Snapshot is the persisted image of the in-memory record store.
type Snapshot struct {
	Version    int                         `json:"version"`
	Recordings map[string][]*Recording     `json:"recordings"`
	Analytics  map[string]*UserAnalytics   `json:"analytics"`
	Badges     []*Badge                    `json:"badges"`
	UserBadges map[string][]*UserBadge     `json:"user_badges"`
	Insights   map[string]*CoachingInsight `json:"insights"`
}

func NewSnapshot() *Snapshot {
	return &Snapshot{
		Version:    SnapshotVersion,
		Recordings: make(map[string][]*Recording),
		Analytics:  make(map[string]*UserAnalytics),
		UserBadges: make(map[string][]*UserBadge),
		Insights:   make(map[string]*CoachingInsight),
	}
}
