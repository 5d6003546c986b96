package services

import "nena/internal/providers"

const (
	CacheDashboard = "dashboard"
	CacheAnalytics = "analytics"
	CacheBadges    = "badges"
	CacheInsights  = "insights"
)

var userCacheKinds = []string{CacheDashboard, CacheAnalytics, CacheBadges, CacheInsights}

func CacheKey(kind, userID string) string {
	return kind + ":" + userID
}

// InvalidateUser drops every cached response derived from userID's data.
func InvalidateUser(cache providers.CacheProviderInterface, userID string) {
	for _, kind := range userCacheKinds {
		cache.Del(CacheKey(kind, userID))
	}
}
