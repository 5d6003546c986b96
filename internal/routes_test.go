package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"nena/internal/controllers"
	gmock "nena/internal/generation/mock"
	"nena/internal/services"
	"nena/internal/store"
	"nena/internal/structures"
	"nena/internal/testutil"
	tmock "nena/internal/transcription/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouteTestController() *controllers.ApiController {
	conf := &structures.Config{
		Analysis: structures.AnalysisConfig{MaxUploadBytes: 1 << 20},
		Coaching: structures.CoachingConfig{Workers: 1, QueueSize: 1, PracticeIdeas: 3},
	}
	logger := &testutil.MockLogger{}
	metrics := &testutil.MockMetrics{}
	cache := testutil.NewMockCache()
	rs := store.NewMemoryStore()

	analytics := services.NewAnalyticsService(rs, services.NewUserLocks(), logger)
	badges := services.NewBadgeService(rs, logger, metrics)
	coach := services.NewCoachService(conf, rs, &gmock.Generator{}, logger, metrics)
	queue := services.NewCoachingQueue(conf, coach, rs, cache, logger, metrics)
	recordings := services.NewRecordingService(conf, &tmock.Transcriber{}, analytics, badges, queue, cache, logger, metrics)
	dashboard := services.NewDashboardService(conf, analytics, badges, coach)
	return controllers.NewApiController(conf, logger, cache, recordings, analytics, badges, coach, dashboard)
}

func TestInitRoutes_RegistersApiRoutes(t *testing.T) {
	router := InitRoutes(newRouteTestController())
	routes := router.GetRoutes()

	require.Len(t, routes, 7)

	urls := make([]string, len(routes))
	for i, r := range routes {
		urls[i] = r.Url
	}

	assert.Contains(t, urls, "/recordings")
	assert.Contains(t, urls, "/dashboard")
	assert.Contains(t, urls, "/analytics")
	assert.Contains(t, urls, "/analytics/reconcile")
	assert.Contains(t, urls, "/badges")
	assert.Contains(t, urls, "/coaching/insights")
	assert.Contains(t, urls, "/coaching/practice-ideas")
}

func TestInitRoutes_MethodEnforcement(t *testing.T) {
	router := InitRoutes(newRouteTestController())

	mux := http.NewServeMux()
	for _, r := range router.GetRoutes() {
		mux.Handle(r.Url, r.Handler)
	}

	tests := []struct {
		method string
		url    string
		allow  string
	}{
		{http.MethodGet, "/recordings", "POST"},
		{http.MethodPost, "/dashboard?user=u1", "GET"},
		{http.MethodGet, "/analytics/reconcile?user=u1", "POST"},
		{http.MethodPost, "/coaching/insights?user=u1", "GET"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.url, func(t *testing.T) {
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.url, nil))
			assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
			assert.Equal(t, tt.allow, rr.Header().Get("Allow"))
		})
	}
}

func TestInitRoutes_BadgesServesBothMethods(t *testing.T) {
	router := InitRoutes(newRouteTestController())

	mux := http.NewServeMux()
	for _, r := range router.GetRoutes() {
		mux.Handle(r.Url, r.Handler)
	}

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/badges?user=u1", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/badges", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
