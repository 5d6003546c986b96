package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"nena/internal/models"
	"nena/internal/providers"
	"nena/internal/services"
	"nena/internal/structures"
	"nena/internal/transcription"

	json "github.com/goccy/go-json"
	"github.com/gookit/validate"
	"github.com/spf13/cast"
)

const (
	maxRequestBodySize = 1 << 20 // 1 MB
	multipartOverhead  = 1 << 20
	multipartMemory    = 32 << 20
)

type ApiController struct {
	logger     providers.Logger
	cache      providers.CacheProviderInterface
	recordings services.RecordingServiceInterface
	analytics  services.AnalyticsServiceInterface
	badges     services.BadgeServiceInterface
	coach      services.CoachServiceInterface
	dashboard  services.DashboardServiceInterface
	maxUpload  int64
}

func NewApiController(conf *structures.Config, logger providers.Logger, cache providers.CacheProviderInterface, recordings services.RecordingServiceInterface, analytics services.AnalyticsServiceInterface, badges services.BadgeServiceInterface, coach services.CoachServiceInterface, dashboard services.DashboardServiceInterface) *ApiController {
	return &ApiController{
		logger:     logger,
		cache:      cache,
		recordings: recordings,
		analytics:  analytics,
		badges:     badges,
		coach:      coach,
		dashboard:  dashboard,
		maxUpload:  conf.Analysis.MaxUploadBytes,
	}
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type uploadForm struct {
	UserID   string  `validate:"required|maxLen:128"`
	Duration float64 `validate:"min:0"`
}

func statusFor(err error) int {
	var mbe *http.MaxBytesError
	switch {
	case errors.Is(err, models.ErrNoSpeech):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, models.ErrOversizeInput), errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrUnsupportedMedia):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, models.ErrUpstreamTimeout):
		return http.StatusGatewayTimeout
	case models.IsStoreError(err), errors.Is(err, transcription.ErrDisabled),
		errors.Is(err, models.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (ac *ApiController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		ac.logger.Errorf(providers.GetLogTypeByRequestType(r.Method), "%s %s: %v", r.Method, r.URL.Path, err)
		msg = http.StatusText(status)
	}
	gson, _ := json.Marshal(errorResponse{Error: msg})
	writeJSON(w, status, gson)
}

func (ac *ApiController) respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	writeJSON(w, status, gson)
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, r *http.Request, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, data)
		return
	}

	result, err := compute()
	if err != nil {
		ac.writeError(w, r, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}

	ac.cache.Set(cacheKey, gson)
	writeJSON(w, http.StatusOK, gson)
}

func requireUser(r *http.Request) (string, error) {
	user := strings.TrimSpace(r.URL.Query().Get("user"))
	if user == "" {
		return "", fmt.Errorf("%w: user is required", models.ErrInvalidInput)
	}
	return user, nil
}

// queryInt reads an optional integer parameter; empty means def.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := cast.ToIntE(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", models.ErrInvalidInput, name)
	}
	return n, nil
}

func (ac *ApiController) parseUpload(w http.ResponseWriter, r *http.Request) (services.ProcessRequest, error) {
	var req services.ProcessRequest
	r.Body = http.MaxBytesReader(w, r.Body, ac.maxUpload+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return req, fmt.Errorf("%w: request body too large", models.ErrOversizeInput)
		}
		return req, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	duration := 0.0
	if raw := r.FormValue("duration"); raw != "" {
		d, err := cast.ToFloat64E(raw)
		if err != nil {
			return req, fmt.Errorf("%w: duration must be a number", models.ErrInvalidInput)
		}
		duration = d
	}
	form := &uploadForm{UserID: strings.TrimSpace(r.FormValue("userId")), Duration: duration}
	if v := validate.Struct(form); !v.Validate() {
		return req, fmt.Errorf("%w: %s", models.ErrInvalidInput, v.Errors.One())
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		return req, fmt.Errorf("%w: audio file is required", models.ErrInvalidInput)
	}
	defer file.Close()
	if ac.maxUpload > 0 && header.Size > ac.maxUpload {
		return req, fmt.Errorf("%w: %d bytes exceeds %d", models.ErrOversizeInput, header.Size, ac.maxUpload)
	}
	media, err := io.ReadAll(file)
	if err != nil {
		return req, fmt.Errorf("read audio: %w", err)
	}

	return services.ProcessRequest{
		UserID:   form.UserID,
		Media:    media,
		MimeType: header.Header.Get("Content-Type"),
		Duration: form.Duration,
	}, nil
}

func (ac *ApiController) UploadRecording(w http.ResponseWriter, r *http.Request) {
	req, err := ac.parseUpload(w, r)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	res, err := ac.recordings.Process(r.Context(), req)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.respond(w, r, http.StatusCreated, struct {
		Success bool `json:"success"`
		*services.ProcessResult
	}{true, res})
}

func (ac *ApiController) GetDashboard(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(r)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.serveFromCacheOrCompute(w, r, services.CacheKey(services.CacheDashboard, user), func() (any, error) {
		return ac.dashboard.Dashboard(r.Context(), user)
	})
}

func (ac *ApiController) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(r)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.serveFromCacheOrCompute(w, r, services.CacheKey(services.CacheAnalytics, user), func() (any, error) {
		return ac.analytics.GetUserStats(r.Context(), user)
	})
}

func (ac *ApiController) GetBadges(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(r)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.serveFromCacheOrCompute(w, r, services.CacheKey(services.CacheBadges, user), func() (any, error) {
		return ac.badges.Progress(r.Context(), user)
	})
}

func (ac *ApiController) CreateBadge(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var b models.Badge
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		ac.writeError(w, r, fmt.Errorf("%w: %v", models.ErrInvalidInput, err))
		return
	}
	created, err := ac.badges.CreateBadge(r.Context(), &b)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.respond(w, r, http.StatusCreated, created)
}

func (ac *ApiController) GetCoachingInsight(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(r)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.serveFromCacheOrCompute(w, r, services.CacheKey(services.CacheInsights, user), func() (any, error) {
		return ac.coach.LatestInsight(r.Context(), user)
	})
}

func (ac *ApiController) GetPracticeIdeas(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(r)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	count, err := queryInt(r, "count", 0)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ideas, err := ac.coach.PracticeIdeas(r.Context(), user, count)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.respond(w, r, http.StatusOK, ideas)
}

func (ac *ApiController) ReconcileAnalytics(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(r)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	stats, err := ac.analytics.Reconcile(r.Context(), user)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	services.InvalidateUser(ac.cache, user)
	ac.respond(w, r, http.StatusOK, stats)
}
