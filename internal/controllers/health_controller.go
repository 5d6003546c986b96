package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"nena/internal/store"
	"nena/internal/structures"

	json "github.com/goccy/go-json"
)

const healthProbeTimeout = 2 * time.Second

type HealthController struct {
	store      store.RecordStore
	speech     bool
	generation bool
	startTime  time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Users         int     `json:"users"`
	Speech        bool    `json:"speech_enabled"`
	Generation    bool    `json:"generation_enabled"`
}

// Health reports 503 when the record store cannot be reached.
func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
	defer cancel()

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Speech:        hc.speech,
		Generation:    hc.generation,
	}
	status := http.StatusOK
	users, err := hc.store.ListUserIDs(ctx)
	if err != nil {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	resp.Users = len(users)

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(conf *structures.Config, rs store.RecordStore) *HealthController {
	return &HealthController{
		store:      rs,
		speech:     conf.Speech.Enabled,
		generation: conf.Generation.Enabled,
		startTime:  time.Now(),
	}
}
