package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/tablekeep/loresync/internal/core/domain"
	"github.com/tablekeep/loresync/internal/core/ports/driving"
	"github.com/tablekeep/loresync/internal/logger"
)

// syncRequest is the POST /api/sync body. Both fields are optional;
// absent values fall back to configured defaults.
type syncRequest struct {
	Mode     string `json:"mode"`
	MaxFiles int    `json:"maxFiles"`
}

// errorResponse is the body for failed requests.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// statusResponse is the GET /api/status body.
type statusResponse struct {
	Running       bool                 `json:"running"`
	DocumentCount int                  `json:"documentCount"`
	LastRun       *driving.SyncReport  `json:"lastRun,omitempty"`
	Scheduler     []scheduledTaskState `json:"scheduler,omitempty"`
}

// scheduledTaskState is one task's state in the status body.
type scheduledTaskState struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Interval    string `json:"interval"`
	Enabled     bool   `json:"enabled"`
	LastRun     string `json:"lastRun,omitempty"`
	NextRun     string `json:"nextRun,omitempty"`
	LastSuccess string `json:"lastSuccess,omitempty"`
	LastError   string `json:"lastError,omitempty"`
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "parsing request body: "+err.Error())
		return
	}

	report, err := s.sync.Run(r.Context(), driving.RunOptions{
		Mode:     domain.SyncMode(req.Mode),
		MaxFiles: req.MaxFiles,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrSyncInProgress):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.sync.Status(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := statusResponse{
		Running:       status.Running,
		DocumentCount: status.DocumentCount,
		LastRun:       status.LastReport,
	}

	if s.tasks != nil {
		tasks, err := s.tasks.ListTasks(r.Context())
		if err != nil {
			logger.Warn("Listing scheduled tasks for status: %v", err)
		}
		for _, task := range tasks {
			resp.Scheduler = append(resp.Scheduler, scheduledTaskState{
				ID:          task.ID,
				Name:        task.Name,
				Interval:    task.Interval.String(),
				Enabled:     task.Enabled,
				LastRun:     formatTime(task.LastRun),
				NextRun:     formatTime(task.NextRun),
				LastSuccess: formatTime(task.LastSuccess),
				LastError:   task.LastError,
			})
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Success: false, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("Encoding response: %v", err)
	}
}

// formatTime renders a timestamp for the status body, empty when unset.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
