package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dgallion1/doclinks/internal/discovery"
	"github.com/dgallion1/doclinks/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

const maxRequestBytes = 1 << 20

type discoverRequest struct {
	Path     string `json:"path"`
	URL      string `json:"url"`
	MaxDepth *int   `json:"max_depth"`
}

func (s *Server) handleDiscoverLocal(w http.ResponseWriter, r *http.Request) {
	if s.local == nil || !s.cfg.AllowLocal {
		jsonError(w, "local discovery is disabled", http.StatusForbidden)
		return
	}

	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	if req.Path == "" {
		jsonError(w, "path is required", http.StatusBadRequest)
		return
	}
	depth, err := s.cfg.Depth(req.MaxDepth)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	job := pipeline.NewJob(pipeline.KindLocal, req.Path, depth)
	if !s.submit(w, job) {
		return
	}
	if err := job.Wait(r.Context()); err != nil {
		jsonError(w, "request canceled before discovery finished", http.StatusServiceUnavailable)
		return
	}
	if err := job.Err(); err != nil {
		s.discoveryError(w, err)
		return
	}
	snap := job.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"job_id":    snap.ID,
		"documents": snap.Documents,
	})
}

func (s *Server) handleDiscoverRemote(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	if req.URL == "" {
		jsonError(w, "url is required", http.StatusBadRequest)
		return
	}
	depth, err := s.cfg.Depth(req.MaxDepth)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	job := pipeline.NewJob(pipeline.KindRemote, req.URL, depth)
	if !s.submit(w, job) {
		return
	}

	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	if wait {
		if err := job.Wait(r.Context()); err == nil {
			snap := job.Snapshot()
			if jobErr := job.Err(); jobErr != nil {
				s.discoveryError(w, jobErr)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"job_id":    snap.ID,
				"documents": snap.Documents,
			})
			return
		}
		// The client gave up waiting; the job keeps running and can be polled.
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"status":   job.Snapshot().Status,
		"poll_url": fmt.Sprintf("/api/discover/%s", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

// submit queues job, writing an error response when the queue rejects it.
func (s *Server) submit(w http.ResponseWriter, job *pipeline.Job) bool {
	if err := s.orchestrator.Submit(job); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, pipeline.ErrQueueFull) {
			status = http.StatusServiceUnavailable
		}
		jsonError(w, err.Error(), status)
		return false
	}
	return true
}

func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (discoverRequest, bool) {
	var req discoverRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return req, false
	}
	return req, true
}

// discoveryError writes err with the HTTP status matching its discovery code.
func (s *Server) discoveryError(w http.ResponseWriter, err error) {
	code := discovery.CodeOf(err)
	status := statusForCode(code)
	if status >= http.StatusInternalServerError {
		s.log.Error("discovery failed", "code", code, "error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":      err.Error(),
		"error_code": string(code),
	})
}

func statusForCode(code discovery.Code) int {
	switch code {
	case discovery.CodeNotFound:
		return http.StatusNotFound
	case discovery.CodeInvalidInput:
		return http.StatusBadRequest
	case discovery.CodeForbidden:
		return http.StatusForbidden
	case discovery.CodeCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
