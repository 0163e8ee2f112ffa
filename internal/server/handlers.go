package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/orato-ai/orato/internal/analysis"
	"github.com/orato-ai/orato/internal/jobs"
	"github.com/orato-ai/orato/internal/store"
)

// submitRequest is the POST /api/v1/presentations body.
type submitRequest struct {
	// AudioPath is a server-local audio file to analyze.
	AudioPath        string         `json:"audio_path"`
	VideoURL         *string        `json:"video_url"`
	Language         string         `json:"language"`
	TalkType         string         `json:"talk_type"`
	AudienceType     string         `json:"audience_type"`
	RequestedMetrics []string       `json:"requested_metrics"`
	UserMetadata     map[string]any `json:"user_metadata"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	if req.AudioPath == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "audio_path is required"})
		return
	}
	if info, err := os.Stat(req.AudioPath); err != nil || info.IsDir() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("audio_path %q is not a readable file", req.AudioPath)})
		return
	}
	for _, name := range req.RequestedMetrics {
		if !slices.Contains(analysis.AllMetrics, name) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("unknown metric %q", name)})
			return
		}
	}

	input := analysis.RequestInput{
		AudioURL:         req.AudioPath,
		VideoURL:         req.VideoURL,
		Language:         req.Language,
		TalkType:         req.TalkType,
		AudienceType:     req.AudienceType,
		RequestedMetrics: req.RequestedMetrics,
		UserMetadata:     req.UserMetadata,
	}
	s.enqueue(w, input, req.AudioPath)
}

// allowedUploadExts mirrors the audio formats the pipeline's decoders and
// converters accept.
var allowedUploadExts = map[string]bool{
	".wav": true, ".mp3": true, ".m4a": true, ".flac": true, ".ogg": true, ".webm": true,
}

// handleUpload accepts multipart/form-data: a "file" part plus the same
// metadata fields as the JSON submit, with requested_metrics and
// user_metadata carried as JSON strings. The file is staged into the upload
// directory before the job is enqueued.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	const maxUploadBytes = 256 << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid multipart form: %v", err)})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "file field is required"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedUploadExts[ext] {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid file type %q", ext)})
		return
	}

	// Empty means all metrics; the engine applies that default.
	var requested []string
	if v := r.FormValue("requested_metrics"); v != "" {
		if err := json.Unmarshal([]byte(v), &requested); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid requested_metrics JSON: %v", err)})
			return
		}
	}
	for _, name := range requested {
		if !slices.Contains(analysis.AllMetrics, name) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("unknown metric %q", name)})
			return
		}
	}
	var userMetadata map[string]any
	if v := r.FormValue("user_metadata"); v != "" {
		if err := json.Unmarshal([]byte(v), &userMetadata); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid user_metadata JSON: %v", err)})
			return
		}
	}

	staged, err := s.stageUpload(file, ext)
	if err != nil {
		s.log.Error("stage upload failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to save uploaded file"})
		return
	}

	input := analysis.RequestInput{
		AudioURL:         "file://" + staged,
		Language:         r.FormValue("language"),
		TalkType:         r.FormValue("talk_type"),
		AudienceType:     r.FormValue("audience_type"),
		RequestedMetrics: requested,
		UserMetadata:     userMetadata,
	}
	s.enqueue(w, input, staged)
}

// stageUpload copies the uploaded file into the upload directory under a
// fresh name and returns the staged path.
func (s *Server) stageUpload(src io.Reader, ext string) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(s.uploadDir, uuid.NewString()+ext)
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create staged file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("write staged file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close staged file: %w", err)
	}
	return path, nil
}

// enqueue applies the request-field defaults, submits the job, and writes
// the acceptance response.
func (s *Server) enqueue(w http.ResponseWriter, input analysis.RequestInput, audioPath string) {
	if input.Language == "" {
		input.Language = "en"
	}
	if input.TalkType == "" {
		input.TalkType = "unspecified"
	}
	if input.AudienceType == "" {
		input.AudienceType = "general"
	}

	jobID, err := s.manager.Submit(input, audioPath)
	if err != nil {
		if errors.Is(err, jobs.ErrQueueFull) {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "analysis queue is full, retry later"})
			return
		}
		s.log.Error("submit failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "submit failed"})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"job_id": jobID,
		"status": analysis.StatusQueued,
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	summaries, err := s.store.ListReports(r.Context(), limit)
	if err != nil {
		s.log.Error("list reports failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "list failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": summaries})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	job, ok := s.lookupJob(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleFull(w http.ResponseWriter, r *http.Request) {
	job, ok := s.lookupJob(w, r)
	if !ok {
		return
	}
	if job.Status != analysis.StatusDone {
		writeJSON(w, http.StatusOK, job)
		return
	}

	report, err := s.store.GetReport(r.Context(), job.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "report not found"})
			return
		}
		s.log.Error("get report failed", "job_id", job.ID, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "get report failed"})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	job, ok := s.lookupJob(w, r)
	if !ok {
		return
	}
	if job.Status != analysis.StatusDone {
		writeJSON(w, http.StatusOK, job)
		return
	}

	report, err := s.store.GetReport(r.Context(), job.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "report not found"})
			return
		}
		s.log.Error("get report failed", "job_id", job.ID, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "get report failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"job_id":     job.ID,
		"status":     job.Status,
		"transcript": report.Transcript,
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if err := s.manager.Delete(r.Context(), jobID); err != nil {
		s.log.Error("delete job failed", "job_id", jobID, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "delete failed"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// lookupJob resolves the {id} path value against the job manager, falling
// back to the store for jobs that predate the current process.
func (s *Server) lookupJob(w http.ResponseWriter, r *http.Request) (jobs.Job, bool) {
	jobID := r.PathValue("id")
	job, err := s.manager.Get(jobID)
	if err == nil {
		return job, true
	}

	report, storeErr := s.store.GetReport(r.Context(), jobID)
	if storeErr == nil {
		return jobs.Job{ID: report.JobID, Status: report.Status}, true
	}

	writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("job %q not found", jobID)})
	return jobs.Job{}, false
}
