package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/orato-ai/orato/internal/analysis"
	"github.com/orato-ai/orato/internal/jobs"
)

// eventWriteTimeout bounds a single websocket write.
const eventWriteTimeout = 10 * time.Second

// handleEvents streams a job's progress events over a websocket until the
// job reaches a terminal state or the client disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	job, err := s.manager.Get(jobID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "job not found"})
		return
	}

	// Subscribe before the snapshot so no event between the two is lost.
	events, cancel := s.manager.Subscribe(jobID)
	defer cancel()

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.Warn("websocket accept failed", "job_id", jobID, "err", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream aborted")

	ctx := r.Context()

	// Current state first so late subscribers see where the job stands.
	snapshot := jobs.Event{JobID: job.ID, Status: job.Status, Message: job.Error, At: time.Now().UTC()}
	if err := s.writeEvent(conn, ctx, snapshot); err != nil {
		return
	}
	if terminalStatus(job.Status) {
		conn.Close(websocket.StatusNormalClosure, "job finished")
		return
	}

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		case ev := <-events:
			if err := s.writeEvent(conn, ctx, ev); err != nil {
				return
			}
			if terminalStatus(ev.Status) {
				conn.Close(websocket.StatusNormalClosure, "job finished")
				return
			}
		}
	}
}

func (s *Server) writeEvent(conn *websocket.Conn, ctx context.Context, ev jobs.Event) error {
	wctx, cancel := context.WithTimeout(ctx, eventWriteTimeout)
	defer cancel()
	if err := wsjson.Write(wctx, conn, ev); err != nil {
		if !errors.Is(err, ctx.Err()) {
			s.log.Debug("websocket write failed", "job_id", ev.JobID, "err", err)
		}
		return err
	}
	return nil
}

func terminalStatus(status string) bool {
	return status == analysis.StatusDone || status == analysis.StatusFailed
}
