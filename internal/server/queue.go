package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/healthfolio/labingest/constants"
	"github.com/healthfolio/labingest/internal/common"
	"github.com/healthfolio/labingest/internal/entity"
)

type queueSnapshotResponse struct {
	Items []entity.QueueItem `json:"items"`
	Depth int                `json:"depth"`
}

func (s *Server) handleQueueSnapshot(w http.ResponseWriter, r *http.Request) {
	items := s.queue.Snapshot()
	depth := 0
	for i := range items {
		switch items[i].Status {
		case constants.QueueItemQueued, constants.QueueItemRetrying:
			depth++
		}
	}
	s.writeJSON(w, http.StatusOK, queueSnapshotResponse{Items: items, Depth: depth})
}

// handleQueueCancel aborts a queue item; the document drops back to PENDING.
func (s *Server) handleQueueCancel(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "itemID")
	itemID, err := uuid.Parse(raw)
	if err != nil {
		s.writeError(w, r, common.NewAppError(common.CodeInvalid,
			fmt.Sprintf("queue item id %q is not a UUID", raw), err))
		return
	}
	if err := s.queue.Cancel(r.Context(), itemID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (s *Server) handleQueueClear(w http.ResponseWriter, r *http.Request) {
	s.queue.Clear(r.Context())
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
