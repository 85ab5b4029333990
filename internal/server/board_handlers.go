package server

import (
	"net/http"
	"strconv"

	"github.com/ozcanhakn/kanban-app/internal/service"
)

func (s *Server) listBoardsHandler(w http.ResponseWriter, r *http.Request) {
	boards, err := s.services.Boards.ListBoards(r.Context(), userID(r))
	if err != nil {
		s.respondWithServiceError(w, r, "list boards", err)
		return
	}
	respondWithJSON(w, http.StatusOK, boards)
}

func (s *Server) createBoardHandler(w http.ResponseWriter, r *http.Request) {
	var req service.CreateBoardRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	board, err := s.services.Boards.CreateBoard(r.Context(), userID(r), req)
	if err != nil {
		s.respondWithServiceError(w, r, "create board", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, board)
}

// getBoardHandler returns the full board view, filtered by query parameters.
func (s *Server) getBoardHandler(w http.ResponseWriter, r *http.Request) {
	boardID, ok := urlID(w, r, "boardID")
	if !ok {
		return
	}
	filter, err := service.ParseBoardFilter(r.URL.Query())
	if err != nil {
		s.respondWithServiceError(w, r, "parse board filter", err)
		return
	}
	view, err := s.services.Boards.GetBoardView(r.Context(), userID(r), boardID, filter)
	if err != nil {
		s.respondWithServiceError(w, r, "get board", err)
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}

func (s *Server) updateBoardHandler(w http.ResponseWriter, r *http.Request) {
	boardID, ok := urlID(w, r, "boardID")
	if !ok {
		return
	}
	var req service.UpdateBoardRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	board, err := s.services.Boards.UpdateBoard(r.Context(), userID(r), boardID, req)
	if err != nil {
		s.respondWithServiceError(w, r, "update board", err)
		return
	}
	respondWithJSON(w, http.StatusOK, board)
}

func (s *Server) deleteBoardHandler(w http.ResponseWriter, r *http.Request) {
	boardID, ok := urlID(w, r, "boardID")
	if !ok {
		return
	}
	if err := s.services.Boards.DeleteBoard(r.Context(), userID(r), boardID); err != nil {
		s.respondWithServiceError(w, r, "delete board", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) boardActivitiesHandler(w http.ResponseWriter, r *http.Request) {
	boardID, ok := urlID(w, r, "boardID")
	if !ok {
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit provided")
			return
		}
		limit = n
	}
	activities, err := s.services.Boards.ListBoardActivities(r.Context(), userID(r), boardID, limit)
	if err != nil {
		s.respondWithServiceError(w, r, "list board activities", err)
		return
	}
	respondWithJSON(w, http.StatusOK, activities)
}

func (s *Server) createColumnHandler(w http.ResponseWriter, r *http.Request) {
	boardID, ok := urlID(w, r, "boardID")
	if !ok {
		return
	}
	var req service.CreateColumnRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	column, err := s.services.Columns.CreateColumn(r.Context(), userID(r), boardID, req)
	if err != nil {
		s.respondWithServiceError(w, r, "create column", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, column)
}

func (s *Server) updateColumnHandler(w http.ResponseWriter, r *http.Request) {
	columnID, ok := urlID(w, r, "columnID")
	if !ok {
		return
	}
	var req service.UpdateColumnRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	column, err := s.services.Columns.UpdateColumn(r.Context(), userID(r), columnID, req)
	if err != nil {
		s.respondWithServiceError(w, r, "update column", err)
		return
	}
	respondWithJSON(w, http.StatusOK, column)
}

func (s *Server) moveColumnHandler(w http.ResponseWriter, r *http.Request) {
	columnID, ok := urlID(w, r, "columnID")
	if !ok {
		return
	}
	var req service.MoveColumnRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	column, err := s.services.Columns.MoveColumn(r.Context(), userID(r), columnID, req)
	if err != nil {
		s.respondWithServiceError(w, r, "move column", err)
		return
	}
	respondWithJSON(w, http.StatusOK, column)
}

func (s *Server) deleteColumnHandler(w http.ResponseWriter, r *http.Request) {
	columnID, ok := urlID(w, r, "columnID")
	if !ok {
		return
	}
	if err := s.services.Columns.DeleteColumn(r.Context(), userID(r), columnID); err != nil {
		s.respondWithServiceError(w, r, "delete column", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) createLabelHandler(w http.ResponseWriter, r *http.Request) {
	boardID, ok := urlID(w, r, "boardID")
	if !ok {
		return
	}
	var req service.CreateLabelRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	label, err := s.services.Labels.CreateLabel(r.Context(), userID(r), boardID, req)
	if err != nil {
		s.respondWithServiceError(w, r, "create label", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, label)
}

func (s *Server) updateLabelHandler(w http.ResponseWriter, r *http.Request) {
	labelID, ok := urlID(w, r, "labelID")
	if !ok {
		return
	}
	var req service.UpdateLabelRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	label, err := s.services.Labels.UpdateLabel(r.Context(), userID(r), labelID, req)
	if err != nil {
		s.respondWithServiceError(w, r, "update label", err)
		return
	}
	respondWithJSON(w, http.StatusOK, label)
}

func (s *Server) deleteLabelHandler(w http.ResponseWriter, r *http.Request) {
	labelID, ok := urlID(w, r, "labelID")
	if !ok {
		return
	}
	if err := s.services.Labels.DeleteLabel(r.Context(), userID(r), labelID); err != nil {
		s.respondWithServiceError(w, r, "delete label", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
