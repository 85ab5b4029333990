package server

import (
	"net/http"

	"github.com/ozcanhakn/kanban-app/internal/service"
)

func (s *Server) createCardHandler(w http.ResponseWriter, r *http.Request) {
	columnID, ok := urlID(w, r, "columnID")
	if !ok {
		return
	}
	var req service.CreateCardRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	card, err := s.services.Cards.CreateCard(r.Context(), userID(r), columnID, req)
	if err != nil {
		s.respondWithServiceError(w, r, "create card", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, card)
}

func (s *Server) getCardHandler(w http.ResponseWriter, r *http.Request) {
	cardID, ok := urlID(w, r, "cardID")
	if !ok {
		return
	}
	card, err := s.services.Cards.GetCard(r.Context(), userID(r), cardID)
	if err != nil {
		s.respondWithServiceError(w, r, "get card", err)
		return
	}
	respondWithJSON(w, http.StatusOK, card)
}

func (s *Server) updateCardHandler(w http.ResponseWriter, r *http.Request) {
	cardID, ok := urlID(w, r, "cardID")
	if !ok {
		return
	}
	var req service.UpdateCardRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	card, err := s.services.Cards.UpdateCard(r.Context(), userID(r), cardID, req)
	if err != nil {
		s.respondWithServiceError(w, r, "update card", err)
		return
	}
	respondWithJSON(w, http.StatusOK, card)
}

func (s *Server) moveCardHandler(w http.ResponseWriter, r *http.Request) {
	cardID, ok := urlID(w, r, "cardID")
	if !ok {
		return
	}
	var req service.MoveCardRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	card, err := s.services.Cards.MoveCard(r.Context(), userID(r), cardID, req)
	if err != nil {
		s.respondWithServiceError(w, r, "move card", err)
		return
	}
	respondWithJSON(w, http.StatusOK, card)
}

func (s *Server) deleteCardHandler(w http.ResponseWriter, r *http.Request) {
	cardID, ok := urlID(w, r, "cardID")
	if !ok {
		return
	}
	if err := s.services.Cards.DeleteCard(r.Context(), userID(r), cardID); err != nil {
		s.respondWithServiceError(w, r, "delete card", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addCardLabelHandler(w http.ResponseWriter, r *http.Request) {
	cardID, ok := urlID(w, r, "cardID")
	if !ok {
		return
	}
	labelID, ok := urlID(w, r, "labelID")
	if !ok {
		return
	}
	if err := s.services.Cards.AddLabel(r.Context(), userID(r), cardID, labelID); err != nil {
		s.respondWithServiceError(w, r, "add card label", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) removeCardLabelHandler(w http.ResponseWriter, r *http.Request) {
	cardID, ok := urlID(w, r, "cardID")
	if !ok {
		return
	}
	labelID, ok := urlID(w, r, "labelID")
	if !ok {
		return
	}
	if err := s.services.Cards.RemoveLabel(r.Context(), userID(r), cardID, labelID); err != nil {
		s.respondWithServiceError(w, r, "remove card label", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) cardActivitiesHandler(w http.ResponseWriter, r *http.Request) {
	cardID, ok := urlID(w, r, "cardID")
	if !ok {
		return
	}
	activities, err := s.services.Cards.ListCardActivities(r.Context(), userID(r), cardID)
	if err != nil {
		s.respondWithServiceError(w, r, "list card activities", err)
		return
	}
	respondWithJSON(w, http.StatusOK, activities)
}

func (s *Server) createSubtaskHandler(w http.ResponseWriter, r *http.Request) {
	cardID, ok := urlID(w, r, "cardID")
	if !ok {
		return
	}
	var req service.CreateSubtaskRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	subtask, err := s.services.Subtasks.CreateSubtask(r.Context(), userID(r), cardID, req)
	if err != nil {
		s.respondWithServiceError(w, r, "create subtask", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, subtask)
}

// updateSubtaskHandler also reports whether completing the subtask moved its card.
func (s *Server) updateSubtaskHandler(w http.ResponseWriter, r *http.Request) {
	subtaskID, ok := urlID(w, r, "subtaskID")
	if !ok {
		return
	}
	var req service.UpdateSubtaskRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	result, err := s.services.Subtasks.UpdateSubtask(r.Context(), userID(r), subtaskID, req)
	if err != nil {
		s.respondWithServiceError(w, r, "update subtask", err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

func (s *Server) deleteSubtaskHandler(w http.ResponseWriter, r *http.Request) {
	subtaskID, ok := urlID(w, r, "subtaskID")
	if !ok {
		return
	}
	if err := s.services.Subtasks.DeleteSubtask(r.Context(), userID(r), subtaskID); err != nil {
		s.respondWithServiceError(w, r, "delete subtask", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listCommentsHandler(w http.ResponseWriter, r *http.Request) {
	cardID, ok := urlID(w, r, "cardID")
	if !ok {
		return
	}
	comments, err := s.services.Comments.ListComments(r.Context(), userID(r), cardID)
	if err != nil {
		s.respondWithServiceError(w, r, "list comments", err)
		return
	}
	respondWithJSON(w, http.StatusOK, comments)
}

func (s *Server) createCommentHandler(w http.ResponseWriter, r *http.Request) {
	cardID, ok := urlID(w, r, "cardID")
	if !ok {
		return
	}
	var req service.CreateCommentRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	comment, err := s.services.Comments.AddComment(r.Context(), userID(r), cardID, req)
	if err != nil {
		s.respondWithServiceError(w, r, "add comment", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, comment)
}

func (s *Server) deleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	commentID, ok := urlID(w, r, "commentID")
	if !ok {
		return
	}
	if err := s.services.Comments.DeleteComment(r.Context(), userID(r), commentID); err != nil {
		s.respondWithServiceError(w, r, "delete comment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
