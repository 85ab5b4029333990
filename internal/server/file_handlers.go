package server

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ozcanhakn/kanban-app/internal/realtime"
	"github.com/ozcanhakn/kanban-app/internal/service"
)

// uploadAttachmentHandler streams the "file" part of a multipart body
// straight into storage without buffering it in memory.
func (s *Server) uploadAttachmentHandler(w http.ResponseWriter, r *http.Request) {
	cardID, ok := urlID(w, r, "cardID")
	if !ok {
		return
	}
	mr, err := r.MultipartReader()
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Request must be multipart/form-data")
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			respondWithError(w, http.StatusBadRequest, "Request is missing the file field")
			return
		}
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Request body contains a malformed multipart form")
			return
		}
		if part.FormName() != "file" {
			part.Close()
			continue
		}

		attachment, err := s.services.Attachments.UploadAttachment(r.Context(), userID(r), cardID, service.Upload{
			FileName:    part.FileName(),
			ContentType: part.Header.Get("Content-Type"),
			Body:        part,
		})
		part.Close()
		if err != nil {
			s.respondWithServiceError(w, r, "upload attachment", err)
			return
		}
		respondWithJSON(w, http.StatusCreated, attachment)
		return
	}
}

func (s *Server) attachmentURLHandler(w http.ResponseWriter, r *http.Request) {
	attachmentID, ok := urlID(w, r, "attachmentID")
	if !ok {
		return
	}
	signed, err := s.services.Attachments.AttachmentURL(r.Context(), userID(r), attachmentID)
	if err != nil {
		s.respondWithServiceError(w, r, "sign attachment url", err)
		return
	}
	respondWithJSON(w, http.StatusOK, signed)
}

func (s *Server) deleteAttachmentHandler(w http.ResponseWriter, r *http.Request) {
	attachmentID, ok := urlID(w, r, "attachmentID")
	if !ok {
		return
	}
	if err := s.services.Attachments.DeleteAttachment(r.Context(), userID(r), attachmentID); err != nil {
		s.respondWithServiceError(w, r, "delete attachment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fileHandler serves an attachment to whoever holds a valid signed URL.
func (s *Server) fileHandler(w http.ResponseWriter, r *http.Request) {
	file, err := s.services.Attachments.OpenSigned(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		s.respondWithServiceError(w, r, "open file", err)
		return
	}
	defer file.Body.Close()

	if file.ContentType != "" {
		w.Header().Set("Content-Type", file.ContentType)
	}
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.FileName}))
	w.Header().Set("Cache-Control", "private, max-age=0")

	if rs, ok := file.Body.(io.ReadSeeker); ok {
		http.ServeContent(w, r, file.FileName, file.ModTime, rs)
		return
	}
	w.Header().Set("Content-Length", strconv.FormatInt(file.Size, 10))
	if _, err := io.Copy(w, file.Body); err != nil {
		s.log.Warn("failed to stream file", zap.Error(err))
	}
}

// boardSocketHandler subscribes the caller to change events of one board.
func (s *Server) boardSocketHandler(w http.ResponseWriter, r *http.Request) {
	boardID, ok := urlID(w, r, "boardID")
	if !ok {
		return
	}
	if s.hub == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Realtime updates are not available")
		return
	}
	uid := userID(r)
	if err := s.services.Boards.CanAccess(r.Context(), uid, boardID); err != nil {
		s.respondWithServiceError(w, r, "subscribe to board", err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		var handshake websocket.HandshakeError
		if !errors.As(err, &handshake) {
			s.log.Warn("failed to upgrade websocket", zap.Error(err))
		}
		return
	}
	realtime.NewClient(s.hub, conn, boardID, uid).Serve()
	s.log.Debug("websocket client connected", zap.Uint("board_id", boardID), zap.Uint("user_id", uid))
}
