package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	origins := s.corsOrigins
	if len(origins) == 0 {
		origins = []string{"https://*", "http://*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", s.HelloWorldHandler)
	r.Get("/health", s.healthHandler)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", s.signUpHandler)
		r.Post("/login", s.signInHandler)
		r.Post("/magic-link", s.requestMagicLinkHandler)
		r.Get("/magic-link", s.consumeMagicLinkHandler)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Get("/session", s.sessionHandler)
			r.Post("/logout", s.signOutHandler)
		})
	})

	// Signed download links carry their own token.
	r.Get("/files/*", s.fileHandler)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Get("/profile", s.getProfileHandler)
		r.Put("/profile", s.updateProfileHandler)

		r.Route("/organizations", func(r chi.Router) {
			r.Get("/", s.listOrganizationsHandler)
			r.Post("/", s.createOrganizationHandler)
			r.Get("/{orgID}", s.getOrganizationHandler)
			r.Post("/{orgID}/members", s.addMemberHandler)
			r.Patch("/{orgID}/members/{userID}", s.updateMemberHandler)
			r.Delete("/{orgID}/members/{userID}", s.removeMemberHandler)
		})

		r.Route("/boards", func(r chi.Router) {
			r.Get("/", s.listBoardsHandler)
			r.Post("/", s.createBoardHandler)
			r.Route("/{boardID}", func(r chi.Router) {
				r.Get("/", s.getBoardHandler)
				r.Patch("/", s.updateBoardHandler)
				r.Delete("/", s.deleteBoardHandler)
				r.Get("/ws", s.boardSocketHandler)
				r.Get("/activities", s.boardActivitiesHandler)
				r.Post("/columns", s.createColumnHandler)
				r.Post("/labels", s.createLabelHandler)
			})
		})

		r.Route("/columns/{columnID}", func(r chi.Router) {
			r.Patch("/", s.updateColumnHandler)
			r.Delete("/", s.deleteColumnHandler)
			r.Post("/move", s.moveColumnHandler)
			r.Post("/cards", s.createCardHandler)
		})

		r.Route("/labels/{labelID}", func(r chi.Router) {
			r.Patch("/", s.updateLabelHandler)
			r.Delete("/", s.deleteLabelHandler)
		})

		r.Route("/cards/{cardID}", func(r chi.Router) {
			r.Get("/", s.getCardHandler)
			r.Patch("/", s.updateCardHandler)
			r.Delete("/", s.deleteCardHandler)
			r.Post("/move", s.moveCardHandler)
			r.Put("/labels/{labelID}", s.addCardLabelHandler)
			r.Delete("/labels/{labelID}", s.removeCardLabelHandler)
			r.Post("/subtasks", s.createSubtaskHandler)
			r.Get("/comments", s.listCommentsHandler)
			r.Post("/comments", s.createCommentHandler)
			r.Post("/attachments", s.uploadAttachmentHandler)
			r.Get("/activities", s.cardActivitiesHandler)
		})

		r.Patch("/subtasks/{subtaskID}", s.updateSubtaskHandler)
		r.Delete("/subtasks/{subtaskID}", s.deleteSubtaskHandler)
		r.Delete("/comments/{commentID}", s.deleteCommentHandler)
		r.Get("/attachments/{attachmentID}/url", s.attachmentURLHandler)
		r.Delete("/attachments/{attachmentID}", s.deleteAttachmentHandler)
	})

	return r
}

func (s *Server) HelloWorldHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Kanban API is running"})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "up"})
		return
	}
	healthStats := s.db.Health()
	if status, ok := healthStats["status"]; ok && status == "down" {
		respondWithJSON(w, http.StatusServiceUnavailable, healthStats)
		return
	}
	respondWithJSON(w, http.StatusOK, healthStats)
}
