package server

import (
	"net/http"

	"github.com/ozcanhakn/kanban-app/internal/service"
)

func (s *Server) signUpHandler(w http.ResponseWriter, r *http.Request) {
	var req service.SignUpRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.services.Auth.SignUp(r.Context(), req)
	if err != nil {
		s.respondWithServiceError(w, r, "sign up", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, resp)
}

func (s *Server) signInHandler(w http.ResponseWriter, r *http.Request) {
	var req service.SignInRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.services.Auth.SignIn(r.Context(), req)
	if err != nil {
		s.respondWithServiceError(w, r, "sign in", err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) requestMagicLinkHandler(w http.ResponseWriter, r *http.Request) {
	var req service.MagicLinkRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.services.Auth.RequestMagicLink(r.Context(), req, s.publicBaseURL)
	if err != nil {
		s.respondWithServiceError(w, r, "request magic link", err)
		return
	}
	respondWithJSON(w, http.StatusAccepted, resp)
}

func (s *Server) consumeMagicLinkHandler(w http.ResponseWriter, r *http.Request) {
	resp, err := s.services.Auth.ConsumeMagicLink(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		s.respondWithServiceError(w, r, "consume magic link", err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) sessionHandler(w http.ResponseWriter, r *http.Request) {
	resp, err := s.services.Profile.GetProfile(r.Context(), userID(r))
	if err != nil {
		s.respondWithServiceError(w, r, "get session", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": principalFrom(r.Context()).SessionID,
		"user":       resp,
	})
}

func (s *Server) signOutHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.services.Auth.SignOut(r.Context(), principalFrom(r.Context()).SessionID); err != nil {
		s.respondWithServiceError(w, r, "sign out", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getProfileHandler(w http.ResponseWriter, r *http.Request) {
	resp, err := s.services.Profile.GetProfile(r.Context(), userID(r))
	if err != nil {
		s.respondWithServiceError(w, r, "get profile", err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) updateProfileHandler(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateProfileRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.services.Profile.UpdateProfile(r.Context(), userID(r), req)
	if err != nil {
		s.respondWithServiceError(w, r, "update profile", err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) listOrganizationsHandler(w http.ResponseWriter, r *http.Request) {
	resp, err := s.services.Organizations.ListOrganizations(r.Context(), userID(r))
	if err != nil {
		s.respondWithServiceError(w, r, "list organizations", err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) createOrganizationHandler(w http.ResponseWriter, r *http.Request) {
	var req service.CreateOrganizationRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.services.Organizations.CreateOrganization(r.Context(), userID(r), req)
	if err != nil {
		s.respondWithServiceError(w, r, "create organization", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, resp)
}

func (s *Server) getOrganizationHandler(w http.ResponseWriter, r *http.Request) {
	orgID, ok := urlID(w, r, "orgID")
	if !ok {
		return
	}
	resp, err := s.services.Organizations.GetOrganization(r.Context(), userID(r), orgID)
	if err != nil {
		s.respondWithServiceError(w, r, "get organization", err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) addMemberHandler(w http.ResponseWriter, r *http.Request) {
	orgID, ok := urlID(w, r, "orgID")
	if !ok {
		return
	}
	var req service.AddMemberRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.services.Organizations.AddMember(r.Context(), userID(r), orgID, req)
	if err != nil {
		s.respondWithServiceError(w, r, "add member", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, resp)
}

func (s *Server) updateMemberHandler(w http.ResponseWriter, r *http.Request) {
	orgID, ok := urlID(w, r, "orgID")
	if !ok {
		return
	}
	memberID, ok := urlID(w, r, "userID")
	if !ok {
		return
	}
	var req service.UpdateMemberRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := s.services.Organizations.UpdateMemberRole(r.Context(), userID(r), orgID, memberID, req); err != nil {
		s.respondWithServiceError(w, r, "update member", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) removeMemberHandler(w http.ResponseWriter, r *http.Request) {
	orgID, ok := urlID(w, r, "orgID")
	if !ok {
		return
	}
	memberID, ok := urlID(w, r, "userID")
	if !ok {
		return
	}
	if err := s.services.Organizations.RemoveMember(r.Context(), userID(r), orgID, memberID); err != nil {
		s.respondWithServiceError(w, r, "remove member", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
