package server

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	interrors "github.com/tunnelmesh/go-tunnel-backend/internal/errors"
	"github.com/tunnelmesh/go-tunnel-backend/notify"
	"github.com/tunnelmesh/go-tunnel-backend/sharedports"
)

func (s *Server) ListSharedPortsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := r.URL.Query().Get("project_id")
		if projectID == "" {
			respondError(w, http.StatusBadRequest, "invalid_request", "project_id is required")
			return
		}

		all, err := s.repos.SharedPorts.ListByProject(r.Context(), projectID)
		if err != nil {
			log.Err(err).Msg("failed to list shared ports")
			respondError(w, http.StatusInternalServerError, "server_error", "An internal error occurred")
			return
		}
		respondJSON(w, http.StatusOK, all)
	}
}

func (s *Server) GetSharedPortHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		port, err := s.repos.SharedPorts.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			if errors.Is(err, interrors.ErrSharedPortNotFound) {
				respondError(w, http.StatusNotFound, "not_found", "Shared port not found")
				return
			}
			log.Err(err).Msg("failed to get shared port")
			respondError(w, http.StatusInternalServerError, "server_error", "An internal error occurred")
			return
		}
		respondJSON(w, http.StatusOK, port)
	}
}

func (s *Server) CreateSharedPortHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var port sharedports.SharedPort
		if err := json.NewDecoder(r.Body).Decode(&port); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "Malformed request body")
			return
		}
		if msg := validateSharedPort(&port); msg != "" {
			respondError(w, http.StatusBadRequest, "invalid_request", msg)
			return
		}
		port.ID = ""

		if err := s.repos.SharedPorts.Upsert(r.Context(), &port); err != nil {
			log.Err(err).Msg("failed to create shared port")
			respondError(w, http.StatusInternalServerError, "server_error", "An internal error occurred")
			return
		}

		s.publish(r, notify.Event{Entity: "shared_port", Action: "created", ID: port.ID})
		respondJSON(w, http.StatusCreated, &port)
	}
}

func (s *Server) UpdateSharedPortHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		existing, err := s.repos.SharedPorts.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, interrors.ErrSharedPortNotFound) {
				respondError(w, http.StatusNotFound, "not_found", "Shared port not found")
				return
			}
			log.Err(err).Msg("failed to get shared port")
			respondError(w, http.StatusInternalServerError, "server_error", "An internal error occurred")
			return
		}

		var port sharedports.SharedPort
		if err := json.NewDecoder(r.Body).Decode(&port); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "Malformed request body")
			return
		}
		if msg := validateSharedPort(&port); msg != "" {
			respondError(w, http.StatusBadRequest, "invalid_request", msg)
			return
		}
		port.ID = id
		port.CreatedAt = existing.CreatedAt

		if err := s.repos.SharedPorts.Upsert(r.Context(), &port); err != nil {
			log.Err(err).Msg("failed to update shared port")
			respondError(w, http.StatusInternalServerError, "server_error", "An internal error occurred")
			return
		}

		s.publish(r, notify.Event{Entity: "shared_port", Action: "updated", ID: id})
		respondJSON(w, http.StatusOK, &port)
	}
}

func (s *Server) DeleteSharedPortHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := s.repos.SharedPorts.Delete(r.Context(), id); err != nil {
			if errors.Is(err, interrors.ErrSharedPortNotFound) {
				respondError(w, http.StatusNotFound, "not_found", "Shared port not found")
				return
			}
			log.Err(err).Msg("failed to delete shared port")
			respondError(w, http.StatusInternalServerError, "server_error", "An internal error occurred")
			return
		}

		s.publish(r, notify.Event{Entity: "shared_port", Action: "deleted", ID: id})
		w.WriteHeader(http.StatusNoContent)
	}
}

func validateSharedPort(port *sharedports.SharedPort) string {
	if port.ProjectID == "" {
		return "project_id is required"
	}
	if port.Port < 1 || port.Port > 65535 {
		return "port must be between 1 and 65535"
	}
	if port.Protocol != "tcp" && port.Protocol != "udp" {
		return "protocol must be tcp or udp"
	}
	return ""
}
