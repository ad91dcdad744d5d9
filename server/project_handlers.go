package server

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	interrors "github.com/tunnelmesh/go-tunnel-backend/internal/errors"
	"github.com/tunnelmesh/go-tunnel-backend/notify"
	"github.com/tunnelmesh/go-tunnel-backend/projects"
)

func (s *Server) ListProjectsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID := r.URL.Query().Get("customer_id")
		if customerID == "" {
			respondError(w, http.StatusBadRequest, "invalid_request", "customer_id is required")
			return
		}

		all, err := s.repos.Projects.ListByCustomer(r.Context(), customerID)
		if err != nil {
			log.Err(err).Msg("failed to list projects")
			respondError(w, http.StatusInternalServerError, "server_error", "An internal error occurred")
			return
		}
		respondJSON(w, http.StatusOK, all)
	}
}

func (s *Server) GetProjectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, err := s.repos.Projects.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			if errors.Is(err, interrors.ErrProjectNotFound) {
				respondError(w, http.StatusNotFound, "not_found", "Project not found")
				return
			}
			log.Err(err).Msg("failed to get project")
			respondError(w, http.StatusInternalServerError, "server_error", "An internal error occurred")
			return
		}
		respondJSON(w, http.StatusOK, project)
	}
}

func (s *Server) CreateProjectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var project projects.Project
		if err := json.NewDecoder(r.Body).Decode(&project); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "Malformed request body")
			return
		}
		if project.CustomerID == "" || project.Name == "" {
			respondError(w, http.StatusBadRequest, "invalid_request", "customer_id and name are required")
			return
		}
		project.ID = ""

		if err := s.repos.Projects.Upsert(r.Context(), &project); err != nil {
			log.Err(err).Msg("failed to create project")
			respondError(w, http.StatusInternalServerError, "server_error", "An internal error occurred")
			return
		}

		s.publish(r, notify.Event{Entity: "project", Action: "created", ID: project.ID})
		respondJSON(w, http.StatusCreated, &project)
	}
}

func (s *Server) UpdateProjectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		existing, err := s.repos.Projects.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, interrors.ErrProjectNotFound) {
				respondError(w, http.StatusNotFound, "not_found", "Project not found")
				return
			}
			log.Err(err).Msg("failed to get project")
			respondError(w, http.StatusInternalServerError, "server_error", "An internal error occurred")
			return
		}

		var project projects.Project
		if err := json.NewDecoder(r.Body).Decode(&project); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "Malformed request body")
			return
		}
		project.ID = id
		project.CreatedAt = existing.CreatedAt

		if err := s.repos.Projects.Upsert(r.Context(), &project); err != nil {
			log.Err(err).Msg("failed to update project")
			respondError(w, http.StatusInternalServerError, "server_error", "An internal error occurred")
			return
		}

		s.publish(r, notify.Event{Entity: "project", Action: "updated", ID: id})
		respondJSON(w, http.StatusOK, &project)
	}
}

func (s *Server) DeleteProjectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := s.repos.Projects.Delete(r.Context(), id); err != nil {
			if errors.Is(err, interrors.ErrProjectNotFound) {
				respondError(w, http.StatusNotFound, "not_found", "Project not found")
				return
			}
			log.Err(err).Msg("failed to delete project")
			respondError(w, http.StatusInternalServerError, "server_error", "An internal error occurred")
			return
		}

		s.publish(r, notify.Event{Entity: "project", Action: "deleted", ID: id})
		w.WriteHeader(http.StatusNoContent)
	}
}
