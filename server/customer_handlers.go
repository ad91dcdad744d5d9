package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/tunnelmesh/go-tunnel-backend/customers"
	interrors "github.com/tunnelmesh/go-tunnel-backend/internal/errors"
	"github.com/tunnelmesh/go-tunnel-backend/notify"
)

func (s *Server) ListCustomersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, limit := pagination(r)

		all, err := s.repos.Customers.List(r.Context(), offset, limit)
		if err != nil {
			log.Err(err).Msg("failed to list customers")
			respondError(w, http.StatusInternalServerError, "server_error", "An internal error occurred")
			return
		}
		respondJSON(w, http.StatusOK, all)
	}
}

func (s *Server) GetCustomerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customer, err := s.repos.Customers.GetByID(r.Context(), r.PathValue("id"))
		if err != nil {
			if errors.Is(err, interrors.ErrCustomerNotFound) {
				respondError(w, http.StatusNotFound, "not_found", "Customer not found")
				return
			}
			log.Err(err).Msg("failed to get customer")
			respondError(w, http.StatusInternalServerError, "server_error", "An internal error occurred")
			return
		}
		respondJSON(w, http.StatusOK, customer)
	}
}

func (s *Server) CreateCustomerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var customer customers.Customer
		if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "Malformed request body")
			return
		}
		if customer.Subject == "" {
			respondError(w, http.StatusBadRequest, "invalid_request", "Subject is required")
			return
		}

		created, err := s.repos.Customers.CreateIfAbsent(r.Context(), &customer)
		if err != nil {
			log.Err(err).Msg("failed to create customer")
			respondError(w, http.StatusInternalServerError, "server_error", "An internal error occurred")
			return
		}

		s.publish(r, notify.Event{Entity: "customer", Action: "created", ID: created.ID})
		respondJSON(w, http.StatusCreated, created)
	}
}

func (s *Server) UpdateCustomerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if _, err := s.repos.Customers.GetByID(r.Context(), id); err != nil {
			if errors.Is(err, interrors.ErrCustomerNotFound) {
				respondError(w, http.StatusNotFound, "not_found", "Customer not found")
				return
			}
			log.Err(err).Msg("failed to get customer")
			respondError(w, http.StatusInternalServerError, "server_error", "An internal error occurred")
			return
		}

		var customer customers.Customer
		if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "Malformed request body")
			return
		}
		customer.ID = id

		if err := s.repos.Customers.Upsert(r.Context(), &customer); err != nil {
			log.Err(err).Msg("failed to update customer")
			respondError(w, http.StatusInternalServerError, "server_error", "An internal error occurred")
			return
		}

		s.publish(r, notify.Event{Entity: "customer", Action: "updated", ID: id})
		respondJSON(w, http.StatusOK, &customer)
	}
}

func (s *Server) DeleteCustomerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := s.repos.Customers.Delete(r.Context(), id); err != nil {
			if errors.Is(err, interrors.ErrCustomerNotFound) {
				respondError(w, http.StatusNotFound, "not_found", "Customer not found")
				return
			}
			log.Err(err).Msg("failed to delete customer")
			respondError(w, http.StatusInternalServerError, "server_error", "An internal error occurred")
			return
		}

		s.publish(r, notify.Event{Entity: "customer", Action: "deleted", ID: id})
		w.WriteHeader(http.StatusNoContent)
	}
}

// publish sends an entity event; delivery failures are logged, not surfaced.
func (s *Server) publish(r *http.Request, event notify.Event) {
	if err := s.publisher.Publish(r.Context(), event); err != nil {
		log.Err(err).Str("entity", event.Entity).Str("action", event.Action).Msg("failed to publish event")
	}
}

func pagination(r *http.Request) (offset, limit int) {
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return offset, limit
}
