package server

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	interrors "github.com/tunnelmesh/go-tunnel-backend/internal/errors"
)

// SessionHandler resolves the current principal: the validated subject is
// looked up in the customer directory. A subject without a customer record
// is a 404, never an anonymous pass-through.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject := subjectFromContext(r.Context())
		if subject == "" {
			respondError(w, http.StatusUnauthorized, "unauthorized", "No authenticated subject")
			return
		}

		customer, err := s.repos.Customers.GetBySubject(r.Context(), subject)
		if err != nil {
			if errors.Is(err, interrors.ErrCustomerNotFound) {
				respondError(w, http.StatusNotFound, "not_found", "No customer for subject")
				return
			}
			log.Err(err).Str("subject", subject).Msg("customer lookup failed")
			respondError(w, http.StatusInternalServerError, "server_error", "An internal error occurred")
			return
		}

		respondJSON(w, http.StatusOK, customer)
	}
}
