package server

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// RefreshTokenHandler rotates the stored access token for a pointer without
// changing the pointer itself. The pointer is the credential the client
// presented (bearer resolution already swapped the header). A refresh the
// provider rejects is a typed failure result, never a fault; nothing in the
// store is mutated on failure.
//
// The route sits behind standard validation, so a client has to refresh
// while its current access token still validates; once that token has lapsed
// the only way back is a new login.
func (s *Server) RefreshTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pointer := pointerFromContext(r.Context())
		if pointer == "" {
			respondError(w, http.StatusUnauthorized, "unauthorized", "Missing credential")
			return
		}

		subject, err := s.records.GetPointerSubject(r.Context(), pointer)
		if err != nil {
			log.Err(err).Msg("refresh: subject lookup failed")
			respondError(w, http.StatusInternalServerError, "server_error", "An internal error occurred")
			return
		}

		refreshToken, err := s.records.GetPointerRefreshToken(r.Context(), pointer)
		if err != nil {
			log.Err(err).Msg("refresh: refresh-token lookup failed")
			respondError(w, http.StatusInternalServerError, "server_error", "An internal error occurred")
			return
		}

		if subject == "" || refreshToken == "" {
			respondJSON(w, http.StatusOK, resultResponse{Success: false, Error: "no refresh token for session"})
			return
		}

		// Structural check on the pointer itself. A refresh must not revive
		// a pointer past its validity window, however the store entries got
		// there.
		claims, err := s.minter.Verify(pointer)
		if err != nil {
			respondJSON(w, http.StatusOK, resultResponse{Success: false, Error: "session expired"})
			return
		}

		newAccessToken, err := s.idp.Refresh(r.Context(), refreshToken)
		if err != nil {
			log.Err(err).Str("subject", subject).Msg("refresh exchange failed")
			respondJSON(w, http.StatusOK, resultResponse{Success: false, Error: "token refresh failed"})
			return
		}

		// Overwrite the access-token entries only, capped to the pointer's
		// remaining validity so the entries cannot outlive the pointer. The
		// refresh token is not re-stored even when the provider rotates it.
		if err := s.records.OverwriteAccessTokens(r.Context(), pointer, subject, newAccessToken, time.Until(claims.ExpiresAt)); err != nil {
			log.Err(err).Msg("refresh: failed to store access token")
			respondError(w, http.StatusInternalServerError, "server_error", "An internal error occurred")
			return
		}

		respondJSON(w, http.StatusOK, resultResponse{Success: true})
	}
}
