package server

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/tunnelmesh/go-tunnel-backend/customers"
	interrors "github.com/tunnelmesh/go-tunnel-backend/internal/errors"
	"github.com/tunnelmesh/go-tunnel-backend/notify"
	"github.com/tunnelmesh/go-tunnel-backend/session"
)

const (
	authStatePrefix  = "authstate:"
	authStateTimeout = 15 * time.Minute
)

// authState is the transient login-flow state kept between the redirect to
// the identity provider and its callback.
type authState struct {
	Nonce        string `json:"nonce"`
	CodeVerifier string `json:"code_verifier"`
}

// LoginHandler starts a login: it parks state/nonce/PKCE verifier in the
// store and sends the browser to the identity provider.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := generateRandomString(32)
		nonce := generateRandomString(32)
		codeVerifier := oauth2.GenerateVerifier()

		payload, err := json.Marshal(authState{Nonce: nonce, CodeVerifier: codeVerifier})
		if err != nil {
			respondError(w, http.StatusInternalServerError, "server_error", "An internal error occurred")
			return
		}
		if err := s.store.Set(r.Context(), authStatePrefix+state, string(payload), authStateTimeout); err != nil {
			log.Err(err).Msg("failed to store login state")
			respondError(w, http.StatusInternalServerError, "server_error", "An internal error occurred")
			return
		}

		http.Redirect(w, r, s.idp.AuthCodeURL(state, nonce, codeVerifier), http.StatusSeeOther)
	}
}

// LoginCallbackHandler completes a login. It runs once per identity-provider
// callback: resolve the upstream credentials, mint a pointer token, populate
// the session record, make sure a customer record exists, and hand the
// pointer back to the client via redirect.
//
// The only user-visible failure is a missing access token, which redirects
// to the configured fallback page. Upstream faults surface as the generic
// failure envelope.
func (s *Server) LoginCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// r.FormValue covers both query params (GET) and form_post (POST)
		accessToken := r.FormValue("access_token")
		var idToken, refreshToken string

		if code := r.FormValue("code"); code != "" {
			state, err := s.consumeAuthState(r)
			if err != nil {
				respondError(w, http.StatusBadRequest, "invalid_request", "Invalid state parameter")
				return
			}

			tokens, err := s.idp.Exchange(r.Context(), code, state.CodeVerifier)
			if err != nil {
				log.Err(err).Msg("code exchange failed")
				respondError(w, http.StatusBadGateway, "upstream_error", "Token exchange failed")
				return
			}

			// Query-string token wins when present; the exchanged session
			// token is the fallback.
			if accessToken == "" {
				accessToken = tokens.AccessToken
			}
			idToken = tokens.IDToken
			refreshToken = tokens.RefreshToken
		}

		if accessToken == "" {
			http.Redirect(w, r, s.config.GetLoginFailureURL(), http.StatusSeeOther)
			return
		}

		// The token was validated by whoever produced it; only the subject
		// claim is needed here.
		subject, err := session.ParseSubject(accessToken)
		if err != nil {
			log.Err(err).Msg("failed to parse subject from access token")
			respondError(w, http.StatusInternalServerError, "server_error", "An internal error occurred")
			return
		}

		pointer, err := s.minter.Mint(subject, "")
		if err != nil {
			log.Err(err).Msg("failed to mint pointer token")
			respondError(w, http.StatusInternalServerError, "server_error", "An internal error occurred")
			return
		}

		if err := s.records.WriteLogin(r.Context(), pointer, subject, accessToken, idToken, refreshToken); err != nil {
			log.Err(err).Msg("failed to write session record")
			respondError(w, http.StatusInternalServerError, "server_error", "An internal error occurred")
			return
		}

		if err := s.ensureCustomer(r, subject, accessToken); err != nil {
			log.Err(err).Str("subject", subject).Msg("customer provisioning failed")
			respondError(w, http.StatusBadGateway, "upstream_error", "Customer provisioning failed")
			return
		}

		redirectURL := s.config.GetLoginRedirectURL() + "?access_token=" + url.QueryEscape(pointer)
		http.Redirect(w, r, redirectURL, http.StatusSeeOther)
	}
}

// ensureCustomer provisions a customer record on first login. The create is
// conditional on the subject, so two concurrent completions for the same new
// subject converge on one record.
func (s *Server) ensureCustomer(r *http.Request, subject, accessToken string) error {
	ctx := r.Context()

	if _, err := s.repos.Customers.GetBySubject(ctx, subject); err == nil {
		return nil
	} else if !errors.Is(err, interrors.ErrCustomerNotFound) {
		return err
	}

	profile, err := s.idp.UserInfo(ctx, accessToken)
	if err != nil {
		return err
	}

	created, err := s.repos.Customers.CreateIfAbsent(ctx, &customers.Customer{
		Subject:    subject,
		Username:   profile.Username,
		Email:      profile.Email,
		GivenName:  profile.GivenName,
		FamilyName: profile.FamilyName,
	})
	if err != nil {
		return err
	}

	if err := s.publisher.Publish(ctx, notify.Event{Entity: "customer", Action: "created", ID: created.ID}); err != nil {
		log.Err(err).Msg("failed to publish customer event")
	}
	return nil
}

func (s *Server) consumeAuthState(r *http.Request) (authState, error) {
	stateParam := r.FormValue("state")
	if stateParam == "" {
		return authState{}, interrors.ErrNotFound
	}

	raw, err := s.store.Get(r.Context(), authStatePrefix+stateParam)
	if err != nil {
		return authState{}, err
	}
	if raw == "" {
		return authState{}, interrors.ErrNotFound
	}

	// Single-use: blank the entry so a replayed state no longer resolves.
	if err := s.store.Set(r.Context(), authStatePrefix+stateParam, "", time.Minute); err != nil {
		return authState{}, err
	}

	var state authState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return authState{}, err
	}
	return state, nil
}

// generateRandomString creates a random base64url string
func generateRandomString(length int) string {
	b := make([]byte, length)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
