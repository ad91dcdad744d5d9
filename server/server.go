package server

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/tunnelmesh/go-tunnel-backend/customers"
	"github.com/tunnelmesh/go-tunnel-backend/idp"
	"github.com/tunnelmesh/go-tunnel-backend/internal/config"
	"github.com/tunnelmesh/go-tunnel-backend/notify"
	"github.com/tunnelmesh/go-tunnel-backend/projects"
	"github.com/tunnelmesh/go-tunnel-backend/session"
	"github.com/tunnelmesh/go-tunnel-backend/sharedports"
)

// Repos holds the entity repositories behind the CRUD surface.
type Repos struct {
	Customers   customers.Repo
	Projects    projects.Repo
	SharedPorts sharedports.Repo
}

// Deps are the collaborators the server is wired with. Store backs both the
// session record and the transient login-flow state; IdP and Verifier talk
// to the upstream identity provider.
type Deps struct {
	Store     session.Store
	IdP       idp.Client
	Verifier  TokenVerifier
	Repos     Repos
	Publisher notify.Publisher
	Logger    zerolog.Logger
}

type Server struct {
	env       string // Environment (e.g., "DEV", "production")
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	logger    zerolog.Logger
	minter    *session.Minter
	records   *session.Records
	store     session.Store
	idp       idp.Client
	verifier  TokenVerifier
	repos     Repos
	publisher notify.Publisher
}

func New(cfg config.Config, deps Deps) (*Server, error) {
	if deps.Store == nil {
		return nil, errors.New("[Server New] session store is required")
	}
	if deps.IdP == nil {
		return nil, errors.New("[Server New] identity provider client is required")
	}
	if deps.Verifier == nil {
		return nil, errors.New("[Server New] token verifier is required")
	}
	if deps.Repos.Customers == nil {
		return nil, errors.New("[Server New] customers repo is required")
	}
	if deps.Repos.Projects == nil {
		return nil, errors.New("[Server New] projects repo is required")
	}
	if deps.Repos.SharedPorts == nil {
		return nil, errors.New("[Server New] shared ports repo is required")
	}
	if deps.Publisher == nil {
		return nil, errors.New("[Server New] publisher is required")
	}

	minter, err := session.NewMinter(cfg.GetPointerSigningKey())
	if err != nil {
		return nil, errors.Wrap(err, "[Server New] failed to create pointer minter")
	}

	records, err := session.NewRecords(deps.Store)
	if err != nil {
		return nil, errors.Wrap(err, "[Server New] failed to create session records")
	}

	s := &Server{
		env:       cfg.GetEnv(),
		mux:       http.NewServeMux(),
		config:    cfg,
		logger:    deps.Logger,
		minter:    minter,
		records:   records,
		store:     deps.Store,
		idp:       deps.IdP,
		verifier:  deps.Verifier,
		repos:     deps.Repos,
		publisher: deps.Publisher,
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		s.logger.Debug().Str("route", route).Msg("registered")
	}
}
