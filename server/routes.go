package server

func (s *Server) initRoutes() {
	// Login flow: browser-facing, unauthenticated
	s.RegisterRouteFunc("GET "+RouteLogin, s.LoginHandler())
	s.RegisterRouteFunc("GET "+RouteLoginCallback, s.LoginCallbackHandler())
	s.RegisterRouteFunc("POST "+RouteLoginCallback, s.LoginCallbackHandler()) // For form_post response mode

	// Session API: every request goes through bearer resolution, then
	// standard validation
	s.RegisterRouteFunc("POST "+RouteRefreshToken, s.protected(s.RefreshTokenHandler()))
	s.RegisterRouteFunc("GET "+RouteSession, s.protected(s.SessionHandler()))

	// Entity CRUD
	s.RegisterRouteFunc("GET "+RouteCustomers, s.protected(s.ListCustomersHandler()))
	s.RegisterRouteFunc("GET "+RouteCustomerByID, s.protected(s.GetCustomerHandler()))
	s.RegisterRouteFunc("POST "+RouteCustomers, s.protected(s.CreateCustomerHandler()))
	s.RegisterRouteFunc("PUT "+RouteCustomerByID, s.protected(s.UpdateCustomerHandler()))
	s.RegisterRouteFunc("DELETE "+RouteCustomerByID, s.protected(s.DeleteCustomerHandler()))

	s.RegisterRouteFunc("GET "+RouteProjects, s.protected(s.ListProjectsHandler()))
	s.RegisterRouteFunc("GET "+RouteProjectByID, s.protected(s.GetProjectHandler()))
	s.RegisterRouteFunc("POST "+RouteProjects, s.protected(s.CreateProjectHandler()))
	s.RegisterRouteFunc("PUT "+RouteProjectByID, s.protected(s.UpdateProjectHandler()))
	s.RegisterRouteFunc("DELETE "+RouteProjectByID, s.protected(s.DeleteProjectHandler()))

	s.RegisterRouteFunc("GET "+RouteSharedPorts, s.protected(s.ListSharedPortsHandler()))
	s.RegisterRouteFunc("GET "+RouteSharedPortByID, s.protected(s.GetSharedPortHandler()))
	s.RegisterRouteFunc("POST "+RouteSharedPorts, s.protected(s.CreateSharedPortHandler()))
	s.RegisterRouteFunc("PUT "+RouteSharedPortByID, s.protected(s.UpdateSharedPortHandler()))
	s.RegisterRouteFunc("DELETE "+RouteSharedPortByID, s.protected(s.DeleteSharedPortHandler()))
}
