package server

const (
	// Login flow
	RouteLogin         = "/Login"
	RouteLoginCallback = "/LoginCallback"

	// Session API
	RouteRefreshToken = "/RefreshToken"
	RouteSession      = "/Session"

	// Entity CRUD
	RouteCustomers      = "/Customers"
	RouteCustomerByID   = "/Customers/{id}"
	RouteProjects       = "/Projects"
	RouteProjectByID    = "/Projects/{id}"
	RouteSharedPorts    = "/SharedPorts"
	RouteSharedPortByID = "/SharedPorts/{id}"
)
