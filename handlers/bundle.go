package handlers

// HandlerBundle groups all endpoint handlers for route registration.
type HandlerBundle struct {
	Requests *RequestHandler
	Alerts   *AlertHandler
	Donors   *DonorHandler
	Admin    *AdminHandler
	Health   *HealthHandler
}
