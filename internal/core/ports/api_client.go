package ports

import (
	"context"
	"net/http"
	"net/url"
)

// Upstream authentication routes. A 401 on login or refresh is never
// recovered by refreshing.
const (
	RouteLogin   = "auth/login"
	RouteLogout  = "auth/logout"
	RouteRefresh = "auth/refresh"
	RouteMe      = "auth/me"
)

// APIRequest describes one call to the upstream REST API. Route is a
// template such as "ordens/:id/check-in"; Params fill its placeholders.
type APIRequest struct {
	Method string
	Route  string
	Params map[string]string
	Query  url.Values
	Body   any
}

// Get is a shorthand for a GET request without params.
func Get(route string) APIRequest {
	return APIRequest{Method: http.MethodGet, Route: route}
}

// Post is a shorthand for a POST request with an optional JSON body.
func Post(route string, body any) APIRequest {
	return APIRequest{Method: http.MethodPost, Route: route, Body: body}
}

// APIClient performs authenticated calls on behalf of the session behind tokens.
// When out is non-nil the JSON response body is decoded into it.
type APIClient interface {
	Do(ctx context.Context, tokens TokenStore, req APIRequest, out any) error
}
