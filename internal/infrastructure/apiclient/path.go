package apiclient

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/99minutos/orders-console/internal/core/domain"
	"github.com/99minutos/orders-console/internal/core/ports"
)

// BuildPath expands a route template such as "ordens/:id/check-in" with
// escaped params and appends the encoded query. The result is relative to
// the client's base URL. Params that would resolve as dot segments are
// rejected so a value can never climb out of its route.
func BuildPath(route string, params map[string]string, query url.Values) (string, error) {
	segments := strings.Split(strings.TrimPrefix(route, "/"), "/")
	for i, seg := range segments {
		if !strings.HasPrefix(seg, ":") {
			continue
		}
		name := seg[1:]
		value, ok := params[name]
		if !ok || value == "" {
			return "", fmt.Errorf("%w: apiclient: missing path param %q for route %q", domain.ErrInvalidInput, name, route)
		}
		if value == "." || value == ".." {
			return "", fmt.Errorf("%w: apiclient: path param %q for route %q is a dot segment", domain.ErrInvalidInput, name, route)
		}
		segments[i] = url.PathEscape(value)
	}

	path := strings.Join(segments, "/")
	if q := query.Encode(); q != "" {
		path += "?" + q
	}
	return path, nil
}

func isAuthRoute(route string) bool {
	route = strings.TrimPrefix(route, "/")
	return route == ports.RouteLogin || route == ports.RouteRefresh
}
