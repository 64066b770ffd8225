package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/99minutos/orders-console/internal/api/metrics"
	"github.com/99minutos/orders-console/internal/core/ports"
)

var errEmptyRefresh = errors.New("refresh response carried no access token")

type refreshResponse struct {
	AccessToken string `json:"access_token"`
}

// refresh obtains a new token for the session behind tokens. Concurrent
// callers holding the same stale token share one upstream call and all
// receive its outcome. The shared call is detached from the cancellation of
// whichever caller started it, but bounded by the client timeout; a caller
// whose own context ends stops waiting for it.
func (c *Client) refresh(ctx context.Context, tokens ports.TokenStore, stale string) (string, error) {
	if tokens == nil {
		return "", errors.New("no token store to refresh into")
	}
	if current := c.currentToken(ctx, tokens); current != "" && current != stale {
		return current, nil
	}

	ch := c.refreshes.DoChan(refreshKey(tokens, stale), func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		// a refresh that finished between the check above and this call
		// already replaced the token
		if current := c.currentToken(rctx, tokens); current != "" && current != stale {
			return current, nil
		}
		return c.doRefresh(rctx, tokens, stale)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Shared {
			metrics.TokenRefreshTotal.WithLabelValues("shared").Inc()
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *Client) doRefresh(ctx context.Context, tokens ports.TokenStore, stale string) (string, error) {
	req := ports.APIRequest{Method: http.MethodPost, Route: ports.RouteRefresh}

	resp, err := c.send(ctx, tokens, req, ports.RouteRefresh, nil, stale)
	if err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
		return "", err
	}
	defer resp.Body.Close()

	var out refreshResponse
	if err := c.decode(resp, req, &out); err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
		return "", err
	}
	if out.AccessToken == "" {
		metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
		c.log.Error().Msg("token refresh answered without a token")
		return "", errEmptyRefresh
	}

	if err := tokens.SetToken(ctx, out.AccessToken); err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
		c.log.Error().Err(err).Msg("failed to store refreshed token")
		return "", fmt.Errorf("store refreshed token: %w", err)
	}

	metrics.TokenRefreshTotal.WithLabelValues("success").Inc()
	c.log.Info().Msg("access token refreshed")
	return out.AccessToken, nil
}

func refreshKey(tokens ports.TokenStore, stale string) string {
	if k, ok := tokens.(ports.SessionKeyer); ok {
		return k.SessionKey() + "\x00" + stale
	}
	return fmt.Sprintf("%p\x00%s", tokens, stale)
}
