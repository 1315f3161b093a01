package httpapi

import "net/http"

type route struct {
	pattern string
	handle  http.HandlerFunc
	// internal routes sit behind the job token
	internal bool
}

func (h *Handler) routes(swaggerEnabled bool) []route {
	routes := []route{
		{pattern: "GET /healthz", handle: h.Healthz},

		{pattern: "GET /v1/leagues", handle: h.ListLeagues},
		{pattern: "GET /v1/leagues/{leagueSlug}/matches", handle: h.ListLeagueMatches},
		{pattern: "POST /v1/leagues/{leagueSlug}/matches/refresh", handle: h.RefreshLeagueMatches},
		{pattern: "GET /v1/matches/{matchID}", handle: h.GetMatch},

		{pattern: "POST /v1/internal/jobs/sync-full", handle: h.RunSyncFullJob, internal: true},
		{pattern: "POST /v1/internal/jobs/sync-live", handle: h.RunSyncLiveJob, internal: true},
		{pattern: "GET /v1/internal/jobs/dispatches", handle: h.ListJobDispatches, internal: true},
	}
	if swaggerEnabled {
		routes = append(routes,
			route{pattern: "GET /openapi.yaml", handle: h.OpenAPI},
			route{pattern: "GET /docs", handle: h.SwaggerUI},
			route{pattern: "GET /docs/", handle: h.SwaggerUI},
		)
	}
	return routes
}

func mountRoutes(mux *http.ServeMux, routes []route, internalJobToken string) {
	for _, rt := range routes {
		var handler http.Handler = rt.handle
		if rt.internal {
			handler = RequireInternalJobToken(internalJobToken, handler)
		}
		mux.Handle(rt.pattern, handler)
	}
}
