package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

// Player routes carry member ids explicitly: the HTTP surface is consumed
// by the chat bot, which acts on behalf of the member it heard from.
func registerPlayerRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/players/register", handler.RegisterMember)
	mux.HandleFunc("GET /v1/players/{memberID}", handler.GetMemberProfile)
	mux.HandleFunc("GET /v1/players/{memberID}/rank", handler.GetQueueRank)
	mux.HandleFunc("GET /v1/players/{memberID}/points", handler.GetMemberPoints)
	mux.HandleFunc("GET /v1/players/{memberID}/strikes", handler.GetMemberStrikes)
	mux.HandleFunc("GET /v1/players/{memberID}/eligibility", handler.CheckEligibility)
	mux.HandleFunc("GET /v1/rankings", handler.ListPointsRanking)
	mux.HandleFunc("POST /v1/queue/join", handler.JoinQueue)
	mux.HandleFunc("POST /v1/queue/leave", handler.LeaveQueue)
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, adminToken string) {
	admin := func(h http.HandlerFunc) http.Handler {
		return RequireAdminToken(adminToken, h)
	}

	mux.Handle("GET /v1/admin/front-group", admin(handler.GetFrontGroup))
	mux.Handle("POST /v1/admin/queue/kick", admin(handler.KickFromQueue))
	mux.Handle("POST /v1/admin/queue/priority-join", admin(handler.PriorityJoin))
	mux.Handle("POST /v1/admin/sessions/start", admin(handler.StartSession))
	mux.Handle("POST /v1/admin/sessions/settle", admin(handler.SettleSession))
	mux.Handle("POST /v1/admin/recruit", admin(handler.Recruit))
	mux.Handle("POST /v1/admin/recruit/close", admin(handler.CloseRecruit))
	mux.Handle("POST /v1/admin/strikes/add", admin(handler.AddStrike))
	mux.Handle("POST /v1/admin/strikes/reduce", admin(handler.ReduceStrikes))
	mux.Handle("POST /v1/admin/strikes/{memberID}/reset", admin(handler.ResetStrikes))
	mux.Handle("POST /v1/admin/penalties", admin(handler.ApplyPenalty))
	mux.Handle("DELETE /v1/admin/penalties/{memberID}", admin(handler.ClearPenalty))
	mux.Handle("POST /v1/admin/points/adjust", admin(handler.AdjustPoints))
}
