package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/workflex/workflex/internal/api/handler"
	"github.com/workflex/workflex/internal/api/middleware"
)

// AuthService is what the router needs from the auth package: the HTTP
// operations plus bearer token resolution for the Auth middleware.
type AuthService interface {
	handler.AuthService
	middleware.Authenticator
}

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	DBPinger        handler.Pinger
	DocPinger       handler.Pinger
	Version         string
	OpenAPISpec     []byte
	AuthService     AuthService
	ScheduleService handler.ScheduleService
	TeamService     handler.TeamService
	BoardService    handler.BoardService
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	r.Get("/health", handler.NewHealthHandler(deps.DBPinger, deps.DocPinger, deps.Version).ServeHTTP)

	if len(deps.OpenAPISpec) > 0 {
		r.Get("/openapi.json", handler.NewOpenAPIHandler(deps.OpenAPISpec).ServeHTTP)
	}

	authHandler := handler.NewAuthHandler(deps.AuthService)
	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)

	scheduleHandler := handler.NewScheduleHandler(deps.ScheduleService)
	teamHandler := handler.NewTeamHandler(deps.TeamService)
	boardHandler := handler.NewBoardHandler(deps.BoardService)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(deps.AuthService))

		r.Get("/me", authHandler.Me)
		r.Get("/board", boardHandler.ServeHTTP)

		r.Route("/schedule", func(r chi.Router) {
			r.Get("/", scheduleHandler.List)
			r.Post("/", scheduleHandler.Create)
			r.Put("/{id}", scheduleHandler.Update)
			r.Delete("/{id}", scheduleHandler.Delete)
			r.Post("/{id}/apply-to-all", scheduleHandler.ApplyToAll)
		})

		r.Route("/teams", func(r chi.Router) {
			r.Get("/", teamHandler.List)
			r.Post("/", teamHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", teamHandler.Get)
				r.Patch("/", teamHandler.Update)
				r.Delete("/", teamHandler.Delete)
				r.Get("/permissions", teamHandler.Permissions)
				r.Post("/leave", teamHandler.Leave)
				r.Delete("/members/{memberId}", teamHandler.RemoveMember)
				r.Put("/members/{memberId}/role", teamHandler.UpdateMemberRole)
				r.Get("/invites", teamHandler.ListInvites)
				r.Post("/invites", teamHandler.Invite)
				r.Delete("/invites/{inviteId}", teamHandler.CancelInvite)
			})
		})

		r.Route("/invites", func(r chi.Router) {
			r.Get("/", teamHandler.MyInvites)
			r.Post("/{inviteId}/accept", teamHandler.AcceptInvite)
			r.Post("/{inviteId}/decline", teamHandler.DeclineInvite)
		})
	})

	return r
}
