package routes

import (
	"github.com/go-chi/chi/v5"

	"helping-hands/shiftdesk/internal/api"
	"helping-hands/shiftdesk/internal/auth"
	"helping-hands/shiftdesk/internal/middleware"
)

// RegisterAPIRoutes registers all /api routes. Every route is
// authenticated; finer role checks live in the services so that refusals
// carry the lifecycle error kinds.
func RegisterAPIRoutes(r chi.Router, deps *api.Dependencies, handlers *api.Handlers, limiter middleware.RateLimiter) {

	r.Route("/api", func(a chi.Router) {
		a.Use(middleware.AuthMiddleware(deps.Services.Users, deps.Services.Tokens, deps.Config.Auth.TrustHeader))

		a.Get("/me", handlers.CurrentUser())
		a.Get("/rbac/roles/{role}/permissions", handlers.RolePermissions())
		a.Get("/rbac/check", handlers.CheckPermission())

		a.Route("/shifts", func(s chi.Router) {
			s.Get("/", handlers.ListShifts())
			s.Post("/", handlers.CreateShift())
			s.Post("/series", handlers.CreateShiftSeries())
			s.Post("/{id}/validate", handlers.ValidateShift())
			s.Post("/{id}/publish", handlers.PublishShift())
			s.Delete("/{id}", handlers.RemoveShift())

			s.With(middleware.RateLimitMiddleware(limiter, deps.Metrics)).
				Post("/{id}/volunteer", handlers.RequestCommitment())
		})

		a.Route("/volunteer-commitments", func(c chi.Router) {
			c.Get("/", handlers.ListCommitments())
			c.Post("/{id}/approve", handlers.DecideCommitment())
			c.Post("/{id}/cancel", handlers.CancelCommitment())
		})

		// Staff-only reporting
		a.Group(func(staff chi.Router) {
			staff.Use(middleware.IsStaffMiddleware())
			staff.Use(middleware.RequirePermission(auth.ActionReportView))

			staff.Get("/reports/shifts", handlers.ShiftRoster())
			staff.Post("/reports/coverage", handlers.CoverageReport())
			staff.Post("/reports/coverage/export", handlers.ExportCoverageReport())
		})
	})
}
