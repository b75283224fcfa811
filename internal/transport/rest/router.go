package rest

import (
	"database/sql"
	"log/slog"

	"github.com/frahmantamala/guard-deployment/internal/coverage"
	"github.com/frahmantamala/guard-deployment/internal/deployment"
	"github.com/frahmantamala/guard-deployment/internal/guard"
	"github.com/frahmantamala/guard-deployment/internal/leave"
	"github.com/frahmantamala/guard-deployment/internal/rotation"
	"github.com/frahmantamala/guard-deployment/internal/site"
	"github.com/frahmantamala/guard-deployment/internal/transport/middleware"
	"github.com/frahmantamala/guard-deployment/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers groups the domain handlers mounted under /api/v1. Nil handlers
// leave their routes unmounted.
type Handlers struct {
	Guard      *guard.Handler
	Site       *site.Handler
	Deployment *deployment.Handler
	Leave      *leave.Handler
	Coverage   *coverage.Handler
	Rotation   *rotation.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, driver string, h Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db, driver, logger)

	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.Operator)

	router.Handle(swagger.DocumentPath, swagger.DocumentHandler())
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Guard != nil {
			r.Route("/guards", func(gr chi.Router) {
				gr.Post("/", h.Guard.Register)
				gr.Get("/", h.Guard.List)
				gr.Get("/{id}", h.Guard.Get)
				gr.Patch("/{id}/status", h.Guard.ChangeStatus)
				gr.Patch("/{id}/role", h.Guard.ChangeRole)

				if h.Deployment != nil {
					gr.Get("/{id}/deployment", h.Deployment.Current)
					gr.Get("/{id}/deployments", h.Deployment.HistoryByGuard)
					gr.Get("/{id}/deployment-audit", h.Deployment.AuditTrail)
					gr.Post("/{id}/end-deployment", h.Deployment.EndDeployment)
				}
				if h.Leave != nil {
					gr.Get("/{id}/leaves", h.Leave.ListByGuard)
				}
				if h.Rotation != nil {
					gr.Get("/{id}/rotations", h.Rotation.ListByGuard)
				}
			})
		}

		if h.Site != nil {
			r.Route("/sites", func(sr chi.Router) {
				sr.Post("/", h.Site.Create)
				sr.Get("/", h.Site.List)
				sr.Get("/{id}", h.Site.Get)
				sr.Put("/{id}/requirements", h.Site.UpdateRequirements)
				sr.Put("/{id}/active", h.Site.SetActive)

				if h.Deployment != nil {
					sr.Get("/{id}/deployments", h.Deployment.HistoryBySite)
				}
				if h.Rotation != nil {
					sr.Get("/{id}/rotations", h.Rotation.ListBySite)
				}
			})
		}

		if h.Deployment != nil {
			r.Post("/deployments", h.Deployment.Deploy)
		}

		if h.Leave != nil {
			r.Route("/leaves", func(lr chi.Router) {
				lr.Post("/", h.Leave.Create)
				lr.Get("/", h.Leave.ListByStatus)
				lr.Get("/{id}", h.Leave.Get)
				lr.Post("/{id}/approve", h.Leave.Approve)
				lr.Post("/{id}/reject", h.Leave.Reject)
				lr.Post("/{id}/cancel", h.Leave.Cancel)
			})
		}

		if h.Coverage != nil {
			r.Get("/coverage/gaps", h.Coverage.Gaps)
			r.Get("/coverage/rotating", h.Coverage.FreeRotating)
		}

		if h.Rotation != nil {
			r.Route("/rotations", func(rr chi.Router) {
				rr.Post("/", h.Rotation.Assign)
				rr.Post("/complete-expired", h.Rotation.CompleteExpired)
				rr.Get("/{id}", h.Rotation.Get)
				rr.Post("/{id}/cancel", h.Rotation.Cancel)
			})
		}
	})
}
