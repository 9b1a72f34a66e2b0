package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter assembles the middleware chain and the /api/v1 route tree.
// Auth endpoints and the health probe sit outside authMiddleware; every
// resource route requires a valid token.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Route("/rooms", s.roomRoutes)
			r.Route("/devices", s.deviceRoutes)
			r.Route("/scenes", s.sceneRoutes)
			r.Route("/rules", s.ruleRoutes)

			// Dashboard event feed
			r.Get("/ws", s.handleWebSocket)
		})
	})

	return r
}

func (s *Server) roomRoutes(r chi.Router) {
	r.Get("/", s.handleListRooms)
	r.Post("/", s.handleCreateRoom)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetRoom)
		r.Put("/", s.handleUpdateRoom)
		r.Delete("/", s.handleDeleteRoom)
		r.Get("/devices", s.handleListRoomDevices)
	})
}

func (s *Server) deviceRoutes(r chi.Router) {
	r.Get("/", s.handleListDevices)
	r.Post("/", s.handleCreateDevice)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetDevice)
		r.Put("/", s.handleUpdateDevice)
		r.Delete("/", s.handleDeleteDevice)
		r.Get("/status", s.handleGetDeviceStatus)
		r.Post("/status", s.handleUpdateDeviceStatus)
		r.Post("/toggle", s.handleToggleDevice)
		r.Get("/logs", s.handleListDeviceLogs)
	})
}

func (s *Server) sceneRoutes(r chi.Router) {
	r.Get("/", s.handleListScenes)
	r.Post("/", s.handleCreateScene)
	r.Get("/templates", s.handleListTemplates)
	r.Post("/from-template", s.handleCreateSceneFromTemplate)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetScene)
		r.Put("/", s.handleUpdateScene)
		r.Delete("/", s.handleDeleteScene)
		r.Post("/execute", s.handleExecuteScene)
		r.Post("/schedule", s.handleScheduleScene)
		r.Get("/devices", s.handleListSceneDevices)
	})
}

// Rule storage is CRUD only; nothing evaluates rules yet.
func (s *Server) ruleRoutes(r chi.Router) {
	r.Get("/", s.handleListRules)
	r.Post("/", s.handleCreateRule)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetRule)
		r.Put("/", s.handleUpdateRule)
		r.Delete("/", s.handleDeleteRule)
		r.Post("/enable", s.handleEnableRule)
	})
}
