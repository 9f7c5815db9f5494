package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/traldis/court-queue/docs"
	"github.com/traldis/court-queue/handlers"
)

// SetupRoutes wires the public surface, the websocket endpoint and the
// admin group behind the session middleware.
func SetupRoutes(
	router *chi.Mux,
	allowedOrigins []string,
	adminOnly func(http.Handler) http.Handler,
	eventHandler *handlers.EventHandler,
	queueHandler *handlers.QueueHandler,
	adminHandler *handlers.AdminHandler,
	authHandler *handlers.AuthHandler,
	mediaHandler *handlers.MediaHandler,
	contactHandler *handlers.ContactHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	router.Get("/swagger/doc.json", docs.ServeOpenAPI)
	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	router.Route("/events", func(r chi.Router) {
		r.Get("/", eventHandler.ListEvents)
		r.Get("/{eventID}", eventHandler.GetEvent)
		r.Get("/{eventID}/link", eventHandler.CheckInLink)
		r.Get("/{eventID}/qr", eventHandler.CheckInQR)
		r.Get("/{eventID}/photos", mediaHandler.ListPhotos)

		r.Get("/{eventID}/queue", queueHandler.GetQueue)
		r.Post("/{eventID}/checkin/solo", queueHandler.CheckInSolo)
		r.Post("/{eventID}/checkin/team", queueHandler.CheckInTeam)
	})

	router.Get("/ws/events/{eventID}", webSocketHandler.ServeWs)

	router.Post("/contact", contactHandler.Submit)

	router.Route("/admin", func(r chi.Router) {
		r.Post("/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)

			r.Route("/events/{eventID}", func(r chi.Router) {
				r.Post("/activate", adminHandler.ActivateEvent)
				r.Post("/finish", adminHandler.FinishEvent)
				r.Post("/pause", adminHandler.PauseQueue)
				r.Post("/resume", adminHandler.ResumeQueue)

				r.Post("/matches/start", adminHandler.StartMatch)
				r.Post("/matches/end", adminHandler.EndMatch)

				r.Post("/players", adminHandler.AddSoloPlayer)
				r.Delete("/players/{playerID}", adminHandler.RemovePlayer)
				r.Post("/teams", adminHandler.AddTeam)
				r.Delete("/teams/{teamID}", adminHandler.RemoveTeam)
				r.Delete("/queue", adminHandler.ClearQueue)

				r.Post("/photos", mediaHandler.UploadPhoto)
				r.Delete("/photos/{photoID}", mediaHandler.DeletePhoto)
			})
		})
	})
}
