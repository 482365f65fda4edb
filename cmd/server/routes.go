package main

import (
	"github.com/gin-gonic/gin"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/troop78/troophub/internal/archivesync"
	"github.com/troop78/troophub/internal/blasts"
	"github.com/troop78/troophub/internal/dashboard"
	"github.com/troop78/troophub/internal/documents"
	"github.com/troop78/troophub/internal/middleware"
	"github.com/troop78/troophub/internal/newsletters"
	"github.com/troop78/troophub/internal/photos"
	"github.com/troop78/troophub/internal/policy"
	"github.com/troop78/troophub/internal/realtime"
	"github.com/troop78/troophub/internal/roster"
	"github.com/troop78/troophub/internal/search"
	"github.com/troop78/troophub/internal/store"
	"github.com/troop78/troophub/internal/trips"
	"github.com/troop78/troophub/internal/viewas"
	"github.com/troop78/troophub/pkg/queue"
	"github.com/troop78/troophub/pkg/response"
)

// deps is everything the router needs from main.
type deps struct {
	store    *store.Store
	tokens   *viewas.TokenService
	queue    queue.JobQueue
	recorder blasts.DeliveryRecorder
	hub      *realtime.Hub
	manager  *archivesync.Manager
	schedule *rrule.RRule
	meetings int
	origins  []string
	logger   *zap.Logger
}

func newRouter(d deps) *gin.Engine {
	logger := d.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	viewasHandler := viewas.NewHandler(viewas.NewRepository(d.store), d.tokens, logger)
	dashboardHandler := dashboard.NewHandler(dashboard.NewRepository(d.store), d.schedule, d.meetings, logger)
	rosterHandler := roster.NewHandler(roster.NewRepository(d.store), logger)
	tripHandler := trips.NewHandler(trips.NewRepository(d.store), logger)
	photoHandler := photos.NewHandler(photos.NewRepository(d.store), logger)
	documentHandler := documents.NewHandler(documents.NewRepository(d.store), logger)
	newsletterHandler := newsletters.NewHandler(newsletters.NewRepository(d.store), logger)
	blastHandler := blasts.NewHandler(blasts.NewRepository(d.store), d.queue, d.recorder, logger)
	searchHandler := search.NewHandler(search.NewRepository(d.store), logger)
	syncHandler := archivesync.NewHandler(d.manager, logger)

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS(d.origins))
	router.Use(middleware.Logger(logger))
	router.NoRoute(middleware.NotFound)
	router.NoMethod(middleware.MethodNotAllowed)

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// WebSocket (token in query; the run id selects the room)
	router.GET("/ws", realtime.ServeWs(d.hub, d.manager, d.tokens, realtime.Upgrader(d.origins), logger))

	api := router.Group("")
	api.Use(middleware.Viewer(d.tokens))
	{
		// Role switcher
		api.GET("/view-as/roles", viewasHandler.Roles)
		api.POST("/view-as", viewasHandler.ViewAs)
		api.GET("/me", viewasHandler.Me)

		api.GET("/dashboard", dashboardHandler.Get)

		// Roster (scope and masking are resolved per viewer in the handler)
		api.GET("/roster", rosterHandler.List)
		api.GET("/roster/:id", rosterHandler.Get)
		api.PATCH("/roster/:id", middleware.RequireCapability(policy.EditRoster), rosterHandler.Update)

		// Trips
		api.GET("/trips", tripHandler.List)
		api.GET("/trips/:id", tripHandler.Get)
		api.POST("/trips/:id/permission-slips/:memberId/sign", tripHandler.Sign)

		// Photo archive
		api.GET("/photos", photoHandler.List)
		api.GET("/photos/memory-of-the-day", photoHandler.MemoryOfTheDay)
		curate := api.Group("/photos", middleware.RequireCapability(policy.CurateArchive))
		curate.POST("/:id/tags", photoHandler.AddTag)
		curate.DELETE("/:id/tags/:tag", photoHandler.RemoveTag)
		curate.POST("/:id/tags/:tag/verify", photoHandler.ToggleTag)
		curate.POST("/:id/faces/:index/verify", photoHandler.VerifyFace)

		// Documents
		api.GET("/documents", documentHandler.List)
		api.POST("/documents", documentHandler.Upload)
		api.GET("/documents/required", documentHandler.Required)
		api.GET("/documents/submissions", middleware.RequireCapability(policy.ViewAllSubmissions), documentHandler.Submissions)
		api.POST("/documents/:id/sign/:memberId", documentHandler.Sign)
		review := api.Group("/documents", middleware.RequireCapability(policy.ApproveDocument))
		review.POST("/:id/approve", documentHandler.Approve)
		review.POST("/:id/reject", documentHandler.Reject)

		api.GET("/newsletters", newsletterHandler.List)

		// Blasts (emergency permission is checked when composing)
		send := api.Group("/blasts", middleware.RequireCapability(policy.SendBroadcast))
		send.GET("", blastHandler.List)
		send.POST("", blastHandler.Send)
		send.GET("/:id/deliveries", blastHandler.Deliveries)
		api.POST("/blasts/:id/read", blastHandler.MarkRead)

		api.GET("/search", searchHandler.Search)

		// Archive sync
		api.GET("/sync/:id", syncHandler.Get)
		run := api.Group("/sync", middleware.RequireCapability(policy.RunArchiveSync))
		run.GET("", syncHandler.List)
		run.POST("", syncHandler.Start)
		run.DELETE("", syncHandler.Reset)
		run.DELETE("/:id", syncHandler.Cancel)
	}

	return router
}
