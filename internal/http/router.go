package api

import (
	stdhttp "net/http"

	intconfig "buspass/internal/config"
	h "buspass/internal/http/handlers"
	"buspass/internal/http/middleware"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func NewRouter(env intconfig.Env, hd h.Handler) *gin.Engine {
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.WithError(err).Warn("failed to set trusted proxies")
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"success": false,
			"message": "Route not found",
			"path":    c.Request.URL.Path,
			"method":  c.Request.Method,
		})
	})

	auth := middleware.RequireAuth(hd.Secret)
	admin := middleware.RequireRoles("admin")

	api := r.Group("/api")
	{
		api.GET("/health", hd.Health)
		api.GET("/db-check", hd.DBCheck)
		api.GET("/system/routes", func(c *gin.Context) {
			routes := r.Routes()
			out := make([]gin.H, 0, len(routes))
			for _, rt := range routes {
				out = append(out, gin.H{"method": rt.Method, "path": rt.Path})
			}
			c.JSON(stdhttp.StatusOK, gin.H{"routes": out})
		})

		// Auth
		authGroup := api.Group("/auth")
		authGroup.POST("/login", hd.Login)
		authGroup.POST("/register", hd.Register)

		// Buses
		buses := api.Group("/buses")
		buses.GET("/search", hd.SearchBuses)
		buses.GET("/schedules", hd.BusSchedules)
		buses.GET("", hd.ListBuses)
		buses.GET("/:id", hd.GetBus)

		// Routes
		routes := api.Group("/routes")
		routes.GET("", hd.ListRoutes)
		routes.GET("/:id", hd.GetRoute)
		routes.GET("/:id/geojson", hd.RouteGeoJSON)

		// Stops
		stops := api.Group("/stops")
		stops.GET("", hd.ListStops)
		stops.GET("/search", hd.SearchStops)
		stops.GET("/:id", hd.GetStop)

		// Bookings
		bookings := api.Group("/bookings", auth)
		bookings.POST("", hd.CreateBooking)
		bookings.GET("/me", hd.MyBookings)
		bookings.GET("/:id", hd.GetBooking)
		bookings.PUT("/:id/cancel", hd.CancelBooking)
		bookings.GET("/:id/ticket", hd.BookingTicketPDF)
		bookings.GET("/:id/invoice", hd.BookingInvoicePDF)

		// Passes
		passes := api.Group("/passes")
		passes.GET("/verify/:code", hd.CheckPass)
		applications := passes.Group("/applications", auth)
		applications.POST("", hd.ApplyPass)
		applications.GET("/me", hd.MyPassApplications)
		applications.GET("/:id", hd.GetPassApplication)
		applications.POST("/:id/otp", hd.SendPassOTP)
		applications.POST("/:id/verify", hd.VerifyPassOTP)
		applications.PUT("/:id/cancel", hd.CancelPass)

		// Admin
		adm := api.Group("/admin", auth, admin)
		adm.GET("/dashboard", hd.Dashboard)

		adm.POST("/stops", hd.CreateStop)
		adm.PUT("/stops/:id", hd.UpdateStop)
		adm.DELETE("/stops/:id", hd.DeleteStop)

		adm.POST("/routes", hd.CreateRoute)
		adm.PUT("/routes/:id", hd.UpdateRoute)
		adm.DELETE("/routes/:id", hd.DeleteRoute)
		adm.POST("/routes/:id/stops", hd.AddRouteStop)
		adm.DELETE("/routes/:id/stops/:stopId", hd.RemoveRouteStop)

		adm.POST("/buses", hd.CreateBus)
		adm.PUT("/buses/:id", hd.UpdateBus)
		adm.DELETE("/buses/:id", hd.DeleteBus)

		adm.GET("/bookings", hd.AdminListBookings)

		adm.GET("/passes/applications", hd.AdminListPassApplications)
		adm.PUT("/passes/applications/:id/status", hd.AdminUpdatePassStatus)
	}

	return r
}
