package api

import (
	"github.com/therone18/SmartParking/internal/api/handler"
	"github.com/therone18/SmartParking/internal/api/middleware"
	"github.com/therone18/SmartParking/internal/config"
	"github.com/therone18/SmartParking/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRouter(
	cfg *config.Config,
	authService *service.AuthService,
	parkingService *service.ParkingService,
	reservationService *service.ReservationService,
	analyticsService *service.AnalyticsService,
	authMw *middleware.AuthMiddleware,
	wsManager *handler.WebSocketManager,
) *gin.Engine {
	r := gin.Default()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/system/healthcheck", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// WebSocket endpoint cho admin dashboard theo dõi trạng thái slot real-time
	wsHandler := handler.NewWebSocketHandler(wsManager)
	r.GET("/ws", wsHandler.HandleWebSocket)

	authHandler := handler.NewAuthHandler(authService)
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	locationHandler := handler.NewParkingLocationHandler(parkingService, authService)
	slotHandler := handler.NewParkingSlotHandler(parkingService)

	// Người chưa đăng nhập vẫn được duyệt danh sách bãi đỗ
	public := r.Group("/api/v1")
	{
		public.GET("/locations", locationHandler.GetAllLocations)
		public.GET("/locations/search", locationHandler.SearchLocations)
		public.GET("/locations/:id", locationHandler.GetLocationByID)
	}

	v1 := r.Group("/api/v1")
	v1.Use(authMw.Authenticate())
	{
		v1.GET("/profile", authHandler.GetProfile)
		v1.PUT("/profile", authHandler.UpdateProfile)

		locationRoutes := v1.Group("/locations")
		{
			locationRoutes.POST("", authMw.AuthorizeRole("admin"), locationHandler.CreateLocation)
			locationRoutes.DELETE("/:id", authMw.AuthorizeRole("admin"), locationHandler.DeleteLocation)
			locationRoutes.GET("/:id/reservations", authMw.AuthorizeRole("admin"), locationHandler.GetLocationReservations)
			locationRoutes.GET("/:id/users", authMw.AuthorizeRole("admin"), locationHandler.GetLocationUsers)
			locationRoutes.GET("/dashboard", authMw.AuthorizeRole("admin"), locationHandler.GetLocationDashboard)

			locationRoutes.POST("/:id/slots", authMw.AuthorizeRole("admin"), slotHandler.CreateSlot)
			locationRoutes.GET("/:id/slots", slotHandler.GetSlotsByLocation)
		}

		slotRoutes := v1.Group("/slots")
		slotRoutes.Use(authMw.AuthorizeRole("admin"))
		{
			slotRoutes.PUT("/:slot_id", slotHandler.UpdateSlot)
			slotRoutes.DELETE("/:slot_id", slotHandler.DeleteSlot)
			slotRoutes.POST("/:slot_id/lock", slotHandler.LockSlot)
			slotRoutes.POST("/:slot_id/unlock", slotHandler.UnlockSlot)
		}

		reservationHandler := handler.NewReservationHandler(reservationService, cfg.ReceiptUploadDir)
		reservationRoutes := v1.Group("/reservations")
		{
			reservationRoutes.POST("", reservationHandler.CreateReservation)
			reservationRoutes.GET("", authMw.AuthorizeRole("admin"), reservationHandler.ListAllReservations)
			reservationRoutes.GET("/me", reservationHandler.ListMyReservations)
			reservationRoutes.GET("/:id", reservationHandler.GetReservation)
			reservationRoutes.POST("/:id/check-in", reservationHandler.CheckIn)
			reservationRoutes.POST("/:id/check-out", reservationHandler.CheckOut)
			reservationRoutes.PUT("/:id/status", reservationHandler.UpdateStatus)
			reservationRoutes.PATCH("/:id/receipt", reservationHandler.UploadReceipt)
			reservationRoutes.POST("/:id/approve", authMw.AuthorizeRole("admin"), reservationHandler.ApproveReservation)
			reservationRoutes.DELETE("/:id", reservationHandler.CancelReservation) // Deprecated: alias của PUT status=Cancelled
		}

		adminUserHandler := handler.NewAdminUserHandler(authService)
		userRoutes := v1.Group("/users")
		userRoutes.Use(authMw.AuthorizeRole("admin"))
		{
			userRoutes.GET("", adminUserHandler.ListUsers)
			userRoutes.POST("/:id/deactivate", adminUserHandler.DeactivateUser)
			userRoutes.POST("/:id/reactivate", adminUserHandler.ReactivateUser)
		}

		analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
		summaryRoutes := v1.Group("/summary")
		summaryRoutes.Use(authMw.AuthorizeRole("admin"))
		{
			summaryRoutes.GET("/slot-utilization", analyticsHandler.SlotUtilizationSummary)
			summaryRoutes.GET("/slot-utilization/overall", analyticsHandler.OverallUtilization)
			summaryRoutes.GET("/daily", analyticsHandler.DailySummary)
			summaryRoutes.GET("/slot-active", analyticsHandler.ActiveSummary)
			summaryRoutes.GET("/slot-overdue", analyticsHandler.OverdueSummary)
		}
	}
	return r
}
