package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/therone18/SmartParking/internal/api"
	"github.com/therone18/SmartParking/internal/api/handler"
	"github.com/therone18/SmartParking/internal/api/middleware"
	"github.com/therone18/SmartParking/internal/config"
	"github.com/therone18/SmartParking/internal/repository/postgresql"
	"github.com/therone18/SmartParking/internal/service"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	log.Println("Cấu hình đã được tải.")

	// 2. Setup Database Connection
	db, err := postgresql.NewDB(cfg)
	if err != nil {
		log.Fatalf("Không thể kết nối database: %v", err)
	}
	defer db.Close()
	log.Println("Đã kết nối database thành công!")

	// 3. Apply Migrations
	if err := postgresql.RunMigrations(context.Background(), db, cfg.MigrationsPath); err != nil {
		log.Fatalf("Không thể chạy migration: %v", err)
	}

	// 4. Initialize Repositories
	userRepo := postgresql.NewPgUserRepository(db)
	locationRepo := postgresql.NewPgParkingLocationRepository(db)
	slotRepo := postgresql.NewPgParkingSlotRepository(db)
	reservationRepo := postgresql.NewPgReservationRepository(db)

	// init websocket manager
	webSocketManager := handler.NewWebSocketManager()
	go webSocketManager.Start()
	log.Println("WebSocket Manager đã được khởi động.")

	// 5. Initialize Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpirationHours)
	parkingService := service.NewParkingService(locationRepo, slotRepo, reservationRepo)
	reservationService := service.NewReservationService(reservationRepo, slotRepo, webSocketManager)
	analyticsService := service.NewAnalyticsService(locationRepo, slotRepo, reservationRepo)

	// 6. Initialize Auth Middleware
	authMiddleware := middleware.NewAuthMiddleware(authService)

	// 7. Start background job quét reservation quá hạn
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	go startOverdueSweepJob(sweepCtx, reservationService, cfg.SweepInterval)

	// 8. Setup HTTP Router
	router := api.SetupRouter(cfg, authService, parkingService, reservationService, analyticsService, authMiddleware, webSocketManager)

	// 9. Start HTTP Server
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server đang chạy trên port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Lỗi ListenAndServe(): %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Đang tắt server...")

	cancelSweep()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server buộc phải tắt: %v", err)
	}

	log.Println("Server đã tắt.")
}

// startOverdueSweepJob gọi SweepOverdue theo chu kỳ cấu hình.
// Logic chuyển trạng thái nằm trong service; ở đây chỉ có lập lịch.
func startOverdueSweepJob(ctx context.Context, rs *service.ReservationService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			count, err := rs.SweepOverdue(sweepCtx, time.Now().UTC())
			if err != nil {
				log.Printf("Lỗi khi quét reservation quá hạn: %v", err)
			} else if count > 0 {
				log.Printf("Sweep: %d reservation đã chuyển sang Overdue", count)
			}
			cancel()
		case <-ctx.Done():
			log.Println("Overdue sweep job đã dừng.")
			return
		}
	}
}
