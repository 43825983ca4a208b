package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/epicerie-solidaire/booking-core/internal/config"
	"github.com/epicerie-solidaire/booking-core/internal/db"
	"github.com/epicerie-solidaire/booking-core/internal/model"
	"github.com/epicerie-solidaire/booking-core/internal/repository"
	"github.com/epicerie-solidaire/booking-core/internal/service"
	"github.com/epicerie-solidaire/booking-core/internal/transport"

	"github.com/gin-gonic/gin"
)

func main() {
	_ = godotenv.Load()

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)

	// 1. Конфиг из yaml + env.
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	// 2. Подключаемся к БД через GORM.
	gormDB, err := db.NewGormDB(&cfg.Database)
	if err != nil {
		logrus.Fatalf("init db: %v", err)
	}

	// 3. Миграции моделей.
	if err := model.AutoMigrate(gormDB); err != nil {
		logrus.Fatalf("auto migrate: %v", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		logrus.Fatalf("sql DB: %v", err)
	}
	defer sqlDB.Close()

	// 4. Репозитории (реализации на GORM).
	blockRepo := repository.NewGormBlockRepository(gormDB)
	intervalRepo := repository.NewGormIntervalRepository(gormDB)
	appointmentRepo := repository.NewGormAppointmentRepository(gormDB)
	userRepo := repository.NewGormUserRepository(gormDB)

	// 5. Сервисы ядра бронирования.
	catalogSvc := service.NewCatalogService(blockRepo, intervalRepo, cfg.Booking.IntervalMinutes, cfg.Booking.IntervalCapacity)
	bookingSvc := service.NewBookingService(gormDB, userRepo, intervalRepo, appointmentRepo)
	sweeper := service.NewMissedSweeper(gormDB, cfg.Sweeper.Grace)

	// 6. Фоновый sweeper: один экземпляр на процесс, живёт до shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sweeper.Run(ctx, cfg.Sweeper.Interval)

	// 7. HTTP-сервер.
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	slotHandler := transport.NewSlotHandler(catalogSvc)
	appointmentHandler := transport.NewAppointmentHandler(bookingSvc, sweeper)

	srv := &http.Server{
		Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:           transport.InitRoutes([]byte(cfg.JWT.Secret), slotHandler, appointmentHandler),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logrus.Infof("booking core listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("http serve: %v", err)
		}
	}()

	// 8. Грейсфул-шатдаун по сигналу.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logrus.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("server shutdown: %v", err)
	}
}
