package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"

	"github.com/luisperes28-droid/desperto-app-sub001/config"
	"github.com/luisperes28-droid/desperto-app-sub001/cron"
	"github.com/luisperes28-droid/desperto-app-sub001/database"
	bookingRepoPkg "github.com/luisperes28-droid/desperto-app-sub001/database/repository/booking"
	clientRepoPkg "github.com/luisperes28-droid/desperto-app-sub001/database/repository/client"
	couponRepoPkg "github.com/luisperes28-droid/desperto-app-sub001/database/repository/coupon"
	serviceRepoPkg "github.com/luisperes28-droid/desperto-app-sub001/database/repository/service"
	therapistRepoPkg "github.com/luisperes28-droid/desperto-app-sub001/database/repository/therapist"
	"github.com/luisperes28-droid/desperto-app-sub001/handlers"
	"github.com/luisperes28-droid/desperto-app-sub001/middleware"
	"github.com/luisperes28-droid/desperto-app-sub001/routes"
	"github.com/luisperes28-droid/desperto-app-sub001/services/booking"
	"github.com/luisperes28-droid/desperto-app-sub001/services/coupon"
	"github.com/luisperes28-droid/desperto-app-sub001/services/notification"
	"github.com/luisperes28-droid/desperto-app-sub001/services/scheduling"
	"github.com/luisperes28-droid/desperto-app-sub001/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	therapistRepo := therapistRepoPkg.NewMongoTherapistRepo()
	serviceRepo := serviceRepoPkg.NewMongoServiceRepo()
	clientRepo := clientRepoPkg.NewMongoClientRepo()
	couponRepo := couponRepoPkg.NewMongoCouponRepo()

	// services.
	notificationService, err := notification.NewDefaultNotificationService(clientRepo)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize notification service: %v", err)
	}

	schedulingEngine := &scheduling.DefaultSchedulingEngine{
		TherapistRepo: therapistRepo,
		BookingRepo:   bookingRepo,
		ServiceRepo:   serviceRepo,
		ClientRepo:    clientRepo,
	}

	couponLedger := &coupon.DefaultCouponLedger{
		Repo:       couponRepo,
		ClientRepo: clientRepo,
	}

	bookingEngine := booking.NewDefaultBookingEngine(
		bookingRepo,
		therapistRepo,
		serviceRepo,
		clientRepo,
		couponLedger,
		&booking.StripePaymentVerifier{},
		notificationService,
	)

	// Assemble the handler bundle.
	handlerBundle := &routes.HandlerBundle{
		Availability: handlers.NewAvailabilityHandler(schedulingEngine),
		Booking:      handlers.NewBookingHandler(bookingEngine),
		Coupon:       handlers.NewCouponHandler(couponLedger),
		Payment:      handlers.NewPaymentHandler(bookingEngine),
		Therapist:    handlers.NewTherapistHandler(therapistRepo),
	}

	routes.RegisterRoutes(router, handlerBundle)

	// Appointment reminder worker.
	cron.InitReminderWorker(bookingRepo, notificationService)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
