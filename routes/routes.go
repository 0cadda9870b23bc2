package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/luisperes28-droid/desperto-app-sub001/handlers"
	"github.com/luisperes28-droid/desperto-app-sub001/middleware"
)

// HandlerBundle groups the handlers the router wires up.
type HandlerBundle struct {
	Availability *handlers.AvailabilityHandler
	Booking      *handlers.BookingHandler
	Coupon       *handlers.CouponHandler
	Payment      *handlers.PaymentHandler
	Therapist    *handlers.TherapistHandler
}

// RegisterAvailabilityRoutes registers the slot discovery endpoints.
func RegisterAvailabilityRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/therapists")
	{
		api.GET("", hb.Therapist.ListTherapists)
		api.GET("/:therapistID", hb.Therapist.GetTherapist)
		api.GET("/:therapistID/slots", hb.Availability.ListSlots)
	}
}

// RegisterBookingRoutes sets up the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *HandlerBundle) {
	booking := r.Group("/api/bookings")
	{
		booking.POST("", hb.Booking.CreateBooking)
		booking.POST("/:bookingID/reschedule", hb.Booking.RequestReschedule)

		// Status changes, reassignment and reschedule decisions are
		// operator actions.
		protected := booking.Group("")
		protected.Use(middleware.OperatorAuthMiddleware())
		protected.PATCH("/:bookingID", hb.Booking.UpdateBooking)
		protected.POST("/:bookingID/reschedule/resolve", hb.Booking.ResolveReschedule)
	}
}

// RegisterCouponRoutes registers the coupon validation endpoint.
func RegisterCouponRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/coupons")
	{
		api.POST("/validate", hb.Coupon.ValidateCoupon)
		api.POST("/:couponID/redeem", middleware.OperatorAuthMiddleware(), hb.Coupon.RedeemCoupon)
	}
}

// RegisterPaymentRoutes registers the provider callback endpoint.
func RegisterPaymentRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/payments")
	{
		api.POST("/webhook", hb.Payment.PaymentWebhook)
	}
}

// RegisterOperatorRoutes sets up endpoints for practice management.
func RegisterOperatorRoutes(r *gin.Engine, hb *HandlerBundle) {
	operator := r.Group("/api/operator")
	{
		operator.Use(middleware.OperatorAuthMiddleware())
		operator.PUT("/therapists/:therapistID/availability", hb.Therapist.UpdateAvailability)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterAvailabilityRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterCouponRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterOperatorRoutes(r, hb)
}
