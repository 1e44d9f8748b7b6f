package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/staynest/booking-backend/internal/middleware"
	"github.com/staynest/booking-backend/internal/services"
)

// Handlers bundles every HTTP handler of the API
type Handlers struct {
	Search        *SearchHandler
	Hotels        *HotelHandler
	Bookings      *BookingHandler
	Reviews       *ReviewHandler
	Wishlist      *WishlistHandler
	Notifications *NotificationHandler
	Host          *HostHandler
	Users         *UserHandler
}

// RegisterRoutes mounts the API under v1. limiter may be nil.
func RegisterRoutes(v1 *gin.RouterGroup, h *Handlers, auth *middleware.Auth, limiter *services.RateLimitService) {
	throttle := middleware.RateLimit(limiter)

	// Public
	v1.GET("/search", h.Search.Search)
	v1.GET("/places", h.Hotels.PlaceCatalog)

	hotels := v1.Group("/hotels")
	{
		hotels.GET("", h.Hotels.ListHotels)
		hotels.GET("/:id", auth.Optional(), h.Hotels.GetHotel)
		hotels.GET("/:id/availability", h.Search.CheckAvailability)
		hotels.GET("/:id/places", auth.Optional(), h.Hotels.NearbyPlaces)
		hotels.GET("/:id/reviews", h.Hotels.HotelReviews)
	}

	// Account
	me := v1.Group("/me")
	{
		me.POST("/sync", auth.Identity(), h.Users.Sync)
		me.GET("", auth.Authenticate(), h.Users.GetProfile)
		me.PUT("", auth.Authenticate(), h.Users.UpdateProfile)
	}

	// Guest surface
	bookings := v1.Group("/bookings")
	bookings.Use(auth.Authenticate())
	{
		bookings.POST("", throttle, h.Bookings.CreateBooking)
		bookings.GET("", h.Bookings.ListMyBookings)
		bookings.GET("/:id", h.Bookings.GetBooking)
		bookings.POST("/:id/pay", h.Bookings.Pay)
		bookings.POST("/:id/cancel", h.Bookings.Cancel)
		bookings.PATCH("/:id/dates", h.Bookings.Reschedule)
		bookings.POST("/:id/review", throttle, h.Reviews.CreateReview)
	}

	wishlist := v1.Group("/wishlist")
	wishlist.Use(auth.Authenticate())
	{
		wishlist.GET("", h.Wishlist.List)
		wishlist.POST("", h.Wishlist.Add)
		wishlist.DELETE("/:hotelId", h.Wishlist.Remove)
	}

	notifications := v1.Group("/notifications")
	notifications.Use(auth.Authenticate())
	{
		notifications.GET("", h.Notifications.List)
		notifications.POST("/read-all", h.Notifications.MarkAllRead)
		notifications.POST("/:id/read", h.Notifications.MarkRead)
	}

	// Host dashboard
	host := v1.Group("/host")
	host.Use(auth.Authenticate(), middleware.RequireHost())
	{
		host.GET("/overview", h.Host.Overview)
		host.GET("/financials", h.Host.Financials)
		host.GET("/financials/export", h.Host.ExportFinancials)
		host.GET("/reviews", h.Host.Reviews)

		host.GET("/hotels", h.Hotels.ListMyHotels)
		host.POST("/hotels", h.Hotels.CreateHotel)
		host.PUT("/hotels/:id", h.Hotels.UpdateHotel)
		host.PATCH("/hotels/:id/active", h.Hotels.SetActive)
		host.POST("/hotels/:id/places", h.Hotels.LinkPlace)
		host.PATCH("/hotels/:id/places/:placeId", h.Hotels.UpdatePlaceDistance)
		host.DELETE("/hotels/:id/places/:placeId", h.Hotels.UnlinkPlace)

		host.GET("/bookings", h.Bookings.ListHostBookings)
		host.POST("/bookings", throttle, h.Bookings.CreateHostBooking)
		host.POST("/bookings/:id/confirm", h.Bookings.Confirm)
		host.POST("/bookings/:id/complete", h.Bookings.Complete)
		host.POST("/bookings/:id/no-show", h.Bookings.MarkNoShow)
		host.POST("/bookings/:id/cancel", h.Bookings.Cancel)
	}
}
