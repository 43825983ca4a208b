package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/epicerie-solidaire/booking-core/internal/model"
	"github.com/epicerie-solidaire/booking-core/internal/transport/middleware"
)

func InitRoutes(
	jwtSecret []byte,
	slotHandler *SlotHandler,
	appointmentHandler *AppointmentHandler,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	api.Use(middleware.JWTAuth(jwtSecret))

	admin := middleware.RequireRole(string(model.UserRoleAdmin))

	slots := api.Group("/slots")
	{
		slots.POST("", admin, slotHandler.CreateBlock)
		slots.GET("", admin, slotHandler.ListBlocks)
		slots.GET("/intervals", slotHandler.ListAvailability)
		slots.POST("/:id/intervals", admin, slotHandler.GenerateIntervals)
		slots.DELETE("/:id", admin, slotHandler.DeleteBlock)
	}

	appointments := api.Group("/appointments")
	{
		appointments.POST("", appointmentHandler.Book)
		appointments.GET("/me", appointmentHandler.ListMine)
		appointments.DELETE("/:id", appointmentHandler.Cancel)
		appointments.GET("", admin, appointmentHandler.ListAll)
		appointments.GET("/unvalidated", admin, appointmentHandler.ListUnvalidated)
		appointments.POST("/:id/validate", admin, appointmentHandler.Validate)
		appointments.POST("/:id/reject", admin, appointmentHandler.Reject)
	}

	return router
}
