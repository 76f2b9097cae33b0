package controllers

import (
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/prepress-orders-api/middleware"
	"github.com/kendall-kelly/prepress-orders-api/models"
)

// RegisterRoutes mounts the authenticated API on v1.
// authenticate must set user_id (EnsureValidToken in production, a stub in tests),
// optionally followed by RequireScope.
// Role gates here are coarse; the workflow guard has the final say.
func RegisterRoutes(v1 *gin.RouterGroup, authenticate ...gin.HandlerFunc) {
	v1.GET("/uploads/:filename", GetUploadedFile)

	// Creating a profile happens before a profile exists, so LoadUser is skipped here
	v1.POST("/users", slices.Concat(authenticate, []gin.HandlerFunc{CreateUser})...)

	api := v1.Group("")
	api.Use(authenticate...)
	api.Use(middleware.LoadUser(FindUserByAuth0ID()))

	staff := middleware.RequireRoles(models.RoleEmployee, models.RoleManager, models.RoleAdmin)
	managers := middleware.RequireRoles(models.RoleManager, models.RoleAdmin)
	clients := middleware.RequireRoles(models.RoleClient)

	users := api.Group("/users")
	{
		users.GET("/me", GetMyProfile)
		users.PUT("/me", UpdateMyProfile)
		users.GET("", managers, ListUsers)
		users.GET("/:id", managers, GetUser)
	}

	orders := api.Group("/orders")
	{
		orders.POST("", clients, CreateOrder)
		orders.GET("", ListOrders)
		orders.GET("/:id", GetOrder)
		orders.PUT("/:id", UpdateOrder)
		orders.PUT("/:id/status", UpdateOrderStatus)
		orders.PUT("/:id/assign", managers, AssignOrderStage)
		orders.POST("/:id/files", UploadOrderFile)
		orders.GET("/:id/files", ListOrderFiles)
	}

	claims := api.Group("/claims")
	{
		claims.POST("", clients, CreateClaim)
		claims.GET("", ListClaims)
		claims.GET("/:id", GetClaim)
		claims.PUT("/:id", UpdateClaim)
		claims.PUT("/:id/status", UpdateClaimStatus)
		claims.PUT("/:id/assign", managers, AssignClaim)
		claims.POST("/:id/files", UploadClaimFile)
		claims.GET("/:id/files", ListClaimFiles)
	}

	tasks := api.Group("/tasks", staff)
	{
		tasks.POST("", managers, CreateTask)
		tasks.GET("", ListTasks)
		tasks.GET("/:id", GetTask)
		tasks.PUT("/:id", UpdateTask)
		tasks.DELETE("/:id", managers, DeleteTask)
		tasks.PUT("/:id/complete", CompleteTask)
		tasks.PUT("/:id/assign", managers, AssignTask)
	}
}
