package apigateway

import (
	"github.com/gin-gonic/gin"

	"license-plate-eval-platform/internal/auth"
	"license-plate-eval-platform/internal/configmanagement"
	"license-plate-eval-platform/internal/jobmanagement"
)

// SetupRouter initializes the main Gin router for the API gateway.
// It includes public routes and authenticated routes.
func SetupRouter() *gin.Engine {
	router := gin.Default()

	// Public routes (e.g., login)
	authRoutes := router.Group("/auth")
	{
		// auth.LoadAdminCredentials must run at application startup, before the
		// router is set up.
		authRoutes.POST("/login", auth.LoginHandler)
		authRoutes.POST("/logout", auth.LogoutHandler)
	}

	// Authenticated routes
	// All routes in this group will use the AuthMiddleware.
	adminRoutes := router.Group("/admin")
	adminRoutes.Use(auth.AuthMiddleware())
	{
		adminRoutes.GET("/dashboard", func(c *gin.Context) {
			c.JSON(200, gin.H{"message": "Welcome to the admin dashboard!"})
		})

		// Vendor Configuration Management Routes
		vendorRoutes := adminRoutes.Group("/vendors")
		{
			vendorRoutes.POST("", configmanagement.CreateVendorConfigHandler)
			vendorRoutes.GET("", configmanagement.ListVendorConfigsHandler)
			vendorRoutes.GET("/:id", configmanagement.GetVendorConfigHandler)
			vendorRoutes.PUT("/:id", configmanagement.UpdateVendorConfigHandler)
			vendorRoutes.DELETE("/:id", configmanagement.DeleteVendorConfigHandler)
		}

		// Plate Test Case Management Routes
		plateTestCaseRoutes := adminRoutes.Group("/plate-test-cases")
		{
			plateTestCaseRoutes.POST("", configmanagement.CreatePlateTestCaseHandler)
			plateTestCaseRoutes.GET("", configmanagement.ListPlateTestCasesHandler)
			plateTestCaseRoutes.GET("/:id", configmanagement.GetPlateTestCaseHandler)
			plateTestCaseRoutes.PUT("/:id", configmanagement.UpdatePlateTestCaseHandler)
			plateTestCaseRoutes.DELETE("/:id", configmanagement.DeletePlateTestCaseHandler)
		}

		// Evaluation Job Management Routes
		jobRoutes := adminRoutes.Group("/jobs")
		{
			jobRoutes.POST("/plate-ocr", jobmanagement.CreatePlateJobHandler)
			jobRoutes.GET("", jobmanagement.ListJobsHandler)
			jobRoutes.GET("/:id", jobmanagement.GetJobHandler)
			jobRoutes.GET("/:id/results", jobmanagement.GetJobResultsHandler)
			jobRoutes.GET("/:id/summary", jobmanagement.GetJobSummaryHandler)
			jobRoutes.GET("/:id/report.csv", jobmanagement.GetJobReportCSVHandler)
		}
	}

	return router
}
