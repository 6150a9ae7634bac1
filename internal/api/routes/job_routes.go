package routes

import (
	"job-board-api/internal/api/handlers"
	"job-board-api/internal/api/middleware"
	"job-board-api/internal/models"

	"github.com/gin-gonic/gin"
)

// RegisterJobRoutes registers all routes related to jobs. Reads are public;
// writes need a logged in caller of the right account type.
func RegisterJobRoutes(rg *gin.RouterGroup, jobHandler handlers.JobHandlerInterface) {
	jobs := rg.Group("/jobs")
	{
		jobs.GET("", jobHandler.ListJobs)
		jobs.GET("/:id", jobHandler.GetJobByID)
	}

	recruiter := jobs.Group("", middleware.RequireAuth(), middleware.RequireRole(models.RoleRecruiter))
	{
		recruiter.POST("", jobHandler.CreateJob)
		recruiter.POST("/:id", jobHandler.UpdateJob)
		recruiter.POST("/:id/delete", jobHandler.DeleteJob)
	}

	applicant := jobs.Group("", middleware.RequireAuth(), middleware.RequireRole(models.RoleApplicant))
	applicant.POST("/:id/apply", jobHandler.ApplyToJob)
}
