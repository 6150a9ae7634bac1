package handlers

import (
	"net/http"

	"job-board-api/internal/api/middleware"
	"job-board-api/internal/models"
	"job-board-api/internal/services"
	"job-board-api/internal/transport/dto"

	"github.com/gin-gonic/gin"
)

const feedSize = 10

// HomeHandler serves the landing page feed.
type HomeHandler struct {
	accounts services.AccountService
	jobs     services.JobService
}

func NewHomeHandler(accounts services.AccountService, jobs services.JobService) *HomeHandler {
	return &HomeHandler{accounts: accounts, jobs: jobs}
}

// GetHome godoc
// @Summary      Home feed
// @Description  Applicants see the newest jobs, recruiters the newest applicants. Anonymous callers and accounts without a role get an empty feed.
// @Tags         home
// @Produce      json
// @Success      200 {object} dto.HomeFeedResponse
// @Router       / [get]
func (h *HomeHandler) GetHome(c *gin.Context) {
	feed := dto.HomeFeedResponse{
		Jobs:       []dto.JobResponse{},
		Applicants: []dto.ApplicantSummary{},
	}

	viewer := middleware.CurrentIdentity(c)
	if viewer == nil {
		c.JSON(http.StatusOK, feed)
		return
	}
	feed.Role = viewer.Role

	switch viewer.Role {
	case models.RoleApplicant:
		jobs, err := h.jobs.ListJobs(c.Request.Context(), &dto.ListJobsRequest{Limit: feedSize})
		if err != nil {
			jsonError(c, err)
			return
		}
		feed.Jobs = mapJobs(jobs)
	case models.RoleRecruiter:
		applicants, err := h.accounts.ListApplicants(c.Request.Context(), feedSize)
		if err != nil {
			jsonError(c, err)
			return
		}
		for _, applicant := range applicants {
			feed.Applicants = append(feed.Applicants, MapIdentityToApplicantSummary(applicant))
		}
	}
	c.JSON(http.StatusOK, feed)
}
