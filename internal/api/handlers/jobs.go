package handlers

import (
	"net/http"

	"job-board-api/internal/api/middleware"
	"job-board-api/internal/services"
	"job-board-api/internal/transport/dto"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// JobHandler holds dependencies for job operations.
type JobHandler struct {
	service   services.JobService
	validator *validator.Validate
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(service services.JobService, validate *validator.Validate) *JobHandler {
	return &JobHandler{
		service:   service,
		validator: validate,
	}
}

func (h *JobHandler) validate(c *gin.Context, req any) bool {
	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": FormatValidationErrors(err)})
		return false
	}
	return true
}

func jobID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job ID format"})
		return uuid.Nil, false
	}
	return id, true
}

// CreateJob godoc
// @Summary      Create a new job posting
// @Description  Recruiters only. The caller becomes the owner and the opening is added to their profile.
// @Tags         jobs
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        job body      dto.CreateJobRequest true  "Job details"
// @Success      201 {object}  dto.JobResponse "Job created successfully"
// @Failure      400 {object}  map[string]string "Bad Request - Invalid input"
// @Failure      401 {object}  map[string]string "Unauthorized"
// @Failure      403 {object}  map[string]string "Not a recruiter"
// @Failure      500 {object}  map[string]string "Internal Server Error"
// @Router       /jobs [post]
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dto.CreateJobRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if !h.validate(c, &req) {
		return
	}

	job, err := h.service.CreateJob(c.Request.Context(), middleware.CurrentIdentity(c), &req)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapJobModelToJobResponse(job))
}

// ListJobs godoc
// @Summary      List job postings
// @Description  Newest first.
// @Tags         jobs
// @Produce      json
// @Param        limit  query int false "Page size" default(10)
// @Param        offset query int false "Offset"   default(0)
// @Success      200 {array}   dto.JobResponse
// @Failure      400 {object}  map[string]string "Bad Request - Invalid query"
// @Router       /jobs [get]
func (h *JobHandler) ListJobs(c *gin.Context) {
	var req dto.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	if !h.validate(c, &req) {
		return
	}

	jobs, err := h.service.ListJobs(c.Request.Context(), &req)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapJobs(jobs))
}

// GetJobByID godoc
// @Summary      Get a job posting
// @Tags         jobs
// @Produce      json
// @Param        id  path      string  true  "Job ID" Format(uuid)
// @Success      200 {object}  dto.JobResponse
// @Failure      400 {object}  map[string]string "Invalid job ID format"
// @Failure      404 {object}  map[string]string "Job not found"
// @Router       /jobs/{id} [get]
func (h *JobHandler) GetJobByID(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}
	job, err := h.service.GetJobByID(c.Request.Context(), id)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapJobModelToJobResponse(job))
}

// UpdateJob godoc
// @Summary      Update a job posting
// @Description  Owner or listed recruiters only. Omitted fields are kept.
// @Tags         jobs
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        id  path      string                true "Job ID" Format(uuid)
// @Param        job body      dto.UpdateJobRequest  true "Fields to change"
// @Success      200 {object}  dto.JobResponse
// @Failure      403 {object}  map[string]string "Not allowed to manage this job"
// @Failure      404 {object}  map[string]string "Job not found"
// @Router       /jobs/{id} [post]
func (h *JobHandler) UpdateJob(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}
	var req dto.UpdateJobRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	req.ID = id
	if !h.validate(c, &req) {
		return
	}

	job, err := h.service.UpdateJob(c.Request.Context(), middleware.CurrentIdentity(c), &req)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapJobModelToJobResponse(job))
}

// DeleteJob godoc
// @Summary      Delete a job posting
// @Description  Owner only. The opening is removed from the owner's profile.
// @Tags         jobs
// @Param        id  path      string  true  "Job ID" Format(uuid)
// @Success      204 "Job deleted"
// @Failure      403 {object}  map[string]string "Not the owner"
// @Failure      404 {object}  map[string]string "Job not found"
// @Router       /jobs/{id}/delete [post]
func (h *JobHandler) DeleteJob(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteJob(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		jsonError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ApplyToJob godoc
// @Summary      Apply to a job posting
// @Description  Applicants only; applying twice is a conflict.
// @Tags         jobs
// @Produce      json
// @Param        id  path      string  true  "Job ID" Format(uuid)
// @Success      200 {object}  dto.JobResponse
// @Failure      403 {object}  map[string]string "Not an applicant"
// @Failure      404 {object}  map[string]string "Job not found"
// @Failure      409 {object}  map[string]string "Already applied"
// @Router       /jobs/{id}/apply [post]
func (h *JobHandler) ApplyToJob(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}
	job, err := h.service.ApplyToJob(c.Request.Context(), middleware.CurrentIdentity(c), id)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapJobModelToJobResponse(job))
}
