package handlers

import "github.com/gin-gonic/gin"

// AccountHandlerInterface defines the methods needed by the account routes.
type AccountHandlerInterface interface {
	GetFlash(c *gin.Context)
	PostLogin(c *gin.Context)
	Logout(c *gin.Context)
	PostSignup(c *gin.Context)
	GetAccount(c *gin.Context)
	PostAccountType(c *gin.Context)
	PostProfile(c *gin.Context)
	PostPassword(c *gin.Context)
	PostDelete(c *gin.Context)
	GetUnlink(c *gin.Context)
	PostForgot(c *gin.Context)
	GetReset(c *gin.Context)
	PostReset(c *gin.Context)
}

// JobHandlerInterface defines the methods needed by the job routes.
type JobHandlerInterface interface {
	CreateJob(c *gin.Context)
	ListJobs(c *gin.Context)
	GetJobByID(c *gin.Context)
	UpdateJob(c *gin.Context)
	DeleteJob(c *gin.Context)
	ApplyToJob(c *gin.Context)
}

// Ensure handlers implements the interface (compile-time check)
var _ AccountHandlerInterface = (*AccountHandler)(nil)
var _ JobHandlerInterface = (*JobHandler)(nil)
