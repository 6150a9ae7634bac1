package routes

import (
	"job-board-api/internal/api/handlers"
	"job-board-api/internal/api/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterAccountRoutes registers the login, signup, account and password
// reset routes. limit is applied to every POST that checks or sets a password.
func RegisterAccountRoutes(rg *gin.RouterGroup, accountHandler handlers.AccountHandlerInterface, limit gin.HandlerFunc) {
	// Pages only guests may see; logged in callers are sent home.
	guest := rg.Group("")
	guest.Use(middleware.RedirectIfAuthenticated())
	{
		guest.GET("/login", accountHandler.GetFlash)
		guest.POST("/login", limit, accountHandler.PostLogin)
		guest.GET("/signup", accountHandler.GetFlash)
		guest.POST("/signup", limit, accountHandler.PostSignup)
		guest.GET("/forgot", accountHandler.GetFlash)
		guest.POST("/forgot", limit, accountHandler.PostForgot)
		guest.GET("/reset/:token", accountHandler.GetReset)
		guest.POST("/reset/:token", limit, accountHandler.PostReset)
	}

	rg.GET("/logout", middleware.RequireAuth(), accountHandler.Logout)
	rg.POST("/logout", middleware.RequireAuth(), accountHandler.Logout)
	rg.GET("/flash", accountHandler.GetFlash)

	account := rg.Group("/account")
	account.Use(middleware.RequireAuth())
	{
		account.GET("", accountHandler.GetAccount)
		account.POST("/type", accountHandler.PostAccountType)
		account.POST("/profile", accountHandler.PostProfile)
		account.POST("/password", limit, accountHandler.PostPassword)
		account.POST("/delete", accountHandler.PostDelete)
		account.GET("/unlink/:provider", accountHandler.GetUnlink)
	}
}
