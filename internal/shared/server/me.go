package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"imagelens-backend/internal/shared/server/middleware"
	"imagelens-backend/internal/shared/server/respond"
)

// registerAuthRoutes attaches the identity endpoints.
func registerAuthRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/me", meHandler)
	rg.POST("/auth/logout", logoutHandler)
}

func meHandler(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
		return
	}

	response := gin.H{
		"userId": userID,
	}
	if email := middleware.UserEmailFromContext(c); email != "" {
		response["email"] = email
	}
	if name := middleware.UserNameFromContext(c); name != "" {
		response["name"] = name
	}

	respond.JSON(c, http.StatusOK, response)
}

// Tokens are stateless, so logout is a client-side discard. The endpoint
// exists so the UI has something to call.
func logoutHandler(c *gin.Context) {
	respond.JSON(c, http.StatusOK, gin.H{"message": "Logged out successfully"})
}
