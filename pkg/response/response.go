package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Entities and collections are serialized bare; failures are a flat
// {"error": message} object. Handlers never shape JSON themselves.

func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func Created(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

func Message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

func Err(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}
