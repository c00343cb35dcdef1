package modules

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// MetaModule exposes a few trivial utility endpoints kept around for
// smoke tests and client examples.
type MetaModule struct{}

func NewMetaModule() *MetaModule { return &MetaModule{} }

func (m *MetaModule) Register(rg *gin.RouterGroup) {
	rg.GET("/hello", func(c *gin.Context) {
		name := c.DefaultQuery("name", "Guest")
		c.JSON(http.StatusOK, gin.H{"greeting": "Hello " + name})
	})

	rg.POST("/echo", func(c *gin.Context) {
		var body any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json payload"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"you_sent": body})
	})

	rg.GET("/time", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"now": time.Now().UTC().Format(time.RFC3339)})
	})
}
