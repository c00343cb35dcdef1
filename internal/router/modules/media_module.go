package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/user-directory-api/internal/interface/http"
)

// MediaModule wires the generic image upload/fetch endpoints.
type MediaModule struct {
	Handler *handlers.MediaHandler
}

func NewMediaModule(h *handlers.MediaHandler) *MediaModule {
	return &MediaModule{Handler: h}
}

func (m *MediaModule) Register(rg *gin.RouterGroup) {
	rg.POST("/upload", m.Handler.Upload)
	rg.GET("/image", m.Handler.Image)
}
