package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/user-directory-api/internal/interface/http"
)

// UserModule wires the user CRUD endpoints under the /api group.
// Gin matches /users/:id/avatar ahead of the generic /users/:id routes.
type UserModule struct {
	Handler *handlers.UserHandler
}

func NewUserModule(h *handlers.UserHandler) *UserModule {
	return &UserModule{Handler: h}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rg.POST("/users", m.Handler.Create)
	rg.GET("/users", m.Handler.List)
	rg.GET("/users/:id", m.Handler.GetByID)
	rg.PUT("/users/:id", m.Handler.Update)
	rg.POST("/users/:id/avatar", m.Handler.UploadAvatar)
	rg.DELETE("/users/:id", m.Handler.Delete)
}
