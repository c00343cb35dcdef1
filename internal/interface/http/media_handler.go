package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/user-directory-api/internal/application"
	"github.com/oksasatya/user-directory-api/pkg/response"
)

// MediaHandler serves the generic image upload/fetch endpoints backed by
// the blob store.
type MediaHandler struct {
	Blobs  userapp.BlobStore
	Logger *logrus.Logger
}

func NewMediaHandler(blobs userapp.BlobStore, logger *logrus.Logger) *MediaHandler {
	return &MediaHandler{Blobs: blobs, Logger: logger}
}

// Upload handles POST /upload: a multipart image stored under uploads/
// and returned as a public URL. Same constraints as avatars.
func (h *MediaHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.Err(c, http.StatusBadRequest, "file is required")
		return
	}
	if msg := imageUploadError(fh); msg != "" {
		response.Err(c, http.StatusBadRequest, msg)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Err(c, http.StatusBadRequest, "unable to read uploaded file")
		return
	}
	defer func() { _ = f.Close() }()

	path := fmt.Sprintf("uploads/%d-%s", time.Now().UnixMilli(), filepath.Base(fh.Filename))
	url, err := h.Blobs.Upload(c.Request.Context(), path, fh.Header.Get("Content-Type"), f)
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("path", path).Error("image upload failed")
		}
		response.Err(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Created(c, gin.H{"url": url, "path": path})
}

// Image handles GET /image?path=... by redirecting to the public URL.
func (h *MediaHandler) Image(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		response.Err(c, http.StatusBadRequest, "path is required")
		return
	}
	c.Redirect(http.StatusFound, h.Blobs.PublicURL(path))
}
