package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/user-directory-api/internal/application"
	"github.com/oksasatya/user-directory-api/internal/domain/entity"
	repo "github.com/oksasatya/user-directory-api/internal/domain/repository"
	"github.com/oksasatya/user-directory-api/pkg/response"
	"github.com/oksasatya/user-directory-api/pkg/validation"
)

// maxUploadBytes caps avatar and image uploads at 5 MiB.
const maxUploadBytes = 5 << 20

// UserService is the service surface the handlers consume.
type UserService interface {
	CreateUser(ctx context.Context, in userapp.CreateUserInput) (*entity.User, error)
	CreateUserWithAvatar(ctx context.Context, in userapp.CreateUserInput) (*entity.User, error)
	GetUserByID(ctx context.Context, id int64) (*entity.User, error)
	GetUserByIDWithSource(ctx context.Context, id int64) (*entity.User, userapp.Source, error)
	GetAllUsers(ctx context.Context, p userapp.PaginationParams, f userapp.FilterParams) (*userapp.UserPage, error)
	UpdateUser(ctx context.Context, id int64, patch repo.UserPatch) (*entity.User, error)
	UploadAvatar(ctx context.Context, id int64, av userapp.AvatarUpload) (*entity.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

var _ UserService = (*userapp.Service)(nil)

type UserHandler struct {
	Svc    UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type createUserRequest struct {
	Email        string  `json:"email" binding:"required"`
	PasswordHash string  `json:"password_hash" binding:"required"`
	FirstName    string  `json:"first_name" binding:"required"`
	LastName     string  `json:"last_name" binding:"required"`
	Address      *string `json:"address"`
	Phone        *string `json:"phone"`
	DateOfBirth  *string `json:"date_of_birth"`
	Status       string  `json:"status"`
	AvatarURL    *string `json:"avatar_url"`
}

type updateUserRequest struct {
	FirstName   *string    `json:"first_name"`
	LastName    *string    `json:"last_name"`
	Address     *string    `json:"address"`
	Phone       *string    `json:"phone"`
	DateOfBirth *string    `json:"date_of_birth"`
	Status      *string    `json:"status"`
	AvatarURL   *string    `json:"avatar_url"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

// Create handles POST /users. The body is either JSON or multipart
// form-data; a multipart body may carry an avatar under "file". Both
// variants resolve into a single CreateUserInput before the service is
// invoked.
func (h *UserHandler) Create(c *gin.Context) {
	if c.ContentType() == "multipart/form-data" {
		h.createMultipart(c)
		return
	}

	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Err(c, http.StatusBadRequest, validation.Describe(err))
		return
	}

	u, err := h.Svc.CreateUser(c.Request.Context(), userapp.CreateUserInput{
		Email:        req.Email,
		PasswordHash: req.PasswordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Address:      req.Address,
		Phone:        req.Phone,
		DateOfBirth:  req.DateOfBirth,
		Status:       req.Status,
		AvatarURL:    req.AvatarURL,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, u)
}

func (h *UserHandler) createMultipart(c *gin.Context) {
	in := userapp.CreateUserInput{
		Email:        c.PostForm("email"),
		PasswordHash: c.PostForm("password_hash"),
		FirstName:    c.PostForm("first_name"),
		LastName:     c.PostForm("last_name"),
		Address:      optionalForm(c, "address"),
		Phone:        optionalForm(c, "phone"),
		DateOfBirth:  optionalForm(c, "date_of_birth"),
		Status:       c.PostForm("status"),
	}
	if in.Email == "" || in.PasswordHash == "" || in.FirstName == "" || in.LastName == "" {
		response.Err(c, http.StatusBadRequest, "missing required fields: email, password_hash, first_name, last_name")
		return
	}

	fh, err := c.FormFile("file")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		response.Err(c, http.StatusBadRequest, "invalid multipart form")
		return
	}
	if fh != nil {
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
		in.Avatar = &userapp.AvatarUpload{
			Content:     f,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
		}
	}

	u, err := h.Svc.CreateUserWithAvatar(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, u)
}

// List handles GET /users. Non-positive or malformed page/limit are
// clamped rather than rejected: page >= 1, limit in [1, 100].
func (h *UserHandler) List(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	result, err := h.Svc.GetAllUsers(c.Request.Context(),
		userapp.PaginationParams{Page: page, Limit: limit},
		userapp.FilterParams{Status: c.Query("status"), Search: c.Query("search")},
	)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, result)
}

// GetByID handles GET /users/:id and reports the read's source.
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	u, src, err := h.Svc.GetUserByIDWithSource(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, gin.H{"user": u, "source": src})
}

// Update handles PUT /users/:id. Absent JSON fields leave columns
// untouched; an explicit empty string writes the empty string.
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Err(c, http.StatusBadRequest, validation.Describe(err))
		return
	}

	u, err := h.Svc.UpdateUser(c.Request.Context(), id, repo.UserPatch{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Address:     req.Address,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
		Status:      req.Status,
		AvatarURL:   req.AvatarURL,
		LastLoginAt: req.LastLoginAt,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, u)
}

// UploadAvatar handles POST /users/:id/avatar.
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
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

	u, err := h.Svc.UploadAvatar(c.Request.Context(), id, userapp.AvatarUpload{
		Content:     f,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, u)
}

// Delete handles DELETE /users/:id. The existence check happens here;
// the service's soft delete itself succeeds for any id.
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	if _, err := h.Svc.GetUserByID(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.Svc.DeleteUser(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	response.Message(c, "user deleted")
}

func (h *UserHandler) userID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Err(c, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}

func (h *UserHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, userapp.ErrUserNotFound) {
		response.Err(c, http.StatusNotFound, "user not found")
		return
	}
	if h.Logger != nil {
		h.Logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	response.Err(c, http.StatusInternalServerError, err.Error())
}

func optionalForm(c *gin.Context, field string) *string {
	if v := c.PostForm(field); v != "" {
		return &v
	}
	return nil
}

func imageUploadError(fh *multipart.FileHeader) string {
	if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
		return "file must be an image (image/*)"
	}
	if fh.Size > maxUploadBytes {
		return "file size must be less than 5MB"
	}
	return ""
}
