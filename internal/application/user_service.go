package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-directory-api/internal/domain/entity"
	repo "github.com/oksasatya/user-directory-api/internal/domain/repository"
)

var ErrUserNotFound = errors.New("user not found")

// Source reports where a read was served from.
type Source string

const (
	SourceCache    Source = "cache"
	SourceDatabase Source = "database"
)

// UserCache is the key-value cache consumed by the service. Get reports
// presence separately from errors; a miss is not an error.
type UserCache interface {
	Get(ctx context.Context, id int64) (*entity.User, bool, error)
	Set(ctx context.Context, u *entity.User) error
	Invalidate(ctx context.Context, id int64) error
}

// BlobStore stores avatar bytes under a path and serves them publicly.
type BlobStore interface {
	Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error)
	PublicURL(path string) string
}

// AvatarUpload is an already-validated file to store. The boundary checks
// MIME prefix and size before it ever reaches the service.
type AvatarUpload struct {
	Content     io.Reader
	ContentType string
	Size        int64
}

// CreateUserInput is the single create payload; the JSON and multipart
// request variants both resolve into it at the boundary. Avatar is nil
// for plain JSON creates.
type CreateUserInput struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Address      *string
	Phone        *string
	DateOfBirth  *string
	Status       string
	AvatarURL    *string
	Avatar       *AvatarUpload
}

type PaginationParams struct {
	Page  int
	Limit int
}

type FilterParams struct {
	Status string
	Search string
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// UserWithSource tags a listed user with where it came from. Listings
// always bypass the cache, so Source is always "database" there.
type UserWithSource struct {
	entity.User
	Source Source `json:"source"`
}

type UserPage struct {
	Data       []UserWithSource `json:"data"`
	Pagination Pagination       `json:"pagination"`
}

// Service orchestrates user CRUD across the store, the read-through
// cache and the blob store. It holds no cross-request state; all shared
// state lives in the collaborators.
type Service struct {
	Repo   repo.UserRepository
	Cache  UserCache
	Blobs  BlobStore
	Logger *logrus.Logger
}

func NewService(r repo.UserRepository, cache UserCache, blobs BlobStore, logger *logrus.Logger) *Service {
	return &Service{Repo: r, Cache: cache, Blobs: blobs, Logger: logger}
}

func (in CreateUserInput) toEntity() *entity.User {
	status := in.Status
	if status == "" {
		status = entity.StatusActive
	}
	return &entity.User{
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Address:      in.Address,
		Phone:        in.Phone,
		DateOfBirth:  in.DateOfBirth,
		Status:       status,
		AvatarURL:    in.AvatarURL,
	}
}

// CreateUser inserts a row and reads it back through the cache-populating
// path, so a freshly created user is immediately cache-resident.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*entity.User, error) {
	u := in.toEntity()
	if err := s.Repo.Insert(ctx, u); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("email", in.Email).Error("insert user failed")
		}
		return nil, err
	}
	return s.GetUserByID(ctx, u.ID)
}

// CreateUserWithAvatar creates the row first (avatar_url null), then
// uploads the file and points avatar_url at it. A blob that uploads
// successfully but whose url update fails is left orphaned; there is no
// compensating rollback.
func (s *Service) CreateUserWithAvatar(ctx context.Context, in CreateUserInput) (*entity.User, error) {
	if in.Avatar == nil {
		return s.CreateUser(ctx, in)
	}

	row := in
	row.AvatarURL = nil
	row.Avatar = nil
	u, err := s.CreateUser(ctx, row)
	if err != nil {
		return nil, err
	}

	path := avatarObjectPath(u.ID, in.Avatar.ContentType)
	url, err := s.Blobs.Upload(ctx, path, in.Avatar.ContentType, in.Avatar.Content)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("avatar upload failed")
		}
		return nil, err
	}
	return s.UpdateUserAvatarURL(ctx, u.ID, url)
}

// GetUserByID is the read-through path: cache first, store on miss,
// populate on store hit. Absence is never cached.
func (s *Service) GetUserByID(ctx context.Context, id int64) (*entity.User, error) {
	u, _, err := s.GetUserByIDWithSource(ctx, id)
	return u, err
}

// GetUserByIDWithSource additionally reports whether the user came from
// the cache or the store. A cache hit does not refresh its own TTL.
func (s *Service) GetUserByIDWithSource(ctx context.Context, id int64) (*entity.User, Source, error) {
	cached, ok, err := s.Cache.Get(ctx, id)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", id).Error("cache get failed")
		}
		return nil, "", err
	}
	if ok {
		return cached, SourceCache, nil
	}

	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", err
	}
	if err := s.Cache.Set(ctx, u); err != nil {
		return nil, "", err
	}
	return u, SourceDatabase, nil
}

// GetAllUsers always hits the store; paginated and filtered results are
// not cacheable under the per-id key scheme.
func (s *Service) GetAllUsers(ctx context.Context, p PaginationParams, f FilterParams) (*UserPage, error) {
	lp := repo.ListParams{
		Status: f.Status,
		Search: f.Search,
		Limit:  p.Limit,
		Offset: (p.Page - 1) * p.Limit,
	}

	total, err := s.Repo.Count(ctx, lp)
	if err != nil {
		return nil, err
	}
	users, err := s.Repo.List(ctx, lp)
	if err != nil {
		return nil, err
	}

	data := make([]UserWithSource, 0, len(users))
	for _, u := range users {
		data = append(data, UserWithSource{User: u, Source: SourceDatabase})
	}

	totalPages := 0
	if p.Limit > 0 {
		totalPages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return &UserPage{
		Data: data,
		Pagination: Pagination{
			Page:       p.Page,
			Limit:      p.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// UpdateUser applies a field-level partial update. An empty patch
// returns the current user without touching the store. The returned
// value is always re-fetched after the write so it reflects store truth,
// not the delta.
func (s *Service) UpdateUser(ctx context.Context, id int64, patch repo.UserPatch) (*entity.User, error) {
	current, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return current, nil
	}

	if err := s.Repo.UpdateFields(ctx, id, patch); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := s.Cache.Invalidate(ctx, id); err != nil {
		return nil, err
	}
	return s.GetUserByID(ctx, id)
}

// UpdateUserAvatarURL unconditionally repoints avatar_url for an
// existing user, invalidates and re-fetches.
func (s *Service) UpdateUserAvatarURL(ctx context.Context, id int64, url string) (*entity.User, error) {
	if _, err := s.GetUserByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateAvatarURL(ctx, id, url); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := s.Cache.Invalidate(ctx, id); err != nil {
		return nil, err
	}
	return s.GetUserByID(ctx, id)
}

// UploadAvatar stores the file and repoints the user's avatar_url at it.
// The existence check runs before any blob write.
func (s *Service) UploadAvatar(ctx context.Context, id int64, av AvatarUpload) (*entity.User, error) {
	if _, err := s.GetUserByID(ctx, id); err != nil {
		return nil, err
	}

	path := avatarObjectPath(id, av.ContentType)
	url, err := s.Blobs.Upload(ctx, path, av.ContentType, av.Content)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", id).Error("avatar upload failed")
		}
		return nil, err
	}
	return s.UpdateUserAvatarURL(ctx, id, url)
}

// DeleteUser soft-deletes unconditionally; even an unknown id succeeds
// at this layer. The handler's prior existence check produces the 404.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	if err := s.Repo.SoftDelete(ctx, id); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", id).Error("soft delete failed")
		}
		return err
	}
	return s.Cache.Invalidate(ctx, id)
}

// avatarObjectPath derives the blob key for a user's avatar. The
// extension comes from the MIME subtype, defaulting to jpg.
func avatarObjectPath(userID int64, contentType string) string {
	ext := "jpg"
	if i := strings.Index(contentType, "/"); i >= 0 && i+1 < len(contentType) {
		ext = contentType[i+1:]
	}
	return fmt.Sprintf("users/%d/avatar-%d.%s", userID, time.Now().UnixMilli(), ext)
}
