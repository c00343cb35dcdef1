package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/user-directory-api/internal/domain/entity"
)

// ErrNotFound is returned when a user does not exist or is soft-deleted.
var ErrNotFound = errors.New("user not found")

// ListParams narrows and pages a user listing. Status is an exact match,
// Search is a case-insensitive substring matched against first name,
// last name and email.
type ListParams struct {
	Status string
	Search string
	Limit  int
	Offset int
}

// UserPatch carries a field-level partial update. Nil means "leave the
// column untouched"; a pointer to the zero value writes the zero value.
type UserPatch struct {
	FirstName   *string
	LastName    *string
	Address     *string
	Phone       *string
	DateOfBirth *string
	Status      *string
	AvatarURL   *string
	LastLoginAt *time.Time
}

// IsEmpty reports whether the patch carries no fields at all.
func (p UserPatch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Address == nil &&
		p.Phone == nil && p.DateOfBirth == nil && p.Status == nil &&
		p.AvatarURL == nil && p.LastLoginAt == nil
}

// UserRepository defines the interface for user-related database operations.
// All reads exclude soft-deleted rows.
type UserRepository interface {
	Insert(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	List(ctx context.Context, p ListParams) ([]entity.User, error)
	Count(ctx context.Context, p ListParams) (int64, error)
	UpdateFields(ctx context.Context, id int64, patch UserPatch) error
	UpdateAvatarURL(ctx context.Context, id int64, url string) error
	SoftDelete(ctx context.Context, id int64) error
}
