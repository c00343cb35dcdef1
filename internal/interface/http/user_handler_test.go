package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	userapp "github.com/oksasatya/user-directory-api/internal/application"
	"github.com/oksasatya/user-directory-api/internal/domain/entity"
	repo "github.com/oksasatya/user-directory-api/internal/domain/repository"
	handlers "github.com/oksasatya/user-directory-api/internal/interface/http"
	"github.com/oksasatya/user-directory-api/internal/router/modules"
	"github.com/oksasatya/user-directory-api/pkg/validation"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) CreateUser(ctx context.Context, in userapp.CreateUserInput) (*entity.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserService) CreateUserWithAvatar(ctx context.Context, in userapp.CreateUserInput) (*entity.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserService) GetUserByID(ctx context.Context, id int64) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserService) GetUserByIDWithSource(ctx context.Context, id int64) (*entity.User, userapp.Source, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*entity.User), args.Get(1).(userapp.Source), args.Error(2)
}

func (m *MockUserService) GetAllUsers(ctx context.Context, p userapp.PaginationParams, f userapp.FilterParams) (*userapp.UserPage, error) {
	args := m.Called(ctx, p, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userapp.UserPage), args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, id int64, patch repo.UserPatch) (*entity.User, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserService) UploadAvatar(ctx context.Context, id int64, av userapp.AvatarUpload) (*entity.User, error) {
	args := m.Called(ctx, id, av)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestRouter(svc handlers.UserService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.Init()
	r := gin.New()
	api := r.Group("/api")
	modules.NewUserModule(handlers.NewUserHandler(svc, nil)).Register(api)
	return r
}

func sampleUser(id int64) *entity.User {
	return &entity.User{
		ID:           id,
		Email:        "alice@example.com",
		PasswordHash: "opaque-hash",
		FirstName:    "Alice",
		LastName:     "Anderson",
		Status:       entity.StatusActive,
	}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func multipartBody(t *testing.T, fields map[string]string, fileField, fileName, contentType string, fileBytes []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		hdr := make(map[string][]string)
		hdr["Content-Disposition"] = []string{`form-data; name="` + fileField + `"; filename="` + fileName + `"`}
		hdr["Content-Type"] = []string{contentType}
		part, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write(fileBytes)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func TestCreateUser_JSON_Success(t *testing.T) {
	mockSvc := new(MockUserService)
	r := newTestRouter(mockSvc)

	mockSvc.On("CreateUser", mock.Anything, mock.MatchedBy(func(in userapp.CreateUserInput) bool {
		return in.Email == "alice@example.com" && in.Avatar == nil
	})).Return(sampleUser(1), nil).Once()

	payload := `{"email":"alice@example.com","password_hash":"opaque-hash","first_name":"Alice","last_name":"Anderson"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, "alice@example.com", body["email"])
	mockSvc.AssertExpectations(t)
}

func TestCreateUser_JSON_MissingRequiredFields(t *testing.T) {
	mockSvc := new(MockUserService)
	r := newTestRouter(mockSvc)

	payload := `{"email":"alice@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	require.Contains(t, body["error"], "required")
	mockSvc.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestCreateUser_Multipart_WithAvatar(t *testing.T) {
	mockSvc := new(MockUserService)
	r := newTestRouter(mockSvc)

	mockSvc.On("CreateUserWithAvatar", mock.Anything, mock.MatchedBy(func(in userapp.CreateUserInput) bool {
		return in.Email == "bob@example.com" &&
			in.Avatar != nil && in.Avatar.ContentType == "image/png"
	})).Return(sampleUser(2), nil).Once()

	buf, ct := multipartBody(t, map[string]string{
		"email":         "bob@example.com",
		"password_hash": "opaque-hash",
		"first_name":    "Bob",
		"last_name":     "Brown",
	}, "file", "avatar.png", "image/png", []byte("png-bytes"))

	req := httptest.NewRequest(http.MethodPost, "/api/users", buf)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestCreateUser_Multipart_MissingFields(t *testing.T) {
	mockSvc := new(MockUserService)
	r := newTestRouter(mockSvc)

	buf, ct := multipartBody(t, map[string]string{"email": "bob@example.com"}, "", "", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/users", buf)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "CreateUserWithAvatar", mock.Anything, mock.Anything)
}

func TestCreateUser_Multipart_RejectsNonImage(t *testing.T) {
	mockSvc := new(MockUserService)
	r := newTestRouter(mockSvc)

	buf, ct := multipartBody(t, map[string]string{
		"email":         "bob@example.com",
		"password_hash": "opaque-hash",
		"first_name":    "Bob",
		"last_name":     "Brown",
	}, "file", "notes.txt", "text/plain", []byte("not an image"))

	req := httptest.NewRequest(http.MethodPost, "/api/users", buf)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	require.Contains(t, body["error"], "image")
	mockSvc.AssertNotCalled(t, "CreateUserWithAvatar", mock.Anything, mock.Anything)
}

func TestCreateUser_Multipart_RejectsOversizedFile(t *testing.T) {
	mockSvc := new(MockUserService)
	r := newTestRouter(mockSvc)

	big := bytes.Repeat([]byte("a"), 6<<20) // 6 MiB
	buf, ct := multipartBody(t, map[string]string{
		"email":         "bob@example.com",
		"password_hash": "opaque-hash",
		"first_name":    "Bob",
		"last_name":     "Brown",
	}, "file", "avatar.png", "image/png", big)

	req := httptest.NewRequest(http.MethodPost, "/api/users", buf)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	require.Contains(t, body["error"], "5MB")
	mockSvc.AssertNotCalled(t, "CreateUserWithAvatar", mock.Anything, mock.Anything)
}

func TestGetUser_NonNumericID(t *testing.T) {
	mockSvc := new(MockUserService)
	r := newTestRouter(mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/api/users/abc", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "GetUserByIDWithSource", mock.Anything, mock.Anything)
}

func TestGetUser_ReportsSource(t *testing.T) {
	mockSvc := new(MockUserService)
	r := newTestRouter(mockSvc)

	mockSvc.On("GetUserByIDWithSource", mock.Anything, int64(7)).
		Return(sampleUser(7), userapp.SourceCache, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/users/7", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, "cache", body["source"])
	user := body["user"].(map[string]any)
	require.Equal(t, float64(7), user["id"])
	mockSvc.AssertExpectations(t)
}

func TestGetUser_NotFound(t *testing.T) {
	mockSvc := new(MockUserService)
	r := newTestRouter(mockSvc)

	mockSvc.On("GetUserByIDWithSource", mock.Anything, int64(404)).
		Return(nil, userapp.Source(""), userapp.ErrUserNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/users/404", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, "user not found", body["error"])
}

func TestListUsers_ClampsPagination(t *testing.T) {
	mockSvc := new(MockUserService)
	r := newTestRouter(mockSvc)

	mockSvc.On("GetAllUsers", mock.Anything,
		userapp.PaginationParams{Page: 1, Limit: 100},
		userapp.FilterParams{Status: "active", Search: "alice"},
	).Return(&userapp.UserPage{
		Data:       []userapp.UserWithSource{},
		Pagination: userapp.Pagination{Page: 1, Limit: 100},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/users?page=0&limit=900&status=active&search=alice", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestListUsers_Defaults(t *testing.T) {
	mockSvc := new(MockUserService)
	r := newTestRouter(mockSvc)

	mockSvc.On("GetAllUsers", mock.Anything,
		userapp.PaginationParams{Page: 1, Limit: 10},
		userapp.FilterParams{},
	).Return(&userapp.UserPage{
		Data: []userapp.UserWithSource{{User: *sampleUser(1), Source: userapp.SourceDatabase}},
		Pagination: userapp.Pagination{
			Page: 1, Limit: 10, Total: 1, TotalPages: 1,
		},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	pagination := body["pagination"].(map[string]any)
	require.Equal(t, float64(1), pagination["total_pages"])
	mockSvc.AssertExpectations(t)
}

func TestUpdateUser_PartialFields(t *testing.T) {
	mockSvc := new(MockUserService)
	r := newTestRouter(mockSvc)

	updated := sampleUser(7)
	updated.FirstName = "Alicia"

	mockSvc.On("UpdateUser", mock.Anything, int64(7), mock.MatchedBy(func(p repo.UserPatch) bool {
		return p.FirstName != nil && *p.FirstName == "Alicia" &&
			p.LastName == nil && p.Address == nil
	})).Return(updated, nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/api/users/7", strings.NewReader(`{"first_name":"Alicia"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, "Alicia", body["first_name"])
	mockSvc.AssertExpectations(t)
}

func TestUpdateUser_NotFound(t *testing.T) {
	mockSvc := new(MockUserService)
	r := newTestRouter(mockSvc)

	mockSvc.On("UpdateUser", mock.Anything, int64(404), mock.Anything).
		Return(nil, userapp.ErrUserNotFound).Once()

	req := httptest.NewRequest(http.MethodPut, "/api/users/404", strings.NewReader(`{"first_name":"Nobody"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadAvatar_RejectsNonImage(t *testing.T) {
	mockSvc := new(MockUserService)
	r := newTestRouter(mockSvc)

	buf, ct := multipartBody(t, nil, "file", "notes.txt", "text/plain", []byte("not an image"))
	req := httptest.NewRequest(http.MethodPost, "/api/users/7/avatar", buf)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "UploadAvatar", mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadAvatar_MissingFile(t *testing.T) {
	mockSvc := new(MockUserService)
	r := newTestRouter(mockSvc)

	buf, ct := multipartBody(t, map[string]string{"unused": "x"}, "", "", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/users/7/avatar", buf)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, "file is required", body["error"])
}

func TestUploadAvatar_Success(t *testing.T) {
	mockSvc := new(MockUserService)
	r := newTestRouter(mockSvc)

	mockSvc.On("UploadAvatar", mock.Anything, int64(7), mock.MatchedBy(func(av userapp.AvatarUpload) bool {
		return av.ContentType == "image/png" && av.Size > 0
	})).Return(sampleUser(7), nil).Once()

	buf, ct := multipartBody(t, nil, "file", "avatar.png", "image/png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/users/7/avatar", buf)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestDeleteUser_Success(t *testing.T) {
	mockSvc := new(MockUserService)
	r := newTestRouter(mockSvc)

	mockSvc.On("GetUserByID", mock.Anything, int64(7)).Return(sampleUser(7), nil).Once()
	mockSvc.On("DeleteUser", mock.Anything, int64(7)).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/api/users/7", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, "user deleted", body["message"])
	mockSvc.AssertExpectations(t)
}

func TestDeleteUser_NotFound(t *testing.T) {
	mockSvc := new(MockUserService)
	r := newTestRouter(mockSvc)

	mockSvc.On("GetUserByID", mock.Anything, int64(404)).
		Return(nil, userapp.ErrUserNotFound).Once()

	req := httptest.NewRequest(http.MethodDelete, "/api/users/404", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	mockSvc.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
}

func TestInfrastructureErrorMapsTo500(t *testing.T) {
	mockSvc := new(MockUserService)
	r := newTestRouter(mockSvc)

	mockSvc.On("GetUserByIDWithSource", mock.Anything, int64(7)).
		Return(nil, userapp.Source(""), errString("connection refused")).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/users/7", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, "connection refused", body["error"])
}

type errString string

func (e errString) Error() string { return string(e) }
