package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/devlog/devlog/internal/domain"
	"github.com/devlog/devlog/internal/ports"
	"github.com/devlog/devlog/internal/service/logger"
	"github.com/devlog/devlog/internal/service/token"
	"github.com/devlog/devlog/internal/usecase"
)

// MockLogRepository is a mock implementation of ports.LogRepository
type MockLogRepository struct {
	mock.Mock
}

func (m *MockLogRepository) Create(ctx context.Context, log *domain.Log) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockLogRepository) FindByID(ctx context.Context, id string) (*domain.Log, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Log), args.Error(1)
}

func (m *MockLogRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Log, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Log), args.Error(1)
}

func (m *MockLogRepository) ListAll(ctx context.Context) ([]*domain.LogWithOwner, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LogWithOwner), args.Error(1)
}

func (m *MockLogRepository) Update(ctx context.Context, log *domain.Log) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockLogRepository) DeleteByOwner(ctx context.Context, id, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

type logTestEnv struct {
	router *mux.Router
	repo   *MockLogRepository
	tokens *token.JWTService
}

func newLogTestEnv(t *testing.T) *logTestEnv {
	t.Helper()

	repo := new(MockLogRepository)
	log := logger.New(logger.Config{Level: "error", Format: "text", ServiceName: "test"})
	tokenService, err := token.NewJWTService("test-secret-key", time.Hour)
	if err != nil {
		t.Fatalf("failed to build token service: %v", err)
	}

	handler := NewLogHandler(usecase.NewLogUseCase(repo, log), NewAuthMiddleware(tokenService))
	router := mux.NewRouter()
	handler.RegisterRoutes(router)

	return &logTestEnv{router: router, repo: repo, tokens: tokenService}
}

func (e *logTestEnv) bearerFor(t *testing.T, id string, role domain.Role) string {
	t.Helper()
	accessToken, err := e.tokens.GenerateAccessToken(ports.TokenClaims{
		UserID: id,
		Name:   "Test User",
		Email:  id + "@example.com",
		Role:   role,
	})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return "Bearer " + accessToken
}

func (e *logTestEnv) do(method, target, body, authorization string) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != "" {
		buf = bytes.NewBufferString(body)
	} else {
		buf = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, buf)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode response body %q: %v", rr.Body.String(), err)
	}
	return envelope
}

func TestLogHandler_CreateLog(t *testing.T) {
	validBody := `{"tasks":"implemented filters","time_spent":6.5,"mood":"happy","blockers":"","tags":["api"]}`

	tests := []struct {
		name           string
		role           domain.Role
		noAuth         bool
		body           string
		setupMock      func(repo *MockLogRepository)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "developer creates a log",
			role: domain.RoleDeveloper,
			body: validBody,
			setupMock: func(repo *MockLogRepository) {
				repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Log")).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "manager cannot create logs",
			role:           domain.RoleManager,
			body:           validBody,
			expectedStatus: http.StatusForbidden,
			expectedCode:   "FORBIDDEN",
		},
		{
			name:           "missing token",
			noAuth:         true,
			body:           validBody,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "malformed body",
			role:           domain.RoleDeveloper,
			body:           `{"tasks":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing tasks",
			role:           domain.RoleDeveloper,
			body:           `{"time_spent":2}`,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "VALIDATION",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newLogTestEnv(t)
			if tt.setupMock != nil {
				tt.setupMock(env.repo)
			}

			auth := ""
			if !tt.noAuth {
				auth = env.bearerFor(t, "dev-1", tt.role)
			}

			rr := env.do(http.MethodPost, "/api/logs", tt.body, auth)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedCode != "" {
				envelope := decodeEnvelope(t, rr)
				assert.Equal(t, tt.expectedCode, envelope["code"])
			}
			env.repo.AssertExpectations(t)
		})
	}
}

func TestLogHandler_CreateLog_OwnerComesFromToken(t *testing.T) {
	env := newLogTestEnv(t)

	var captured *domain.Log
	env.repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Log")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*domain.Log)
		}).Return(nil)

	// the body has no owner field at all; a forged one would not decode
	body := `{"tasks":"worked","time_spent":1,"owner_id":"someone-else"}`
	rr := env.do(http.MethodPost, "/api/logs", body, env.bearerFor(t, "dev-1", domain.RoleDeveloper))

	assert.Equal(t, http.StatusCreated, rr.Code)
	if assert.NotNil(t, captured) {
		assert.Equal(t, "dev-1", captured.OwnerID)
	}
}

func TestLogHandler_ListOwnLogs(t *testing.T) {
	env := newLogTestEnv(t)

	own := []*domain.Log{
		domain.NewLog("log-1", "dev-1", time.Now(), "tasks", 3, domain.MoodNeutral, "", nil),
	}
	env.repo.On("ListByOwner", mock.Anything, "dev-1").Return(own, nil)

	rr := env.do(http.MethodGet, "/api/logs/me", "", env.bearerFor(t, "dev-1", domain.RoleDeveloper))

	assert.Equal(t, http.StatusOK, rr.Code)
	envelope := decodeEnvelope(t, rr)
	data, ok := envelope["data"].([]interface{})
	if assert.True(t, ok) {
		assert.Len(t, data, 1)
	}
	env.repo.AssertExpectations(t)
}

func TestLogHandler_ListAllLogs(t *testing.T) {
	all := []*domain.LogWithOwner{
		{
			Log:       *domain.NewLog("log-1", "dev-1", time.Now(), "tasks", 3, domain.MoodNeutral, "db timeout", []string{"api"}),
			OwnerName: "Alice",
		},
		{
			Log:       *domain.NewLog("log-2", "dev-2", time.Now(), "tasks", 2, domain.MoodSad, "", []string{"frontend"}),
			OwnerName: "Bob",
		},
	}

	tests := []struct {
		name           string
		role           domain.Role
		target         string
		setupMock      func(repo *MockLogRepository)
		expectedStatus int
		expectedCount  int
	}{
		{
			name:   "manager lists everything",
			role:   domain.RoleManager,
			target: "/api/logs",
			setupMock: func(repo *MockLogRepository) {
				repo.On("ListAll", mock.Anything).Return(all, nil)
			},
			expectedStatus: http.StatusOK,
			expectedCount:  2,
		},
		{
			name:   "blockers filter narrows the result",
			role:   domain.RoleManager,
			target: "/api/logs?blockers=db",
			setupMock: func(repo *MockLogRepository) {
				repo.On("ListAll", mock.Anything).Return(all, nil)
			},
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
		{
			name:   "devName filter narrows the result",
			role:   domain.RoleManager,
			target: "/api/logs?devName=bob",
			setupMock: func(repo *MockLogRepository) {
				repo.On("ListAll", mock.Anything).Return(all, nil)
			},
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
		{
			name:           "developer is rejected",
			role:           domain.RoleDeveloper,
			target:         "/api/logs",
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "bad date filter",
			role:           domain.RoleManager,
			target:         "/api/logs?date=15-03-2024",
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newLogTestEnv(t)
			if tt.setupMock != nil {
				tt.setupMock(env.repo)
			}

			rr := env.do(http.MethodGet, tt.target, "", env.bearerFor(t, "caller-1", tt.role))

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedStatus == http.StatusOK {
				envelope := decodeEnvelope(t, rr)
				data, ok := envelope["data"].([]interface{})
				if assert.True(t, ok) {
					assert.Len(t, data, tt.expectedCount)
				}
			}
			env.repo.AssertExpectations(t)
		})
	}
}

func TestLogHandler_UpdateLog(t *testing.T) {
	patchBody := `{"tasks":"rewritten tasks"}`

	tests := []struct {
		name           string
		callerID       string
		body           string
		setupMock      func(repo *MockLogRepository)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:     "owner updates an unreviewed log",
			callerID: "dev-1",
			body:     patchBody,
			setupMock: func(repo *MockLogRepository) {
				existing := domain.NewLog("log-1", "dev-1", time.Now(), "old", 3, domain.MoodNeutral, "", nil)
				repo.On("FindByID", mock.Anything, "log-1").Return(existing, nil)
				repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Log")).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:     "foreign log rejects as forbidden",
			callerID: "dev-2",
			body:     patchBody,
			setupMock: func(repo *MockLogRepository) {
				existing := domain.NewLog("log-1", "dev-1", time.Now(), "old", 3, domain.MoodNeutral, "", nil)
				repo.On("FindByID", mock.Anything, "log-1").Return(existing, nil)
			},
			expectedStatus: http.StatusForbidden,
			expectedCode:   "FORBIDDEN",
		},
		{
			name:     "missing log rejects the same way as foreign",
			callerID: "dev-1",
			body:     patchBody,
			setupMock: func(repo *MockLogRepository) {
				repo.On("FindByID", mock.Anything, "log-1").Return(nil, ports.ErrLogNotFound)
			},
			expectedStatus: http.StatusForbidden,
			expectedCode:   "FORBIDDEN",
		},
		{
			name:     "reviewed log is frozen",
			callerID: "dev-1",
			body:     patchBody,
			setupMock: func(repo *MockLogRepository) {
				existing := domain.NewLog("log-1", "dev-1", time.Now(), "old", 3, domain.MoodNeutral, "", nil)
				existing.Review("done")
				repo.On("FindByID", mock.Anything, "log-1").Return(existing, nil)
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "READ_ONLY",
		},
		{
			name:     "empty patch",
			callerID: "dev-1",
			body:     `{}`,
			setupMock: func(repo *MockLogRepository) {
				existing := domain.NewLog("log-1", "dev-1", time.Now(), "old", 3, domain.MoodNeutral, "", nil)
				repo.On("FindByID", mock.Anything, "log-1").Return(existing, nil)
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "VALIDATION",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newLogTestEnv(t)
			tt.setupMock(env.repo)

			rr := env.do(http.MethodPatch, "/api/logs/log-1", tt.body, env.bearerFor(t, tt.callerID, domain.RoleDeveloper))

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedCode != "" {
				envelope := decodeEnvelope(t, rr)
				assert.Equal(t, tt.expectedCode, envelope["code"])
			}
			env.repo.AssertExpectations(t)
		})
	}
}

func TestLogHandler_DeleteLog(t *testing.T) {
	tests := []struct {
		name           string
		callerID       string
		setupMock      func(repo *MockLogRepository)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:     "owner deletes their log",
			callerID: "dev-1",
			setupMock: func(repo *MockLogRepository) {
				repo.On("DeleteByOwner", mock.Anything, "log-1", "dev-1").Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:     "foreign log reads as missing",
			callerID: "dev-2",
			setupMock: func(repo *MockLogRepository) {
				repo.On("DeleteByOwner", mock.Anything, "log-1", "dev-2").Return(ports.ErrLogNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newLogTestEnv(t)
			tt.setupMock(env.repo)

			rr := env.do(http.MethodDelete, "/api/logs/log-1", "", env.bearerFor(t, tt.callerID, domain.RoleDeveloper))

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedCode != "" {
				envelope := decodeEnvelope(t, rr)
				assert.Equal(t, tt.expectedCode, envelope["code"])
			}
			env.repo.AssertExpectations(t)
		})
	}
}

func TestLogHandler_ReviewLog(t *testing.T) {
	tests := []struct {
		name           string
		role           domain.Role
		setupMock      func(repo *MockLogRepository)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "manager reviews a log",
			role: domain.RoleManager,
			setupMock: func(repo *MockLogRepository) {
				existing := domain.NewLog("log-1", "dev-1", time.Now(), "tasks", 3, domain.MoodNeutral, "", nil)
				repo.On("FindByID", mock.Anything, "log-1").Return(existing, nil)
				repo.On("Update", mock.Anything, mock.MatchedBy(func(l *domain.Log) bool {
					return l.Reviewed && l.Feedback == "nice work"
				})).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "developer cannot review",
			role: domain.RoleDeveloper,
			setupMock: func(repo *MockLogRepository) {
				existing := domain.NewLog("log-1", "dev-1", time.Now(), "tasks", 3, domain.MoodNeutral, "", nil)
				repo.On("FindByID", mock.Anything, "log-1").Return(existing, nil)
			},
			expectedStatus: http.StatusForbidden,
			expectedCode:   "FORBIDDEN",
		},
		{
			name: "missing log",
			role: domain.RoleManager,
			setupMock: func(repo *MockLogRepository) {
				repo.On("FindByID", mock.Anything, "log-1").Return(nil, ports.ErrLogNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newLogTestEnv(t)
			tt.setupMock(env.repo)

			rr := env.do(http.MethodPatch, "/api/logs/log-1/review", `{"feedback":"nice work"}`, env.bearerFor(t, "mgr-1", tt.role))

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedCode != "" {
				envelope := decodeEnvelope(t, rr)
				assert.Equal(t, tt.expectedCode, envelope["code"])
			}
			env.repo.AssertExpectations(t)
		})
	}
}
