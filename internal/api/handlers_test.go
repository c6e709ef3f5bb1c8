package api_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stadiumfit/scorecard/internal/api"
	errorvalues "github.com/stadiumfit/scorecard/internal/error_values"
	"github.com/stadiumfit/scorecard/internal/service"
	"github.com/stadiumfit/scorecard/pkg/entity"
	jwtservice "github.com/stadiumfit/scorecard/pkg/jwt_service"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	service.InitValidator()
	m.Run()
}

var testUser = entity.User{
	ID:       "1",
	Username: "clayton",
	Name:     "Clayton White",
	Email:    "clayton@stadiumfitness.com",
	Role:     entity.RoleSalesRep,
}

type IdentityServiceMock struct {
	success bool
}

func (m *IdentityServiceMock) ChangeState(success bool) {
	m.success = success
}

func (m *IdentityServiceMock) Login(ctx context.Context, username, pin string) (*entity.User, error) {
	if m.success {
		user := testUser
		return &user, nil
	}
	return nil, errorvalues.ErrWrongCredentials
}

func (m *IdentityServiceMock) Logout(ctx context.Context) error {
	if m.success {
		return nil
	}
	return errors.New("mocked error")
}

func (m *IdentityServiceMock) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if m.success {
		user := testUser
		return &user, nil
	}
	return nil, errorvalues.ErrUserNotFound
}

func (m *IdentityServiceMock) ListUsers(ctx context.Context, caller service.Caller) ([]entity.User, error) {
	if m.success {
		return []entity.User{testUser}, nil
	}
	return nil, errorvalues.ErrForbidden
}

func (m *IdentityServiceMock) ChangePin(ctx context.Context, caller service.Caller, newPin string) error {
	if m.success {
		return nil
	}
	return errorvalues.ErrNoSession
}

func (m *IdentityServiceMock) AddUser(ctx context.Context, caller service.Caller, req *service.AddUserRequest) (*entity.User, error) {
	if m.success {
		user := testUser
		return &user, nil
	}
	return nil, errorvalues.ErrUserExists
}

func (m *IdentityServiceMock) UpdateUser(ctx context.Context, caller service.Caller, userID string, req *service.UpdateUserRequest) (*entity.User, error) {
	if m.success {
		user := testUser
		return &user, nil
	}
	return nil, errorvalues.ErrUserNotFound
}

func (m *IdentityServiceMock) DeleteUser(ctx context.Context, caller service.Caller, userID string) error {
	if m.success {
		return nil
	}
	return errorvalues.ErrSelfDelete
}

func (m *IdentityServiceMock) ResetUserPin(ctx context.Context, caller service.Caller, userID, newPin string) error {
	if m.success {
		return nil
	}
	return errorvalues.ErrUserNotFound
}

type LedgerServiceMock struct{}

func (m *LedgerServiceMock) SetQuantity(userID, actionID string, qty int) {}

func (m *LedgerServiceMock) Selection(userID string) map[string]int {
	return map[string]int{"new_lead": 2}
}

func (m *LedgerServiceMock) ResetSelection(userID string) {}

func (m *LedgerServiceMock) Submit(ctx context.Context, userID string) (int, error) {
	return 3, nil
}

func (m *LedgerServiceMock) RecomputeSummary(ctx context.Context, userID string) (*entity.Summary, error) {
	return &entity.Summary{}, nil
}

func (m *LedgerServiceMock) DailyProgress(userID string) entity.Progress {
	return entity.Progress{Current: 10, Target: 40, Percentage: 25}
}

func (m *LedgerServiceMock) WeeklyProgress(userID string) entity.Progress {
	return entity.Progress{Current: 10, Target: 120, Percentage: 8}
}

func (m *LedgerServiceMock) TeamMonthlyProgress() entity.Progress {
	return entity.Progress{Current: 10, Target: 1000, Percentage: 1}
}

func (m *LedgerServiceMock) BuildReport(from, to, userID string) *entity.ReportData {
	return &entity.ReportData{DateRange: from + " to " + to}
}

func TestLoginHandler(t *testing.T) {
	body, err := sonic.ConfigDefault.Marshal(api.LoginRequest{
		Username: "clayton",
		Pin:      "1234",
	})
	if err != nil {
		t.Fatal(err)
	}
	mock := IdentityServiceMock{}
	serv := api.New(&api.ServicesList{
		IdentityService: &mock,
		JwtService:      jwtservice.New("test_secret"),
	})
	t.Run("logged in", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
		mock.ChangeState(true)
		serv.Login(rr, req)
		assert.Equal(t, http.StatusOK, rr.Result().StatusCode)
		var resp struct {
			User  api.UserResponse `json:"user"`
			Token string           `json:"token"`
		}
		assert.NoError(t, sonic.ConfigDefault.NewDecoder(rr.Result().Body).Decode(&resp))
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, testUser.ID, resp.User.ID)
		assert.Equal(t, testUser.Username, resp.User.Username)
	})
	t.Run("wrong credentials", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
		mock.ChangeState(false)
		serv.Login(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Result().StatusCode)
	})
	t.Run("invalid body", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		mock.ChangeState(true)
		serv.Login(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Result().StatusCode)
	})
}

func TestRoutedKpiEndpoints(t *testing.T) {
	identityMock := IdentityServiceMock{success: true}
	jwtService := jwtservice.New("test_secret")
	serv := api.New(&api.ServicesList{
		IdentityService: &identityMock,
		LedgerService:   &LedgerServiceMock{},
		JwtService:      jwtService,
	})
	token, err := jwtService.GenerateToken(&testUser)
	if err != nil {
		t.Fatal(err)
	}
	t.Run("selection requires a token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/kpi/selection", nil)
		serv.Handler().ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Result().StatusCode)
	})
	t.Run("selection with a token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/kpi/selection", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		serv.Handler().ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Result().StatusCode)
		assert.Contains(t, rr.Body.String(), "new_lead")
	})
	t.Run("set quantity round-trips the buffer", func(t *testing.T) {
		body, _ := sonic.ConfigDefault.Marshal(api.SetQuantityRequest{Quantity: 2})
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/v1/kpi/selection/new_lead", bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		serv.Handler().ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Result().StatusCode)
	})
	t.Run("submit reports appended count", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/kpi/submit", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		serv.Handler().ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Result().StatusCode)
		assert.Contains(t, rr.Body.String(), `"appended":3`)
	})
	t.Run("progress bundles the three windows", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/kpi/progress", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		serv.Handler().ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Result().StatusCode)
		assert.Contains(t, rr.Body.String(), "daily")
		assert.Contains(t, rr.Body.String(), "weekly")
		assert.Contains(t, rr.Body.String(), "team_monthly")
	})
	t.Run("report needs a date range", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/kpi/report", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		serv.Handler().ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Result().StatusCode)
	})
	t.Run("deleted user cannot use a live token", func(t *testing.T) {
		identityMock.ChangeState(false)
		defer identityMock.ChangeState(true)
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/kpi/selection", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		serv.Handler().ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Result().StatusCode)
	})
}
