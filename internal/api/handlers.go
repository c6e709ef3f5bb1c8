package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	errorvalues "github.com/stadiumfit/scorecard/internal/error_values"
	"github.com/stadiumfit/scorecard/internal/service"
	"github.com/stadiumfit/scorecard/pkg/entity"
	"github.com/stadiumfit/scorecard/pkg/httputil"
)

type LoginRequest struct {
	Username string `json:"username"`
	Pin      string `json:"pin"`
}

type ChangePinRequest struct {
	NewPin string `json:"new_pin"`
}

type UserRequest struct {
	Username string `json:"username"`
	Pin      string `json:"pin,omitempty"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
}

type ResetPinRequest struct {
	NewPin string `json:"new_pin,omitempty"`
}

// UserResponse never carries the PIN hash.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
}

func toUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Email:    u.Email,
		Role:     string(u.Role),
	}
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	var req LoginRequest
	defer r.Body.Close()
	err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("login error: invalid body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	user, err := s.identityService.Login(ctx, req.Username, req.Pin)
	if err != nil {
		if errors.Is(err, errorvalues.ErrWrongCredentials) {
			logger.Error("login error: wrong credentials")
			httputil.WriteErrorResponse(w, http.StatusUnauthorized, "invalid username or pin", nil)
			return
		}
		logger.Error("login error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error during login", nil)
		return
	}
	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		logger.Error("login error: generating token error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error creating token", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"user":  toUserResponse(user),
		"token": token,
	})
	logger.Info("successful login")
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	if err := s.identityService.Logout(ctx); err != nil {
		logger.Error("logout error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error during logout", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"logged_out": true})
	logger.Info("successful logout")
}

func (s *Server) ChangePin(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	caller, err := GetCallerFromContext(r)
	if err != nil {
		logger.Error("change pin error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req ChangePinRequest
	defer r.Body.Close()
	if err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("change pin error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.identityService.ChangePin(ctx, caller, req.NewPin)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrNoSession):
			logger.Error("change pin error: no session")
			httputil.WriteErrorResponse(w, http.StatusConflict, "no authenticated session", nil)
		case errors.Is(err, errorvalues.ErrUserNotFound):
			logger.Error("change pin error: unexist user")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "user doesn't exist", nil)
		default:
			logger.Error("change pin error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "couldn't change pin", err)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"changed": true})
	logger.Info("pin changed")
}

func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	caller, err := GetCallerFromContext(r)
	if err != nil {
		logger.Error("list users error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	users, err := s.identityService.ListUsers(ctx, caller)
	if err != nil {
		if errors.Is(err, errorvalues.ErrForbidden) {
			logger.Error("list users error: forbidden")
			httputil.WriteErrorResponse(w, http.StatusForbidden, "admin role required", nil)
			return
		}
		logger.Error("list users error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while listing users", nil)
		return
	}
	resp := make([]UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, toUserResponse(&users[i]))
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"users": resp})
	logger.Info("users provided")
}

func (s *Server) AddUser(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	caller, err := GetCallerFromContext(r)
	if err != nil {
		logger.Error("add user error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req UserRequest
	defer r.Body.Close()
	if err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("add user error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	user, err := s.identityService.AddUser(ctx, caller, &service.AddUserRequest{
		Username: req.Username,
		Pin:      req.Pin,
		Name:     req.Name,
		Email:    req.Email,
		Role:     entity.Role(req.Role),
	})
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrForbidden):
			logger.Error("add user error: forbidden")
			httputil.WriteErrorResponse(w, http.StatusForbidden, "admin role required", nil)
		case errors.Is(err, errorvalues.ErrUserExists):
			logger.Error("add user error: existed username")
			httputil.WriteErrorResponse(w, http.StatusConflict, "user with such username already exists", nil)
		default:
			logger.Error("add user error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "couldn't create user", err)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, toUserResponse(user))
	logger.Info("user created")
}

func (s *Server) UpdateUser(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	caller, err := GetCallerFromContext(r)
	if err != nil {
		logger.Error("update user error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	userID := chi.URLParam(r, "id")
	var req UserRequest
	defer r.Body.Close()
	if err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("update user error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	user, err := s.identityService.UpdateUser(ctx, caller, userID, &service.UpdateUserRequest{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Role:     entity.Role(req.Role),
	})
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrForbidden):
			logger.Error("update user error: forbidden")
			httputil.WriteErrorResponse(w, http.StatusForbidden, "admin role required", nil)
		case errors.Is(err, errorvalues.ErrUserNotFound):
			logger.Error("update user error: unexist user")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "user doesn't exist", nil)
		case errors.Is(err, errorvalues.ErrUserExists):
			logger.Error("update user error: duplicated username")
			httputil.WriteErrorResponse(w, http.StatusConflict, "user with such username already exists", nil)
		default:
			logger.Error("update user error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "couldn't update user", err)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, toUserResponse(user))
	logger.Info("user updated")
}

func (s *Server) DeleteUser(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	caller, err := GetCallerFromContext(r)
	if err != nil {
		logger.Error("delete user error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	userID := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.identityService.DeleteUser(ctx, caller, userID)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrForbidden):
			logger.Error("delete user error: forbidden")
			httputil.WriteErrorResponse(w, http.StatusForbidden, "admin role required", nil)
		case errors.Is(err, errorvalues.ErrSelfDelete):
			logger.Error("delete user error: attempt to delete own account")
			httputil.WriteErrorResponse(w, http.StatusConflict, "cannot delete own account", nil)
		case errors.Is(err, errorvalues.ErrUserNotFound):
			logger.Error("delete user error: unexist user")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "user doesn't exist", nil)
		default:
			logger.Error("delete user error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while deleting user", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"deleted": true})
	logger.Info("user deleted")
}

func (s *Server) ResetUserPin(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	caller, err := GetCallerFromContext(r)
	if err != nil {
		logger.Error("reset pin error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	userID := chi.URLParam(r, "id")
	var req ResetPinRequest
	defer r.Body.Close()
	if err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("reset pin error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.identityService.ResetUserPin(ctx, caller, userID, req.NewPin)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrForbidden):
			logger.Error("reset pin error: forbidden")
			httputil.WriteErrorResponse(w, http.StatusForbidden, "admin role required", nil)
		case errors.Is(err, errorvalues.ErrUserNotFound):
			logger.Error("reset pin error: unexist user")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "user doesn't exist", nil)
		default:
			logger.Error("reset pin error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "couldn't reset pin", err)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"reset": true})
	logger.Info("pin reset")
}
