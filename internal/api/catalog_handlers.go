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
	"github.com/stadiumfit/scorecard/pkg/httputil"
)

type CategoryRequest struct {
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

type ActionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Points      int    `json:"points"`
	CategoryID  string `json:"category_id"`
}

type TargetsRequest struct {
	Daily         int    `json:"daily"`
	Weekly        int    `json:"weekly"`
	Monthly       int    `json:"monthly"`
	EffectiveDate string `json:"effective_date"`
}

func (s *Server) GetCategories(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"categories": s.catalogService.ResolveCategories(),
	})
	logger.Info("categories provided")
}

func (s *Server) GetActions(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"actions": s.catalogService.ResolveActions(),
	})
	logger.Info("actions provided")
}

func (s *Server) GetActionsGrouped(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"groups": s.catalogService.ActionsByCategory(),
	})
	logger.Info("grouped actions provided")
}

func (s *Server) InitializeCatalog(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	caller, err := GetCallerFromContext(r)
	if err != nil {
		logger.Error("catalog init error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	if err = s.catalogService.InitializeDefaults(ctx, caller); err != nil {
		if errors.Is(err, errorvalues.ErrForbidden) {
			logger.Error("catalog init error: forbidden")
			httputil.WriteErrorResponse(w, http.StatusForbidden, "admin role required", nil)
			return
		}
		logger.Error("catalog init error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while initializing catalog", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"initialized": true})
	logger.Info("catalog defaults initialized")
}

func (s *Server) CreateCategory(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	caller, err := GetCallerFromContext(r)
	if err != nil {
		logger.Error("create category error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req CategoryRequest
	defer r.Body.Close()
	if err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("create category error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	category, err := s.catalogService.AddCategory(ctx, caller, &service.CategoryRequest{
		Name:  req.Name,
		Icon:  req.Icon,
		Color: req.Color,
	})
	if err != nil {
		if errors.Is(err, errorvalues.ErrForbidden) {
			logger.Error("create category error: forbidden")
			httputil.WriteErrorResponse(w, http.StatusForbidden, "admin role required", nil)
			return
		}
		logger.Error("create category error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "couldn't create category", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, category)
	logger.Info("category created")
}

func (s *Server) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	caller, err := GetCallerFromContext(r)
	if err != nil {
		logger.Error("update category error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	categoryID := chi.URLParam(r, "id")
	var req CategoryRequest
	defer r.Body.Close()
	if err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("update category error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	category, err := s.catalogService.UpdateCategory(ctx, caller, categoryID, &service.CategoryRequest{
		Name:  req.Name,
		Icon:  req.Icon,
		Color: req.Color,
	})
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrForbidden):
			logger.Error("update category error: forbidden")
			httputil.WriteErrorResponse(w, http.StatusForbidden, "admin role required", nil)
		case errors.Is(err, errorvalues.ErrCategoryNotFound):
			logger.Error("update category error: unexist category")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "category doesn't exist", nil)
		default:
			logger.Error("update category error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "couldn't update category", err)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, category)
	logger.Info("category updated")
}

func (s *Server) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	caller, err := GetCallerFromContext(r)
	if err != nil {
		logger.Error("delete category error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	categoryID := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.catalogService.DeleteCategory(ctx, caller, categoryID)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrForbidden):
			logger.Error("delete category error: forbidden")
			httputil.WriteErrorResponse(w, http.StatusForbidden, "admin role required", nil)
		case errors.Is(err, errorvalues.ErrCategoryNotFound):
			logger.Error("delete category error: unexist category")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "category doesn't exist", nil)
		case errors.Is(err, errorvalues.ErrCategoryInUse):
			logger.Error("delete category error: category still referenced")
			httputil.WriteErrorResponse(w, http.StatusConflict, "category is referenced by actions; reassign or delete them first", nil)
		default:
			logger.Error("delete category error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while deleting category", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"deleted": true})
	logger.Info("category deleted")
}

func (s *Server) CreateAction(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	caller, err := GetCallerFromContext(r)
	if err != nil {
		logger.Error("create action error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req ActionRequest
	defer r.Body.Close()
	if err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("create action error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	action, err := s.catalogService.AddAction(ctx, caller, &service.ActionRequest{
		Name:        req.Name,
		Description: req.Description,
		Points:      req.Points,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrForbidden):
			logger.Error("create action error: forbidden")
			httputil.WriteErrorResponse(w, http.StatusForbidden, "admin role required", nil)
		case errors.Is(err, errorvalues.ErrCategoryNotFound):
			logger.Error("create action error: unexist category")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "category doesn't exist", nil)
		default:
			logger.Error("create action error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "couldn't create action", err)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, action)
	logger.Info("action created")
}

func (s *Server) UpdateAction(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	caller, err := GetCallerFromContext(r)
	if err != nil {
		logger.Error("update action error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	actionID := chi.URLParam(r, "id")
	var req ActionRequest
	defer r.Body.Close()
	if err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("update action error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	action, err := s.catalogService.UpdateAction(ctx, caller, actionID, &service.ActionRequest{
		Name:        req.Name,
		Description: req.Description,
		Points:      req.Points,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrForbidden):
			logger.Error("update action error: forbidden")
			httputil.WriteErrorResponse(w, http.StatusForbidden, "admin role required", nil)
		case errors.Is(err, errorvalues.ErrActionNotFound):
			logger.Error("update action error: unexist action")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "action doesn't exist", nil)
		case errors.Is(err, errorvalues.ErrCategoryNotFound):
			logger.Error("update action error: unexist category")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "category doesn't exist", nil)
		default:
			logger.Error("update action error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "couldn't update action", err)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, action)
	logger.Info("action updated")
}

func (s *Server) DeleteAction(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	caller, err := GetCallerFromContext(r)
	if err != nil {
		logger.Error("delete action error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	actionID := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.catalogService.DeleteAction(ctx, caller, actionID)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrForbidden):
			logger.Error("delete action error: forbidden")
			httputil.WriteErrorResponse(w, http.StatusForbidden, "admin role required", nil)
		case errors.Is(err, errorvalues.ErrActionNotFound):
			logger.Error("delete action error: unexist action")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "action doesn't exist", nil)
		default:
			logger.Error("delete action error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while deleting action", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"deleted": true})
	logger.Info("action deleted")
}

func (s *Server) GetTargets(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	httputil.WriteJSONResponse(w, http.StatusOK, s.catalogService.TargetsAsOf(date))
	logger.Info("targets provided")
}

func (s *Server) UpdateTargets(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	caller, err := GetCallerFromContext(r)
	if err != nil {
		logger.Error("update targets error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req TargetsRequest
	defer r.Body.Close()
	if err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("update targets error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.catalogService.UpdateTargets(ctx, caller, &service.TargetsRequest{
		Daily:         req.Daily,
		Weekly:        req.Weekly,
		Monthly:       req.Monthly,
		EffectiveDate: req.EffectiveDate,
	})
	if err != nil {
		if errors.Is(err, errorvalues.ErrForbidden) {
			logger.Error("update targets error: forbidden")
			httputil.WriteErrorResponse(w, http.StatusForbidden, "admin role required", nil)
			return
		}
		logger.Error("update targets error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "couldn't update targets", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"updated": true})
	logger.Info("targets updated")
}

func (s *Server) GetTargetHistory(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	caller, err := GetCallerFromContext(r)
	if err != nil {
		logger.Error("target history error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	history, err := s.catalogService.TargetHistory(ctx, caller)
	if err != nil {
		if errors.Is(err, errorvalues.ErrForbidden) {
			logger.Error("target history error: forbidden")
			httputil.WriteErrorResponse(w, http.StatusForbidden, "admin role required", nil)
			return
		}
		logger.Error("target history error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while getting target history", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"history": history})
	logger.Info("target history provided")
}
