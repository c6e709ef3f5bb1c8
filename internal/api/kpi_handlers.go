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
	"github.com/stadiumfit/scorecard/pkg/entity"
	"github.com/stadiumfit/scorecard/pkg/httputil"
)

type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type EmailReportRequest struct {
	To         string             `json:"to"`
	Format     string             `json:"format"`
	ReportData *entity.ReportData `json:"report_data"`
}

func (s *Server) GetSelection(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	caller, err := GetCallerFromContext(r)
	if err != nil {
		logger.Error("get selection error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"selection": s.ledgerService.Selection(caller.ID),
	})
	logger.Info("selection provided")
}

func (s *Server) SetQuantity(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	caller, err := GetCallerFromContext(r)
	if err != nil {
		logger.Error("set quantity error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	actionID := chi.URLParam(r, "actionID")
	var req SetQuantityRequest
	defer r.Body.Close()
	if err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("set quantity error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	s.ledgerService.SetQuantity(caller.ID, actionID, req.Quantity)
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"selection": s.ledgerService.Selection(caller.ID),
	})
	logger.Info("selection quantity set")
}

func (s *Server) ResetSelection(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	caller, err := GetCallerFromContext(r)
	if err != nil {
		logger.Error("reset selection error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	s.ledgerService.ResetSelection(caller.ID)
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"reset": true})
	logger.Info("selection reset")
}

func (s *Server) SubmitActions(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	caller, err := GetCallerFromContext(r)
	if err != nil {
		logger.Error("submit error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	appended, err := s.ledgerService.Submit(ctx, caller.ID)
	if err != nil {
		logger.Error("submit error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while submitting actions", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"appended": appended})
	logger.Info("actions submitted", slog.Int("appended", appended))
}

func (s *Server) GetSummary(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	caller, err := GetCallerFromContext(r)
	if err != nil {
		logger.Error("get summary error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	summary, err := s.ledgerService.RecomputeSummary(ctx, caller.ID)
	if err != nil {
		logger.Error("get summary error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while computing summary", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, summary)
	logger.Info("summary provided")
}

func (s *Server) GetProgress(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	caller, err := GetCallerFromContext(r)
	if err != nil {
		logger.Error("get progress error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"daily":        s.ledgerService.DailyProgress(caller.ID),
		"weekly":       s.ledgerService.WeeklyProgress(caller.ID),
		"team_monthly": s.ledgerService.TeamMonthlyProgress(),
	})
	logger.Info("progress provided")
}

func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	if _, err := GetCallerFromContext(r); err != nil {
		logger.Error("get report error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	query := r.URL.Query()
	from := query.Get("from")
	to := query.Get("to")
	if from == "" || to == "" {
		logger.Error("get report error: missing date range")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "from and to query params are required", nil)
		return
	}
	data := s.ledgerService.BuildReport(from, to, query.Get("user"))
	httputil.WriteJSONResponse(w, http.StatusOK, data)
	logger.Info("report built")
}

func (s *Server) EmailReport(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	if _, err := GetCallerFromContext(r); err != nil {
		logger.Error("email report error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req EmailReportRequest
	defer r.Body.Close()
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil || req.ReportData == nil {
		logger.Error("email report error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()
	result, err := s.reportService.Send(ctx, req.To, req.Format, req.ReportData)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrInvalidEmail):
			logger.Error("email report error: invalid address")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid email address", nil)
		case errors.Is(err, errorvalues.ErrUnsupportedFormat):
			logger.Error("email report error: unsupported format")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "format must be pdf or csv", nil)
		case errors.Is(err, errorvalues.ErrTransportNotConfigured):
			logger.Error("email report error: transport not configured")
			httputil.WriteErrorResponse(w, http.StatusServiceUnavailable, "email transport is not configured", nil)
		default:
			logger.Error("email report error: transport error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusBadGateway, "failed to send report", err)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, result)
	logger.Info("report emailed")
}
