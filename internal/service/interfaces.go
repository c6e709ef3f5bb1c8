package service

import (
	"context"

	"github.com/stadiumfit/scorecard/pkg/entity"
)

// Caller identifies who invokes a store operation. Role checks happen inside
// the services, not in the UI layer.
type Caller struct {
	ID   string
	Role entity.Role
}

type AddUserRequest struct {
	Username string      `validate:"required,alphanum_underscore,min=3,max=50"`
	Pin      string      `validate:"required,pin"`
	Name     string      `validate:"required,max=100"`
	Email    string      `validate:"omitempty,email"`
	Role     entity.Role `validate:"required,oneof=sales_rep admin"`
}

type UpdateUserRequest struct {
	Username string      `validate:"required,alphanum_underscore,min=3,max=50"`
	Name     string      `validate:"required,max=100"`
	Email    string      `validate:"omitempty,email"`
	Role     entity.Role `validate:"required,oneof=sales_rep admin"`
}

type CategoryRequest struct {
	Name  string `validate:"required,max=100"`
	Icon  string `validate:"max=50"`
	Color string `validate:"max=20"`
}

type ActionRequest struct {
	Name        string `validate:"required,max=100"`
	Description string `validate:"max=500"`
	Points      int    `validate:"required,gt=0"`
	CategoryID  string `validate:"required"`
}

type TargetsRequest struct {
	Daily         int    `validate:"required,gt=0"`
	Weekly        int    `validate:"required,gt=0"`
	Monthly       int    `validate:"required,gt=0"`
	EffectiveDate string `validate:"required,datetime=2006-01-02"`
}

type IdentityServiceI interface {
	// Matches username case-insensitively and the PIN exactly. Never reveals
	// which of the two was wrong. Success replaces the current session.
	Login(ctx context.Context, username, pin string) (*entity.User, error)
	// Clears the session, keeps the roster
	Logout(ctx context.Context) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	ListUsers(ctx context.Context, caller Caller) ([]entity.User, error)
	// Requires the caller to own the current session
	ChangePin(ctx context.Context, caller Caller, newPin string) error
	AddUser(ctx context.Context, caller Caller, req *AddUserRequest) (*entity.User, error)
	UpdateUser(ctx context.Context, caller Caller, userID string, req *UpdateUserRequest) (*entity.User, error)
	// Self-delete is rejected
	DeleteUser(ctx context.Context, caller Caller, userID string) error
	// Empty newPin resets to "0000"
	ResetUserPin(ctx context.Context, caller Caller, userID, newPin string) error
}

// CatalogReader is the read-only view the ledger aggregator prices entries
// through. Absent ids degrade to zero, never to an error.
type CatalogReader interface {
	ResolveCategories() []entity.KpiCategory
	ResolveActions() []entity.KpiAction
	ActionsByCategory() map[string][]entity.KpiAction
	PointsFor(actionID string) int
	TargetsAsOf(date string) entity.Targets
}

type CatalogServiceI interface {
	CatalogReader

	// Copies the built-in catalog into the admin lists; no-op for lists that
	// already have members
	InitializeDefaults(ctx context.Context, caller Caller) error
	AddCategory(ctx context.Context, caller Caller, req *CategoryRequest) (*entity.KpiCategory, error)
	// Cascades the new snapshot into every action referencing the category
	UpdateCategory(ctx context.Context, caller Caller, categoryID string, req *CategoryRequest) (*entity.KpiCategory, error)
	// Fails with ErrCategoryInUse while any action references the category
	DeleteCategory(ctx context.Context, caller Caller, categoryID string) error

	AddAction(ctx context.Context, caller Caller, req *ActionRequest) (*entity.KpiAction, error)
	UpdateAction(ctx context.Context, caller Caller, actionID string, req *ActionRequest) (*entity.KpiAction, error)
	DeleteAction(ctx context.Context, caller Caller, actionID string) error

	// Appends to the target history
	UpdateTargets(ctx context.Context, caller Caller, req *TargetsRequest) error
	TargetHistory(ctx context.Context, caller Caller) ([]entity.Targets, error)
}

type LedgerServiceI interface {
	// qty <= 0 removes the action from the selection buffer
	SetQuantity(userID, actionID string, qty int)
	Selection(userID string) map[string]int
	ResetSelection(userID string)
	// Appends one entry per unit of selected quantity, clears the buffer and
	// recomputes the summary. Empty selection is a no-op
	Submit(ctx context.Context, userID string) (int, error)
	RecomputeSummary(ctx context.Context, userID string) (*entity.Summary, error)
	DailyProgress(userID string) entity.Progress
	WeeklyProgress(userID string) entity.Progress
	TeamMonthlyProgress() entity.Progress
	// Filters entries by inclusive date range; empty userID means all users
	BuildReport(from, to, userID string) *entity.ReportData
}
