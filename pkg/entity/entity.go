package entity

import "time"

type Role string

const (
	RoleSalesRep Role = "sales_rep"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	// Bcrypt hash of the 4-digit PIN. Never serialized to API clients.
	PinHash string `json:"pin_hash"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Role    Role   `json:"role"`
}

type KpiCategory struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// KpiAction embeds its category by value. The snapshot is taken when the
// category is assigned; category updates must cascade explicitly.
type KpiAction struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Points      int         `json:"points"`
	Category    KpiCategory `json:"category"`
}

// KpiEntry is one recorded occurrence of one action by one user on one day.
// Entries are append-only and never mutated.
type KpiEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ActionID  string    `json:"action_id"`
	Timestamp time.Time `json:"timestamp"`
	// Calendar day in the logging user's local time, YYYY-MM-DD.
	Date  string `json:"date"`
	Notes string `json:"notes,omitempty"`
}

type Targets struct {
	Daily         int    `json:"daily"`
	Weekly        int    `json:"weekly"`
	Monthly       int    `json:"monthly"`
	EffectiveDate string `json:"effective_date"`
}

type DailySummary struct {
	Date    string         `json:"date"`
	Total   int            `json:"total"`
	Actions map[string]int `json:"actions"`
}

type WeeklySummary struct {
	StartDate string         `json:"start_date"`
	EndDate   string         `json:"end_date"`
	Total     int            `json:"total"`
	Actions   map[string]int `json:"actions"`
}

type TeamMonthlySummary struct {
	Month string `json:"month"`
	Total int    `json:"total"`
}

type Summary struct {
	Daily       DailySummary       `json:"daily"`
	Weekly      WeeklySummary      `json:"weekly"`
	TeamMonthly TeamMonthlySummary `json:"team_monthly"`
}

type Progress struct {
	Current    int `json:"current"`
	Target     int `json:"target"`
	Percentage int `json:"percentage"`
}

type UserReportStats struct {
	Entries int `json:"entries"`
	Points  int `json:"points"`
}

type ReportEntry struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	ActionID string `json:"action_id"`
	Date     string `json:"date"`
	Notes    string `json:"notes,omitempty"`
}

type ReportData struct {
	DateRange       string                     `json:"date_range"`
	TotalEntries    int                        `json:"total_entries"`
	TotalPoints     int                        `json:"total_points"`
	ActionBreakdown map[string]int             `json:"action_breakdown"`
	UserBreakdown   map[string]UserReportStats `json:"user_breakdown"`
	FilteredEntries []ReportEntry              `json:"filtered_entries"`
}
