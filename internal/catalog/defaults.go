// Package catalog holds the built-in KPI catalog used whenever the admin
// catalog is empty.
package catalog

import "github.com/stadiumfit/scorecard/pkg/entity"

const (
	DefaultDailyTarget       = 40
	DefaultWeeklyTarget      = 120
	DefaultTeamMonthlyTarget = 1000
)

var defaultCategories = []entity.KpiCategory{
	{
		ID:    "lead_generation",
		Name:  "Lead Generation & Conversion",
		Icon:  "user-plus",
		Color: "#4DA6FF",
	},
	{
		ID:    "member_retention",
		Name:  "Member Retention / Happiness Maintenance",
		Icon:  "heart",
		Color: "#4DA6FF",
	},
	{
		ID:    "cancellation_mitigation",
		Name:  "Cancellation Mitigation & Renewals",
		Icon:  "refresh-cw",
		Color: "#4DA6FF",
	},
}

var defaultActions = []entity.KpiAction{
	{
		ID:          "new_lead",
		Name:        "New Lead Entered",
		Description: "Any new contact manually added to GymSales. Must be a valid contact.",
		Points:      1,
		Category:    defaultCategories[0],
	},
	{
		ID:          "prospect_engaged",
		Name:        "Prospect Engaged",
		Description: "Initial contact with a prospect that shows interest.",
		Points:      4,
		Category:    defaultCategories[0],
	},
	{
		ID:          "converted_to_member",
		Name:        "Converted to Member",
		Description: "Prospect successfully signs up for membership.",
		Points:      10,
		Category:    defaultCategories[0],
	},
	{
		ID:          "checkin_call",
		Name:        "Check-in Call",
		Description: "Regular check-in with existing members.",
		Points:      2,
		Category:    defaultCategories[1],
	},
	{
		ID:          "successful_reengagement",
		Name:        "Successful Re-engagement",
		Description: "Re-engaging with a member who hasn't visited recently.",
		Points:      8,
		Category:    defaultCategories[1],
	},
	{
		ID:          "renewal_before_expiry",
		Name:        "Renewal Before Expiry",
		Description: "Member renews before their membership expires.",
		Points:      6,
		Category:    defaultCategories[2],
	},
	{
		ID:          "upsell_renewal",
		Name:        "Upsell Renewal",
		Description: "Member upgrades their membership during renewal.",
		Points:      8,
		Category:    defaultCategories[2],
	},
	{
		ID:          "cancellation_mitigated",
		Name:        "Cancellation Mitigated",
		Description: "Successfully prevented a member from cancelling.",
		Points:      10,
		Category:    defaultCategories[2],
	},
	{
		ID:          "transfer_executed",
		Name:        "Transfer Executed",
		Description: "Successfully transferred a membership to another person.",
		Points:      10,
		Category:    defaultCategories[2],
	},
	{
		ID:          "exit_survey_logged",
		Name:        "Exit Survey Logged",
		Description: "Completed exit survey for a cancelled membership.",
		Points:      2,
		Category:    defaultCategories[2],
	},
}

// DefaultCategories returns a fresh copy so callers can't mutate the built-ins.
func DefaultCategories() []entity.KpiCategory {
	out := make([]entity.KpiCategory, len(defaultCategories))
	copy(out, defaultCategories)
	return out
}

func DefaultActions() []entity.KpiAction {
	out := make([]entity.KpiAction, len(defaultActions))
	copy(out, defaultActions)
	return out
}

func DefaultTargets() entity.Targets {
	return entity.Targets{
		Daily:   DefaultDailyTarget,
		Weekly:  DefaultWeeklyTarget,
		Monthly: DefaultTeamMonthlyTarget,
	}
}
