package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	errorvalues "github.com/stadiumfit/scorecard/internal/error_values"
	"github.com/stadiumfit/scorecard/internal/repository"
	"github.com/stadiumfit/scorecard/pkg/entity"
)

const dateLayout = "2006-01-02"

// ledgerDocument persists the append-only entry log and the last computed
// summary. The selection buffer is transient and deliberately not part of it.
type ledgerDocument struct {
	Entries []entity.KpiEntry `json:"entries"`
	Summary entity.Summary    `json:"summary"`
}

type LedgerService struct {
	mu      sync.Mutex
	repo    repository.DocumentsRepositoryI
	catalog CatalogReader
	doc     ledgerDocument
	// userID -> actionID -> staged quantity
	selections map[string]map[string]int
	now        func() time.Time
}

func NewLedgerService(repo repository.DocumentsRepositoryI, catalog CatalogReader) *LedgerService {
	if repo == nil || catalog == nil {
		log.Fatal("on ledger service provided nil dependencies")
	}
	return &LedgerService{
		repo:       repo,
		catalog:    catalog,
		selections: make(map[string]map[string]int),
		now:        time.Now,
	}
}

// NewLedgerServiceWithClock lets tests pin "today".
func NewLedgerServiceWithClock(repo repository.DocumentsRepositoryI, catalog CatalogReader, clock func() time.Time) *LedgerService {
	ls := NewLedgerService(repo, catalog)
	ls.now = clock
	return ls
}

func (ls *LedgerService) Hydrate(ctx context.Context) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	body, err := ls.repo.Load(ctx, repository.DocLedger)
	if err != nil {
		if errors.Is(err, errorvalues.ErrDocumentNotFound) {
			ls.doc = ledgerDocument{Entries: []entity.KpiEntry{}}
			return ls.persistLocked(ctx)
		}
		return errors.New("hydrating ledger error: " + err.Error())
	}
	if err = sonic.Unmarshal(body, &ls.doc); err != nil {
		return errors.New("unmarshalling ledger document error: " + err.Error())
	}
	return nil
}

func (ls *LedgerService) persistLocked(ctx context.Context) error {
	body, err := sonic.Marshal(ls.doc)
	if err != nil {
		return errors.New("marshalling ledger document error: " + err.Error())
	}
	if err = ls.repo.Save(ctx, repository.DocLedger, body); err != nil {
		return errors.New("repository saving error: " + err.Error())
	}
	return nil
}

// WeekBounds computes the Monday-start week containing now. A Sunday belongs
// to the week begun six days earlier, not the upcoming one.
func WeekBounds(now time.Time) (string, string) {
	offset := int(now.Weekday()) - 1
	if offset < 0 {
		offset = 6
	}
	start := now.AddDate(0, 0, -offset)
	end := start.AddDate(0, 0, 6)
	return start.Format(dateLayout), end.Format(dateLayout)
}

func (ls *LedgerService) SetQuantity(userID, actionID string, qty int) {
	if userID == "" || actionID == "" {
		return
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	sel := ls.selections[userID]
	if qty <= 0 {
		delete(sel, actionID)
		if len(sel) == 0 {
			delete(ls.selections, userID)
		}
		return
	}
	if sel == nil {
		sel = make(map[string]int)
		ls.selections[userID] = sel
	}
	sel[actionID] = qty
}

func (ls *LedgerService) Selection(userID string) map[string]int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	out := make(map[string]int, len(ls.selections[userID]))
	for actionID, qty := range ls.selections[userID] {
		out[actionID] = qty
	}
	return out
}

func (ls *LedgerService) ResetSelection(userID string) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	delete(ls.selections, userID)
}

// Submit appends exactly qty entries per selected action, all stamped with the
// same instant and calendar day, then clears the buffer and recomputes the
// summary. Returns the number of appended entries.
func (ls *LedgerService) Submit(ctx context.Context, userID string) (int, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	sel := ls.selections[userID]
	if userID == "" || len(sel) == 0 {
		return 0, nil
	}
	now := ls.now()
	date := now.Format(dateLayout)
	appended := 0
	for actionID, qty := range sel {
		for i := 0; i < qty; i++ {
			ls.doc.Entries = append(ls.doc.Entries, entity.KpiEntry{
				ID:        fmt.Sprintf("%s-%d-%d-%s", actionID, now.UnixMilli(), i, randSuffix()),
				UserID:    userID,
				ActionID:  actionID,
				Timestamp: now,
				Date:      date,
			})
			appended++
		}
	}
	delete(ls.selections, userID)
	ls.doc.Summary = ls.calculateLocked(userID, now)
	if err := ls.persistLocked(ctx); err != nil {
		return 0, err
	}
	return appended, nil
}

// calculateLocked recomputes the summary from scratch. Entries are priced at
// the action's current point value; repricing is retroactive when an admin
// edits points, and deleted actions count zero.
func (ls *LedgerService) calculateLocked(userID string, now time.Time) entity.Summary {
	today := now.Format(dateLayout)
	weekStart, weekEnd := WeekBounds(now)
	month := now.Format("2006-01")

	summary := entity.Summary{
		Daily:       entity.DailySummary{Date: today, Actions: map[string]int{}},
		Weekly:      entity.WeeklySummary{StartDate: weekStart, EndDate: weekEnd, Actions: map[string]int{}},
		TeamMonthly: entity.TeamMonthlySummary{Month: month},
	}
	for _, e := range ls.doc.Entries {
		points := ls.catalog.PointsFor(e.ActionID)
		if e.UserID == userID {
			if e.Date == today {
				summary.Daily.Actions[e.ActionID]++
				summary.Daily.Total += points
			}
			// Lexical compare is valid on fixed-width ISO dates
			if e.Date >= weekStart && e.Date <= weekEnd {
				summary.Weekly.Actions[e.ActionID]++
				summary.Weekly.Total += points
			}
		}
		// Team-monthly spans all users
		if strings.HasPrefix(e.Date, month) {
			summary.TeamMonthly.Total += points
		}
	}
	return summary
}

func (ls *LedgerService) RecomputeSummary(ctx context.Context, userID string) (*entity.Summary, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.doc.Summary = ls.calculateLocked(userID, ls.now())
	if err := ls.persistLocked(ctx); err != nil {
		return nil, err
	}
	summary := ls.doc.Summary
	return &summary, nil
}

func progressOf(current, target int) entity.Progress {
	p := entity.Progress{Current: current, Target: target}
	if target <= 0 {
		return p
	}
	pct := int(math.Round(float64(current) / float64(target) * 100))
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	p.Percentage = pct
	return p
}

func (ls *LedgerService) DailyProgress(userID string) entity.Progress {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	s := ls.calculateLocked(userID, ls.now())
	t := ls.catalog.TargetsAsOf(s.Daily.Date)
	return progressOf(s.Daily.Total, t.Daily)
}

func (ls *LedgerService) WeeklyProgress(userID string) entity.Progress {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	s := ls.calculateLocked(userID, ls.now())
	t := ls.catalog.TargetsAsOf(s.Daily.Date)
	return progressOf(s.Weekly.Total, t.Weekly)
}

func (ls *LedgerService) TeamMonthlyProgress() entity.Progress {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	s := ls.calculateLocked("", ls.now())
	t := ls.catalog.TargetsAsOf(s.Daily.Date)
	return progressOf(s.TeamMonthly.Total, t.Monthly)
}

// BuildReport shapes the pre-aggregated payload the report formatter expects.
// Empty userID includes the whole team.
func (ls *LedgerService) BuildReport(from, to, userID string) *entity.ReportData {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	data := &entity.ReportData{
		DateRange:       from + " to " + to,
		ActionBreakdown: map[string]int{},
		UserBreakdown:   map[string]entity.UserReportStats{},
		FilteredEntries: []entity.ReportEntry{},
	}
	for _, e := range ls.doc.Entries {
		if e.Date < from || e.Date > to {
			continue
		}
		if userID != "" && e.UserID != userID {
			continue
		}
		points := ls.catalog.PointsFor(e.ActionID)
		data.TotalEntries++
		data.TotalPoints += points
		data.ActionBreakdown[e.ActionID]++
		stats := data.UserBreakdown[e.UserID]
		stats.Entries++
		stats.Points += points
		data.UserBreakdown[e.UserID] = stats
		data.FilteredEntries = append(data.FilteredEntries, entity.ReportEntry{
			ID:       e.ID,
			UserID:   e.UserID,
			ActionID: e.ActionID,
			Date:     e.Date,
			Notes:    e.Notes,
		})
	}
	return data
}
