package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/stadiumfit/scorecard/internal/catalog"
	errorvalues "github.com/stadiumfit/scorecard/internal/error_values"
	"github.com/stadiumfit/scorecard/internal/repository"
	"github.com/stadiumfit/scorecard/pkg/entity"
)

// catalogDocument is the persisted admin catalog. Empty category/action lists
// mean "use the built-ins"; the fallback is all-or-nothing per list, never a
// merge.
type catalogDocument struct {
	Categories    []entity.KpiCategory `json:"categories"`
	Actions       []entity.KpiAction   `json:"actions"`
	TargetHistory []entity.Targets     `json:"target_history"`
}

type CatalogService struct {
	mu   sync.Mutex
	repo repository.DocumentsRepositoryI
	doc  catalogDocument
	now  func() time.Time
}

func NewCatalogService(repo repository.DocumentsRepositoryI) *CatalogService {
	if repo == nil {
		log.Fatal("on catalog service provided nil repo")
	}
	return &CatalogService{
		repo: repo,
		now:  time.Now,
	}
}

func (cs *CatalogService) Hydrate(ctx context.Context) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	body, err := cs.repo.Load(ctx, repository.DocCatalog)
	if err != nil {
		if errors.Is(err, errorvalues.ErrDocumentNotFound) {
			cs.doc = catalogDocument{}
			return cs.persistLocked(ctx)
		}
		return errors.New("hydrating catalog error: " + err.Error())
	}
	if err = sonic.Unmarshal(body, &cs.doc); err != nil {
		return errors.New("unmarshalling catalog document error: " + err.Error())
	}
	return nil
}

func (cs *CatalogService) persistLocked(ctx context.Context) error {
	body, err := sonic.Marshal(cs.doc)
	if err != nil {
		return errors.New("marshalling catalog document error: " + err.Error())
	}
	if err = cs.repo.Save(ctx, repository.DocCatalog, body); err != nil {
		return errors.New("repository saving error: " + err.Error())
	}
	return nil
}

// randSuffix mirrors the 7-char random suffixes the original ids carried.
func randSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:7]
}

func newCatalogID(kind string, now time.Time) string {
	return fmt.Sprintf("%s_%d_%s", kind, now.UnixMilli(), randSuffix())
}

// ResolveCategories returns the admin list verbatim when non-empty, otherwise
// the built-in defaults.
func (cs *CatalogService) ResolveCategories() []entity.KpiCategory {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.resolveCategoriesLocked()
}

func (cs *CatalogService) resolveCategoriesLocked() []entity.KpiCategory {
	if len(cs.doc.Categories) > 0 {
		out := make([]entity.KpiCategory, len(cs.doc.Categories))
		copy(out, cs.doc.Categories)
		return out
	}
	return catalog.DefaultCategories()
}

func (cs *CatalogService) ResolveActions() []entity.KpiAction {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.resolveActionsLocked()
}

func (cs *CatalogService) resolveActionsLocked() []entity.KpiAction {
	if len(cs.doc.Actions) > 0 {
		out := make([]entity.KpiAction, len(cs.doc.Actions))
		copy(out, cs.doc.Actions)
		return out
	}
	return catalog.DefaultActions()
}

// ActionsByCategory groups resolved actions by resolved category id. Categories
// without actions are present as empty groups.
func (cs *CatalogService) ActionsByCategory() map[string][]entity.KpiAction {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	groups := make(map[string][]entity.KpiAction)
	for _, c := range cs.resolveCategoriesLocked() {
		groups[c.ID] = []entity.KpiAction{}
	}
	for _, a := range cs.resolveActionsLocked() {
		if _, ok := groups[a.Category.ID]; ok {
			groups[a.Category.ID] = append(groups[a.Category.ID], a)
		}
	}
	return groups
}

// PointsFor returns 0 for unknown action ids, it never errors. Deleted actions
// silently price at zero.
func (cs *CatalogService) PointsFor(actionID string) int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	for _, a := range cs.resolveActionsLocked() {
		if a.ID == actionID {
			return a.Points
		}
	}
	return 0
}

// TargetsAsOf returns the latest history record effective on or before date.
// Missing or non-positive fields fall back to the built-in defaults, so the
// result is always safe to divide by.
func (cs *CatalogService) TargetsAsOf(date string) entity.Targets {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	result := entity.Targets{}
	found := false
	for _, t := range cs.doc.TargetHistory {
		if t.EffectiveDate <= date && (!found || t.EffectiveDate >= result.EffectiveDate) {
			result = t
			found = true
		}
	}
	if result.Daily <= 0 {
		result.Daily = catalog.DefaultDailyTarget
	}
	if result.Weekly <= 0 {
		result.Weekly = catalog.DefaultWeeklyTarget
	}
	if result.Monthly <= 0 {
		result.Monthly = catalog.DefaultTeamMonthlyTarget
	}
	return result
}

func (cs *CatalogService) InitializeDefaults(ctx context.Context, caller Caller) error {
	if caller.Role != entity.RoleAdmin {
		return errorvalues.ErrForbidden
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	changed := false
	if len(cs.doc.Categories) == 0 {
		cs.doc.Categories = catalog.DefaultCategories()
		changed = true
	}
	if len(cs.doc.Actions) == 0 {
		cs.doc.Actions = catalog.DefaultActions()
		changed = true
	}
	if !changed {
		return nil
	}
	return cs.persistLocked(ctx)
}

func (cs *CatalogService) AddCategory(ctx context.Context, caller Caller, req *CategoryRequest) (*entity.KpiCategory, error) {
	if caller.Role != entity.RoleAdmin {
		return nil, errorvalues.ErrForbidden
	}
	if err := validateStruct(*req); err != nil {
		return nil, err
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	category := entity.KpiCategory{
		ID:    newCatalogID("category", cs.now()),
		Name:  req.Name,
		Icon:  req.Icon,
		Color: req.Color,
	}
	cs.doc.Categories = append(cs.doc.Categories, category)
	if err := cs.persistLocked(ctx); err != nil {
		return nil, err
	}
	return &category, nil
}

// UpdateCategory rewrites the embedded snapshot on every action referencing the
// category, so consumers never see stale copies.
func (cs *CatalogService) UpdateCategory(ctx context.Context, caller Caller, categoryID string, req *CategoryRequest) (*entity.KpiCategory, error) {
	if caller.Role != entity.RoleAdmin {
		return nil, errorvalues.ErrForbidden
	}
	if err := validateStruct(*req); err != nil {
		return nil, err
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	idx := -1
	for i := range cs.doc.Categories {
		if cs.doc.Categories[i].ID == categoryID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, errorvalues.ErrCategoryNotFound
	}
	cs.doc.Categories[idx].Name = req.Name
	cs.doc.Categories[idx].Icon = req.Icon
	cs.doc.Categories[idx].Color = req.Color
	for i := range cs.doc.Actions {
		if cs.doc.Actions[i].Category.ID == categoryID {
			cs.doc.Actions[i].Category = cs.doc.Categories[idx]
		}
	}
	if err := cs.persistLocked(ctx); err != nil {
		return nil, err
	}
	category := cs.doc.Categories[idx]
	return &category, nil
}

func (cs *CatalogService) DeleteCategory(ctx context.Context, caller Caller, categoryID string) error {
	if caller.Role != entity.RoleAdmin {
		return errorvalues.ErrForbidden
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	idx := -1
	for i := range cs.doc.Categories {
		if cs.doc.Categories[i].ID == categoryID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return errorvalues.ErrCategoryNotFound
	}
	for _, a := range cs.doc.Actions {
		if a.Category.ID == categoryID {
			return errorvalues.ErrCategoryInUse
		}
	}
	cs.doc.Categories = append(cs.doc.Categories[:idx], cs.doc.Categories[idx+1:]...)
	return cs.persistLocked(ctx)
}

func (cs *CatalogService) AddAction(ctx context.Context, caller Caller, req *ActionRequest) (*entity.KpiAction, error) {
	if caller.Role != entity.RoleAdmin {
		return nil, errorvalues.ErrForbidden
	}
	if err := validateStruct(*req); err != nil {
		return nil, err
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	category, err := cs.categorySnapshotLocked(req.CategoryID)
	if err != nil {
		return nil, err
	}
	action := entity.KpiAction{
		ID:          newCatalogID("action", cs.now()),
		Name:        req.Name,
		Description: req.Description,
		Points:      req.Points,
		Category:    category,
	}
	cs.doc.Actions = append(cs.doc.Actions, action)
	if err := cs.persistLocked(ctx); err != nil {
		return nil, err
	}
	return &action, nil
}

// categorySnapshotLocked copies the category by value at assignment time.
func (cs *CatalogService) categorySnapshotLocked(categoryID string) (entity.KpiCategory, error) {
	for _, c := range cs.resolveCategoriesLocked() {
		if c.ID == categoryID {
			return c, nil
		}
	}
	return entity.KpiCategory{}, errorvalues.ErrCategoryNotFound
}

func (cs *CatalogService) UpdateAction(ctx context.Context, caller Caller, actionID string, req *ActionRequest) (*entity.KpiAction, error) {
	if caller.Role != entity.RoleAdmin {
		return nil, errorvalues.ErrForbidden
	}
	if err := validateStruct(*req); err != nil {
		return nil, err
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	idx := -1
	for i := range cs.doc.Actions {
		if cs.doc.Actions[i].ID == actionID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, errorvalues.ErrActionNotFound
	}
	category, err := cs.categorySnapshotLocked(req.CategoryID)
	if err != nil {
		return nil, err
	}
	cs.doc.Actions[idx].Name = req.Name
	cs.doc.Actions[idx].Description = req.Description
	cs.doc.Actions[idx].Points = req.Points
	cs.doc.Actions[idx].Category = category
	if err := cs.persistLocked(ctx); err != nil {
		return nil, err
	}
	action := cs.doc.Actions[idx]
	return &action, nil
}

func (cs *CatalogService) DeleteAction(ctx context.Context, caller Caller, actionID string) error {
	if caller.Role != entity.RoleAdmin {
		return errorvalues.ErrForbidden
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	idx := -1
	for i := range cs.doc.Actions {
		if cs.doc.Actions[i].ID == actionID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return errorvalues.ErrActionNotFound
	}
	cs.doc.Actions = append(cs.doc.Actions[:idx], cs.doc.Actions[idx+1:]...)
	return cs.persistLocked(ctx)
}

// UpdateTargets appends to the history, it never rewrites past records.
func (cs *CatalogService) UpdateTargets(ctx context.Context, caller Caller, req *TargetsRequest) error {
	if caller.Role != entity.RoleAdmin {
		return errorvalues.ErrForbidden
	}
	if err := validateStruct(*req); err != nil {
		return err
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.doc.TargetHistory = append(cs.doc.TargetHistory, entity.Targets{
		Daily:         req.Daily,
		Weekly:        req.Weekly,
		Monthly:       req.Monthly,
		EffectiveDate: req.EffectiveDate,
	})
	return cs.persistLocked(ctx)
}

func (cs *CatalogService) TargetHistory(ctx context.Context, caller Caller) ([]entity.Targets, error) {
	if caller.Role != entity.RoleAdmin {
		return nil, errorvalues.ErrForbidden
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	history := make([]entity.Targets, len(cs.doc.TargetHistory))
	copy(history, cs.doc.TargetHistory)
	return history, nil
}
