package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	errorvalues "github.com/stadiumfit/scorecard/internal/error_values"
	"github.com/stadiumfit/scorecard/internal/repository"
	"github.com/stadiumfit/scorecard/pkg/entity"
	"golang.org/x/crypto/bcrypt"
)

// identityDocument is the persisted shape of the roster plus the single
// authenticated session.
type identityDocument struct {
	Users         []entity.User `json:"users"`
	SessionUserID string        `json:"session_user_id,omitempty"`
}

type IdentityService struct {
	mu   sync.Mutex
	repo repository.DocumentsRepositoryI
	doc  identityDocument
}

func NewIdentityService(repo repository.DocumentsRepositoryI) *IdentityService {
	if repo == nil {
		log.Fatal("on identity service provided nil repo")
	}
	return &IdentityService{
		repo: repo,
	}
}

// Hydrate loads the persisted roster, seeding the default users when the
// document was never saved.
func (is *IdentityService) Hydrate(ctx context.Context) error {
	is.mu.Lock()
	defer is.mu.Unlock()
	body, err := is.repo.Load(ctx, repository.DocIdentity)
	if err != nil {
		if errors.Is(err, errorvalues.ErrDocumentNotFound) {
			is.doc = identityDocument{Users: seedUsers()}
			return is.persistLocked(ctx)
		}
		return errors.New("hydrating identity error: " + err.Error())
	}
	if err = sonic.Unmarshal(body, &is.doc); err != nil {
		return errors.New("unmarshalling identity document error: " + err.Error())
	}
	return nil
}

func seedUsers() []entity.User {
	return []entity.User{
		{
			ID:       "1",
			Username: "clayton",
			PinHash:  mustHashPin("1234"),
			Name:     "Clayton White",
			Email:    "clayton@stadiumfitness.com",
			Role:     entity.RoleSalesRep,
		},
		{
			ID:       "2",
			Username: "admin",
			PinHash:  mustHashPin("0000"),
			Name:     "Admin User",
			Email:    "admin@stadiumfitness.com",
			Role:     entity.RoleAdmin,
		},
	}
}

func mustHashPin(pin string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("hashing seed pin error: " + err.Error())
	}
	return string(hash)
}

func (is *IdentityService) persistLocked(ctx context.Context) error {
	body, err := sonic.Marshal(is.doc)
	if err != nil {
		return errors.New("marshalling identity document error: " + err.Error())
	}
	if err = is.repo.Save(ctx, repository.DocIdentity, body); err != nil {
		return errors.New("repository saving error: " + err.Error())
	}
	return nil
}

func (is *IdentityService) findByUsernameLocked(username string) int {
	for i := range is.doc.Users {
		if strings.EqualFold(is.doc.Users[i].Username, username) {
			return i
		}
	}
	return -1
}

func (is *IdentityService) findByIDLocked(id string) int {
	for i := range is.doc.Users {
		if is.doc.Users[i].ID == id {
			return i
		}
	}
	return -1
}

func (is *IdentityService) Login(ctx context.Context, username, pin string) (*entity.User, error) {
	is.mu.Lock()
	defer is.mu.Unlock()
	idx := is.findByUsernameLocked(username)
	if idx == -1 {
		return nil, errorvalues.ErrWrongCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(is.doc.Users[idx].PinHash), []byte(pin)); err != nil {
		return nil, errorvalues.ErrWrongCredentials
	}
	is.doc.SessionUserID = is.doc.Users[idx].ID
	if err := is.persistLocked(ctx); err != nil {
		return nil, err
	}
	user := is.doc.Users[idx]
	return &user, nil
}

func (is *IdentityService) Logout(ctx context.Context) error {
	is.mu.Lock()
	defer is.mu.Unlock()
	is.doc.SessionUserID = ""
	return is.persistLocked(ctx)
}

func (is *IdentityService) GetByID(ctx context.Context, id string) (*entity.User, error) {
	is.mu.Lock()
	defer is.mu.Unlock()
	idx := is.findByIDLocked(id)
	if idx == -1 {
		return nil, errorvalues.ErrUserNotFound
	}
	user := is.doc.Users[idx]
	return &user, nil
}

func (is *IdentityService) ListUsers(ctx context.Context, caller Caller) ([]entity.User, error) {
	if caller.Role != entity.RoleAdmin {
		return nil, errorvalues.ErrForbidden
	}
	is.mu.Lock()
	defer is.mu.Unlock()
	users := make([]entity.User, len(is.doc.Users))
	copy(users, is.doc.Users)
	return users, nil
}

func (is *IdentityService) ChangePin(ctx context.Context, caller Caller, newPin string) error {
	if err := validate.Var(newPin, "required,pin"); err != nil {
		return errors.New("validation error: pin must be exactly 4 digits")
	}
	is.mu.Lock()
	defer is.mu.Unlock()
	if is.doc.SessionUserID == "" || is.doc.SessionUserID != caller.ID {
		return errorvalues.ErrNoSession
	}
	idx := is.findByIDLocked(caller.ID)
	if idx == -1 {
		return errorvalues.ErrUserNotFound
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPin), bcrypt.DefaultCost)
	if err != nil {
		return errors.New("hashing pin error: " + err.Error())
	}
	is.doc.Users[idx].PinHash = string(hash)
	return is.persistLocked(ctx)
}

func (is *IdentityService) AddUser(ctx context.Context, caller Caller, req *AddUserRequest) (*entity.User, error) {
	if caller.Role != entity.RoleAdmin {
		return nil, errorvalues.ErrForbidden
	}
	if err := validateStruct(*req); err != nil {
		return nil, err
	}
	is.mu.Lock()
	defer is.mu.Unlock()
	if is.findByUsernameLocked(req.Username) != -1 {
		return nil, errorvalues.ErrUserExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("hashing pin error: " + err.Error())
	}
	user := entity.User{
		ID:       uuid.NewString(),
		Username: req.Username,
		PinHash:  string(hash),
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
	}
	is.doc.Users = append(is.doc.Users, user)
	if err = is.persistLocked(ctx); err != nil {
		return nil, err
	}
	return &user, nil
}

func (is *IdentityService) UpdateUser(ctx context.Context, caller Caller, userID string, req *UpdateUserRequest) (*entity.User, error) {
	if caller.Role != entity.RoleAdmin {
		return nil, errorvalues.ErrForbidden
	}
	if err := validateStruct(*req); err != nil {
		return nil, err
	}
	is.mu.Lock()
	defer is.mu.Unlock()
	idx := is.findByIDLocked(userID)
	if idx == -1 {
		return nil, errorvalues.ErrUserNotFound
	}
	// Uniqueness scan excludes the record being edited
	if other := is.findByUsernameLocked(req.Username); other != -1 && other != idx {
		return nil, errorvalues.ErrUserExists
	}
	is.doc.Users[idx].Username = req.Username
	is.doc.Users[idx].Name = req.Name
	is.doc.Users[idx].Email = req.Email
	is.doc.Users[idx].Role = req.Role
	if err := is.persistLocked(ctx); err != nil {
		return nil, err
	}
	user := is.doc.Users[idx]
	return &user, nil
}

func (is *IdentityService) DeleteUser(ctx context.Context, caller Caller, userID string) error {
	if caller.Role != entity.RoleAdmin {
		return errorvalues.ErrForbidden
	}
	if caller.ID == userID {
		return errorvalues.ErrSelfDelete
	}
	is.mu.Lock()
	defer is.mu.Unlock()
	idx := is.findByIDLocked(userID)
	if idx == -1 {
		return errorvalues.ErrUserNotFound
	}
	is.doc.Users = append(is.doc.Users[:idx], is.doc.Users[idx+1:]...)
	if is.doc.SessionUserID == userID {
		is.doc.SessionUserID = ""
	}
	return is.persistLocked(ctx)
}

func (is *IdentityService) ResetUserPin(ctx context.Context, caller Caller, userID, newPin string) error {
	if caller.Role != entity.RoleAdmin {
		return errorvalues.ErrForbidden
	}
	if newPin == "" {
		newPin = "0000"
	}
	if err := validate.Var(newPin, "required,pin"); err != nil {
		return errors.New("validation error: pin must be exactly 4 digits")
	}
	is.mu.Lock()
	defer is.mu.Unlock()
	idx := is.findByIDLocked(userID)
	if idx == -1 {
		return errorvalues.ErrUserNotFound
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPin), bcrypt.DefaultCost)
	if err != nil {
		return errors.New("hashing pin error: " + err.Error())
	}
	is.doc.Users[idx].PinHash = string(hash)
	return is.persistLocked(ctx)
}

func validateStruct(req any) error {
	err := validate.Struct(req)
	if err != nil {
		if validationError, ok := err.(validator.ValidationErrors); ok {
			err = errors.New("validation error: ")
			for _, fieldErr := range validationError {
				err = errors.Join(err, fieldErr)
			}
			return err
		}
		return errors.New("validation unexpected error: " + err.Error())
	}
	return nil
}
