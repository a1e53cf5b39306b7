package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"churchledger/internal/auth"
	"churchledger/internal/core"
	"churchledger/internal/log"
	"churchledger/internal/metrics"
	"churchledger/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already exists")
	ErrUserNotFound       = auth.ErrUserNotFound
)

// UserInput carries the raw form values of a user account.
type UserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Active   bool
}

// DefaultAccount is an account created by SeedDefaults.
type DefaultAccount struct {
	Name     string
	Email    string
	Role     core.Role
	Password string
}

// DefaultAccounts returns the four bootstrap accounts, one per role.
func DefaultAccounts(adminPassword, userPassword string) []DefaultAccount {
	return []DefaultAccount{
		{Name: "Admin", Email: "admin@church.com", Role: core.RoleAdmin, Password: adminPassword},
		{Name: "John Usher", Email: "usher@church.com", Role: core.RoleUsher, Password: userPassword},
		{Name: "Mary Finance", Email: "finance@church.com", Role: core.RoleFinance, Password: userPassword},
		{Name: "Pastor Paul", Email: "pastor@church.com", Role: core.RolePastor, Password: userPassword},
	}
}

type UserService struct {
	store   *storage.Store
	hasher  *auth.Hasher
	metrics *metrics.Metrics
}

func NewUserService(store *storage.Store, hasher *auth.Hasher, m *metrics.Metrics) *UserService {
	return &UserService{store: store, hasher: hasher, metrics: m}
}

// Authenticate returns the active user whose email and password match.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (core.User, error) {
	var u core.User
	err := s.store.Session(ctx, func(q *storage.Queries) error {
		var err error
		u, err = q.GetUserByEmail(ctx, email)
		return err
	})
	if errors.Is(err, storage.ErrNotFound) {
		return core.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return core.User{}, fmt.Errorf("authenticate: %w", err)
	}
	if !u.Active || !s.hasher.Verify(u.PasswordHash, password) {
		return core.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// LoadUser implements auth.UserLoader.
func (s *UserService) LoadUser(ctx context.Context, id int64) (core.User, error) {
	var u core.User
	err := s.store.Session(ctx, func(q *storage.Queries) error {
		var err error
		u, err = q.GetUser(ctx, id)
		return err
	})
	if errors.Is(err, storage.ErrNotFound) {
		return core.User{}, ErrUserNotFound
	}
	return u, err
}

func (s *UserService) List(ctx context.Context) ([]core.User, error) {
	var users []core.User
	err := s.store.Session(ctx, func(q *storage.Queries) error {
		var err error
		users, err = q.ListUsers(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) fromInput(in UserInput) (core.User, error) {
	role, _ := core.ParseRole(in.Role)
	u := core.User{
		Name:   strings.TrimSpace(in.Name),
		Email:  core.NormalizeEmail(in.Email),
		Role:   role,
		Active: in.Active,
	}
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}
	if in.Password != "" {
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return core.User{}, err
		}
		u.PasswordHash = hash
	}
	return u, nil
}

// Create adds an account. A blank password leaves the account unable to
// log in until one is set.
func (s *UserService) Create(ctx context.Context, in UserInput) (core.User, error) {
	u, err := s.fromInput(in)
	if err != nil {
		return core.User{}, err
	}
	err = s.store.Session(ctx, func(q *storage.Queries) error {
		id, err := q.CreateUser(ctx, u)
		u.ID = id
		return err
	})
	if errors.Is(err, storage.ErrDuplicate) {
		return core.User{}, ErrEmailExists
	}
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	s.metrics.EntryRecorded("user")
	log.FromContext(ctx).WithComponent(log.ComponentAuth).InfoContext(ctx, "User created",
		log.FieldUserID, u.ID, log.FieldRole, u.Role.String())
	return u, nil
}

// Update rewrites an account; a blank password keeps the current hash.
func (s *UserService) Update(ctx context.Context, id int64, in UserInput) (core.User, error) {
	u, err := s.fromInput(in)
	if err != nil {
		return core.User{}, err
	}
	u.ID = id
	err = s.store.Tx(ctx, func(q *storage.Queries) error {
		return q.UpdateUser(ctx, u)
	})
	switch {
	case errors.Is(err, storage.ErrDuplicate):
		return core.User{}, ErrEmailExists
	case errors.Is(err, storage.ErrNotFound):
		return core.User{}, ErrUserNotFound
	case err != nil:
		return core.User{}, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (core.User, error) {
	return s.LoadUser(ctx, id)
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	err := s.store.Session(ctx, func(q *storage.Queries) error {
		return q.DeleteUser(ctx, id)
	})
	if errors.Is(err, storage.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	log.FromContext(ctx).WithComponent(log.ComponentAuth).InfoContext(ctx, "User deleted", log.FieldUserID, id)
	return nil
}

// Promote makes the account with email an active admin.
func (s *UserService) Promote(ctx context.Context, email string) error {
	err := s.store.Session(ctx, func(q *storage.Queries) error {
		return q.PromoteUser(ctx, email)
	})
	if errors.Is(err, storage.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("promote user: %w", err)
	}
	return nil
}

// SeedDefaults creates each default account whose email is not yet taken
// and returns the emails it created.
func (s *UserService) SeedDefaults(ctx context.Context, accounts []DefaultAccount) ([]string, error) {
	var created []string
	err := s.store.Tx(ctx, func(q *storage.Queries) error {
		for _, a := range accounts {
			_, err := q.GetUserByEmail(ctx, a.Email)
			if err == nil {
				continue
			}
			if !errors.Is(err, storage.ErrNotFound) {
				return err
			}
			hash, err := s.hasher.Hash(a.Password)
			if err != nil {
				return err
			}
			u := core.User{Name: a.Name, Email: core.NormalizeEmail(a.Email), PasswordHash: hash, Role: a.Role, Active: true}
			if _, err := q.CreateUser(ctx, u); err != nil {
				return err
			}
			created = append(created, u.Email)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("seed default users: %w", err)
	}
	return created, nil
}
