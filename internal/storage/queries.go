package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"churchledger/internal/core"
)

// Queries runs the application's SQL against one Querier.
type Queries struct {
	db     Querier
	driver string
}

func (q *Queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.db.ExecContext(ctx, rebind(q.driver, query), args...)
}

func (q *Queries) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return q.db.QueryContext(ctx, rebind(q.driver, query), args...)
}

func (q *Queries) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.db.QueryRowContext(ctx, rebind(q.driver, query), args...)
}

// insert runs an INSERT ... RETURNING id statement.
func (q *Queries) insert(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := q.queryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (q *Queries) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := q.queryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (q *Queries) sum(ctx context.Context, query string, args ...any) (float64, error) {
	var total sql.NullFloat64
	if err := q.queryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total.Float64, nil
}

func affected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

const userColumns = `id, name, email, password, role, active`

func scanUser(row interface{ Scan(...any) error }) (core.User, error) {
	var (
		u      core.User
		role   string
		active int64
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &active); err != nil {
		return core.User{}, err
	}
	u.Role = core.Role(role)
	u.Active = active != 0
	return u, nil
}

const createUser = `INSERT INTO users (name, email, password, role, active) VALUES (?, ?, ?, ?, ?) RETURNING id`

// CreateUser inserts u and returns its id. A taken email yields ErrDuplicate.
func (q *Queries) CreateUser(ctx context.Context, u core.User) (int64, error) {
	id, err := q.insert(ctx, createUser, u.Name, u.Email, u.PasswordHash, string(u.Role), boolInt(u.Active))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("create user %s: %w", u.Email, ErrDuplicate)
		}
		return 0, fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

const getUser = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

func (q *Queries) GetUser(ctx context.Context, id int64) (core.User, error) {
	u, err := scanUser(q.queryRow(ctx, getUser, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

const getUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = ?`

// GetUserByEmail matches the address case-insensitively.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	u, err := scanUser(q.queryRow(ctx, getUserByEmail, core.NormalizeEmail(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

const listUsers = `SELECT ` + userColumns + ` FROM users ORDER BY name, id`

func (q *Queries) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := q.query(ctx, listUsers)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []core.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

const updateUser = `UPDATE users SET name = ?, email = ?, role = ?, active = ? WHERE id = ?`

const updateUserPassword = `UPDATE users SET password = ? WHERE id = ?`

// UpdateUser rewrites profile fields. The password hash is replaced only
// when u.PasswordHash is non-empty.
func (q *Queries) UpdateUser(ctx context.Context, u core.User) error {
	res, err := q.exec(ctx, updateUser, u.Name, u.Email, string(u.Role), boolInt(u.Active), u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update user %s: %w", u.Email, ErrDuplicate)
		}
		return fmt.Errorf("update user %d: %w", u.ID, err)
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	if u.PasswordHash != "" {
		if _, err := q.exec(ctx, updateUserPassword, u.PasswordHash, u.ID); err != nil {
			return fmt.Errorf("update password for user %d: %w", u.ID, err)
		}
	}
	return nil
}

const deleteUser = `DELETE FROM users WHERE id = ?`

func (q *Queries) DeleteUser(ctx context.Context, id int64) error {
	res, err := q.exec(ctx, deleteUser, id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const promoteUser = `UPDATE users SET role = 'admin', active = 1 WHERE LOWER(email) = ?`

// PromoteUser makes the account an active admin.
func (q *Queries) PromoteUser(ctx context.Context, email string) error {
	res, err := q.exec(ctx, promoteUser, core.NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("promote user: %w", err)
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const countUsers = `SELECT COUNT(*) FROM users`

func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	n, err := q.count(ctx, countUsers)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

const memberColumns = `id, name, email, phone, joined_date, active`

const listMembers = `SELECT ` + memberColumns + ` FROM members ORDER BY name, id`

func (q *Queries) ListMembers(ctx context.Context) ([]core.Member, error) {
	rows, err := q.query(ctx, listMembers)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []core.Member
	for rows.Next() {
		var (
			m      core.Member
			active int64
		)
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.JoinedDate, &active); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		m.Active = active != 0
		members = append(members, m)
	}
	return members, rows.Err()
}

const createMember = `INSERT INTO members (name, email, phone, joined_date, active) VALUES (?, ?, ?, ?, ?) RETURNING id`

func (q *Queries) CreateMember(ctx context.Context, m core.Member) (int64, error) {
	id, err := q.insert(ctx, createMember, m.Name, m.Email, m.Phone, m.JoinedDate, boolInt(m.Active))
	if err != nil {
		return 0, fmt.Errorf("create member: %w", err)
	}
	return id, nil
}

const toggleMember = `UPDATE members SET active = 1 - active WHERE id = ?`

// ToggleMember flips the member's active flag.
func (q *Queries) ToggleMember(ctx context.Context, id int64) error {
	res, err := q.exec(ctx, toggleMember, id)
	if err != nil {
		return fmt.Errorf("toggle member %d: %w", id, err)
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const countMembers = `SELECT COUNT(*) FROM members`

func (q *Queries) CountMembers(ctx context.Context) (int64, error) {
	n, err := q.count(ctx, countMembers)
	if err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return n, nil
}
