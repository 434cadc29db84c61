package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JCCG-code/tripshot-backend/internal/core/domain"
	"github.com/JCCG-code/tripshot-backend/internal/core/port"
	"github.com/JCCG-code/tripshot-backend/internal/repository"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

const identitiesTable = "social.identities"

var identityColumns = []string{
	"id",
	"handle",
	"email",
	"password_hash",
	"profile_picture",
	"bio",
	"roles",
	"created_at",
	"updated_at",
}

// IdentityRepository implements port.IdentityRepository using PostgreSQL.
type IdentityRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewIdentityRepository constructs a repository backed by any executor that
// satisfies pgExecutor (a pool, a transaction, or a mock).
func NewIdentityRepository(exec pgExecutor) *IdentityRepository {
	return &IdentityRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new identity row.
func (r *IdentityRepository) Create(ctx context.Context, identity domain.Identity) error {
	stmt, args, err := r.builder.Insert(identitiesTable).
		Columns(identityColumns...).
		Values(
			identity.ID,
			identity.Handle,
			identity.Email,
			identity.PasswordHash,
			identity.ProfilePicture,
			identity.Bio,
			identity.Roles,
			identity.CreatedAt,
			identity.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert identity sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert identity: %w", err)
	}

	return nil
}

// GetByID retrieves an identity by its store-assigned identifier.
func (r *IdentityRepository) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	return r.getByColumn(ctx, "id", id)
}

// GetByHandle retrieves an identity by its unique handle.
func (r *IdentityRepository) GetByHandle(ctx context.Context, handle string) (*domain.Identity, error) {
	return r.getByColumn(ctx, "handle", handle)
}

// GetByEmail retrieves an identity by its unique email address.
func (r *IdentityRepository) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	return r.getByColumn(ctx, "email", email)
}

func (r *IdentityRepository) getByColumn(ctx context.Context, column, value string) (*domain.Identity, error) {
	stmt, args, err := r.builder.
		Select(identityColumns...).
		From(identitiesTable).
		Where(squirrel.Eq{column: value}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select identity sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var identity domain.Identity
	if err := row.Scan(
		&identity.ID,
		&identity.Handle,
		&identity.Email,
		&identity.PasswordHash,
		&identity.ProfilePicture,
		&identity.Bio,
		&identity.Roles,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan identity: %w", err)
	}

	return &identity, nil
}

// ExistsByHandleOrEmail reports whether the handle or email is already
// claimed. Registration uses it as its combined conflict check; the unique
// indexes remain the authoritative guard against races.
func (r *IdentityRepository) ExistsByHandleOrEmail(ctx context.Context, handle, email string) (bool, error) {
	stmt, args, err := r.builder.
		Select("1").
		From(identitiesTable).
		Where(squirrel.Or{
			squirrel.Eq{"handle": handle},
			squirrel.Eq{"email": email},
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists identity sql: %w", err)
	}

	var one int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("scan exists identity: %w", err)
	}

	return true, nil
}

// UpdateProfile persists handle, email, bio, and profile picture changes.
func (r *IdentityRepository) UpdateProfile(ctx context.Context, identity domain.Identity) error {
	stmt, args, err := r.builder.Update(identitiesTable).
		Set("handle", identity.Handle).
		Set("email", identity.Email).
		Set("profile_picture", identity.ProfilePicture).
		Set("bio", identity.Bio).
		Set("updated_at", identity.UpdatedAt).
		Where(squirrel.Eq{"id": identity.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update identity sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("update identity: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *IdentityRepository) UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error {
	stmt, args, err := r.builder.Update(identitiesTable).
		Set("password_hash", passwordHash).
		Set("updated_at", changedAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update password sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes the identity together with every follow edge touching it,
// in a single transaction, so no dangling edge can survive the record.
func (r *IdentityRepository) Delete(ctx context.Context, id string) (int, error) {
	tx, err := r.exec.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin delete identity: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	edgeStmt, edgeArgs, err := r.builder.Delete(edgesTable).
		Where(squirrel.Or{
			squirrel.Eq{"follower_id": id},
			squirrel.Eq{"followee_id": id},
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete edges sql: %w", err)
	}

	edgeTag, err := tx.Exec(ctx, edgeStmt, edgeArgs...)
	if err != nil {
		return 0, fmt.Errorf("delete edges: %w", err)
	}

	idStmt, idArgs, err := r.builder.Delete(identitiesTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete identity sql: %w", err)
	}

	idTag, err := tx.Exec(ctx, idStmt, idArgs...)
	if err != nil {
		return 0, fmt.Errorf("delete identity: %w", err)
	}
	if idTag.RowsAffected() == 0 {
		return 0, repository.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit delete identity: %w", err)
	}

	return int(edgeTag.RowsAffected()), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}

var _ port.IdentityRepository = (*IdentityRepository)(nil)
