package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/JCCG-code/tripshot-backend/internal/core/domain"
	"github.com/JCCG-code/tripshot-backend/internal/core/port"
	"github.com/JCCG-code/tripshot-backend/internal/repository"
)

const edgesTable = "social.follow_edges"

// GraphRepository implements port.GraphRepository using PostgreSQL. The
// follow edge is one row keyed by (follower_id, followee_id), so the
// membership check and the insertion are a single conditional statement and
// concurrent follows of the same pair cannot both succeed.
type GraphRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewGraphRepository constructs a GraphRepository.
func NewGraphRepository(exec pgExecutor) *GraphRepository {
	return &GraphRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateEdge inserts the follower -> followee edge if it is not already
// present. Zero affected rows means the edge existed.
func (r *GraphRepository) CreateEdge(ctx context.Context, followerID, followeeID string, at time.Time) error {
	stmt, args, err := r.builder.Insert(edgesTable).
		Columns("follower_id", "followee_id", "created_at").
		Values(followerID, followeeID, at).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert edge sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("insert edge: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrEdgeExists
	}

	return nil
}

// DeleteEdge removes the edge and reports whether a row was deleted.
func (r *GraphRepository) DeleteEdge(ctx context.Context, followerID, followeeID string) (bool, error) {
	stmt, args, err := r.builder.Delete(edgesTable).
		Where(squirrel.Eq{"follower_id": followerID}).
		Where(squirrel.Eq{"followee_id": followeeID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build delete edge sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return false, fmt.Errorf("delete edge: %w", err)
	}

	return ct.RowsAffected() > 0, nil
}

// ListFollowers returns the public projections of every identity following
// id, in one batched query, ordered by id for deterministic output.
func (r *GraphRepository) ListFollowers(ctx context.Context, id string) ([]domain.FollowProfile, error) {
	return r.listJoined(ctx, "follower_id", "followee_id", id)
}

// ListFollowing returns the public projections of every identity id
// follows, ordered by id.
func (r *GraphRepository) ListFollowing(ctx context.Context, id string) ([]domain.FollowProfile, error) {
	return r.listJoined(ctx, "followee_id", "follower_id", id)
}

func (r *GraphRepository) listJoined(ctx context.Context, joinColumn, whereColumn, id string) ([]domain.FollowProfile, error) {
	stmt, args, err := r.builder.
		Select("i.id", "i.handle", "i.email", "i.profile_picture").
		From(edgesTable + " e").
		Join(fmt.Sprintf("%s i ON i.id = e.%s", identitiesTable, joinColumn)).
		Where(squirrel.Eq{"e." + whereColumn: id}).
		OrderBy("i.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list edges sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer rows.Close()

	profiles := make([]domain.FollowProfile, 0)
	for rows.Next() {
		var profile domain.FollowProfile
		if err := rows.Scan(&profile.ID, &profile.Handle, &profile.Email, &profile.ProfilePicture); err != nil {
			return nil, fmt.Errorf("scan follow profile: %w", err)
		}
		profiles = append(profiles, profile)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate follow profiles: %w", err)
	}

	return profiles, nil
}

// CountEdges returns the follower and following cardinalities for id.
func (r *GraphRepository) CountEdges(ctx context.Context, id string) (int, int, error) {
	stmt := fmt.Sprintf(`
		SELECT
			(SELECT COUNT(*) FROM %[1]s WHERE followee_id = $1),
			(SELECT COUNT(*) FROM %[1]s WHERE follower_id = $1)
	`, edgesTable)

	var followers, following int64
	if err := r.exec.QueryRow(ctx, stmt, id).Scan(&followers, &following); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("scan edge counts: %w", err)
	}

	return int(followers), int(following), nil
}

var _ port.GraphRepository = (*GraphRepository)(nil)
