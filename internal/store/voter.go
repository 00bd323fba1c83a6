package store

import (
	"context"
	"fmt"
	"time"

	"voterroll/internal/utils"
	"voterroll/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const voterTableName = "voters"

var voterColumns = utils.StructTagValues(types.Voter{})

type VoterRepository struct {
	pool *pgxpool.Pool
}

func NewVoterRepository(pool *pgxpool.Pool) *VoterRepository {
	return &VoterRepository{pool: pool}
}

func (r *VoterRepository) VoterByEpicNo(ctx context.Context, epicNo string) (*types.Voter, error) {
	query, args, err := psql().
		Select(voterColumns...).
		From(voterTableName).
		Where(sq.Eq{"epic_no": epicNo}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate voter by epic_no query: %w", err)
	}

	return r.getVoter(ctx, query, args)
}

func (r *VoterRepository) VoterByID(ctx context.Context, id int64) (*types.Voter, error) {
	query, args, err := psql().
		Select(voterColumns...).
		From(voterTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate voter by id query: %w", err)
	}

	return r.getVoter(ctx, query, args)
}

func (r *VoterRepository) getVoter(ctx context.Context, query string, args []any) (*types.Voter, error) {
	var voter types.Voter
	err := pgxscan.Get(ctx, r.pool, &voter, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrVoterNotFound
		}
		return nil, fmt.Errorf("failed to fetch voter: %w", err)
	}

	return &voter, nil
}

// CreateVoter inserts the voter with only its non-NULL columns and sets
// voter.ID from the generated key. A duplicate epic_no yields
// types.ErrVoterExists.
func (r *VoterRepository) CreateVoter(ctx context.Context, voter *types.Voter) error {
	now := time.Now()
	voter.CreatedAt = now
	voter.UpdatedAt = now

	query, args, err := insertVoterQuery(voter).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert voter query: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&voter.ID)
	if isUniqueViolation(err) {
		return types.ErrVoterExists
	}

	return utils.ErrorWrapOrNil(err, "failed to create voter")
}

func insertVoterQuery(voter *types.Voter) sq.InsertBuilder {
	voterMap := utils.StructToMap(voter)
	delete(voterMap, "id")
	for column, value := range voterMap {
		if v, ok := value.(*string); ok && v == nil {
			delete(voterMap, column)
		}
	}

	return psql().
		Insert(voterTableName).
		SetMap(voterMap).
		Suffix("RETURNING id")
}

// UpdateVoterFields writes exactly the given columns plus updated_at. The
// natural and surrogate keys are never part of the update.
func (r *VoterRepository) UpdateVoterFields(ctx context.Context, epicNo string, changes map[string]any) error {
	query, args, err := updateVoterQuery(epicNo, changes, time.Now()).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update voter query for %s: %w", epicNo, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)

	return utils.ErrorWrapOrNil(err, "failed to update voter")
}

func updateVoterQuery(epicNo string, changes map[string]any, now time.Time) sq.UpdateBuilder {
	setMap := make(map[string]any, len(changes)+1)
	for column, value := range changes {
		switch column {
		case "id", "epic_no", "created_at", "updated_at":
			continue
		}
		setMap[column] = value
	}
	setMap["updated_at"] = now

	return psql().
		Update(voterTableName).
		SetMap(setMap).
		Where(sq.Eq{"epic_no": epicNo})
}

// SearchVoters returns one page of voters matching filter, ordered by id.
func (r *VoterRepository) SearchVoters(ctx context.Context, filter types.VoterFilter, limit, offset uint64) ([]*types.Voter, error) {
	query, args, err := searchVotersQuery(filter, limit, offset).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate search voters query: %w", err)
	}

	voters := make([]*types.Voter, 0, limit)
	err = pgxscan.Select(ctx, r.pool, &voters, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search voters: %w", err)
	}

	return voters, nil
}

func (r *VoterRepository) CountVoters(ctx context.Context, filter types.VoterFilter) (int, error) {
	query, args, err := countVotersQuery(filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate count voters query: %w", err)
	}

	var total int
	err = r.pool.QueryRow(ctx, query, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count voters: %w", err)
	}

	return total, nil
}

func searchVotersQuery(filter types.VoterFilter, limit, offset uint64) sq.SelectBuilder {
	return applyFilter(psql().Select(voterColumns...).From(voterTableName), filter).
		OrderBy("id ASC").
		Limit(limit).
		Offset(offset)
}

func countVotersQuery(filter types.VoterFilter) sq.SelectBuilder {
	return applyFilter(psql().Select("count(*)").From(voterTableName), filter)
}

func applyFilter(b sq.SelectBuilder, filter types.VoterFilter) sq.SelectBuilder {
	if len(filter.Columns) == 0 {
		return b
	}

	for _, term := range filter.Terms {
		pattern := containsPattern(term)
		if len(filter.Columns) == 1 {
			b = b.Where(sq.ILike{filter.Columns[0]: pattern})
			continue
		}

		or := make(sq.Or, 0, len(filter.Columns))
		for _, column := range filter.Columns {
			or = append(or, sq.ILike{column: pattern})
		}
		b = b.Where(or)
	}

	return b
}

// VoterTableExists reports whether the voters table is visible on the
// connection's search_path.
func (r *VoterRepository) VoterTableExists(ctx context.Context) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", voterTableName).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check voters table: %w", err)
	}

	return exists, nil
}

func (r *VoterRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
