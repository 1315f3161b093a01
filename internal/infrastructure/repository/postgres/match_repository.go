package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/esports-match-sync/internal/domain/match"
	qb "github.com/riskibarqy/esports-match-sync/internal/platform/querybuilder"
)

const (
	matchesTable       = "matches"
	matchUpsertChunk   = 500
	matchOrderPosition = "position"

	// hashtext folds the league key into the bigint advisory lock space.
	leagueLockQuery = "SELECT pg_advisory_xact_lock(hashtext($1))"
)

var (
	matchColumns      = mustColumns(matchTableModel{})
	matchUpsertSuffix = buildUpsertSuffix("id", matchColumns)
)

// MatchRepository persists flattened matches. Each league is rewritten inside one transaction
// that holds the league's advisory lock.
type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) SaveMatches(ctx context.Context, matches []match.Match) error {
	for slug, items := range match.GroupByLeague(matches) {
		if err := r.ReplaceLeague(ctx, slug, items); err != nil {
			return err
		}
	}
	return nil
}

func (r *MatchRepository) ReplaceLeague(ctx context.Context, leagueSlug string, matches []match.Match) error {
	return r.UpdateLeague(ctx, leagueSlug, func([]match.Match) ([]match.Match, error) {
		return matches, nil
	})
}

// UpdateLeague holds a transaction-scoped advisory lock on the league while it reads, updates and
// rewrites it. The lock also covers a league with no rows yet, which FOR UPDATE would not.
func (r *MatchRepository) UpdateLeague(ctx context.Context, leagueSlug string, update match.LeagueUpdate) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return dbError("begin tx update league matches", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, leagueLockQuery, matchesTable+":"+leagueSlug); err != nil {
		return dbError("lock league="+leagueSlug, err)
	}
	stored, err := r.list(ctx, tx, qb.Eq("league_slug", leagueSlug))
	if err != nil {
		return err
	}
	matches, err := update(stored)
	if err != nil {
		return err
	}
	if err := r.writeLeague(ctx, tx, leagueSlug, matches); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return dbError("commit update league matches tx", err)
	}
	return nil
}

// writeLeague upserts matches and deletes the league's rows that are not among them.
func (r *MatchRepository) writeLeague(ctx context.Context, tx *sqlx.Tx, leagueSlug string, matches []match.Match) error {
	models := make([]matchTableModel, 0, len(matches))
	keepIDs := make([]any, 0, len(matches))
	for i, item := range matches {
		item.League.Slug = leagueSlug
		models = append(models, toMatchModel(item, i))
		keepIDs = append(keepIDs, item.ID)
	}

	for start := 0; start < len(models); start += matchUpsertChunk {
		end := min(start+matchUpsertChunk, len(models))
		query, args, err := qb.InsertModels(matchesTable, models[start:end], matchUpsertSuffix)
		if err != nil {
			return fmt.Errorf("build upsert matches query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return dbError("upsert matches league="+leagueSlug, err)
		}
	}

	deleteQuery, deleteArgs, err := qb.DeleteFrom(matchesTable).
		Where(
			qb.Eq("league_slug", leagueSlug),
			qb.NotIn("id", keepIDs),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete stale matches query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return dbError("delete stale matches league="+leagueSlug, err)
	}
	return nil
}

func (r *MatchRepository) ListByLeague(ctx context.Context, leagueSlug string) ([]match.Match, error) {
	return r.list(ctx, r.db, qb.Eq("league_slug", leagueSlug))
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	query, args, err := qb.Select(matchColumns...).From(matchesTable).
		Where(qb.Eq("id", matchID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build select match by id query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, dbError("select match by id", err)
	}
	return row.toDomain(), true, nil
}

func (r *MatchRepository) ListByState(ctx context.Context, leagueSlug string, state match.State) ([]match.Match, error) {
	return r.list(ctx, r.db,
		qb.Eq("league_slug", leagueSlug),
		qb.Eq("state", string(state)),
	)
}

func (r *MatchRepository) ListByBlock(ctx context.Context, leagueSlug, blockName string) ([]match.Match, error) {
	return r.list(ctx, r.db,
		qb.Eq("league_slug", leagueSlug),
		qb.Eq("LOWER(TRIM(block_name))", strings.ToLower(strings.TrimSpace(blockName))),
	)
}

func (r *MatchRepository) list(ctx context.Context, q sqlx.QueryerContext, conditions ...qb.Condition) ([]match.Match, error) {
	query, args, err := qb.Select(matchColumns...).From(matchesTable).
		Where(conditions...).
		OrderBy(matchOrderPosition, "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches query: %w", err)
	}

	var rows []matchTableModel
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, dbError("select matches", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func mustColumns(model any) []string {
	cols, err := qb.Columns(model)
	if err != nil {
		panic(fmt.Sprintf("resolve model columns: %v", err))
	}
	return cols
}

// buildUpsertSuffix renders ON CONFLICT ... DO UPDATE for every column except the key.
func buildUpsertSuffix(key string, columns []string) string {
	sets := make([]string, 0, len(columns)+1)
	for _, column := range columns {
		if column == key {
			continue
		}
		sets = append(sets, "    "+column+" = EXCLUDED."+column)
	}
	sets = append(sets, "    updated_at = NOW()")
	return "ON CONFLICT (" + key + ")\nDO UPDATE SET\n" + strings.Join(sets, ",\n")
}
