package postgres

import (
	"context"
	"database/sql"

	"competition-voting/internal/domain/catalog"
)

const competitionColumns = `
    id, title, description, cover_image, start_date, end_date, status,
    max_votes_per_user, require_payment, vote_price,
    total_votes, total_contestants, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompetition(row rowScanner) (*catalog.Competition, error) {
	c := &catalog.Competition{}
	err := row.Scan(
		&c.ID, &c.Title, &c.Description, &c.CoverImage, &c.StartDate, &c.EndDate, &c.Status,
		&c.VotingRules.MaxVotesPerUser, &c.VotingRules.RequirePayment, &c.VotingRules.VotePrice,
		&c.TotalVotes, &c.TotalContestants, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) CreateCompetition(ctx context.Context, c *catalog.Competition) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO competitions (
            id, title, description, cover_image, start_date, end_date, status,
            max_votes_per_user, require_payment, vote_price, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `,
		c.ID, c.Title, c.Description, c.CoverImage, c.StartDate, c.EndDate, string(c.Status),
		c.VotingRules.MaxVotesPerUser, c.VotingRules.RequirePayment, c.VotingRules.VotePrice,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	c.TotalVotes, c.TotalContestants = 0, 0
	return nil
}

func (s *Store) GetCompetition(ctx context.Context, id string) (*catalog.Competition, error) {
	c, err := scanCompetition(s.db.QueryRowContext(ctx,
		`SELECT`+competitionColumns+` FROM competitions WHERE id = $1`, id))
	if isNoRows(err) {
		return nil, catalog.ErrCompetitionNotFound
	}
	return c, err
}

func (s *Store) ListCompetitions(ctx context.Context, f catalog.CompetitionFilter) ([]catalog.Competition, error) {
	var w where
	if f.Status != nil {
		w.add("status = ?", string(*f.Status))
	}
	if f.Search != "" {
		w.add("(title ILIKE ? OR description ILIKE ?)", likePattern(f.Search))
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT`+competitionColumns+` FROM competitions`+w.String()+` ORDER BY seq`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []catalog.Competition{}
	for rows.Next() {
		c, err := scanCompetition(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *c)
	}
	return res, rows.Err()
}

func (s *Store) UpdateCompetition(ctx context.Context, c *catalog.Competition) error {
	res, err := s.db.ExecContext(ctx, `
        UPDATE competitions SET
            title = $2, description = $3, cover_image = $4, start_date = $5, end_date = $6,
            status = $7, max_votes_per_user = $8, require_payment = $9, vote_price = $10,
            updated_at = $11
        WHERE id = $1
    `,
		c.ID, c.Title, c.Description, c.CoverImage, c.StartDate, c.EndDate,
		string(c.Status), c.VotingRules.MaxVotesPerUser, c.VotingRules.RequirePayment, c.VotingRules.VotePrice,
		c.UpdatedAt,
	)
	return affectedOne(res, err, catalog.ErrCompetitionNotFound)
}

// DeleteCompetition relies on ON DELETE CASCADE for the contestants.
func (s *Store) DeleteCompetition(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM competitions WHERE id = $1`, id)
	return affectedOne(res, err, catalog.ErrCompetitionNotFound)
}

func affectedOne(res sql.Result, err error, notFound error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
