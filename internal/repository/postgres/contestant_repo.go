package postgres

import (
	"context"
	"database/sql"

	"competition-voting/internal/domain/catalog"
)

const contestantColumns = `
    id, competition_id, name, description, photo, category, is_active, votes,
    created_at, updated_at`

func scanContestant(row rowScanner) (*catalog.Contestant, error) {
	c := &catalog.Contestant{}
	err := row.Scan(
		&c.ID, &c.CompetitionID, &c.Name, &c.Description, &c.Photo, &c.Category, &c.IsActive, &c.Votes,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// lockCompetition takes a row lock so counter updates on it are serialized.
func lockCompetition(ctx context.Context, tx *sql.Tx, id string) error {
	var got string
	err := tx.QueryRowContext(ctx, `SELECT id FROM competitions WHERE id = $1 FOR UPDATE`, id).Scan(&got)
	if isNoRows(err) {
		return catalog.ErrCompetitionNotFound
	}
	return err
}

func (s *Store) CreateContestant(ctx context.Context, c *catalog.Contestant) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := lockCompetition(ctx, tx, c.CompetitionID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
            INSERT INTO contestants (
                id, competition_id, name, description, photo, category, is_active, created_at, updated_at
            ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        `,
			c.ID, c.CompetitionID, c.Name, c.Description, c.Photo, c.Category, c.IsActive,
			c.CreatedAt, c.UpdatedAt,
		)
		if err != nil {
			return err
		}
		c.Votes = 0
		_, err = tx.ExecContext(ctx,
			`UPDATE competitions SET total_contestants = total_contestants + 1 WHERE id = $1`, c.CompetitionID)
		return err
	})
}

func (s *Store) GetContestant(ctx context.Context, id string) (*catalog.Contestant, error) {
	c, err := scanContestant(s.db.QueryRowContext(ctx,
		`SELECT`+contestantColumns+` FROM contestants WHERE id = $1`, id))
	if isNoRows(err) {
		return nil, catalog.ErrContestantNotFound
	}
	return c, err
}

func (s *Store) ListContestants(ctx context.Context, f catalog.ContestantFilter) ([]catalog.Contestant, error) {
	var w where
	if f.CompetitionID != "" {
		w.add("competition_id = ?", f.CompetitionID)
	}
	if f.ActiveOnly {
		w.add("is_active = ?", true)
	}
	if f.Search != "" {
		w.add("(name ILIKE ? OR category ILIKE ?)", likePattern(f.Search))
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT`+contestantColumns+` FROM contestants`+w.String()+` ORDER BY seq`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []catalog.Contestant{}
	for rows.Next() {
		c, err := scanContestant(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *c)
	}
	return res, rows.Err()
}

func (s *Store) UpdateContestant(ctx context.Context, c *catalog.Contestant) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var current string
		err := tx.QueryRowContext(ctx,
			`SELECT competition_id FROM contestants WHERE id = $1 FOR UPDATE`, c.ID).Scan(&current)
		if isNoRows(err) {
			return catalog.ErrContestantNotFound
		}
		if err != nil {
			return err
		}

		if current != c.CompetitionID {
			if err := lockCompetition(ctx, tx, c.CompetitionID); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
                UPDATE competitions SET total_contestants = GREATEST(total_contestants - 1, 0)
                WHERE id = $1
            `, current); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE competitions SET total_contestants = total_contestants + 1 WHERE id = $1`,
				c.CompetitionID); err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx, `
            UPDATE contestants SET
                competition_id = $2, name = $3, description = $4, photo = $5, category = $6,
                is_active = $7, updated_at = $8
            WHERE id = $1
        `,
			c.ID, c.CompetitionID, c.Name, c.Description, c.Photo, c.Category, c.IsActive, c.UpdatedAt,
		)
		return err
	})
}

func (s *Store) DeleteContestant(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var competitionID string
		err := tx.QueryRowContext(ctx,
			`DELETE FROM contestants WHERE id = $1 RETURNING competition_id`, id).Scan(&competitionID)
		if isNoRows(err) {
			return catalog.ErrContestantNotFound
		}
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
            UPDATE competitions SET total_contestants = GREATEST(total_contestants - 1, 0)
            WHERE id = $1
        `, competitionID)
		return err
	})
}
