package postgres

import (
	"context"
	"database/sql"

	"competition-voting/internal/domain/catalog"
	"competition-voting/internal/domain/ledger"
)

func (s *Store) AppendTransaction(ctx context.Context, t ledger.Transaction) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO payment_transactions (
            id, user_id, competition_id, contestant_id, amount, payment_method,
            status, phone, ip_address, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `,
		t.ID, t.UserID, t.CompetitionID, t.ContestantID, t.Amount, t.PaymentMethod,
		string(t.Status), t.Phone, t.IPAddress, t.Timestamp,
	)
	return err
}

// Record writes the vote in one transaction. The competition row lock
// serializes counter updates, and the limit is checked again against the
// locked history row so that several server processes cannot overshoot it.
func (s *Store) Record(ctx context.Context, rec *ledger.Record) error {
	v := rec.Vote
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := lockCompetition(ctx, tx, v.CompetitionID); err != nil {
			return err
		}

		var used int
		err := tx.QueryRowContext(ctx, `
            SELECT votes_used FROM vote_history
            WHERE user_id = $1 AND competition_id = $2
            FOR UPDATE
        `, v.UserID, v.CompetitionID).Scan(&used)
		if err != nil && !isNoRows(err) {
			return err
		}
		if rec.MaxVotes > 0 && used >= rec.MaxVotes {
			return ledger.ErrVoteLimitReached
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE contestants SET votes = votes + 1 WHERE id = $1`, v.ContestantID)
		if err := affectedOne(res, err, catalog.ErrContestantNotFound); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE competitions SET total_votes = total_votes + 1 WHERE id = $1`, v.CompetitionID); err != nil {
			return err
		}

		var txID sql.NullString
		if v.TransactionID != nil {
			txID = sql.NullString{String: *v.TransactionID, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO votes (
                id, user_id, competition_id, contestant_id, transaction_id, ip_address, verified, created_at
            ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        `,
			v.ID, v.UserID, v.CompetitionID, v.ContestantID, txID, v.IPAddress, v.Verified, v.Timestamp,
		); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
            INSERT INTO vote_history (user_id, competition_id, votes_used, max_votes, last_vote_date)
            VALUES ($1, $2, 1, $3, $4)
            ON CONFLICT (user_id, competition_id) DO UPDATE SET
                votes_used = vote_history.votes_used + 1,
                max_votes = EXCLUDED.max_votes,
                last_vote_date = EXCLUDED.last_vote_date
        `, v.UserID, v.CompetitionID, rec.MaxVotes, v.Timestamp)
		return err
	})
}

func (s *Store) GetHistory(ctx context.Context, userID, competitionID string) (*ledger.History, error) {
	h := &ledger.History{}
	err := s.db.QueryRowContext(ctx, `
        SELECT user_id, competition_id, votes_used, max_votes, last_vote_date
        FROM vote_history WHERE user_id = $1 AND competition_id = $2
    `, userID, competitionID).Scan(&h.UserID, &h.CompetitionID, &h.VotesUsed, &h.MaxVotes, &h.LastVoteDate)
	if isNoRows(err) {
		return nil, ledger.ErrHistoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (s *Store) ListVotes(ctx context.Context, f ledger.VoteFilter) ([]ledger.Vote, error) {
	var w where
	if f.CompetitionID != "" {
		w.add("competition_id = ?", f.CompetitionID)
	}
	if f.ContestantID != "" {
		w.add("contestant_id = ?", f.ContestantID)
	}
	if f.UserID != "" {
		w.add("user_id = ?", f.UserID)
	}

	rows, err := s.db.QueryContext(ctx, `
        SELECT id, user_id, competition_id, contestant_id, transaction_id, ip_address, verified, created_at
        FROM votes`+w.String()+` ORDER BY seq`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []ledger.Vote{}
	for rows.Next() {
		var (
			v    ledger.Vote
			txID sql.NullString
		)
		if err := rows.Scan(&v.ID, &v.UserID, &v.CompetitionID, &v.ContestantID, &txID,
			&v.IPAddress, &v.Verified, &v.Timestamp); err != nil {
			return nil, err
		}
		if txID.Valid {
			id := txID.String
			v.TransactionID = &id
		}
		res = append(res, v)
	}
	return res, rows.Err()
}

func (s *Store) ListTransactions(ctx context.Context, f ledger.TransactionFilter) ([]ledger.Transaction, error) {
	var w where
	if f.CompetitionID != "" {
		w.add("competition_id = ?", f.CompetitionID)
	}
	if f.ContestantID != "" {
		w.add("contestant_id = ?", f.ContestantID)
	}
	if f.Status != nil {
		w.add("status = ?", string(*f.Status))
	}
	if f.Method != "" {
		w.add("payment_method = ?", f.Method)
	}

	rows, err := s.db.QueryContext(ctx, `
        SELECT id, user_id, competition_id, contestant_id, amount, payment_method,
               status, phone, ip_address, created_at
        FROM payment_transactions`+w.String()+` ORDER BY seq`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []ledger.Transaction{}
	for rows.Next() {
		var t ledger.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.CompetitionID, &t.ContestantID, &t.Amount,
			&t.PaymentMethod, &t.Status, &t.Phone, &t.IPAddress, &t.Timestamp); err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}
