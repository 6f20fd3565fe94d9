package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"cfpportal/internal/domain"
)

const uniqueViolation = "23505"

// sessionRepository stores login sessions. Provider tokens are sealed
// before they reach the database.
type sessionRepository struct {
	DB     *sql.DB
	sealer domain.TokenSealer
}

func NewSessionRepository(db *sql.DB, sealer domain.TokenSealer) domain.SessionRepository {
	return &sessionRepository{DB: db, sealer: sealer}
}

func (r *sessionRepository) seal(s *domain.Session) (access, refresh, idToken string, err error) {
	if access, err = r.sealer.Seal(s.AccessToken); err != nil {
		return "", "", "", fmt.Errorf("seal access token: %w", err)
	}
	if refresh, err = r.sealer.Seal(s.RefreshToken); err != nil {
		return "", "", "", fmt.Errorf("seal refresh token: %w", err)
	}
	if idToken, err = r.sealer.Seal(s.IDToken); err != nil {
		return "", "", "", fmt.Errorf("seal id token: %w", err)
	}
	return access, refresh, idToken, nil
}

func (r *sessionRepository) Create(ctx context.Context, s *domain.Session) error {
	access, refresh, idToken, err := r.seal(s)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO sessions (id, member_id, access_token, refresh_token, id_token, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.DB.ExecContext(ctx, query, s.ID, s.MemberID, access, refresh, idToken, nullTime(s.ExpiresAt), s.CreatedAt, s.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("session %s: %w", s.ID, domain.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	query := `
		SELECT id, member_id, access_token, refresh_token, id_token, expires_at, created_at, updated_at
		FROM sessions
		WHERE id = $1
	`
	s := &domain.Session{}
	var access, refresh, idToken string
	var expiresAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.MemberID, &access, &refresh, &idToken, &expiresAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if expiresAt.Valid {
		s.ExpiresAt = expiresAt.Time
	}
	if s.AccessToken, err = r.sealer.Open(access); err != nil {
		return nil, fmt.Errorf("open access token: %w", err)
	}
	if s.RefreshToken, err = r.sealer.Open(refresh); err != nil {
		return nil, fmt.Errorf("open refresh token: %w", err)
	}
	if s.IDToken, err = r.sealer.Open(idToken); err != nil {
		return nil, fmt.Errorf("open id token: %w", err)
	}
	return s, nil
}

func (r *sessionRepository) UpdateTokens(ctx context.Context, s *domain.Session) error {
	access, refresh, idToken, err := r.seal(s)
	if err != nil {
		return err
	}
	query := `
		UPDATE sessions
		SET access_token = $2, refresh_token = $3, id_token = $4, expires_at = $5, updated_at = $6
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query, s.ID, access, refresh, idToken, nullTime(s.ExpiresAt), s.UpdatedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// DeleteExpired removes sessions not touched since before.
func (r *sessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
