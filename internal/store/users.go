package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/models"
)

// CreateUser inserts the account and its profile in one transaction.
func (s *Store) CreateUser(ctx context.Context, user *models.User, profile *models.Profile) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		user.ID, user.Email, user.PasswordHash, user.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("user %s: %w", user.Email, ErrDuplicate)
	}
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO profiles (id, full_name, email, phone) VALUES (?, ?, ?, ?)`,
		user.ID, profile.FullName, profile.Email, profile.Phone)
	if err != nil {
		return err
	}
	profile.UserID = user.ID

	return tx.Commit()
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE email = ?`, email)

	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT id, full_name, email, COALESCE(phone, '') FROM profiles WHERE id = ?`, userID)

	var p models.Profile
	if err := row.Scan(&p.UserID, &p.FullName, &p.Email, &p.Phone); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// RevokeToken records a signed-out token id. Expired entries are pruned on
// the way in.
func (s *Store) RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE expires_at < ?`, time.Now()); err != nil {
		return err
	}
	_, err := s.DB.ExecContext(ctx, `INSERT OR IGNORE INTO revoked_tokens (token_id, expires_at) VALUES (?, ?)`, tokenID, expiresAt)
	return err
}

func (s *Store) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM revoked_tokens WHERE token_id = ?`, tokenID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) GetStaffByUsername(ctx context.Context, username string) (*models.Staff, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT id, username, password FROM staff WHERE username = ?`, username)

	var st models.Staff
	if err := row.Scan(&st.ID, &st.Username, &st.Password); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &st, nil
}

// CreateStaff is mainly for seeding the first kitchen account.
func (s *Store) CreateStaff(ctx context.Context, username, hashedPassword string) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO staff (username, password) VALUES (?, ?)`, username, hashedPassword)
	if isUniqueViolation(err) {
		return fmt.Errorf("staff %s: %w", username, ErrDuplicate)
	}
	return err
}
