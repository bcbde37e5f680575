package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/intern-dashboard/internal/models"
)

// Код PostgreSQL для нарушения уникальности.
const uniqueViolationCode = "23505"

// Имя ограничения уникальности почты из миграции 000001.
// Уникальность есть и у referral_code, поэтому код 23505 сам по себе
// ещё не означает занятую почту.
const emailUniqueConstraint = "users_email_key"

// CreateUser сохраняет нового пользователя в базу данных.
// При нарушении уникальности почты возвращает ErrEmailTaken.
func (s *Storage) CreateUser(ctx context.Context, user models.User) error {
	const op = "storage.CreateUser"

	rewardsJSON, err := json.Marshal(user.Rewards)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO users (uid, name, email, password_hash, referral_code,
			      donations, rewards, role, is_active, refresh_token)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`
	if _, err := s.DB.ExecContext(ctx, query,
		user.UID, user.Name, user.Email, user.PasswordHash, user.ReferralCode,
		user.Donations, rewardsJSON, user.Role, user.IsActive,
		nullableString(user.RefreshToken)); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode &&
			pgErr.ConstraintName == emailUniqueConstraint {
			return fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetActiveUserByEmail возвращает активного пользователя по его почте.
func (s *Storage) GetActiveUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetActiveUserByEmail"

	query := userSelect + ` WHERE email = $1 AND is_active = TRUE`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByUID возвращает пользователя по его UID.
func (s *Storage) GetUserByUID(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUserByUID"

	query := userSelect + ` WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdateLoginState сохраняет новый refresh-токен и время последнего входа.
func (s *Storage) UpdateLoginState(ctx context.Context, userUID, refreshToken string, lastLogin time.Time) error {
	const op = "storage.UpdateLoginState"

	query := `UPDATE users
			  SET refresh_token = $1,
			      last_login = $2,
			      updated_at = NOW()
			  WHERE uid = $3`
	res, err := s.DB.ExecContext(ctx, query, refreshToken, lastLogin, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return checkAffected(op, res)
}

// UpdateRefreshToken заменяет сохранённый refresh-токен пользователя.
func (s *Storage) UpdateRefreshToken(ctx context.Context, userUID, refreshToken string) error {
	const op = "storage.UpdateRefreshToken"

	query := `UPDATE users
			  SET refresh_token = $1,
			      updated_at = NOW()
			  WHERE uid = $2`
	res, err := s.DB.ExecContext(ctx, query, refreshToken, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return checkAffected(op, res)
}

// ClearRefreshToken сбрасывает сохранённый refresh-токен. Операция идемпотентна.
func (s *Storage) ClearRefreshToken(ctx context.Context, userUID string) error {
	const op = "storage.ClearRefreshToken"

	query := `UPDATE users
			  SET refresh_token = NULL,
			      updated_at = NOW()
			  WHERE uid = $1`
	if _, err := s.DB.ExecContext(ctx, query, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateDonations сохраняет новую сумму пожертвований вместе
// с пересчитанным списком наград одним запросом.
func (s *Storage) UpdateDonations(ctx context.Context, userUID string, donations int64, rewards []models.Reward) error {
	const op = "storage.UpdateDonations"

	rewardsJSON, err := json.Marshal(rewards)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE users
			  SET donations = $1,
			      rewards = $2,
			      updated_at = NOW()
			  WHERE uid = $3`
	res, err := s.DB.ExecContext(ctx, query, donations, rewardsJSON, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return checkAffected(op, res)
}

// ListActiveTopDonators возвращает страницу активных пользователей,
// отсортированных по убыванию пожертвований. Для равных сумм порядок
// детерминирован: раньше созданные выше, затем по uid.
func (s *Storage) ListActiveTopDonators(ctx context.Context, limit, offset int) ([]*models.User, error) {
	const op = "storage.ListActiveTopDonators"

	query := `SELECT uid, name, donations, created_at
			  FROM users
			  WHERE is_active = TRUE
			  ORDER BY donations DESC, created_at ASC, uid ASC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		var u models.User
		if err = rows.Scan(&u.UID, &u.Name, &u.Donations, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountActiveWithMoreDonations возвращает количество активных пользователей
// со строго большей суммой пожертвований.
func (s *Storage) CountActiveWithMoreDonations(ctx context.Context, donations int64) (int, error) {
	const op = "storage.CountActiveWithMoreDonations"

	var count int
	query := `SELECT COUNT(*) FROM users WHERE is_active = TRUE AND donations > $1`
	if err := s.DB.QueryRowContext(ctx, query, donations).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// CountActiveUsers возвращает общее количество активных пользователей.
func (s *Storage) CountActiveUsers(ctx context.Context) (int, error) {
	const op = "storage.CountActiveUsers"

	var count int
	query := `SELECT COUNT(*) FROM users WHERE is_active = TRUE`
	if err := s.DB.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

const userSelect = `SELECT uid, name, email, password_hash, referral_code,
			      donations, rewards, role, is_active, refresh_token,
			      last_login, created_at, updated_at
			  FROM users`

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var rewardsJSON []byte
	var refreshToken sql.NullString
	var lastLogin sql.NullTime

	if err := row.Scan(&u.UID, &u.Name, &u.Email, &u.PasswordHash, &u.ReferralCode,
		&u.Donations, &rewardsJSON, &u.Role, &u.IsActive, &refreshToken,
		&lastLogin, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}

	if len(rewardsJSON) > 0 {
		if err := json.Unmarshal(rewardsJSON, &u.Rewards); err != nil {
			return nil, err
		}
	}
	if refreshToken.Valid {
		u.RefreshToken = refreshToken.String
	}
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	return u, nil
}

func checkAffected(op string, res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
