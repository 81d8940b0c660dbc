package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"learnhub/internal/domain"
)

type profileRow struct {
	bun.BaseModel `bun:"table:profiles"`

	ID           string    `bun:"id,pk"`
	Email        string    `bun:"email,notnull,unique"`
	FullName     string    `bun:"full_name,notnull"`
	Role         string    `bun:"role,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
}

func (r profileRow) toDomain() domain.User {
	return domain.User{
		Profile: domain.Profile{
			ID:       r.ID,
			Email:    r.Email,
			FullName: r.FullName,
			Role:     domain.Role(r.Role),
		},
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
	}
}

const uniqueViolation = "23505"

// UserStore keeps accounts in the profiles table.
type UserStore struct {
	db *bun.DB
}

func NewUserStore(db *bun.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.getBy(ctx, "email", email)
}

func (s *UserStore) GetByID(ctx context.Context, id string) (domain.User, error) {
	return s.getBy(ctx, "id", id)
}

func (s *UserStore) getBy(ctx context.Context, column, value string) (domain.User, error) {
	var row profileRow
	err := s.db.NewSelect().Model(&row).Where("? = ?", bun.Ident(column), value).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get profile: %w", err)
	}
	return row.toDomain(), nil
}

func (s *UserStore) Create(ctx context.Context, u domain.User) (domain.User, error) {
	row := profileRow{
		ID:           u.ID,
		Email:        u.Email,
		FullName:     u.FullName,
		Role:         string(u.Role),
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		var pgErr pgdriver.Error
		if errors.As(err, &pgErr) && pgErr.Field('C') == uniqueViolation {
			return domain.User{}, domain.ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("insert profile: %w", err)
	}
	return row.toDomain(), nil
}

// SeedUsers inserts accounts that do not exist yet, leaving existing ones untouched.
func (s *UserStore) SeedUsers(ctx context.Context, users []domain.User) error {
	for _, u := range users {
		row := profileRow{
			ID:           u.ID,
			Email:        u.Email,
			FullName:     u.FullName,
			Role:         string(u.Role),
			PasswordHash: u.PasswordHash,
			CreatedAt:    u.CreatedAt,
		}
		if _, err := s.db.NewInsert().Model(&row).On("CONFLICT DO NOTHING").Exec(ctx); err != nil {
			return fmt.Errorf("seed profile %s: %w", u.Email, err)
		}
	}
	return nil
}
