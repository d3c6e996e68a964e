package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookcatalog/internal/entity"
)

type UserPG struct {
	pgBase
}

func NewUserPG(db *pgxpool.Pool, timeout time.Duration) *UserPG {
	return &UserPG{pgBase{db: db, timeout: timeout}}
}

func (r *UserPG) CreateUser(ctx context.Context, u *entity.User) error {
	const query = `
	INSERT INTO users (id, username, favorite_genre)
	VALUES (gen_random_uuid(), $1, $2)
	RETURNING id
	`
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return mapErr(r.db.QueryRow(ctx, query, u.Username, u.FavoriteGenre).Scan(&u.ID))
}

func (r *UserPG) GetUserByUsername(ctx context.Context, username string) (entity.User, error) {
	return r.getOne(ctx, `SELECT id, username, favorite_genre FROM users WHERE username = $1`, username)
}

// GetUserByID treats an id that is not a uuid as unknown, since no row can carry it.
func (r *UserPG) GetUserByID(ctx context.Context, id string) (entity.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return entity.User{}, entity.ErrNotFound
	}
	return r.getOne(ctx, `SELECT id, username, favorite_genre FROM users WHERE id = $1`, id)
}

func (r *UserPG) getOne(ctx context.Context, query string, arg string) (entity.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var u entity.User
	if err := r.db.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Username, &u.FavoriteGenre); err != nil {
		return entity.User{}, mapErr(err)
	}
	return u, nil
}
