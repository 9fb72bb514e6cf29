package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fieldcrew/marketplace-api/internal/domain"
)

const accountColumns = `id, name, phone, email, password_hash, address, image, is_business, role, failed_login_attempts, lock_until, created_at`

type AccountRepo struct {
	db *sql.DB
}

func NewAccountRepo(db *sql.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

// ---------- helpers ----------

func (r *AccountRepo) scanAccountRow(row *sql.Row) (accountRow, error) {
	var ar accountRow
	err := row.Scan(
		&ar.ID,
		&ar.Name,
		&ar.Phone,
		&ar.Email,
		&ar.PasswordHash,
		&ar.Address,
		&ar.Image,
		&ar.IsBusiness,
		&ar.Role,
		&ar.FailedLoginAttempts,
		&ar.LockUntil,
		&ar.CreatedAt,
	)
	return ar, err
}

func toDomainAccount(ar accountRow) domain.Account {
	return domain.Account{
		ID:                  ar.ID,
		Name:                ar.Name,
		Phone:               ar.Phone,
		Email:               ar.Email,
		PasswordHash:        ar.PasswordHash,
		Address:             ar.Address,
		Image:               ar.Image,
		IsBusiness:          ar.IsBusiness,
		Role:                ar.Role,
		FailedLoginAttempts: ar.FailedLoginAttempts,
		LockUntil:           ar.LockUntil,
		CreatedAt:           ar.CreatedAt,
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// ---------- auth.AccountRepo ----------

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return domain.Account{}, domain.ErrMissingField("email")
	}

	const q = `
SELECT ` + accountColumns + `
FROM accounts
WHERE email = $1
LIMIT 1;
`
	ar, err := r.scanAccountRow(r.db.QueryRowContext(ctx, q, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrAccountNotFound()
		}
		return domain.Account{}, domain.ErrDBUnavailable(err)
	}
	return toDomainAccount(ar), nil
}

func (r *AccountRepo) GetByID(ctx context.Context, id string) (domain.Account, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Account{}, domain.ErrMissingField("id")
	}

	const q = `
SELECT ` + accountColumns + `
FROM accounts
WHERE id = $1
LIMIT 1;
`
	ar, err := r.scanAccountRow(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrAccountNotFound()
		}
		return domain.Account{}, domain.ErrDBUnavailable(err)
	}
	return toDomainAccount(ar), nil
}

// Create inserts a new account. The UNIQUE constraint on email is the
// authoritative duplicate guard: a unique violation here means a concurrent
// registration won the race, and the caller gets the same conflict error as
// the pre-check path.
func (r *AccountRepo) Create(ctx context.Context, a domain.Account) (domain.Account, error) {
	a.Email = domain.NormalizeEmail(a.Email)
	if a.ID == "" {
		return domain.Account{}, domain.ErrMissingField("id")
	}
	if a.Email == "" {
		return domain.Account{}, domain.ErrMissingField("email")
	}
	if a.PasswordHash == "" {
		return domain.Account{}, domain.ErrMissingField("password_hash")
	}
	if a.Role == "" {
		a.Role = string(domain.DefaultRole(a.IsBusiness))
	}

	const q = `
INSERT INTO accounts (id, name, phone, email, password_hash, address, image, is_business, role)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
RETURNING ` + accountColumns + `;
`

	ar, err := r.scanAccountRow(r.db.QueryRowContext(ctx, q,
		a.ID, a.Name, a.Phone, a.Email, a.PasswordHash, a.Address, a.Image, a.IsBusiness, a.Role,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Account{}, domain.ErrEmailAlreadyExists()
		}
		return domain.Account{}, domain.ErrDBUnavailable(err)
	}
	return toDomainAccount(ar), nil
}

// RecordFailedLogin increments the failure counter and conditionally sets the
// lock in one statement. Concurrent failed attempts may both increment, which
// is fine; what the single UPDATE rules out is a read-modify-write race that
// silently drops an increment. An expired lock re-arms when the counter is
// still at or past the threshold; an active lock is never extended.
func (r *AccountRepo) RecordFailedLogin(ctx context.Context, accountID string, threshold int, lockFor time.Duration) (int, *time.Time, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return 0, nil, domain.ErrMissingField("account_id")
	}

	const q = `
UPDATE accounts
SET failed_login_attempts = failed_login_attempts + 1,
    lock_until = CASE
        WHEN failed_login_attempts + 1 >= $2 AND (lock_until IS NULL OR lock_until <= now())
        THEN now() + make_interval(secs => $3)
        ELSE lock_until
    END
WHERE id = $1
RETURNING failed_login_attempts, lock_until;
`

	var attempts int
	var lockUntil *time.Time
	err := r.db.QueryRowContext(ctx, q, accountID, threshold, lockFor.Seconds()).
		Scan(&attempts, &lockUntil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil, domain.ErrAccountNotFound()
		}
		return 0, nil, domain.ErrDBUnavailable(err)
	}
	return attempts, lockUntil, nil
}

func (r *AccountRepo) ResetLoginState(ctx context.Context, accountID string) error {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return domain.ErrMissingField("account_id")
	}

	const q = `
UPDATE accounts
SET failed_login_attempts = 0,
    lock_until = NULL
WHERE id = $1;
`
	res, err := r.db.ExecContext(ctx, q, accountID)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrAccountNotFound()
	}
	return nil
}
