package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/jcmexdev/marketplace/internal/auth"
	"github.com/jcmexdev/marketplace/internal/identity-service/domain"
)

const accountColumns = `id, tenant_id, role, username, email, full_name, password_hash, address, phone_number`

func scanAccount(row interface{ Scan(...any) error }) (domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.ID, &a.TenantID, &a.Role, &a.Username, &a.Email, &a.FullName,
		&a.PasswordHash, &a.Address, &a.PhoneNumber)
	return a, mapError(err)
}

func (q *Queries) CreateAccount(ctx context.Context, a domain.Account) (domain.Account, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	row := q.db.QueryRow(ctx, `
		INSERT INTO users (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+accountColumns,
		a.ID, a.TenantID, a.Role, a.Username, a.Email, a.FullName, a.PasswordHash, a.Address, a.PhoneNumber)
	return scanAccount(row)
}

func (q *Queries) FindAccountByUsername(ctx context.Context, tenantID, username string) (domain.Account, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM   users
		WHERE  tenant_id = $1 AND lower(username) = lower($2)`,
		tenantID, username)
	return scanAccount(row)
}

func (q *Queries) FindUser(ctx context.Context, tenantID, userID string) (auth.User, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM   users
		WHERE  tenant_id = $1 AND id = $2`,
		tenantID, userID)
	a, err := scanAccount(row)
	if err != nil {
		return auth.User{}, err
	}
	return a.User, nil
}
