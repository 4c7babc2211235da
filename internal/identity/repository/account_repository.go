package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"room_chat_service/internal/identity/domain"
	"room_chat_service/pkg/errs"
)

// AccountRepository definition account record access
type AccountRepository interface {
	CreateAccount(ctx context.Context, account *domain.Account) error
	FindAccount(ctx context.Context, query *domain.AccountQuery) (*domain.Account, error)
}

type accountRepository struct {
	db *pgxpool.Pool
}

// NewAccountRepository create an AccountRepository
func NewAccountRepository(db *pgxpool.Pool) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	_, err := r.db.Exec(ctx,
		"INSERT INTO account(identity_id, email, display_name, password, provider) VALUES ($1, $2, $3, $4, $5)",
		account.IdentityID, account.Email, account.DisplayName, account.Password, account.Provider)
	return err
}

func (r *accountRepository) FindAccount(ctx context.Context, query *domain.AccountQuery) (*domain.Account, error) {
	queryStr := "SELECT id, identity_id, email, display_name, password, provider FROM account WHERE 1=1"
	params := []interface{}{}
	paramCount := 1

	if query.Email != nil {
		queryStr += fmt.Sprintf(" AND email = $%d", paramCount)
		params = append(params, *query.Email)
		paramCount++
	}
	if query.IdentityID != nil {
		queryStr += fmt.Sprintf(" AND identity_id = $%d", paramCount)
		params = append(params, *query.IdentityID)
		paramCount++
	}
	if query.ID != nil {
		queryStr += fmt.Sprintf(" AND id = $%d", paramCount)
		params = append(params, *query.ID)
		paramCount++
	}

	row := r.db.QueryRow(ctx, queryStr, params...)
	var account domain.Account
	err := row.Scan(&account.ID, &account.IdentityID, &account.Email, &account.DisplayName, &account.Password, &account.Provider)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errs.NotFound("no account found with given criteria")
		}
		return nil, err
	}

	return &account, nil
}
