package domain

import (
	"time"

	"room_chat_service/pkg/encrypt"
)

// ProviderPassword email/password accounts
const ProviderPassword = "password"

// Identity is the identity reference handed to collaborating services.
// Immutable once issued.
type Identity struct {
	ID          string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Account is the persisted credential record behind an identity. Federated
// accounts carry the provider name and no password hash.
type Account struct {
	ID          int64
	IdentityID  string
	Email       string
	DisplayName string
	Password    string
	Provider    string
}

// Identity build the immutable identity reference of this account
func (a *Account) Identity() Identity {
	return Identity{
		ID:          a.IdentityID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
	}
}

// IsPasswordMatch verify the submitted password against the stored hash
func (a *Account) IsPasswordMatch(inputPwd string) error {
	return encrypt.CheckPassword(a.Password, inputPwd)
}

// AuthSession is one authenticated session, stored in redis keyed by
// identity id
type AuthSession struct {
	Token      string    `json:"Token"`
	IdentityID string    `json:"IdentityID"`
	CreatedAt  time.Time `json:"CreatedAt"`
	ExpiredAt  time.Time `json:"ExpiredAt"`
}

// IsExpired report whether the session passed its expiry
func (s *AuthSession) IsExpired() bool {
	return time.Now().After(s.ExpiredAt)
}

// AccountQuery join conditions used to look up accounts
type AccountQuery struct {
	ID         *int64  `db:"id"`
	IdentityID *string `db:"identity_id"`
	Email      *string `db:"email"`
}
