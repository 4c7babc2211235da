package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"room_chat_service/internal/identity/domain"
	"room_chat_service/internal/identity/repository"
	"room_chat_service/pkg/database"
	"room_chat_service/pkg/encrypt"
	"room_chat_service/pkg/errs"
	"room_chat_service/pkg/logger"
	"room_chat_service/pkg/token"
)

// AuthUseCase is the authentication provider surface. Sign-in/out drives the
// session lifecycle anonymous -> authenticated -> anonymous; observers follow
// it through OnAuthChange instead of reading a global.
type AuthUseCase interface {
	SignUp(ctx context.Context, email, password, displayName string) (string, error)
	SignIn(ctx context.Context, email, password string) (string, error)
	SignOut(ctx context.Context, token string) error
	FederatedSignIn(ctx context.Context, provider, email, displayName string) (string, error)
	CurrentIdentity(ctx context.Context, token string) (*domain.Identity, error)
	CheckSessionTimeout(ctx context.Context, token string) (bool, error)
	ReconnectSession(ctx context.Context, token string) error

	// OnAuthChange register an observer of the session lifecycle. The callback
	// receives the identity on sign-in and nil on sign-out. Returns the
	// removal handle.
	OnAuthChange(callback func(*domain.Identity)) func()
}

type authUseCase struct {
	accountRepo repository.AccountRepository
	sessionTTL  time.Duration
	redisRepo   database.RedisRepository[domain.AuthSession]
	issuer      string

	mu        sync.Mutex
	observers map[int]func(*domain.Identity)
	nextObsID int
}

// NewAuthUseCase init auth use case
func NewAuthUseCase(
	accountRepo repository.AccountRepository,
	sessionTTL time.Duration,
	redisRepo database.RedisRepository[domain.AuthSession],
	issuer string,
) AuthUseCase {
	return &authUseCase{
		accountRepo: accountRepo,
		sessionTTL:  sessionTTL,
		redisRepo:   redisRepo,
		issuer:      issuer,
		observers:   make(map[int]func(*domain.Identity)),
	}
}

// SignUp create a password account and sign it in
func (a *authUseCase) SignUp(ctx context.Context, email, password, displayName string) (string, error) {
	if _, err := a.accountRepo.FindAccount(ctx, &domain.AccountQuery{Email: &email}); err == nil {
		return "", errs.Validation("email already registered")
	}

	if err := encrypt.ValidatePasswordStrength(password); err != nil {
		return "", errs.Validation(err.Error())
	}

	pw, err := encrypt.HashPassword(password)
	if err != nil {
		return "", errs.Collaborator("hash password", err)
	}

	account := &domain.Account{
		IdentityID:  uuid.New().String(),
		Email:       email,
		DisplayName: displayName,
		Password:    pw,
		Provider:    domain.ProviderPassword,
	}
	if err := a.accountRepo.CreateAccount(ctx, account); err != nil {
		return "", errs.Collaborator("create account", err)
	}

	logger.Log.Info("account created", zap.String("IdentityID", account.IdentityID))
	return a.openSession(ctx, account)
}

// SignIn verify credentials and open a session
func (a *authUseCase) SignIn(ctx context.Context, email, password string) (string, error) {
	account, err := a.accountRepo.FindAccount(ctx, &domain.AccountQuery{Email: &email})
	if err != nil {
		return "", errs.AccessDenied("unknown email or wrong password")
	}

	if err := account.IsPasswordMatch(password); err != nil {
		return "", errs.AccessDenied("unknown email or wrong password")
	}

	return a.openSession(ctx, account)
}

// FederatedSignIn sign in through an external provider. First visit
// provisions the account; no password is stored.
func (a *authUseCase) FederatedSignIn(ctx context.Context, provider, email, displayName string) (string, error) {
	account, err := a.accountRepo.FindAccount(ctx, &domain.AccountQuery{Email: &email})
	if err != nil {
		account = &domain.Account{
			IdentityID:  uuid.New().String(),
			Email:       email,
			DisplayName: displayName,
			Provider:    provider,
		}
		if err := a.accountRepo.CreateAccount(ctx, account); err != nil {
			return "", errs.Collaborator("provision federated account", err)
		}
		logger.Log.Info("federated account provisioned",
			zap.String("IdentityID", account.IdentityID), zap.String("Provider", provider))
	}

	return a.openSession(ctx, account)
}

// SignOut close the session and notify observers
func (a *authUseCase) SignOut(ctx context.Context, t string) error {
	tokenInfo, err := token.ParseJWT(t)
	if err != nil {
		return errs.Validation("invalid token")
	}

	if err := a.redisRepo.Del(ctx, tokenInfo.IdentityID); err != nil {
		return errs.Collaborator("delete session", err)
	}

	a.emit(nil)
	return nil
}

// CurrentIdentity resolve the identity of a live session token
func (a *authUseCase) CurrentIdentity(ctx context.Context, t string) (*domain.Identity, error) {
	tokenInfo, err := token.ParseJWT(t)
	if err != nil {
		return nil, errs.Validation("invalid token")
	}

	session, err := a.redisRepo.Get(ctx, tokenInfo.IdentityID)
	if err != nil || session.IsExpired() {
		return nil, errs.AccessDenied("session expired")
	}

	return &domain.Identity{
		ID:          tokenInfo.IdentityID,
		Email:       tokenInfo.Email,
		DisplayName: tokenInfo.DisplayName,
	}, nil
}

// CheckSessionTimeout report whether the session behind the token expired
func (a *authUseCase) CheckSessionTimeout(ctx context.Context, t string) (bool, error) {
	tokenInfo, err := token.ParseJWT(t)
	if err != nil {
		return true, errs.Validation("invalid token")
	}

	ttl, err := a.redisRepo.GetTTL(ctx, tokenInfo.IdentityID)
	if err != nil {
		return true, errs.Collaborator("session ttl", err)
	}
	return ttl <= 0, nil
}

// ReconnectSession extend the session of a returning client
func (a *authUseCase) ReconnectSession(ctx context.Context, t string) error {
	tokenInfo, err := token.ParseJWT(t)
	if err != nil {
		return errs.Validation("invalid token")
	}
	return a.redisRepo.ExtendTTL(ctx, tokenInfo.IdentityID, a.sessionTTL)
}

// OnAuthChange register an observer; the handle removes it
func (a *authUseCase) OnAuthChange(callback func(*domain.Identity)) func() {
	a.mu.Lock()
	id := a.nextObsID
	a.nextObsID++
	a.observers[id] = callback
	a.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.observers, id)
			a.mu.Unlock()
		})
	}
}

func (a *authUseCase) openSession(ctx context.Context, account *domain.Account) (string, error) {
	t, err := token.GenerateJWT(account.IdentityID, account.DisplayName, account.Email, a.issuer)
	if err != nil {
		return "", errs.Collaborator("generate token", err)
	}

	now := time.Now()
	session := domain.AuthSession{
		Token:      t,
		IdentityID: account.IdentityID,
		CreatedAt:  now,
		ExpiredAt:  now.Add(a.sessionTTL),
	}
	if err := a.redisRepo.Set(ctx, account.IdentityID, session, a.sessionTTL); err != nil {
		return "", errs.Collaborator("store session", err)
	}

	identity := account.Identity()
	a.emit(&identity)
	return t, nil
}

func (a *authUseCase) emit(identity *domain.Identity) {
	a.mu.Lock()
	observers := make([]func(*domain.Identity), 0, len(a.observers))
	for _, cb := range a.observers {
		observers = append(observers, cb)
	}
	a.mu.Unlock()

	for _, cb := range observers {
		cb(identity)
	}
}
