// Package service manages staff accounts and issues their access tokens.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"mandate/internal/staff/models"
	"mandate/internal/staff/password"
	id "mandate/pkg/domain"
	dErrors "mandate/pkg/domain-errors"
	"mandate/pkg/email"
	"mandate/pkg/platform/audit"
	"mandate/pkg/platform/sentinel"
	"mandate/pkg/requestcontext"
)

// Store persists staff accounts.
type Store interface {
	Create(ctx context.Context, a models.Account) error
	FindByID(ctx context.Context, staffID id.StaffID) (models.Account, error)
	FindByEmail(ctx context.Context, email string) (models.Account, error)
	RecordLogin(ctx context.Context, staffID id.StaffID, at time.Time) error
	CountByRole(ctx context.Context, role id.Role) (int, error)
	List(ctx context.Context) ([]models.Account, error)
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	GenerateAccessToken(staffID id.StaffID, role id.Role, email string, now time.Time, expiresIn time.Duration) (string, time.Time, error)
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) (bool, error)
}

// AuditPublisher records security events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

const DefaultTokenTTL = 8 * time.Hour

type Service struct {
	accounts       Store
	tokens         TokenIssuer
	hasher         PasswordHasher
	auditPublisher AuditPublisher
	logger         *slog.Logger
	tokenTTL       time.Duration

	dummyOnce sync.Once
	dummyHash string
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithPasswordHasher(h PasswordHasher) Option {
	return func(s *Service) {
		s.hasher = h
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

func New(accounts Store, tokens TokenIssuer, opts ...Option) (*Service, error) {
	if accounts == nil {
		return nil, errors.New("staff store is required")
	}
	if tokens == nil {
		return nil, errors.New("token issuer is required")
	}
	s := &Service{
		accounts: accounts,
		tokens:   tokens,
		hasher:   password.NewHasher(0),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		tokenTTL: DefaultTokenTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Login checks credentials and returns a signed session. Every credential
// failure looks the same to the caller.
func (s *Service) Login(ctx context.Context, address, plain string) (*models.Session, error) {
	address = email.Normalize(address)
	invalid := dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")

	account, err := s.accounts.FindByEmail(ctx, address)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load staff account")
		}
		s.burnHash(plain)
		s.emitLoginFailed(ctx, address, "", "unknown_email")
		return nil, invalid
	}

	ok, err := s.hasher.Verify(plain, account.PasswordHash)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify password")
	}
	if !ok {
		s.emitLoginFailed(ctx, address, account.ID.String(), "wrong_password")
		return nil, invalid
	}
	if !account.Active {
		s.emitLoginFailed(ctx, address, account.ID.String(), "inactive_account")
		return nil, invalid
	}

	now := requestcontext.Now(ctx)
	token, expiresAt, err := s.tokens.GenerateAccessToken(account.ID, account.Role, account.Email, now, s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue access token")
	}
	if err := s.accounts.RecordLogin(ctx, account.ID, now); err != nil {
		s.logger.WarnContext(ctx, "failed to record staff login",
			"staff_id", account.ID.String(),
			"error", err,
		)
	} else {
		account.LastLoginAt = &now
	}

	s.emit(ctx, audit.Event{
		Action:      string(audit.EventStaffLogin),
		Subject:     account.ID.String(),
		SubjectType: audit.SubjectStaff,
		ActorID:     account.ID.String(),
		ActorRole:   string(account.Role),
		Timestamp:   now,
	})
	return &models.Session{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		Account:     account,
	}, nil
}

// Create opens a staff account. Only super admins may call it.
func (s *Service) Create(ctx context.Context, creator id.Role, in models.CreateInput) (*models.Account, error) {
	if !creator.CanFinalize() {
		return nil, dErrors.New(dErrors.CodeForbidden, "only super admins can create staff accounts")
	}
	account, err := s.create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "staff account created",
		"staff_id", account.ID.String(),
		"role", string(account.Role),
		"created_by", requestcontext.StaffID(ctx).String(),
	)
	return account, nil
}

// BootstrapSuperAdmin creates the first super admin when none exists yet.
// It reports whether an account was created.
func (s *Service) BootstrapSuperAdmin(ctx context.Context, address, plain string) (bool, error) {
	n, err := s.accounts.CountByRole(ctx, id.RoleSuperAdmin)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count super admins")
	}
	if n > 0 {
		return false, nil
	}
	account, err := s.create(ctx, models.CreateInput{
		Email:    address,
		Role:     id.RoleSuperAdmin,
		Password: plain,
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			return false, nil
		}
		return false, err
	}
	s.logger.InfoContext(ctx, "bootstrap super admin created",
		"staff_id", account.ID.String(),
		"email", account.Email,
	)
	return true, nil
}

func (s *Service) Get(ctx context.Context, staffID id.StaffID) (*models.Account, error) {
	account, err := s.accounts.FindByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "staff account not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load staff account")
	}
	return &account, nil
}

func (s *Service) List(ctx context.Context) ([]models.Account, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list staff accounts")
	}
	return accounts, nil
}

func (s *Service) create(ctx context.Context, in models.CreateInput) (*models.Account, error) {
	in.Email = email.Normalize(in.Email)
	if !email.IsValid(in.Email) {
		return nil, dErrors.New(dErrors.CodeValidation, "email is not a valid address")
	}
	if !in.Role.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "role must be admin or super_admin")
	}
	if err := password.CheckStrength(in.Password); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	account := models.Account{
		ID:           id.NewStaffID(),
		Email:        in.Email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         in.Role,
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if account.FirstName == "" && account.LastName == "" {
		account.FirstName, account.LastName = email.DeriveNameFromEmail(account.Email)
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "email is already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create staff account")
	}

	s.emit(ctx, audit.Event{
		Action:      string(audit.EventStaffCreated),
		Subject:     account.ID.String(),
		SubjectType: audit.SubjectStaff,
		ToStatus:    string(account.Role),
		Timestamp:   now,
	})
	return &account, nil
}

// burnHash spends one bcrypt comparison so unknown emails take as long as
// wrong passwords.
func (s *Service) burnHash(plain string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("placeholder-password")
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(plain, s.dummyHash)
	}
}

func (s *Service) emitLoginFailed(ctx context.Context, address, staffID, reason string) {
	subject := staffID
	if subject == "" {
		subject = address
	}
	s.emit(ctx, audit.Event{
		Action:      string(audit.EventStaffLoginFailed),
		Subject:     subject,
		SubjectType: audit.SubjectStaff,
		Reason:      reason,
		Timestamp:   requestcontext.Now(ctx),
	})
}

// emit logs the audit line and forwards it. Account events are not
// transactional with the account write; a failed append is only logged.
func (s *Service) emit(ctx context.Context, event audit.Event) {
	s.logger.InfoContext(ctx, event.Action,
		"event", event.Action,
		"log_type", "audit",
		"subject", event.Subject,
		"reason", event.Reason,
	)
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"event", event.Action,
			"error", err,
		)
	}
}
