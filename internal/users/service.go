package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hzpumpworks/workshop-backend/internal/auditlog"
	pkgauth "github.com/hzpumpworks/workshop-backend/pkg/auth"
	"github.com/hzpumpworks/workshop-backend/pkg/auth/session"
	"github.com/hzpumpworks/workshop-backend/pkg/config"
	"github.com/hzpumpworks/workshop-backend/pkg/db"
	"github.com/hzpumpworks/workshop-backend/pkg/db/models"
	"github.com/hzpumpworks/workshop-backend/pkg/enums"
	pkgerrors "github.com/hzpumpworks/workshop-backend/pkg/errors"
	"github.com/hzpumpworks/workshop-backend/pkg/pagination"
	"github.com/hzpumpworks/workshop-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

var (
	userSearchable = []string{"email", "name", "role"}
	userSortable   = []string{"created_at", "email", "name", "role"}
)

// sessionManager is the slice of the redis-backed session manager the
// service needs.
type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// Service covers account lifecycle and token issuance.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*UserView, error)
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	Refresh(ctx context.Context, claims *pkgauth.AccessTokenClaims, refreshToken string) (*LoginResult, error)
	Logout(ctx context.Context, accessID string) error
	Me(ctx context.Context, userID uuid.UUID) (*UserView, error)
	List(ctx context.Context, params pagination.Params) (*UserList, error)
	UpdateRole(ctx context.Context, userID uuid.UUID, role enums.UserRole) (*UserView, error)
}

type service struct {
	repo        Repository
	session     sessionManager
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	audit       auditlog.Recorder
	now         func() time.Time
}

// ServiceParams bundles the dependencies required to build a users service.
type ServiceParams struct {
	Repo           Repository
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	Audit          auditlog.Recorder
}

// NewService constructs the users service. Audit may be nil.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager required")
	}
	return &service{
		repo:        params.Repo,
		session:     params.SessionManager,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		audit:       params.Audit,
		now:         time.Now,
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*UserView, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	role := input.Role
	if role == "" {
		role = enums.UserRoleStaff
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role").
			WithDetails(map[string]any{"role": string(input.Role)})
	}

	passwordHash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if db.IsUniqueViolation(err, "users_email") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	s.recordAudit(ctx, auditlog.Entry{
		Action:   enums.LogActionCreate,
		Target:   enums.LogTargetUser,
		TargetID: created.ID.String(),
		NewData:  map[string]any{"email": created.Email, "role": created.Role},
	})
	view := viewFrom(created)
	return &view, nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.authenticate(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user)
}

// Refresh rotates the redis session named by the expired token's jti and
// mints a fresh access token for the same account.
func (s *service) Refresh(ctx context.Context, claims *pkgauth.AccessTokenClaims, refreshToken string) (*LoginResult, error) {
	if claims == nil || claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account disabled")
	}

	newAccessID, newRefresh, err := s.session.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID.String(),
		Role:   user.Role,
		JTI:    newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		User:         viewFrom(user),
	}, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access id required")
	}
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*UserView, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := viewFrom(user)
	return &view, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*UserList, error) {
	if err := params.ValidateFields(userSearchable, userSortable); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid list parameters")
	}
	rows, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}

	views := make([]UserView, 0, len(rows))
	for i := range rows {
		views = append(views, viewFrom(&rows[i]))
	}
	return &UserList{Users: views, Total: total}, nil
}

func (s *service) UpdateRole(ctx context.Context, userID uuid.UUID, role enums.UserRole) (*UserView, error) {
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role").
			WithDetails(map[string]any{"role": string(role)})
	}

	before, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if before.Role == role {
		view := viewFrom(before)
		return &view, nil
	}

	rows, err := s.repo.UpdateRole(ctx, userID, role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update role")
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	s.recordAudit(ctx, auditlog.Entry{
		Action:   enums.LogActionUpdate,
		Target:   enums.LogTargetUser,
		TargetID: userID.String(),
		OldData:  map[string]any{"role": before.Role},
		NewData:  map[string]any{"role": role},
	})

	after, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := viewFrom(after)
	return &view, nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := strings.TrimSpace(email)
	if input == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	user, err := s.repo.FindByEmail(ctx, strings.ToLower(input))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid || !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}

func (s *service) issueTokens(ctx context.Context, user *models.User) (*LoginResult, error) {
	accessID := session.NewAccessID()
	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID.String(),
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refresh token")
	}

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         viewFrom(user),
	}, nil
}

func (s *service) findUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func (s *service) recordAudit(ctx context.Context, entry auditlog.Entry) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, entry)
}
