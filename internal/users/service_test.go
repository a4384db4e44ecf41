package users

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hzpumpworks/workshop-backend/internal/auditlog"
	pkgauth "github.com/hzpumpworks/workshop-backend/pkg/auth"
	"github.com/hzpumpworks/workshop-backend/pkg/auth/session"
	"github.com/hzpumpworks/workshop-backend/pkg/config"
	"github.com/hzpumpworks/workshop-backend/pkg/db/models"
	"github.com/hzpumpworks/workshop-backend/pkg/enums"
	pkgerrors "github.com/hzpumpworks/workshop-backend/pkg/errors"
	"github.com/hzpumpworks/workshop-backend/pkg/pagination"
	"github.com/hzpumpworks/workshop-backend/pkg/security"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "users-service-test-secret",
	Issuer:            "workshop-test",
	ExpirationMinutes: 15,
}

type stubRepo struct {
	users map[uuid.UUID]*models.User
}

func newStubRepo() *stubRepo {
	return &stubRepo{users: make(map[uuid.UUID]*models.User)}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return nil, fmt.Errorf(`duplicate key value violates unique constraint "idx_users_email"`)
		}
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *stubRepo) List(ctx context.Context, params pagination.Params) ([]models.User, int64, error) {
	rows := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		rows = append(rows, *user)
	}
	return rows, int64(len(rows)), nil
}

func (s *stubRepo) UpdateRole(ctx context.Context, id uuid.UUID, role enums.UserRole) (int64, error) {
	user, ok := s.users[id]
	if !ok {
		return 0, nil
	}
	user.Role = role
	return 1, nil
}

type stubSession struct {
	generated []string
	revoked   []string
	rotateErr error
}

func (s *stubSession) Generate(ctx context.Context, accessID string) (string, error) {
	s.generated = append(s.generated, accessID)
	return "refresh-" + accessID, nil
}

func (s *stubSession) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	newID := "rotated-" + oldAccessID
	return newID, "refresh-" + newID, nil
}

func (s *stubSession) Revoke(ctx context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

type stubAudit struct {
	entries []auditlog.Entry
}

func (s *stubAudit) Record(ctx context.Context, entry auditlog.Entry) error {
	s.entries = append(s.entries, entry)
	return nil
}

func newTestService(t *testing.T, repo Repository, sess sessionManager, audit auditlog.Recorder) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:           repo,
		SessionManager: sess,
		JWTConfig:      testJWTConfig,
		PasswordConfig: config.PasswordConfig{},
		Audit:          audit,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedUser(t *testing.T, repo *stubRepo, email, password string, role enums.UserRole, active bool) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         "Seed User",
		PasswordHash: hash,
		Role:         role,
		IsActive:     active,
	}
	repo.users[user.ID] = user
	return user
}

func TestRegisterCreatesAccount(t *testing.T) {
	repo := newStubRepo()
	audit := &stubAudit{}
	svc := newTestService(t, repo, &stubSession{}, audit)

	view, err := svc.Register(context.Background(), RegisterInput{
		Email:    "  Admin@Workshop.CN  ",
		Name:     "Zhang Wei",
		Password: "super-secret",
		Role:     enums.UserRoleAdmin,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if view.Email != "admin@workshop.cn" {
		t.Fatalf("email not normalized: %q", view.Email)
	}
	if view.Role != enums.UserRoleAdmin || !view.IsActive {
		t.Fatalf("unexpected account state: %+v", view)
	}
	if len(audit.entries) != 1 || audit.entries[0].Target != enums.LogTargetUser {
		t.Fatalf("expected user audit entry, got %+v", audit.entries)
	}

	stored := repo.users[view.ID]
	if stored.PasswordHash == "super-secret" || stored.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubSession{}, nil)
	ctx := context.Background()

	input := RegisterInput{Email: "a@b.cn", Name: "a", Password: "super-secret"}
	if _, err := svc.Register(ctx, input); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(ctx, input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for duplicate email, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubSession{}, nil)
	ctx := context.Background()

	cases := []RegisterInput{
		{Name: "a", Password: "super-secret"},
		{Email: "a@b.cn", Password: "super-secret"},
		{Email: "a@b.cn", Name: "a", Password: "short"},
		{Email: "a@b.cn", Name: "a", Password: "super-secret", Role: "superuser"},
	}
	for _, input := range cases {
		_, err := svc.Register(ctx, input)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error for %+v, got %v", input, err)
		}
	}
}

func TestRegisterDefaultsToStaff(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubSession{}, nil)
	view, err := svc.Register(context.Background(), RegisterInput{
		Email: "a@b.cn", Name: "a", Password: "super-secret",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if view.Role != enums.UserRoleStaff {
		t.Fatalf("expected default staff role, got %s", view.Role)
	}
}

func TestLoginIssuesTokenPair(t *testing.T) {
	repo := newStubRepo()
	sess := &stubSession{}
	svc := newTestService(t, repo, sess, nil)
	user := seedUser(t, repo, "op@workshop.cn", "super-secret", enums.UserRolePurchaser, true)

	result, err := svc.Login(context.Background(), LoginInput{Email: "OP@workshop.cn", Password: "super-secret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig, result.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID.String() || claims.Role != enums.UserRolePurchaser {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if len(sess.generated) != 1 || claims.ID != sess.generated[0] {
		t.Fatalf("session must be keyed by the token jti: %+v vs %s", sess.generated, claims.ID)
	}
	if result.RefreshToken != "refresh-"+claims.ID {
		t.Fatalf("unexpected refresh token %q", result.RefreshToken)
	}
}

func TestLoginRejections(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubSession{}, nil)
	seedUser(t, repo, "op@workshop.cn", "super-secret", enums.UserRoleStaff, true)
	seedUser(t, repo, "off@workshop.cn", "super-secret", enums.UserRoleStaff, false)
	ctx := context.Background()

	cases := []LoginInput{
		{Email: "op@workshop.cn", Password: "wrong"},
		{Email: "ghost@workshop.cn", Password: "super-secret"},
		{Email: "off@workshop.cn", Password: "super-secret"},
		{Email: "", Password: "super-secret"},
	}
	for _, input := range cases {
		_, err := svc.Login(ctx, input)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("expected unauthorized for %+v, got %v", input, err)
		}
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	repo := newStubRepo()
	sess := &stubSession{}
	svc := newTestService(t, repo, sess, nil)
	user := seedUser(t, repo, "op@workshop.cn", "super-secret", enums.UserRoleStaff, true)

	claims := &pkgauth.AccessTokenClaims{UserID: user.ID.String(), Role: user.Role}
	claims.ID = "old-access-id"

	result, err := svc.Refresh(context.Background(), claims, "refresh-old-access-id")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	parsed, err := pkgauth.ParseAccessToken(testJWTConfig, result.AccessToken)
	if err != nil {
		t.Fatalf("parse rotated token: %v", err)
	}
	if parsed.ID != "rotated-old-access-id" {
		t.Fatalf("new token must carry the rotated jti, got %q", parsed.ID)
	}
	if result.RefreshToken != "refresh-rotated-old-access-id" {
		t.Fatalf("unexpected refresh token %q", result.RefreshToken)
	}
}

func TestRefreshInvalidToken(t *testing.T) {
	repo := newStubRepo()
	sess := &stubSession{rotateErr: session.ErrInvalidRefreshToken}
	svc := newTestService(t, repo, sess, nil)
	user := seedUser(t, repo, "op@workshop.cn", "super-secret", enums.UserRoleStaff, true)

	claims := &pkgauth.AccessTokenClaims{UserID: user.ID.String(), Role: user.Role}
	claims.ID = "old-access-id"

	_, err := svc.Refresh(context.Background(), claims, "forged")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for bad refresh token, got %v", err)
	}

	_, err = svc.Refresh(context.Background(), nil, "whatever")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for missing claims, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	sess := &stubSession{}
	svc := newTestService(t, newStubRepo(), sess, nil)

	if err := svc.Logout(context.Background(), "access-id"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sess.revoked) != 1 || sess.revoked[0] != "access-id" {
		t.Fatalf("session not revoked: %+v", sess.revoked)
	}
}

func TestUpdateRole(t *testing.T) {
	repo := newStubRepo()
	audit := &stubAudit{}
	svc := newTestService(t, repo, &stubSession{}, audit)
	user := seedUser(t, repo, "op@workshop.cn", "super-secret", enums.UserRoleStaff, true)
	ctx := context.Background()

	view, err := svc.UpdateRole(ctx, user.ID, enums.UserRolePurchaser)
	if err != nil {
		t.Fatalf("update role: %v", err)
	}
	if view.Role != enums.UserRolePurchaser {
		t.Fatalf("role not applied: %+v", view)
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != enums.LogActionUpdate {
		t.Fatalf("expected update audit entry, got %+v", audit.entries)
	}

	_, err = svc.UpdateRole(ctx, user.ID, "superuser")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for unknown role, got %v", err)
	}

	_, err = svc.UpdateRole(ctx, uuid.New(), enums.UserRoleStaff)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown user, got %v", err)
	}
}

func TestListRejectsUnknownSortField(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubSession{}, nil)
	_, err := svc.List(context.Background(), pagination.Params{SortBy: "password_hash"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
