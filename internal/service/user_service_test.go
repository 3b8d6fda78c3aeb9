package service

import (
	"academy_backend/internal/apperr"
	"academy_backend/internal/config"
	"academy_backend/internal/model"
	"academy_backend/internal/testutil"
	"academy_backend/internal/util"
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []MailMessage
}

func (m *recordingMailer) Send(_ context.Context, msg MailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

var mailedPassword = regexp.MustCompile(`Password: (\S+)`)

func newAuthService(t *testing.T, svc *UserService) *AuthService {
	t.Helper()
	return NewAuthService(svc.Store, NewTokenStore(nil), &config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour})
}

func TestCreateUser_MailsPasswordThatLogsIn(t *testing.T) {
	ctx := context.Background()
	store := testutil.Store(t)
	admin := testutil.User(t, store, model.Admin)
	mailer := &recordingMailer{}
	svc := NewUserService(store, mailer, "Academy")

	user, err := svc.CreateUser(ctx, CreateUserRequest{
		FirstName: "Ada", LastName: "Lovelace", Email: " Ada@Example.com ", Role: model.Trainer,
	}, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.True(t, user.IsActive)

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, "ada@example.com", msg.ToAddress)
	match := mailedPassword.FindStringSubmatch(msg.TextContent)
	require.Len(t, match, 2)
	assert.Len(t, match[1], 12)
	assert.NotEqual(t, match[1], user.Password)

	auth := newAuthService(t, svc)
	resp, err := auth.Login(ctx, LoginRequest{Email: "ada@example.com", Password: match[1]})
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.User.ID)

	claims, err := util.ParseJWT(resp.Token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.Trainer, claims.Role)
}

func TestCreateUser_RoleRules(t *testing.T) {
	ctx := context.Background()
	store := testutil.Store(t)
	super := testutil.User(t, store, model.SuperAdmin)
	admin := testutil.User(t, store, model.Admin)
	trainer := testutil.User(t, store, model.Trainer)
	svc := NewUserService(store, &recordingMailer{}, "Academy")
	req := func(email string, role model.UserRole) CreateUserRequest {
		return CreateUserRequest{FirstName: "New", LastName: "User", Email: email, Role: role}
	}

	tests := []struct {
		name   string
		caller *model.User
		req    CreateUserRequest
		kind   apperr.Kind
	}{
		{"trainer cannot create users", trainer, req("a@example.com", model.Trainee), apperr.KindForbidden},
		{"admin cannot create admins", admin, req("b@example.com", model.Admin), apperr.KindForbidden},
		{"admin cannot create super admins", admin, req("c@example.com", model.SuperAdmin), apperr.KindForbidden},
		{"unknown role", super, req("d@example.com", "owner"), apperr.KindValidation},
		{"email in use", admin, req(trainer.Email, model.Trainee), apperr.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateUser(ctx, tt.req, tt.caller.ID)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
		})
	}

	_, err := svc.CreateUser(ctx, req("e@example.com", model.Admin), super.ID)
	assert.NoError(t, err)
	_, err = svc.CreateUser(ctx, req("f@example.com", model.Trainee), admin.ID)
	assert.NoError(t, err)
}

func TestSearchUsers(t *testing.T) {
	ctx := context.Background()
	store := testutil.Store(t)
	admin := testutil.User(t, store, model.Admin)
	trainer := testutil.User(t, store, model.Trainer)
	testutil.User(t, store, model.Trainee)
	testutil.User(t, store, model.Trainee)
	svc := NewUserService(store, &recordingMailer{}, "Academy")

	_, err := svc.Search(ctx, &UserSearchCriteria{BaseSearchCriteria: BaseSearchCriteria{CurrentUserID: trainer.ID}})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	page, err := svc.Search(ctx, &UserSearchCriteria{BaseSearchCriteria: BaseSearchCriteria{CurrentUserID: admin.ID}, Role: model.Trainee})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.TotalCount)

	page, err = svc.Search(ctx, &UserSearchCriteria{BaseSearchCriteria: BaseSearchCriteria{CurrentUserID: admin.ID, Search: trainer.Email}})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, trainer.ID, page.Items[0].ID)
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	store := testutil.Store(t)
	admin := testutil.User(t, store, model.Admin)
	trainee := testutil.User(t, store, model.Trainee)
	other := testutil.User(t, store, model.Trainee)
	svc := NewUserService(store, &recordingMailer{}, "Academy")

	updated, err := svc.UpdateUser(ctx, trainee.ID, UpdateUserRequest{FirstName: "Grace", LastName: "Hopper"}, trainee.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", updated.FullName())

	_, err = svc.UpdateUser(ctx, trainee.ID, UpdateUserRequest{FirstName: "x", LastName: "y"}, other.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	_, err = svc.UpdateUser(ctx, trainee.ID, UpdateUserRequest{FirstName: "x", LastName: "y", Role: model.Trainer}, trainee.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	promoted, err := svc.UpdateUser(ctx, trainee.ID, UpdateUserRequest{FirstName: "Grace", LastName: "Hopper", Role: model.Trainer}, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Trainer, promoted.Role)
}

func TestChangeUserStatus(t *testing.T) {
	ctx := context.Background()
	store := testutil.Store(t)
	admin := testutil.User(t, store, model.Admin)
	trainee := testutil.User(t, store, model.Trainee)
	svc := NewUserService(store, &recordingMailer{}, "Academy")
	auth := newAuthService(t, svc)

	_, err := svc.ChangeStatus(ctx, admin.ID, false, admin.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	got, err := svc.ChangeStatus(ctx, trainee.ID, false, admin.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	_, err = auth.Login(ctx, LoginRequest{Email: trainee.Email, Password: testutil.Password})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = auth.CurrentUser(ctx, trainee.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = svc.ChangeStatus(ctx, trainee.ID, true, admin.ID)
	require.NoError(t, err)
	_, err = auth.Login(ctx, LoginRequest{Email: trainee.Email, Password: testutil.Password})
	assert.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	store := testutil.Store(t)
	trainee := testutil.User(t, store, model.Trainee)
	svc := NewUserService(store, &recordingMailer{}, "Academy")
	auth := newAuthService(t, svc)

	err := svc.ChangePassword(ctx, ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "n3w-passw0rd"}, trainee.ID)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	require.NoError(t, svc.ChangePassword(ctx, ChangePasswordRequest{CurrentPassword: testutil.Password, NewPassword: "n3w-passw0rd"}, trainee.ID))
	_, err = auth.Login(ctx, LoginRequest{Email: trainee.Email, Password: testutil.Password})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = auth.Login(ctx, LoginRequest{Email: trainee.Email, Password: "n3w-passw0rd"})
	assert.NoError(t, err)
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	store := testutil.Store(t)
	super := testutil.User(t, store, model.SuperAdmin)
	admin := testutil.User(t, store, model.Admin)
	trainee := testutil.User(t, store, model.Trainee)
	svc := NewUserService(store, &recordingMailer{}, "Academy")

	assert.True(t, apperr.Is(svc.Delete(ctx, trainee.ID, admin.ID), apperr.KindForbidden))
	assert.True(t, apperr.Is(svc.Delete(ctx, super.ID, super.ID), apperr.KindForbidden))
	require.NoError(t, svc.Delete(ctx, trainee.ID, super.ID))
	_, err := svc.GetByIdentity(ctx, trainee.ID, super.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestGeneratePassword(t *testing.T) {
	a, err := generatePassword(16)
	require.NoError(t, err)
	b, err := generatePassword(16)
	require.NoError(t, err)
	assert.Len(t, a, 16)
	assert.NotEqual(t, a, b)
}

func TestEnsureSuperAdmin(t *testing.T) {
	ctx := context.Background()
	store := testutil.Store(t)
	svc := NewUserService(store, &recordingMailer{}, "Academy")
	auth := newAuthService(t, svc)

	_, _, err := svc.EnsureSuperAdmin(ctx, "root@example.com", "short")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	user, created, err := svc.EnsureSuperAdmin(ctx, " Root@Example.com ", "bootstrap-pass")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, model.SuperAdmin, user.Role)
	assert.Equal(t, "root@example.com", user.Email)
	assert.Equal(t, user.ID, user.CreatedBy)

	_, err = auth.Login(ctx, LoginRequest{Email: "root@example.com", Password: "bootstrap-pass"})
	assert.NoError(t, err)

	again, created, err := svc.EnsureSuperAdmin(ctx, "other@example.com", "another-pass")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, user.ID, again.ID)
}
