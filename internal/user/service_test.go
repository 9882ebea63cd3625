package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeRepository struct {
	users  map[int]*User
	nextID int
	stats  Stats
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{users: make(map[int]*User), nextID: 1}
}

func (f *fakeRepository) GetById(_ context.Context, id int) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepository) find(match func(*User) bool) (*User, error) {
	for _, u := range f.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeRepository) GetByUsername(_ context.Context, username string) (*User, error) {
	return f.find(func(u *User) bool { return u.Username == username })
}

func (f *fakeRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	return f.find(func(u *User) bool { return u.Email == email })
}

func (f *fakeRepository) Create(_ context.Context, user *User) error {
	user.ID = f.nextID
	f.nextID++
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeRepository) Update(_ context.Context, user *User) error {
	if _, ok := f.users[user.ID]; !ok {
		return ErrUserNotFound
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeRepository) UpdateLastLogin(_ context.Context, id int) error {
	if _, ok := f.users[id]; !ok {
		return ErrUserNotFound
	}
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, id int) error {
	if _, ok := f.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeRepository) Stats(_ context.Context, _ int) (*Stats, error) {
	stats := f.stats
	return &stats, nil
}

func strPtr(s string) *string {
	return &s
}

func seedUser(t *testing.T, svc *ServiceImpl) *User {
	t.Helper()
	u, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "haru",
		Email:    "haru@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	return u
}

func TestCreateUser(t *testing.T) {
	svc := NewServiceImpl(newFakeRepository())
	u := seedUser(t, svc)

	assert.Equal(t, 1, u.ID)
	assert.Equal(t, "haru", *u.Nickname, "nickname defaults to username")
	assert.Equal(t, DefaultProvider, u.DefaultProvider)
	assert.Equal(t, DefaultModel, u.DefaultModel)
	assert.True(t, u.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")))

	tests := []struct {
		name    string
		req     CreateUserRequest
		wantErr error
	}{
		{name: "duplicate username", req: CreateUserRequest{Username: "haru", Email: "other@example.com", Password: "secret1"}, wantErr: ErrUsernameTaken},
		{name: "duplicate email", req: CreateUserRequest{Username: "other", Email: "haru@example.com", Password: "secret1"}, wantErr: ErrEmailTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateUser(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	withNick, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "aki", Email: "aki@example.com", Password: "secret1", Nickname: strPtr("Aki"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Aki", *withNick.Nickname)
}

func TestGetUserByLogin(t *testing.T) {
	svc := NewServiceImpl(newFakeRepository())
	seeded := seedUser(t, svc)

	for _, login := range []string{"haru", "haru@example.com"} {
		u, err := svc.GetUserByLogin(context.Background(), login)
		require.NoError(t, err, login)
		assert.Equal(t, seeded.ID, u.ID)
	}

	_, err := svc.GetUserByLogin(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateProfileTouchesOnlyGivenFields(t *testing.T) {
	svc := NewServiceImpl(newFakeRepository())
	u := seedUser(t, svc)
	temperature := 1.5

	profile, err := svc.UpdateProfile(context.Background(), u.ID, UpdateProfileRequest{
		Avatar:      strPtr("https://img.example.com/a.png"),
		Temperature: &temperature,
	})
	require.NoError(t, err)
	assert.Equal(t, "haru", *profile.Nickname)
	assert.Equal(t, "https://img.example.com/a.png", *profile.Avatar)
	assert.InDelta(t, 1.5, profile.Temperature, 1e-9)
	assert.Equal(t, DefaultModel, profile.DefaultModel)

	_, err = svc.UpdateProfile(context.Background(), 99, UpdateProfileRequest{})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestChangePassword(t *testing.T) {
	svc := NewServiceImpl(newFakeRepository())
	u := seedUser(t, svc)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, u.ID, ChangePasswordRequest{OldPassword: "wrong", NewPassword: "secret2"})
	assert.ErrorIs(t, err, ErrWrongPassword)

	require.NoError(t, svc.ChangePassword(ctx, u.ID, ChangePasswordRequest{OldPassword: "secret1", NewPassword: "secret2"}))
	stored, err := svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret2")))
}

func TestAPIKeys(t *testing.T) {
	svc := NewServiceImpl(newFakeRepository())
	u := seedUser(t, svc)
	ctx := context.Background()

	keys, err := svc.GetAPIKeys(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, &APIKeysResponse{}, keys)

	require.NoError(t, svc.UpdateAPIKeys(ctx, u.ID, UpdateAPIKeysRequest{GeminiAPIKey: strPtr("AIzaSyExampleKey1234")}))
	require.NoError(t, svc.UpdateAPIKeys(ctx, u.ID, UpdateAPIKeysRequest{OpenAIAPIKey: strPtr("sk-short")}))

	keys, err = svc.GetAPIKeys(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "AIza***1234", *keys.GeminiAPIKey)
	assert.Equal(t, "***", *keys.OpenAIAPIKey)
	assert.True(t, keys.HasGeminiKey)
	assert.True(t, keys.HasOpenAIKey)
}

func TestMaskKey(t *testing.T) {
	tests := []struct {
		name string
		key  *string
		want *string
	}{
		{name: "unset", key: nil, want: nil},
		{name: "empty", key: strPtr(""), want: nil},
		{name: "eight chars", key: strPtr("12345678"), want: strPtr("***")},
		{name: "nine chars", key: strPtr("123456789"), want: strPtr("1234***6789")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskKey(tt.key))
		})
	}
}

func TestDeleteAccount(t *testing.T) {
	svc := NewServiceImpl(newFakeRepository())
	u := seedUser(t, svc)
	ctx := context.Background()

	require.NoError(t, svc.DeleteAccount(ctx, u.ID))
	assert.ErrorIs(t, svc.DeleteAccount(ctx, u.ID), ErrUserNotFound)
}
