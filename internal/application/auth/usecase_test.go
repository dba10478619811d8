package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-inventario/internal/application/dto"
	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/pkg/jwt"
)

type memUsers map[string]*entity.User

func (m memUsers) Create(_ context.Context, u *entity.User) error {
	m[u.ID] = u
	return nil
}

func (m memUsers) GetByID(_ context.Context, id string) (*entity.User, error) { return m[id], nil }

func (m memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range m {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func newAuth() (*AuthUseCase, memUsers) {
	users := memUsers{}
	return NewAuthUseCase(users, JWTConfig{Secret: "s3cret", ExpMinutes: 5, Issuer: "pos"}), users
}

func TestRegisterAndLogin(t *testing.T) {
	uc, _ := newAuth()
	ctx := context.Background()

	user, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: " Caja1@Tienda.co ", Password: "secreto123"})
	require.NoError(t, err)
	assert.Equal(t, "caja1@tienda.co", user.Email)
	assert.Equal(t, entity.RoleCajero, user.Role)

	resp, err := uc.Login(ctx, dto.LoginRequest{Email: "caja1@tienda.co", Password: "secreto123"})
	require.NoError(t, err)
	claims, err := jwt.Parse("s3cret", resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, entity.RoleCajero, claims.Role)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	uc, _ := newAuth()
	ctx := context.Background()
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "a@b.co", Password: "secreto123", Role: entity.RoleAdmin})
	require.NoError(t, err)

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "a@b.co", Password: "otro12345"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestLogin_Failures(t *testing.T) {
	uc, users := newAuth()
	ctx := context.Background()
	user, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "a@b.co", Password: "secreto123"})
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "a@b.co", Password: "mal"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "x@b.co", Password: "secreto123"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	users[user.ID].Status = entity.UserInactive
	_, err = uc.Login(ctx, dto.LoginRequest{Email: "a@b.co", Password: "secreto123"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
