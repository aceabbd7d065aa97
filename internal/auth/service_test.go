package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"cafe-agent/internal/domain"
	"cafe-agent/internal/repository"
)

type mockCustomers struct {
	created  *domain.Customer
	existing map[string]domain.Customer
	err      error
}

func (m *mockCustomers) CreateCustomer(_ context.Context, name, email, phone, passwordHash string) (domain.Customer, error) {
	if m.err != nil {
		return domain.Customer{}, m.err
	}
	if _, ok := m.existing[email]; ok {
		return domain.Customer{}, repository.ErrCustomerExists
	}
	cust := domain.Customer{CustomerID: "cust-1", Name: name, Email: email, Phone: phone, PasswordHash: passwordHash}
	m.created = &cust
	return cust, nil
}

func (m *mockCustomers) GetCustomerByEmail(_ context.Context, email string) (domain.Customer, error) {
	if m.err != nil {
		return domain.Customer{}, m.err
	}
	cust, ok := m.existing[email]
	if !ok {
		return domain.Customer{}, repository.ErrCustomerNotFound
	}
	return cust, nil
}

func storeWithUser(email, password string) *mockCustomers {
	return &mockCustomers{existing: map[string]domain.Customer{
		email: {CustomerID: "cust-1", Name: "Ada", Email: email, PasswordHash: HashPassword(password)},
	}}
}

func TestHashPassword(t *testing.T) {
	require.Equal(t, HashPassword("secret"), HashPassword("secret"))
	require.NotEqual(t, HashPassword("secret"), HashPassword("Secret"))
	require.Len(t, HashPassword("secret"), 64)
}

func TestSignup_HappyPath(t *testing.T) {
	store := &mockCustomers{}
	svc := NewService(store)

	cust, err := svc.Signup(context.Background(), "Ada", "ada@example.com", "555-0100", "secret")
	require.NoError(t, err)
	require.Equal(t, "cust-1", cust.CustomerID)
	require.Equal(t, HashPassword("secret"), store.created.PasswordHash, "password must be stored hashed")
}

func TestSignup_Validation(t *testing.T) {
	svc := NewService(&mockCustomers{})

	_, err := svc.Signup(context.Background(), "", "ada@example.com", "", "secret")
	require.ErrorIs(t, err, ErrMissingFields)

	_, err = svc.Signup(context.Background(), "Ada", " ", "", "secret")
	require.ErrorIs(t, err, ErrMissingFields)

	_, err = svc.Signup(context.Background(), "Ada", "ada@example.com", "", "")
	require.ErrorIs(t, err, ErrMissingFields)
}

func TestSignup_DuplicatePassesThrough(t *testing.T) {
	svc := NewService(storeWithUser("ada@example.com", "secret"))
	_, err := svc.Signup(context.Background(), "Ada", "ada@example.com", "", "secret")
	require.ErrorIs(t, err, repository.ErrCustomerExists)
}

func TestSignup_Unavailable(t *testing.T) {
	svc := NewService(nil)
	_, err := svc.Signup(context.Background(), "Ada", "ada@example.com", "", "secret")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestLogin_HappyPath(t *testing.T) {
	svc := NewService(storeWithUser("ada@example.com", "secret"))

	token, id, err := svc.Login(context.Background(), "ada@example.com", "secret")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, "cust-1", id.CustomerID)
	require.Equal(t, "Ada", id.Name)

	resolved, ok := svc.FromToken(token)
	require.True(t, ok)
	require.Equal(t, id, resolved)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := NewService(storeWithUser("ada@example.com", "secret"))
	_, _, err := svc.Login(context.Background(), "ada@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := NewService(&mockCustomers{existing: map[string]domain.Customer{}})
	_, _, err := svc.Login(context.Background(), "nobody@example.com", "secret")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_StoreErrorIsNotCredentials(t *testing.T) {
	svc := NewService(&mockCustomers{err: errors.New("dynamodb down")})
	_, _, err := svc.Login(context.Background(), "ada@example.com", "secret")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogout(t *testing.T) {
	svc := NewService(storeWithUser("ada@example.com", "secret"))
	token, _, err := svc.Login(context.Background(), "ada@example.com", "secret")
	require.NoError(t, err)

	svc.Logout(token)
	_, ok := svc.FromToken(token)
	require.False(t, ok)

	// Unknown tokens are a no-op.
	svc.Logout("missing")
}

func TestFromToken_Empty(t *testing.T) {
	svc := NewService(nil)
	_, ok := svc.FromToken("")
	require.False(t, ok)
}

func TestTokensAreUnique(t *testing.T) {
	svc := NewService(storeWithUser("ada@example.com", "secret"))
	t1, _, err := svc.Login(context.Background(), "ada@example.com", "secret")
	require.NoError(t, err)
	t2, _, err := svc.Login(context.Background(), "ada@example.com", "secret")
	require.NoError(t, err)
	require.NotEqual(t, t1, t2)
}
