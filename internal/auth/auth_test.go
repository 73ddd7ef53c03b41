package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"crypto_wallet/internal/db/dbtest"
	"crypto_wallet/internal/domain"
	"crypto_wallet/internal/mailer"
	"crypto_wallet/internal/store"
	"crypto_wallet/internal/utils"
)

const secret = "test-secret"

type outbox struct {
	sent []mailer.Message
	err  error
}

func (o *outbox) Send(_ context.Context, msg mailer.Message) error {
	if o.err != nil {
		return o.err
	}
	o.sent = append(o.sent, msg)
	return nil
}

// token pulls the verification token out of the last sent link.
func (o *outbox) token(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, o.sent)
	text := o.sent[len(o.sent)-1].Text
	_, after, ok := strings.Cut(text, "/verify-email/")
	require.True(t, ok)
	tok, _, _ := strings.Cut(after, "\n")
	return tok
}

func newService(t *testing.T) (*Service, *store.Store, *outbox) {
	t.Helper()
	st := store.New(dbtest.New(t))
	box := &outbox{}
	svc, err := New(st, box, Options{
		Secret:      secret,
		TokenTTL:    time.Hour,
		FrontendURL: "https://app.example.com",
		BcryptCost:  bcrypt.MinCost,
	})
	require.NoError(t, err)
	return svc, st, box
}

func register(t *testing.T, svc *Service) *domain.User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "A@x.com", Password: "secret123"})
	require.NoError(t, err)
	return u
}

func TestRegister(t *testing.T) {
	svc, st, box := newService(t)
	ctx := context.Background()

	u := register(t, svc)
	assert.Equal(t, "a@x.com", u.Email)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.False(t, u.EmailVerified)
	assert.NotEqual(t, "secret123", u.PasswordHash)

	wallets, err := st.ListWallets(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, wallets, 2)
	for _, w := range wallets {
		assert.True(t, w.BalanceCoin.IsZero())
		assert.True(t, w.BalanceUSD.IsZero())
	}

	require.Len(t, box.sent, 1)
	assert.Equal(t, "a@x.com", box.sent[0].To)
	assert.Contains(t, box.sent[0].HTML, "https://app.example.com/verify-email/")

	_, err = svc.Register(ctx, RegisterInput{Name: "B", Email: "a@X.com ", Password: "other"})
	assert.ErrorIs(t, err, store.ErrEmailTaken)
}

func TestRegister_Role(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	admin, err := svc.Register(ctx, RegisterInput{Name: "R", Email: "r@x.com", Password: "pw", Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)

	other, err := svc.Register(ctx, RegisterInput{Name: "S", Email: "s@x.com", Password: "pw", Role: "root"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, other.Role)
}

func TestRegister_DeliveryFailure(t *testing.T) {
	svc, st, box := newService(t)
	box.err = errors.New("mailgun down")

	u, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@x.com", Password: "pw"})
	assert.ErrorIs(t, err, ErrEmailDelivery)
	require.NotNil(t, u)

	_, err = st.FindUserByEmail(context.Background(), "a@x.com")
	assert.NoError(t, err)
}

func TestLoginFlow(t *testing.T) {
	svc, _, box := newService(t)
	ctx := context.Background()
	u := register(t, svc)

	_, _, err := svc.Login(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrEmailNotVerified, "unverified accounts are blocked before the password check")

	_, _, err = svc.Login(ctx, "a@x.com", "secret123")
	assert.ErrorIs(t, err, ErrEmailNotVerified)

	assert.Equal(t, VerifySuccess, svc.Verify(ctx, box.token(t)))
	assert.Equal(t, VerifySuccess, svc.Verify(ctx, box.token(t)), "verifying twice is harmless")

	_, _, err = svc.Login(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@x.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	token, user, err := svc.Login(ctx, " A@X.COM", "secret123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, user.ID)
	assert.True(t, user.EmailVerified)

	claims, err := utils.ParseJWT(token, secret, utils.PurposeSession)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Email)
}

func TestVerify_Outcomes(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	ghost, err := utils.GenerateJWT(uuid.New(), "ghost@x.com", utils.PurposeVerify, secret, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, VerifyInvalid, svc.Verify(ctx, ghost))

	session, err := utils.GenerateJWT(uuid.New(), "a@x.com", utils.PurposeSession, secret, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, VerifyFailed, svc.Verify(ctx, session))

	assert.Equal(t, VerifyFailed, svc.Verify(ctx, "garbage"))
}

func TestProfile(t *testing.T) {
	svc, _, _ := newService(t)
	u := register(t, svc)

	got, wallets, err := svc.Profile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
	assert.Len(t, wallets, 2)

	_, _, err = svc.Profile(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAuthorizeTarget(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	plain := register(t, svc)
	admin, err := svc.Register(ctx, RegisterInput{Name: "R", Email: "r@x.com", Password: "pw", Role: "admin"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		caller  uuid.UUID
		target  string
		want    uuid.UUID
		wantErr error
	}{
		{name: "no target", caller: plain.ID, target: "", want: plain.ID},
		{name: "self", caller: plain.ID, target: plain.ID.String(), want: plain.ID},
		{name: "user on other", caller: plain.ID, target: admin.ID.String(), wantErr: ErrForbidden},
		{name: "admin on other", caller: admin.ID, target: plain.ID.String(), want: plain.ID},
		{name: "admin on missing", caller: admin.ID, target: uuid.NewString(), wantErr: store.ErrNotFound},
		{name: "malformed", caller: admin.ID, target: "42", wantErr: ErrInvalidTarget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.AuthorizeTarget(ctx, tt.caller, tt.target)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
