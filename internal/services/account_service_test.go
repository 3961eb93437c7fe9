package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shiftwise/internal/access"
	"shiftwise/internal/models/request_models"
	"shiftwise/internal/repositories"
	"shiftwise/pkg/memcache"
	"shiftwise/pkg/utils"
)

type accountFixture struct {
	svc      *AccountService
	accounts repositories.AccountRepository
	profiles repositories.ProfileRepository
	mail     *recordingMail
	geocoder *staticGeocoder
	tokens   *utils.TokenIssuer
}

func newAccountFixture(t *testing.T) *accountFixture {
	t.Helper()
	db := newTestDB(t)
	f := &accountFixture{
		accounts: repositories.NewAccountRepository(db),
		profiles: repositories.NewProfileRepository(db),
		mail:     &recordingMail{},
		geocoder: &staticGeocoder{result: &GeocodeResult{Latitude: 53.8, Longitude: -1.55}},
		tokens:   utils.NewTokenIssuer("test-secret", time.Hour),
	}
	f.svc = NewAccountService(db, f.accounts, f.profiles, f.tokens, memcache.NewInMemoryStore(),
		f.mail, f.geocoder, discardLogger()).(*AccountService)
	return f
}

func (f *accountFixture) register(t *testing.T, username, email string) uuid.UUID {
	t.Helper()
	account, err := f.svc.CreateAccount(context.Background(), request_models.SignUpRequest{
		Username: username,
		Email:    email,
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	return account.ID
}

func TestCreateAccountAndLogin(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	id := f.register(t, "nina", "Nina@Example.com")

	profile, err := f.profiles.FindByAccountID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, profile)

	token, err := f.svc.Login(ctx, request_models.LoginRequest{Email: "nina@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)
	claims, err := f.tokens.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.AccountID)

	_, err = f.svc.Login(ctx, request_models.LoginRequest{Email: "nina@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)

	_, err = f.svc.CreateAccount(ctx, request_models.SignUpRequest{Username: "other", Email: "nina@example.com", Password: "longenough"})
	assert.ErrorIs(t, err, utils.ErrEmailAlreadyExists)

	_, err = f.svc.CreateAccount(ctx, request_models.SignUpRequest{Username: "nina", Email: "new@example.com", Password: "longenough"})
	assert.ErrorIs(t, err, utils.ErrUsernameTaken)
}

func TestPasswordReset(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	f.register(t, "rob", "rob@example.com")

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "rob@example.com"))
	token := f.mail.resets["rob@example.com"]
	require.NotEmpty(t, token)

	require.NoError(t, f.svc.ResetPassword(ctx, request_models.ResetPasswordRequest{Token: token, NewPassword: "brand-new-pass"}))
	_, err := f.svc.Login(ctx, request_models.LoginRequest{Email: "rob@example.com", Password: "brand-new-pass"})
	assert.NoError(t, err)

	err = f.svc.ResetPassword(ctx, request_models.ResetPasswordRequest{Token: token, NewPassword: "again-again"})
	assert.ErrorIs(t, err, utils.ErrInvalidResetToken)
}

func TestPasswordResetUnknownEmailSendsNothing(t *testing.T) {
	f := newAccountFixture(t)
	require.NoError(t, f.svc.RequestPasswordReset(context.Background(), "ghost@example.com"))
	assert.Empty(t, f.mail.resets)
}

func TestPasswordResetMailFailure(t *testing.T) {
	f := newAccountFixture(t)
	f.register(t, "rob", "rob@example.com")
	f.mail.err = errors.New("smtp down")

	err := f.svc.RequestPasswordReset(context.Background(), "rob@example.com")
	assert.ErrorIs(t, err, utils.ErrMailProvider)
}

func TestUpdateProfileGeocodesChangedAddress(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	id := access.Identity{AccountID: f.register(t, "wendy", "wendy@example.com"), Authenticated: true}

	profile, err := f.svc.UpdateProfile(ctx, id, request_models.UpdateProfileRequest{
		AddressLine1: "1 Park Row",
		City:         "Leeds",
		Postcode:     "LS1 5HN",
		TravelRadius: 15,
	})
	require.NoError(t, err)
	require.True(t, profile.HasCoordinates())
	assert.Equal(t, 53.8, *profile.Latitude)
	assert.Equal(t, 1, f.geocoder.calls)

	// Same address, coordinates already known: no lookup.
	_, err = f.svc.UpdateProfile(ctx, id, request_models.UpdateProfileRequest{
		AddressLine1: "1 Park Row",
		City:         "Leeds",
		Postcode:     "LS1 5HN",
		TravelRadius: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.geocoder.calls)

	lat, lng := 51.5, -0.12
	profile, err = f.svc.UpdateProfile(ctx, id, request_models.UpdateProfileRequest{
		City:      "London",
		Latitude:  &lat,
		Longitude: &lng,
	})
	require.NoError(t, err)
	assert.Equal(t, 51.5, *profile.Latitude)
	assert.Equal(t, 1, f.geocoder.calls)
}

func TestUpdateProfileGeocodeFailureClearsCoordinates(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	id := access.Identity{AccountID: f.register(t, "max", "max@example.com"), Authenticated: true}
	f.geocoder.result = nil
	f.geocoder.err = utils.ErrGeocodingProvider

	profile, err := f.svc.UpdateProfile(ctx, id, request_models.UpdateProfileRequest{City: "Nowhere"})
	require.NoError(t, err)
	assert.False(t, profile.HasCoordinates())
}

func TestSetGroups(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	target := f.register(t, "sue", "sue@example.com")
	admin := access.Identity{AccountID: uuid.New(), Authenticated: true, Superuser: true}

	account, err := f.svc.SetGroups(ctx, admin, target, []string{"Agency Staff", "Agency Managers"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []access.Group{access.GroupAgencyStaff, access.GroupAgencyManagers}, account.GroupNames())

	_, err = f.svc.SetGroups(ctx, admin, target, []string{"Wizards"})
	assert.ErrorIs(t, err, utils.ErrValidation)

	_, err = f.svc.SetGroups(ctx, access.Identity{Authenticated: true}, target, []string{"Agency Staff"})
	assert.ErrorIs(t, err, utils.ErrForbidden)

	_, err = f.svc.SetGroups(ctx, admin, uuid.New(), nil)
	assert.ErrorIs(t, err, utils.ErrAccountNotFound)
}

func TestJoinAddress(t *testing.T) {
	assert.Equal(t, "1 Park Row, Leeds, LS1 5HN", joinAddress("1 Park Row", " ", "Leeds", "", "LS1 5HN"))
	assert.Equal(t, "", joinAddress("", "  "))
}
