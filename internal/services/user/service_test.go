package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"grubmarket/internal/auth"
	"grubmarket/internal/logger"
	"grubmarket/internal/models"
)

type fakeStore struct {
	byID          map[int64]*models.User
	byEmail       map[string]*models.User
	verifications map[string]int64
	nextID        int64

	createUserErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		byID:          make(map[int64]*models.User),
		byEmail:       make(map[string]*models.User),
		verifications: make(map[string]int64),
	}
}

func (f *fakeStore) CreateUser(_ context.Context, u *models.User) error {
	if f.createUserErr != nil {
		return f.createUserErr
	}
	f.nextID++
	u.ID = f.nextID
	cp := *u
	f.byID[u.ID] = &cp
	f.byEmail[u.Email] = &cp
	return nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) UpdateUser(_ context.Context, u *models.User) error {
	old, ok := f.byID[u.ID]
	if !ok {
		return ErrNotFound
	}
	delete(f.byEmail, old.Email)
	cp := *u
	f.byID[u.ID] = &cp
	f.byEmail[u.Email] = &cp
	return nil
}

func (f *fakeStore) UpsertVerification(_ context.Context, userID int64, code string) error {
	for c, id := range f.verifications {
		if id == userID {
			delete(f.verifications, c)
		}
	}
	f.verifications[code] = userID
	return nil
}

func (f *fakeStore) VerifyUserByCode(_ context.Context, code string) (int64, error) {
	userID, ok := f.verifications[code]
	if !ok {
		return 0, ErrVerificationNotFound
	}
	delete(f.verifications, code)
	u := f.byID[userID]
	u.Verified = true
	return userID, nil
}

// codeFor returns the pending verification code of a user.
func (f *fakeStore) codeFor(userID int64) string {
	for c, id := range f.verifications {
		if id == userID {
			return c
		}
	}
	return ""
}

func newTestService(store *fakeStore) *Service {
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	return NewService(store, tokens, logger.New("user-test"))
}

func TestCreateAccount(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	u, err := svc.CreateAccount(context.Background(), &models.CreateAccountRequest{
		Email:    "ana@example.com",
		Password: "correcthorse",
		Role:     "client",
	})
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	if u.ID == 0 {
		t.Error("user id not assigned")
	}
	if u.Role != models.RoleClient {
		t.Errorf("role = %s, want client", u.Role)
	}
	if u.Password == "correcthorse" {
		t.Error("password stored in plain text")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("correcthorse")) != nil {
		t.Error("stored hash does not verify the password")
	}
}

func TestCreateAccount_DuplicateEmail(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	req := &models.CreateAccountRequest{Email: "ana@example.com", Password: "correcthorse", Role: "client"}
	if _, err := svc.CreateAccount(context.Background(), req); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	if _, err := svc.CreateAccount(context.Background(), req); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("CreateAccount() error = %v, want ErrEmailTaken", err)
	}
}

func TestCreateAccount_DuplicateRace(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	// The email pre-check passes because the competing insert has not landed
	// yet; the store then reports the unique-index loss.
	store.createUserErr = ErrEmailTaken
	_, err := svc.CreateAccount(context.Background(), &models.CreateAccountRequest{
		Email: "ana@example.com", Password: "correcthorse", Role: "client",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("CreateAccount() error = %v, want ErrEmailTaken", err)
	}
}

func TestCreateAccount_Validation(t *testing.T) {
	svc := newTestService(newFakeStore())

	tests := []struct {
		name string
		req  models.CreateAccountRequest
	}{
		{"bad email", models.CreateAccountRequest{Email: "not-an-email", Password: "correcthorse", Role: "client"}},
		{"short password", models.CreateAccountRequest{Email: "ana@example.com", Password: "short", Role: "client"}},
		{"unknown role", models.CreateAccountRequest{Email: "ana@example.com", Password: "correcthorse", Role: "admin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateAccount(context.Background(), &tt.req); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("CreateAccount() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	if _, err := svc.CreateAccount(context.Background(), &models.CreateAccountRequest{
		Email: "ana@example.com", Password: "correcthorse", Role: "owner",
	}); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	resp, err := svc.Login(context.Background(), &models.LoginRequest{
		Email: "ana@example.com", Password: "correcthorse",
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.Token == "" {
		t.Fatal("empty token")
	}

	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	userID, err := tokens.Verify(resp.Token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if userID != 1 {
		t.Errorf("token subject = %d, want 1", userID)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	if _, err := svc.CreateAccount(context.Background(), &models.CreateAccountRequest{
		Email: "ana@example.com", Password: "correcthorse", Role: "client",
	}); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	tests := []struct {
		name string
		req  models.LoginRequest
	}{
		{"wrong password", models.LoginRequest{Email: "ana@example.com", Password: "wrongwrong"}},
		{"unknown email", models.LoginRequest{Email: "bob@example.com", Password: "correcthorse"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Login(context.Background(), &tt.req); !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestEditProfile(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	u, err := svc.CreateAccount(context.Background(), &models.CreateAccountRequest{
		Email: "ana@example.com", Password: "correcthorse", Role: "client",
	})
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	newEmail := "ana+new@example.com"
	newPassword := "battery-staple"
	updated, err := svc.EditProfile(context.Background(), u, &models.EditProfileRequest{
		Email:    &newEmail,
		Password: &newPassword,
	})
	if err != nil {
		t.Fatalf("EditProfile() error = %v", err)
	}
	if updated.Email != newEmail {
		t.Errorf("email = %s, want %s", updated.Email, newEmail)
	}

	if _, err := svc.Login(context.Background(), &models.LoginRequest{
		Email: newEmail, Password: newPassword,
	}); err != nil {
		t.Errorf("Login() with new credentials error = %v", err)
	}
	if _, err := svc.Login(context.Background(), &models.LoginRequest{
		Email: newEmail, Password: "correcthorse",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() with old password error = %v, want ErrInvalidCredentials", err)
	}
}

func TestEditProfile_EmailTaken(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	if _, err := svc.CreateAccount(context.Background(), &models.CreateAccountRequest{
		Email: "ana@example.com", Password: "correcthorse", Role: "client",
	}); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	bob, err := svc.CreateAccount(context.Background(), &models.CreateAccountRequest{
		Email: "bob@example.com", Password: "correcthorse", Role: "client",
	})
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	anaEmail := "ana@example.com"
	if _, err := svc.EditProfile(context.Background(), bob, &models.EditProfileRequest{Email: &anaEmail}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("EditProfile() error = %v, want ErrEmailTaken", err)
	}
}

func TestVerifyEmail(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	u, err := svc.CreateAccount(context.Background(), &models.CreateAccountRequest{
		Email: "ana@example.com", Password: "correcthorse", Role: "client",
	})
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	if u.Verified {
		t.Fatal("fresh account already verified")
	}

	code := store.codeFor(u.ID)
	if code == "" {
		t.Fatal("no verification code issued on signup")
	}
	if err := svc.VerifyEmail(context.Background(), code); err != nil {
		t.Fatalf("VerifyEmail() error = %v", err)
	}

	verified, err := svc.Profile(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if !verified.Verified {
		t.Error("account not verified after redeeming the code")
	}

	// Codes are single-use.
	if err := svc.VerifyEmail(context.Background(), code); !errors.Is(err, ErrVerificationNotFound) {
		t.Errorf("VerifyEmail() reuse error = %v, want ErrVerificationNotFound", err)
	}
}

func TestVerifyEmail_UnknownCode(t *testing.T) {
	svc := newTestService(newFakeStore())

	if err := svc.VerifyEmail(context.Background(), "no-such-code"); !errors.Is(err, ErrVerificationNotFound) {
		t.Fatalf("VerifyEmail() error = %v, want ErrVerificationNotFound", err)
	}
	if err := svc.VerifyEmail(context.Background(), ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("VerifyEmail() error = %v, want ErrInvalidInput", err)
	}
}

func TestEditProfile_EmailChangeResetsVerification(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	u, err := svc.CreateAccount(context.Background(), &models.CreateAccountRequest{
		Email: "ana@example.com", Password: "correcthorse", Role: "client",
	})
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	if err := svc.VerifyEmail(context.Background(), store.codeFor(u.ID)); err != nil {
		t.Fatalf("VerifyEmail() error = %v", err)
	}

	newEmail := "ana+new@example.com"
	updated, err := svc.EditProfile(context.Background(), u, &models.EditProfileRequest{Email: &newEmail})
	if err != nil {
		t.Fatalf("EditProfile() error = %v", err)
	}
	if updated.Verified {
		t.Error("verified flag survived the email change")
	}
	if store.codeFor(u.ID) == "" {
		t.Error("no fresh verification code issued for the new email")
	}
}

func TestEditProfile_Empty(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	u, err := svc.CreateAccount(context.Background(), &models.CreateAccountRequest{
		Email: "ana@example.com", Password: "correcthorse", Role: "client",
	})
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	if _, err := svc.EditProfile(context.Background(), u, &models.EditProfileRequest{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("EditProfile() error = %v, want ErrInvalidInput", err)
	}
}
