package actions

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/orbtao/connectify/backend/internal/models"
	"github.com/orbtao/connectify/backend/internal/repositories"
	apperrors "github.com/orbtao/connectify/backend/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// Principal is the identity resolved from an access token.
type Principal struct {
	UserID    string
	SessionID string
}

var usernameStrip = regexp.MustCompile(`[^a-z0-9_.]`)

// Register creates a local account and signs it in.
func (a *Actions) Register(ctx context.Context, req models.RegisterRequest, userAgent string) (*AuthResult, error) {
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := a.validate(req); err != nil {
		return nil, err
	}

	if _, err := a.store.Users.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, apperrors.Conflict("Email is already registered")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, a.storeErr(err, "")
	}
	if _, err := a.store.Users.GetUserByUsername(ctx, req.Username); err == nil {
		return nil, apperrors.Conflict("Username is already taken")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, a.storeErr(err, "")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Downstream(err, "Failed to hash password")
	}

	user := &models.User{
		Name:      req.Name,
		Username:  req.Username,
		Email:     req.Email,
		Password:  string(hashedPassword),
		Role:      models.RoleUser,
		Status:    models.UserActive,
		CreatedAt: a.now(),
	}
	if err := a.store.Users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.Conflict("Username or email is already registered")
		}
		return nil, a.storeErr(err, "")
	}
	a.log.Info("user registered", "user", user.ID.Hex())
	return a.startSession(ctx, user, userAgent)
}

// Login accepts either an email or a username as identifier.
func (a *Actions) Login(ctx context.Context, req models.LoginRequest, userAgent string) (*AuthResult, error) {
	if err := a.validate(req); err != nil {
		return nil, err
	}
	identifier := strings.ToLower(strings.TrimSpace(req.Identifier))

	var user *models.User
	var err error
	if strings.Contains(identifier, "@") {
		user, err = a.store.Users.GetUserByEmail(ctx, identifier)
	} else {
		user, err = a.store.Users.GetUserByUsername(ctx, identifier)
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.Unauthenticated("Invalid credentials")
	}
	if err != nil {
		return nil, a.storeErr(err, "")
	}
	if user.Password == "" {
		return nil, apperrors.Unauthenticated("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperrors.Unauthenticated("Invalid credentials")
	}
	if user.IsSuspended() {
		return nil, apperrors.Forbidden("Your account is suspended")
	}
	return a.startSession(ctx, user, userAgent)
}

// LoginWithFirebase exchanges a Firebase ID token for a local session. The
// account is found by firebase uid, then by email, and created otherwise.
func (a *Actions) LoginWithFirebase(ctx context.Context, idToken, userAgent string) (*AuthResult, error) {
	if a.firebase == nil {
		return nil, apperrors.Downstream(errors.New("firebase not configured"), "Firebase sign-in is not available")
	}
	if strings.TrimSpace(idToken) == "" {
		return nil, apperrors.Validation("idToken is required")
	}
	identity, err := a.firebase.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, apperrors.Unauthenticated("Invalid Firebase ID token")
	}

	user, err := a.store.Users.GetUserByFirebaseUID(ctx, identity.UID)
	switch {
	case err == nil:
	case errors.Is(err, repositories.ErrNotFound):
		user, err = a.linkOrCreateFirebaseUser(ctx, identity.UID, identity.Email, identity.Name)
		if err != nil {
			return nil, err
		}
	default:
		return nil, a.storeErr(err, "")
	}

	if user.IsSuspended() {
		return nil, apperrors.Forbidden("Your account is suspended")
	}
	return a.startSession(ctx, user, userAgent)
}

func (a *Actions) linkOrCreateFirebaseUser(ctx context.Context, uid, email, name string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperrors.Validation("Firebase account has no email")
	}

	user, err := a.store.Users.GetUserByEmail(ctx, email)
	if err == nil {
		if err := a.store.Users.SetFirebaseUID(ctx, user.ID, uid); err != nil {
			return nil, a.storeErr(err, "")
		}
		user.FirebaseUID = uid
		return user, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, a.storeErr(err, "")
	}

	if name == "" {
		name = strings.Split(email, "@")[0]
	}
	user = &models.User{
		Name:        name,
		Username:    a.freeUsername(ctx, email),
		Email:       email,
		FirebaseUID: uid,
		Role:        models.RoleUser,
		Status:      models.UserActive,
		CreatedAt:   a.now(),
	}
	if err := a.store.Users.CreateUser(ctx, user); err != nil {
		return nil, a.storeErr(err, "")
	}
	a.log.Info("user created from firebase", "user", user.ID.Hex())
	return user, nil
}

// freeUsername derives a valid unused username from the local part of email.
func (a *Actions) freeUsername(ctx context.Context, email string) string {
	base := usernameStrip.ReplaceAllString(strings.ToLower(strings.Split(email, "@")[0]), "")
	if len(base) > 22 {
		base = base[:22]
	}
	for len(base) < 3 {
		base += "_"
	}
	if _, err := a.store.Users.GetUserByUsername(ctx, base); errors.Is(err, repositories.ErrNotFound) {
		return base
	}
	return base + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

func (a *Actions) startSession(ctx context.Context, user *models.User, userAgent string) (*AuthResult, error) {
	now := a.now()
	if len(userAgent) > 255 {
		userAgent = userAgent[:255]
	}
	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID.Hex(),
		UserAgent: userAgent,
		ExpiresAt: now.Add(a.tokens.TTL()),
		CreatedAt: now,
	}
	if err := a.store.Sessions.CreateSession(ctx, session); err != nil {
		return nil, a.storeErr(err, "")
	}
	token, err := a.tokens.Issue(session.UserID, session.ID, now)
	if err != nil {
		return nil, apperrors.Downstream(err, "Failed to generate token")
	}
	return &AuthResult{User: user, Token: token, SessionID: session.ID, ExpiresAt: session.ExpiresAt}, nil
}

// Logout revokes the session behind the caller's token.
func (a *Actions) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperrors.Unauthenticated("You must be logged in")
	}
	return a.storeErr(a.store.Sessions.RevokeSession(ctx, sessionID, a.now()), "")
}

// Authenticate resolves an access token to the principal it was issued for.
// The backing session must exist, belong to the same user and be active.
func (a *Actions) Authenticate(ctx context.Context, token string) (*Principal, error) {
	unauthenticated := apperrors.Unauthenticated("You must be logged in")
	if token == "" {
		return nil, unauthenticated
	}
	claims, err := a.tokens.Parse(token)
	if err != nil {
		return nil, unauthenticated
	}
	session, err := a.store.Sessions.GetSession(ctx, claims.ID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, unauthenticated
	}
	if err != nil {
		return nil, a.storeErr(err, "")
	}
	if session.UserID != claims.UserID || !session.ActiveAt(a.now()) {
		return nil, unauthenticated
	}
	return &Principal{UserID: claims.UserID, SessionID: session.ID}, nil
}
