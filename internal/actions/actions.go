// Package actions holds one method per user-facing operation. Every method
// re-derives the caller from the store, checks authorization, performs the
// write or query and returns plain serializable records.
package actions

import (
	"context"
	"errors"
	"time"

	"github.com/orbtao/connectify/backend/internal/auth"
	"github.com/orbtao/connectify/backend/internal/models"
	"github.com/orbtao/connectify/backend/internal/repositories"
	"github.com/orbtao/connectify/backend/pkg/config"
	apperrors "github.com/orbtao/connectify/backend/pkg/errors"
	"github.com/orbtao/connectify/backend/pkg/firebase"
	"github.com/orbtao/connectify/backend/pkg/logger"
	"github.com/orbtao/connectify/backend/pkg/storage"
	"github.com/orbtao/connectify/backend/validators"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/fx"
)

const defaultPageSize = 10

// Relay pushes best-effort events to the sockets joined to a room. Rooms are
// user ids.
type Relay interface {
	Emit(room, event string, data any)
}

// FirebaseVerifier checks a Firebase ID token.
type FirebaseVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebase.Identity, error)
}

// Clock returns the current time.
type Clock func() time.Time

type Opts struct {
	fx.In

	Store    *repositories.Store
	Tokens   *auth.Manager
	Logger   logger.Logger
	Config   *config.Config   `optional:"true"`
	Uploader storage.Uploader `optional:"true"`
	Firebase FirebaseVerifier `optional:"true"`
	Relay    Relay            `optional:"true"`
	Clock    Clock            `optional:"true"`
}

type Actions struct {
	store     *repositories.Store
	tokens    *auth.Manager
	log       logger.Logger
	uploader  storage.Uploader
	firebase  FirebaseVerifier
	relay     Relay
	clock     Clock
	validator *validators.Validator
	pageSize  int
}

func New(opts Opts) *Actions {
	a := &Actions{
		store:     opts.Store,
		tokens:    opts.Tokens,
		log:       opts.Logger,
		uploader:  opts.Uploader,
		firebase:  opts.Firebase,
		relay:     opts.Relay,
		clock:     opts.Clock,
		validator: validators.NewValidator(),
		pageSize:  defaultPageSize,
	}
	if a.log == nil {
		a.log = logger.Discard()
	}
	a.log = a.log.WithComponent("actions")
	if a.uploader == nil {
		a.uploader = storage.Disabled{}
	}
	if a.clock == nil {
		a.clock = time.Now
	}
	if opts.Config != nil && opts.Config.App.FeedPageSize > 0 {
		a.pageSize = opts.Config.App.FeedPageSize
	}
	return a
}

func (a *Actions) now() time.Time {
	return a.clock()
}

// Now exposes the action clock to the transport layer.
func (a *Actions) Now() time.Time {
	return a.clock()
}

func (a *Actions) validate(req any) error {
	if err := a.validator.Validate(req); err != nil {
		return apperrors.Validation(err.Error())
	}
	return nil
}

// requireUser loads the caller. A suspended account may not act.
func (a *Actions) requireUser(ctx context.Context, callerID string) (*models.User, error) {
	id, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		return nil, apperrors.Unauthenticated("You must be logged in")
	}
	user, err := a.store.Users.GetUserByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.Unauthenticated("You must be logged in")
	}
	if err != nil {
		return nil, a.storeErr(err, "")
	}
	if user.IsSuspended() {
		return nil, apperrors.Forbidden("Your account is suspended")
	}
	return user, nil
}

// requireAdmin loads the caller fresh and checks the admin role.
func (a *Actions) requireAdmin(ctx context.Context, callerID string) (*models.User, error) {
	user, err := a.requireUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, apperrors.Forbidden("Not authorized")
	}
	return user, nil
}

// parseID turns a hex id into an ObjectID. A malformed id cannot address
// anything, so it reports notFound.
func parseID(hex, notFound string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperrors.NotFound(notFound)
	}
	return id, nil
}

// storeErr maps a repository error onto the boundary taxonomy.
func (a *Actions) storeErr(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case notFound != "" && errors.Is(err, repositories.ErrNotFound):
		return apperrors.NotFound(notFound)
	case errors.Is(err, repositories.ErrDuplicate):
		return apperrors.Conflict("Already exists")
	default:
		a.log.Error("store operation failed", "error", err)
		return apperrors.Downstream(err, "Something went wrong")
	}
}

// Page is the pagination metadata returned with list results.
type Page struct {
	CurrentPage  int  `json:"currentPage"`
	ItemsPerPage int  `json:"itemsPerPage"`
	HasNextPage  bool `json:"hasNextPage"`
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// window returns skip and a limit one larger than the page so the caller can
// tell whether another page exists.
func (a *Actions) window(page int) (skip, limit int64) {
	return int64((page - 1) * a.pageSize), int64(a.pageSize + 1)
}

// trimPage drops the extra lookahead item and reports whether it was there.
func trimPage[T any](items []T, size int) ([]T, bool) {
	if len(items) > size {
		return items[:size], true
	}
	return items, false
}

func (a *Actions) emit(room primitive.ObjectID, event string, data any) {
	if a.relay == nil {
		return
	}
	a.relay.Emit(room.Hex(), event, data)
}
