package actions

import (
	"context"
	"errors"
	"strings"

	"github.com/orbtao/connectify/backend/internal/models"
	"github.com/orbtao/connectify/backend/internal/repositories"
	apperrors "github.com/orbtao/connectify/backend/pkg/errors"
	"github.com/orbtao/connectify/backend/pkg/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubmitVerification files a verification request. Fields are checked in
// order and the first missing one is reported. A user may only have one
// pending request.
func (a *Actions) SubmitVerification(ctx context.Context, callerID string, req models.SubmitVerificationRequest, document *storage.File) (*models.VerificationRequest, error) {
	user, err := a.requireUser(ctx, callerID)
	if err != nil {
		return nil, err
	}

	links := make([]string, 0, len(req.Links))
	for _, l := range req.Links {
		if l = strings.TrimSpace(l); l != "" {
			links = append(links, l)
		}
	}
	about := strings.TrimSpace(req.About)
	category := models.VerificationCategory(strings.TrimSpace(req.Category))

	switch {
	case len(links) < models.MinVerificationLinks:
		return nil, apperrors.Validation("At least 3 links are required")
	case about == "":
		return nil, apperrors.Validation("About is required")
	case category == "":
		return nil, apperrors.Validation("Category is required")
	case !category.Valid():
		return nil, apperrors.Validation("Invalid category")
	case document == nil || len(document.Data) == 0:
		return nil, apperrors.Validation("Government ID document is required")
	}

	pending, err := a.store.Verifications.HasPending(ctx, user.ID)
	if err != nil {
		return nil, a.storeErr(err, "")
	}
	if pending {
		return nil, apperrors.Conflict("You already have a pending verification request")
	}

	url, err := a.upload(ctx, "verification", document)
	if err != nil {
		return nil, err
	}

	vr := &models.VerificationRequest{
		UserID:       user.ID,
		Links:        links,
		About:        about,
		Category:     category,
		GovernmentID: url,
		CreatedAt:    a.now(),
	}
	if err := a.store.Verifications.CreateRequest(ctx, vr); err != nil {
		return nil, a.storeErr(err, "")
	}
	a.log.Info("verification submitted", "user", user.ID.Hex(), "request", vr.ID.Hex())
	return vr, nil
}

// MyVerification returns the caller's latest request, or nil when there is none.
func (a *Actions) MyVerification(ctx context.Context, callerID string) (*models.VerificationRequest, error) {
	user, err := a.requireUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	vr, err := a.store.Verifications.GetLatestByUserID(ctx, user.ID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, a.storeErr(err, "")
	}
	return vr, nil
}

// VerificationView is a request with its requester card.
type VerificationView struct {
	models.VerificationRequest
	User models.UserCompact `json:"user"`
}

func (a *Actions) ListVerifications(ctx context.Context, callerID, status string, page int) ([]VerificationView, Page, error) {
	if _, err := a.requireAdmin(ctx, callerID); err != nil {
		return nil, Page{}, err
	}
	st := models.VerificationStatus(status)
	if st != "" && !st.Valid() {
		return nil, Page{}, apperrors.Validation("Invalid status")
	}
	page = normalizePage(page)
	skip, limit := a.window(page)
	list, _, err := a.store.Verifications.List(ctx, st, skip, limit)
	if err != nil {
		return nil, Page{}, a.storeErr(err, "")
	}
	list, more := trimPage(list, a.pageSize)

	ids := make([]primitive.ObjectID, len(list))
	for i := range list {
		ids[i] = list[i].UserID
	}
	cards, err := a.authors(ctx, ids)
	if err != nil {
		return nil, Page{}, err
	}
	out := make([]VerificationView, len(list))
	for i := range list {
		out[i] = VerificationView{VerificationRequest: list[i], User: cards[list[i].UserID]}
	}
	return out, Page{CurrentPage: page, ItemsPerPage: a.pageSize, HasNextPage: more}, nil
}

// ReviewVerification resolves a pending request. Approval marks the requester
// verified.
func (a *Actions) ReviewVerification(ctx context.Context, callerID, requestID string, approve bool) (*models.VerificationRequest, error) {
	admin, err := a.requireAdmin(ctx, callerID)
	if err != nil {
		return nil, err
	}
	id, err := parseID(requestID, "Verification request not found")
	if err != nil {
		return nil, err
	}
	vr, err := a.store.Verifications.GetByID(ctx, id)
	if err != nil {
		return nil, a.storeErr(err, "Verification request not found")
	}

	status := models.VerificationRejected
	if approve {
		status = models.VerificationApproved
	}
	err = a.store.Verifications.Resolve(ctx, id, status, admin.ID, a.now())
	if errors.Is(err, repositories.ErrConflict) {
		return nil, apperrors.Conflict("Verification request was already reviewed")
	}
	if err != nil {
		return nil, a.storeErr(err, "Verification request not found")
	}
	if approve {
		if err := a.store.Users.SetVerified(ctx, vr.UserID, true); err != nil {
			return nil, a.storeErr(err, "User not found")
		}
	}
	a.log.Info("verification reviewed", "request", id.Hex(), "status", status, "admin", admin.ID.Hex())
	updated, err := a.store.Verifications.GetByID(ctx, id)
	if err != nil {
		return nil, a.storeErr(err, "Verification request not found")
	}
	return updated, nil
}
