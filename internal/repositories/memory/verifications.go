package memory

import (
	"context"
	"slices"
	"time"

	"github.com/orbtao/connectify/backend/internal/models"
	"github.com/orbtao/connectify/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type verificationRepo struct{ db *DB }

func copyVerification(v *models.VerificationRequest) *models.VerificationRequest {
	c := *v
	c.Links = slices.Clone(v.Links)
	if v.ReviewedAt != nil {
		at := *v.ReviewedAt
		c.ReviewedAt = &at
	}
	return &c
}

func (r *verificationRepo) CreateRequest(ctx context.Context, req *models.VerificationRequest) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	req.ID = primitive.NewObjectID()
	req.CreatedAt = stamp(req.CreatedAt)
	req.UpdatedAt = req.CreatedAt
	req.Status = models.VerificationPending
	r.db.verifications[req.ID] = copyVerification(req)
	return nil
}

func (r *verificationRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.VerificationRequest, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	v, ok := r.db.verifications[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return copyVerification(v), nil
}

func (r *verificationRepo) filter(match func(*models.VerificationRequest) bool) []models.VerificationRequest {
	r.db.mu.RLock()
	out := []models.VerificationRequest{}
	for _, v := range r.db.verifications {
		if match(v) {
			out = append(out, *copyVerification(v))
		}
	}
	r.db.mu.RUnlock()

	slices.SortFunc(out, func(a, b models.VerificationRequest) int { return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID) })
	return out
}

func (r *verificationRepo) GetLatestByUserID(ctx context.Context, userID primitive.ObjectID) (*models.VerificationRequest, error) {
	out := r.filter(func(v *models.VerificationRequest) bool { return v.UserID == userID })
	if len(out) == 0 {
		return nil, repositories.ErrNotFound
	}
	return &out[0], nil
}

func (r *verificationRepo) HasPending(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	out := r.filter(func(v *models.VerificationRequest) bool {
		return v.UserID == userID && v.Status == models.VerificationPending
	})
	return len(out) > 0, nil
}

func (r *verificationRepo) List(ctx context.Context, status models.VerificationStatus, skip, limit int64) ([]models.VerificationRequest, int64, error) {
	out := r.filter(func(v *models.VerificationRequest) bool { return status == "" || v.Status == status })
	return page(out, skip, limit), int64(len(out)), nil
}

func (r *verificationRepo) Resolve(ctx context.Context, id primitive.ObjectID, status models.VerificationStatus, reviewer primitive.ObjectID, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	v, ok := r.db.verifications[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if v.Status != models.VerificationPending {
		return repositories.ErrConflict
	}
	v.Status = status
	v.ReviewedBy = reviewer
	v.ReviewedAt = &at
	v.UpdatedAt = at
	return nil
}

func (r *verificationRepo) CountPending(ctx context.Context) (int64, error) {
	out := r.filter(func(v *models.VerificationRequest) bool { return v.Status == models.VerificationPending })
	return int64(len(out)), nil
}
