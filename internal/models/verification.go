package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VerificationCategory string

const (
	CategoryCreator      VerificationCategory = "creator"
	CategoryBusiness     VerificationCategory = "business"
	CategoryPublicFigure VerificationCategory = "public_figure"
	CategoryOther        VerificationCategory = "other"
)

func (c VerificationCategory) Valid() bool {
	switch c {
	case CategoryCreator, CategoryBusiness, CategoryPublicFigure, CategoryOther:
		return true
	}
	return false
}

// MinVerificationLinks is the number of supporting links a request needs.
const MinVerificationLinks = 3

type VerificationRequest struct {
	ID           primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	UserID       primitive.ObjectID   `json:"userId" bson:"user_id"`
	Links        []string             `json:"links" bson:"links"`
	About        string               `json:"about" bson:"about"`
	Category     VerificationCategory `json:"category" bson:"category"`
	GovernmentID string               `json:"governmentId" bson:"government_id"`
	Status       VerificationStatus   `json:"status" bson:"status"`
	ReviewedBy   primitive.ObjectID   `json:"reviewedBy,omitzero" bson:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time           `json:"reviewedAt,omitempty" bson:"reviewed_at,omitempty"`
	CreatedAt    time.Time            `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time            `json:"updatedAt" bson:"updated_at"`
}

type SubmitVerificationRequest struct {
	Links    []string `json:"links" form:"links"`
	About    string   `json:"about" form:"about"`
	Category string   `json:"category" form:"category"`
}

type ReviewVerificationRequest struct {
	Decision string `json:"decision" form:"decision" validate:"required,oneof=approve reject"`
}
