package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account stored in MongoDB. Followers and following are sets of
// user references; the relation is directed.
type User struct {
	ID          primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Name        string               `json:"name" bson:"name"`
	Username    string               `json:"username" bson:"username"`
	Email       string               `json:"email" bson:"email"`
	Password    string               `json:"-" bson:"password,omitempty"`
	FirebaseUID string               `json:"-" bson:"firebase_uid,omitempty"`
	Bio         string               `json:"bio" bson:"bio"`
	Location    string               `json:"location" bson:"location"`
	Website     string               `json:"website" bson:"website"`
	Avatar      string               `json:"avatar" bson:"avatar"`
	Role        Role                 `json:"role" bson:"role"`
	Status      UserStatus           `json:"status" bson:"status"`
	IsVerified  bool                 `json:"isVerified" bson:"is_verified"`
	Followers   []primitive.ObjectID `json:"-" bson:"followers"`
	Following   []primitive.ObjectID `json:"-" bson:"following"`
	CreatedAt   time.Time            `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time            `json:"updatedAt" bson:"updated_at"`
}

// UserCompact is the author card embedded in posts, comments and notifications.
type UserCompact struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Username   string `json:"username"`
	Avatar     string `json:"avatar"`
	IsVerified bool   `json:"isVerified"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:         u.ID.Hex(),
		Name:       u.Name,
		Username:   u.Username,
		Avatar:     u.Avatar,
		IsVerified: u.IsVerified,
	}
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsSuspended() bool {
	return u.Status == UserSuspended
}

// IsFollowing reports whether u follows id.
func (u *User) IsFollowing(id primitive.ObjectID) bool {
	return containsID(u.Following, id)
}

// ProfileUpdate holds the profile fields a user may change. Nil means unchanged.
type ProfileUpdate struct {
	Name     *string
	Bio      *string
	Location *string
	Website  *string
	Avatar   *string
}

// UserFilter narrows admin user listings.
type UserFilter struct {
	Status UserStatus
	Query  string
}

type RegisterRequest struct {
	Name     string `json:"name" form:"name" validate:"required,min=2,max=50"`
	Username string `json:"username" form:"username" validate:"required,username"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Identifier string `json:"identifier" form:"identifier" validate:"required"`
	Password   string `json:"password" form:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name     *string `json:"name,omitempty" form:"name" validate:"omitempty,min=2,max=50"`
	Bio      *string `json:"bio,omitempty" form:"bio" validate:"omitempty,max=160"`
	Location *string `json:"location,omitempty" form:"location" validate:"omitempty,max=60"`
	Website  *string `json:"website,omitempty" form:"website" validate:"omitempty,url"`
	Avatar   *string `json:"avatar,omitempty" form:"avatar" validate:"omitempty,url"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims.
// RegisteredClaims.ID carries the session id.
type JwtCustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
