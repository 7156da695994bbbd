package models

// Role is the privilege level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// PostStatus is the moderation state of a post.
type PostStatus string

const (
	PostActive  PostStatus = "active"
	PostHidden  PostStatus = "hidden"
	PostFlagged PostStatus = "flagged"
)

func (s PostStatus) Valid() bool {
	switch s {
	case PostActive, PostHidden, PostFlagged:
		return true
	}
	return false
}

// StoryStatus is the moderation state of a story. Time based expiry is
// evaluated separately from this field.
type StoryStatus string

const (
	StoryActive  StoryStatus = "active"
	StoryExpired StoryStatus = "expired"
	StoryFlagged StoryStatus = "flagged"
)

func (s StoryStatus) Valid() bool {
	switch s {
	case StoryActive, StoryExpired, StoryFlagged:
		return true
	}
	return false
}

// UserStatus is the stored moderation state of an account. It is independent
// of the verification badge.
type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserSuspended UserStatus = "suspended"
	UserPending   UserStatus = "pending"
)

func (s UserStatus) Valid() bool {
	switch s {
	case UserActive, UserSuspended, UserPending:
		return true
	}
	return false
}

// VerificationStatus tracks a verification request. Only pending may change.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationPending, VerificationApproved, VerificationRejected:
		return true
	}
	return false
}
