package types

// Status is a type for the lifecycle status of a row in the database.
// It is orthogonal to domain statuses like SubscriptionStatus and is used
// to soft-delete and to scope queries to live rows only.
type Status string

const (
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
	StatusDeleted   Status = "deleted"
)
