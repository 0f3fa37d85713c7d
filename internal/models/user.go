package models

// User represents a registered user account.
//
// Account management (login, invites, demo sessions) lives outside this
// service; the engine only needs a stable ID and a display name.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// DisplayName is the name shown in transfer instructions.
	DisplayName string

	// CreatedAt is the Unix timestamp when the user account was created.
	CreatedAt int64
}

// Member is a user as seen from inside one group.
type Member struct {
	// UserID references User.ID.
	UserID string

	// DisplayName is copied from the user record.
	DisplayName string
}
