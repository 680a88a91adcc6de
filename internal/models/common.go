package models

const (
	// MwUserIDKey is the echo context key the bearer middleware stores the
	// authenticated user's ID under.
	MwUserIDKey = "userID"
)
