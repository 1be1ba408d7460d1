package embeddedmaps

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrRepositoryRequired indicates a renderer was built without a repository
	ErrRepositoryRequired = errors.New("repository is required")

	// ErrPostNotFound indicates a post was not found
	ErrPostNotFound = errors.New("post not found")

	// ErrInvalidPostID indicates an id that cannot name a post
	ErrInvalidPostID = errors.New("invalid post id")
)

// RenderError wraps a collaborator or hook failure during rendering.
// The wrapped error is left untouched.
type RenderError struct {
	SubjectID PostID
	Op        string
	Err       error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("map operation %s failed for post %d: %v", e.Op, e.SubjectID, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
