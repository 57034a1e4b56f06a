package errs

import "errors"

var (
	// ErrInvalidReactionKey indicates a reaction key outside the preset vocabulary.
	ErrInvalidReactionKey = errors.New("invalid reaction key")
	// ErrInvalidActorToken indicates a malformed reactor token.
	ErrInvalidActorToken = errors.New("invalid actor token")
	// ErrValidation indicates a request payload that failed validation.
	ErrValidation = errors.New("validation failed")
	// ErrCommentNotFound indicates that a comment was not found.
	ErrCommentNotFound = errors.New("comment not found")
	// ErrInvalidResourceType indicates a view resource type other than post or home.
	ErrInvalidResourceType = errors.New("invalid resource type")
	// ErrRateKeyTooLong indicates a rate-limit key exceeding the stored column size.
	ErrRateKeyTooLong = errors.New("rate key too long")
)
