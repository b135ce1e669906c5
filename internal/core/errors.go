package core

import "errors"

var (
	// ErrNoReviews is returned when a batch contains no usable review
	ErrNoReviews = errors.New("no reviews to analyze")
	// ErrEmptyContent is returned when a reply is requested for blank review text
	ErrEmptyContent = errors.New("review content is empty")
	// ErrReplyFailed is returned when the text generator could not produce a reply
	ErrReplyFailed = errors.New("reply generation failed")
	// ErrEmptyReply is returned when the text generator answered with blank text
	ErrEmptyReply = errors.New("empty reply from text generator")
	// ErrUnknownStyle is returned for a reply style outside the supported set
	ErrUnknownStyle = errors.New("unknown reply style")
	// ErrMalformedResponse is returned when a model answer cannot be parsed
	ErrMalformedResponse = errors.New("malformed model response")
)
