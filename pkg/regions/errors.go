package regions

import "errors"

var (
	// ErrInvalidArgument is returned for nil nodes or collections passed to
	// the registry and the collection adapter.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMissingCollaborator is returned by Init when the style loader or the
	// rule extractor is not configured.
	ErrMissingCollaborator = errors.New("missing collaborator")
)
