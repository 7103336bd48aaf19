package grab

import "errors"

var (
	ErrNoStrategy          = errors.New("grab: strategy is required")
	ErrNoAnchors           = errors.New("grab: at least one anchor is required")
	ErrNoTrackedObject     = errors.New("grab: tracking mode needs a tracked counterpart")
	ErrUnpairedAnchor      = errors.New("grab: two-handed strategy needs an anchor with a secondary pair")
	ErrMissingCollaborator = errors.New("grab: missing host collaborator")
)
