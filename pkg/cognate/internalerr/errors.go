package internalerr

import "errors"

// Sentinel errors shared by the scoring and search packages.
var (
	ErrNotFound               = errors.New("not found")
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrInvalidConfig          = errors.New("invalid configuration")
	ErrTranslationUnavailable = errors.New("translation unavailable")
	ErrGeneration             = errors.New("generation failed")
	ErrRanking                = errors.New("ranking failed")
	ErrNoCandidates           = errors.New("no candidates")
)
