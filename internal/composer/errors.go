package composer

import (
	"errors"
	"fmt"
)

// Failure kinds. A generation failure always wraps exactly one of them.
var (
	ErrInput    = errors.New("invalid input")
	ErrAsset    = errors.New("asset unavailable")
	ErrEncoding = errors.New("scan code encoding failed")
	ErrLayout   = errors.New("layout failed")
	ErrStream   = errors.New("document stream failed")
)

// Generation stages reported in GenerationError.
const (
	StageEncode     = "encode"
	StageInit       = "init"
	StageMasthead   = "masthead"
	StageContact    = "contact"
	StageSummary    = "summary"
	StageTours      = "tours"
	StageFooter     = "footer"
	StageMasterlist = "masterlist"
	StageTourGuests = "tour-guests"
	StageTerms      = "terms"
	StageSection    = "section"
	StageFinalize   = "finalize"
	StageCollect    = "collect"
)

// GenerationError reports which document and which stage failed.
// errors.Is matches both its Kind and the underlying cause.
type GenerationError struct {
	Reference string
	Stage     string
	Kind      error
	Err       error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate %s: %s: %v: %v", e.Reference, e.Stage, e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func fail(ref, stage string, kind, err error) error {
	return &GenerationError{Reference: ref, Stage: stage, Kind: kind, Err: err}
}
