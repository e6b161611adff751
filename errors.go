package flashnest

import (
	"errors"

	"github.com/flashnest/flashnest-go/internal/aigen"
	sdkerrors "github.com/flashnest/flashnest-go/internal/errors"
	"github.com/flashnest/flashnest-go/internal/extract"
	"github.com/flashnest/flashnest-go/internal/shardqueue"
	"github.com/flashnest/flashnest-go/internal/types"
)

// ErrBackPressure is returned when the client's internal shard queue is full.
var ErrBackPressure = errors.New("back-pressure (queue full)")

// IsBackPressure reports whether err is a back-pressure error.
func IsBackPressure(err error) bool {
	var qf *shardqueue.QueueFullError
	return errors.Is(err, ErrBackPressure) || errors.As(err, &qf)
}

// Re-export shared SDK errors so callers compare against single symbols.
var (
	// ErrNotFound: the backend reported the deck or flashcard as absent.
	ErrNotFound = types.ErrNotFound

	// ErrNoSession: a cache operation ran before SetSession / CurrentUser.
	ErrNoSession = types.ErrNoSession

	// ErrInvalidInput: a generation request carried no topic, text, or file.
	ErrInvalidInput = types.ErrInvalidInput

	// ErrInvalidCount: the requested flashcard count is outside [1,50].
	ErrInvalidCount = types.ErrInvalidCount

	// ErrNoCandidates: a save was attempted with nothing savable.
	ErrNoCandidates = types.ErrNoCandidates

	// ErrUnsupportedFile: the attachment's type cannot be read for text.
	ErrUnsupportedFile = extract.ErrUnsupportedType
)

// ParseError reports an unrecoverable generation reply; Raw carries the
// model's original text for diagnostics.
type ParseError = aigen.ParseError

// IsParseError reports whether err is a generation ParseError and returns it.
func IsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsTimeout reports whether err was caused by a deadline, distinguishing
// the CRUD timeout from the longer generation timeout at the call site.
func IsTimeout(err error) bool { return sdkerrors.IsTimeout(err) }
