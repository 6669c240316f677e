package session

import (
	"errors"

	"github.com/miropolcevpro/paver-ar-web/internal/contour"
	"github.com/miropolcevpro/paver-ar-web/internal/lockedframe"
	"github.com/miropolcevpro/paver-ar-web/internal/material"
)

var (
	// ErrUnsupported is returned by Start when the platform cannot hit-test.
	ErrUnsupported = errors.New("AR hit-test is not supported on this device")
	// ErrNotRunning is returned when stepping a session that is not started.
	ErrNotRunning = errors.New("session is not running")

	// ErrAimAtFloor is returned when calibrating without a valid reticle.
	ErrAimAtFloor = lockedframe.ErrAimAtFloor
	// ErrFloorNotLocked is returned for taps before calibration.
	ErrFloorNotLocked = errors.New("calibrate the floor first")
	// ErrReticleInvalid is returned for taps while the reticle is invalid.
	ErrReticleInvalid = errors.New("reticle is not on the floor")

	ErrTooFewPoints  = contour.ErrTooFewPoints
	ErrContourClosed = contour.ErrContourClosed
	ErrNotClosed     = contour.ErrNotClosed

	// ErrUnknownLayout is returned for a layout action with an unknown name.
	ErrUnknownLayout = material.ErrUnknownLayout
)

var userErrors = []error{
	ErrAimAtFloor,
	ErrFloorNotLocked,
	ErrReticleInvalid,
	ErrTooFewPoints,
	ErrContourClosed,
	ErrNotClosed,
	ErrUnknownLayout,
}

// IsUserError reports whether err is a precondition the user can fix.
// Such errors leave all state unchanged.
func IsUserError(err error) bool {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
