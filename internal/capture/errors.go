package capture

import "errors"

var (
	ErrUnsupported      = errors.New("camera is not supported on this device")
	ErrInsecureContext  = errors.New("camera requires a secure connection")
	ErrPermissionDenied = errors.New("camera access was denied")
	ErrDeviceBusy       = errors.New("camera is already in use by another application")
	ErrNoDevice         = errors.New("no camera found")
	ErrOverconstrained  = errors.New("no camera satisfies the requested facing mode")

	ErrNotReady     = errors.New("camera is still loading")
	ErrEncodeFailed = errors.New("failed to capture photo")
)
