// Package ckberr defines the daemon's error taxonomy as sentinel errors,
// grouped by the propagation policy in spec §7: transport and capacity
// errors are absorbed by their caller, filesystem and parse errors never
// propagate past the operation that produced them, and fatal errors only
// ever surface during startup.
package ckberr

import "errors"

// Transport errors: a USB read/write failed. Policy: close the affected
// slot, preserve its storage entry, keep running.
var (
	ErrTransport  = errors.New("usb transport error")
	ErrNoDevice   = errors.New("device not present")
	ErrDeviceGone = errors.New("device disconnected during operation")
)

// Filesystem errors: device-node directory/FIFO creation failed.
var (
	ErrNodeCreate = errors.New("failed to create device node")
	ErrFIFOCreate = errors.New("failed to create command fifo")
)

// Capacity errors: a bounded structure is full. Policy: return to the
// caller, which silently drops the request.
var (
	ErrQueueFull     = errors.New("write queue full")
	ErrModeCapacity  = errors.New("profile mode capacity reached")
	ErrMacroCapacity = errors.New("macro capacity reached")
)

// Lookup/state errors used internally by the model and interpreter.
var (
	ErrUnknownSlot    = errors.New("no such device slot")
	ErrSlotOccupied   = errors.New("device slot already occupied")
	ErrNoFreeSlot     = errors.New("no free device slot")
	ErrUnknownStorage = errors.New("no storage entry for serial")
	ErrInvalidMode    = errors.New("mode index out of range")
)

// Fatal errors: only ever returned from startup.
var (
	ErrBackendInit = errors.New("usb backend failed to initialize")
	ErrInvalidFPS  = errors.New("fps must be positive")
)
