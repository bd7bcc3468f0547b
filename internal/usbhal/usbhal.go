// Package usbhal defines the narrow USB transport collaborator the daemon
// depends on, trimmed down from the full host-controller HAL in
// ardnew-softusb's host/hal package: ckbd never drives root-hub ports or
// enumerates addresses itself (that belongs to the kernel's usbfs/hidraw
// layer on the real target), it only needs per-device control and
// interrupt transfers plus hotplug notification. Everything here is the
// external collaborator named in spec §2: swapped out in tests for the
// reference backend in this package.
package usbhal

import (
	"context"
	"errors"
)

// ErrUnknownDevice is returned by backend methods addressed to a
// DeviceID the backend has no record of (already unplugged, or never
// issued).
var ErrUnknownDevice = errors.New("usbhal: unknown device")

// DeviceID identifies one physical USB device for the lifetime of its
// plugged-in session. It is opaque to callers; backends assign it however
// suits their enumeration strategy.
type DeviceID uint32

// Descriptor is the subset of a USB device's identity the daemon needs to
// decide which device-class driver applies and how to label its node
// (spec §3 Device slot: model tag, serial).
type Descriptor struct {
	VendorID  uint16
	ProductID uint16
	Serial    string
}

// HotplugEvent reports a device arriving or leaving.
type HotplugEvent struct {
	Device     DeviceID
	Descriptor Descriptor
	Arrived    bool
}

// Backend is the USB transport collaborator. A real implementation talks
// to hidraw/usbfs; the reference backend in this package simulates a
// keyboard for tests without a kernel or real hardware.
type Backend interface {
	// Init prepares the backend for use. Init may be called at most once.
	Init(ctx context.Context) error

	// Close releases all backend resources. After Close, no other method
	// may be called.
	Close() error

	// Poll returns hotplug events observed since the last call. It must
	// not block; the frame loop calls it once per serviced tick (spec §5).
	Poll() []HotplugEvent

	// ControlTransfer issues a vendor control transfer carrying a single
	// firmware command packet (spec §3 Message). data is exactly
	// model.MessageSize bytes.
	ControlTransfer(ctx context.Context, dev DeviceID, data []byte) error

	// InterruptIn reads one pending interrupt-in report into data,
	// returning the number of bytes filled. It must not block; ok is
	// false when no report is pending.
	InterruptIn(dev DeviceID, data []byte) (n int, ok bool)

	// SetIndicators uploads the device's indicator LED byte (num/caps/
	// scroll lock state, spec §3 Device slot).
	SetIndicators(dev DeviceID, leds byte) error
}
