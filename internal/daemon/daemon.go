// Package daemon implements the top-level frame loop, hotplug lifecycle,
// and shutdown sequencing described in spec §5 and §6. It deliberately
// does not use goroutines or mutexes to guard device-table state: the
// frame loop is the only writer, matching the spec's single-threaded
// cooperative model (spec §9 Design Note) rather than the teacher's
// goroutine-per-subsystem style. The only goroutine started here is the
// one-shot signal watcher, which communicates via a channel rather than
// touching shared state directly.
package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardnew/ckbd/internal/devtable"
	"github.com/ardnew/ckbd/internal/inputsynth"
	"github.com/ardnew/ckbd/internal/interp"
	"github.com/ardnew/ckbd/internal/model"
	"github.com/ardnew/ckbd/internal/node"
	"github.com/ardnew/ckbd/internal/usbhal"
	"github.com/ardnew/ckbd/pkg/ckberr"
	"github.com/ardnew/ckbd/pkg/linux/usbid"
	"github.com/ardnew/ckbd/pkg/logx"
)

// DefaultFPS is the frame rate used when the caller does not override it
// (spec §5).
const DefaultFPS = 60

// ticksPerFrame is how many loop iterations make up one "frame" in the
// upstream sense: servicing work (hotplug, FIFOs, indicators) only runs
// once every ticksPerFrame ticks, matching the "5 packets per frame"
// queue-draining behavior in the original loop.
const ticksPerFrame = 5

// Daemon owns the device table and drives the frame loop.
type Daemon struct {
	Backend usbhal.Backend
	Nodes   *node.Manager
	Table   *devtable.Table
	Storage *model.StorageTable

	// Names optionally resolves vendor/product names for attach logging.
	// Nil is fine; callers that want friendlier log lines set it once
	// after loading the system's usb.ids database.
	Names *usbid.Database

	fps     int
	newSink func(slot int, desc usbhal.Descriptor) inputsynth.Sink

	tick   int
	stopCh chan struct{}
}

// New returns a daemon wired to backend and rooted at the given node
// manager. fps > 60 is capped to DefaultFPS without logging; fps <= 0 is a
// fatal configuration error (spec §4.5/§6: 0 or negative is rejected,
// not silently coerced).
func New(backend usbhal.Backend, nodes *node.Manager, fps int, newSink func(int, usbhal.Descriptor) inputsynth.Sink) (*Daemon, error) {
	if fps <= 0 {
		return nil, ckberr.ErrInvalidFPS
	}
	if fps > DefaultFPS {
		fps = DefaultFPS
	}
	if newSink == nil {
		newSink = func(int, usbhal.Descriptor) inputsynth.Sink { return inputsynth.NewReference() }
	}
	return &Daemon{
		Backend: backend,
		Nodes:   nodes,
		Table:   devtable.NewTable(),
		Storage: model.NewStorageTable(),
		fps:     fps,
		newSink: newSink,
		stopCh:  make(chan struct{}),
	}, nil
}

// Interval returns the sleep duration between ticks that achieves fps
// frames per second at ticksPerFrame ticks per frame.
func (d *Daemon) Interval() time.Duration {
	return time.Second / time.Duration(d.fps) / ticksPerFrame
}

// Run drives the frame loop until ctx is cancelled or Stop is called. It
// installs its own SIGINT/SIGTERM/SIGQUIT handling on top of ctx
// cancellation so either source triggers the same shutdown path.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			logx.Info(logx.ComponentDaemon, "caught signal, shutting down", "signal", sig)
			cancel()
		case <-d.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	ticker := time.NewTicker(d.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return d.Shutdown()
		case <-ticker.C:
			d.tickOnce()
		}
	}
}

// tickOnce runs one frame-loop iteration: servicing work (hotplug,
// command FIFOs, indicators) only on the first tick of every frame, and
// draining each device's write queue on every tick (spec §5).
func (d *Daemon) tickOnce() {
	serviced := d.tick == 0

	if serviced {
		d.pollHotplug()
		d.serviceFIFOs()
	}

	for i := 1; i < d.Table.Len(); i++ {
		slot := d.Table.Get(i)
		if !slot.Occupied {
			continue
		}
		d.drainQueue(slot)
		if serviced {
			d.updateIndicators(slot)
		}
		d.pollInterruptIn(slot)
	}

	d.tick = (d.tick + 1) % ticksPerFrame
}

func (d *Daemon) pollHotplug() {
	for _, ev := range d.Backend.Poll() {
		if ev.Arrived {
			d.attach(ev)
		} else {
			d.detachByDevice(ev.Device)
		}
	}
}

func (d *Daemon) attach(ev usbhal.HotplugEvent) {
	i, err := d.Table.FreeSlot()
	if err != nil {
		logx.Error(logx.ComponentDaemon, "device table full", "serial", ev.Descriptor.Serial, "err", err)
		return
	}
	storage := d.Storage.GetOrCreate(ev.Descriptor.Serial)
	nodeHandle, err := d.Nodes.Create(i)
	if err != nil {
		logx.Error(logx.ComponentDaemon, "device node create failed", "serial", ev.Descriptor.Serial, "err", err)
		return
	}
	sink := d.newSink(i, ev.Descriptor)
	productName := d.productName(ev.Descriptor)
	if err := d.Table.Attach(i, ev.Descriptor, ev.Device, productName, storage, sink, nodeHandle); err != nil {
		logx.Error(logx.ComponentDaemon, "device attach failed", "serial", ev.Descriptor.Serial, "err", err)
		nodeHandle.Close()
		return
	}
	_ = nodeHandle.WriteSerial(ev.Descriptor.Serial)
	if productName != "" {
		_ = nodeHandle.WriteModel(productName)
	}
	d.writeConnected()
	logx.Info(logx.ComponentDaemon, "device attached", "slot", i, "serial", ev.Descriptor.Serial, "model", productName)
}

func (d *Daemon) detachByDevice(dev usbhal.DeviceID) {
	for i := 1; i < d.Table.Len(); i++ {
		slot := d.Table.Get(i)
		if slot.Occupied && slot.Device == dev {
			d.closeSlot(slot)
			_ = d.Table.Detach(i)
			d.writeConnected()
			logx.Info(logx.ComponentDaemon, "device detached", "slot", i)
			return
		}
	}
}

// writeConnected rebuilds the root pseudo-device's connected listing from
// the device table's current live slots.
func (d *Daemon) writeConnected() {
	entries := d.Table.ConnectedEntries()
	nodeEntries := make([]node.ConnectedEntry, len(entries))
	for i, e := range entries {
		nodeEntries[i] = node.ConnectedEntry{Index: e.Index, Serial: e.Serial, Name: e.Name}
	}
	_ = d.Nodes.WriteConnected(nodeEntries)
}

// productName resolves a human-readable product name for desc via Names,
// if one was loaded. It returns "" when Names is nil or has no entry.
func (d *Daemon) productName(desc usbhal.Descriptor) string {
	if d.Names == nil {
		return ""
	}
	return d.Names.LookupProduct(desc.VendorID, desc.ProductID)
}

// closeSlot releases a slot's node and input-synthesis handles. The
// storage entry is left alone (spec §3 Lifecycle: settings survive
// unplug).
func (d *Daemon) closeSlot(slot *devtable.Slot) {
	if slot.Input != nil {
		_ = slot.Input.Close()
	}
	if slot.Node != nil {
		_ = slot.Node.Close()
	}
}

func (d *Daemon) serviceFIFOs() {
	for i := 0; i < d.Table.Len(); i++ {
		slot := d.Table.Get(i)
		if !slot.Occupied || slot.Node == nil {
			continue
		}
		for _, line := range slot.Node.ReadLines() {
			if len(line) < 2 {
				// Upstream skips empty lines and single-byte noise.
				continue
			}
			ctx := &interp.Context{Table: d.Table, Storage: d.Storage, Slot: i}
			interp.Exec(ctx, line)
		}
	}
}

func (d *Daemon) drainQueue(slot *devtable.Slot) {
	if slot.Queue == nil || slot.Queue.Len() == 0 {
		return
	}
	msg, ok := slot.Queue.Pop()
	if !ok {
		return
	}
	if err := d.Backend.ControlTransfer(context.Background(), slot.Device, msg[:]); err != nil {
		logx.Warn(logx.ComponentQueue, "control transfer failed", "device", slot.Device, "err", err)
	}
}

func (d *Daemon) updateIndicators(slot *devtable.Slot) {
	if err := d.Backend.SetIndicators(slot.Device, slot.Indicators); err != nil {
		logx.Warn(logx.ComponentDaemon, "set indicators failed", "device", slot.Device, "err", err)
	}
}

func (d *Daemon) pollInterruptIn(slot *devtable.Slot) {
	var buf [64]byte
	n, ok := d.Backend.InterruptIn(slot.Device, buf[:])
	if !ok {
		return
	}
	slot.DecodeReport(buf[:n])
	for _, edge := range slot.KeyEdges() {
		if slot.Input != nil {
			_ = slot.Input.Emit(inputsynth.Event{Scancode: edge.Key, Down: edge.Down})
		}
	}
}

// Stop requests the loop exit on its next select; Run returns after
// performing Shutdown. Safe to call at most once.
func (d *Daemon) Stop() {
	close(d.stopCh)
}

// Shutdown follows the upstream quit() ordering: for every occupied
// device slot, close the input-synthesis sink first so no keys get stuck,
// then give the write queue a bounded drain before closing the slot's
// command node; the root slot's node is closed last, and the backend
// (with every device it holds) is closed after that. Devices are not
// switched back to HID mode; the Backend interface has no operation for
// it.
func (d *Daemon) Shutdown() error {
	for i := 1; i < d.Table.Len(); i++ {
		slot := d.Table.Get(i)
		if !slot.Occupied {
			continue
		}
		if slot.Input != nil {
			_ = slot.Input.Close()
		}
		d.drainWithGrace(slot)
		if slot.Node != nil {
			_ = slot.Node.Close()
		}
	}
	if root := d.Table.Get(0); root.Node != nil {
		_ = root.Node.Close()
	}
	if err := d.Backend.Close(); err != nil {
		return err
	}
	return nil
}

// drainGraceTicks bounds how many queued messages Shutdown sends to a
// device before discarding the rest, standing in for the upstream
// quit()'s polling drain loop.
const drainGraceTicks = 300

func (d *Daemon) drainWithGrace(slot *devtable.Slot) {
	if slot.Queue == nil {
		return
	}
	for t := 0; t < drainGraceTicks && slot.Queue.Len() > 0; t++ {
		msg, ok := slot.Queue.Pop()
		if !ok {
			break
		}
		if err := d.Backend.ControlTransfer(context.Background(), slot.Device, msg[:]); err != nil {
			break
		}
	}
	if n := slot.Queue.Drain(); n > 0 {
		logx.Warn(logx.ComponentQueue, "dropped queued messages on shutdown", "device", slot.Device, "count", n)
	}
}
