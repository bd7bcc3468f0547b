// Command ckbd is a user-space daemon for Corsair vendor-mode RGB
// keyboards: it exposes one device node per plugged-in keyboard, accepts
// lighting/binding/macro commands over a FIFO, and synthesizes OS key
// input from the device's vendor-mode interrupt reports.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"

	"github.com/ardnew/ckbd/internal/daemon"
	"github.com/ardnew/ckbd/internal/node"
	"github.com/ardnew/ckbd/internal/usbhal"
	"github.com/ardnew/ckbd/pkg/linux/usbid"
	"github.com/ardnew/ckbd/pkg/logx"
	"github.com/ardnew/ckbd/pkg/prof"
)

const (
	vendorCorsair = 0x1b1c
	productK70    = 0x1b13
	productK95    = 0x1b11
)

func main() {
	var (
		fps       = pflag.IntP("fps", "f", daemon.DefaultFPS, "Frame rate, capped at 60")
		root      = pflag.StringP("root", "r", "/dev/input/ckb", "Device node root directory")
		logLevel  = pflag.String("log-level", "info", "Log level: debug, info, warn, error")
		logFormat = pflag.String("log-format", "text", "Log format: text, json")
		reference = pflag.Bool("reference", false, "Use the in-memory reference USB backend instead of real hardware")
		cpuprof   = pflag.String("cpuprofile", "", "Write a CPU profile to this file (requires building with -tags profile)")
		help      = pflag.BoolP("help", "h", false, "Display help text")
	)
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "ckbd - Corsair vendor-mode keyboard driver\n\n")
		fmt.Fprintf(os.Stderr, "Usage: ckbd [options]\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()
	if *help {
		pflag.Usage()
		return
	}

	if err := configureLogging(*logLevel, *logFormat); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *fps <= 0 {
		logx.Error(logx.ComponentDaemon, "fps must be positive", "requested", *fps)
		os.Exit(1)
	}
	if *fps > daemon.DefaultFPS {
		logx.Warn(logx.ComponentDaemon, "requested fps out of range, capping", "requested", *fps, "fps", daemon.DefaultFPS)
		*fps = daemon.DefaultFPS
	}

	if *cpuprof != "" {
		if err := prof.StartCPU(*cpuprof); err != nil {
			logx.Error(logx.ComponentDaemon, "failed to start cpu profile", "err", err)
			os.Exit(1)
		}
		defer prof.StopCPU()
	}

	// A zero umask ensures the cmd FIFO and status files end up with
	// exactly the permissions node.Manager requests, regardless of the
	// shell's inherited umask.
	prevUmask := unix.Umask(0)
	defer unix.Umask(prevUmask)

	if err := os.MkdirAll(*root, 0o755); err != nil {
		logx.Error(logx.ComponentDaemon, "failed to create root directory", "root", *root, "err", err)
		os.Exit(1)
	}
	nodes := node.NewManager(*root)
	rootHandle, err := nodes.Create(0)
	if err != nil {
		logx.Error(logx.ComponentDaemon, "failed to create root device node", "err", err)
		os.Exit(1)
	}

	backend := newBackend(*reference)
	if err := backend.Init(context.Background()); err != nil {
		logx.Error(logx.ComponentHAL, "backend init failed", "err", err)
		os.Exit(1)
	}

	d, err := daemon.New(backend, nodes, *fps, nil)
	if err != nil {
		logx.Error(logx.ComponentDaemon, "invalid daemon configuration", "err", err)
		os.Exit(1)
	}
	d.Table.Get(0).Node = rootHandle
	names := usbid.New()
	if names.Load() {
		d.Names = names
	}
	logx.Info(logx.ComponentDaemon, "ckbd starting", "fps", *fps, "root", *root)
	if err := d.Run(context.Background()); err != nil {
		logx.Error(logx.ComponentDaemon, "daemon exited with error", "err", err)
		os.Exit(1)
	}
	logx.Info(logx.ComponentDaemon, "ckbd stopped")
}

func newBackend(useReference bool) usbhal.Backend {
	if useReference {
		return usbhal.NewReference([]usbhal.Descriptor{
			{VendorID: vendorCorsair, ProductID: productK95, Serial: "00000000000000000000000000000001"},
		})
	}
	// A real hidraw/usbfs-backed implementation is out of scope for this
	// build; --reference drives the daemon against the in-memory backend
	// for development and testing.
	return usbhal.NewReference(nil)
}

func configureLogging(level, format string) error {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return fmt.Errorf("unknown log level %q", level)
	}
	logx.SetLevel(lvl)

	switch format {
	case "text":
		logx.SetFormat(logx.FormatText)
	case "json":
		logx.SetFormat(logx.FormatJSON)
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	return nil
}
