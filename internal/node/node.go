// Package node manages the device-node filesystem surface: one directory
// per device slot holding a command FIFO and read-only status files,
// under a root directory (spec §4.2 External Interfaces). It mirrors the
// teacher's createFIFO/openFIFO pattern (device/hal/fifo) using
// golang.org/x/sys/unix for the mkfifo syscall the standard library does
// not expose directly.
package node

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/ardnew/ckbd/internal/fifoline"
	"github.com/ardnew/ckbd/pkg/ckberr"
)

const (
	dirPerm   = 0o755
	cmdPerm   = 0o666
	dataPerm  = 0o444
	cmdName   = "cmd"
	connName  = "connected"
	modelName = "model"
	serialFn  = "serial"
)

// Handle is one device slot's filesystem presence: its directory, an
// open non-blocking file descriptor for the command FIFO, and the line
// reader that turns raw FIFO writes into complete command lines.
type Handle struct {
	dir    string
	cmd    *os.File
	reader *fifoline.Reader
}

// Manager creates and tears down device-node directories under root. The
// caller is expected to have set the process umask to 0 at startup (spec
// §9 Design Note: the intended permissions on the cmd FIFO and status
// files must not be clipped by an inherited restrictive umask) before
// calling any of its methods.
type Manager struct {
	root string
}

// NewManager returns a manager rooted at root. It does not create root
// itself; callers create it once at startup.
func NewManager(root string) *Manager {
	return &Manager{root: root}
}

// Root returns the device-node root directory.
func (m *Manager) Root() string {
	return m.root
}

// SlotDir returns the directory path for slot index i.
func (m *Manager) SlotDir(i int) string {
	if i == 0 {
		return m.root
	}
	return filepath.Join(m.root, fmt.Sprintf("%d", i))
}

// Create (re)creates the directory and command FIFO for slot i and
// returns a Handle for it. Any pre-existing directory at that path is
// removed first, matching the upstream daemon's rm -rf-then-recreate
// behavior on attach so a stale FIFO or status file never survives
// across a reconnect with a new identity.
func (m *Manager) Create(i int) (*Handle, error) {
	dir := m.SlotDir(i)
	if err := removeAll(dir); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ckberr.ErrNodeCreate, dir, err)
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ckberr.ErrNodeCreate, dir, err)
	}

	cmdPath := filepath.Join(dir, cmdName)
	_ = os.Remove(cmdPath)
	if err := unix.Mkfifo(cmdPath, cmdPerm); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ckberr.ErrFIFOCreate, cmdPath, err)
	}

	f, err := os.OpenFile(cmdPath, os.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ckberr.ErrFIFOCreate, cmdPath, err)
	}

	return &Handle{dir: dir, cmd: f, reader: fifoline.NewReader()}, nil
}

// removeAll tolerates an already-absent directory (spec §9: recursive
// removal during node setup is not an error if nothing was there).
func removeAll(dir string) error {
	err := os.RemoveAll(dir)
	if err == nil || os.IsNotExist(err) {
		return nil
	}
	return err
}

// WriteModel writes the slot's read-only model status file.
func (h *Handle) WriteModel(model string) error {
	return writeStatusFile(filepath.Join(h.dir, modelName), model)
}

// WriteSerial writes the slot's read-only serial status file.
func (h *Handle) WriteSerial(serial string) error {
	return writeStatusFile(filepath.Join(h.dir, serialFn), serial)
}

// ConnectedEntry is one live slot's contribution to the root
// pseudo-device's connected listing: `<root><i> <serial> <name>` (spec
// §4.1/§6). Index is the slot index the entry's path is derived from.
type ConnectedEntry struct {
	Index  int
	Serial string
	Name   string
}

// WriteConnected atomically rewrites the root pseudo-device's connected
// listing, one `<root><i> <serial> <name>` line per live slot. It writes
// to a temp file and renames over the target so readers never observe a
// partial list. When entries is empty it writes a single newline, never
// a zero-byte file, so a reader always sees at least one line.
func (m *Manager) WriteConnected(entries []ConnectedEntry) error {
	path := filepath.Join(m.root, connName)
	tmp := path + ".tmp"
	content := ""
	for _, e := range entries {
		content += fmt.Sprintf("%s %s %s\n", m.SlotDir(e.Index), e.Serial, e.Name)
	}
	if content == "" {
		content = "\n"
	}
	if err := os.WriteFile(tmp, []byte(content), dataPerm); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func writeStatusFile(path, content string) error {
	return os.WriteFile(path, []byte(content+"\n"), dataPerm)
}

// ReadLines drains whatever is currently available on the command FIFO
// without blocking and returns any complete lines, deferring a trailing
// partial line to the next call (spec §4.2).
func (h *Handle) ReadLines() []string {
	buf := make([]byte, 4096)
	n, err := h.cmd.Read(buf)
	if err != nil || n == 0 {
		return nil
	}
	return h.reader.Feed(buf[:n])
}

// Close releases the slot's open FIFO descriptor. The directory itself
// is left in place; Create removes it on the next attach to the same
// slot.
func (h *Handle) Close() error {
	if h.cmd == nil {
		return nil
	}
	return h.cmd.Close()
}

// Remove deletes a slot's directory entirely. The daemon's shutdown path
// does not call it; node directories are left in place.
func (m *Manager) Remove(i int) error {
	return removeAll(m.SlotDir(i))
}
