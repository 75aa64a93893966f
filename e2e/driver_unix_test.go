//go:build e2e && unix

package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"
	"unsafe"

	"github.com/creack/pty"
)

const ringSize = 1 << 20 // 1 MiB of scrollback
var binPath = "campusevents_e2e"

// Key constants for better readability
const (
	KeyEnter   = "\r"
	KeyEsc     = "\x1b"
	KeyCtrlC   = "\x03"
	KeyDown    = "j"
	KeyQuit    = "q"
	KeySearch  = "/"
	KeyRefresh = "r"
	KeyHelp    = "?"
	KeyDetails = "v"
)

// ANSI escape sequence regex for normalization - covers CSI, OSC, charset, keypad modes
var ansiRe = regexp.MustCompile(
	`(?:\x1b\[[0-9;?]*[ -/]*[@-~])|` + // CSI sequences
		`(?:\x1b\][^\x07]*\x07)|` + // OSC sequences
		`(?:\x1b[\(\)][A-Za-z])|` + // charset sequences
		`(?:\x1b=|\x1b>)|` + // keypad mode sequences
		`\r`, // carriage returns
)

// Terminal queries lipgloss sends at startup: OSC 10/11 colour reports and the
// cursor position request that follows them
var queryRe = regexp.MustCompile(`\x1b\]1([01]);\?(?:\x1b\\|\x07)|\x1b\[6n`)

// TUITestFramework drives the events browser inside a PTY
type TUITestFramework struct {
	t          *testing.T
	pty        *os.File
	tty        *os.File
	cmd        *exec.Cmd
	workspace  string
	configPath string

	// Ring buffer for continuous output capture
	mu   sync.Mutex
	buf  []byte
	head int
	full bool
	cond *sync.Cond
}

// NewTUITest creates a new TUI test framework instance
func NewTUITest(t *testing.T) *TUITestFramework {
	tf := &TUITestFramework{
		t:   t,
		buf: make([]byte, ringSize),
	}
	tf.cond = sync.NewCond(&tf.mu)
	return tf
}

// CreateWorkspace creates an isolated home directory with a config file
// pointing the app at baseURL
func (tf *TUITestFramework) CreateWorkspace(baseURL string) error {
	tf.workspace = tf.t.TempDir()
	tf.configPath = filepath.Join(tf.workspace, "config.toml")
	cfg := fmt.Sprintf(`version = 1

[api]
base_url = %q
image_base_url = %q
page_size = 3
timeout_seconds = 2

[search]
debounce_ms = 50

[ui]
page_rows = 5
timezone = "UTC"

[log]
level = "debug"
file = %q
`, baseURL, baseURL, filepath.Join(tf.workspace, "campusevents.log"))
	return os.WriteFile(tf.configPath, []byte(cfg), 0644)
}

// StartApp launches campusevents with the workspace config in a PTY
func (tf *TUITestFramework) StartApp(args ...string) error {
	if tf.configPath != "" {
		args = append([]string{"-config", tf.configPath}, args...)
	}
	tf.cmd = exec.Command(binPath, args...)
	tf.cmd.Dir = tf.workspace

	tf.cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"LC_ALL=C",
		"LANG=C",
		"HOME="+tf.workspace, // isolate $HOME
		"XDG_CONFIG_HOME="+tf.workspace,
	)

	ptyFile, tty, err := pty.Open()
	if err != nil {
		return fmt.Errorf("failed to open pty: %w", err)
	}

	tf.pty = ptyFile
	tf.tty = tty
	tf.cmd.Stdout = tty
	tf.cmd.Stdin = tty
	tf.cmd.Stderr = tty

	ws := struct {
		Row uint16
		Col uint16
		X   uint16
		Y   uint16
	}{40, 120, 0, 0}
	syscall.Syscall(syscall.SYS_IOCTL, ptyFile.Fd(), uintptr(syscall.TIOCSWINSZ), uintptr(unsafe.Pointer(&ws)))

	if err := tf.cmd.Start(); err != nil {
		ptyFile.Close()
		tty.Close()
		return fmt.Errorf("failed to start command: %w", err)
	}

	tf.startReader()
	return nil
}

// startReader copies PTY output into the ring buffer until the PTY closes
func (tf *TUITestFramework) startReader() {
	ptyFile := tf.pty
	go func() {
		buf := make([]byte, 8192)
		for {
			n, err := ptyFile.Read(buf)
			if n > 0 {
				tf.mu.Lock()
				for i := 0; i < n; i++ {
					tf.buf[tf.head] = buf[i]
					tf.head = (tf.head + 1) % ringSize
					if tf.head == 0 {
						tf.full = true
					}
				}
				tf.cond.Broadcast()
				tf.mu.Unlock()
				answerQueries(ptyFile, buf[:n])
			}
			if err != nil {
				tf.mu.Lock()
				tf.cond.Broadcast()
				tf.mu.Unlock()
				return
			}
		}
	}()
}

// answerQueries replies like a dark terminal would, so the app does not wait
// out the query timeout before drawing
func answerQueries(w io.Writer, out []byte) {
	for _, m := range queryRe.FindAllSubmatch(out, -1) {
		var reply string
		switch {
		case len(m[1]) == 0:
			reply = "\x1b[1;1R"
		case m[1][0] == '0':
			reply = "\x1b]10;rgb:ffff/ffff/ffff\x1b\\"
		default:
			reply = "\x1b]11;rgb:0000/0000/0000\x1b\\"
		}
		if _, err := io.WriteString(w, reply); err != nil {
			return
		}
	}
}

// SendKeys sends keystrokes to the application
func (tf *TUITestFramework) SendKeys(keys string) error {
	tf.t.Helper()
	_, err := tf.pty.Write([]byte(keys))
	return err
}

// SendCtrlC sends Ctrl+C to terminate the application
func (tf *TUITestFramework) SendCtrlC() error {
	tf.t.Helper()
	return tf.SendKeys(KeyCtrlC)
}

// Search focuses the search box and types query
func (tf *TUITestFramework) Search(query string) error {
	tf.t.Helper()
	if err := tf.SendKeys(KeySearch); err != nil {
		return err
	}
	return tf.SendKeys(query)
}

// Refresh sends 'r' to refetch from the first page
func (tf *TUITestFramework) Refresh() error {
	tf.t.Helper()
	return tf.SendKeys(KeyRefresh)
}

// Quit sends quit command
func (tf *TUITestFramework) Quit() error {
	tf.t.Helper()
	return tf.SendKeys(KeyQuit)
}

// Ready waits for the title to be drawn
func (tf *TUITestFramework) Ready() bool {
	tf.t.Helper()
	return tf.OutputContainsPlain("Campus Events", 12*time.Second)
}

// SeePlain waits for specific plain text to appear (normalized output)
func (tf *TUITestFramework) SeePlain(text string) bool {
	tf.t.Helper()
	return tf.OutputContainsPlain(text, 3*time.Second)
}

// OutputContainsPlain checks if the normalized output contains specific text within a timeout
func (tf *TUITestFramework) OutputContainsPlain(text string, timeout time.Duration) bool {
	tf.t.Helper()
	return tf.WaitFor(func(s string) bool {
		return strings.Contains(ansiRe.ReplaceAllString(s, ""), text)
	}, timeout)
}

// WaitFor waits for a predicate to be true in the output
func (tf *TUITestFramework) WaitFor(pred func(string) bool, timeout time.Duration) bool {
	tf.t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		if pred(tf.Snapshot()) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(25 * time.Millisecond)
	}
}

// ClearOutput forgets everything captured so far
func (tf *TUITestFramework) ClearOutput() {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	tf.head = 0
	tf.full = false
}

// Snapshot returns the current contents of the ring buffer (thread-safe)
func (tf *TUITestFramework) Snapshot() string {
	tf.t.Helper()
	tf.mu.Lock()
	defer tf.mu.Unlock()
	return tf.snapshot()
}

// snapshot assumes tf.mu is held
func (tf *TUITestFramework) snapshot() string {
	if !tf.full {
		return string(tf.buf[:tf.head])
	}
	out := make([]byte, ringSize)
	copy(out, tf.buf[tf.head:])
	copy(out[ringSize-tf.head:], tf.buf[:tf.head])
	return string(out)
}

// SnapshotPlain returns the current contents of the ring buffer with ANSI sequences removed
func (tf *TUITestFramework) SnapshotPlain() string {
	tf.t.Helper()
	return ansiRe.ReplaceAllString(tf.Snapshot(), "")
}

// DumpTailOnFail saves the last n bytes of normalized output to a file for debugging
func (tf *TUITestFramework) DumpTailOnFail(t *testing.T, name string, n int) {
	tf.t.Helper()
	s := tf.SnapshotPlain()
	if len(s) > n {
		s = s[len(s)-n:]
	}
	p := filepath.Join(t.TempDir(), name+".txt")
	_ = os.WriteFile(p, []byte(s), 0644)
	t.Logf("Saved tail to %s", p)
}

// Cleanup closes the PTY and terminates the application
func (tf *TUITestFramework) Cleanup() {
	// Close PTY first to deliver SIGHUP to child process
	if tf.pty != nil {
		_ = tf.pty.Close()
		tf.pty = nil
	}
	if tf.tty != nil {
		_ = tf.tty.Close()
		tf.tty = nil
	}
	if tf.cmd != nil && tf.cmd.Process != nil {
		_ = tf.cmd.Process.Kill()
		_, _ = tf.cmd.Process.Wait()
		tf.cmd = nil
	}
}
