package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/chime/internal/preview"
)

// Command describes an external audio player invocation.
type Command struct {
	Name string
	Args []string
	// Script, when set, is a format string receiving the quoted path as the last argument
	// instead of the path itself (used for PowerShell).
	Script string
}

// argv returns the arguments for playing path.
func (c Command) argv(path string) []string {
	args := append([]string(nil), c.Args...)
	if c.Script != "" {
		return append(args, fmt.Sprintf(c.Script, strings.ReplaceAll(path, "'", "''")))
	}
	return append(args, path)
}

// String returns the command line without the path.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// ParseCommand splits a configured command such as "aplay -q" into a Command.
func ParseCommand(s string) (Command, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Command{}, false
	}
	return Command{Name: fields[0], Args: fields[1:]}, true
}

// DetectCommand returns the first audio command available on goos.
func DetectCommand(goos string) (Command, bool) {
	var candidates []Command
	switch goos {
	case "darwin":
		candidates = []Command{{Name: "afplay"}}
	case "windows":
		candidates = []Command{{
			Name:   "powershell",
			Args:   []string{"-NoProfile", "-NonInteractive", "-Command"},
			Script: "(New-Object Media.SoundPlayer '%s').PlaySync()",
		}}
	default:
		candidates = []Command{
			{Name: "paplay"},
			{Name: "pw-play"},
			{Name: "aplay", Args: []string{"-q"}},
		}
	}

	for _, c := range candidates {
		if _, err := exec.LookPath(c.Name); err == nil {
			return c, true
		}
	}
	return Command{}, false
}

// closeTimeout bounds how long Close waits for a killed command to exit.
const closeTimeout = 5 * time.Second

// ExecPlayer plays sounds by running an OS audio command per preview.
type ExecPlayer struct {
	mu       sync.Mutex
	logger   *slog.Logger
	resolver *Resolver
	command  Command
	handles  map[string]*execHandle
}

// execHandle is one loaded sound. Its mutable fields are guarded by ExecPlayer.mu.
type execHandle struct {
	id   string
	path string

	cmd      *exec.Cmd
	onDone   func()
	finished bool
	done     chan struct{}
}

func (h *execHandle) ID() string { return h.id }

// NewExecPlayer creates a player running command, or the detected platform command if empty.
func NewExecPlayer(command string, aliases map[string]string, logger *slog.Logger) (*ExecPlayer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cmd, ok := ParseCommand(command)
	if !ok {
		cmd, ok = DetectCommand(runtime.GOOS)
		if !ok {
			return nil, fmt.Errorf("%w on %s", ErrNoCommand, runtime.GOOS)
		}
	}

	logger.Debug("exec player initialized", "command", cmd.String())

	return &ExecPlayer{
		logger:   logger,
		resolver: NewResolver(aliases),
		command:  cmd,
		handles:  make(map[string]*execHandle),
	}, nil
}

// Command returns the command used for playback.
func (p *ExecPlayer) Command() Command {
	return p.command
}

// Load resolves locator and checks the file exists.
func (p *ExecPlayer) Load(ctx context.Context, locator string) (preview.Handle, error) {
	path, err := p.resolver.Resolve(locator)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sound file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrUnsupportedFormat, path)
	}

	h := &execHandle{
		id:   ulid.Make().String(),
		path: path,
		done: make(chan struct{}),
	}

	p.mu.Lock()
	p.handles[h.id] = h
	p.mu.Unlock()

	p.logger.Debug("sound loaded", "handle", h.id, "path", path)
	return h, nil
}

// Play starts the audio command for h.
func (p *ExecPlayer) Play(handle preview.Handle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	h, err := p.lookupLocked(handle)
	if err != nil {
		return err
	}
	if h.cmd != nil || h.finished {
		return fmt.Errorf("sound %s already played", h.id)
	}

	cmd := exec.Command(p.command.Name, p.command.argv(h.path)...) //nolint:gosec // command comes from config or detection
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", p.command.Name, err)
	}
	h.cmd = cmd

	go p.wait(h, cmd)
	return nil
}

// wait reaps the process and reports natural completion.
func (p *ExecPlayer) wait(h *execHandle, cmd *exec.Cmd) {
	err := cmd.Wait()
	close(h.done)

	p.mu.Lock()
	if h.finished {
		p.mu.Unlock()
		return
	}
	h.finished = true
	fn := h.onDone
	p.mu.Unlock()

	if err != nil {
		p.logger.Warn("audio command failed", "handle", h.id, "command", p.command.Name, "error", err)
	} else {
		p.logger.Debug("sound finished", "handle", h.id)
	}
	if fn != nil {
		fn()
	}
}

// Stop kills the running command. The completion callback will not fire afterwards.
func (p *ExecPlayer) Stop(handle preview.Handle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	h, err := p.lookupLocked(handle)
	if err != nil {
		return err
	}
	return p.stopLocked(h)
}

func (p *ExecPlayer) stopLocked(h *execHandle) error {
	wasFinished := h.finished
	h.finished = true
	if h.cmd == nil || wasFinished {
		return nil
	}

	if err := h.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to kill %s: %w", p.command.Name, err)
	}
	return nil
}

// OnCompletion registers fn to run once when the command exits without being stopped.
func (p *ExecPlayer) OnCompletion(handle preview.Handle, fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if h, err := p.lookupLocked(handle); err == nil {
		h.onDone = fn
	}
}

// Release kills h's command if it is still running and forgets it.
func (p *ExecPlayer) Release(handle preview.Handle) {
	p.mu.Lock()
	defer p.mu.Unlock()

	h, err := p.lookupLocked(handle)
	if err != nil {
		return
	}
	if err := p.stopLocked(h); err != nil {
		p.logger.Warn("failed to stop sound on release", "handle", h.id, "error", err)
	}
	delete(p.handles, h.id)
}

func (p *ExecPlayer) lookupLocked(handle preview.Handle) (*execHandle, error) {
	h, ok := handle.(*execHandle)
	if !ok || h == nil || p.handles[h.id] != h {
		return nil, ErrUnknownHandle
	}
	return h, nil
}

// Loaded returns the number of handles not yet released.
func (p *ExecPlayer) Loaded() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.handles)
}

// Close kills every running command and waits for the processes to be reaped.
func (p *ExecPlayer) Close() error {
	p.mu.Lock()
	var running []*execHandle
	for id, h := range p.handles {
		if h.cmd != nil {
			running = append(running, h)
		}
		if err := p.stopLocked(h); err != nil {
			p.logger.Warn("failed to stop sound on close", "handle", h.id, "error", err)
		}
		delete(p.handles, id)
	}
	p.mu.Unlock()

	// wait takes p.mu after closing done, so the lock must be released first.
	for _, h := range running {
		select {
		case <-h.done:
		case <-time.After(closeTimeout):
			p.logger.Warn("audio command not reaped", "handle", h.id, "command", p.command.Name)
		}
	}
	return nil
}
