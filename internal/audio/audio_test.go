package audio

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/chime/internal/config"
	"github.com/jmylchreest/chime/internal/model"
)

// writeWAV writes a short silent WAV file and returns its path.
func writeWAV(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)

	format := beep.Format{SampleRate: 44100, NumChannels: 1, Precision: 2}
	require.NoError(t, wav.Encode(f, beep.Silence(4410), format))
	require.NoError(t, f.Close())
	return path
}

func TestResolver_Resolve(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	r := NewResolver(map[string]string{
		"chime":  "/opt/sounds/chime.wav",
		"mine":   "~/sounds/mine.oga",
		"remote": "file:///srv/sounds/remote%20bell.wav",
	})

	tests := []struct {
		locator string
		want    string
		wantErr bool
	}{
		{locator: "chime", want: "/opt/sounds/chime.wav"},
		{locator: "  chime  ", want: "/opt/sounds/chime.wav"},
		{locator: "mine", want: filepath.Join(home, "sounds", "mine.oga")},
		{locator: "remote", want: "/srv/sounds/remote bell.wav"},
		{locator: "file:///tmp/a.wav", want: "/tmp/a.wav"},
		{locator: "/tmp/b.mp3", want: "/tmp/b.mp3"},
		{locator: "", wantErr: true},
		{locator: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.locator, func(t *testing.T) {
			got, err := r.Resolve(tt.locator)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrEmptyLocator)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_ConfiguredAliasOverridesDefault(t *testing.T) {
	r := NewResolver(map[string]string{model.SystemDefaultID: "/custom/default.wav"})

	got, err := r.Resolve(model.SystemDefaultID)
	require.NoError(t, err)
	assert.Equal(t, "/custom/default.wav", got)
}

func TestDefaultAliases(t *testing.T) {
	for _, goos := range []string{"linux", "darwin", "windows", "freebsd"} {
		aliases := DefaultAliases(goos)
		assert.NotEmpty(t, aliases[model.SystemDefaultID], goos)
	}

	// Every built-in static id resolves on the desktop platforms.
	for _, goos := range []string{"linux", "darwin"} {
		aliases := DefaultAliases(goos)
		for _, s := range config.DefaultStaticSounds() {
			assert.Contains(t, aliases, s.ID, "%s/%s", goos, s.ID)
		}
	}
}

func TestBeepPlayer_LoadAndRelease(t *testing.T) {
	path := writeWAV(t, t.TempDir(), "ping.wav")
	p := NewBeepPlayer(100*time.Millisecond, time.Minute, nil, nil)

	var decoded []string
	p.OnDecode(func(path string) { decoded = append(decoded, path) })

	h, err := p.Load(context.Background(), path)
	require.NoError(t, err)
	assert.NotEmpty(t, h.ID())
	assert.Equal(t, 1, p.Loaded())
	assert.True(t, p.Cached(path))

	// Second load is served from the cache.
	h2, err := p.Load(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.NotEqual(t, h.ID(), h2.ID())
	assert.Equal(t, []string{path}, decoded)

	// Stop before play is allowed and suppresses completion.
	require.NoError(t, p.Stop(h))

	p.Release(h)
	p.Release(h)
	assert.Equal(t, 1, p.Loaded())

	assert.ErrorIs(t, p.Stop(h), ErrUnknownHandle)
	assert.ErrorIs(t, p.Play(h), ErrUnknownHandle)

	p.Release(h2)
	assert.Equal(t, 0, p.Loaded())
}

func TestBeepPlayer_InvalidateCache(t *testing.T) {
	path := writeWAV(t, t.TempDir(), "ping.wav")
	p := NewBeepPlayer(100*time.Millisecond, 0, nil, nil)

	h, err := p.Load(context.Background(), path)
	require.NoError(t, err)
	p.Release(h)
	require.True(t, p.Cached(path))

	p.InvalidateCache(path)
	assert.False(t, p.Cached(path))
}

func TestBeepPlayer_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	aiff := filepath.Join(dir, "Glass.aiff")
	require.NoError(t, os.WriteFile(aiff, []byte("FORM"), 0644))
	garbage := filepath.Join(dir, "broken.wav")
	require.NoError(t, os.WriteFile(garbage, []byte("not a wav"), 0644))

	p := NewBeepPlayer(100*time.Millisecond, time.Minute, nil, nil)

	_, err := p.Load(context.Background(), aiff)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = p.Load(context.Background(), garbage)
	assert.Error(t, err)

	_, err = p.Load(context.Background(), filepath.Join(dir, "missing.wav"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = p.Load(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyLocator)

	assert.Equal(t, 0, p.Loaded())
}

func TestBeepPlayer_LoadCanceled(t *testing.T) {
	path := writeWAV(t, t.TempDir(), "ping.wav")
	p := NewBeepPlayer(100*time.Millisecond, time.Minute, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Load(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, p.Loaded())
}

func TestBeepPlayer_CompletionFiresOnce(t *testing.T) {
	path := writeWAV(t, t.TempDir(), "ping.wav")
	p := NewBeepPlayer(100*time.Millisecond, time.Minute, nil, nil)

	tests := []struct {
		name   string
		before func(h *beepHandle)
		want   int
	}{
		{"natural end", func(*beepHandle) {}, 1},
		{"stopped", func(h *beepHandle) { require.NoError(t, p.Stop(h)) }, 0},
		{"released", func(h *beepHandle) { p.Release(h) }, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := p.Load(context.Background(), path)
			require.NoError(t, err)
			defer p.Release(h)

			fired := 0
			p.OnCompletion(h, func() { fired++ })

			bh := h.(*beepHandle)
			tt.before(bh)
			// A second finish is a no-op.
			p.finish(bh)
			p.finish(bh)

			assert.Equal(t, tt.want, fired)
		})
	}
}

func TestDecodeFile_StopsWhenCanceled(t *testing.T) {
	path := writeWAV(t, t.TempDir(), "ping.wav")

	ctx, cancel := context.WithCancel(context.Background())
	buffer, err := decodeFile(ctx, path)
	require.NoError(t, err)
	assert.Positive(t, buffer.Len())

	cancel()
	_, err = decodeFile(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)

	file, err := os.Open(path)
	require.NoError(t, err)
	f := ctxFile{ctx: ctx, File: file}
	defer func() { _ = f.Close() }()

	n, err := f.Read(make([]byte, 16))
	assert.Zero(t, n)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCommand(t *testing.T) {
	c, ok := ParseCommand("aplay -q")
	require.True(t, ok)
	assert.Equal(t, "aplay", c.Name)
	assert.Equal(t, []string{"-q", "/tmp/a.wav"}, c.argv("/tmp/a.wav"))
	assert.Equal(t, "aplay -q", c.String())

	_, ok = ParseCommand("   ")
	assert.False(t, ok)

	ps := Command{Name: "powershell", Args: []string{"-Command"}, Script: "(New-Object Media.SoundPlayer '%s').PlaySync()"}
	assert.Equal(t,
		[]string{"-Command", "(New-Object Media.SoundPlayer 'C:\\it''s.wav').PlaySync()"},
		ps.argv(`C:\it's.wav`))
}

func TestDetectBackend(t *testing.T) {
	assert.Equal(t, config.BackendExec, DetectBackend("darwin"))
	assert.Equal(t, config.BackendBeep, DetectBackend("linux"))
	assert.Equal(t, config.BackendBeep, DetectBackend("windows"))
}

func TestNewPlayer(t *testing.T) {
	cfg := config.DefaultConfig().Player

	cfg.Backend = config.BackendBeep
	p, err := NewPlayer(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &BeepPlayer{}, p)

	cfg.Backend = config.BackendExec
	cfg.Command = "definitely-not-a-player --flag"
	p, err = NewPlayer(cfg, nil)
	require.NoError(t, err)
	require.IsType(t, &ExecPlayer{}, p)
	assert.Equal(t, "definitely-not-a-player", p.(*ExecPlayer).Command().Name)

	cfg.Backend = "alsa"
	_, err = NewPlayer(cfg, nil)
	assert.Error(t, err)
}

func TestNewManager(t *testing.T) {
	cfg := config.DefaultConfig().Player
	cfg.Backend = config.BackendBeep

	m, err := NewManager(cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, m.watcher)
	require.NoError(t, m.Start(context.Background()))

	path := writeWAV(t, t.TempDir(), "ping.wav")
	h, err := m.Player().Load(context.Background(), path)
	require.NoError(t, err)
	m.Player().Release(h)
	assert.True(t, m.watcher.Watching(path))

	m.Stop()
}

func TestNewManager_WatchDisabled(t *testing.T) {
	cfg := config.DefaultConfig().Player
	cfg.Backend = config.BackendBeep
	cfg.Watch = false

	m, err := NewManager(cfg, nil)
	require.NoError(t, err)
	assert.Nil(t, m.watcher)
	m.Stop()
}

// Exec player tests run shell scripts as the audio command.

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not available on windows")
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func TestExecPlayer_Completion(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "play.sh", "exit 0")
	sound := writeWAV(t, dir, "ping.wav")

	p, err := NewExecPlayer(script, nil, nil)
	require.NoError(t, err)

	h, err := p.Load(context.Background(), sound)
	require.NoError(t, err)

	done := make(chan struct{})
	p.OnCompletion(h, func() { close(done) })
	require.NoError(t, p.Play(h))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("completion callback not delivered")
	}

	p.Release(h)
	p.Release(h)
	assert.Equal(t, 0, p.Loaded())
}

func TestExecPlayer_FailedCommandStillCompletes(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "play.sh", "exit 3")
	sound := writeWAV(t, dir, "ping.wav")

	p, err := NewExecPlayer(script, nil, nil)
	require.NoError(t, err)

	h, err := p.Load(context.Background(), sound)
	require.NoError(t, err)

	done := make(chan struct{})
	p.OnCompletion(h, func() { close(done) })
	require.NoError(t, p.Play(h))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("completion callback not delivered")
	}
}

func TestExecPlayer_StopSuppressesCompletion(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "play.sh", "sleep 30")
	sound := writeWAV(t, dir, "ping.wav")

	p, err := NewExecPlayer(script, nil, nil)
	require.NoError(t, err)

	h, err := p.Load(context.Background(), sound)
	require.NoError(t, err)

	fired := make(chan struct{}, 1)
	p.OnCompletion(h, func() { fired <- struct{}{} })
	require.NoError(t, p.Play(h))

	require.NoError(t, p.Stop(h))
	require.NoError(t, p.Stop(h))

	select {
	case <-h.(*execHandle).done:
	case <-time.After(5 * time.Second):
		t.Fatal("process not killed")
	}

	select {
	case <-fired:
		t.Fatal("completion fired after stop")
	case <-time.After(50 * time.Millisecond):
	}

	assert.Error(t, p.Play(h), "a stopped handle cannot be replayed")
	p.Release(h)
}

func TestExecPlayer_CloseReapsCommands(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "play.sh", "sleep 30")
	sound := writeWAV(t, dir, "ping.wav")

	p, err := NewExecPlayer(script, nil, nil)
	require.NoError(t, err)

	h, err := p.Load(context.Background(), sound)
	require.NoError(t, err)

	fired := make(chan struct{}, 1)
	p.OnCompletion(h, func() { fired <- struct{}{} })
	require.NoError(t, p.Play(h))

	start := time.Now()
	require.NoError(t, p.Close())
	assert.Less(t, time.Since(start), closeTimeout)

	select {
	case <-h.(*execHandle).done:
	default:
		t.Fatal("Close returned before the command was reaped")
	}
	select {
	case <-fired:
		t.Fatal("completion fired after close")
	default:
	}
	assert.Equal(t, 0, p.Loaded())
}

func TestExecPlayer_LoadErrors(t *testing.T) {
	p, err := NewExecPlayer("true", nil, nil)
	require.NoError(t, err)

	_, err = p.Load(context.Background(), "/nonexistent/sound.wav")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = p.Load(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = p.Load(context.Background(), " ")
	assert.ErrorIs(t, err, ErrEmptyLocator)
}

type recordingInvalidator struct {
	paths chan string
}

func (r *recordingInvalidator) InvalidateCache(path string) {
	r.paths <- path
}

func TestCacheWatcher(t *testing.T) {
	dir := t.TempDir()
	watched := writeWAV(t, dir, "watched.wav")
	other := writeWAV(t, dir, "other.wav")

	target := &recordingInvalidator{paths: make(chan string, 16)}
	w, err := NewCacheWatcher(target, nil)
	require.NoError(t, err)
	require.NoError(t, w.Watch(watched))
	require.NoError(t, w.Start(context.Background()))
	defer func() { _ = w.Stop() }()

	require.NoError(t, os.WriteFile(other, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(watched, []byte("x"), 0644))

	select {
	case got := <-target.paths:
		assert.Equal(t, watched, got)
	case <-time.After(5 * time.Second):
		t.Fatal("cache not invalidated")
	}
}
