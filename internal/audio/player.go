package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	"github.com/oklog/ulid/v2"
	"github.com/patrickmn/go-cache"

	"github.com/jmylchreest/chime/internal/preview"
)

// BeepPlayer plays decoded sounds through the system speaker.
type BeepPlayer struct {
	mu       sync.Mutex
	logger   *slog.Logger
	resolver *Resolver

	// Speaker buffer length
	bufferLen time.Duration

	// Whether speaker has been initialized
	initialized bool

	// Sample rate for the speaker
	sampleRate beep.SampleRate

	// Decoded buffers keyed by file path
	cache *cache.Cache

	handles map[string]*beepHandle

	// Called with each path decoded from disk
	onDecode func(path string)
}

// beepHandle is one loaded sound. Its mutable fields are guarded by BeepPlayer.mu.
type beepHandle struct {
	id     string
	path   string
	buffer *beep.Buffer

	ctrl   *beep.Ctrl
	onDone func()
	// finished is set once the handle was stopped, released or completed.
	finished bool
}

func (h *beepHandle) ID() string { return h.id }

// NewBeepPlayer creates a player. A cacheTTL of zero keeps decoded sounds until
// they are invalidated.
func NewBeepPlayer(bufferLen, cacheTTL time.Duration, aliases map[string]string, logger *slog.Logger) *BeepPlayer {
	if logger == nil {
		logger = slog.Default()
	}

	expiration := cacheTTL
	if expiration == 0 {
		expiration = cache.NoExpiration
	}

	return &BeepPlayer{
		logger:     logger,
		resolver:   NewResolver(aliases),
		bufferLen:  bufferLen,
		sampleRate: beep.SampleRate(44100),
		cache:      cache.New(expiration, 2*time.Minute),
		handles:    make(map[string]*beepHandle),
	}
}

// OnDecode registers fn to be called with every file decoded from disk.
func (p *BeepPlayer) OnDecode(fn func(path string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onDecode = fn
}

// Load resolves and decodes locator.
func (p *BeepPlayer) Load(ctx context.Context, locator string) (preview.Handle, error) {
	path, err := p.resolver.Resolve(locator)
	if err != nil {
		return nil, err
	}

	buffer, err := p.buffer(ctx, path)
	if err != nil {
		return nil, err
	}

	h := &beepHandle{
		id:     ulid.Make().String(),
		path:   path,
		buffer: buffer,
	}

	p.mu.Lock()
	p.handles[h.id] = h
	p.mu.Unlock()

	p.logger.Debug("sound loaded", "handle", h.id, "path", path)
	return h, nil
}

// buffer returns the decoded sound for path from the cache or disk.
func (p *BeepPlayer) buffer(ctx context.Context, path string) (*beep.Buffer, error) {
	if cached, ok := p.cache.Get(path); ok {
		return cached.(*beep.Buffer), nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buffer, err := decodeFile(ctx, path)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.cache.SetDefault(path, buffer)

	p.mu.Lock()
	onDecode := p.onDecode
	p.mu.Unlock()
	if onDecode != nil {
		onDecode(path)
	}

	return buffer, nil
}

// ctxFile fails reads once ctx is done, so decoding stops part way through a file.
type ctxFile struct {
	ctx context.Context
	*os.File
}

func (f ctxFile) Read(b []byte) (int, error) {
	if err := f.ctx.Err(); err != nil {
		return 0, err
	}
	return f.File.Read(b)
}

// decodeFile loads and decodes a sound file into a buffer.
func decodeFile(ctx context.Context, path string) (*beep.Buffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sound file: %w", err)
	}
	f := ctxFile{ctx: ctx, File: file}
	defer func() { _ = f.Close() }()

	ext := strings.ToLower(filepath.Ext(path))

	var streamer beep.StreamSeekCloser
	var format beep.Format

	switch ext {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".ogg", ".oga":
		streamer, format, err = vorbis.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to decode sound: %w", err)
	}
	defer func() { _ = streamer.Close() }()

	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)

	// A cancelled read ends the stream early; never cache a truncated sound.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return buffer, nil
}

// ensureInitialized initializes the speaker if not already done.
// Must be called with p.mu held.
func (p *BeepPlayer) ensureInitialized(sampleRate beep.SampleRate) error {
	if p.initialized {
		return nil
	}

	if err := speaker.Init(sampleRate, sampleRate.N(p.bufferLen)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}

	p.sampleRate = sampleRate
	p.initialized = true
	p.logger.Debug("speaker initialized", "sample_rate", sampleRate, "buffer", p.bufferLen)
	return nil
}

// Play starts playback of a loaded handle.
func (p *BeepPlayer) Play(handle preview.Handle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	h, err := p.lookupLocked(handle)
	if err != nil {
		return err
	}
	if h.ctrl != nil || h.finished {
		return fmt.Errorf("sound %s already played", h.id)
	}

	format := h.buffer.Format()
	if err := p.ensureInitialized(format.SampleRate); err != nil {
		return err
	}

	var streamer beep.Streamer = h.buffer.Streamer(0, h.buffer.Len())
	if format.SampleRate != p.sampleRate {
		streamer = beep.Resample(4, format.SampleRate, p.sampleRate, streamer)
	}

	h.ctrl = &beep.Ctrl{Streamer: streamer}

	// The callback runs on the audio thread with the speaker locked.
	speaker.Play(beep.Seq(h.ctrl, beep.Callback(func() {
		go p.finish(h)
	})))

	return nil
}

// finish delivers the completion callback unless the handle was stopped first.
func (p *BeepPlayer) finish(h *beepHandle) {
	p.mu.Lock()
	if h.finished {
		p.mu.Unlock()
		return
	}
	h.finished = true
	fn := h.onDone
	p.mu.Unlock()

	p.logger.Debug("sound finished", "handle", h.id)
	if fn != nil {
		fn()
	}
}

// Stop halts playback. The completion callback will not fire afterwards.
func (p *BeepPlayer) Stop(handle preview.Handle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	h, err := p.lookupLocked(handle)
	if err != nil {
		return err
	}
	p.stopLocked(h)
	return nil
}

func (p *BeepPlayer) stopLocked(h *beepHandle) {
	h.finished = true
	if h.ctrl == nil {
		return
	}

	speaker.Lock()
	h.ctrl.Streamer = nil
	speaker.Unlock()
}

// OnCompletion registers fn to run once when h plays to the end.
func (p *BeepPlayer) OnCompletion(handle preview.Handle, fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if h, err := p.lookupLocked(handle); err == nil {
		h.onDone = fn
	}
}

// Release stops h if needed and forgets it. Unknown or released handles are ignored.
func (p *BeepPlayer) Release(handle preview.Handle) {
	p.mu.Lock()
	defer p.mu.Unlock()

	h, err := p.lookupLocked(handle)
	if err != nil {
		return
	}
	p.stopLocked(h)
	delete(p.handles, h.id)
	p.logger.Debug("sound released", "handle", h.id)
}

func (p *BeepPlayer) lookupLocked(handle preview.Handle) (*beepHandle, error) {
	h, ok := handle.(*beepHandle)
	if !ok || h == nil || p.handles[h.id] != h {
		return nil, ErrUnknownHandle
	}
	return h, nil
}

// Loaded returns the number of handles not yet released.
func (p *BeepPlayer) Loaded() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.handles)
}

// Cached reports whether a decoded buffer for path is cached.
func (p *BeepPlayer) Cached(path string) bool {
	_, ok := p.cache.Get(path)
	return ok
}

// InvalidateCache removes a specific path from the cache.
func (p *BeepPlayer) InvalidateCache(path string) {
	p.cache.Delete(path)
	p.logger.Debug("sound cache invalidated", "path", path)
}

// ClearCache clears the sound cache.
func (p *BeepPlayer) ClearCache() {
	p.cache.Flush()
	p.logger.Debug("sound cache cleared")
}

// Close stops all playback and releases resources.
func (p *BeepPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for id, h := range p.handles {
		p.stopLocked(h)
		delete(p.handles, id)
	}

	if p.initialized {
		speaker.Close()
		p.initialized = false
	}

	p.cache.Flush()
	p.logger.Debug("audio player closed")
	return nil
}
