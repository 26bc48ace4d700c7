package assets

import (
	"container/list"
	"context"
	"sync"

	"github.com/neurotoxic/gigaudio/internal/log"
)

// Buffer is one decoded audio asset. Buffers are immutable after decode;
// everything downstream shares the same instance.
type Buffer struct {
	Data        []float32
	SampleRate  int
	Channels    int
	Frames      int
	DurationSec float64
}

// ByteSize estimates the in-memory footprint (32-bit float samples).
func (b *Buffer) ByteSize() int {
	if b == nil {
		return 0
	}
	return b.Frames * b.Channels * 4
}

// Fetcher retrieves raw asset bytes. A non-2xx response must surface as an
// error; the cache never inspects status codes itself.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) { return f(ctx, url) }

// Decoder turns fetched bytes into a Buffer.
type Decoder interface {
	Decode(data []byte) (*Buffer, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(data []byte) (*Buffer, error)

func (f DecoderFunc) Decode(data []byte) (*Buffer, error) { return f(data) }

// Cache eviction defaults, matching the playback engine's budget for
// decoded gig audio.
const (
	DefaultMaxEntries = 10
	DefaultMaxBytes   = 50 * 1024 * 1024
)

type cacheEntry struct {
	key string
	buf *Buffer
}

type inflight struct {
	done chan struct{}
	buf  *Buffer
}

// Cache is the decoded-buffer cache with in-flight deduplication. The
// in-flight map entry is registered before any blocking work begins, so a
// second caller arriving while the first load is still running always joins
// it instead of fetching again. Failed loads resolve to nil and are never
// cached, so a later sequential call retries.
type Cache struct {
	mu         sync.Mutex
	resolver   *Resolver
	fetcher    Fetcher
	decoder    Decoder
	logger     *log.Logger
	maxEntries int
	maxBytes   int
	totalBytes int
	order      *list.List // front = oldest
	entries    map[string]*list.Element
	pending    map[string]*inflight
}

// CacheConfig bundles the cache collaborators. MaxEntries/MaxBytes of zero
// take the defaults; negative MaxEntries disables the count limit.
type CacheConfig struct {
	Resolver   *Resolver
	Fetcher    Fetcher
	Decoder    Decoder
	Logger     *log.Logger
	MaxEntries int
	MaxBytes   int
}

func NewCache(cfg CacheConfig) *Cache {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}
	maxEntries := cfg.MaxEntries
	if maxEntries == 0 {
		maxEntries = DefaultMaxEntries
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Cache{
		resolver:   cfg.Resolver,
		fetcher:    cfg.Fetcher,
		decoder:    cfg.Decoder,
		logger:     logger,
		maxEntries: maxEntries,
		maxBytes:   maxBytes,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
		pending:    make(map[string]*inflight),
	}
}

// Load returns the decoded buffer for an asset name, or nil when the asset
// is missing or cannot be decoded. Errors are logged here and swallowed;
// missing audio is a recoverable condition for the caller.
func (c *Cache) Load(ctx context.Context, filename string) *Buffer {
	if filename == "" {
		return nil
	}
	key := NormalizePath(filename)

	c.mu.Lock()
	if el, ok := c.entries[key]; ok {
		// Promote to most-recently-used.
		c.order.MoveToBack(el)
		buf := el.Value.(*cacheEntry).buf
		c.mu.Unlock()
		return buf
	}
	if fl, ok := c.pending[key]; ok {
		c.mu.Unlock()
		select {
		case <-fl.done:
			return fl.buf
		case <-ctx.Done():
			return nil
		}
	}
	fl := &inflight{done: make(chan struct{})}
	c.pending[key] = fl
	c.mu.Unlock()

	buf := c.fetchAndDecode(ctx, filename)

	c.mu.Lock()
	delete(c.pending, key)
	if buf != nil {
		c.store(key, buf)
	}
	c.mu.Unlock()

	fl.buf = buf
	close(fl.done)
	return buf
}

// Len returns the number of cached buffers.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// TotalBytes returns the estimated cache footprint.
func (c *Cache) TotalBytes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalBytes
}

func (c *Cache) fetchAndDecode(ctx context.Context, filename string) *Buffer {
	u, source := c.resolver.Resolve(filename)
	if u == "" {
		c.logger.Warnf("assets: audio asset not found: %q", filename)
		return nil
	}
	if source == SourcePublic {
		c.logger.Warnf("assets: %q not bundled, falling back to public path %s", filename, u)
	}
	data, err := c.fetcher.Fetch(ctx, u)
	if err != nil {
		c.logger.Warnf("assets: failed to load audio %q from %s: %v", filename, u, err)
		return nil
	}
	buf, err := c.decoder.Decode(data)
	if err != nil || buf == nil {
		c.logger.Warnf("assets: failed to decode audio %q: %v", filename, err)
		return nil
	}
	c.logger.Debugf("assets: decoded %q (%.1fs, %dHz, %.2fMB)",
		filename, buf.DurationSec, buf.SampleRate, float64(buf.ByteSize())/1024/1024)
	return buf
}

// store inserts a buffer, evicting oldest entries until both the count and
// byte limits hold. The new entry always fits even when it alone exceeds
// the byte limit. Caller holds c.mu.
func (c *Cache) store(key string, buf *Buffer) {
	newBytes := buf.ByteSize()
	for c.order.Len() > 0 {
		withinCount := c.maxEntries < 0 || c.order.Len() < c.maxEntries
		withinBytes := c.totalBytes+newBytes <= c.maxBytes
		if withinCount && withinBytes {
			break
		}
		oldest := c.order.Front()
		entry := oldest.Value.(*cacheEntry)
		c.totalBytes -= entry.buf.ByteSize()
		c.order.Remove(oldest)
		delete(c.entries, entry.key)
	}
	c.entries[key] = c.order.PushBack(&cacheEntry{key: key, buf: buf})
	c.totalBytes += newBytes
}
