package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/MeKo-Tech/globetex/internal/encode"
	"github.com/MeKo-Tech/globetex/internal/noise"
	"github.com/MeKo-Tech/globetex/internal/presets"
	"github.com/MeKo-Tech/globetex/internal/query"
	"github.com/MeKo-Tech/globetex/internal/raster"
	"github.com/MeKo-Tech/globetex/internal/synth"
)

// DefaultCacheControl lets clients and proxies keep a texture for an hour.
const DefaultCacheControl = "public, max-age=3600"

// PresetSource resolves a preset name to stored parameters.
type PresetSource interface {
	Get(ctx context.Context, name string) (presets.Preset, error)
}

type TexturesConfig struct {
	CacheControl             string
	PNGCompression           string
	JPEGQuality              int
	MaxConcurrentGenerations int
	GenerationTimeout        time.Duration
	// RowWorkers is the number of goroutines filling rows of one texture.
	// Zero uses GOMAXPROCS.
	RowWorkers int
}

// Textures serves bump maps and cloud layers rendered per request.
type Textures struct {
	cfg     TexturesConfig
	logger  *slog.Logger
	presets PresetSource
	tables  *noise.TableCache
	sem     chan struct{}
	encOpts encode.Options

	activeRenders  atomic.Int32
	totalRendered  atomic.Int64
	totalFailed    atomic.Int64
	notModified    atomic.Int64
	currentRenders sync.Map // map[string]time.Time - etag -> start time
	queuedRenders  atomic.Int32
}

// TextureStatus is the JSON body of the status endpoint.
type TextureStatus struct {
	ActiveRenders  int      `json:"active_renders"`
	TotalRendered  int64    `json:"total_rendered"`
	TotalFailed    int64    `json:"total_failed"`
	NotModified    int64    `json:"not_modified"`
	CurrentKeys    []string `json:"current_keys"`
	MaxConcurrent  int      `json:"max_concurrent"`
	QueuedRenders  int      `json:"queued_renders"`
	CachedTables   int      `json:"cached_tables"`
	PresetsEnabled bool     `json:"presets_enabled"`
}

// NewTextures builds the texture handlers. store may be nil, in which case
// the preset parameter is rejected.
func NewTextures(cfg TexturesConfig, store PresetSource, logger *slog.Logger) *Textures {
	if cfg.CacheControl == "" {
		cfg.CacheControl = DefaultCacheControl
	}
	if cfg.MaxConcurrentGenerations <= 0 {
		cfg.MaxConcurrentGenerations = 1
	}
	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = 2 * time.Minute
	}
	if cfg.JPEGQuality <= 0 {
		cfg.JPEGQuality = encode.DefaultJPEGQuality
	}

	return &Textures{
		cfg:     cfg,
		logger:  logger,
		presets: store,
		tables:  noise.NewTableCache(),
		sem:     make(chan struct{}, cfg.MaxConcurrentGenerations),
		encOpts: encode.Options{
			Compression: encode.ParseCompression(cfg.PNGCompression),
			JPEGQuality: cfg.JPEGQuality,
		},
	}
}

// Routes returns a mux with the texture, status and health endpoints.
func (t *Textures) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/status", t.StatusHandler())
	mux.Handle("/bumpmap", t.Handler(synth.ModeBump))
	mux.Handle("/clouds", t.Handler(synth.ModeClouds))
	return mux
}

// Status returns the current render counters.
func (t *Textures) Status() TextureStatus {
	var current []string
	t.currentRenders.Range(func(key, _ any) bool {
		current = append(current, key.(string))
		return true
	})
	sort.Strings(current)

	return TextureStatus{
		ActiveRenders:  int(t.activeRenders.Load()),
		TotalRendered:  t.totalRendered.Load(),
		TotalFailed:    t.totalFailed.Load(),
		NotModified:    t.notModified.Load(),
		CurrentKeys:    current,
		MaxConcurrent:  t.cfg.MaxConcurrentGenerations,
		QueuedRenders:  int(t.queuedRenders.Load()),
		CachedTables:   t.tables.Len(),
		PresetsEnabled: t.presets != nil,
	}
}

// StatusHandler returns an HTTP handler for the status endpoint (JSON).
func (t *Textures) StatusHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Cache-Control", "no-store")

		if err := json.NewEncoder(w).Encode(t.Status()); err != nil {
			t.log().Error("failed to encode status", "error", err)
			http.Error(w, "failed to encode status", http.StatusInternalServerError)
			return
		}
	})
}

// Handler serves one texture mode.
func (t *Textures) Handler(mode synth.Mode) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.serveTexture(w, r, mode)
	})
}

// request is a parsed texture request.
type request struct {
	mode   synth.Mode
	field  synth.FieldParams
	clouds synth.NoiseParams
	format encode.Format
	thumb  int
	etag   string
}

func (t *Textures) serveTexture(w http.ResponseWriter, r *http.Request, mode synth.Mode) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, If-None-Match")
	w.Header().Set("Access-Control-Expose-Headers", "ETag, X-Request-ID")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD, OPTIONS")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	requestID := uuid.NewString()
	w.Header().Set("X-Request-ID", requestID)

	req, status, err := t.parseRequest(r.Context(), mode, r.URL.Query())
	if err != nil {
		t.log().Warn("rejected texture request", "mode", mode, "request_id", requestID, "error", err)
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("ETag", strconv.Quote(req.etag))
	w.Header().Set("Cache-Control", t.cfg.CacheControl)

	if etagMatches(r.Header.Get("If-None-Match"), req.etag) {
		t.notModified.Add(1)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	t.queuedRenders.Add(1)
	select {
	case t.sem <- struct{}{}:
		t.queuedRenders.Add(-1)
		defer func() { <-t.sem }()
	case <-r.Context().Done():
		t.queuedRenders.Add(-1)
		http.Error(w, "request cancelled", http.StatusRequestTimeout)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), t.cfg.GenerationTimeout)
	defer cancel()

	start := time.Now()
	t.activeRenders.Add(1)
	t.currentRenders.Store(req.etag, start)

	body, err := t.render(ctx, req)

	t.activeRenders.Add(-1)
	t.currentRenders.Delete(req.etag)

	if err != nil {
		t.totalFailed.Add(1)
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			status = http.StatusGatewayTimeout
		case errors.Is(err, context.Canceled):
			status = http.StatusRequestTimeout
		}
		t.log().Error("failed to render texture", "mode", mode, "key", req.etag, "request_id", requestID, "error", err)
		http.Error(w, fmt.Sprintf("failed to render %s: %v", mode, err), status)
		return
	}
	t.totalRendered.Add(1)
	t.log().Info("texture rendered",
		"mode", mode,
		"key", req.etag,
		"format", req.format,
		"bytes", len(body),
		"request_id", requestID,
		"ms", time.Since(start).Milliseconds())

	w.Header().Set("Content-Type", req.format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(body)
}

// parseRequest resolves presets and parameters. The returned status is the
// HTTP code to use when err is non-nil.
func (t *Textures) parseRequest(ctx context.Context, mode synth.Mode, values url.Values) (request, int, error) {
	if name := strings.TrimSpace(values.Get(query.PresetKey)); name != "" {
		if t.presets == nil {
			return request{}, http.StatusBadRequest, fmt.Errorf("presets are not enabled")
		}
		p, err := t.presets.Get(ctx, name)
		if errors.Is(err, presets.ErrNotFound) {
			return request{}, http.StatusNotFound, err
		}
		if err != nil {
			return request{}, http.StatusInternalServerError, err
		}
		values, err = query.WithPreset(p, mode, values)
		if errors.Is(err, query.ErrPresetMode) {
			return request{}, http.StatusBadRequest, err
		}
		if err != nil {
			return request{}, http.StatusInternalServerError, err
		}
	}

	req := request{mode: mode, thumb: query.Thumb(values)}
	var err error
	switch mode {
	case synth.ModeBump:
		req.field, err = query.Field(values)
		req.format = req.field.Format
		req.etag = req.field.Key()
	case synth.ModeClouds:
		req.clouds, err = query.Noise(values)
		req.format = req.clouds.Format
		req.etag = req.clouds.Key()
	default:
		return request{}, http.StatusNotFound, fmt.Errorf("unknown mode %q", mode)
	}
	if err != nil {
		return request{}, http.StatusBadRequest, err
	}
	if req.thumb > 0 {
		req.etag = synth.CacheKey(mode, req.etag, "thumb", req.thumb)
	}
	return req, http.StatusOK, nil
}

func (t *Textures) render(ctx context.Context, req request) ([]byte, error) {
	opts := []synth.Option{
		synth.WithWorkers(t.cfg.RowWorkers),
		synth.WithTableCache(t.tables),
		synth.WithLogger(t.log()),
	}

	var (
		buf *raster.Buffer
		err error
	)
	if req.mode == synth.ModeBump {
		buf, err = synth.SynthesizeField(ctx, req.field, opts...)
	} else {
		buf, err = synth.SynthesizeNoiseField(ctx, req.clouds, opts...)
	}
	if err != nil {
		return nil, err
	}

	var img image.Image
	if req.thumb > 0 {
		img, err = encode.Thumbnail(buf, req.thumb)
	} else {
		img, err = encode.Image(buf)
	}
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := encode.EncodeImage(&out, img, req.format, t.encOpts); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// etagMatches reports whether an If-None-Match header names etag.
func etagMatches(header, etag string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		part = strings.TrimPrefix(part, "W/")
		if part == strconv.Quote(etag) || part == etag {
			return true
		}
	}
	return false
}

func (t *Textures) log() *slog.Logger {
	if t.logger != nil {
		return t.logger
	}
	return slog.Default()
}
