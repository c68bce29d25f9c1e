// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package screenshot

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/draw"

	"github.com/gogpu/holoplay/internal/logging"
)

// Capture errors.
var (
	// ErrNoImage is returned when a request is processed without an image.
	ErrNoImage = errors.New("screenshot: no image to capture")
)

// DefaultName is used when a request carries no filename.
const DefaultName = "Screenshot"

// maxSuffix bounds the search for a free numbered filename.
const maxSuffix = 100000

// Capturer holds the pending requests and writes them out.
type Capturer struct {
	logger *slog.Logger

	mu      sync.Mutex
	dir     string
	crops   [numKinds]image.Rectangle
	pending [numKinds]*Request

	subMu   sync.Mutex
	subs    map[int]func(Result)
	nextSub int
}

// Option configures a Capturer.
type Option func(*Capturer)

// WithDir sets the directory bare filenames are saved into.
func WithDir(dir string) Option {
	return func(c *Capturer) {
		c.dir = dir
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Capturer) {
		c.logger = logging.OrNop(l)
	}
}

// NewCapturer returns a Capturer with no pending requests.
func NewCapturer(opts ...Option) *Capturer {
	c := &Capturer{
		logger: logging.Nop(),
		subs:   make(map[int]func(Result)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetDir changes the directory for bare filenames.
func (c *Capturer) SetDir(dir string) {
	c.mu.Lock()
	c.dir = dir
	c.mu.Unlock()
}

// SetCrop sets the crop applied to future requests of kind.
func (c *Capturer) SetCrop(kind Kind, r image.Rectangle) {
	if !kind.Valid() {
		return
	}
	c.mu.Lock()
	c.crops[kind] = r
	c.mu.Unlock()
}

// Prepare queues a screenshot of kind. It returns false, leaving the
// pending request untouched, if one of that kind is already queued.
//
// An empty name becomes DefaultName. A name without a slash is placed in
// the capture directory. With addSuffix the extension is dropped and the
// first free name%05d.png is used; otherwise .png is appended when the name
// has no extension.
func (c *Capturer) Prepare(kind Kind, name string, showUI, addSuffix bool) bool {
	if !kind.Valid() {
		return false
	}
	c.mu.Lock()
	dir, crop := c.dir, c.crops[kind]
	c.mu.Unlock()
	return c.Submit(Request{
		Kind:     kind,
		Filename: resolveName(dir, name, addSuffix),
		ShowUI:   showUI && kind == Lenticular,
		Crop:     crop,
	})
}

// Submit queues r with its filename used as given. It returns false if a
// request of r.Kind is already queued.
func (c *Capturer) Submit(r Request) bool {
	if !r.Kind.Valid() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending[r.Kind] != nil {
		return false
	}
	c.pending[r.Kind] = &r
	c.logger.Debug("screenshot requested", "kind", r.Kind, "file", r.Filename)
	return true
}

// Pending returns the queued request of kind.
func (c *Capturer) Pending(kind Kind) (Request, bool) {
	if !kind.Valid() {
		return Request{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if r := c.pending[kind]; r != nil {
		return *r, true
	}
	return Request{}, false
}

// AnyPending reports whether any request is queued.
func (c *Capturer) AnyPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.pending {
		if r != nil {
			return true
		}
	}
	return false
}

// Process services the pending request of kind from img. Without a pending
// request it does nothing and returns "". The request is cleared and
// observers notified whatever the outcome.
func (c *Capturer) Process(kind Kind, img image.Image) (string, error) {
	req, ok := c.Pending(kind)
	if !ok {
		return "", nil
	}
	if req.Filename == "" {
		c.finish(Result{Kind: kind})
		return "", nil
	}
	if img == nil {
		return "", c.Fail(kind, ErrNoImage)
	}

	out := opaqueCopy(img, req.Crop)
	name := pngName(req.Filename)
	err := writePNG(name, out)
	if err != nil {
		err = fmt.Errorf("screenshot: write %s: %w", name, err)
		c.logger.Error("screenshot failed", "kind", kind, "err", err)
	} else {
		c.logger.Info("screenshot saved", "kind", kind, "file", name)
	}
	c.finish(Result{
		Kind:     kind,
		Filename: name,
		Width:    out.Bounds().Dx(),
		Height:   out.Bounds().Dy(),
		Err:      err,
	})
	return name, err
}

// Fail completes the pending request of kind with err, for buffers that
// could not be read back. It returns err.
func (c *Capturer) Fail(kind Kind, err error) error {
	req, ok := c.Pending(kind)
	if !ok {
		return err
	}
	c.logger.Error("screenshot failed", "kind", kind, "err", err)
	c.finish(Result{Kind: kind, Filename: req.Filename, Err: err})
	return err
}

func (c *Capturer) finish(r Result) {
	c.mu.Lock()
	c.pending[r.Kind] = nil
	c.mu.Unlock()

	c.subMu.Lock()
	fns := make([]func(Result), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()
	for _, fn := range fns {
		fn(r)
	}
}

// Subscribe registers fn to be called after every completed request. The
// returned func removes it.
func (c *Capturer) Subscribe(fn func(Result)) (cancel func()) {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, id)
			c.subMu.Unlock()
		})
	}
}

func resolveName(dir, name string, addSuffix bool) string {
	if name == "" {
		name = DefaultName
	}
	if !strings.Contains(name, "/") && dir != "" {
		name = filepath.Join(dir, name)
	}
	if addSuffix {
		return nextFreeName(strings.TrimSuffix(name, filepath.Ext(name)))
	}
	if filepath.Ext(name) == "" {
		name += ".png"
	}
	return name
}

func nextFreeName(base string) string {
	for i := range maxSuffix {
		p := fmt.Sprintf("%s%05d.png", base, i)
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			return p
		}
	}
	return base + ".png"
}

// pngName replaces any extension with .png.
func pngName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".png"
}

// opaqueCopy copies the crop of img into a fresh image with every alpha
// forced to 255.
func opaqueCopy(img image.Image, crop image.Rectangle) *image.RGBA {
	b := img.Bounds()
	r := b
	if !crop.Empty() {
		if c := crop.Add(b.Min).Intersect(b); !c.Empty() {
			r = c
		}
	}
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), img, r.Min, draw.Src)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}

func writePNG(name string, img image.Image) error {
	if dir := filepath.Dir(name); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
