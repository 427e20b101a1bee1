// Package source loads pictures from the places the editor accepts them:
// files, data URIs, web URLs, the clipboard and the screen.
package source

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/example/snapcanvas/internal/scene"
)

// Reference prefixes for non-file sources.
const (
	ClipboardRef = "clipboard:"
	ScreenRef    = "screen:"
)

// DefaultMaxBytes bounds how much is read from any single source.
const DefaultMaxBytes = 64 << 20

// MaxPixels bounds the decoded size of any single source.
const MaxPixels = 1 << 26

var (
	// ErrUnsupportedFileType is returned for input that is not an image.
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrDecodeFailed covers every failure to fetch or decode a picture.
	ErrDecodeFailed = errors.New("decode failed")
)

// Decoder turns references into pictures.
type Decoder struct {
	client    *http.Client
	maxBytes  int64
	root      string
	fallback  fs.FS
	clipboard func() ([]byte, error)
	screen    func(ctx context.Context, selector string) (image.Image, error)
	log       logrus.FieldLogger
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithHTTPClient sets the client used for http(s) references.
func WithHTTPClient(c *http.Client) Option { return func(d *Decoder) { d.client = c } }

// WithMaxBytes bounds the size of any single source.
func WithMaxBytes(n int64) Option { return func(d *Decoder) { d.maxBytes = n } }

// WithRoot resolves relative and site-absolute paths ("/uploads/x.png")
// against dir.
func WithRoot(dir string) Option { return func(d *Decoder) { d.root = dir } }

// WithFS serves site-absolute paths from fsys when they are not found on
// disk.
func WithFS(fsys fs.FS) Option { return func(d *Decoder) { d.fallback = fsys } }

// WithClipboard sets the function that reads image bytes from the clipboard.
func WithClipboard(fn func() ([]byte, error)) Option { return func(d *Decoder) { d.clipboard = fn } }

// WithScreen sets the function that captures the screen. It receives the
// monitor selector following ScreenRef, which may be empty.
func WithScreen(fn func(ctx context.Context, selector string) (image.Image, error)) Option {
	return func(d *Decoder) { d.screen = fn }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option { return func(d *Decoder) { d.log = l } }

// New returns a decoder with a 30 second HTTP timeout.
func New(opts ...Option) *Decoder {
	d := &Decoder{
		client:   &http.Client{Timeout: 30 * time.Second},
		maxBytes: DefaultMaxBytes,
		log:      logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Decode loads ref and decodes it. The reference is kept on the picture.
func (d *Decoder) Decode(ctx context.Context, ref string) (scene.Picture, error) {
	log := d.log.WithField("ref", shorten(ref))
	switch {
	case strings.HasPrefix(ref, ScreenRef):
		if d.screen == nil {
			return scene.Picture{}, fmt.Errorf("%w: screen capture unavailable", ErrDecodeFailed)
		}
		img, err := d.screen(ctx, strings.TrimPrefix(ref, ScreenRef))
		if err != nil {
			return scene.Picture{}, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
		}
		return scene.Picture{Ref: ref, Image: img}, nil
	case ref == ClipboardRef:
		if d.clipboard == nil {
			return scene.Picture{}, fmt.Errorf("%w: clipboard unavailable", ErrDecodeFailed)
		}
		b, err := d.clipboard()
		if err != nil {
			return scene.Picture{}, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
		}
		return DecodeBytes(ref, b)
	}
	b, err := d.read(ctx, ref)
	if err != nil {
		log.WithError(err).Debug("read failed")
		return scene.Picture{}, err
	}
	pic, err := DecodeBytes(ref, b)
	if err != nil {
		return scene.Picture{}, err
	}
	w, h := pic.Size()
	log.WithFields(logrus.Fields{"width": w, "height": h}).Debug("decoded")
	return pic, nil
}

func (d *Decoder) read(ctx context.Context, ref string) ([]byte, error) {
	switch {
	case strings.HasPrefix(ref, "data:"):
		return decodeDataURI(ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return d.fetch(ctx, ref)
	}
	path := ref
	if u, err := url.Parse(ref); err == nil && u.Scheme == "file" {
		path = u.Path
	}
	if d.root != "" && !exists(path) {
		path = filepath.Join(d.root, filepath.FromSlash(strings.TrimPrefix(path, "/")))
	}
	f, err := os.Open(path)
	if err != nil && d.fallback != nil && errors.Is(err, fs.ErrNotExist) {
		if ff, ferr := d.fallback.Open(strings.TrimPrefix(filepath.ToSlash(ref), "/")); ferr == nil {
			defer ff.Close()
			return d.limit(ff)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}
	defer f.Close()
	return d.limit(f)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (d *Decoder) limit(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, d.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}
	if int64(len(b)) > d.maxBytes {
		return nil, fmt.Errorf("%w: source larger than %d bytes", ErrDecodeFailed, d.maxBytes)
	}
	return b, nil
}

func (d *Decoder) fetch(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", ErrDecodeFailed, shorten(ref), resp.Status)
	}
	return d.limit(resp.Body)
}

func decodeDataURI(ref string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("%w: malformed data uri", ErrDecodeFailed)
	}
	if mt, _, _ := strings.Cut(meta, ";"); mt != "" && !strings.HasPrefix(mt, "image/") {
		return nil, fmt.Errorf("%s: %w", mt, ErrUnsupportedFileType)
	}
	if strings.HasSuffix(meta, ";base64") {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
		}
		return b, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}
	return []byte(s), nil
}

// Sniff returns the MIME type of b, or ErrUnsupportedFileType when b is not
// an image.
func Sniff(b []byte) (string, error) {
	mt := mimetype.Detect(b)
	for m := mt; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			return mt.String(), nil
		}
	}
	return "", fmt.Errorf("%s: %w", mt.String(), ErrUnsupportedFileType)
}

// DecodeBytes checks that b is an image and decodes it, honouring EXIF
// orientation.
func DecodeBytes(ref string, b []byte) (scene.Picture, error) {
	if _, err := Sniff(b); err != nil {
		return scene.Picture{}, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		return scene.Picture{}, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return scene.Picture{}, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrDecodeFailed, cfg.Width, cfg.Height, MaxPixels)
	}
	img, err := imaging.Decode(bytes.NewReader(b), imaging.AutoOrientation(true))
	if err != nil {
		return scene.Picture{}, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}
	return scene.Picture{Ref: ref, Image: img}, nil
}

// Thumbnail scales img down to fit within w x h.
func Thumbnail(img image.Image, w, h int) *image.NRGBA {
	return imaging.Fit(img, w, h, imaging.Lanczos)
}

func shorten(ref string) string {
	if len(ref) > 64 {
		return ref[:61] + "..."
	}
	return ref
}
