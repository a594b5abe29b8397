// Package assets prepares local images referenced by image blocks so the
// resulting email can be sent as is: images are decoded, rasterized when
// needed, downscaled to the content width and re-encoded in a format mail
// clients display.
package assets

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gosimple/slug"
	"github.com/h2non/filetype"
	"github.com/maruel/natural"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"mailbuilder/common"
	"mailbuilder/config"
	"mailbuilder/mail"
)

// Dir is the bundle directory prepared images are stored under.
const Dir = "images"

// Image is a prepared local image.
type Image struct {
	// Name is the path inside a bundle, always with forward slashes.
	Name     string
	Source   string
	MimeType string
	Data     []byte
	Width    int
	Height   int
}

// DataURL returns image as data: url suitable for inlining.
func (i *Image) DataURL() string {
	return "data:" + i.MimeType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Loader reads image source referenced by a block.
type Loader func(name string) ([]byte, error)

// DirLoader reads sources relative to dir. Sources escaping dir are
// rejected.
func DirLoader(dir string) Loader {
	return func(name string) ([]byte, error) {
		rel := filepath.FromSlash(name)
		if !filepath.IsLocal(rel) {
			return nil, fmt.Errorf("image path %q is outside of template directory", name)
		}
		return os.ReadFile(filepath.Join(dir, rel))
	}
}

// MapLoader reads sources from in-memory files, e.g. read from a bundle.
func MapLoader(files map[string][]byte) Loader {
	return func(name string) ([]byte, error) {
		if data, ok := files[path.Clean(name)]; ok {
			return data, nil
		}
		return nil, fmt.Errorf("image %q: %w", name, os.ErrNotExist)
	}
}

// IsLocal reports whether src references local file rather than remote or
// embedded resource.
func IsLocal(src string) bool {
	src = strings.TrimSpace(src)
	if src == "" {
		return false
	}
	u, err := url.Parse(src)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}

// Preparer processes image blocks of one template. The same source used by
// several blocks is prepared once.
type Preparer struct {
	cfg      *config.ImagesConfig
	maxWidth int
	images   map[string]*Image
	names    map[string]struct{}
	log      *zap.Logger
}

// NewPreparer creates preparer, images wider than maxWidth are downscaled.
func NewPreparer(cfg *config.ImagesConfig, maxWidth int, log *zap.Logger) *Preparer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Preparer{
		cfg:      cfg,
		maxWidth: maxWidth,
		images:   make(map[string]*Image),
		names:    make(map[string]struct{}),
		log:      log.Named("assets"),
	}
}

// Prepare returns copy of blocks with local images processed. Never fails:
// blocks with images which cannot be prepared are left unchanged.
func (p *Preparer) Prepare(blocks []mail.Block, load Loader) []mail.Block {
	out := make([]mail.Block, len(blocks))
	for i, b := range blocks {
		out[i] = b.Clone()
		if b.Type != common.BlockTypeImage || !IsLocal(b.Content.Src) {
			continue
		}
		img, err := p.image(b.Content.Src, load)
		if err != nil {
			p.log.Warn("Unable to prepare image, leaving block unchanged",
				zap.String("id", b.ID), zap.String("src", b.Content.Src), zap.Error(err))
			continue
		}

		c := &out[i].Content
		if p.cfg.Inline {
			c.Src = img.DataURL()
		} else {
			c.Src = img.Name
		}
		switch {
		case c.Width == 0 && c.Height == 0:
			c.Width, c.Height = img.Width, img.Height
		case c.Height == 0:
			c.Height = max(c.Width*img.Height/max(img.Width, 1), 1)
		case c.Width == 0:
			c.Width = max(c.Height*img.Width/max(img.Height, 1), 1)
		}
	}
	return out
}

func (p *Preparer) image(src string, load Loader) (*Image, error) {
	src = path.Clean(strings.TrimSpace(src))
	if img, ok := p.images[src]; ok {
		return img, nil
	}
	data, err := load(src)
	if err != nil {
		return nil, err
	}
	img, err := PrepareImage(src, data, p.cfg, p.maxWidth, p.log)
	if err != nil {
		return nil, err
	}
	img.Name = p.uniqueName(img.Name)
	p.images[src] = img
	return img, nil
}

func (p *Preparer) uniqueName(name string) string {
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 2; ; i++ {
		if _, taken := p.names[name]; !taken {
			p.names[name] = struct{}{}
			return name
		}
		name = base + "-" + strconv.Itoa(i) + ext
	}
}

// Images returns prepared images ordered by name.
func (p *Preparer) Images() []*Image {
	out := make([]*Image, 0, len(p.images))
	for _, img := range p.images {
		out = append(out, img)
	}
	sort.Slice(out, func(i, j int) bool { return natural.Less(out[i].Name, out[j].Name) })
	return out
}

// PrepareImage decodes image data and re-encodes it when anything had to be
// changed, otherwise original data is kept.
func PrepareImage(name string, data []byte, cfg *config.ImagesConfig, maxWidth int, log *zap.Logger) (*Image, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var (
		img     image.Image
		imgType string
		changed bool
		err     error
	)
	if isSVG(name, data) {
		// mail clients do not display svg
		if img, err = RasterizeSVG(data, 0); err != nil {
			return nil, fmt.Errorf("unable to rasterize svg: %w", err)
		}
		imgType, changed = "svg", true
	} else {
		kind, err := filetype.Match(data)
		if err != nil || kind == filetype.Unknown {
			return nil, errors.New("unknown image type")
		}
		if !filetype.IsImage(data) {
			return nil, fmt.Errorf("not an image (%s)", kind.MIME.Value)
		}
		if img, imgType, err = image.Decode(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("unable to decode %s image: %w", kind.Extension, err)
		}
	}

	if maxWidth > 0 && img.Bounds().Dx() > maxWidth {
		log.Debug("Downscaling image", zap.String("src", name), zap.Int("width", img.Bounds().Dx()), zap.Int("max", maxWidth))
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
		changed = true
	}

	target := targetType(imgType, changed, cfg.Format)
	// jpeg has no alpha channel, transparent areas would turn black
	if (target == "jpeg" || target == "png" && cfg.RemovePNGTransparency) && !opaque(img) {
		log.Debug("Removing transparency", zap.String("src", name), zap.String("target", target))
		img = flatten(img)
		changed = true
	}
	if target != imgType {
		changed = true
	}

	out := &Image{
		Source: name,
		Data:   data,
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}
	if changed {
		if target == "png" {
			if g, ok := toGray(img); ok {
				img = g
			}
		}
		if out.Data, err = encodeImage(img, target, cfg.JPEGQuality); err != nil {
			return nil, err
		}
	}
	ext := extFor(target)
	out.MimeType = mime.TypeByExtension("." + ext)
	out.Name = path.Join(Dir, imageSlug(name)+"."+ext)
	return out, nil
}

// targetType selects output encoding. Formats other than png, jpeg and gif
// are poorly supported by mail clients and converted to png, gif is kept only
// when untouched to preserve animation.
func targetType(imgType string, changed bool, format config.ImageFormat) string {
	switch format {
	case config.ImageFormatPng:
		return "png"
	case config.ImageFormatJpeg:
		return "jpeg"
	}
	switch imgType {
	case "jpeg", "png":
		return imgType
	case "gif":
		if !changed {
			return imgType
		}
	}
	return "png"
}

func encodeImage(img image.Image, imgType string, quality int) ([]byte, error) {
	buf := new(bytes.Buffer)
	var err error
	switch imgType {
	case "png":
		err = imaging.Encode(buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	case "jpeg":
		err = imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(quality))
	case "gif":
		err = imaging.Encode(buf, img, imaging.GIF)
	default:
		return nil, fmt.Errorf("unsupported output format %q", imgType)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to encode %s: %w", imgType, err)
	}
	return buf.Bytes(), nil
}

func isSVG(name string, data []byte) bool {
	if strings.EqualFold(path.Ext(name), ".svg") {
		return true
	}
	head := data[:min(len(data), 512)]
	return bytes.Contains(head, []byte("<svg"))
}

func opaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return true
}

func flatten(img image.Image) image.Image {
	dst := image.NewRGBA(img.Bounds())
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Over)
	return dst
}

func extFor(imgType string) string {
	if imgType == "jpeg" {
		return "jpg"
	}
	return imgType
}

func imageSlug(name string) string {
	base := path.Base(name)
	s := slug.Make(strings.TrimSuffix(base, path.Ext(base)))
	if s == "" {
		return "image"
	}
	return s
}
