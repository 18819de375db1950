// Package imageio reads and writes the pipeline's source and output
// images. The format is chosen by file extension.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned for an unknown extension or a format
// that cannot be written.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Format identifies an image encoding.
type Format int

const (
	FormatUnknown Format = iota
	FormatPNG
	FormatJPEG
	FormatTIFF
	FormatBMP
	// FormatWebP can be decoded only.
	FormatWebP
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatJPEG:
		return "jpeg"
	case FormatTIFF:
		return "tiff"
	case FormatBMP:
		return "bmp"
	case FormatWebP:
		return "webp"
	default:
		return "unknown"
	}
}

// FormatFromPath maps a file extension to a format.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG
	case ".jpg", ".jpeg":
		return FormatJPEG
	case ".tif", ".tiff":
		return FormatTIFF
	case ".bmp":
		return FormatBMP
	case ".webp":
		return FormatWebP
	default:
		return FormatUnknown
	}
}

// Options tune encoding.
type Options struct {
	// JPEGQuality ranges 1..100. Zero selects the encoder default.
	JPEGQuality int
	// TIFFCompress enables deflate compression.
	TIFFCompress bool
}

// Decode reads an image of format f and converts it to RGBA.
func Decode(r io.Reader, f Format) (*image.RGBA, error) {
	var (
		img image.Image
		err error
	)
	switch f {
	case FormatPNG:
		img, err = png.Decode(r)
	case FormatJPEG:
		img, err = jpeg.Decode(r)
	case FormatTIFF:
		img, err = tiff.Decode(r)
	case FormatBMP:
		img, err = bmp.Decode(r)
	case FormatWebP:
		img, err = webp.Decode(r)
	default:
		return nil, fmt.Errorf("decode %s: %w", f, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", f, err)
	}
	return ToRGBA(img), nil
}

// Encode writes img in format f.
func Encode(w io.Writer, img image.Image, f Format, opts Options) error {
	var err error
	switch f {
	case FormatPNG:
		err = png.Encode(w, img)
	case FormatJPEG:
		var jo *jpeg.Options
		if opts.JPEGQuality > 0 {
			jo = &jpeg.Options{Quality: opts.JPEGQuality}
		}
		err = jpeg.Encode(w, img, jo)
	case FormatTIFF:
		to := &tiff.Options{Compression: tiff.Uncompressed}
		if opts.TIFFCompress {
			to.Compression = tiff.Deflate
		}
		err = tiff.Encode(w, img, to)
	case FormatBMP:
		err = bmp.Encode(w, img)
	default:
		return fmt.Errorf("encode %s: %w", f, ErrUnsupportedFormat)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	return nil
}

// ReadFile decodes the image at path.
func ReadFile(path string) (*image.RGBA, error) {
	f := FormatFromPath(path)
	if f == FormatUnknown {
		return nil, &FileError{Op: "read", Path: path, Err: ErrUnsupportedFormat}
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, &FileError{Op: "read", Path: path, Err: err}
	}
	defer file.Close()

	img, err := Decode(file, f)
	if err != nil {
		return nil, &FileError{Op: "read", Path: path, Err: err}
	}
	return img, nil
}

// WriteFile encodes img to path. The file is written beside the target
// and renamed into place.
func WriteFile(path string, img image.Image, opts Options) error {
	f := FormatFromPath(path)
	if f == FormatUnknown || f == FormatWebP {
		return &FileError{Op: "write", Path: path, Err: ErrUnsupportedFormat}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".darkroom-*"+filepath.Ext(path))
	if err != nil {
		return &FileError{Op: "write", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := Encode(tmp, img, f, opts); err != nil {
		tmp.Close()
		return &FileError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &FileError{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return &FileError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// ToRGBA returns img as an RGBA image with its origin at 0,0. An RGBA
// input already at the origin is returned as is.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// FileError records a failed image file operation.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s image %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
