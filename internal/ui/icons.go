package ui

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// StationIconSize is the edge length of list thumbnails in pixels.
const StationIconSize = 32

// DefaultStationIcon is shown when a station has no usable icon.
func DefaultStationIcon() fyne.Resource { return theme.MediaMusicIcon() }

// Thumbnail decodes an image of any registered format and returns it as a
// size x size PNG, letterboxed to keep the aspect ratio.
func Thumbnail(data []byte, size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid thumbnail size %d", size)
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode icon: %w", err)
	}
	sb := src.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 {
		return nil, fmt.Errorf("decode icon: empty image")
	}

	w, h := size, size
	if sb.Dx() > sb.Dy() {
		h = max(1, size*sb.Dy()/sb.Dx())
	} else if sb.Dy() > sb.Dx() {
		w = max(1, size*sb.Dx()/sb.Dy())
	}
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	off := image.Pt((size-w)/2, (size-h)/2)
	xdraw.CatmullRom.Scale(dst, image.Rectangle{Min: off, Max: off.Add(image.Pt(w, h))}, src, sb, xdraw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LoadStationIcon turns a cached icon file into a list thumbnail, falling
// back to DefaultStationIcon when the file is missing or not decodable.
func LoadStationIcon(path string) (fyne.Resource, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultStationIcon(), fmt.Errorf("no icon file")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultStationIcon(), err
	}
	thumb, err := Thumbnail(data, StationIconSize)
	if err != nil {
		return DefaultStationIcon(), err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".png"
	return fyne.NewStaticResource(name, thumb), nil
}
