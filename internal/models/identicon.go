package models

import (
	"bytes"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strconv"
)

const DefaultIdenticonSize = 200

var identiconBackground = color.NRGBA{R: 240, G: 240, B: 240, A: 255}

// Identicon renders the avatar for the identity's email as a PNG data URI.
func (i *Identity) Identicon(size int) string {
	return Identicon(i.Email, size)
}

// Identicon derives a 5x5 mirrored avatar from the MD5 digest of email.
// An empty email yields a blank placeholder tile.
func Identicon(email string, size int) string {
	if size <= 0 {
		size = DefaultIdenticonSize
	}
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: identiconBackground}, image.Point{}, draw.Src)

	if email != "" {
		sum := md5.Sum([]byte(email))
		paintIdenticon(img, hex.EncodeToString(sum[:]), size)
	}

	var buf bytes.Buffer
	// png.Encode only fails on writer errors, a bytes.Buffer never returns one
	_ = png.Encode(&buf, img)
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func paintIdenticon(img *image.NRGBA, digest string, size int) {
	hue, _ := strconv.ParseUint(digest[len(digest)-7:], 16, 32)
	fg := hslToRGB(float64(hue)/float64(0xfffffff), 0.7, 0.5)

	baseMargin := int(math.Floor(float64(size) * 0.08))
	cell := (size - baseMargin*2) / 5
	margin := (size - cell*5) / 2

	fill := func(col, row int) {
		r := image.Rect(col*cell+margin, row*cell+margin, (col+1)*cell+margin, (row+1)*cell+margin)
		draw.Draw(img, r, &image.Uniform{C: fg}, image.Point{}, draw.Src)
	}

	// the first 15 nibbles decide the centre column and the two mirrored pairs
	for i := 0; i < 15; i++ {
		nibble, _ := strconv.ParseUint(digest[i:i+1], 16, 8)
		if nibble%2 == 1 {
			continue
		}
		switch {
		case i < 5:
			fill(2, i)
		case i < 10:
			fill(1, i-5)
			fill(3, i-5)
		default:
			fill(0, i-10)
			fill(4, i-10)
		}
	}
}

func hslToRGB(h, s, l float64) color.NRGBA {
	c := (1 - math.Abs(2*l-1)) * s
	hp := h * 6
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))
	var r, g, b float64
	switch int(hp) % 6 {
	case 0:
		r, g, b = c, x, 0
	case 1:
		r, g, b = x, c, 0
	case 2:
		r, g, b = 0, c, x
	case 3:
		r, g, b = 0, x, c
	case 4:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	m := l - c/2
	return color.NRGBA{
		R: uint8(math.Round((r + m) * 255)),
		G: uint8(math.Round((g + m) * 255)),
		B: uint8(math.Round((b + m) * 255)),
		A: 255,
	}
}
