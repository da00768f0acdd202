package render

import "image"

// ScaleAlpha writes src into dst with every alpha value scaled to percent
// (clamped to [0,100]) using floor(percent*A/100). Colour channels are copied
// untouched: both buffers hold straight (non-premultiplied) alpha.
// dst and src must have the same bounds.
func ScaleAlpha(dst, src *image.NRGBA, percent int) {
	percent = min(max(percent, 0), 100)
	p := uint32(percent)

	copy(dst.Pix, src.Pix)
	if percent == 100 {
		return
	}
	pix := dst.Pix
	for i := 3; i < len(pix); i += 4 {
		pix[i] = uint8(p * uint32(pix[i]) / 100)
	}
}

// premul returns c scaled by a/255, rounded to nearest.
func premul(c, a uint8) uint8 {
	return uint8((uint32(c)*uint32(a) + 127) / 255)
}

// Premultiply converts straight alpha src into premultiplied dst.
// dst and src must have the same bounds.
func Premultiply(dst *image.RGBA, src *image.NRGBA) {
	s, d := src.Pix, dst.Pix
	for i := 0; i+3 < len(s); i += 4 {
		a := s[i+3]
		d[i+0] = premul(s[i+0], a)
		d[i+1] = premul(s[i+1], a)
		d[i+2] = premul(s[i+2], a)
		d[i+3] = a
	}
}

// PremultiplyInPlace premultiplies buf and returns an RGBA view sharing its
// pixels. buf must not be read as straight alpha afterwards.
func PremultiplyInPlace(buf *image.NRGBA) *image.RGBA {
	view := &image.RGBA{Pix: buf.Pix, Stride: buf.Stride, Rect: buf.Rect}
	Premultiply(view, buf)
	return view
}

// Clear makes every pixel of buf fully transparent.
func Clear(buf *image.NRGBA) {
	clear(buf.Pix)
}
