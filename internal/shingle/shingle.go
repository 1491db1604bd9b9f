// Package shingle computes block-wise structural similarity between
// screenshots. Each image is cut into fixed-size square blocks ("shingles"),
// each block is reduced to a hash signature, and two images are scored by
// the fraction of grid positions whose signatures match.
package shingle

import (
	"crypto/md5"
	"image"
)

// DefaultBlockSize is the shingle edge length in pixels. 40px balances
// sensitivity to structural change against tolerance of rendering noise.
const DefaultBlockSize = 40

// Signature is the digest of one block's pixel data.
type Signature [md5.Size]byte

// Grid is the ordered block decomposition of one screenshot region: all
// full-size blocks row by row, then right-edge remainders, bottom-edge
// remainders, and the corner remainder.
type Grid struct {
	BlockSize int
	Blocks    []Signature
}

// NewGrid decomposes the clipped region of an image. A degenerate clip
// yields an empty grid.
func NewGrid(img image.Image, clip image.Rectangle, blockSize int) *Grid {
	g := &Grid{BlockSize: blockSize}
	clip = clip.Intersect(img.Bounds())
	w, h := clip.Dx(), clip.Dy()
	if w <= 0 || h <= 0 {
		return g
	}

	cols, rows := w/blockSize, h/blockSize

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			g.append(img, clip, x*blockSize, y*blockSize, blockSize, blockSize)
		}
	}
	if w%blockSize != 0 {
		for y := 0; y < rows; y++ {
			g.append(img, clip, cols*blockSize, y*blockSize, w%blockSize, blockSize)
		}
	}
	if h%blockSize != 0 {
		for x := 0; x < cols; x++ {
			g.append(img, clip, x*blockSize, rows*blockSize, blockSize, h%blockSize)
		}
	}
	if w%blockSize != 0 && h%blockSize != 0 {
		g.append(img, clip, cols*blockSize, rows*blockSize, w%blockSize, h%blockSize)
	}
	return g
}

func (g *Grid) append(img image.Image, clip image.Rectangle, ox, oy, bw, bh int) {
	h := md5.New()
	buf := make([]byte, 4)
	for y := 0; y < bh; y++ {
		for x := 0; x < bw; x++ {
			r, gr, b, a := img.At(clip.Min.X+ox+x, clip.Min.Y+oy+y).RGBA()
			buf[0] = byte(r >> 8)
			buf[1] = byte(gr >> 8)
			buf[2] = byte(b >> 8)
			buf[3] = byte(a >> 8)
			h.Write(buf)
		}
	}
	var sig Signature
	h.Sum(sig[:0])
	g.Blocks = append(g.Blocks, sig)
}

// overlap returns the common width and height of the given images.
func overlap(images ...image.Image) (int, int) {
	w, h := -1, -1
	for _, img := range images {
		b := img.Bounds()
		if w < 0 || b.Dx() < w {
			w = b.Dx()
		}
		if h < 0 || b.Dy() < h {
			h = b.Dy()
		}
	}
	return w, h
}

func clipTo(img image.Image, w, h int) image.Rectangle {
	min := img.Bounds().Min
	return image.Rect(min.X, min.Y, min.X+w, min.Y+h)
}

// Similarity scores two screenshots presumed to depict the same page
// region. Mismatched dimensions are clipped to the overlapping region. The
// score is the fraction of grid positions with identical signatures, in
// [0,1]. The second return is false when the overlap is empty: "couldn't
// compare" is never reported as 0.0.
func Similarity(a, b image.Image, blockSize int) (float64, bool) {
	w, h := overlap(a, b)
	if w <= 0 || h <= 0 {
		return 0, false
	}

	ga := NewGrid(a, clipTo(a, w, h), blockSize)
	gb := NewGrid(b, clipTo(b, w, h), blockSize)
	if len(ga.Blocks) == 0 {
		return 0, false
	}

	matches := 0
	for i := range ga.Blocks {
		if ga.Blocks[i] == gb.Blocks[i] {
			matches++
		}
	}
	return float64(matches) / float64(len(ga.Blocks)), true
}

// SimilarityWithControl scores experimental against counterfactual while
// discarding grid positions where the two baseline captures already
// disagree; such positions are rendering noise, not treatment effect. The
// second return is false when no positions survive the baseline mask, i.e.
// the baselines are completely divergent or the overlap is empty.
func SimilarityWithControl(baseline, control, experimental, counterfactual image.Image, blockSize int) (float64, bool) {
	w, h := overlap(baseline, control, experimental, counterfactual)
	if w <= 0 || h <= 0 {
		return 0, false
	}

	gb := NewGrid(baseline, clipTo(baseline, w, h), blockSize)
	gc := NewGrid(control, clipTo(control, w, h), blockSize)
	ge := NewGrid(experimental, clipTo(experimental, w, h), blockSize)
	gf := NewGrid(counterfactual, clipTo(counterfactual, w, h), blockSize)

	matches, total := 0, 0
	for i := range gb.Blocks {
		if gb.Blocks[i] != gc.Blocks[i] {
			continue
		}
		total++
		if ge.Blocks[i] == gf.Blocks[i] {
			matches++
		}
	}
	if total == 0 {
		return 0, false
	}
	return float64(matches) / float64(total), true
}
