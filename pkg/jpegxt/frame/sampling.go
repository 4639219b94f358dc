package frame

// Upsample expands a component's pixel grid of size (srcW, srcH) up to
// the canvas size (dstW, dstH) implied by (H, V) vs (Hmax, Vmax), per
// spec §4.6: "Upsampling on decode uses fixed-tap filters per (Hi, Vi)
// ratio; the default is box-then-bilinear". The box step replicates each
// source sample across its (Hmax/H, Vmax/V) footprint; the bilinear step
// then smooths across footprint boundaries so there is no hard block
// edge at the original subsampling grid.
func Upsample(src []int32, srcW, srcH, dstW, dstH int) []int32 {
	if srcW == dstW && srcH == dstH {
		out := make([]int32, len(src))
		copy(out, src)
		return out
	}
	boxed := boxExpand(src, srcW, srcH, dstW, dstH)
	return bilinearSmooth(boxed, dstW, dstH)
}

func boxExpand(src []int32, srcW, srcH, dstW, dstH int) []int32 {
	out := make([]int32, dstW*dstH)
	for y := 0; y < dstH; y++ {
		sy := y * srcH / dstH
		if sy >= srcH {
			sy = srcH - 1
		}
		for x := 0; x < dstW; x++ {
			sx := x * srcW / dstW
			if sx >= srcW {
				sx = srcW - 1
			}
			out[y*dstW+x] = src[sy*srcW+sx]
		}
	}
	return out
}

// bilinearSmooth applies a single 3-tap horizontal+vertical smoothing
// pass to a box-expanded plane, softening the step edges the box filter
// introduced at each original sample's footprint boundary.
func bilinearSmooth(plane []int32, w, h int) []int32 {
	tmp := make([]int32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			l := at(plane, w, h, x-1, y)
			c := at(plane, w, h, x, y)
			r := at(plane, w, h, x+1, y)
			tmp[y*w+x] = (l + 2*c + r + 2) / 4
		}
	}
	out := make([]int32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			t := at(tmp, w, h, x, y-1)
			c := at(tmp, w, h, x, y)
			b := at(tmp, w, h, x, y+1)
			out[y*w+x] = (t + 2*c + b + 2) / 4
		}
	}
	return out
}

func at(plane []int32, w, h, x, y int) int32 {
	if x < 0 {
		x = 0
	}
	if x >= w {
		x = w - 1
	}
	if y < 0 {
		y = 0
	}
	if y >= h {
		y = h - 1
	}
	return plane[y*w+x]
}

// Downsample reduces a canvas-resolution plane to a component's pixel
// grid using an area-average filter, per spec §4.6: "Downsampling on
// encode uses an area-average filter."
func Downsample(src []int32, srcW, srcH, dstW, dstH int) []int32 {
	if srcW == dstW && srcH == dstH {
		out := make([]int32, len(src))
		copy(out, src)
		return out
	}
	out := make([]int32, dstW*dstH)
	for y := 0; y < dstH; y++ {
		y0 := y * srcH / dstH
		y1 := (y + 1) * srcH / dstH
		if y1 <= y0 {
			y1 = y0 + 1
		}
		for x := 0; x < dstW; x++ {
			x0 := x * srcW / dstW
			x1 := (x + 1) * srcW / dstW
			if x1 <= x0 {
				x1 = x0 + 1
			}
			var sum, n int32
			for sy := y0; sy < y1 && sy < srcH; sy++ {
				for sx := x0; sx < x1 && sx < srcW; sx++ {
					sum += src[sy*srcW+sx]
					n++
				}
			}
			if n == 0 {
				n = 1
			}
			out[y*dstW+x] = (sum + n/2) / n
		}
	}
	return out
}
