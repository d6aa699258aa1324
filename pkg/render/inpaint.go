package render

import (
	"container/heap"
	"image"
	"image/draw"
	"math"
)

// Inpainter fills the non-zero pixels of mask from their surroundings.
type Inpainter interface {
	Inpaint(img image.Image, mask *image.Gray, radius int) (image.Image, error)
}

// InpainterFunc adapts a function to the Inpainter interface.
type InpainterFunc func(img image.Image, mask *image.Gray, radius int) (image.Image, error)

func (f InpainterFunc) Inpaint(img image.Image, mask *image.Gray, radius int) (image.Image, error) {
	return f(img, mask, radius)
}

const (
	known uint8 = iota
	band
	inside
)

const infiniteDistance = 1e6

// FastMarching inpaints with Telea's fast marching method: pixels are filled in order of
// their distance to the mask boundary, each as a weighted average of the known pixels
// within the radius.
type FastMarching struct{}

func (FastMarching) Inpaint(img image.Image, mask *image.Gray, radius int) (image.Image, error) {
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, img, bounds.Min, draw.Src)
	if radius < 1 {
		radius = 1
	}

	width, height := bounds.Dx(), bounds.Dy()
	flags := make([]uint8, width*height)
	distance := make([]float64, width*height)
	masked := func(x, y int) bool {
		return mask.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y > 0
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if masked(x, y) {
				flags[y*width+x] = inside
				distance[y*width+x] = infiniteDistance
			}
		}
	}

	// The narrow band starts as the known pixels touching the mask.
	queue := &pixelQueue{}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if flags[y*width+x] != known {
				continue
			}
			for _, n := range neighbours4(x, y, width, height) {
				if flags[n.Y*width+n.X] == inside {
					flags[y*width+x] = band
					heap.Push(queue, queuedPixel{x: x, y: y, distance: 0})
					break
				}
			}
		}
	}

	for queue.Len() > 0 {
		current := heap.Pop(queue).(queuedPixel)
		flags[current.y*width+current.x] = known
		for _, n := range neighbours4(current.x, current.y, width, height) {
			index := n.Y*width + n.X
			if flags[index] != inside {
				continue
			}
			distance[index] = min(
				solveEikonal(n.X, n.Y-1, n.X-1, n.Y, width, height, flags, distance),
				solveEikonal(n.X, n.Y+1, n.X-1, n.Y, width, height, flags, distance),
				solveEikonal(n.X, n.Y-1, n.X+1, n.Y, width, height, flags, distance),
				solveEikonal(n.X, n.Y+1, n.X+1, n.Y, width, height, flags, distance),
			)
			fillPixel(out, bounds, n.X, n.Y, radius, width, height, flags, distance)
			flags[index] = band
			heap.Push(queue, queuedPixel{x: n.X, y: n.Y, distance: distance[index]})
		}
	}
	return out, nil
}

func neighbours4(x, y, width, height int) []image.Point {
	points := make([]image.Point, 0, 4)
	if x > 0 {
		points = append(points, image.Pt(x-1, y))
	}
	if x < width-1 {
		points = append(points, image.Pt(x+1, y))
	}
	if y > 0 {
		points = append(points, image.Pt(x, y-1))
	}
	if y < height-1 {
		points = append(points, image.Pt(x, y+1))
	}
	return points
}

// solveEikonal estimates the arrival distance from two neighbouring pixels.
func solveEikonal(x1, y1, x2, y2, width, height int, flags []uint8, distance []float64) float64 {
	valid := func(x, y int) bool {
		return x >= 0 && y >= 0 && x < width && y < height && flags[y*width+x] != inside
	}
	first, second := valid(x1, y1), valid(x2, y2)
	switch {
	case first && second:
		t1, t2 := distance[y1*width+x1], distance[y2*width+x2]
		r := math.Sqrt(math.Max(0, 2-(t1-t2)*(t1-t2)))
		s := (t1 + t2 - r) / 2
		if s >= t1 && s >= t2 {
			return s
		}
		s += r
		if s >= t1 && s >= t2 {
			return s
		}
		return infiniteDistance
	case first:
		return 1 + distance[y1*width+x1]
	case second:
		return 1 + distance[y2*width+x2]
	}
	return infiniteDistance
}

// fillPixel sets (x, y) to the weighted average of known pixels within radius.
// Weights favour close pixels, pixels on the same distance level and pixels along the marching direction.
func fillPixel(out *image.RGBA, bounds image.Rectangle, x, y, radius, width, height int, flags []uint8, distance []float64) {
	gradX, gradY := distanceGradient(x, y, width, height, flags, distance)
	var sumR, sumG, sumB, sumA, sumWeight float64
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			nx, ny := x+dx, y+dy
			if (dx == 0 && dy == 0) || nx < 0 || ny < 0 || nx >= width || ny >= height {
				continue
			}
			if flags[ny*width+nx] == inside {
				continue
			}
			lengthSquared := float64(dx*dx + dy*dy)
			if lengthSquared > float64(radius*radius) {
				continue
			}
			length := math.Sqrt(lengthSquared)
			direction := math.Abs(float64(-dx)*gradX+float64(-dy)*gradY) / length
			if direction < 1e-6 {
				direction = 1e-6
			}
			level := 1 / (1 + math.Abs(distance[ny*width+nx]-distance[y*width+x]))
			weight := direction * level / lengthSquared

			offset := out.PixOffset(bounds.Min.X+nx, bounds.Min.Y+ny)
			sumR += weight * float64(out.Pix[offset])
			sumG += weight * float64(out.Pix[offset+1])
			sumB += weight * float64(out.Pix[offset+2])
			sumA += weight * float64(out.Pix[offset+3])
			sumWeight += weight
		}
	}
	if sumWeight == 0 {
		return
	}
	offset := out.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
	out.Pix[offset] = clampByte(sumR / sumWeight)
	out.Pix[offset+1] = clampByte(sumG / sumWeight)
	out.Pix[offset+2] = clampByte(sumB / sumWeight)
	out.Pix[offset+3] = clampByte(sumA / sumWeight)
}

// distanceGradient is the central difference of the distance map over non-inside neighbours.
func distanceGradient(x, y, width, height int, flags []uint8, distance []float64) (float64, float64) {
	at := func(px, py int) (float64, bool) {
		if px < 0 || py < 0 || px >= width || py >= height || flags[py*width+px] == inside {
			return 0, false
		}
		return distance[py*width+px], true
	}
	center := distance[y*width+x]

	gradX := 0.0
	left, leftOK := at(x-1, y)
	right, rightOK := at(x+1, y)
	switch {
	case leftOK && rightOK:
		gradX = (right - left) / 2
	case rightOK:
		gradX = right - center
	case leftOK:
		gradX = center - left
	}
	gradY := 0.0
	up, upOK := at(x, y-1)
	down, downOK := at(x, y+1)
	switch {
	case upOK && downOK:
		gradY = (down - up) / 2
	case downOK:
		gradY = down - center
	case upOK:
		gradY = center - up
	}
	return gradX, gradY
}

func clampByte(value float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(value))))
}

type queuedPixel struct {
	x, y     int
	distance float64
}

type pixelQueue []queuedPixel

func (q pixelQueue) Len() int { return len(q) }

func (q pixelQueue) Less(i, j int) bool { return q[i].distance < q[j].distance }

func (q pixelQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *pixelQueue) Push(x any) { *q = append(*q, x.(queuedPixel)) }

func (q *pixelQueue) Pop() any {
	old := *q
	item := old[len(old)-1]
	*q = old[:len(old)-1]
	return item
}
