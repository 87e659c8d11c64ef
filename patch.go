package trellis

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/hajimehoshi/ebiten/v2"
)

// PatchCorner is one corner of a Coons patch: its position and the two
// control points of the edges meeting there. C1 belongs to the edge arriving
// at the corner, C2 to the edge leaving it (clockwise from top-left).
type PatchCorner struct {
	Pos Vec2
	C1  Vec2
	C2  Vec2
}

// patchSubdivisions is the grid resolution a patch is tessellated at.
const patchSubdivisions = 16

// buildPatch tessellates the "patch" corners (top-left, top-right,
// bottom-right, bottom-left) with optional per-corner "colors".
func buildPatch(n *Node) (any, error) {
	corners, err := patchCorners(n.resolved["patch"])
	if err != nil {
		return nil, err
	}
	colors := n.Colors("colors")
	if colors != nil && len(colors) != 4 {
		return nil, fmt.Errorf("patch: need 4 colors, got %d", len(colors))
	}
	verts, inds := tessellatePatch(corners, colors, patchSubdivisions)
	return &mesh{verts: verts, inds: inds}, nil
}

func patchCorners(v any) ([4]PatchCorner, error) {
	var out [4]PatchCorner
	switch v := v.(type) {
	case [4]PatchCorner:
		return v, nil
	case []PatchCorner:
		if len(v) == 4 {
			copy(out[:], v)
			return out, nil
		}
		return out, fmt.Errorf("patch: need 4 corners, got %d", len(v))
	case []any:
		// Scene files: [{pos: [x, y], c1: [x, y], c2: [x, y]}, ...]
		if len(v) != 4 {
			return out, fmt.Errorf("patch: need 4 corners, got %d", len(v))
		}
		for i, e := range v {
			m, ok := e.(map[string]any)
			if !ok {
				return out, fmt.Errorf("patch: corner %d: unsupported value %T", i, e)
			}
			var okPos, ok1, ok2 bool
			out[i].Pos, okPos = toVec2(m["pos"])
			out[i].C1, ok1 = toVec2(m["c1"])
			out[i].C2, ok2 = toVec2(m["c2"])
			if !okPos || !ok1 || !ok2 {
				return out, fmt.Errorf("patch: corner %d needs pos, c1 and c2", i)
			}
		}
		return out, nil
	case nil:
		return out, fmt.Errorf("patch: missing corners")
	}
	return out, fmt.Errorf("patch: unsupported value %T", v)
}

// tessellatePatch evaluates the Coons patch bounded by the four cubic edges
// on a (div+1) x (div+1) grid and triangulates it. Without colors every
// vertex is opaque white so the paint color tints it.
func tessellatePatch(c [4]PatchCorner, colors []Color, div int) ([]ebiten.Vertex, []uint16) {
	// Edge control points, all running left-to-right or top-to-bottom.
	top := [4]Vec2{c[0].Pos, c[0].C2, c[1].C1, c[1].Pos}
	right := [4]Vec2{c[1].Pos, c[1].C2, c[2].C1, c[2].Pos}
	bottom := [4]Vec2{c[3].Pos, c[3].C1, c[2].C2, c[2].Pos}
	left := [4]Vec2{c[0].Pos, c[0].C1, c[3].C2, c[3].Pos}

	vcols := div + 1
	verts := make([]ebiten.Vertex, vcols*vcols)
	inds := make([]uint16, div*div*6)

	for r := 0; r < vcols; r++ {
		v := float32(r) / float32(div)
		for col := 0; col < vcols; col++ {
			u := float32(col) / float32(div)
			x, y := coonsPoint(top, right, bottom, left, u, v)
			vert := ebiten.Vertex{
				DstX: x, DstY: y,
				SrcX: 0.5, SrcY: 0.5,
				ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1,
			}
			if colors != nil {
				cc := bilinearColor(colors, float64(u), float64(v))
				vert.ColorR, vert.ColorG = float32(cc.R), float32(cc.G)
				vert.ColorB, vert.ColorA = float32(cc.B), float32(cc.A)
			}
			verts[r*vcols+col] = vert
		}
	}

	ii := 0
	for r := 0; r < div; r++ {
		for col := 0; col < div; col++ {
			tl := uint16(r*vcols + col)
			tr := tl + 1
			bl := uint16((r+1)*vcols + col)
			br := bl + 1
			inds[ii+0] = tl
			inds[ii+1] = bl
			inds[ii+2] = tr
			inds[ii+3] = tr
			inds[ii+4] = bl
			inds[ii+5] = br
			ii += 6
		}
	}
	return verts, inds
}

// coonsPoint evaluates S(u,v) = ruled(top, bottom) + ruled(left, right) - bilinear(corners).
func coonsPoint(top, right, bottom, left [4]Vec2, u, v float32) (float32, float32) {
	tx, ty := cubicAt(top, u)
	bx, by := cubicAt(bottom, u)
	lx, ly := cubicAt(left, v)
	rx, ry := cubicAt(right, v)

	p00, p10 := top[0], top[3]
	p01, p11 := bottom[0], bottom[3]
	cx := (1-u)*(1-v)*float32(p00.X) + u*(1-v)*float32(p10.X) + (1-u)*v*float32(p01.X) + u*v*float32(p11.X)
	cy := (1-u)*(1-v)*float32(p00.Y) + u*(1-v)*float32(p10.Y) + (1-u)*v*float32(p01.Y) + u*v*float32(p11.Y)

	x := (1-v)*tx + v*bx + (1-u)*lx + u*rx - cx
	y := (1-v)*ty + v*by + (1-u)*ly + u*ry - cy
	return x, y
}

func cubicAt(p [4]Vec2, t float32) (float32, float32) {
	mt := 1 - t
	a := mt * mt * mt
	b := 3 * mt * mt * t
	c := 3 * mt * t * t
	d := math32.Pow(t, 3)
	x := a*float32(p[0].X) + b*float32(p[1].X) + c*float32(p[2].X) + d*float32(p[3].X)
	y := a*float32(p[0].Y) + b*float32(p[1].Y) + c*float32(p[2].Y) + d*float32(p[3].Y)
	return x, y
}

// bilinearColor blends corner colors ordered top-left, top-right,
// bottom-right, bottom-left.
func bilinearColor(c []Color, u, v float64) Color {
	top := MixColors(u, c[0], c[1])
	bottom := MixColors(u, c[3], c[2])
	return MixColors(v, top, bottom)
}
