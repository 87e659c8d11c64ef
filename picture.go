package trellis

import "github.com/hajimehoshi/ebiten/v2"

// pictureOpKind identifies a recorded canvas command.
type pictureOpKind uint8

const (
	opSave pictureOpKind = iota
	opSaveLayer
	opRestore
	opConcat
	opClipRect
	opDrawPaint
	opDrawPath
	opDrawImage
	opDrawVertices
	opDrawPicture
)

var pictureOpNames = [...]string{
	"save", "saveLayer", "restore", "concat", "clipRect",
	"drawPaint", "drawPath", "drawImage", "drawVertices", "drawPicture",
}

func (k pictureOpKind) String() string {
	return pictureOpNames[k]
}

// pictureOp is one recorded command. Only the fields its kind uses are set.
type pictureOp struct {
	kind  pictureOpKind
	paint Paint
	m     Affine
	rect  Rect // clip or image destination
	src   Rect // image source
	alpha float64
	blend BlendMode
	path  *Path
	img   *Image
	verts []ebiten.Vertex
	inds  []uint16
	pic   *Picture
}

// Picture is a recorded list of canvas commands. It implements Canvas, so a
// scene is drawn into a Picture once per redraw and the Picture is replayed
// onto the screen every frame.
type Picture struct {
	ops   []pictureOp
	depth int
}

// NewPicture creates an empty picture.
func NewPicture() *Picture {
	return &Picture{}
}

// Len returns the number of recorded commands.
func (p *Picture) Len() int {
	return len(p.ops)
}

// Reset discards all commands, keeping the backing storage.
func (p *Picture) Reset() {
	clear(p.ops)
	p.ops = p.ops[:0]
	p.depth = 0
}

// Replay issues every recorded command to c. Saves left open while recording
// are closed at the end.
func (p *Picture) Replay(c Canvas) {
	for i := range p.ops {
		op := &p.ops[i]
		switch op.kind {
		case opSave:
			c.Save()
		case opSaveLayer:
			c.SaveLayer(op.alpha, op.blend)
		case opRestore:
			c.Restore()
		case opConcat:
			c.Concat(op.m)
		case opClipRect:
			c.ClipRect(op.rect)
		case opDrawPaint:
			c.DrawPaint(op.paint)
		case opDrawPath:
			c.DrawPath(op.path, op.paint)
		case opDrawImage:
			c.DrawImageRect(op.img, op.src, op.rect, op.paint)
		case opDrawVertices:
			c.DrawVertices(op.verts, op.inds, op.paint)
		case opDrawPicture:
			c.DrawPicture(op.pic)
		}
	}
	for d := p.depth; d > 0; d-- {
		c.Restore()
	}
}

func (p *Picture) push(op pictureOp) {
	p.ops = append(p.ops, op)
}

func (p *Picture) Save() {
	p.depth++
	p.push(pictureOp{kind: opSave})
}

func (p *Picture) SaveLayer(alpha float64, blend BlendMode) {
	p.depth++
	p.push(pictureOp{kind: opSaveLayer, alpha: alpha, blend: blend})
}

// Restore records a restore. Unbalanced restores are dropped.
func (p *Picture) Restore() {
	if p.depth == 0 {
		return
	}
	p.depth--
	p.push(pictureOp{kind: opRestore})
}

func (p *Picture) Concat(m Affine) {
	if m.IsIdentity() {
		return
	}
	p.push(pictureOp{kind: opConcat, m: m})
}

func (p *Picture) ClipRect(r Rect) {
	p.push(pictureOp{kind: opClipRect, rect: r})
}

func (p *Picture) DrawPaint(paint Paint) {
	p.push(pictureOp{kind: opDrawPaint, paint: paint})
}

func (p *Picture) DrawPath(path *Path, paint Paint) {
	p.push(pictureOp{kind: opDrawPath, path: path, paint: paint})
}

func (p *Picture) DrawImageRect(img *Image, src, dst Rect, paint Paint) {
	p.push(pictureOp{kind: opDrawImage, img: img, src: src, rect: dst, paint: paint})
}

func (p *Picture) DrawVertices(verts []ebiten.Vertex, inds []uint16, paint Paint) {
	p.push(pictureOp{kind: opDrawVertices, verts: verts, inds: inds, paint: paint})
}

func (p *Picture) DrawPicture(pic *Picture) {
	p.push(pictureOp{kind: opDrawPicture, pic: pic})
}
