package trellis

import "fmt"

// Per-kind resource tables. Each resource names the prop keys it is derived
// from; a change to any other key leaves it cached.

var (
	matrixResource = resourceSpec{keys: transformKeys, build: buildMatrix}
	paintResource  = resourceSpec{keys: paintKeys, build: buildPaintSpec}
)

func drawingResources(geometryKeys []string, build func(*Node) (any, error)) map[resourceKind]resourceSpec {
	m := map[resourceKind]resourceSpec{
		resMatrix: matrixResource,
		resPaint:  paintResource,
	}
	if build != nil {
		m[resGeometry] = resourceSpec{keys: geometryKeys, build: build}
	}
	return m
}

var kindResources = map[NodeKind]map[resourceKind]resourceSpec{
	KindGroup:   drawingResources(nil, nil),
	KindFill:    drawingResources(nil, nil),
	KindRect:    drawingResources([]string{"x", "y", "width", "height"}, buildRect),
	KindRRect:   drawingResources([]string{"x", "y", "width", "height", "r", "rx", "ry"}, buildRRect),
	KindCircle:  drawingResources([]string{"cx", "cy", "c", "r"}, buildCircle),
	KindOval:    drawingResources([]string{"x", "y", "width", "height"}, buildOval),
	KindLine:    drawingResources([]string{"p1", "p2"}, buildLine),
	KindPath:    drawingResources([]string{"path", "fillType"}, buildPathGeometry),
	KindPatch:   drawingResources([]string{"patch", "colors"}, buildPatch),
	KindPicture: drawingResources(nil, nil),
	KindImage: {
		resMatrix: matrixResource,
		resPaint:  paintResource,
		resImage:  {keys: []string{"image"}, build: buildImage},
	},
	KindPaint: {
		resPaint: paintResource,
	},
	KindShader: {
		resShader: {keys: []string{"source"}, build: buildShader},
	},
	KindLinearGradient: {
		resShader: {keys: []string{"start", "end", "colors", "positions"}, build: buildGradient},
	},
	KindRadialGradient: {
		resShader: {keys: []string{"c", "r", "colors", "positions"}, build: buildGradient},
	},
}

func buildMatrix(n *Node) (any, error) {
	return localMatrix(n), nil
}

func nodeRect(n *Node) Rect {
	return Rect{n.Float("x", 0), n.Float("y", 0), n.Float("width", 0), n.Float("height", 0)}
}

func buildRect(n *Node) (any, error) {
	p := NewPath()
	p.AddRect(nodeRect(n))
	return p, nil
}

func buildRRect(n *Node) (any, error) {
	r := n.Float("r", 0)
	p := NewPath()
	p.AddRRect(nodeRect(n), n.Float("rx", r), n.Float("ry", r))
	return p, nil
}

func buildCircle(n *Node) (any, error) {
	c := n.Vec2Prop("c", Vec2{n.Float("cx", 0), n.Float("cy", 0)})
	r := n.Float("r", 0)
	if r < 0 {
		return nil, fmt.Errorf("circle: negative radius %v", r)
	}
	p := NewPath()
	p.AddCircle(c.X, c.Y, r)
	return p, nil
}

func buildOval(n *Node) (any, error) {
	p := NewPath()
	p.AddOval(nodeRect(n))
	return p, nil
}

func buildLine(n *Node) (any, error) {
	p1 := n.Vec2Prop("p1", Vec2{})
	p2 := n.Vec2Prop("p2", Vec2{})
	p := NewPath()
	p.MoveTo(p1.X, p1.Y)
	p.LineTo(p2.X, p2.Y)
	return p, nil
}

func buildPathGeometry(n *Node) (any, error) {
	rule, err := parseFillRule(n.resolved["fillType"])
	if err != nil {
		return nil, err
	}
	var p *Path
	switch v := n.resolved["path"].(type) {
	case string:
		p, err = ParseSVGPath(v)
		if err != nil {
			return nil, err
		}
	case *Path:
		// Copy so the fill rule and cached tessellation stay per node.
		p = v.Transform(Identity)
	case nil:
		return nil, fmt.Errorf("path: missing path")
	default:
		return nil, fmt.Errorf("path: unsupported value %T", v)
	}
	if _, ok := n.resolved["fillType"]; ok {
		p.FillRule = rule
	}
	return p, nil
}
