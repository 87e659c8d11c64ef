package trellis

// Record draws the tree rooted at root into a new Picture.
func Record(root *Node) *Picture {
	pic := NewPicture()
	recordInto(pic, root)
	return pic
}

// recordInto resets pic and records the tree into it.
func recordInto(pic *Picture, root *Node) {
	pic.Reset()
	if root != nil && !root.disposed {
		drawNode(pic, root, DefaultPaint)
	}
}

// drawNode walks the tree depth-first, emitting canvas commands for every
// visible drawing node. Declarations are skipped; they reach the canvas
// through their parent's paint. inherited is the parent's main paint.
func drawNode(c Canvas, n *Node, inherited Paint) {
	if n.Kind.IsDeclaration() || !n.BoolProp("visible", true) {
		return
	}

	m := Identity
	if v, ok := n.resourceValue(resMatrix).(Affine); ok {
		m = v
	}
	paints := n.paints(inherited)
	main := paints[0]

	clip, hasClip := n.RectProp("clip")
	layer := n.Kind == KindGroup && n.BoolProp("layer", false)
	save := !m.IsIdentity() || hasClip
	if save {
		c.Save()
		c.Concat(m)
		if hasClip {
			c.ClipRect(clip)
		}
	}
	if layer {
		// The group's opacity and blend apply once, to the composited layer.
		c.SaveLayer(main.Opacity, main.BlendMode)
		main.Opacity = 1
		main.BlendMode = BlendNormal
	}

	drawSelf(c, n, paints)
	for _, child := range n.children {
		drawNode(c, child, main)
	}

	if layer {
		c.Restore()
	}
	if save {
		c.Restore()
	}
}

// drawSelf emits the node's own geometry once per paint.
func drawSelf(c Canvas, n *Node, paints []Paint) {
	switch n.Kind {
	case KindFill:
		for _, p := range paints {
			c.DrawPaint(p)
		}
	case KindRect, KindRRect, KindCircle, KindOval, KindLine, KindPath:
		path, _ := n.resourceValue(resGeometry).(*Path)
		if path == nil {
			return
		}
		for _, p := range paints {
			if n.Kind == KindLine {
				p.Style = StyleStroke
			}
			c.DrawPath(path, p)
		}
	case KindPatch:
		m, _ := n.resourceValue(resGeometry).(*mesh)
		if m == nil {
			return
		}
		colored := n.Colors("colors") != nil
		for _, p := range paints {
			if colored {
				// Vertex colors replace the paint color; only its alpha remains.
				p.Color = ColorWhite.WithAlpha(p.Color.A)
			}
			c.DrawVertices(m.verts, m.inds, p)
		}
	case KindImage:
		img, _ := n.resourceValue(resImage).(*Image)
		if img == nil {
			return
		}
		src := img.Bounds()
		dst := nodeRect(n)
		if dst.Width == 0 && dst.Height == 0 {
			dst.Width, dst.Height = src.Width, src.Height
		}
		fit := FitContain
		if f, ok := fitNames[n.StringProp("fit", "")]; ok {
			fit = f
		}
		src, dst = fitRects(fit, src, dst)
		c.DrawImageRect(img, src, dst, paints[0])
	case KindPicture:
		if pic, ok := n.resolved["picture"].(*Picture); ok && pic != nil {
			c.DrawPicture(pic)
		}
	}
}
