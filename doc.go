// Package trellis is a declarative 2D drawing tree for [Ebitengine] whose
// nodes are bound to observable values.
//
// A scene is described as a tree of [Element] values. A [Root] mounts the
// elements as [Node] values under a [Host], and a [DependencyManager] keeps
// track of every observable value the nodes read. When a value changes, only
// the nodes bound to it are updated, and the host redraws once per frame no
// matter how many values changed.
//
// # Quick start
//
//	host := trellis.NewHost(640, 480)
//	root := trellis.NewRoot(host)
//
//	radius := trellis.NewValue(20.0)
//	root.Render(trellis.E(trellis.KindGroup, nil,
//		trellis.E(trellis.KindCircle, trellis.Props{
//			"cx":    trellis.Lit(320),
//			"cy":    trellis.Lit(240),
//			"r":     trellis.Bind(radius),
//			"color": trellis.Lit("#3080ff"),
//		}),
//	))
//
//	trellis.RunTiming(radius, host.Clock(), trellis.TimingConfig{
//		From: 20, To: 120, Duration: time.Second,
//		Easing: ease.InOutSine, Repeat: trellis.RepeatYoyo,
//	})
//	trellis.Run(host, trellis.RunConfig{Title: "circle"})
//
// # Values
//
// [Value] holds a single observable value. [Derive] computes one from others,
// and [Select] binds a prop to a function of a value. Animations
// ([RunTiming], [RunSpring], [RunDecay]) drive values from the host's
// [Clock]; timing curves come from [gween]. A value is driven by at most one
// animation: starting another cancels the first, and [RunTimingTo] picks up
// from wherever the value currently is.
//
// # Drawing
//
// Drawing nodes (rect, rrect, circle, oval, line, path, image, patch, fill,
// picture) are styled by paint props and by declaration children: paint,
// shader, linearGradient and radialGradient. Groups apply transforms, clips,
// opacity and offscreen layers to their children.
//
// Each redraw records the tree into a [Picture], which is replayed onto the
// screen every frame. Pictures can also be recorded with [Record] and drawn
// by picture nodes.
//
// # Scene files
//
// [LoadScene] reads a YAML scene with named values, animations and an element
// tree. [LoadRunConfig] reads window settings from TOML.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package trellis
