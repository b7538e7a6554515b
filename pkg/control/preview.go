package control

import (
	"github.com/chazu/zoner/pkg/scene"
	"github.com/chazu/zoner/pkg/tessellate"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/lucasb-eyer/go-colorful"
)

// basePreview shows the footprint of a zone under construction as a flat,
// unpickable polygon.
type basePreview struct {
	scene    scene.Scene
	material scene.Material
	handle   scene.MeshHandle
}

func newBasePreview(s scene.Scene, color colorful.Color, alpha float64) *basePreview {
	return &basePreview{
		scene:    s,
		material: scene.Material{Diffuse: color, Alpha: alpha, Backfaces: true},
	}
}

// update replaces the preview with a polygon through points. Fewer than
// three points, or an outline that cannot be triangulated, hides it.
func (p *basePreview) update(points []v3.Vec) {
	p.destroy()
	if len(points) < 3 {
		return
	}
	m, err := tessellate.BuildBase("preview", points)
	if err != nil {
		return
	}
	h, err := p.scene.CreateMesh(scene.MeshSpec{Mesh: m, Material: p.material, Visible: true})
	if err != nil {
		return
	}
	p.handle = h
}

// visible reports whether a preview mesh is shown.
func (p *basePreview) visible() bool { return p.handle != nil }

func (p *basePreview) destroy() {
	if p.handle != nil {
		p.handle.Destroy()
		p.handle = nil
	}
}
