package scene

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Memory is a headless Scene. Meshes are kept in memory and picks are
// resolved top-down: canvas coordinates are read as world (x, z) and the
// mesh with the highest bounds containing that point wins.
type Memory struct {
	mu     sync.Mutex
	next   int
	meshes map[string]*MemoryMesh
	order  []string
}

// NewMemory returns an empty in-memory scene.
func NewMemory() *Memory {
	return &Memory{meshes: make(map[string]*MemoryMesh)}
}

// MemoryMesh is a mesh held by a Memory scene.
type MemoryMesh struct {
	scene *Memory
	spec  MeshSpec
}

// CreateMesh implements Scene.
func (m *Memory) CreateMesh(spec MeshSpec) (MeshHandle, error) {
	if spec.Mesh == nil {
		return nil, errors.New("scene: mesh spec has no mesh")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if spec.ID == "" {
		m.next++
		spec.ID = fmt.Sprintf("mesh-%d", m.next)
	}
	if _, exists := m.meshes[spec.ID]; exists {
		return nil, fmt.Errorf("scene: mesh %q already exists", spec.ID)
	}
	mm := &MemoryMesh{scene: m, spec: spec}
	m.meshes[spec.ID] = mm
	m.order = append(m.order, spec.ID)
	return mm, nil
}

// Pick implements Scene.
func (m *Memory) Pick(canvasPos v2.Vec, include []string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	allowed := func(string) bool { return true }
	if len(include) > 0 {
		set := make(map[string]bool, len(include))
		for _, id := range include {
			set[id] = true
		}
		allowed = func(id string) bool { return set[id] }
	}

	best, bestTop := "", 0.0
	for _, id := range m.order {
		mm := m.meshes[id]
		s := mm.spec
		if !s.Visible || !s.Pickable || !allowed(id) {
			continue
		}
		bb := s.Mesh.Bounds
		if canvasPos.X < bb.Min.X || canvasPos.X > bb.Max.X || canvasPos.Y < bb.Min.Z || canvasPos.Y > bb.Max.Z {
			continue
		}
		if best == "" || bb.Max.Y > bestTop {
			best, bestTop = id, bb.Max.Y
		}
	}
	return best, best != ""
}

// Len returns the number of live meshes.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.meshes)
}

// Get returns a live mesh by id.
func (m *Memory) Get(id string) (*MemoryMesh, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mm, ok := m.meshes[id]
	return mm, ok
}

// IDs returns the ids of live meshes in sorted order.
func (m *Memory) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.meshes))
	for id := range m.meshes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ID implements MeshHandle.
func (mm *MemoryMesh) ID() string { return mm.spec.ID }

// Spec returns a copy of the mesh's current state.
func (mm *MemoryMesh) Spec() MeshSpec {
	mm.scene.mu.Lock()
	defer mm.scene.mu.Unlock()
	return mm.spec
}

func (mm *MemoryMesh) update(fn func(*MeshSpec)) {
	mm.scene.mu.Lock()
	defer mm.scene.mu.Unlock()
	fn(&mm.spec)
}

// SetVisible implements MeshHandle.
func (mm *MemoryMesh) SetVisible(v bool) { mm.update(func(s *MeshSpec) { s.Visible = v }) }

// SetHighlighted implements MeshHandle.
func (mm *MemoryMesh) SetHighlighted(v bool) { mm.update(func(s *MeshSpec) { s.Highlighted = v }) }

// SetEdges implements MeshHandle.
func (mm *MemoryMesh) SetEdges(v bool) { mm.update(func(s *MeshSpec) { s.Edges = v }) }

// SetMaterial implements MeshHandle.
func (mm *MemoryMesh) SetMaterial(mat Material) { mm.update(func(s *MeshSpec) { s.Material = mat }) }

// Destroy implements MeshHandle. Destroying twice is a no-op.
func (mm *MemoryMesh) Destroy() {
	m := mm.scene
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.meshes[mm.spec.ID]; !ok || cur != mm {
		return
	}
	delete(m.meshes, mm.spec.ID)
	for i, id := range m.order {
		if id == mm.spec.ID {
			m.order = append(m.order[:i:i], m.order[i+1:]...)
			break
		}
	}
}
