package tessellate

import "github.com/chewxy/math32"

// BuildNormals computes per-vertex normals by summing the unit normals of the
// triangles sharing each vertex. Vertices used by no triangle keep a zero
// normal.
func BuildNormals(vertices []float32, indices []uint32) []float32 {
	normals := make([]float32, len(vertices))
	vec := func(i uint32) [3]float32 {
		return [3]float32{vertices[3*i], vertices[3*i+1], vertices[3*i+2]}
	}
	for t := 0; t+2 < len(indices); t += 3 {
		ia, ib, ic := indices[t], indices[t+1], indices[t+2]
		a, b, c := vec(ia), vec(ib), vec(ic)
		u := [3]float32{b[0] - a[0], b[1] - a[1], b[2] - a[2]}
		v := [3]float32{c[0] - a[0], c[1] - a[1], c[2] - a[2]}
		n := [3]float32{
			u[1]*v[2] - u[2]*v[1],
			u[2]*v[0] - u[0]*v[2],
			u[0]*v[1] - u[1]*v[0],
		}
		l := math32.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
		if l == 0 {
			continue
		}
		for _, i := range []uint32{ia, ib, ic} {
			normals[3*i] += n[0] / l
			normals[3*i+1] += n[1] / l
			normals[3*i+2] += n[2] / l
		}
	}
	for i := 0; i+2 < len(normals); i += 3 {
		l := math32.Sqrt(normals[i]*normals[i] + normals[i+1]*normals[i+1] + normals[i+2]*normals[i+2])
		if l == 0 {
			continue
		}
		normals[i] /= l
		normals[i+1] /= l
		normals[i+2] /= l
	}
	return normals
}
