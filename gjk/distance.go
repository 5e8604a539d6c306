package gjk

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DistanceMaxIterations bounds the closest point refinement.
	DistanceMaxIterations = 64

	// DistanceRelativeTolerance stops the refinement once the support point
	// no longer improves the squared distance by this fraction.
	DistanceRelativeTolerance = 1e-10

	// OverlapTolerance is the separation below which two sets touch.
	OverlapTolerance = 1e-9
)

// DistanceResult describes the closest points between two convex sets.
type DistanceResult struct {
	Distance float64
	// Normal is the unit direction from A toward B, zero on overlap.
	Normal mgl64.Vec3
	PointA mgl64.Vec3
	PointB mgl64.Vec3
	// Overlap is set when the sets intersect or touch.
	Overlap bool
}

// closestSimplex keeps the Minkowski points of the simplex together with
// the support points of A and B that produced them, and the barycentric
// weights of the current closest point.
type closestSimplex struct {
	w      [4]mgl64.Vec3
	a      [4]mgl64.Vec3
	b      [4]mgl64.Vec3
	lambda [4]float64
	n      int
}

func (s *closestSimplex) contains(w mgl64.Vec3) bool {
	for i := 0; i < s.n; i++ {
		if s.w[i].Sub(w).LenSqr() < 1e-24 {
			return true
		}
	}
	return false
}

func (s *closestSimplex) add(w, a, b mgl64.Vec3) {
	s.w[s.n] = w
	s.a[s.n] = a
	s.b[s.n] = b
	s.n++
}

// closest computes the point of the simplex closest to the origin, stores
// its barycentric weights and drops the vertices that do not support it.
func (s *closestSimplex) closest() mgl64.Vec3 {
	s.lambda = [4]float64{}
	var v mgl64.Vec3

	switch s.n {
	case 1:
		s.lambda[0] = 1
		v = s.w[0]
	case 2:
		var l [2]float64
		v, l = closestOnSegment(s.w[0], s.w[1])
		s.lambda[0], s.lambda[1] = l[0], l[1]
	case 3:
		var l [3]float64
		v, l = closestOnTriangle(s.w[0], s.w[1], s.w[2])
		s.lambda[0], s.lambda[1], s.lambda[2] = l[0], l[1], l[2]
	case 4:
		v, s.lambda = closestOnTetrahedron(s.w)
	}

	s.reduce()
	return v
}

func (s *closestSimplex) reduce() {
	n := 0
	for i := 0; i < s.n; i++ {
		if s.lambda[i] <= 0 {
			continue
		}
		s.w[n], s.a[n], s.b[n], s.lambda[n] = s.w[i], s.a[i], s.b[i], s.lambda[i]
		n++
	}
	for i := n; i < 4; i++ {
		s.lambda[i] = 0
	}
	s.n = n
}

func (s *closestSimplex) points() (mgl64.Vec3, mgl64.Vec3) {
	var pa, pb mgl64.Vec3
	for i := 0; i < s.n; i++ {
		pa = pa.Add(s.a[i].Mul(s.lambda[i]))
		pb = pb.Add(s.b[i].Mul(s.lambda[i]))
	}
	return pa, pb
}

// Distance computes the closest points between two convex sets.
func Distance(a, b Convex) DistanceResult {
	var s closestSimplex

	v := a.Center().Sub(b.Center())
	if v.LenSqr() < 1e-12 {
		v = mgl64.Vec3{1, 0, 0}
	}

	for i := 0; i < DistanceMaxIterations; i++ {
		sa := a.Support(v.Mul(-1))
		sb := b.Support(v)
		w := sa.Sub(sb)

		if s.n > 0 {
			vv := v.Dot(v)
			if s.contains(w) || vv-v.Dot(w) <= DistanceRelativeTolerance*vv {
				break
			}
		}

		s.add(w, sa, sb)
		v = s.closest()

		if s.n == 4 || v.LenSqr() <= OverlapTolerance*OverlapTolerance {
			pa, pb := s.points()
			return DistanceResult{PointA: pa, PointB: pb, Overlap: true}
		}
	}

	pa, pb := s.points()
	dist := v.Len()
	return DistanceResult{
		Distance: dist,
		Normal:   v.Mul(-1 / dist),
		PointA:   pa,
		PointB:   pb,
	}
}

func closestOnSegment(p0, p1 mgl64.Vec3) (mgl64.Vec3, [2]float64) {
	d := p1.Sub(p0)
	dd := d.Dot(d)
	if dd < 1e-24 {
		return p0, [2]float64{1, 0}
	}

	t := -p0.Dot(d) / dd
	switch {
	case t <= 0:
		return p0, [2]float64{1, 0}
	case t >= 1:
		return p1, [2]float64{0, 1}
	}
	return p0.Add(d.Mul(t)), [2]float64{1 - t, t}
}

// closestOnTriangle follows Ericson's Voronoi region walk, with the query
// point at the origin.
func closestOnTriangle(a, b, c mgl64.Vec3) (mgl64.Vec3, [3]float64) {
	ab := b.Sub(a)
	ac := c.Sub(a)

	ap := a.Mul(-1)
	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a, [3]float64{1, 0, 0}
	}

	bp := b.Mul(-1)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b, [3]float64{0, 1, 0}
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 && d1-d3 > 0 {
		v := d1 / (d1 - d3)
		return a.Add(ab.Mul(v)), [3]float64{1 - v, v, 0}
	}

	cp := c.Mul(-1)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c, [3]float64{0, 0, 1}
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 && d2-d6 > 0 {
		w := d2 / (d2 - d6)
		return a.Add(ac.Mul(w)), [3]float64{1 - w, 0, w}
	}

	va := d3*d6 - d5*d4
	if va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 && (d4-d3)+(d5-d6) > 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Sub(b).Mul(w)), [3]float64{0, 1 - w, w}
	}

	sum := va + vb + vc
	if math.Abs(sum) < 1e-24 {
		return closestOnDegenerateTriangle(a, b, c)
	}
	v := vb / sum
	w := vc / sum
	return a.Add(ab.Mul(v)).Add(ac.Mul(w)), [3]float64{1 - v - w, v, w}
}

// closestOnDegenerateTriangle handles collinear vertices through the edges.
func closestOnDegenerateTriangle(a, b, c mgl64.Vec3) (mgl64.Vec3, [3]float64) {
	best, bl := closestOnSegment(a, b)
	lambda := [3]float64{bl[0], bl[1], 0}

	if p, l := closestOnSegment(b, c); p.LenSqr() < best.LenSqr() {
		best, lambda = p, [3]float64{0, l[0], l[1]}
	}
	if p, l := closestOnSegment(a, c); p.LenSqr() < best.LenSqr() {
		best, lambda = p, [3]float64{l[0], 0, l[1]}
	}
	return best, lambda
}

// tetrahedronFaces lists each face with its opposite vertex last.
var tetrahedronFaces = [4][4]int{
	{0, 1, 2, 3},
	{0, 2, 3, 1},
	{0, 3, 1, 2},
	{1, 3, 2, 0},
}

func closestOnTetrahedron(p [4]mgl64.Vec3) (mgl64.Vec3, [4]float64) {
	inside := true
	bestDist := math.MaxFloat64
	var best mgl64.Vec3
	var lambda [4]float64

	for _, f := range tetrahedronFaces {
		if !originOutsideFace(p[f[0]], p[f[1]], p[f[2]], p[f[3]]) {
			continue
		}
		inside = false

		q, l := closestOnTriangle(p[f[0]], p[f[1]], p[f[2]])
		if d := q.LenSqr(); d < bestDist {
			bestDist = d
			best = q
			lambda = [4]float64{}
			lambda[f[0]], lambda[f[1]], lambda[f[2]] = l[0], l[1], l[2]
		}
	}

	if !inside {
		return best, lambda
	}

	e1 := p[1].Sub(p[0])
	e2 := p[2].Sub(p[0])
	e3 := p[3].Sub(p[0])
	o := p[0].Mul(-1)
	vol := e1.Dot(e2.Cross(e3))

	l1 := o.Dot(e2.Cross(e3)) / vol
	l2 := e1.Dot(o.Cross(e3)) / vol
	l3 := e1.Dot(e2.Cross(o)) / vol
	return mgl64.Vec3{}, [4]float64{1 - l1 - l2 - l3, l1, l2, l3}
}

// originOutsideFace reports whether the origin and d lie on opposite sides
// of the plane abc. A flat tetrahedron reports every face as outside.
func originOutsideFace(a, b, c, d mgl64.Vec3) bool {
	n := b.Sub(a).Cross(c.Sub(a))
	signO := a.Mul(-1).Dot(n)
	signD := d.Sub(a).Dot(n)
	if signD*signD < 1e-20*n.LenSqr()*n.LenSqr() {
		return true
	}
	return signO*signD < 0
}
