package remesh

import (
	"cmp"
	"context"
	"runtime"

	"github.com/soypat/remesh/constraint"
	"github.com/soypat/remesh/dmesh"
	"github.com/soypat/remesh/pqueue"
	"github.com/soypat/remesh/quadric"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"
)

// Simplifier reduces a mesh in place by greedily collapsing the edge whose
// collapse adds the least quadric error. It is generic over the quadric
// type so the plane and normal aware metrics share one driver.
//
// A Simplifier is not safe for concurrent use. Targets may be called from
// several goroutines during setup.
type Simplifier[Q Quadric[Q]] struct {
	Mesh   *dmesh.Mesh
	Config Config
	// Constraints restricts collapses. Nil means unconstrained.
	Constraints *constraint.Set
	// Target is the global projection surface used by ProjectionMode and
	// the geometric error criteria.
	Target constraint.Target
	Log    *zap.Logger
	// Observer, when set, is called after every completed collapse.
	Observer func(dmesh.CollapseInfo)

	metric Metric[Q]

	triQ    []Q
	triArea []float64
	vertQ   []Q
	edgeQ   []edgeQuadric[Q]
	seamQ   []quadric.Error
	hasSeam []bool
	queue   pqueue.Indexed[float32]

	isBoundaryV  []bool
	haveBoundary bool
	// maxEdgeLen2 is the squared collapse length limit, zero for none.
	maxEdgeLen2 float64

	tris  []int
	edges []int
	mark  []uint32
	stamp uint32
}

type edgeQuadric[Q any] struct {
	q Q
	p r3.Vec
}

// New returns a simplifier using the plain point to plane quadric.
func New(m *dmesh.Mesh, cfg Config) *Simplifier[quadric.Error] {
	return NewWithMetric[quadric.Error](m, cfg, PlaneMetric{})
}

// NewAttribute returns a simplifier using the normal aware quadric with
// cfg.AttributeWeight.
func NewAttribute(m *dmesh.Mesh, cfg Config) *Simplifier[quadric.Attr] {
	return NewWithMetric[quadric.Attr](m, cfg, NormalMetric{Weight: cfg.AttributeWeight})
}

// NewWithMetric returns a simplifier over an arbitrary quadric metric.
func NewWithMetric[Q Quadric[Q]](m *dmesh.Mesh, cfg Config, metric Metric[Q]) *Simplifier[Q] {
	if m == nil {
		panic("remesh: nil mesh")
	}
	if metric == nil {
		panic("remesh: nil metric")
	}
	return &Simplifier[Q]{Mesh: m, Config: cfg, Log: zap.NewNop(), metric: metric}
}

func (s *Simplifier[Q]) log() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Simplifier[Q]) workers() int {
	if s.Config.Workers > 0 {
		return s.Config.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// parallel calls fn over disjoint id ranges covering [0, n).
func (s *Simplifier[Q]) parallel(ctx context.Context, n int, fn func(lo, hi int)) error {
	const minChunk = 512
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())
	chunk := max(minChunk, (n+s.workers()-1)/s.workers())
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(lo, hi)
			return nil
		})
	}
	return g.Wait()
}

// initialize computes all quadrics and fills the queue.
func (s *Simplifier[Q]) initialize(ctx context.Context) error {
	m := s.Mesh
	nt, nv, ne := m.MaxTriangleID(), m.MaxVertexID(), m.MaxEdgeID()

	s.triQ = make([]Q, nt)
	s.triArea = make([]float64, nt)
	err := s.parallel(ctx, nt, func(lo, hi int) {
		for tid := lo; tid < hi; tid++ {
			if m.IsTriangle(tid) {
				s.triQ[tid], s.triArea[tid] = s.metric.FaceQuadric(m, tid)
			}
		}
	})
	if err != nil {
		return err
	}
	if err := s.initBoundary(ctx); err != nil {
		return err
	}

	s.vertQ = make([]Q, nv)
	err = s.parallel(ctx, nv, func(lo, hi int) {
		tris := make([]int, 0, 16)
		for vid := lo; vid < hi; vid++ {
			if !m.IsVertex(vid) {
				continue
			}
			var q Q
			tris = m.VertexTriangles(vid, tris[:0])
			for _, tid := range tris {
				q = q.Add(s.triArea[tid], s.triQ[tid])
			}
			s.vertQ[vid] = q
		}
	})
	if err != nil {
		return err
	}

	s.initSeams()
	if err := ctx.Err(); err != nil {
		return err
	}

	s.edgeQ = make([]edgeQuadric[Q], ne)
	prio := make([]float32, ne)
	err = s.parallel(ctx, ne, func(lo, hi int) {
		for eid := lo; eid < hi; eid++ {
			if m.IsEdge(eid) {
				q, p, pr := s.computeEdge(eid)
				s.edgeQ[eid] = edgeQuadric[Q]{q: q, p: p}
				prio[eid] = pr
			}
		}
	})
	if err != nil {
		return err
	}
	order := make([]int, 0, m.EdgeCount())
	for eid := 0; eid < ne; eid++ {
		if m.IsEdge(eid) {
			order = append(order, eid)
		}
	}
	slices.SortFunc(order, func(a, b int) int {
		if c := cmp.Compare(prio[a], prio[b]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	s.queue.Initialize(ne)
	for _, eid := range order {
		s.queue.Insert(eid, prio[eid])
	}
	s.mark = make([]uint32, ne)
	s.stamp = 0
	return ctx.Err()
}

func (s *Simplifier[Q]) initBoundary(ctx context.Context) error {
	m := s.Mesh
	s.isBoundaryV = make([]bool, m.MaxVertexID())
	s.haveBoundary = !m.IsClosed()
	if !s.haveBoundary {
		return ctx.Err()
	}
	return s.parallel(ctx, m.MaxVertexID(), func(lo, hi int) {
		for vid := lo; vid < hi; vid++ {
			s.isBoundaryV[vid] = m.IsVertex(vid) && m.IsBoundaryVertex(vid)
		}
	})
}

func (s *Simplifier[Q]) initSeams() {
	if !s.Config.AllowSeamCollapse {
		s.seamQ, s.hasSeam = nil, nil
		return
	}
	m := s.Mesh
	s.seamQ = make([]quadric.Error, m.MaxEdgeID())
	s.hasSeam = make([]bool, m.MaxEdgeID())
	for eid := range s.hasSeam {
		if m.IsEdge(eid) && s.isSeamEdge(eid) {
			s.hasSeam[eid] = true
			s.seamQ[eid] = s.seamQuadric(eid)
		}
	}
}

// isSeamEdge reports whether eid needs a seam quadric on setup. Constrained
// edges are seams when a constraint set is present.
func (s *Simplifier[Q]) isSeamEdge(eid int) bool {
	if s.Constraints != nil {
		return s.Constraints.HasEdge(eid)
	}
	m := s.Mesh
	return m.IsBoundaryEdge(eid) || m.IsSeamEdge(eid) ||
		m.IsGroupBoundaryEdge(eid) || m.IsMaterialBoundaryEdge(eid)
}

func (s *Simplifier[Q]) seamQuadric(eid int) quadric.Error {
	m := s.Mesh
	e := m.Edge(eid)
	p0, p1 := m.Vertex(e.V[0]), m.Vertex(e.V[1])
	var q quadric.Error
	for _, tid := range e.T {
		if tid != dmesh.InvalidID {
			q = q.Add(s.Config.SeamEdgeWeight, quadric.Seam(p0, p1, m.TriangleNormal(tid)))
		}
	}
	return q
}

func (s *Simplifier[Q]) boundaryVertex(vid int) bool {
	if vid < len(s.isBoundaryV) {
		return s.isBoundaryV[vid]
	}
	return s.Mesh.IsBoundaryVertex(vid)
}

func (s *Simplifier[Q]) vertexConstraint(vid int) constraint.VertexConstraint {
	if s.Constraints == nil {
		return constraint.Unconstrained()
	}
	return s.Constraints.Vertex(vid)
}

func (s *Simplifier[Q]) edgeConstraint(eid int) constraint.EdgeConstraint {
	if s.Constraints == nil || eid == dmesh.InvalidID {
		return constraint.EdgeConstraint{}
	}
	return s.Constraints.Edge(eid)
}

// project moves p onto the global target in inline projection mode.
func (s *Simplifier[Q]) project(p r3.Vec, id int) r3.Vec {
	if s.Config.ProjectionMode == Inline && s.Target != nil {
		return s.Target.Project(p, id)
	}
	return p
}

func (s *Simplifier[Q]) warnMisconfiguration() {
	if s.Constraints == nil && s.Mesh.HasAttributes() {
		s.log().Warn("mesh has attributes but no constraint set, seams and group boundaries are unprotected",
			zap.Bool("normals", s.Mesh.Normals() != nil),
			zap.Bool("uvs", s.Mesh.UVs() != nil),
			zap.Bool("groups", s.Mesh.HasGroups()),
			zap.Bool("materials", s.Mesh.HasMaterials()),
		)
	}
}

// afterCollapse runs per collapse hooks common to all passes.
func (s *Simplifier[Q]) afterCollapse(info dmesh.CollapseInfo) {
	if s.Observer != nil {
		s.Observer(info)
	}
	s.debugCheck(2)
}
