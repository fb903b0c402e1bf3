package network_test

import (
	"errors"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/netdyn/internal/dynamo"
	"github.com/san-kum/netdyn/internal/graphs"
	"github.com/san-kum/netdyn/internal/network"
)

type countingObserver struct {
	calls  int
	failed int
}

func (o *countingObserver) ObserveEvaluation(_ time.Duration, err error) {
	o.calls++
	if err != nil {
		o.failed++
	}
}

var _ = Describe("System", func() {
	var (
		path   *graphs.EdgeList
		vertex network.VertexSpec
		edge   network.EdgeSpec
	)

	BeforeEach(func() {
		var err error
		path, err = graphs.Path(3, true)
		Expect(err).NotTo(HaveOccurred())
		vertex = mustODEVertex(1, diffusionVertex)
		edge = mustStaticEdge(1, diffusionEdge)
	})

	Describe("diffusion on a directed path", func() {
		It("routes edge values to source and destination vertices", func() {
			sys, err := network.Assemble(network.RepeatVertex(vertex, 3), network.RepeatEdge(edge, 2), path)
			Expect(err).NotTo(HaveOccurred())

			u := []float64{1, 0, 0}
			du := make([]float64, 3)
			edges := make([]float64, sys.EdgeDim())

			Expect(sys.EvaluateWithEdges(du, u, edges, nil, 0)).To(Succeed())
			Expect(edges).To(Equal([]float64{1, 0}))
			Expect(du).To(Equal([]float64{-1, 1, 0}))
		})

		It("gives the same result through the pooled edge buffer", func() {
			sys, err := network.Assemble(network.RepeatVertex(vertex, 3), network.RepeatEdge(edge, 2), path)
			Expect(err).NotTo(HaveOccurred())

			du := make([]float64, 3)
			Expect(sys.Evaluate(du, []float64{1, 0, 0}, nil, 0)).To(Succeed())
			Expect(du).To(Equal([]float64{-1, 1, 0}))
		})

		It("is deterministic across repeated calls", func() {
			sys, err := network.Assemble(network.RepeatVertex(vertex, 3), network.RepeatEdge(edge, 2), path)
			Expect(err).NotTo(HaveOccurred())

			u := []float64{0.3, -1.2, 2.5}
			first := make([]float64, 3)
			second := make([]float64, 3)
			Expect(sys.Evaluate(first, u, nil, 1.5)).To(Succeed())
			Expect(sys.Evaluate(second, u, nil, 1.5)).To(Succeed())
			Expect(second).To(Equal(first))
		})
	})

	Describe("assembly errors", func() {
		It("rejects a vertex spec count that differs from the graph", func() {
			_, err := network.Assemble(network.RepeatVertex(vertex, 2), network.RepeatEdge(edge, 2), path)
			Expect(errors.Is(err, dynamo.ErrDimensionMismatch)).To(BeTrue())
		})

		It("rejects an edge spec count that differs from the graph", func() {
			_, err := network.Assemble(network.RepeatVertex(vertex, 3), network.RepeatEdge(edge, 1), path)
			Expect(errors.Is(err, dynamo.ErrDimensionMismatch)).To(BeTrue())
		})

		It("rejects edges pointing past the vertex count", func() {
			g := pairGraph{n: 2, pairs: [][2]int{{0, 2}}}
			_, err := network.Assemble(network.RepeatVertex(vertex, 2), network.RepeatEdge(edge, 1), g)
			Expect(errors.Is(err, dynamo.ErrIndexOutOfRange)).To(BeTrue())
		})

		It("rejects zero-value specs", func() {
			specs := []network.VertexSpec{vertex, {}, vertex}
			_, err := network.Assemble(specs, network.RepeatEdge(edge, 2), path)
			Expect(errors.Is(err, dynamo.ErrInvalidDimension)).To(BeTrue())
		})
	})

	Describe("buffer checks", func() {
		It("fails before writing anything when du is short", func() {
			sys, err := network.Assemble(network.RepeatVertex(vertex, 3), network.RepeatEdge(edge, 2), path)
			Expect(err).NotTo(HaveOccurred())

			du := []float64{7, 7}
			err = sys.Evaluate(du, []float64{1, 0, 0}, nil, 0)
			Expect(errors.Is(err, dynamo.ErrBufferSizeMismatch)).To(BeTrue())
			Expect(du).To(Equal([]float64{7, 7}))
		})

		It("fails when u is long", func() {
			sys, err := network.Assemble(network.RepeatVertex(vertex, 3), network.RepeatEdge(edge, 2), path)
			Expect(err).NotTo(HaveOccurred())

			err = sys.Evaluate(make([]float64, 3), make([]float64, 4), nil, 0)
			Expect(errors.Is(err, dynamo.ErrBufferSizeMismatch)).To(BeTrue())
		})

		It("checks the caller edge buffer", func() {
			sys, err := network.Assemble(network.RepeatVertex(vertex, 3), network.RepeatEdge(edge, 2), path)
			Expect(err).NotTo(HaveOccurred())

			du := []float64{5, 5, 5}
			err = sys.EvaluateWithEdges(du, make([]float64, 3), make([]float64, 1), nil, 0)
			Expect(errors.Is(err, dynamo.ErrBufferSizeMismatch)).To(BeTrue())
			Expect(du).To(Equal([]float64{5, 5, 5}))
		})
	})

	Describe("local rule failures", func() {
		It("annotates the failing entity and keeps the cause", func() {
			domain := errors.New("log of negative")
			bad := mustStaticEdge(1, func(e, src, dst []float64, _ any, _ float64) error {
				if src[0] < 0 {
					return domain
				}
				e[0] = src[0]
				return nil
			})
			sys, err := network.Assemble(network.RepeatVertex(vertex, 3), []network.EdgeSpec{edge, bad}, path)
			Expect(err).NotTo(HaveOccurred())

			err = sys.Evaluate(make([]float64, 3), []float64{0, -1, 0}, nil, 2)
			Expect(errors.Is(err, domain)).To(BeTrue())

			var ee *dynamo.EntityError
			Expect(errors.As(err, &ee)).To(BeTrue())
			Expect(ee.Entity).To(Equal("edge"))
			Expect(ee.Index).To(Equal(1))
			Expect(ee.Time).To(Equal(2.0))
		})

		It("does not run the vertex phase after an edge failure", func() {
			ran := false
			spy := mustODEVertex(1, func(dx, _ []float64, _, _ [][]float64, _ any, _ float64) error {
				ran = true
				return nil
			})
			failing := mustStaticEdge(1, func(_, _, _ []float64, _ any, _ float64) error {
				return errors.New("boom")
			})
			sys, err := network.Assemble(network.RepeatVertex(spy, 3), network.RepeatEdge(failing, 2), path)
			Expect(err).NotTo(HaveOccurred())

			Expect(sys.Evaluate(make([]float64, 3), make([]float64, 3), nil, 0)).NotTo(Succeed())
			Expect(ran).To(BeFalse())
		})
	})

	Describe("mixed kinds", func() {
		It("writes static vertex values into their own state with zero rate", func() {
			slack := mustStaticVertex(1, func(x []float64, _, _ [][]float64, _ any, _ float64) error {
				x[0] = 2
				return nil
			})
			specs := []network.VertexSpec{slack, vertex, vertex}
			sys, err := network.Assemble(specs, network.RepeatEdge(edge, 2), path)
			Expect(err).NotTo(HaveOccurred())
			Expect(sys.Algebraic()).To(Equal([]network.Segment{{Offset: 0, Length: 1}}))
			Expect(sys.MassMatrix().IsIdentity()).To(BeTrue())

			u := []float64{0, 0, 0}
			du := []float64{9, 9, 9}
			Expect(sys.Evaluate(du, u, nil, 0)).To(Succeed())
			Expect(u).To(Equal([]float64{2, 0, 0}))
			Expect(du).To(Equal([]float64{0, 0, 0}))

			// the edges now read the assigned value
			Expect(sys.Evaluate(du, u, nil, 0)).To(Succeed())
			Expect(u).To(Equal([]float64{2, 0, 0}))
			Expect(du).To(Equal([]float64{0, 2, 0}))
		})

		It("keeps the algebraic value under a plain identity-mass Euler step", func() {
			slack := mustStaticVertex(1, func(x []float64, _, _ [][]float64, _ any, _ float64) error {
				x[0] = 2
				return nil
			})
			specs := []network.VertexSpec{slack, vertex, vertex}
			sys, err := network.Assemble(specs, network.RepeatEdge(edge, 2), path)
			Expect(err).NotTo(HaveOccurred())

			// an integrator that knows only Evaluate, StateDim and the mass marker
			Expect(sys.MassMatrix().IsIdentity()).To(BeTrue())
			u := make([]float64, sys.StateDim())
			du := make([]float64, sys.StateDim())
			for step := 0; step < 4000; step++ {
				Expect(sys.Evaluate(du, u, nil, 0)).To(Succeed())
				for k := range u {
					u[k] += 0.01 * du[k]
				}
			}
			Expect(u[0]).To(Equal(2.0))
			Expect(u[1]).To(BeNumerically("~", 2, 1e-3))
			Expect(u[2]).To(BeNumerically("~", 2, 1e-3))
		})

		It("integrates differential edges after the vertices", func() {
			// de = (src - dst) - e
			lag := mustODEEdge(1, func(de, e, src, dst []float64, _ any, _ float64) error {
				de[0] = (src[0] - dst[0]) - e[0]
				return nil
			})
			sys, err := network.Assemble(network.RepeatVertex(vertex, 3), []network.EdgeSpec{lag, edge}, path)
			Expect(err).NotTo(HaveOccurred())
			Expect(sys.StateDim()).To(Equal(4))
			Expect(sys.EdgeDim()).To(Equal(2))

			// vertices [1, 0, 0], lagged edge state 0.5
			u := []float64{1, 0, 0, 0.5}
			du := make([]float64, 4)
			edges := make([]float64, 2)
			Expect(sys.EvaluateWithEdges(du, u, edges, nil, 0)).To(Succeed())

			Expect(edges).To(Equal([]float64{0.5, 0}))
			Expect(du).To(Equal([]float64{-0.5, 0.5, 0, 0.5}))
			Expect(sys.Symbols()).To(Equal([]string{"v_0", "v_1", "v_2", "e_0"}))
		})

		It("keeps static edges out of the integrated vector", func() {
			sys, err := network.Assemble(network.RepeatVertex(vertex, 3), network.RepeatEdge(edge, 2), path)
			Expect(err).NotTo(HaveOccurred())
			Expect(sys.StateDim()).To(Equal(3))
			Expect(sys.Layout().DifferentialEdges()).To(Equal(0))
		})
	})

	Describe("self-loops and parallel edges", func() {
		It("hands a self-loop to both lists of its vertex", func() {
			g := pairGraph{n: 2, pairs: [][2]int{{0, 0}, {0, 1}, {0, 1}}}
			var seenIn, seenOut int
			probe := mustODEVertex(1, func(dx, _ []float64, in, out [][]float64, _ any, _ float64) error {
				dx[0] = float64(10*len(in) + len(out))
				return nil
			})
			sys, err := network.Assemble(network.RepeatVertex(probe, 2), network.RepeatEdge(edge, 3), g)
			Expect(err).NotTo(HaveOccurred())

			du := make([]float64, 2)
			Expect(sys.Evaluate(du, []float64{1, 0}, nil, 0)).To(Succeed())
			seenIn, seenOut = int(du[0])/10, int(du[0])%10
			Expect(seenIn).To(Equal(1))
			Expect(seenOut).To(Equal(3))
			Expect(du[1]).To(Equal(20.0))
		})
	})

	Describe("parallel phases", func() {
		It("matches the serial result", func() {
			g, err := graphs.ErdosRenyi(200, 0.05, 11, false)
			Expect(err).NotTo(HaveOccurred())

			vs := network.RepeatVertex(vertex, g.NumVertices())
			es := network.RepeatEdge(edge, g.NumEdges())
			serial, err := network.Assemble(vs, es, g)
			Expect(err).NotTo(HaveOccurred())
			parallel, err := network.Assemble(vs, es, g, network.WithParallel(4, 8))
			Expect(err).NotTo(HaveOccurred())

			u := make([]float64, g.NumVertices())
			for i := range u {
				u[i] = math.Sin(float64(i))
			}
			want := make([]float64, len(u))
			got := make([]float64, len(u))
			Expect(serial.Evaluate(want, u, nil, 0)).To(Succeed())
			Expect(parallel.Evaluate(got, u, nil, 0)).To(Succeed())
			Expect(got).To(Equal(want))
		})
	})

	Describe("observer", func() {
		It("sees successful and failed evaluations", func() {
			boom := errors.New("negative flow")
			guarded := mustStaticEdge(1, func(e, src, dst []float64, _ any, _ float64) error {
				if src[0] < 0 {
					return boom
				}
				e[0] = src[0] - dst[0]
				return nil
			})
			obs := &countingObserver{}
			sys, err := network.Assemble(network.RepeatVertex(vertex, 3), network.RepeatEdge(guarded, 2), path, network.WithObserver(obs))
			Expect(err).NotTo(HaveOccurred())

			Expect(sys.Evaluate(make([]float64, 3), make([]float64, 3), nil, 0)).To(Succeed())
			Expect(obs.calls).To(Equal(1))
			Expect(obs.failed).To(Equal(0))

			err = sys.Evaluate(make([]float64, 3), []float64{-1, 0, 0}, nil, 0)
			Expect(errors.Is(err, boom)).To(BeTrue())
			Expect(obs.calls).To(Equal(2))
			Expect(obs.failed).To(Equal(1))

			// buffer errors are rejected before evaluation starts
			Expect(sys.Evaluate(make([]float64, 2), make([]float64, 3), nil, 0)).NotTo(Succeed())
			Expect(obs.calls).To(Equal(2))
		})
	})

	Describe("edge values", func() {
		It("fills the edge vector without touching vertices", func() {
			sys, err := network.Assemble(network.RepeatVertex(vertex, 3), network.RepeatEdge(edge, 2), path)
			Expect(err).NotTo(HaveOccurred())

			edges := make([]float64, 2)
			Expect(sys.EdgeValues(edges, []float64{3, 1, 4}, nil, 0)).To(Succeed())
			Expect(edges).To(Equal([]float64{2, -3}))
			Expect(sys.EdgeState(edges, 1)).To(Equal([]float64{-3}))
			Expect(sys.EdgeSymbols()).To(Equal([]string{"e_0", "e_1"}))
		})
	})
})
