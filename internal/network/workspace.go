package network

import "sync"

// workspace holds the per-call view tables. Views are rebound on every call
// and never outlive it.
type workspace struct {
	edges     []float64
	edgeViews [][]float64
	inViews   [][]float64 // aligned with Topology.inIdx
	outViews  [][]float64 // aligned with Topology.outIdx
}

// workspacePool recycles workspaces across calls so steady-state evaluation
// does not allocate. Safe for concurrent use.
type workspacePool struct {
	pool sync.Pool
}

func newWorkspacePool(edgeDim, numEdges int) *workspacePool {
	return &workspacePool{
		pool: sync.Pool{
			New: func() any {
				return &workspace{
					edges:     make([]float64, edgeDim),
					edgeViews: make([][]float64, numEdges),
					inViews:   make([][]float64, numEdges),
					outViews:  make([][]float64, numEdges),
				}
			},
		},
	}
}

func (p *workspacePool) Get() *workspace {
	return p.pool.Get().(*workspace)
}

// Put clears the view tables so pooled workspaces do not pin caller buffers.
func (p *workspacePool) Put(ws *workspace) {
	clear(ws.edgeViews)
	clear(ws.inViews)
	clear(ws.outViews)
	p.pool.Put(ws)
}
