package entities

import (
	"container/heap"
	"sort"

	logger "github.com/sirupsen/logrus"
)

// DependencyEdge means From must be processed after To.
type DependencyEdge struct {
	From *Project
	To   *Project
}

// DependencyGraph is the directed graph of in-set dependencies between projects. It is derived
// from the declared dependencies every invocation and never stored.
//
// Node indices follow discovery order, which is the tie-breaker of every ordering it produces.
type DependencyGraph struct {
	projects []*Project
	index    map[string]int

	outgoing [][]int // project -> its dependencies
	incoming [][]int // project -> its dependents
}

// NewDependencyGraph builds the graph for the given working set. A dependency on a name outside
// the set, or on the project itself, adds no edge.
func NewDependencyGraph(projects []*Project) *DependencyGraph {
	g := &DependencyGraph{
		projects: projects,
		index:    make(map[string]int, len(projects)),
		outgoing: make([][]int, len(projects)),
		incoming: make([][]int, len(projects)),
	}
	for i, p := range projects {
		g.index[p.Name] = i
	}
	for i, p := range projects {
		for _, dep := range p.Dependencies {
			j, ok := g.index[dep]
			if !ok || j == i {
				continue
			}
			g.outgoing[i] = append(g.outgoing[i], j)
			g.incoming[j] = append(g.incoming[j], i)
		}
	}
	for i := range projects {
		sort.Ints(g.outgoing[i])
		sort.Ints(g.incoming[i])
	}
	return g
}

// Projects returns the working set in discovery order.
func (g *DependencyGraph) Projects() []*Project {
	out := make([]*Project, len(g.projects))
	copy(out, g.projects)
	return out
}

// Edges returns every edge, ordered by the discovery index of From then To.
func (g *DependencyGraph) Edges() []DependencyEdge {
	var out []DependencyEdge
	for i, deps := range g.outgoing {
		for _, j := range deps {
			out = append(out, DependencyEdge{From: g.projects[i], To: g.projects[j]})
		}
	}
	return out
}

// Dependencies returns the in-set projects the named project depends on.
func (g *DependencyGraph) Dependencies(name string) []*Project {
	i, ok := g.index[name]
	if !ok {
		return nil
	}
	return g.pick(g.outgoing[i])
}

// Dependents returns the in-set projects depending on the named project.
func (g *DependencyGraph) Dependents(name string) []*Project {
	i, ok := g.index[name]
	if !ok {
		return nil
	}
	return g.pick(g.incoming[i])
}

// TransitiveDependencies returns the named projects plus everything they depend on,
// transitively, in discovery order.
func (g *DependencyGraph) TransitiveDependencies(names []string) []*Project {
	seen := make([]bool, len(g.projects))
	var stack []int
	for _, name := range names {
		if i, ok := g.index[name]; ok && !seen[i] {
			seen[i] = true
			stack = append(stack, i)
		}
	}
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, v := range g.outgoing[u] {
			if !seen[v] {
				seen[v] = true
				stack = append(stack, v)
			}
		}
	}

	var out []*Project
	for i, ok := range seen {
		if ok {
			out = append(out, g.projects[i])
		}
	}
	return out
}

// TopologicalOrder returns the projects so that every project comes after its dependencies.
// Projects with no relation keep their discovery order. It fails with a CyclicDependencyError
// when the graph has a cycle.
func (g *DependencyGraph) TopologicalOrder() ([]*Project, error) {
	indeg := make([]int, len(g.projects))
	for i := range g.projects {
		indeg[i] = len(g.outgoing[i])
	}

	ready := &intMinHeap{}
	for i, d := range indeg {
		if d == 0 {
			heap.Push(ready, i)
		}
	}

	order := make([]int, 0, len(g.projects))
	for ready.Len() > 0 {
		u := heap.Pop(ready).(int) //nolint:forcetypeassert // heap only holds ints
		order = append(order, u)
		for _, v := range g.incoming[u] {
			indeg[v]--
			if indeg[v] == 0 {
				heap.Push(ready, v)
			}
		}
	}

	if len(order) != len(g.projects) {
		return nil, g.cycleError()
	}
	return g.pick(order), nil
}

// OrderFor returns the processing order for an operation. Ordered operations fail on a cycle;
// order-independent ones fall back to discovery order and only warn.
func (g *DependencyGraph) OrderFor(op Operation) ([]*Project, error) {
	order, err := g.TopologicalOrder()
	if err == nil {
		return order, nil
	}
	if op.Ordered() {
		return nil, err
	}
	logger.Warnf("[%s] %v; continuing in discovery order", op, err)
	return g.Projects(), nil
}

// cycleError collects every strongly connected component with more than one member
// (Tarjan's algorithm, visiting nodes in discovery order).
func (g *DependencyGraph) cycleError() *CyclicDependencyError {
	n := len(g.projects)
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}
	var stack []int
	next := 0
	var components [][]int

	var strongConnect func(u int)
	strongConnect = func(u int) {
		index[u] = next
		low[u] = next
		next++
		stack = append(stack, u)
		onStack[u] = true

		for _, v := range g.outgoing[u] {
			if index[v] < 0 {
				strongConnect(v)
				low[u] = min(low[u], low[v])
			} else if onStack[v] {
				low[u] = min(low[u], index[v])
			}
		}

		if low[u] != index[u] {
			return
		}
		var comp []int
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			comp = append(comp, w)
			if w == u {
				break
			}
		}
		if len(comp) > 1 {
			sort.Ints(comp)
			components = append(components, comp)
		}
	}

	for i := range g.projects {
		if index[i] < 0 {
			strongConnect(i)
		}
	}

	sort.Slice(components, func(i, j int) bool { return components[i][0] < components[j][0] })

	var members []int
	cycles := make([][]string, 0, len(components))
	for _, comp := range components {
		cycles = append(cycles, ProjectNames(g.pick(comp)))
		members = append(members, comp...)
	}
	sort.Ints(members)
	return &CyclicDependencyError{Cycles: cycles, Members: ProjectNames(g.pick(members))}
}

func (g *DependencyGraph) pick(indices []int) []*Project {
	out := make([]*Project, 0, len(indices))
	for _, i := range indices {
		out = append(out, g.projects[i])
	}
	return out
}

type intMinHeap []int

func (h intMinHeap) Len() int           { return len(h) }
func (h intMinHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h intMinHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *intMinHeap) Push(x any)        { *h = append(*h, x.(int)) } //nolint:forcetypeassert // ints only
func (h *intMinHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
