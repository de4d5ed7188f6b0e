// Package ted computes the Zhang-Shasha edit distance between ordered,
// labeled trees. It knows nothing about HTML: anything that exposes a label
// and an ordered list of children can be compared.
package ted

// Node is the capability set the algorithm needs from a tree node.
// A nil Node stands for the empty tree.
type Node interface {
	Label() string
	ChildCount() int
	Child(i int) Node
}

// CostModel prices the three edit operations.
type CostModel interface {
	Insert(n Node) float64
	Delete(n Node) float64
	Relabel(a, b Node) float64
}

type unitCost struct{}

func (unitCost) Insert(Node) float64 { return 1 }
func (unitCost) Delete(Node) float64 { return 1 }

func (unitCost) Relabel(a, b Node) float64 {
	if a.Label() == b.Label() {
		return 0
	}
	return 1
}

// UnitCost charges 1 per insertion, deletion and relabel of differing labels.
var UnitCost CostModel = unitCost{}

// CostFuncs adapts plain functions to a CostModel. Nil fields fall back to unit cost.
type CostFuncs struct {
	InsertFunc  func(Node) float64
	DeleteFunc  func(Node) float64
	RelabelFunc func(a, b Node) float64
}

func (c CostFuncs) Insert(n Node) float64 {
	if c.InsertFunc == nil {
		return UnitCost.Insert(n)
	}
	return c.InsertFunc(n)
}

func (c CostFuncs) Delete(n Node) float64 {
	if c.DeleteFunc == nil {
		return UnitCost.Delete(n)
	}
	return c.DeleteFunc(n)
}

func (c CostFuncs) Relabel(a, b Node) float64 {
	if c.RelabelFunc == nil {
		return UnitCost.Relabel(a, b)
	}
	return c.RelabelFunc(a, b)
}

// annotated is a tree flattened in post-order with the bookkeeping
// Zhang-Shasha needs: leftmost leaf descendant of every node and the keyroots.
type annotated struct {
	nodes    []Node
	lmd      []int
	keyroots []int
}

func annotate(root Node) *annotated {
	a := &annotated{}
	if root == nil {
		return a
	}
	a.visit(root)

	// A keyroot is the highest node for each distinct leftmost leaf.
	seen := make(map[int]bool, len(a.nodes))
	for i := len(a.nodes) - 1; i >= 0; i-- {
		if !seen[a.lmd[i]] {
			seen[a.lmd[i]] = true
			a.keyroots = append(a.keyroots, i)
		}
	}
	for l, r := 0, len(a.keyroots)-1; l < r; l, r = l+1, r-1 {
		a.keyroots[l], a.keyroots[r] = a.keyroots[r], a.keyroots[l]
	}
	return a
}

// visit appends n's subtree in post-order and returns the index of n's leftmost leaf.
func (a *annotated) visit(n Node) int {
	leftmost := -1
	for i := 0; i < n.ChildCount(); i++ {
		l := a.visit(n.Child(i))
		if leftmost < 0 {
			leftmost = l
		}
	}
	idx := len(a.nodes)
	if leftmost < 0 {
		leftmost = idx
	}
	a.nodes = append(a.nodes, n)
	a.lmd = append(a.lmd, leftmost)
	return leftmost
}

// Size returns the number of nodes under root, 0 for nil.
func Size(root Node) int {
	if root == nil {
		return 0
	}
	size := 1
	for i := 0; i < root.ChildCount(); i++ {
		size += Size(root.Child(i))
	}
	return size
}

// Distance returns the minimum cost of turning tree a into tree b with node
// insertions, deletions and relabels that preserve ancestor and sibling order.
// A nil costs uses UnitCost.
func Distance(a, b Node, costs CostModel) float64 {
	if costs == nil {
		costs = UnitCost
	}
	A, B := annotate(a), annotate(b)
	n1, n2 := len(A.nodes), len(B.nodes)

	switch {
	case n1 == 0 && n2 == 0:
		return 0
	case n1 == 0:
		total := 0.0
		for _, n := range B.nodes {
			total += costs.Insert(n)
		}
		return total
	case n2 == 0:
		total := 0.0
		for _, n := range A.nodes {
			total += costs.Delete(n)
		}
		return total
	}

	td := make([][]float64, n1)
	for i := range td {
		td[i] = make([]float64, n2)
	}
	// One forest-distance buffer sized for the largest keyroot pair is reused.
	fd := make([][]float64, n1+1)
	for i := range fd {
		fd[i] = make([]float64, n2+1)
	}

	for _, i := range A.keyroots {
		for _, j := range B.keyroots {
			forestDist(A, B, i, j, costs, td, fd)
		}
	}
	return td[n1-1][n2-1]
}

// forestDist fills td for every pair of nodes in the subtrees rooted at
// keyroots i and j whose leftmost leaves coincide with those of i and j.
func forestDist(A, B *annotated, i, j int, costs CostModel, td, fd [][]float64) {
	li, lj := A.lmd[i], B.lmd[j]
	m, n := i-li+2, j-lj+2
	ioff, joff := li-1, lj-1

	fd[0][0] = 0
	for x := 1; x < m; x++ {
		fd[x][0] = fd[x-1][0] + costs.Delete(A.nodes[x+ioff])
	}
	for y := 1; y < n; y++ {
		fd[0][y] = fd[0][y-1] + costs.Insert(B.nodes[y+joff])
	}

	for x := 1; x < m; x++ {
		for y := 1; y < n; y++ {
			a, b := x+ioff, y+joff
			del := fd[x-1][y] + costs.Delete(A.nodes[a])
			ins := fd[x][y-1] + costs.Insert(B.nodes[b])

			if A.lmd[a] == li && B.lmd[b] == lj {
				// Both prefixes are whole trees.
				rel := fd[x-1][y-1] + costs.Relabel(A.nodes[a], B.nodes[b])
				fd[x][y] = min(del, ins, rel)
				td[a][b] = fd[x][y]
				continue
			}

			p := A.lmd[a] - 1 - ioff
			q := B.lmd[b] - 1 - joff
			fd[x][y] = min(del, ins, fd[p][q]+td[a][b])
		}
	}
}
