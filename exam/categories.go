package exam

// CategoryNode is the tree-relevant projection of a category.
type CategoryNode struct {
	ID       uint
	ParentID *uint
}

// CategoryIndex resolves descendant sets over a category hierarchy.
// Build one per request from the current category table; there is no
// shared cache to invalidate.
type CategoryIndex struct {
	children map[uint][]uint
}

func NewCategoryIndex(nodes []CategoryNode) *CategoryIndex {
	children := make(map[uint][]uint, len(nodes))
	for _, n := range nodes {
		if n.ParentID != nil {
			children[*n.ParentID] = append(children[*n.ParentID], n.ID)
		}
	}
	return &CategoryIndex{children: children}
}

// Descendants returns id and every category below it. The hierarchy is
// strict (no cycles), so a plain breadth-first walk terminates.
func (ix *CategoryIndex) Descendants(id uint) []uint {
	result := []uint{id}
	queue := []uint{id}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, child := range ix.children[current] {
			result = append(result, child)
			queue = append(queue, child)
		}
	}
	return result
}
