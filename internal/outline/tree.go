package outline

// BuildTree converts the final flat outline (already in document order) into
// a forest using a level-rank stack: pop while the stack top ranks at or
// below the new node, attach under the new top or as a root, push. A level
// jump (H1 directly to H3) nests under the last H1 with no synthetic H2.
func BuildTree(entries []Entry) []*Node {
	var roots []*Node
	var stack []*Node

	for _, e := range entries {
		node := &Node{
			Level:      e.Level,
			Text:       e.Text,
			Page:       e.Page,
			Confidence: e.Confidence,
			Children:   []*Node{},
		}
		rank := levelRank(e.Level)

		for len(stack) > 0 && levelRank(stack[len(stack)-1].Level) >= rank {
			stack = stack[:len(stack)-1]
		}
		if len(stack) > 0 {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, node)
		} else {
			roots = append(roots, node)
		}
		stack = append(stack, node)
	}
	return roots
}
