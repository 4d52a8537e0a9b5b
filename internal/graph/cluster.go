package graph

// labelComponents finds connected components via BFS and returns the
// component label of every node plus the size of every component. Labels
// are assigned in order of each component's smallest node, so they are
// stable across runs and backends.
func labelComponents(n int, neighbors func(uint32) []uint32) (labels, sizes []int) {
	labels = make([]int, n)
	for i := range labels {
		labels[i] = -1
	}
	for start := range n {
		if labels[start] >= 0 {
			continue
		}
		sizes = append(sizes, bfsComponent(uint32(start), len(sizes), neighbors, labels))
	}
	return labels, sizes
}

// bfsComponent performs BFS from start, marking every reachable node with
// label. It returns the component size.
func bfsComponent(start uint32, label int, neighbors func(uint32) []uint32, labels []int) int {
	size := 0
	queue := []uint32{start}
	labels[start] = label

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		size++
		for _, nb := range neighbors(node) {
			if labels[nb] < 0 {
				labels[nb] = label
				queue = append(queue, nb)
			}
		}
	}

	return size
}
