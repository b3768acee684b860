package state

// windowOrder lists the indices of [start, end] nearest-first around current:
// current, +1, -1, +2, -2 and so on. The I/O queue is FIFO, so this starts
// the images the user is most likely to see next.
func windowOrder(current, start, end int) []int {
	if start > end {
		return nil
	}
	order := make([]int, 0, end-start+1)
	if current >= start && current <= end {
		order = append(order, current)
	}
	for d := 1; current+d <= end || current-d >= start; d++ {
		if i := current + d; i >= start && i <= end {
			order = append(order, i)
		}
		if i := current - d; i >= start && i <= end {
			order = append(order, i)
		}
	}
	return order
}

// windowBounds clamps [current-back, current+ahead] to the file list.
func windowBounds(current, n int, w Window) (int, int) {
	start := current - max(w.Back, 0)
	if start < 0 {
		start = 0
	}
	end := current + max(w.Ahead, 0)
	if end > n-1 {
		end = n - 1
	}
	return start, end
}

// refreshWindow requests every path in the window around the current index
// that is neither cached nor pending, and returns how many requests it made.
// It reads the cache without touching recency, so calling it again with no
// change in between requests nothing.
func (r *StateReducer) refreshWindow(state *AppState, w Window) int {
	n := len(state.Files)
	if n == 0 || state.CurrentIndex < 0 || state.CurrentIndex >= n {
		return 0
	}

	start, end := windowBounds(state.CurrentIndex, n, w)
	issued := 0
	for _, idx := range windowOrder(state.CurrentIndex, start, end) {
		path := state.Files[idx].Path
		if state.Cache.Contains(path) || state.IsPending(path) {
			continue
		}
		if r.RequestImage(state, path) {
			issued++
		}
	}
	return issued
}
