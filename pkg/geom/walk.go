package geom

import v3 "github.com/deadsy/sdfx/vec/v3"

// EndsFunc returns the two endpoints of item i.
type EndsFunc func(i int) (a, b v3.Vec)

// Walk orders n undirected items into a path by shared endpoints, starting
// at the item touching anchor. reversed[k] is true when order[k] is
// traversed from its b end to its a end. Items not reachable from anchor
// are left out of order. Ties go to the lowest index.
func Walk(n int, ends EndsFunc, anchor v3.Vec, tol float64) (order []int, reversed []bool) {
	used := make([]bool, n)
	tip := anchor
	for {
		next, rev := -1, false
		for i := 0; i < n; i++ {
			if used[i] {
				continue
			}
			a, b := ends(i)
			if EqualTol(a, tip, tol) {
				next, rev = i, false
				break
			}
			if EqualTol(b, tip, tol) {
				next, rev = i, true
				break
			}
		}
		if next < 0 {
			return order, reversed
		}
		used[next] = true
		order = append(order, next)
		reversed = append(reversed, rev)
		a, b := ends(next)
		if rev {
			tip = a
		} else {
			tip = b
		}
	}
}
