package machine

// enumerate derives the complete set of maximal simple walks from start.
//
// The recursion keeps an explicit walk-so-far. A checkpoint with no outgoing
// edges ends the walk (base case). Otherwise the outgoing edges are
// partitioned by whether their target already occurs in the walk:
//
//   - a novel target extends the walk and recurses;
//   - an already-seen target closes a cycle, emitting walk+[target] as a
//     finished walk without recursing further. This bounds the recursion on
//     arbitrary finite cyclic graphs: each back-edge traversal produces at
//     most one terminal walk.
//
// Sibling branches never share a walk: when a checkpoint has more than one
// novel edge, every branch recurses on its own copy of the walk-so-far.
// A single novel edge extends the existing slice in place, which is safe
// because no sibling observes it.
//
// Cost is proportional to the number of maximal simple walks, exponential in
// branching factor in the worst case. Scenario graphs are intentionally
// small, so this is acceptable.
func enumerate(start *Checkpoint) [][]*Checkpoint {
	var walks [][]*Checkpoint
	expand(start, []*Checkpoint{start}, &walks)
	return walks
}

func expand(cp *Checkpoint, walk []*Checkpoint, walks *[][]*Checkpoint) {
	if len(cp.outgoing) == 0 {
		*walks = append(*walks, walk)
		return
	}

	// Membership is keyed on checkpoint identity so duplicate-content
	// checkpoints never collide.
	seen := make(map[*Checkpoint]struct{}, len(walk))
	for _, c := range walk {
		seen[c] = struct{}{}
	}

	var novel, cyclic []*Edge
	for _, e := range cp.outgoing {
		if _, ok := seen[e.target]; ok {
			cyclic = append(cyclic, e)
		} else {
			novel = append(novel, e)
		}
	}

	for _, e := range novel {
		branch := walk
		if len(novel) > 1 {
			branch = append([]*Checkpoint(nil), walk...)
		}
		expand(e.target, append(branch, e.target), walks)
	}

	for _, e := range cyclic {
		closed := append(append([]*Checkpoint(nil), walk...), e.target)
		*walks = append(*walks, closed)
	}
}
