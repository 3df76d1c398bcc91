package config

// Merge combines parent into child, in place. Child always wins: keys
// present only in parent are copied over, keys present in both recurse
// when both sides are sections, and in every other case the child value
// is kept and the parent branch dropped. Key matching is case-insensitive
// so that `[DB]` in one source overrides `[db]` in another.
//
// Callers realize source priority by merging lower-priority trees into a
// higher-priority accumulator, highest priority first.
func Merge(child, parent RawTree) {
	for pk, pv := range parent {
		_, cv, ok := child.lookup(pk)
		if !ok {
			child[pk] = pv
			continue
		}
		ct, childIsTree := asTree(cv)
		pt, parentIsTree := asTree(pv)
		if childIsTree && parentIsTree {
			Merge(ct, pt)
		}
		// Scalar in child, or shape mismatch: child wins, parent dropped.
	}
}
