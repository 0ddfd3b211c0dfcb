package metrics

// Groups is an insertion-ordered map from key to aggregate.
type Groups[K comparable, A any] struct {
	order []K
	items map[K]*A
}

// Group folds records into aggregates. For each record the key is
// computed; an existing aggregate is passed to merge, otherwise seed
// builds the first aggregate for that key from the record.
func Group[R any, K comparable, A any](records []R, key func(R) K, seed func(R) A, merge func(*A, R)) *Groups[K, A] {
	g := &Groups[K, A]{items: make(map[K]*A)}
	for _, r := range records {
		k := key(r)
		if agg, ok := g.items[k]; ok {
			merge(agg, r)
			continue
		}
		agg := seed(r)
		g.items[k] = &agg
		g.order = append(g.order, k)
	}
	return g
}

// Len returns the number of distinct keys.
func (g *Groups[K, A]) Len() int {
	if g == nil {
		return 0
	}
	return len(g.order)
}

// Keys returns the keys in first-seen order.
func (g *Groups[K, A]) Keys() []K {
	if g == nil {
		return nil
	}
	keys := make([]K, len(g.order))
	copy(keys, g.order)
	return keys
}

// Get returns the aggregate stored under k.
func (g *Groups[K, A]) Get(k K) (A, bool) {
	var zero A
	if g == nil {
		return zero, false
	}
	agg, ok := g.items[k]
	if !ok {
		return zero, false
	}
	return *agg, true
}

// Values returns the aggregates in first-seen order.
func (g *Groups[K, A]) Values() []A {
	if g == nil {
		return []A{}
	}
	values := make([]A, 0, len(g.order))
	for _, k := range g.order {
		values = append(values, *g.items[k])
	}
	return values
}
