package dimension

// Powerset enumerates every dimension set a bot can satisfy: every subset
// of bot's keys, crossed with every choice of value for labels where bot
// offers a list. The empty mapping is included (it is always satisfiable).
//
// Mirrors the original _powerset/_explode_list: start from the full key
// set and walk down to the empty set, so the most restrictive candidates
// are produced first.
func Powerset(bot Set) []Set {
	keys := bot.sortedKeys()
	var out []Set
	for size := len(keys); size >= 0; size-- {
		for _, combo := range combinations(keys, size) {
			out = append(out, explodeLists(bot, combo)...)
		}
	}
	return out
}

// combinations returns every size-length subsequence of keys, in the
// order itertools.combinations would produce them.
func combinations(keys []string, size int) [][]string {
	n := len(keys)
	if size == 0 {
		return [][]string{{}}
	}
	if size > n {
		return nil
	}
	var out [][]string
	idx := make([]int, size)
	for i := range idx {
		idx[i] = i
	}
	for {
		combo := make([]string, size)
		for i, j := range idx {
			combo[i] = keys[j]
		}
		out = append(out, combo)

		// advance idx like an odometer, rightmost first
		i := size - 1
		for i >= 0 && idx[i] == i+n-size {
			i--
		}
		if i < 0 {
			break
		}
		idx[i]++
		for j := i + 1; j < size; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
	return out
}

// explodeLists yields every single-valued dimension set obtainable by
// picking one value from each list-valued label in keys, restricted to
// the labels in keys.
func explodeLists(bot Set, keys []string) []Set {
	type pick struct {
		key    string
		values Value
	}
	var multi []pick
	single := Set{}
	for _, k := range keys {
		v := bot[k]
		if v.Single() {
			single[k] = v
		} else {
			multi = append(multi, pick{k, v})
		}
	}
	if len(multi) == 0 {
		return []Set{single}
	}
	var out []Set
	var rec func(i int, acc Set)
	rec = func(i int, acc Set) {
		if i == len(multi) {
			out = append(out, acc.Clone())
			return
		}
		p := multi[i]
		for _, v := range p.values {
			acc[p.key] = Value{v}
			rec(i+1, acc)
		}
		delete(acc, p.key)
	}
	rec(0, single.Clone())
	return out
}
