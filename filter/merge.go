package filter

// Merge unions the SKU lists of several index queries, dropping duplicates.
// The result keeps first-seen order but callers must not rely on it.
func Merge(lists [][]string) []string {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	seen := make(map[string]struct{}, n)
	out := make([]string, 0, n)
	for _, l := range lists {
		for _, sku := range l {
			if _, ok := seen[sku]; ok {
				continue
			}
			seen[sku] = struct{}{}
			out = append(out, sku)
		}
	}
	return out
}
