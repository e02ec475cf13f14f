package observation

// Merge combines two independently declared handler configs. It succeeds
// only when both describe the same observation, returning a config equal
// to both; anything else, including configs of different kinds, fails
// with an IncompatibleObservablesError.
func Merge(a, b Config) (Config, error) {
	if a.Kind() != b.Kind() || !a.Equal(b) {
		err := &IncompatibleObservablesError{A: a, B: b}
		opsf("%v", err)
		return Config{}, err
	}
	return Config{modality: a.modality, width: a.width, height: a.height}, nil
}

// MergeAll deduplicates requested handlers. Configs of the same kind are
// merged pairwise; the result keeps first-seen order, one config per kind.
func MergeAll(cfgs []Config) ([]Config, error) {
	out := make([]Config, 0, len(cfgs))
	index := make(map[Kind]int, len(cfgs))
	for _, c := range cfgs {
		i, seen := index[c.Kind()]
		if !seen {
			index[c.Kind()] = len(out)
			out = append(out, c)
			continue
		}
		merged, err := Merge(out[i], c)
		if err != nil {
			return nil, err
		}
		out[i] = merged
	}
	return out, nil
}
