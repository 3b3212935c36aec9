package pos

import "strings"

// MaxCandidates caps the candidate list shown to the operator. The cap is
// independent of how many items actually match.
const MaxCandidates = 5

// Match filters the snapshot by a query fragment. A candidate is any item
// whose code or name contains the fragment case-insensitively; snapshot
// order is preserved (stable filter, no relevance ranking) and the result
// is truncated to MaxCandidates. An empty fragment yields no candidates.
func Match(snapshot []Item, fragment string) []Item {
	if fragment == "" {
		return nil
	}
	needle := strings.ToLower(fragment)

	var candidates []Item
	for _, it := range snapshot {
		if strings.Contains(strings.ToLower(it.Code), needle) ||
			strings.Contains(strings.ToLower(it.Name), needle) {
			candidates = append(candidates, it)
			if len(candidates) == MaxCandidates {
				break
			}
		}
	}
	return candidates
}
