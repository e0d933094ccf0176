package domain

// MatchMethod identifies which detection pass claimed a duplicate.
type MatchMethod string

// Match methods, in pass order.
const (
	// MethodExactKey marks duplicates sharing a normalized identifier
	// field (e.g. a DOI).
	MethodExactKey MatchMethod = "exact-key"

	// MethodGroupKey marks duplicates sharing a composite key built from
	// normalized comparison fields.
	MethodGroupKey MatchMethod = "group-key"

	// MethodFuzzy marks duplicates found by title/author similarity.
	MethodFuzzy MatchMethod = "fuzzy"
)

// Valid reports whether m is a known match method.
func (m MatchMethod) Valid() bool {
	switch m {
	case MethodExactKey, MethodGroupKey, MethodFuzzy:
		return true
	}
	return false
}

// DuplicateGroup is one equivalence class with more than one member: the
// first-seen Record is the original, the rest are its duplicates, all
// claimed by the same method. A Record appears in at most one group, and
// never both as an original and as a duplicate.
type DuplicateGroup struct {
	Original   Record      `json:"original"`
	Duplicates []Record    `json:"duplicates"`
	Method     MatchMethod `json:"method"`
}

// Size returns the number of duplicate records in the group, excluding
// the original.
func (g DuplicateGroup) Size() int {
	return len(g.Duplicates)
}

// Partition is the engine's output: every input record lands in exactly
// one place, either in Unique (one per equivalence class, first-seen
// order) or inside one DuplicateGroup.
type Partition struct {
	Unique     []Record         `json:"unique"`
	Duplicates []DuplicateGroup `json:"duplicates"`
}

// TotalRecords returns the number of input records accounted for by the
// partition. For any detection run this equals the input batch size.
func (p Partition) TotalRecords() int {
	n := len(p.Unique)
	for _, g := range p.Duplicates {
		n += g.Size()
	}
	return n
}

// DuplicateCount returns the number of records claimed as duplicates.
func (p Partition) DuplicateCount() int {
	n := 0
	for _, g := range p.Duplicates {
		n += g.Size()
	}
	return n
}
