package bundoc

// QueryOptions represents query options like sort, limit, skip, and field projection
type QueryOptions struct {
	SortField string
	SortDesc  bool
	Limit     int
	Skip      int
	// Fields lists top-level keys for a projection; FindQuery and List do not read it and return whole documents
	Fields []string
}
