package dependent

// Options tune the two-step create and delete flows.
type Options struct {
	// CompensateOnLinkFailure deletes a freshly created record when the
	// project back-reference cannot be written.
	CompensateOnLinkFailure bool
	// StrictLinking rejects a create whose project already references another
	// existing record of the same kind.
	StrictLinking bool
}
