package query

// Builder assembles a Query step by step. The zero value is not usable; call NewBuilder.
//
// Every setter returns the builder so calls can be chained:
//
//	q, err := query.NewBuilder().
//	    SetLowerBound(start).
//	    SetUpperBound(end).
//	    AddWildcard(query.Substring("timeout", false)).
//	    Build()
type Builder struct {
	lower     int64
	upper     int64
	margin    int64
	wildcards []WildcardQuery
}

// NewBuilder creates a Builder holding the default settings.
func NewBuilder() *Builder {
	b := &Builder{}
	return b.Reset()
}

func (b *Builder) LowerBound() int64        { return b.lower }
func (b *Builder) UpperBound() int64        { return b.upper }
func (b *Builder) TerminationMargin() int64 { return b.margin }

// Wildcards returns a copy of the wildcard queries added so far.
func (b *Builder) Wildcards() []WildcardQuery {
	return append([]WildcardQuery(nil), b.wildcards...)
}

func (b *Builder) SetLowerBound(ts int64) *Builder {
	b.lower = ts
	return b
}

func (b *Builder) SetUpperBound(ts int64) *Builder {
	b.upper = ts
	return b
}

func (b *Builder) SetTerminationMargin(ms int64) *Builder {
	b.margin = ms
	return b
}

func (b *Builder) AddWildcard(w WildcardQuery) *Builder {
	b.wildcards = append(b.wildcards, w)
	return b
}

func (b *Builder) AddWildcards(ws ...WildcardQuery) *Builder {
	b.wildcards = append(b.wildcards, ws...)
	return b
}

func (b *Builder) ResetLowerBound() *Builder {
	b.lower = DefaultLowerBound
	return b
}

func (b *Builder) ResetUpperBound() *Builder {
	b.upper = DefaultUpperBound
	return b
}

func (b *Builder) ResetTerminationMargin() *Builder {
	b.margin = DefaultTerminationMargin
	return b
}

func (b *Builder) ResetWildcards() *Builder {
	b.wildcards = nil
	return b
}

// Reset restores every setting to its default.
func (b *Builder) Reset() *Builder {
	return b.ResetLowerBound().ResetUpperBound().ResetTerminationMargin().ResetWildcards()
}

// Build creates the Query. It fails with errs.ErrInvalidQuery if the lower bound exceeds the
// upper bound or the termination margin is negative.
func (b *Builder) Build() (*Query, error) {
	return New(b.lower, b.upper, b.wildcards, WithTerminationMargin(b.margin))
}
