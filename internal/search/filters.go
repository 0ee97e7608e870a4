package search

import (
	"fmt"

	"medlit/internal/index"
	"medlit/internal/models"
)

// FilterBuilder accumulates payload filter conditions and validates each
// one as it is added. The external index silently matches nothing on
// unknown or non-scalar fields, so invalid filters are rejected here
// instead of producing empty result sets downstream.
type FilterBuilder struct {
	conds []index.Condition
	err   error
}

// NewFilterBuilder creates an empty filter builder.
func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{}
}

// Source restricts results to documents from one source corpus.
func (b *FilterBuilder) Source(source string) *FilterBuilder {
	if b.err != nil {
		return b
	}
	if source == "" {
		b.err = fmt.Errorf("source filter must not be empty")
		return b
	}
	b.conds = append(b.conds, index.Condition{Field: index.FieldSource, Keyword: source})
	return b
}

// Section restricts results to one canonical abstract section.
func (b *FilterBuilder) Section(section string) *FilterBuilder {
	if b.err != nil {
		return b
	}
	if !models.IsCanonicalSection(section) {
		b.err = fmt.Errorf("unknown section %q", section)
		return b
	}
	b.conds = append(b.conds, index.Condition{Field: index.FieldSection, Keyword: section})
	return b
}

// YearRange restricts results to publication years in [from, to].
// Either bound may be zero to leave that side open.
func (b *FilterBuilder) YearRange(from, to int) *FilterBuilder {
	if b.err != nil {
		return b
	}
	if from == 0 && to == 0 {
		b.err = fmt.Errorf("year range must have at least one bound")
		return b
	}
	if from != 0 && to != 0 && from > to {
		b.err = fmt.Errorf("year range is inverted: %d > %d", from, to)
		return b
	}
	cond := index.Condition{Field: index.FieldYear}
	if from != 0 {
		min := float64(from)
		cond.Min = &min
	}
	if to != 0 {
		max := float64(to)
		cond.Max = &max
	}
	b.conds = append(b.conds, cond)
	return b
}

// MinQuality restricts results to documents with at least the given
// quality score.
func (b *FilterBuilder) MinQuality(min float64) *FilterBuilder {
	if b.err != nil {
		return b
	}
	if min < 0 {
		b.err = fmt.Errorf("minimum quality must not be negative")
		return b
	}
	b.conds = append(b.conds, index.Condition{Field: index.FieldQualityTotal, Min: &min})
	return b
}

// TokenRange restricts results to chunks whose token count lies in
// [min, max]. Either bound may be zero to leave that side open.
func (b *FilterBuilder) TokenRange(min, max int) *FilterBuilder {
	if b.err != nil {
		return b
	}
	if min == 0 && max == 0 {
		b.err = fmt.Errorf("token range must have at least one bound")
		return b
	}
	if min != 0 && max != 0 && min > max {
		b.err = fmt.Errorf("token range is inverted: %d > %d", min, max)
		return b
	}
	cond := index.Condition{Field: index.FieldTokens}
	if min != 0 {
		lo := float64(min)
		cond.Min = &lo
	}
	if max != 0 {
		hi := float64(max)
		cond.Max = &hi
	}
	b.conds = append(b.conds, cond)
	return b
}

// Field adds an exact-match condition on an arbitrary payload field.
// Only scalar payload fields are filterable; nested metadata is not.
func (b *FilterBuilder) Field(field, keyword string) *FilterBuilder {
	if b.err != nil {
		return b
	}
	if !index.ScalarFields[field] {
		b.err = fmt.Errorf("field %q is not filterable", field)
		return b
	}
	if keyword == "" {
		b.err = fmt.Errorf("filter value for %q must not be empty", field)
		return b
	}
	b.conds = append(b.conds, index.Condition{Field: field, Keyword: keyword})
	return b
}

// Build returns the accumulated conditions, or the first validation
// error encountered.
func (b *FilterBuilder) Build() ([]index.Condition, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.conds, nil
}
