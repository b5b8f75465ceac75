package filter

import (
	"regexp"

	"github.com/vburojevic/tdb/internal/domain"
)

// Pipeline applies the pattern, the exclude patterns and the where clauses,
// in that order. A nil Pipeline matches everything.
type Pipeline struct {
	pattern  *regexp.Regexp
	excludes []*regexp.Regexp
	where    *WhereFilter
}

// NewPipeline returns nil when there is nothing to filter on
func NewPipeline(pattern *regexp.Regexp, excludes []*regexp.Regexp, where *WhereFilter) *Pipeline {
	if pattern == nil && len(excludes) == 0 && where == nil {
		return nil
	}
	return &Pipeline{pattern: pattern, excludes: excludes, where: where}
}

// Match reports whether ev passes every filter. Patterns apply to the
// event description.
func (p *Pipeline) Match(ev *domain.EventRecord) bool {
	if p == nil {
		return true
	}
	if p.pattern != nil && !p.pattern.MatchString(ev.Description) {
		return false
	}
	for _, ex := range p.excludes {
		if ex.MatchString(ev.Description) {
			return false
		}
	}
	return p.where.Match(ev)
}
