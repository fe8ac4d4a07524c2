// Package dedupe finds duplicate citations in a collection and reduces
// each duplicate set to a single canonical record.
package dedupe

import (
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/matsen/refdup/citation"
)

// Config controls how duplicates are detected and which member of a
// duplicate set is kept as canonical. The zero value compares every
// citation against every other with the default title threshold.
type Config struct {
	GroupByYear       bool     // only compare citations from the same publication year
	Parallel          bool     // distribute year buckets across workers
	Workers           int      // worker cap when parallel, 0 means GOMAXPROCS
	SourcePreferences []string // provenance labels that win tie-breaks, earliest first
	TitleThreshold    float64  // minimum title similarity, 0 means DefaultTitleThreshold
}

// Deduplicator runs duplicate detection with a fixed configuration. It
// keeps no state between calls, so one instance may serve concurrent
// callers.
type Deduplicator struct {
	cfg       Config
	threshold float64
	prefRank  map[string]int
}

// New returns a Deduplicator for the given configuration.
func New(cfg Config) *Deduplicator {
	d := &Deduplicator{cfg: cfg, threshold: cfg.TitleThreshold}
	if d.threshold == 0 {
		d.threshold = DefaultTitleThreshold
	}
	d.prefRank = make(map[string]int, len(cfg.SourcePreferences))
	for i, label := range cfg.SourcePreferences {
		if _, ok := d.prefRank[label]; !ok {
			d.prefRank[label] = i
		}
	}
	return d
}

// FindDuplicates groups duplicate citations. Each returned group holds
// the canonical citation and its duplicates; citations that match
// nothing are not reported. The input is never modified.
func (d *Deduplicator) FindDuplicates(citations []citation.Citation) ([]citation.DuplicateGroup, error) {
	return d.FindDuplicatesWithSources(citations, nil)
}

// FindDuplicatesWithSources is FindDuplicates with a provenance label
// per citation. Labels feed the SourcePreferences tie-break when a
// canonical citation is chosen. sources must be nil or match citations
// in length.
func (d *Deduplicator) FindDuplicatesWithSources(citations []citation.Citation, sources []string) ([]citation.DuplicateGroup, error) {
	if sources != nil && len(sources) != len(citations) {
		return nil, citation.ConfigError{
			Message: fmt.Sprintf("%d citations but %d source labels", len(citations), len(sources)),
		}
	}
	if d.threshold < 0 || d.threshold > 1 {
		return nil, citation.ConfigError{
			Message: fmt.Sprintf("title threshold %v outside [0, 1]", d.threshold),
		}
	}
	if len(citations) == 0 {
		return nil, nil
	}

	prep := make([]prepared, len(citations))
	for i := range citations {
		prep[i] = prepare(&citations[i], i)
		if sources != nil {
			prep[i].source = sources[i]
		}
	}

	buckets := d.partition(prep)
	results := make([][]citation.DuplicateGroup, len(buckets))

	if d.cfg.Parallel && len(buckets) > 1 {
		g := new(errgroup.Group)
		g.SetLimit(d.workers())
		for bi, members := range buckets {
			g.Go(func() error {
				results[bi] = d.processBucket(citations, prep, members)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for bi, members := range buckets {
			results[bi] = d.processBucket(citations, prep, members)
		}
	}

	var groups []citation.DuplicateGroup
	for _, r := range results {
		groups = append(groups, r...)
	}
	return groups, nil
}

func (d *Deduplicator) workers() int {
	if d.cfg.Workers > 0 {
		return d.cfg.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// partition splits the input indices into comparison buckets. Without
// GroupByYear everything lands in one bucket. With it, citations are
// bucketed by publication year, the bucket for citations without a year
// first and the rest in ascending year order, so output order does not
// depend on map iteration.
func (d *Deduplicator) partition(prep []prepared) [][]int {
	if !d.cfg.GroupByYear {
		all := make([]int, len(prep))
		for i := range all {
			all[i] = i
		}
		return [][]int{all}
	}

	byYear := make(map[int][]int)
	for i, p := range prep {
		byYear[p.year] = append(byYear[p.year], i)
	}
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	buckets := make([][]int, 0, len(years))
	for _, y := range years {
		buckets = append(buckets, byYear[y])
	}
	return buckets
}

// processBucket compares every pair inside one bucket and unions the
// matches into connected components. Components of size one are
// dropped; the rest become groups ordered by their smallest input
// index, with members kept in input order.
func (d *Deduplicator) processBucket(citations []citation.Citation, prep []prepared, members []int) []citation.DuplicateGroup {
	parent := make([]int, len(members))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		// Keep the smaller index as root so the representative is
		// always the component's earliest citation.
		if rb < ra {
			ra, rb = rb, ra
		}
		parent[rb] = ra
	}

	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			if d.match(&prep[members[i]], &prep[members[j]]) {
				union(i, j)
			}
		}
	}

	components := make(map[int][]int)
	var roots []int
	for i := range members {
		r := find(i)
		if _, ok := components[r]; !ok {
			roots = append(roots, r)
		}
		components[r] = append(components[r], members[i])
	}

	var groups []citation.DuplicateGroup
	for _, r := range roots {
		set := components[r]
		if len(set) < 2 {
			continue
		}
		unique := d.selectUnique(prep, set)
		group := citation.DuplicateGroup{Unique: citations[unique]}
		for _, m := range set {
			if m != unique {
				group.Duplicates = append(group.Duplicates, citations[m])
			}
		}
		groups = append(groups, group)
	}
	return groups
}

// selectUnique picks the canonical citation of a duplicate set. Source
// preference is decisive when any member carries a preferred label;
// among the survivors of each stage a non-empty abstract wins, then a
// non-empty DOI, then the earliest input position.
func (d *Deduplicator) selectUnique(prep []prepared, set []int) int {
	candidates := set

	if len(d.prefRank) > 0 {
		best := -1
		for _, m := range candidates {
			r, ok := d.prefRank[prep[m].source]
			if ok && (best < 0 || r < best) {
				best = r
			}
		}
		if best >= 0 {
			candidates = filterSet(candidates, func(m int) bool {
				r, ok := d.prefRank[prep[m].source]
				return ok && r == best
			})
		}
	}

	if narrowed := filterSet(candidates, func(m int) bool { return prep[m].hasAbstract }); len(narrowed) > 0 {
		candidates = narrowed
	}
	if narrowed := filterSet(candidates, func(m int) bool { return prep[m].hasDOI }); len(narrowed) > 0 {
		candidates = narrowed
	}
	return candidates[0]
}

func filterSet(set []int, keep func(int) bool) []int {
	var out []int
	for _, m := range set {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}
