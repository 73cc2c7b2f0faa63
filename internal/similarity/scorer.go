package similarity

import (
	"net/url"
	"strings"

	"github.com/scholarsift/scholarsift/internal/types"
)

// Completeness returns the fraction of the canonical 8-field set that
// holds a non-empty value for the record, in [0,1].
func Completeness(r *types.ScholarshipRecord) float64 {
	filled := 0
	for _, f := range types.CanonicalFields {
		if strings.TrimSpace(r.Field(f)) != "" {
			filled++
		}
	}
	return float64(filled) / float64(len(types.CanonicalFields))
}

// AuthorityList is the allow-list of authoritative domain suffixes and
// names. A record whose link host or source matches any entry is
// considered authoritative; the merge policy uses this only as a
// tiebreaker, never as a similarity input.
type AuthorityList []string

// DefaultAuthorityList covers educational and governmental domains plus
// the large scholarship directories scraped listings commonly cite.
func DefaultAuthorityList() AuthorityList {
	return AuthorityList{
		".edu",
		".gov",
		"fastweb.com",
		"scholarships.com",
		"collegeboard.org",
		"scholarshipamerica.org",
		"bold.org",
		"niche.com",
		"unigo.com",
	}
}

// Match reports whether the record's link or source is on the list.
func (l AuthorityList) Match(r *types.ScholarshipRecord) bool {
	if host := linkHost(r.Link); host != "" && l.matchName(host) {
		return true
	}
	if source := strings.ToLower(strings.TrimSpace(r.Source)); source != "" && l.matchName(source) {
		return true
	}
	return false
}

func (l AuthorityList) matchName(name string) bool {
	for _, entry := range l {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		suffix := entry
		if !strings.HasPrefix(suffix, ".") {
			if name == entry {
				return true
			}
			suffix = "." + entry
		}
		if strings.HasSuffix(name, suffix) || name == strings.TrimPrefix(entry, ".") {
			return true
		}
	}
	return false
}

// linkHost extracts the lower-cased host from a link, tolerating URLs
// scraped without a scheme.
func linkHost(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	if !strings.Contains(link, "://") {
		link = "https://" + link
	}
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
