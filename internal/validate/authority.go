// Package validate grades the sources cited with a fact-check verdict.
package validate

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/ppiankov/claimify/internal/model"
)

// Classifier assigns sources to authority tiers.
type Classifier struct {
	domainMap    map[string]model.SourceTier
	primary      []string
	secondary    []string
	pathPatterns []compiledPattern
}

type compiledPattern struct {
	pattern *regexp.Regexp
	tier    model.SourceTier
}

// NewClassifier builds a classifier. A nil cfg uses the default source lists.
// Invalid path patterns are skipped.
func NewClassifier(cfg *model.SourcesConfig) *Classifier {
	if cfg == nil {
		def := model.DefaultConfig().Sources
		cfg = &def
	}

	c := &Classifier{domainMap: make(map[string]model.SourceTier, len(cfg.DomainMap))}
	for host, tier := range cfg.DomainMap {
		c.domainMap[normalizeHost(host)] = ParseTier(tier)
	}
	for _, d := range cfg.PrimaryDomains {
		c.primary = append(c.primary, normalizeHost(d))
	}
	for _, d := range cfg.SecondaryDomains {
		c.secondary = append(c.secondary, normalizeHost(d))
	}
	for _, p := range cfg.PathPatterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			continue
		}
		c.pathPatterns = append(c.pathPatterns, compiledPattern{pattern: re, tier: ParseTier(p.Tier)})
	}
	return c
}

// Classify returns the tier of a URL. Unparseable URLs are tertiary.
func (c *Classifier) Classify(rawURL string) model.SourceTier {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Host == "" {
		return model.TierTertiary
	}
	host := normalizeHost(parsed.Hostname())

	if tier, ok := c.domainMap[host]; ok {
		return tier
	}
	if matchesDomain(host, c.primary) {
		return model.TierPrimary
	}
	if matchesDomain(host, c.secondary) {
		return model.TierSecondary
	}
	for _, cp := range c.pathPatterns {
		if cp.pattern.MatchString(parsed.Path) {
			return cp.tier
		}
	}

	// Government and academic suffixes
	switch {
	case strings.HasSuffix(host, ".gov"), strings.HasSuffix(host, ".edu"),
		strings.Contains(host, ".gov."), strings.HasSuffix(host, ".ac.uk"), strings.Contains(host, ".edu."):
		return model.TierPrimary
	}
	return model.TierTertiary
}

// Rank returns a copy of cits with every tier set, ordered primary first.
// Citations of the same tier keep their order.
func (c *Classifier) Rank(cits []model.Citation) []model.Citation {
	if len(cits) == 0 {
		return cits
	}
	out := make([]model.Citation, len(cits))
	for i, cit := range cits {
		cit.Tier = c.Classify(cit.URL)
		out[i] = cit
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Tier < out[j].Tier })
	return out
}

// ParseTier converts a tier name or number to a SourceTier.
func ParseTier(tier string) model.SourceTier {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case "primary", "1":
		return model.TierPrimary
	case "secondary", "2":
		return model.TierSecondary
	default:
		return model.TierTertiary
	}
}

func matchesDomain(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func normalizeHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(host)), "www.")
}
