package usecase

import (
	"fmt"
	"sort"
	"strings"
)

// LeagueConfig maps an internal league slug to provider identifiers.
type LeagueConfig struct {
	Slug             string `json:"slug"`
	ProviderLeagueID string `json:"provider_league_id"`
	TournamentID     string `json:"tournament_id,omitempty"`
}

// LeagueCatalog is the fixed set of leagues the sync jobs cover.
type LeagueCatalog struct {
	bySlug map[string]LeagueConfig
	slugs  []string
}

func NewLeagueCatalog(providerIDs, tournamentIDs map[string]string) *LeagueCatalog {
	catalog := &LeagueCatalog{bySlug: make(map[string]LeagueConfig, len(providerIDs))}
	for slug, providerID := range providerIDs {
		slug = strings.TrimSpace(slug)
		providerID = strings.TrimSpace(providerID)
		if slug == "" || providerID == "" {
			continue
		}
		catalog.bySlug[slug] = LeagueConfig{
			Slug:             slug,
			ProviderLeagueID: providerID,
			TournamentID:     strings.TrimSpace(tournamentIDs[slug]),
		}
		catalog.slugs = append(catalog.slugs, slug)
	}
	sort.Strings(catalog.slugs)
	return catalog
}

func (c *LeagueCatalog) Lookup(slug string) (LeagueConfig, error) {
	slug = strings.TrimSpace(slug)
	if c != nil {
		if item, ok := c.bySlug[slug]; ok {
			return item, nil
		}
	}
	return LeagueConfig{}, fmt.Errorf("%w: league=%q has no provider id mapping", ErrUnsupportedLeague, slug)
}

func (c *LeagueCatalog) Slugs() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.slugs...)
}

func (c *LeagueCatalog) List() []LeagueConfig {
	if c == nil {
		return nil
	}
	out := make([]LeagueConfig, 0, len(c.slugs))
	for _, slug := range c.slugs {
		out = append(out, c.bySlug[slug])
	}
	return out
}

// DefaultLeagueIDs is the league table synced when no mapping is configured.
var DefaultLeagueIDs = map[string]string{
	"cblol-brazil": "98767991332355509",
	"lta_sul":      "113475181634818701",
}

// DefaultTournamentIDs are the current split's tournaments for DefaultLeagueIDs, queried for VODs.
// They change every split; TOURNAMENT_ID_MAP overrides them.
var DefaultTournamentIDs = map[string]string{
	"cblol-brazil": "114103277164844275",
	"lta_sul":      "113475452383887518",
}
