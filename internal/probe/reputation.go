package probe

import (
	"context"
	"errors"

	"site-checker/internal/domain"
	"site-checker/internal/safebrowsing"
)

// Reputation looks the full URL up in the threat lists.
type Reputation struct {
	lookup safebrowsing.Lookup
}

func NewReputation(lookup safebrowsing.Lookup) *Reputation {
	return &Reputation{lookup: lookup}
}

func (r *Reputation) Name() domain.ProbeName {
	return domain.ProbeReputation
}

func (r *Reputation) Check(ctx context.Context, target domain.Target) (domain.ReputationVerdict, error) {
	matches, err := r.lookup.Find(ctx, target.Raw)
	if err != nil {
		var upstream *safebrowsing.UpstreamError
		switch {
		case errors.Is(err, safebrowsing.ErrNotConfigured):
			return domain.ReputationVerdict{}, NewError(domain.KindUpstreamAPI, "reputation service is not configured", err)
		case errors.As(err, &upstream):
			return domain.ReputationVerdict{}, NewError(domain.KindUpstreamAPI, upstream.Error(), err)
		}
		return domain.ReputationVerdict{}, Classify(err)
	}

	verdict := domain.ReputationVerdict{
		Flagged: len(matches) > 0,
		Matches: make([]domain.ThreatMatch, 0, len(matches)),
	}
	for _, m := range matches {
		verdict.Matches = append(verdict.Matches, domain.ThreatMatch{
			ThreatType:   m.ThreatType,
			PlatformType: m.PlatformType,
			URL:          m.Threat.URL,
		})
	}
	return verdict, nil
}
