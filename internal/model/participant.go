package model

// ParticipantID uniquely identifies a participant
type ParticipantID int64

// AppID is a Steam application identifier
type AppID int64

// DefaultRegion is used for store pricing when a participant has no country code
const DefaultRegion = "US"

// Participant is a tracked member of the spending group
type Participant struct {
	ID          ParticipantID `json:"id"`
	Name        string        `json:"name"`
	AvatarURL   *string       `json:"avatar_url"`
	CountryCode *string       `json:"country_code"`
	SteamID     *string       `json:"steam_id"`
	// KnownAppIDs is the last observed snapshot of the Steam library (the sync baseline).
	// It is not derived from purchases.
	KnownAppIDs []AppID `json:"known_appids"`
}

// HasSteam reports whether the participant has a linked Steam account
func (p *Participant) HasSteam() bool {
	return p.SteamID != nil && *p.SteamID != ""
}

// Region returns the store region used to localize prices
func (p *Participant) Region() string {
	if p.CountryCode == nil || *p.CountryCode == "" {
		return DefaultRegion
	}
	return *p.CountryCode
}

// HasBaseline reports whether the library baseline has been established
func (p *Participant) HasBaseline() bool {
	return len(p.KnownAppIDs) > 0
}

// KnownSet returns the baseline as a set
func (p *Participant) KnownSet() map[AppID]struct{} {
	set := make(map[AppID]struct{}, len(p.KnownAppIDs))
	for _, id := range p.KnownAppIDs {
		set[id] = struct{}{}
	}
	return set
}
