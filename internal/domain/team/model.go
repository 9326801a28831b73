package team

import "fmt"

// Team is a club as reported by the upstream source. ExternalID is the
// provider-assigned id and the only identity the pipeline keys on.
type Team struct {
	ExternalID int64
	Name       string
	ShortName  string
	TLA        string
}

func (t Team) Validate() error {
	if t.ExternalID <= 0 {
		return fmt.Errorf("team external id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}
