package weather

import "fmt"

// LocationQuery is the free-text place name sent to the weather API,
// e.g. "Seattle, WA".
type LocationQuery string

// Snapshot is one fetched weather reading. It is only ever built from a
// fully decoded response.
type Snapshot struct {
	LocationName string  `json:"locationName"`
	TemperatureF float64 `json:"temperatureF"`
	Conditions   string  `json:"conditions"`
	IconID       string  `json:"iconId"`
}

func (s Snapshot) String() string {
	return fmt.Sprintf("%s: %gF and %s", s.LocationName, s.TemperatureF, s.Conditions)
}

// Result is the outcome of a single asynchronous fetch. Exactly one of
// Snapshot (when Err is nil) or Err is meaningful.
type Result struct {
	Snapshot Snapshot
	Err      error
}

// OK reports whether the fetch produced a snapshot.
func (r Result) OK() bool {
	return r.Err == nil
}
