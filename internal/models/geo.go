package models

// Branch is one physical store location. Distance to a query point is
// computed on demand, never cached on the entity.
type Branch struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Postcode string            `json:"postcode"`
	Lat      float64           `json:"lat"`
	Lon      float64           `json:"lon"`
	Phone    string            `json:"phone,omitempty"`
	Hours    map[string]string `json:"hours,omitempty"` // mon..sun -> "09:00-18:00"
}

// NearestBranch is a branch plus its distance from the query point and a
// confidence marker. LowConfidence is set when the result came from the
// first-branch-overall fallback rather than a real geographic match.
type NearestBranch struct {
	Branch
	DistanceKm    float64 `json:"distance_km,omitempty"`
	LowConfidence bool    `json:"low_confidence,omitempty"`
}
