package metrics

// AgeBand is a life-stage category.
type AgeBand string

const (
	BandChild      AgeBand = "child"
	BandTeenager   AgeBand = "teenager"
	BandYouth      AgeBand = "youth"
	BandAdult      AgeBand = "adult"
	BandMiddleAged AgeBand = "middle_aged"
	BandSenior     AgeBand = "senior"
)

// AgeBands lists the bands from youngest to oldest.
var AgeBands = []AgeBand{BandChild, BandTeenager, BandYouth, BandAdult, BandMiddleAged, BandSenior}

type ageRange struct {
	band     AgeBand
	min, max int
}

// ageRanges are inclusive on both ends; max < 0 means open-ended.
var ageRanges = []ageRange{
	{BandChild, 0, 12},
	{BandTeenager, 13, 17},
	{BandYouth, 18, 29},
	{BandAdult, 30, 59},
	{BandMiddleAged, 60, 74},
	{BandSenior, 75, -1},
}

// Classify maps an age to its band. A missing or negative age is not
// classified.
func Classify(age *int) (AgeBand, bool) {
	if age == nil || *age < 0 {
		return "", false
	}
	for _, r := range ageRanges {
		if *age >= r.min && (r.max < 0 || *age <= r.max) {
			return r.band, true
		}
	}
	return "", false
}

// AgeBandCounts holds one counter per band.
type AgeBandCounts struct {
	Child      int `json:"child"`
	Teenager   int `json:"teenager"`
	Youth      int `json:"youth"`
	Adult      int `json:"adult"`
	MiddleAged int `json:"middle_aged"`
	Senior     int `json:"senior"`
}

func (c *AgeBandCounts) add(band AgeBand) {
	switch band {
	case BandChild:
		c.Child++
	case BandTeenager:
		c.Teenager++
	case BandYouth:
		c.Youth++
	case BandAdult:
		c.Adult++
	case BandMiddleAged:
		c.MiddleAged++
	case BandSenior:
		c.Senior++
	}
}

// Of returns the counter of a band.
func (c AgeBandCounts) Of(band AgeBand) int {
	switch band {
	case BandChild:
		return c.Child
	case BandTeenager:
		return c.Teenager
	case BandYouth:
		return c.Youth
	case BandAdult:
		return c.Adult
	case BandMiddleAged:
		return c.MiddleAged
	case BandSenior:
		return c.Senior
	}
	return 0
}
