package models

// RegionStat is one location of the indigenous autism statistics table.
type RegionStat struct {
	Location         string
	Population       int64
	AutismCount      int64
	AutismPercentage float64
}

// RegionTotals sums RegionStat over every location.
type RegionTotals struct {
	Population  int64
	AutismCases int64
}

// ResidentSex holds autism cases among residents split by sex.
type ResidentSex struct {
	Location    string
	MaleCases   int64
	FemaleCases int64
}

type SexTotals struct {
	MaleCases   int64
	FemaleCases int64
}

// StudentRace is the student population and autism cases of one race in
// one location.
type StudentRace struct {
	Location string
	Race     string
	Total    int64
	Autism   int64
}

// RegionImport is everything one import writes. A nil ResidentSex leaves the
// stored resident rows alone.
type RegionImport struct {
	RegionStats []RegionStat
	StudentRace []StudentRace
	ResidentSex []ResidentSex
}
