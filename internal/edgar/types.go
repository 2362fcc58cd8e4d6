package edgar

// tickerEntry is one record of https://www.sec.gov/files/company_tickers.json.
type tickerEntry struct {
	CIKStr int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// conceptResponse is the companyconcept API payload for one (CIK, tag) pair.
type conceptResponse struct {
	CIK        int                      `json:"cik"`
	Taxonomy   string                   `json:"taxonomy"`
	Tag        string                   `json:"tag"`
	Label      string                   `json:"label"`
	EntityName string                   `json:"entityName"`
	Units      map[string][]conceptFact `json:"units"`
}

// conceptFact is one disclosed value inside a unit series. fy and frame may
// be null/absent for some entries; null decodes as the zero value.
type conceptFact struct {
	End   string  `json:"end"`
	Val   float64 `json:"val"`
	Accn  string  `json:"accn"`
	FY    int     `json:"fy"`
	FP    string  `json:"fp"`
	Form  string  `json:"form"`
	Frame string  `json:"frame"`
}
