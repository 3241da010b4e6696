package aggregate

// Symbol is one watch-list entry.
type Symbol struct {
	Symbol string `json:"symbol" mapstructure:"symbol"`
	Name   string `json:"name" mapstructure:"name"`
}

// WatchList is the set of symbols every aggregation queries.
type WatchList struct {
	Indices []Symbol `json:"indices" mapstructure:"indices"`
	Sectors []Symbol `json:"sectors" mapstructure:"sectors"`
}

// DefaultWatchList returns the compiled watch-list: the major US indices and
// the Select Sector SPDR funds.
func DefaultWatchList() WatchList {
	return WatchList{
		Indices: []Symbol{
			{Symbol: "^GSPC", Name: "S&P 500"},
			{Symbol: "^DJI", Name: "Dow Jones"},
			{Symbol: "^IXIC", Name: "NASDAQ"},
			{Symbol: "^RUT", Name: "Russell 2000"},
			{Symbol: "^VIX", Name: "VIX"},
		},
		Sectors: []Symbol{
			{Symbol: "XLK", Name: "Technology"},
			{Symbol: "XLF", Name: "Financials"},
			{Symbol: "XLV", Name: "Health Care"},
			{Symbol: "XLE", Name: "Energy"},
			{Symbol: "XLY", Name: "Consumer Discretionary"},
			{Symbol: "XLP", Name: "Consumer Staples"},
			{Symbol: "XLI", Name: "Industrials"},
			{Symbol: "XLU", Name: "Utilities"},
			{Symbol: "XLB", Name: "Materials"},
			{Symbol: "XLRE", Name: "Real Estate"},
			{Symbol: "XLC", Name: "Communication Services"},
		},
	}
}
