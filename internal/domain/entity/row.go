package entity

// PositionRow is the raw shape of a row in the backing store's
// "positions" collection. Numeric columns are declared as `any` because
// the store may deliver them as JSON numbers, strings, or nulls; the
// mapper coerces every one of them defensively, degrading bad values to
// zero instead of rejecting the row.
type PositionRow struct {
	ID            any    `json:"id"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Network       string `json:"network"`
	Address       string `json:"address"`
	AvatarURL     string `json:"avatar_url"`
	ChartURL      string `json:"chart_url"`
	PriceUSD      any    `json:"price_usd"`
	EntryPrice    any    `json:"entry_price"`
	Quantity      any    `json:"quantity"`
	InvestedUSD   any    `json:"invested_usd"`
	PortfolioName string `json:"portfolio_name"`
	Sparkline     any    `json:"sparkline"`
}
