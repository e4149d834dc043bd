package entity

// Position represents a single token holding within a portfolio.
// Value and PnLPercent are derived at mapping time and never mutated
// afterwards; the only way a Position changes is an explicit delete
// followed by a full re-fetch.
type Position struct {
	ID            string    `json:"id"`
	Token         Token     `json:"token"`
	Price         float64   `json:"price"`
	Quantity      float64   `json:"quantity"`
	Invested      float64   `json:"invested"`
	Value         float64   `json:"value"`
	BuyPrice      float64   `json:"buyPrice"`
	PnLPercent    float64   `json:"pnlPercent"`
	PortfolioName string    `json:"portfolioName"`
	Sparkline     []float64 `json:"sparkline,omitempty"`
}
