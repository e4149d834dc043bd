package entity

// Portfolio is a named group of Positions. ID is the slug of the name
// (lower-cased, whitespace collapsed to hyphens). The full set of
// Portfolios is always a partition of the mapped Positions by
// PortfolioName, sorted lexicographically by name.
type Portfolio struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Positions []Position `json:"positions"`
}

// PortfolioSummary is the selector payload: a portfolio without its
// positions, carrying only the count.
type PortfolioSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	PositionCount int    `json:"positionCount"`
}
