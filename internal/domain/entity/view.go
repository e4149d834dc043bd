package entity

// SortKey identifies the Position field a view is ordered by. SortKeyToken
// is special-cased by the pipeline: it compares the token's symbol rather
// than the Position itself.
type SortKey string

const (
	SortKeyToken      SortKey = "token"
	SortKeyPrice      SortKey = "price"
	SortKeyQuantity   SortKey = "quantity"
	SortKeyInvested   SortKey = "invested"
	SortKeyValue      SortKey = "value"
	SortKeyBuyPrice   SortKey = "buyPrice"
	SortKeyPnLPercent SortKey = "pnlPercent"
)

// SortDirection is the ordering direction of a view.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ViewMode selects between the table and the card grid rendering.
type ViewMode string

const (
	ViewModeList ViewMode = "list"
	ViewModeGrid ViewMode = "grid"
)

// ViewState is the session-scoped, non-persisted state of one dashboard
// view. It is treated as an immutable record: every mutation produces the
// next state, and the derived view is recomputed from scratch.
type ViewState struct {
	PortfolioID  string        `json:"portfolioId"`
	Search       string        `json:"search"`
	SortKey      SortKey       `json:"sortKey"`
	SortDir      SortDirection `json:"sortDir"`
	VisibleCount int           `json:"visibleCount"`
	PrivacyMode  bool          `json:"privacyMode"`
	ViewMode     ViewMode      `json:"viewMode"`
	OpenMenuID   string        `json:"openMenuId,omitempty"`
}

// Totals are the summary-card aggregates, computed over the filtered set
// (not the paginated slice).
type Totals struct {
	Invested   float64 `json:"invested"`
	Value      float64 `json:"value"`
	PnL        float64 `json:"pnl"`
	PnLPercent float64 `json:"pnlPercent"`
}

// DerivedView is the output of the filter -> sort -> paginate pipeline for
// one ViewState snapshot.
type DerivedView struct {
	PortfolioID   string     `json:"portfolioId"`
	PortfolioName string     `json:"portfolioName"`
	Positions     []Position `json:"positions"`
	FilteredCount int        `json:"filteredCount"`
	TotalCount    int        `json:"totalCount"`
	Totals        Totals     `json:"totals"`
	State         ViewState  `json:"state"`
}
