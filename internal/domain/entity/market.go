package entity

// SentimentIndex is one reading of the market-sentiment feed.
type SentimentIndex struct {
	Value          int    `json:"value"`
	Classification string `json:"classification"`
}

// GasPrice is the gas-price widget value in gwei. It is a locally
// generated placeholder, not a real feed.
type GasPrice struct {
	Gwei int `json:"gwei"`
}
