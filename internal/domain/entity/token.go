package entity

// Token holds the identifying details of a tracked token.
// A Token is immutable once mapped from a backing-store row.
type Token struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	Network   string `json:"network"`
	Address   string `json:"address,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	ChartURL  string `json:"chartUrl,omitempty"`
}
