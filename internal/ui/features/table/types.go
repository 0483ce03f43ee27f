package table

// SearchSignals are the signals posted by the search box.
type SearchSignals struct {
	Query string `json:"query"`
}
