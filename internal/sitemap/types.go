package sitemap

// URLEntry is a single URL record extracted from a sitemap.
type URLEntry struct {
	URL        string `json:"url"`
	LastMod    string `json:"last_modified,omitempty"`
	ChangeFreq string `json:"change_frequency,omitempty"`
	Priority   string `json:"priority,omitempty"`
}

// Result holds the outcome of a harvest across one or more sites.
type Result struct {
	Entries []URLEntry `json:"entries"`
	Errors  []string   `json:"errors,omitempty"`
}
