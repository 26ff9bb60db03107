package domain

// ScopeKind selects which click events an analytics summary covers.
type ScopeKind int

const (
	ScopeGlobal ScopeKind = iota
	ScopeURL
	ScopeOwner
)

// Scope restricts an analytics query to one URL, one owner, or everything.
type Scope struct {
	Kind ScopeKind
	ID   int64
}

func GlobalScope() Scope           { return Scope{Kind: ScopeGlobal} }
func URLScope(urlID int64) Scope    { return Scope{Kind: ScopeURL, ID: urlID} }
func OwnerScope(userID int64) Scope { return Scope{Kind: ScopeOwner, ID: userID} }

// ReferrerCount is one entry of the top referrers list.
type ReferrerCount struct {
	Referrer string `json:"referrer"`
	Count    int64  `json:"count"`
}

// AnalyticsSummary aggregates click events over a trailing window of days.
// TotalClicks is not windowed, every other counter is.
type AnalyticsSummary struct {
	TotalClicks      int64            `json:"total_clicks"`
	ClicksInRange    int64            `json:"clicks_in_range"`
	UniqueVisitors   int64            `json:"unique_visitors"`
	DateRangeDays    int              `json:"date_range_days"`
	DeviceBreakdown  map[string]int64 `json:"device_breakdown"`
	BrowserBreakdown map[string]int64 `json:"browser_breakdown"`
	TopReferrers     []ReferrerCount  `json:"top_referrers"`
	DailyClicks      map[string]int64 `json:"daily_clicks"`
}
