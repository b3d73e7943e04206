package types

// PricePoint is one daily close in a chronologically sorted series.
// Time is formatted YYYY-MM-DD to match the charting frontend.
type PricePoint struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

// ShockCandidate is a short-window cumulative price move large enough to
// warrant news attribution. StartDate/EndDate bound the pivot by one day
// on each side.
type ShockCandidate struct {
	Date      string  `json:"date"`
	Change    float64 `json:"change"` // signed percent, rounded to 2dp
	Value     float64 `json:"value"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
}

// ShockEvent is a candidate that survived deduplication, paired with its
// relevance-ranked news items.
type ShockEvent struct {
	ShockCandidate
	News []NewsItem `json:"news"`
}

type NewsItem struct {
	Title          string  `json:"title"`
	Source         string  `json:"source"`
	URL            string  `json:"url"`
	PublishedAt    string  `json:"date"`
	RelevanceScore float64 `json:"relevance_score"`
}

// ShockAnalysis is the classifier verdict for a single shock event.
type ShockAnalysis struct {
	IsRelevant bool   `json:"is_relevant"`
	Headline   string `json:"headline"`
	Summary    string `json:"summary"`
	Sentiment  string `json:"sentiment"`
}

// Marker is the final chart annotation for an accepted shock event.
type Marker struct {
	Time     string `json:"time"`
	Text     string `json:"text"`
	Label    string `json:"label"`
	Color    string `json:"color"`
	Shape    string `json:"shape"`
	Position string `json:"position"`
	Headline string `json:"headline"`
}

// MajorEvent is an AI-summarized significant event from recent news,
// decorated for chart display.
type MajorEvent struct {
	Time      string `json:"time"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Sentiment string `json:"sentiment"`
	Color     string `json:"color,omitempty"`
	Shape     string `json:"shape,omitempty"`
	Position  string `json:"position,omitempty"`
}

type SearchResult struct {
	Ticker   string `json:"ticker"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
}

type SearchPage struct {
	Results []SearchResult `json:"results"`
	Total   int            `json:"total"`
	Offset  int            `json:"offset"`
	Limit   int            `json:"limit"`
}

// SectorMetric is one entry of a sector-specific stat template.
type SectorMetric struct {
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
	Format string  `json:"format"` // number, percent or currency
}

type SectorStats struct {
	Template string         `json:"template"`
	Metrics  []SectorMetric `json:"metrics"`
}

type HistoricalRatios struct {
	Year string  `json:"year"`
	PE   float64 `json:"pe"`
	PS   float64 `json:"ps"`
	PB   float64 `json:"pb"`
}

type ValuationMultiples struct {
	PE            float64  `json:"pe"`
	ForwardPE     float64  `json:"forwardPe"`
	EVToEBITDA    float64  `json:"evToEbitda"`
	PriceToBook   float64  `json:"priceToBook"`
	PS            float64  `json:"ps"`
	EarningsYield *float64 `json:"earningsYield"`
	Sector        string   `json:"sector"`
	Industry      string   `json:"industry"`
}

type PeerMetrics struct {
	Ticker  string             `json:"ticker"`
	Metrics ValuationMultiples `json:"metrics"`
}

// Narrative is the AI research report with a deterministic fallback shape.
type Narrative struct {
	CompanyDescription string `json:"companyDescription"`
	ValuationStory     string `json:"valuationStory"`
	KeyDrivers         string `json:"keyDrivers"`
	RiskFactors        string `json:"riskFactors"`
}
