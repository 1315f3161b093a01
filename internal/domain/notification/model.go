package notification

// Category is the subscriber preference an event is routed by.
type Category string

const (
	CategoryLiveMatch Category = "live_match"
	CategoryResult    Category = "result"
)

type Event struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	MatchID  string   `json:"matchId"`
	Category Category `json:"category"`
}

// DedupKey identifies an event independently of its generated id.
func (e Event) DedupKey() string {
	return e.MatchID + ":" + string(e.Category)
}
