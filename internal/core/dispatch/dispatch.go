package dispatch

// نتیجه‌ی پردازش یک توییت در cycle
const (
	ResultPosted  = "posted"
	ResultSkipped = "skipped"
	ResultFailed  = "failed"
	ResultRetried = "retried"
)

type ItemOutcome struct {
	TweetID string `json:"tweet_id"`
	UserID  string `json:"user_id"`
	Result  string `json:"result"`
	Reason  string `json:"reason,omitempty"`
}

// CycleSummary خلاصه‌ی یک اجرای کامل dispatch
type CycleSummary struct {
	Processed int           `json:"processed"`
	Posted    int           `json:"posted"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Retried   int           `json:"retried"`
	Outcomes  []ItemOutcome `json:"results"`
}

func (s *CycleSummary) Add(o ItemOutcome) {
	s.Processed++
	s.Outcomes = append(s.Outcomes, o)
	switch o.Result {
	case ResultPosted:
		s.Posted++
	case ResultSkipped:
		s.Skipped++
	case ResultFailed:
		s.Failed++
	case ResultRetried:
		s.Retried++
	}
}
