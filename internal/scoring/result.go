package scoring

// Decision is the outcome of scoring an application.
type Decision string

const (
	Approve Decision = "APPROVE"
	Refer   Decision = "REFER"
	Decline Decision = "DECLINE"
)

// rank orders decisions from worst to best.
func (d Decision) rank() int {
	switch d {
	case Approve:
		return 2
	case Refer:
		return 1
	default:
		return 0
	}
}

// RiskLevel is the headline risk attached to a decision.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskVeryHigh RiskLevel = "Very High"
)

// Item is one named contribution to a score.
type Item struct {
	Name   string
	Points float64
}

// Component is one weighted part of the score.
type Component struct {
	Name  string
	Score float64
	Max   float64
	Items []Item
}

// Breakdown explains how the total score was reached.
type Breakdown struct {
	Affordability  Component
	IncomeQuality  Component
	AccountConduct Component
	RiskIndicators Component
	Adjustments    []Item
	Total          float64
}

// Components returns the four components in presentation order.
func (b Breakdown) Components() []Component {
	return []Component{b.Affordability, b.IncomeQuality, b.AccountConduct, b.RiskIndicators}
}

// Offer is the loan the applicant is approved for.
type Offer struct {
	Amount           float64
	Term             int
	MonthlyRepayment float64
	TotalRepayable   float64
	APR              float64
	DailyRatePercent float64
}

// Result is the scoring outcome for one application.
type Result struct {
	ApplicationID      string
	Decision           Decision
	Score              float64
	RiskLevel          RiskLevel
	Breakdown          *Breakdown // nil when a hard rule declined the application
	Offer              *Offer     // set only for APPROVE
	DeclineReasons     []string
	ReferralReasons    []string
	RiskFlags          []string
	Notes              []string
	MonthlyIncome      float64
	MonthlyExpenses    float64
	MonthlyDisposable  float64
	PostLoanDisposable float64
}
