package analytics

// MonthFlow is one month of income vs expenses, newest month first in a
// CashflowResult.
type MonthFlow struct {
	Month    string  `json:"month"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
}

type CashflowResult struct {
	Data        []MonthFlow `json:"data"`
	EvidenceIDs []string    `json:"evidence_ids"`
}

type BurnRateResult struct {
	AvgBurnRate float64  `json:"avg_burn_rate"`
	MinMonth    float64  `json:"min_month"`
	MaxMonth    float64  `json:"max_month"`
	EvidenceIDs []string `json:"evidence_ids"`
}

type NetWorthResult struct {
	Accounts         map[string]float64 `json:"accounts"`
	PortfolioValue   float64            `json:"portfolio_value"`
	TotalAssets      float64            `json:"total_assets"`
	TotalLiabilities float64            `json:"total_liabilities"`
	NetWorth         float64            `json:"net_worth"`
	EvidenceIDs      []string           `json:"evidence_ids"`
}

type Holding struct {
	Symbol        string  `json:"symbol"`
	Shares        float64 `json:"shares"`
	CostBasis     float64 `json:"cost_basis"`
	CurrentPrice  float64 `json:"current_price"`
	MarketValue   float64 `json:"market_value"`
	GainLoss      float64 `json:"gain_loss"`
	AllocationPct float64 `json:"allocation_pct"`
}

type PortfolioResult struct {
	Holdings       []Holding `json:"holdings"`
	TotalValue     float64   `json:"total_value"`
	TotalCost      float64   `json:"total_cost"`
	TotalGainLoss  float64   `json:"total_gain_loss"`
	TotalReturnPct float64   `json:"total_return_pct"`
	EvidenceIDs    []string  `json:"evidence_ids"`
}

type CategoryTotal struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

type CategorySpendResult struct {
	Data        []CategoryTotal `json:"data"`
	EvidenceIDs []string        `json:"evidence_ids"`
}
