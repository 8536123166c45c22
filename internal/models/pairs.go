package models

// PairLeg describes one side of a linked transaction pair as reported by
// GET /transactions/linked-pairs and the performance-comparison endpoint.
type PairLeg struct {
	TransactionID      int      `json:"transaction_id"`
	SecurityTicker     string   `json:"security_ticker"`
	SecurityName       string   `json:"security_name,omitempty"`
	TransactionDate    string   `json:"transaction_date"`
	TransactionPrice   *float64 `json:"transaction_price,omitempty"`
	Quantity           *float64 `json:"quantity,omitempty"`
	TotalInvAmt        *float64 `json:"total_inv_amt,omitempty"`
	TotalFeesPaid      float64  `json:"total_fees_paid"`
	CurrentValue       *float64 `json:"current_value,omitempty"`
	UnrealizedGainLoss *float64 `json:"unrealized_gain_loss,omitempty"`
	UnrealizedGLPct    *float64 `json:"unrealized_gain_loss_pct,omitempty"`
}

// LinkedPair is an original transaction and its reference-security duplicate.
type LinkedPair struct {
	PairID    string  `json:"pair_id"`
	Original  PairLeg `json:"original"`
	Duplicate PairLeg `json:"duplicate"`
}

// LinkedPairList is the envelope for GET /transactions/linked-pairs.
type LinkedPairList struct {
	Pairs []LinkedPair `json:"pairs"`
}

// PerformancePoint is one dated observation of investment performance,
// expressed as percent gain/loss relative to the invested amount.
type PerformancePoint struct {
	Date        string  `json:"date"`
	Performance float64 `json:"performance"`
	Value       float64 `json:"value,omitempty"`
}

// PairInfo holds both legs' summary figures for the comparison header.
type PairInfo struct {
	Original  PairLeg `json:"original"`
	Duplicate PairLeg `json:"duplicate"`
}

// PerformanceSeries carries one aligned series per pair leg.
type PerformanceSeries struct {
	Original  []PerformancePoint `json:"original"`
	Duplicate []PerformancePoint `json:"duplicate"`
}

// PerformanceComparison is the payload of
// GET /transactions/performance-comparison/{pair_id}.
type PerformanceComparison struct {
	PairInfo        PairInfo          `json:"pair_info"`
	PerformanceData PerformanceSeries `json:"performance_data"`
}
