// Package models defines the entity shapes served by folio-server.
// Field names mirror the backend's JSON contract exactly.
//
// Calendar dates (transaction_date, price_date, open_date) travel as
// "YYYY-MM-DD" strings and are treated as opaque sortable keys throughout;
// they are never converted through time.Time, so no timezone ambiguity can
// creep into date comparisons or chart axes.
package models

import "time"

// TransactionTypeBuy and TransactionTypeSell are the backend's transaction
// type codes.
const (
	TransactionTypeBuy  = "B"
	TransactionTypeSell = "S"
)

// User is a portal user account.
type User struct {
	UserID        int        `json:"user_id"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Email         string     `json:"email,omitempty"`
	IsAdmin       bool       `json:"is_admin"`
	CreatedTS     *time.Time `json:"created_ts,omitempty"`
	LastUpdatedTS *time.Time `json:"last_updated_ts,omitempty"`
}

// Security is a tradeable instrument.
type Security struct {
	SecurityID       int    `json:"security_id"`
	Ticker           string `json:"ticker"`
	Name             string `json:"name"`
	CompanyName      string `json:"company_name"`
	SecurityCurrency string `json:"security_currency"`
	IsPrivate        bool   `json:"is_private"`
}

// Portfolio groups transactions for one user.
type Portfolio struct {
	PortfolioID int     `json:"portfolio_id"`
	UserID      int     `json:"user_id"`
	Name        string  `json:"name"`
	OpenDate    string  `json:"open_date"`
	CloseDate   *string `json:"close_date,omitempty"`
}

// ExternalPlatform is a trading or pricing venue.
type ExternalPlatform struct {
	ExternalPlatformID int    `json:"external_platform_id"`
	Name               string `json:"name"`
	PlatformType       string `json:"platform_type"`
}

// Transaction is a single buy or sell record.
//
// TransactionQty, TransactionPrice and TotalInvAmt are pointers because a
// duplicate candidate may legitimately carry no value for them until the
// user (or a price lookup) fills them in. TotalInvAmt is derived:
// round(qty*price, 2), recomputed whenever both factors are present.
type Transaction struct {
	TransactionID      int      `json:"transaction_id"`
	PortfolioID        int      `json:"portfolio_id"`
	SecurityID         int      `json:"security_id"`
	ExternalPlatformID int      `json:"external_platform_id"`
	TransactionDate    string   `json:"transaction_date"`
	TransactionType    string   `json:"transaction_type"`
	TransactionQty     *float64 `json:"transaction_qty"`
	TransactionPrice   *float64 `json:"transaction_price"`
	TotalInvAmt        *float64 `json:"total_inv_amt"`

	TransactionFee            float64 `json:"transaction_fee"`
	TransactionFeePercent     float64 `json:"transaction_fee_percent"`
	ManagementFee             float64 `json:"management_fee"`
	ManagementFeePercent      float64 `json:"management_fee_percent"`
	ExternalManagerFee        float64 `json:"external_manager_fee"`
	ExternalManagerFeePercent float64 `json:"external_manager_fee_percent"`
	CarryFee                  float64 `json:"carry_fee"`
	CarryFeePercent           float64 `json:"carry_fee_percent"`

	RelTransactionID *int `json:"rel_transaction_id,omitempty"`
}

// TransactionFullView is the denormalised row served by GET /transactions,
// with reference names joined in and server-computed totals.
type TransactionFullView struct {
	Transaction

	PortfolioName  string   `json:"portfolio_name,omitempty"`
	SecurityTicker string   `json:"security_ticker,omitempty"`
	SecurityName   string   `json:"security_name,omitempty"`
	GrossAmount    *float64 `json:"gross_amount,omitempty"`
	TotalFee       *float64 `json:"total_fee,omitempty"`
	NetAmount      *float64 `json:"net_amount,omitempty"`

	// Duplicated is portal-computed: true when another transaction links
	// back to this row via rel_transaction_id. Such rows are not offered
	// for duplication again.
	Duplicated bool `json:"duplicated"`
}

// SecurityPrice is one price observation for a security.
type SecurityPrice struct {
	SecurityPriceID int      `json:"security_price_id"`
	SecurityID      int      `json:"security_id"`
	PriceSourceID   int      `json:"price_source_id"`
	PriceDate       string   `json:"price_date"`
	Price           float64  `json:"price"`
	OpenPx          *float64 `json:"open_px,omitempty"`
	HighPx          *float64 `json:"high_px,omitempty"`
	LowPx           *float64 `json:"low_px,omitempty"`
	ClosePx         *float64 `json:"close_px,omitempty"`
	AdjClosePx      *float64 `json:"adj_close_px,omitempty"`
	Volume          *float64 `json:"volume,omitempty"`
	MarketCap       float64  `json:"market_cap"`
	AddlNotes       string   `json:"addl_notes,omitempty"`
	PriceCurrency   string   `json:"price_currency"`
}

// Holding is a backend-computed daily position snapshot. Read-only to the
// portal; never mutated client-side.
type Holding struct {
	HoldingID          int     `json:"holding_id"`
	HoldingDt          string  `json:"holding_dt"`
	PortfolioID        int     `json:"portfolio_id"`
	SecurityID         int     `json:"security_id"`
	Quantity           float64 `json:"quantity"`
	Price              float64 `json:"price"`
	AvgPrice           float64 `json:"avg_price"`
	MarketValue        float64 `json:"market_value"`
	HoldingCostAmt     float64 `json:"holding_cost_amt"`
	UnrealGainLossAmt  float64 `json:"unreal_gain_loss_amt"`
	UnrealGainLossPerc float64 `json:"unreal_gain_loss_perc"`
	SecurityPriceDt    *string `json:"security_price_dt,omitempty"`
}

// TransactionType is a code/label pair for the transaction type dropdown.
type TransactionType struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// TransactionFormData is the reference data bundle served by
// GET /transactions/form-data.
type TransactionFormData struct {
	Portfolios        []Portfolio        `json:"portfolios"`
	Securities        []Security         `json:"securities"`
	ExternalPlatforms []ExternalPlatform `json:"external_platforms"`
	TransactionTypes  []TransactionType  `json:"transaction_types"`
}
