package folio

import (
	"errors"
	"fmt"
	"strings"

	"github.com/folioadmin/folio-portal/internal/models"
	"github.com/shopspring/decimal"
)

// Errors fatal to the duplicate-creation flow. Either aborts before any
// create call reaches the backend.
var (
	ErrReferenceSecurityNotFound = errors.New("reference security not found")
	ErrNoPortfolioAvailable      = errors.New("no portfolio available for the current user")
)

// DuplicateCandidate is a not-yet-submitted duplicate transaction. Warning
// is non-empty on the degraded path where no reference price exists for the
// original's date: quantity and price stay unset and the user must supply
// them before the candidate may be submitted.
type DuplicateCandidate struct {
	Transaction models.Transaction
	Warning     string
}

// Submittable reports whether the candidate carries both quantity and
// price and may be posted to the backend.
func (c DuplicateCandidate) Submittable() bool {
	return finite(c.Transaction.TransactionQty) && finite(c.Transaction.TransactionPrice)
}

// ReferenceSecurity resolves the configured reference ticker against the
// form-data security list. Ticker comparison ignores case and surrounding
// whitespace.
func ReferenceSecurity(securities []models.Security, ticker string) (models.Security, error) {
	want := strings.ToUpper(strings.TrimSpace(ticker))
	for _, s := range securities {
		if strings.ToUpper(strings.TrimSpace(s.Ticker)) == want {
			return s, nil
		}
	}
	return models.Security{}, fmt.Errorf("%w: %s", ErrReferenceSecurityNotFound, want)
}

// DefaultPortfolio picks the first portfolio owned by userID. When the
// user is unknown (userID <= 0) the first portfolio overall is used.
func DefaultPortfolio(portfolios []models.Portfolio, userID int) (models.Portfolio, error) {
	for _, p := range portfolios {
		if userID <= 0 || p.UserID == userID {
			return p, nil
		}
	}
	return models.Portfolio{}, ErrNoPortfolioAvailable
}

// HasBeenDuplicated reports whether some other transaction already links
// back to id via rel_transaction_id. Such transactions are not offered for
// duplication again; the pairing is one-to-one by convention.
func HasBeenDuplicated(txns []models.Transaction, id int) bool {
	for _, t := range txns {
		if t.RelTransactionID != nil && *t.RelTransactionID == id {
			return true
		}
	}
	return false
}

// BuildDuplicate constructs a duplicate of original invested in the
// reference security identified by refTicker: same date and invested
// amount, priced with the reference security's price on that date, linked
// back through rel_transaction_id. All fee fields are zeroed — the
// duplicate is a hypothetical comparison and does not inherit the
// original's fee structure.
//
// pricesOnDate holds the price rows already fetched for the original's
// transaction_date. A missing price row is not an error: the candidate is
// returned with quantity and price unset and a warning for the user.
func BuildDuplicate(
	original models.Transaction,
	form models.TransactionFormData,
	userID int,
	refTicker string,
	pricesOnDate []models.SecurityPrice,
) (DuplicateCandidate, error) {
	ref, err := ReferenceSecurity(form.Securities, refTicker)
	if err != nil {
		return DuplicateCandidate{}, err
	}

	portfolio, err := DefaultPortfolio(form.Portfolios, userID)
	if err != nil {
		return DuplicateCandidate{}, err
	}

	dup := models.Transaction{
		PortfolioID:        portfolio.PortfolioID,
		SecurityID:         ref.SecurityID,
		ExternalPlatformID: original.ExternalPlatformID,
		TransactionDate:    original.TransactionDate,
		TransactionType:    original.TransactionType,
		TotalInvAmt:        original.TotalInvAmt,
		RelTransactionID:   &original.TransactionID,
	}

	cand := DuplicateCandidate{Transaction: dup}

	price, ok := priceFor(pricesOnDate, ref.SecurityID)
	if !ok {
		cand.Warning = fmt.Sprintf("no %s price found for %s; enter quantity and price manually",
			ref.Ticker, original.TransactionDate)
		return cand, nil
	}

	cand.Transaction.TransactionPrice = Float(price)
	if finite(original.TotalInvAmt) && price != 0 {
		qty, _ := decimal.NewFromFloat(*original.TotalInvAmt).
			Div(decimal.NewFromFloat(price)).
			Round(2).
			Float64()
		cand.Transaction.TransactionQty = Float(qty)
	}

	return cand, nil
}

// priceFor finds the price row for securityID, if any.
func priceFor(prices []models.SecurityPrice, securityID int) (float64, bool) {
	for _, p := range prices {
		if p.SecurityID == securityID {
			return p.Price, true
		}
	}
	return 0, false
}
