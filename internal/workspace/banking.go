package workspace

import (
	"fmt"

	"github.com/credit-eval/cet-console/internal/model"
)

// Empty-state captions of the banking tab.
const (
	NoTransactionsMessage   = "No recent transactions to display"
	NoPaymentHistoryMessage = "No payment history to display"
)

// BankingView is the read-only banking and bureau summary of a case.
type BankingView struct {
	BankName         string
	AccountNumber    string
	AverageBalance   string
	CreditScore      string
	CreditBand       string
	CreditTone       model.Tone
	OutstandingLoans string
	ReportDate       string
}

// NewBankingView renders the case's bank relationship. The account number
// keeps only its last four digits.
func NewBankingView(c model.Case) BankingView {
	b := c.Details.Banking
	bu := c.Details.Bureau
	return BankingView{
		BankName:         b.BankName,
		AccountNumber:    model.MaskAccount(b.AccountNumber),
		AverageBalance:   model.FormatINR(b.AverageBalance),
		CreditScore:      fmt.Sprintf("%d", bu.CreditScore),
		CreditBand:       model.CreditBand(bu.CreditScore),
		CreditTone:       model.CreditTone(bu.CreditScore),
		OutstandingLoans: fmt.Sprintf("%d", bu.OutstandingLoans),
		ReportDate:       model.FormatDate(bu.ReportDate),
	}
}

// TransactionsMessage is always shown in place of the transaction list.
func (BankingView) TransactionsMessage() string { return NoTransactionsMessage }

// PaymentHistoryMessage is always shown in place of the payment history.
func (BankingView) PaymentHistoryMessage() string { return NoPaymentHistoryMessage }
