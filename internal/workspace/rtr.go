package workspace

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const rtrRows = 40

var highValueLimit = decimal.NewFromInt(100000)

var (
	LoanTypes      = plainOptions("Personal", "Home", "Auto", "Business", "Education")
	SupportedBanks = []string{"HDFC Bank", "SBI", "Axis Bank", "ICICI Bank", "Kotak"}

	nonNumeric = regexp.MustCompile(`[^0-9.-]`)
)

// BankConnectMessage acknowledges the Connect+ bank statement action.
const BankConnectMessage = "Processing bank statements..."

// RTRRow is one prior loan in the repayment track record.
type RTRRow struct {
	Loan           string
	Type           string
	MonthsPaid     string
	Tenure         string
	CurrentBalance string
	EMI            string
	Lender         string
	Bank           string
	LastPaid       string
}

// RTRField names an editable RTR column.
type RTRField int

const (
	FieldType RTRField = iota
	FieldMonthsPaid
	FieldTenure
	FieldCurrentBalance
	FieldEMI
	FieldLender
	FieldBank
	FieldLastPaid
)

// filled reports whether any tracked column has been entered.
func (r RTRRow) filled() bool {
	return r.Type != "" || r.MonthsPaid != "" || r.Tenure != "" || r.CurrentBalance != "" || r.EMI != ""
}

func (r RTRRow) completed() bool {
	if r.MonthsPaid == "" || r.Tenure == "" {
		return false
	}
	paid, err1 := strconv.ParseFloat(strings.TrimSpace(r.MonthsPaid), 64)
	tenure, err2 := strconv.ParseFloat(strings.TrimSpace(r.Tenure), 64)
	return err1 == nil && err2 == nil && paid >= tenure
}

// balance parses the current balance ignoring currency symbols and grouping.
func (r RTRRow) balance() (decimal.Decimal, bool) {
	v, err := decimal.NewFromString(nonNumeric.ReplaceAllString(r.CurrentBalance, ""))
	return v, err == nil
}

// RTRStats are the figures derived from the grid on every render.
type RTRStats struct {
	TotalLoans     int
	Completed      int
	Active         int
	HighValue      int
	ActivePercent  string
	AverageBalance decimal.Decimal
	HealthStars    int
	OnTimeStars    int
	OnTimePercent  string
	AverageDelay   string
}

// RTRTab is the fixed forty-row repayment track record grid.
type RTRTab struct {
	rows *Collection[RTRRow]
}

// NewRTRTab returns the grid with rows "Loan 1".."Loan 40".
func NewRTRTab() *RTRTab {
	seed := make([]RTRRow, rtrRows)
	for i := range seed {
		seed[i].Loan = fmt.Sprintf("Loan %d", i+1)
	}
	return &RTRTab{rows: NewCollection(rtrRows, seed...)}
}

// Rows returns the grid.
func (t *RTRTab) Rows() []Item[RTRRow] { return t.rows.Items() }

// SetField edits one cell of row id.
func (t *RTRTab) SetField(id int, f RTRField, value string) bool {
	if f < FieldType || f > FieldLastPaid {
		return false
	}
	return t.rows.Update(id, func(r *RTRRow) {
		switch f {
		case FieldType:
			r.Type = value
		case FieldMonthsPaid:
			r.MonthsPaid = value
		case FieldTenure:
			r.Tenure = value
		case FieldCurrentBalance:
			r.CurrentBalance = value
		case FieldEMI:
			r.EMI = value
		case FieldLender:
			r.Lender = value
		case FieldBank:
			r.Bank = value
		case FieldLastPaid:
			r.LastPaid = value
		}
	})
}

// Stats derives the summary from the current grid.
func (t *RTRTab) Stats() RTRStats {
	var s RTRStats
	sum := decimal.Zero
	var withBalance int64
	for _, it := range t.rows.Items() {
		r := it.Value
		if r.filled() {
			s.TotalLoans++
			if r.completed() {
				s.Completed++
			}
		}
		if r.CurrentBalance != "" {
			withBalance++
			if v, ok := r.balance(); ok {
				sum = sum.Add(v)
				if v.GreaterThan(highValueLimit) {
					s.HighValue++
				}
			}
		}
	}
	s.Active = s.TotalLoans - s.Completed

	s.ActivePercent = "0"
	if s.TotalLoans > 0 {
		s.ActivePercent = strconv.FormatFloat(float64(s.Active)/float64(s.TotalLoans)*100, 'f', 1, 64)
	}
	if withBalance == 0 {
		withBalance = 1
	}
	s.AverageBalance = sum.Div(decimal.NewFromInt(withBalance))

	total := s.TotalLoans
	if total == 0 {
		total = 1
	}
	s.HealthStars = int(math.Round(float64(s.Completed) / float64(total) * 5))
	s.OnTimePercent = "0%"
	s.AverageDelay = "0 days"
	return s
}

// ConnectBanks acknowledges the bank statement connection dialog.
func (t *RTRTab) ConnectBanks() string { return BankConnectMessage }
