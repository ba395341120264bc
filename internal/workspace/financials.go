package workspace

import (
	"fmt"
	"time"

	"github.com/credit-eval/cet-console/internal/model"
)

// MaxFiscalColumns caps the year columns of a statement grid.
const MaxFiscalColumns = 6

// StatementType selects the financial statement grid.
type StatementType string

const (
	StatementPL       StatementType = "pnl"
	StatementBalance  StatementType = "balance_sheet"
	StatementCashFlow StatementType = "cash_flow"
	StatementGST      StatementType = "gst"
)

var StatementTypes = []Option{
	{Value: string(StatementPL), Label: "P&L"},
	{Value: string(StatementBalance), Label: "Balance Sheet"},
	{Value: string(StatementCashFlow), Label: "Cash Flow"},
	{Value: string(StatementGST), Label: "GST"},
}

var statementRows = map[StatementType][]string{
	StatementPL: {
		"Revenue", "Cost of Goods Sold", "Gross Profit", "Operating Expenses",
		"Salaries and Wages", "Rent", "Utilities", "Marketing and Advertising",
		"Other Expenses", "EBITDA", "Depreciation and Amortization", "EBIT",
		"Interest Expenses", "Tax", "Net Profit",
	},
	StatementBalance: {
		"Assets", "Current Assets", "Cash and Cash Equivalents", "Accounts Receivable",
		"Inventory", "Prepaid Expenses", "Non-Current Assets",
		"Property, Plant and Equipment", "Intangible Assets", "Investments",
		"Liabilities", "Current Liabilities", "Accounts Payable", "Short-term Loans",
		"Non-Current Liabilities", "Long-term Loans", "Equity", "Share Capital",
		"Retained Earnings",
	},
	StatementCashFlow: {
		"Operating Cash Flow", "Net Income", "Depreciation and Amortization",
		"Changes in Working Capital", "Changes in Accounts Receivable",
		"Changes in Inventory", "Changes in Accounts Payable", "Investing Cash Flow",
		"Purchase of Property, Plant and Equipment", "Sale of Property, Plant and Equipment",
		"Purchase of Investments", "Sale of Investments", "Financing Cash Flow",
		"Proceeds from Issuing Shares", "Proceeds from Long-term Borrowings",
		"Repayment of Long-term Borrowings", "Dividends Paid",
		"Net Increase in Cash and Cash Equivalents",
	},
}

var headerRows = map[string]bool{
	"Revenue": true, "Gross Profit": true, "EBITDA": true, "EBIT": true, "Net Profit": true,
	"Assets": true, "Liabilities": true, "Equity": true,
	"Operating Cash Flow": true, "Investing Cash Flow": true, "Financing Cash Flow": true,
	"Net Increase in Cash and Cash Equivalents": true,
}

// StatementRow is one line of a statement template.
type StatementRow struct {
	Label  string
	Header bool
}

// FiscalYearLabels returns n labels "FY 2025-26" style, newest first.
func FiscalYearLabels(now time.Time, n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		y := now.Year() - i
		out = append(out, fmt.Sprintf("FY %d-%02d", y-1, y%100))
	}
	return out
}

type cellKey struct {
	stmt   StatementType
	row    string
	column string
}

// KPI is one metric of the financials summary strip.
type KPI struct {
	Title string
	Value string
}

// FinancialsTab holds the statement grids and GST filing state.
type FinancialsTab struct {
	c       model.Case
	stmt    StatementType
	years   []string
	columns []string
	cells   map[cellKey]string
	gst     *GSTState
}

// NewFinancialsTab starts on P&L with the two newest fiscal years.
func NewFinancialsTab(c model.Case, now time.Time, fiscalYears int) *FinancialsTab {
	years := FiscalYearLabels(now, fiscalYears)
	cols := years
	if len(cols) > 2 {
		cols = cols[:2]
	}
	return &FinancialsTab{
		c:       c,
		stmt:    StatementPL,
		years:   years,
		columns: append([]string(nil), cols...),
		cells:   map[cellKey]string{},
		gst:     NewGSTState(now),
	}
}

func (t *FinancialsTab) Statement() StatementType { return t.stmt }

// SetStatement switches the visible statement type.
func (t *FinancialsTab) SetStatement(s StatementType) bool {
	if !hasOption(StatementTypes, string(s)) {
		return false
	}
	t.stmt = s
	return true
}

// Rows returns the fixed template of the current statement. GST has none.
func (t *FinancialsTab) Rows() []StatementRow {
	labels := statementRows[t.stmt]
	rows := make([]StatementRow, len(labels))
	for i, l := range labels {
		rows[i] = StatementRow{Label: l, Header: headerRows[l]}
	}
	return rows
}

// FiscalYears returns every selectable column label.
func (t *FinancialsTab) FiscalYears() []string {
	return append([]string(nil), t.years...)
}

// Columns returns the visible fiscal-year columns.
func (t *FinancialsTab) Columns() []string {
	return append([]string(nil), t.columns...)
}

func (t *FinancialsTab) hasColumn(label string) bool {
	for _, c := range t.columns {
		if c == label {
			return true
		}
	}
	return false
}

// CanAddColumn reports whether AddColumn would add a column.
func (t *FinancialsTab) CanAddColumn() bool {
	return len(t.columns) < MaxFiscalColumns && t.nextYear() != ""
}

func (t *FinancialsTab) nextYear() string {
	for _, y := range t.years {
		if !t.hasColumn(y) {
			return y
		}
	}
	return ""
}

// AddColumn appends the newest unused fiscal year. It is a no-op at the cap
// or when every label is in use.
func (t *FinancialsTab) AddColumn() bool {
	if !t.CanAddColumn() {
		return false
	}
	t.columns = append(t.columns, t.nextYear())
	return true
}

// RemoveColumn drops a column and the current statement's cells under it.
// The last column cannot be removed.
func (t *FinancialsTab) RemoveColumn(label string) bool {
	if len(t.columns) <= 1 {
		return false
	}
	for i, c := range t.columns {
		if c != label {
			continue
		}
		t.columns = append(t.columns[:i], t.columns[i+1:]...)
		// other statements keep their cells; they reappear with the label
		for k := range t.cells {
			if k.stmt == t.stmt && k.column == label {
				delete(t.cells, k)
			}
		}
		return true
	}
	return false
}

// RenameColumn relabels a column, carrying its cells. The new label must be a
// fiscal year not used by another column.
func (t *FinancialsTab) RenameColumn(from, to string) bool {
	if from == to {
		return t.hasColumn(from)
	}
	if t.hasColumn(to) || !t.isYear(to) {
		return false
	}
	for i, c := range t.columns {
		if c != from {
			continue
		}
		t.columns[i] = to
		for k, v := range t.cells {
			if k.column == from {
				delete(t.cells, k)
				k.column = to
				t.cells[k] = v
			}
		}
		return true
	}
	return false
}

func (t *FinancialsTab) isYear(label string) bool {
	for _, y := range t.years {
		if y == label {
			return true
		}
	}
	return false
}

// SetCell stores free text for (statement, row, column).
func (t *FinancialsTab) SetCell(s StatementType, row, column, value string) {
	k := cellKey{stmt: s, row: row, column: column}
	if value == "" {
		delete(t.cells, k)
		return
	}
	t.cells[k] = value
}

// Cell returns the text stored for (statement, row, column).
func (t *FinancialsTab) Cell(s StatementType, row, column string) string {
	return t.cells[cellKey{stmt: s, row: row, column: column}]
}

// KPIs returns the summary strip above the grid.
func (t *FinancialsTab) KPIs() []KPI {
	f := t.c.Details.Financials
	return []KPI{
		{Title: "Monthly Income", Value: model.FormatINR(f.MonthlyIncome)},
		{Title: "Monthly Expenses", Value: model.FormatINR(f.MonthlyExpenses)},
		{Title: "Profit Margin", Value: model.FormatPercent(f.ProfitMargin)},
		{Title: "Risk Score", Value: fmt.Sprintf("%d/100", t.c.Details.PDDetails.RiskScore)},
	}
}

// GST returns the GST filing state.
func (t *FinancialsTab) GST() *GSTState { return t.gst }
