package workspace

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credit-eval/cet-console/internal/model"
)

func TestCustomersTabSeed(t *testing.T) {
	c := mockCase(t, "CAS001")
	tab := NewCustomersTab(c, func() time.Time { return fixedNow })

	rows := tab.Customers()
	require.Len(t, rows, 1)
	want := CustomerRow{
		ApplicantType:  "Applicant",
		Name:           "John Doe",
		Relationship:   "Proprietorship",
		Shareholding:   "100%",
		BureauScore:    750,
		DOB:            "1985-01-15",
		Age:            35,
		AgeAtMaturity:  40,
		Mobile:         "9876543210",
		MobileVerified: true,
		VerifiedAt:     "2023-11-15T14:30:00",
		Selected:       true,
	}
	if diff := cmp.Diff(want, rows[0].Value); diff != "" {
		t.Errorf("seed row mismatch (-want +got):\n%s", diff)
	}

	addrs := tab.Addresses()
	require.Len(t, addrs, 1)
	assert.Equal(t, "123 Main Street, Bangalore", addrs[0].Value.Address)
	assert.Equal(t, VerifyPositive, addrs[0].Value.Verification)
}

func TestCustomersTabRows(t *testing.T) {
	tab := NewCustomersTab(mockCase(t, "CAS001"), func() time.Time { return fixedNow })

	assert.False(t, tab.RemoveCustomer(1), "last row stays")
	id := tab.AddCustomer()
	row, _ := tab.Customer(id)
	assert.Equal(t, "Co-applicant", row.ApplicantType)
	assert.False(t, row.MobileVerified)

	require.True(t, tab.UpdateCustomer(id, func(r *CustomerRow) { r.Name = "Asha" }))
	opts := tab.CustomerOptions()
	assert.Equal(t, []Option{{Value: "1", Label: "John Doe"}, {Value: "2", Label: "Asha"}}, opts)

	assert.True(t, tab.RemoveCustomer(1))
	assert.Len(t, tab.Customers(), 1)
}

func TestCustomersTabDOB(t *testing.T) {
	tab := NewCustomersTab(mockCase(t, "CAS001"), func() time.Time { return fixedNow })

	require.True(t, tab.SetDOB(1, "1990-03-11"))
	row, _ := tab.Customer(1)
	assert.Equal(t, 33, row.Age, "birthday not reached yet")
	assert.Equal(t, 38, row.AgeAtMaturity)

	tab.SetDOB(1, "1990-03-10")
	row, _ = tab.Customer(1)
	assert.Equal(t, 34, row.Age)

	tab.SetDOB(1, "not a date")
	row, _ = tab.Customer(1)
	assert.Equal(t, "not a date", row.DOB)
	assert.Equal(t, 34, row.Age)
}

func TestCustomersTabMobileVerification(t *testing.T) {
	tab := NewCustomersTab(mockCase(t, "CAS001"), func() time.Time { return fixedNow })
	id := tab.AddCustomer()

	require.True(t, tab.ToggleMobileVerified(id))
	row, _ := tab.Customer(id)
	assert.True(t, row.MobileVerified)
	assert.Equal(t, "2024-03-10T12:00:00", row.VerifiedAt)
	assert.Equal(t, "Mark as Unverified", MobileButtonLabel(row.MobileVerified))

	tab.ToggleMobileVerified(id)
	row, _ = tab.Customer(id)
	assert.False(t, row.MobileVerified)
	assert.Equal(t, "2024-03-10T12:00:00", row.VerifiedAt, "timestamp is retained")
	assert.Equal(t, "Mark as Verified", MobileButtonLabel(row.MobileVerified))
}

func TestCustomersTabAddresses(t *testing.T) {
	tab := NewCustomersTab(mockCase(t, "CAS001"), nil)

	id := tab.AddAddress()
	a, _ := tab.Address(id)
	assert.Equal(t, "1", a.CustomerID)
	assert.Equal(t, VerifyPending, a.Verification)

	tab.SetPincode(id, "56a0-0012345")
	a, _ = tab.Address(id)
	assert.Equal(t, "560001", a.Pincode)

	assert.True(t, tab.SetVerification(id, VerifyNegative))
	assert.False(t, tab.SetVerification(id, "maybe"))
	a, _ = tab.Address(id)
	assert.Equal(t, VerifyNegative, a.Verification)

	assert.True(t, tab.RemoveAddress(1))
	assert.False(t, tab.RemoveAddress(id))
	assert.Equal(t, "Mailing Only", OptionLabel(AddressUsages, "Mailing"))
}

func TestBankingView(t *testing.T) {
	v := NewBankingView(mockCase(t, "CAS002"))
	assert.Equal(t, "HDFC Bank", v.BankName)
	assert.Equal(t, "XXXX3210", v.AccountNumber)
	assert.Equal(t, "₹350,000", v.AverageBalance)
	assert.Equal(t, "Excellent", v.CreditBand)
	assert.Equal(t, "1", v.OutstandingLoans)
	assert.Equal(t, "No recent transactions to display", v.TransactionsMessage())
	assert.Equal(t, NoPaymentHistoryMessage, v.PaymentHistoryMessage())
}

func newFinancials(t *testing.T, years int) *FinancialsTab {
	return NewFinancialsTab(mockCase(t, "CAS001"), fixedNow, years)
}

func TestFiscalYearLabels(t *testing.T) {
	assert.Equal(t, []string{"FY 2023-24", "FY 2022-23", "FY 2021-22"}, FiscalYearLabels(fixedNow, 3))
	y2k := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{"FY 1999-00"}, FiscalYearLabels(y2k, 1))
}

func TestFinancialsTemplates(t *testing.T) {
	fin := newFinancials(t, 4)
	counts := map[StatementType]int{StatementPL: 15, StatementBalance: 19, StatementCashFlow: 18, StatementGST: 0}
	for st, n := range counts {
		require.True(t, fin.SetStatement(st))
		assert.Len(t, fin.Rows(), n, st)
	}
	assert.False(t, fin.SetStatement("ledger"))

	fin.SetStatement(StatementPL)
	rows := fin.Rows()
	assert.Equal(t, StatementRow{Label: "Revenue", Header: true}, rows[0])
	assert.Equal(t, StatementRow{Label: "Cost of Goods Sold"}, rows[1])
}

func TestFinancialsColumns(t *testing.T) {
	fin := newFinancials(t, 8)
	assert.Equal(t, []string{"FY 2023-24", "FY 2022-23"}, fin.Columns())

	for fin.AddColumn() {
	}
	assert.Len(t, fin.Columns(), MaxFiscalColumns)
	assert.False(t, fin.AddColumn(), "cap reached")

	for _, c := range fin.Columns()[1:] {
		require.True(t, fin.RemoveColumn(c))
	}
	assert.False(t, fin.RemoveColumn(fin.Columns()[0]), "last column stays")

	small := newFinancials(t, 3)
	assert.True(t, small.AddColumn())
	assert.False(t, small.AddColumn(), "no unused labels left")
}

func TestFinancialsCells(t *testing.T) {
	fin := newFinancials(t, 4)
	fin.SetCell(StatementPL, "Revenue", "FY 2023-24", "1,200,000")
	fin.SetCell(StatementBalance, "Inventory", "FY 2023-24", "40,000")
	fin.SetCell(StatementPL, "Revenue", "FY 2022-23", "900,000")

	assert.Equal(t, "1,200,000", fin.Cell(StatementPL, "Revenue", "FY 2023-24"))
	assert.Empty(t, fin.Cell(StatementCashFlow, "Revenue", "FY 2023-24"))

	assert.False(t, fin.RenameColumn("FY 2023-24", "FY 2022-23"), "label in use")
	assert.False(t, fin.RenameColumn("FY 2023-24", "FY 1900-01"), "not a fiscal year")
	require.True(t, fin.RenameColumn("FY 2023-24", "FY 2020-21"))
	assert.Equal(t, "1,200,000", fin.Cell(StatementPL, "Revenue", "FY 2020-21"))

	fin.SetStatement(StatementPL)
	require.True(t, fin.RemoveColumn("FY 2020-21"))
	assert.Empty(t, fin.Cell(StatementPL, "Revenue", "FY 2020-21"))
	assert.Equal(t, "900,000", fin.Cell(StatementPL, "Revenue", "FY 2022-23"))

	// the balance sheet was not the visible grid, so its cells survive
	assert.Equal(t, "40,000", fin.Cell(StatementBalance, "Inventory", "FY 2020-21"))
}

func TestFinancialsKPIsAndGST(t *testing.T) {
	fin := newFinancials(t, 4)
	kpis := fin.KPIs()
	require.Len(t, kpis, 4)
	assert.Equal(t, KPI{Title: "Monthly Income", Value: "₹100,000"}, kpis[0])
	assert.Equal(t, KPI{Title: "Risk Score", Value: "85/100"}, kpis[3])

	gst := fin.GST()
	months := gst.Months()
	require.Len(t, months, 12)
	assert.Equal(t, "March 2024", months[0].Label)
	assert.Equal(t, "April 2023", months[11].Label)
	assert.Equal(t, FilingFiled, months[5].GSTR3B)

	require.True(t, gst.SetFiling(0, GSTR1, FilingDelayed))
	assert.False(t, gst.SetFiling(12, GSTR1, FilingDelayed))
	assert.False(t, gst.SetFiling(0, "GSTR-9", FilingDelayed))
	assert.False(t, gst.SetFiling(0, GSTR3B, "late"))
	assert.Equal(t, FilingDelayed, gst.Months()[0].GSTR1)
	assert.Equal(t, FilingFiled, gst.Months()[0].GSTR3B)

	assert.Equal(t, "5", gst.ComplianceRating)
	assert.True(t, gst.SetComplianceRating("2"))
	assert.False(t, gst.SetComplianceRating("6"))
	assert.True(t, gst.SetFilingFrequency("quarterly"))
	assert.False(t, gst.SetFilingFrequency("weekly"))
}

func TestRTRStats(t *testing.T) {
	tab := NewRTRTab()
	rows := tab.Rows()
	require.Len(t, rows, 40)
	assert.Equal(t, "Loan 40", rows[39].Value.Loan)

	n, m := rows[0].ID, rows[1].ID
	tab.SetField(n, FieldMonthsPaid, "12")
	tab.SetField(n, FieldTenure, "12")
	tab.SetField(n, FieldCurrentBalance, "₹150,000")
	tab.SetField(m, FieldMonthsPaid, "6")
	tab.SetField(m, FieldTenure, "12")
	tab.SetField(m, FieldCurrentBalance, "50000")

	s := tab.Stats()
	assert.Equal(t, 2, s.TotalLoans)
	assert.Equal(t, 1, s.Completed)
	assert.Equal(t, 1, s.Active)
	assert.Equal(t, 1, s.HighValue)
	assert.Equal(t, "50.0", s.ActivePercent)
	assert.True(t, decimal.NewFromInt(100000).Equal(s.AverageBalance), s.AverageBalance.String())
	assert.Equal(t, 3, s.HealthStars)
	assert.Equal(t, "0%", s.OnTimePercent)
	assert.Equal(t, "0 days", s.AverageDelay)
}

func TestRTRAverageBalanceIsExact(t *testing.T) {
	tab := NewRTRTab()
	rows := tab.Rows()
	tab.SetField(rows[0].ID, FieldCurrentBalance, "0.1")
	tab.SetField(rows[1].ID, FieldCurrentBalance, "0.2")
	tab.SetField(rows[2].ID, FieldCurrentBalance, "₹1,00,000.35")

	s := tab.Stats()
	assert.Equal(t, "33333.55", s.AverageBalance.String())
	assert.Equal(t, 1, s.HighValue)
}

func TestRTRStatsEmptyGrid(t *testing.T) {
	tab := NewRTRTab()
	s := tab.Stats()
	assert.Zero(t, s.TotalLoans)
	assert.Equal(t, "0", s.ActivePercent)
	assert.True(t, s.AverageBalance.IsZero())
	assert.Zero(t, s.HealthStars)

	assert.False(t, tab.SetField(1, RTRField(99), "x"))
	tab.SetField(1, FieldLender, "Bajaj Finance")
	assert.Zero(t, tab.Stats().TotalLoans, "lender alone does not fill a row")
	tab.SetField(1, FieldType, "Home")
	assert.Equal(t, 1, tab.Stats().Active)
	assert.Equal(t, BankConnectMessage, tab.ConnectBanks())
}

func TestDueDiligenceCards(t *testing.T) {
	tab := NewDueDiligenceTab()
	cards := tab.Cards()
	require.Len(t, cards, 4)
	assert.Equal(t, "Residence checks", cards[2].Value.Heading)

	assert.False(t, tab.RemoveCard(1))
	assert.False(t, tab.SetHeading(1, "Media Check"))

	id := tab.AddCard()
	assert.Equal(t, 5, id)
	assert.True(t, tab.Dynamic(id))
	c, _ := tab.cards.Get(id)
	assert.Equal(t, "Online Activity", c.Heading)

	require.True(t, tab.SetHeading(id, "Media Check"))
	tab.UpdateCard(id, func(c *CheckCard) {
		c.Source = "linkedin"
		c.Heading = "ignored"
	})
	tab.ToggleDoc(id)
	tab.ToggleAssist(id)
	c, _ = tab.cards.Get(id)
	assert.Equal(t, CheckCard{Heading: "Media Check", Source: "linkedin", DocAttached: true, Assisted: true}, c)

	assert.True(t, tab.RemoveCard(id))
	assert.Len(t, tab.Cards(), 4)
}

func TestDueDiligenceHistory(t *testing.T) {
	tab := NewDueDiligenceTab()
	hist := tab.History()
	require.Len(t, hist, 3)
	assert.Equal(t, "Fund Requirement Reasons", hist[2].Title)

	bg := hist[1]
	original := bg.Content
	bg.Expand()
	assert.True(t, bg.Open())
	assert.False(t, bg.Editing())
	bg.Save()
	assert.Equal(t, original, bg.Content)

	bg.Edit()
	assert.Equal(t, original, bg.Draft())
	bg.SetDraft("Founded in 2012.")
	bg.Dismiss()
	assert.Equal(t, original, bg.Content)

	bg.Edit()
	bg.SetDraft("Founded in 2012.")
	bg.Save()
	assert.Equal(t, "Founded in 2012.", bg.Content)
	assert.False(t, bg.Open())

	tab.URLs = "https://example.com"
	assert.Equal(t, "Processing Basic analysis for URLs: https://example.com", tab.Connect())
	tab.AnalysisType = "deep"
	assert.Equal(t, "Processing Deep analysis for URLs: https://example.com", tab.Connect())
}

func TestPDPlusTab(t *testing.T) {
	tab := NewPDPlusTab(mockCase(t, "CAS002"))
	assert.Equal(t, "Jane Smith", tab.Selected().Name)
	assert.Equal(t, "PD #1", tab.PDNumber)

	parts := tab.Participants()
	require.Len(t, parts, 1)
	assert.Equal(t, "Jane Smith", parts[0].Value.Name)
	assert.False(t, tab.RemoveParticipant(parts[0].ID))

	id := tab.AddParticipant()
	tab.RenameParticipant(id, "Field Officer")
	assert.True(t, tab.RemoveParticipant(parts[0].ID))
	assert.Equal(t, "Field Officer", tab.Participants()[0].Value.Name)

	require.True(t, tab.Select("3"))
	assert.False(t, tab.Select("9"))
	dlg := tab.OpenCall()
	assert.Equal(t, CallDialog{Prompt: "Call this number?", Mobile: "7654321098"}, dlg)
	assert.True(t, tab.CallOpen())
	assert.Equal(t, "Calling 7654321098", tab.Call())
	assert.False(t, tab.CallOpen())
	tab.OpenCall()
	assert.Equal(t, "Initiating enhanced call with 7654321098", tab.CallPlus())

	assert.True(t, tab.SetPDNumber("PD #3"))
	assert.False(t, tab.SetPDNumber("PD #4"))
	assert.True(t, tab.SetHighlight(2, "Stable cash flows"))
	assert.False(t, tab.SetHighlight(3, "x"))
}

func TestCreditPlusDialogText(t *testing.T) {
	tab := NewCreditPlusTab(t.Context(), time.Hour)
	defer tab.Cancel()

	assert.Equal(t, StatusIdle, tab.StatusText())
	dlg, ok := tab.OpenConfirm()
	require.True(t, ok)
	assert.Equal(t, "Confirm Analysis", dlg.Title)
	assert.Contains(t, dlg.Body, "run a Deep Pattern Model analysis")
	tab.DismissConfirm()
	assert.False(t, tab.ConfirmOpen())

	require.True(t, tab.SelectModel("portfolio-seeker"))
	assert.False(t, tab.SelectModel("oracle"))
	dlg, _ = tab.OpenConfirm()
	assert.Contains(t, dlg.Body, "run a Portfolio Seeker Model analysis")

	tab.Confirm()
	assert.Equal(t, StatusProcessing, tab.StatusText())
	_, ok = tab.OpenConfirm()
	assert.False(t, ok, "refused while processing")

	assert.True(t, tab.SelectResultTab(ResultRecommendations))
	assert.False(t, tab.SelectResultTab("charts"))
	assert.Equal(t, "Recommendations content would appear here...", ResultText(ResultRecommendations))
}

func TestDocumentsTab(t *testing.T) {
	c := mockCase(t, "CAS001")
	tab := NewDocumentsTab(c)
	assert.Equal(t, NoDocumentsMessage, tab.EmptyMessage())

	c.Details.Additional.Documents = []model.Document{{Name: "pan.pdf", Type: "ID Proof"}}
	c.Details.Additional.Comments = "Verified income proof"
	tab = NewDocumentsTab(c)
	assert.Empty(t, tab.EmptyMessage())
	assert.Len(t, tab.Documents(), 1)
	assert.Equal(t, "Verified income proof", tab.Notes)
	assert.Equal(t, "Note saved successfully!", tab.SaveNote())
}
