package workspace

import "time"

// FilingStatus is the state of one monthly GST return.
type FilingStatus string

const (
	FilingFiled         FilingStatus = "filed"
	FilingPending       FilingStatus = "pending"
	FilingDelayed       FilingStatus = "delayed"
	FilingNotApplicable FilingStatus = "not_applicable"
)

// GSTForm names a monthly return.
type GSTForm string

const (
	GSTR1  GSTForm = "GSTR-1"
	GSTR3B GSTForm = "GSTR-3B"
)

var (
	FilingStatuses = []Option{
		{Value: string(FilingFiled), Label: "Filed"},
		{Value: string(FilingPending), Label: "Pending"},
		{Value: string(FilingDelayed), Label: "Delayed"},
		{Value: string(FilingNotApplicable), Label: "Not Applicable"},
	}
	ComplianceRatings = []Option{
		{Value: "5", Label: "5 - Excellent"},
		{Value: "4", Label: "4 - Good"},
		{Value: "3", Label: "3 - Average"},
		{Value: "2", Label: "2 - Below Average"},
		{Value: "1", Label: "1 - Poor"},
	}
	FilingFrequencies = []Option{
		{Value: "monthly", Label: "Monthly"},
		{Value: "quarterly", Label: "Quarterly"},
		{Value: "annually", Label: "Annually"},
	}
)

// GSTINPlaceholder is the hint of the GSTIN field.
const GSTINPlaceholder = "29ABCDE1234F1Z5"

// GSTMonth is one row of the filing status table.
type GSTMonth struct {
	Label  string
	GSTR1  FilingStatus
	GSTR3B FilingStatus
}

// GSTState is the GST statement: twelve monthly filings plus registration.
type GSTState struct {
	months []GSTMonth

	GSTIN            string
	RegistrationDate string
	ComplianceRating string
	FilingFrequency  string
}

// NewGSTState lists the twelve months ending with now's month, all filed.
func NewGSTState(now time.Time) *GSTState {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	g := &GSTState{ComplianceRating: "5", FilingFrequency: "monthly"}
	for i := 0; i < 12; i++ {
		m := first.AddDate(0, -i, 0)
		g.months = append(g.months, GSTMonth{
			Label:  m.Format("January 2006"),
			GSTR1:  FilingFiled,
			GSTR3B: FilingFiled,
		})
	}
	return g
}

// Months returns the filing table, newest first.
func (g *GSTState) Months() []GSTMonth {
	return append([]GSTMonth(nil), g.months...)
}

// SetFiling updates one return of month i.
func (g *GSTState) SetFiling(i int, form GSTForm, st FilingStatus) bool {
	if i < 0 || i >= len(g.months) || !hasOption(FilingStatuses, string(st)) {
		return false
	}
	switch form {
	case GSTR1:
		g.months[i].GSTR1 = st
	case GSTR3B:
		g.months[i].GSTR3B = st
	default:
		return false
	}
	return true
}

// SetComplianceRating accepts one of the rating options.
func (g *GSTState) SetComplianceRating(v string) bool {
	if !hasOption(ComplianceRatings, v) {
		return false
	}
	g.ComplianceRating = v
	return true
}

// SetFilingFrequency accepts one of the frequency options.
func (g *GSTState) SetFilingFrequency(v string) bool {
	if !hasOption(FilingFrequencies, v) {
		return false
	}
	g.FilingFrequency = v
	return true
}
