package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/credit-eval/cet-console/internal/model"
	"github.com/credit-eval/cet-console/internal/store"
	"github.com/credit-eval/cet-console/internal/workspace"
)

func (v *detailView) newPane(t workspace.TabID) *tabPane {
	switch t {
	case workspace.TabCustomers:
		return v.customersPane()
	case workspace.TabDueDiligence:
		return v.dueDiligencePane()
	case workspace.TabBanking:
		return v.bankingPane()
	case workspace.TabRTR:
		return v.rtrPane()
	case workspace.TabFinancials:
		return v.financialsPane()
	case workspace.TabPDPlus:
		return v.pdPlusPane()
	case workspace.TabCreditPlus:
		return v.creditPlusPane()
	case workspace.TabReview:
		return v.reviewPane()
	default:
		return v.placeholderPane(t)
	}
}

// Form helpers.

func optionLabels(opts []workspace.Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Label
	}
	return out
}

func optionIndex(opts []workspace.Option, value string) int {
	for i, o := range opts {
		if o.Value == value {
			return i
		}
	}
	return -1
}

func formOption(form *tview.Form, label string, opts []workspace.Option) string {
	dd, ok := form.GetFormItemByLabel(label).(*tview.DropDown)
	if !ok {
		return ""
	}
	i, _ := dd.GetCurrentOption()
	if i < 0 || i >= len(opts) {
		return ""
	}
	return opts[i].Value
}

func formText(form *tview.Form, label string) string {
	switch item := form.GetFormItemByLabel(label).(type) {
	case *tview.InputField:
		return item.GetText()
	case *tview.TextArea:
		return item.GetText()
	}
	return ""
}

func stars(n int) string {
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// Customers

func (v *detailView) customersPane() *tabPane {
	ui, tab := v.ui, v.d.Customers()
	people := ui.newTable("Customers  a:add d:remove e:edit v:mobile Tab:addresses")
	addrs := ui.newTable("Addresses  a:add d:remove e:edit v:verification Tab:customers")
	var peopleIDs, addrIDs []int

	p := &tabPane{focus: people}
	p.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(people, 0, 1, true).
		AddItem(addrs, 0, 1, false)

	p.render = func() {
		th := ui.theme
		people.Clear()
		peopleIDs = peopleIDs[:0]
		ui.setTableHeader(people, "Type", "Name", "Relationship", "Shareholding", "Bureau", "DOB", "Age", "At Maturity", "Mobile", "Verified")
		for i, it := range tab.Customers() {
			r, row := it.Value, i+1
			verified := cell("No", hex(th.TagYellow))
			if r.MobileVerified {
				verified = cell("Yes "+r.VerifiedAt, hex(th.TagGreen))
			}
			people.SetCell(row, 0, cell(r.ApplicantType, th.TableRowMuted))
			people.SetCell(row, 1, cell(r.Name, th.TableRow))
			people.SetCell(row, 2, cell(r.Relationship, th.TableRowMuted))
			people.SetCell(row, 3, cell(r.Shareholding, th.TableRow))
			people.SetCell(row, 4, cell(strconv.Itoa(r.BureauScore), hex(th.toneTag(model.CreditTone(r.BureauScore)))))
			people.SetCell(row, 5, cell(r.DOB, th.TableRow))
			people.SetCell(row, 6, cell(strconv.Itoa(r.Age), th.TableRow))
			people.SetCell(row, 7, cell(strconv.Itoa(r.AgeAtMaturity), th.TableRow))
			people.SetCell(row, 8, cell(r.Mobile, th.TableRow))
			people.SetCell(row, 9, verified)
			peopleIDs = append(peopleIDs, it.ID)
		}

		addrs.Clear()
		addrIDs = addrIDs[:0]
		customers := tab.CustomerOptions()
		ui.setTableHeader(addrs, "Customer", "Property", "Address", "Pincode", "Used For", "Verification")
		for i, it := range tab.Addresses() {
			a, row := it.Value, i+1
			tone := th.TagYellow
			switch a.Verification {
			case workspace.VerifyPositive:
				tone = th.TagGreen
			case workspace.VerifyNegative:
				tone = th.TagRed
			}
			addrs.SetCell(row, 0, cell(workspace.OptionLabel(customers, a.CustomerID), th.TableRow))
			addrs.SetCell(row, 1, cell(a.PropertyType, th.TableRowMuted))
			addrs.SetCell(row, 2, cell(a.Address, th.TableRow))
			addrs.SetCell(row, 3, cell(a.Pincode, th.TableRow))
			addrs.SetCell(row, 4, cell(workspace.OptionLabel(workspace.AddressUsages, a.UsedFor), th.TableRowMuted))
			addrs.SetCell(row, 5, cell(workspace.OptionLabel(workspace.Verifications, string(a.Verification)), hex(tone)))
			addrIDs = append(addrIDs, it.ID)
		}
	}

	people.SetInputCapture(func(e *tcell.EventKey) *tcell.EventKey {
		if e.Key() == tcell.KeyTab {
			p.focus = addrs
			ui.app.SetFocus(addrs)
			return nil
		}
		if e.Key() != tcell.KeyRune {
			return e
		}
		id, ok := selectedID(people, peopleIDs)
		switch e.Rune() {
		case 'a':
			tab.AddCustomer()
			p.render()
			people.Select(people.GetRowCount()-1, 0)
		case 'd':
			if ok && !tab.RemoveCustomer(id) {
				ui.setStatusDirect("At least one customer is required")
			}
			p.render()
		case 'e':
			if ok {
				v.editCustomer(tab, id, p.render)
			}
		case 'v':
			if r, found := tab.Customer(id); ok && found {
				ui.showChoice(fmt.Sprintf("Mobile %s\nVerified: %s", r.Mobile, yesNo(r.MobileVerified)),
					[]string{workspace.MobileButtonLabel(r.MobileVerified), "Close"},
					func(label string) {
						if label != "Close" {
							tab.ToggleMobileVerified(id)
							p.render()
						}
					})
			}
		default:
			return e
		}
		return nil
	})

	addrs.SetInputCapture(func(e *tcell.EventKey) *tcell.EventKey {
		if e.Key() == tcell.KeyTab || e.Key() == tcell.KeyBacktab {
			p.focus = people
			ui.app.SetFocus(people)
			return nil
		}
		if e.Key() != tcell.KeyRune {
			return e
		}
		id, ok := selectedID(addrs, addrIDs)
		switch e.Rune() {
		case 'a':
			tab.AddAddress()
			p.render()
			addrs.Select(addrs.GetRowCount()-1, 0)
		case 'd':
			if ok && !tab.RemoveAddress(id) {
				ui.setStatusDirect("At least one address is required")
			}
			p.render()
		case 'e':
			if ok {
				v.editAddress(tab, id, p.render)
			}
		case 'v':
			if a, found := tab.Address(id); ok && found {
				next := (optionIndex(workspace.Verifications, string(a.Verification)) + 1) % len(workspace.Verifications)
				tab.SetVerification(id, workspace.Verification(workspace.Verifications[next].Value))
				p.render()
			}
		default:
			return e
		}
		return nil
	})
	return p
}

func (v *detailView) editCustomer(tab *workspace.CustomersTab, id int, done func()) {
	ui := v.ui
	r, ok := tab.Customer(id)
	if !ok {
		return
	}
	form := tview.NewForm()
	form.AddDropDown("Applicant Type", optionLabels(workspace.ApplicantTypes), optionIndex(workspace.ApplicantTypes, r.ApplicantType), nil)
	form.AddInputField("Name", r.Name, 32, nil, nil)
	form.AddDropDown("Relationship", optionLabels(workspace.Relationships), optionIndex(workspace.Relationships, r.Relationship), nil)
	form.AddInputField("Shareholding", r.Shareholding, 8, nil, nil)
	form.AddInputField("Bureau Score", strconv.Itoa(r.BureauScore), 6, tview.InputFieldInteger, nil)
	form.AddInputField("DOB (YYYY-MM-DD)", r.DOB, 12, nil, nil)
	form.AddInputField("Mobile", r.Mobile, 12, nil, nil)
	form.AddButton("Save", func() {
		tab.UpdateCustomer(id, func(c *workspace.CustomerRow) {
			c.ApplicantType = formOption(form, "Applicant Type", workspace.ApplicantTypes)
			c.Name = formText(form, "Name")
			c.Relationship = formOption(form, "Relationship", workspace.Relationships)
			c.Shareholding = formText(form, "Shareholding")
			if score, err := strconv.Atoi(formText(form, "Bureau Score")); err == nil {
				c.BureauScore = score
			}
			c.Mobile = formText(form, "Mobile")
		})
		tab.SetDOB(id, formText(form, "DOB (YYYY-MM-DD)"))
		ui.popModalRoot()
		done()
	})
	form.AddButton("Cancel", ui.popModalRoot)
	ui.showForm("Edit Customer", form, 60, 19)
}

func (v *detailView) editAddress(tab *workspace.CustomersTab, id int, done func()) {
	ui := v.ui
	a, ok := tab.Address(id)
	if !ok {
		return
	}
	customers := tab.CustomerOptions()
	form := tview.NewForm()
	form.AddDropDown("Customer", optionLabels(customers), optionIndex(customers, a.CustomerID), nil)
	form.AddDropDown("Property Type", optionLabels(workspace.PropertyTypes), optionIndex(workspace.PropertyTypes, a.PropertyType), nil)
	form.AddInputField("Address", a.Address, 40, nil, nil)
	form.AddInputField("Pincode", a.Pincode, 8, func(text string, _ rune) bool {
		return text == workspace.CleanPincode(text)
	}, nil)
	form.AddDropDown("Used For", optionLabels(workspace.AddressUsages), optionIndex(workspace.AddressUsages, a.UsedFor), nil)
	form.AddDropDown("Verification", optionLabels(workspace.Verifications), optionIndex(workspace.Verifications, string(a.Verification)), nil)
	form.AddButton("Save", func() {
		tab.UpdateAddress(id, func(r *workspace.AddressRow) {
			r.CustomerID = formOption(form, "Customer", customers)
			r.PropertyType = formOption(form, "Property Type", workspace.PropertyTypes)
			r.Address = formText(form, "Address")
			r.UsedFor = formOption(form, "Used For", workspace.AddressUsages)
		})
		tab.SetPincode(id, formText(form, "Pincode"))
		tab.SetVerification(id, workspace.Verification(formOption(form, "Verification", workspace.Verifications)))
		ui.popModalRoot()
		done()
	})
	form.AddButton("Cancel", ui.popModalRoot)
	ui.showForm("Edit Address", form, 64, 17)
}

// Due diligence

func (v *detailView) dueDiligencePane() *tabPane {
	ui, tab := v.ui, v.d.DueDiligence()
	history := ui.newText("History  1-3:open")
	cards := ui.newTable("Checks  a:add d:remove e:edit o:document i:assist c:connect+")
	var ids []int

	p := &tabPane{focus: cards}
	p.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(history, 8, 0, false).
		AddItem(cards, 0, 1, true)

	p.render = func() {
		th := ui.theme
		var b strings.Builder
		for i, h := range tab.History() {
			content := h.Content
			if len([]rune(content)) > 90 {
				content = string([]rune(content)[:90]) + "..."
			}
			fmt.Fprintf(&b, "[%s::b]%d. %s[-::-]\n[%s]%s[-]\n", th.TagAccent, i+1, h.Title, th.TagMuted, content)
		}
		history.SetText(b.String())

		cards.Clear()
		ids = ids[:0]
		ui.setTableHeader(cards, "Heading", "Source", "Result", "Remarks", "Document", "AI Assist")
		for i, it := range tab.Cards() {
			c, row := it.Value, i+1
			heading := c.Heading
			if tab.Dynamic(it.ID) {
				heading += " *"
			}
			cards.SetCell(row, 0, cell(heading, th.TableRow))
			cards.SetCell(row, 1, cell(workspace.OptionLabel(workspace.CheckSources, c.Source), th.TableRowMuted))
			cards.SetCell(row, 2, cell(c.Result, th.TableRow))
			cards.SetCell(row, 3, cell(c.Remarks, th.TableRowMuted))
			cards.SetCell(row, 4, cell(yesNo(c.DocAttached), th.TableRow))
			cards.SetCell(row, 5, cell(yesNo(c.Assisted), th.TableRow))
			ids = append(ids, it.ID)
		}
	}

	cards.SetInputCapture(func(e *tcell.EventKey) *tcell.EventKey {
		if e.Key() != tcell.KeyRune {
			return e
		}
		id, ok := selectedID(cards, ids)
		switch r := e.Rune(); r {
		case '1', '2', '3':
			v.openHistory(tab.History()[r-'1'], p.render)
		case 'a':
			tab.AddCard()
			p.render()
			cards.Select(cards.GetRowCount()-1, 0)
		case 'd':
			if ok && !tab.RemoveCard(id) {
				ui.setStatusDirect("Fixed checks cannot be removed")
			}
			p.render()
		case 'e':
			if ok {
				v.editCheck(tab, id, p.render)
			}
		case 'o':
			tab.ToggleDoc(id)
			p.render()
		case 'i':
			tab.ToggleAssist(id)
			p.render()
		case 'c':
			v.connectURLs(tab)
		default:
			return e
		}
		return nil
	})
	return p
}

// openHistory shows a narrative in view mode; Edit switches to a text area.
func (v *detailView) openHistory(h *workspace.HistoryCard, done func()) {
	ui := v.ui
	h.Expand()
	ui.showChoice(h.Title+"\n\n"+h.Content, []string{"Edit", "Close"}, func(label string) {
		if label != "Edit" {
			h.Dismiss()
			return
		}
		h.Edit()
		form := tview.NewForm()
		form.AddTextArea(h.Title, h.Draft(), 0, 8, 0, h.SetDraft)
		form.AddButton("Save", func() {
			h.Save()
			ui.popModalRoot()
			done()
		})
		form.AddButton("Cancel", func() {
			h.Dismiss()
			ui.popModalRoot()
		})
		ui.showForm("Edit "+h.Title, form, 72, 16)
	})
}

func (v *detailView) editCheck(tab *workspace.DueDiligenceTab, id int, done func()) {
	ui := v.ui
	var current workspace.CheckCard
	for _, it := range tab.Cards() {
		if it.ID == id {
			current = it.Value
		}
	}
	headings := make([]workspace.Option, len(workspace.CheckHeadings))
	for i, h := range workspace.CheckHeadings {
		headings[i] = workspace.Option{Value: h, Label: h}
	}

	dynamic := tab.Dynamic(id)
	form := tview.NewForm()
	if dynamic {
		form.AddDropDown("Heading", optionLabels(headings), optionIndex(headings, current.Heading), nil)
	}
	form.AddDropDown("Source", optionLabels(workspace.CheckSources), optionIndex(workspace.CheckSources, current.Source), nil)
	form.AddInputField("Result", current.Result, 40, nil, nil)
	form.AddTextArea("Remarks", current.Remarks, 0, 4, 0, nil)
	form.AddButton("Save", func() {
		if dynamic {
			tab.SetHeading(id, formOption(form, "Heading", headings))
		}
		tab.UpdateCard(id, func(c *workspace.CheckCard) {
			c.Source = formOption(form, "Source", workspace.CheckSources)
			c.Result = formText(form, "Result")
			c.Remarks = formText(form, "Remarks")
		})
		ui.popModalRoot()
		done()
	})
	form.AddButton("Cancel", ui.popModalRoot)
	ui.showForm(current.Heading, form, 64, 17)
}

func (v *detailView) connectURLs(tab *workspace.DueDiligenceTab) {
	ui := v.ui
	form := tview.NewForm()
	form.AddInputField("URLs", tab.URLs, 48, nil, nil)
	form.AddDropDown("Analysis Type", optionLabels(workspace.AnalysisTypes), optionIndex(workspace.AnalysisTypes, tab.AnalysisType), nil)
	form.AddButton("Submit", func() {
		tab.URLs = formText(form, "URLs")
		tab.AnalysisType = formOption(form, "Analysis Type", workspace.AnalysisTypes)
		ui.popModalRoot()
		ui.showMessage(tab.Connect())
	})
	form.AddButton("Cancel", ui.popModalRoot)
	ui.showForm("Connect+", form, 70, 11)
}

// Banking

func (v *detailView) bankingPane() *tabPane {
	ui := v.ui
	tv := ui.newText("Banking")
	p := &tabPane{root: tv, focus: tv}
	p.render = func() {
		th, b := ui.theme, v.d.Banking()
		tv.SetText(fmt.Sprintf(
			"[%[1]s::b]Bank Details[-::-]\n"+
				"  Bank Name        [%[2]s]%[3]s[-]\n"+
				"  Account Number   [%[2]s]%[4]s[-]\n"+
				"  Average Balance  [%[2]s]%[5]s[-]\n\n"+
				"[%[1]s::b]Credit Bureau[-::-]\n"+
				"  Credit Score     [%[6]s::b]%[7]s[-::-] [%[8]s](%[9]s)[-]\n"+
				"  Outstanding      [%[2]s]%[10]s[-]\n"+
				"  Report Date      [%[2]s]%[11]s[-]\n\n"+
				"[%[1]s::b]Recent Transactions[-::-]\n  [%[8]s]%[12]s[-]\n\n"+
				"[%[1]s::b]Payment History[-::-]\n  [%[8]s]%[13]s[-]",
			th.TagAccent, th.TagTextPrimary, b.BankName, b.AccountNumber, b.AverageBalance,
			th.toneTag(b.CreditTone), b.CreditScore, th.TagMuted, b.CreditBand,
			b.OutstandingLoans, b.ReportDate, b.TransactionsMessage(), b.PaymentHistoryMessage()))
	}
	return p
}

// RTR

var rtrFieldLabels = []string{"Type", "Months Paid", "Tenure", "Current Balance", "EMI", "Lender", "Bank", "Last Paid"}

func rtrValues(r workspace.RTRRow) []string {
	return []string{r.Type, r.MonthsPaid, r.Tenure, r.CurrentBalance, r.EMI, r.Lender, r.Bank, r.LastPaid}
}

func (v *detailView) rtrPane() *tabPane {
	ui, tab := v.ui, v.d.RTR()
	stats := ui.newText("Summary")
	table := ui.newTable("Repayment Track Record  e:edit c:connect bank statements")
	var ids []int

	p := &tabPane{focus: table}
	p.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(stats, 5, 0, false).
		AddItem(table, 0, 1, true)

	p.render = func() {
		th, s := ui.theme, tab.Stats()
		stats.SetText(fmt.Sprintf(
			"Total Loans [%[1]s::b]%[2]d[-::-]   Completed [%[3]s]%[4]d[-]   Active [%[5]s]%[6]d[-] (%[7]s%%)   High Value [%[1]s]%[8]d[-]\n"+
				"Average Balance [%[1]s]%[9]s[-]   Health [%[5]s]%[10]s[-]   On-time [%[5]s]%[11]s[-] %[12]s   Avg Delay %[13]s",
			th.TagTextPrimary, s.TotalLoans, th.TagGreen, s.Completed, th.TagYellow, s.Active, s.ActivePercent, s.HighValue,
			model.RupeeSign+model.FormatAmount(s.AverageBalance), stars(s.HealthStars), stars(s.OnTimeStars), s.OnTimePercent, s.AverageDelay))

		table.Clear()
		ids = ids[:0]
		ui.setTableHeader(table, append([]string{"Loan"}, rtrFieldLabels...)...)
		for i, it := range tab.Rows() {
			row := i + 1
			table.SetCell(row, 0, cell(it.Value.Loan, th.Accent))
			for col, val := range rtrValues(it.Value) {
				table.SetCell(row, col+1, cell(val, th.TableRow))
			}
			ids = append(ids, it.ID)
		}
	}

	table.SetInputCapture(func(e *tcell.EventKey) *tcell.EventKey {
		if e.Key() != tcell.KeyRune {
			return e
		}
		switch e.Rune() {
		case 'e':
			if id, ok := selectedID(table, ids); ok {
				v.editRTR(tab, id, p.render)
			}
		case 'c':
			ui.showChoice("Connect bank statements\n\nSupported banks: "+strings.Join(workspace.SupportedBanks, ", "),
				[]string{"Connect", "Cancel"}, func(label string) {
					if label == "Connect" {
						ui.showMessage(tab.ConnectBanks())
					}
				})
		default:
			return e
		}
		return nil
	})
	return p
}

func (v *detailView) editRTR(tab *workspace.RTRTab, id int, done func()) {
	ui := v.ui
	var row workspace.RTRRow
	for _, it := range tab.Rows() {
		if it.ID == id {
			row = it.Value
		}
	}
	values := rtrValues(row)
	form := tview.NewForm()
	form.AddDropDown(rtrFieldLabels[0], optionLabels(workspace.LoanTypes), optionIndex(workspace.LoanTypes, row.Type), nil)
	for i := 1; i < len(rtrFieldLabels); i++ {
		form.AddInputField(rtrFieldLabels[i], values[i], 20, nil, nil)
	}
	form.AddButton("Save", func() {
		tab.SetField(id, workspace.FieldType, formOption(form, rtrFieldLabels[0], workspace.LoanTypes))
		for f := workspace.FieldMonthsPaid; f <= workspace.FieldLastPaid; f++ {
			tab.SetField(id, f, formText(form, rtrFieldLabels[f]))
		}
		ui.popModalRoot()
		done()
	})
	form.AddButton("Cancel", ui.popModalRoot)
	ui.showForm(row.Loan, form, 50, 21)
}

// Financials

func (v *detailView) financialsPane() *tabPane {
	ui, tab := v.ui, v.d.Financials()
	kpis := ui.newText("")
	bar := tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	table := ui.newTable("")
	table.SetSelectable(true, true)

	p := &tabPane{focus: table}
	p.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(kpis, 2, 0, false).
		AddItem(bar, 2, 0, false).
		AddItem(table, 0, 1, true)

	p.render = func() {
		th := ui.theme
		var b strings.Builder
		for _, k := range tab.KPIs() {
			fmt.Fprintf(&b, "[%s]%s[-] [%s::b]%s[-::-]    ", th.TagMuted, k.Title, th.TagTextPrimary, k.Value)
		}
		kpis.SetText(b.String())
		bar.SetBackgroundColor(th.Surface)
		bar.SetText(renderTabBar(th, optionLabels(workspace.StatementTypes),
			optionIndex(workspace.StatementTypes, string(tab.Statement()))))

		table.Clear()
		if tab.Statement() == workspace.StatementGST {
			g := tab.GST()
			table.SetTitle(fmt.Sprintf(" GST  GSTIN %s  Registered %s  Rating %s  %s  (e:edit month g:registration Tab:statement) ",
				orDash(g.GSTIN), orDash(g.RegistrationDate),
				workspace.OptionLabel(workspace.ComplianceRatings, g.ComplianceRating),
				workspace.OptionLabel(workspace.FilingFrequencies, g.FilingFrequency)))
			ui.setTableHeader(table, "Month", string(workspace.GSTR1), string(workspace.GSTR3B))
			for i, m := range g.Months() {
				table.SetCell(i+1, 0, cell(m.Label, th.TableRow))
				table.SetCell(i+1, 1, cell(workspace.OptionLabel(workspace.FilingStatuses, string(m.GSTR1)), filingColor(th, m.GSTR1)))
				table.SetCell(i+1, 2, cell(workspace.OptionLabel(workspace.FilingStatuses, string(m.GSTR3B)), filingColor(th, m.GSTR3B)))
			}
			return
		}

		table.SetTitle(" Statement  e:edit cell a:add year x:remove year r:rename year Tab:statement ")
		cols := tab.Columns()
		ui.setTableHeader(table, append([]string{"Particulars"}, cols...)...)
		for i, r := range tab.Rows() {
			row := i + 1
			if r.Header {
				table.SetCell(row, 0, tview.NewTableCell(r.Label).SetTextColor(th.Header).SetAttributes(tcell.AttrBold).SetSelectable(false))
				for c := range cols {
					table.SetCell(row, c+1, tview.NewTableCell("").SetSelectable(false))
				}
				continue
			}
			table.SetCell(row, 0, cell(r.Label, th.TableRowMuted))
			for c, col := range cols {
				table.SetCell(row, c+1, cell(tab.Cell(tab.Statement(), r.Label, col), th.TableRow).SetAlign(tview.AlignRight))
			}
		}
	}

	selectedCell := func() (label, column string, ok bool) {
		row, col := table.GetSelection()
		rows, cols := tab.Rows(), tab.Columns()
		if row < 1 || row > len(rows) || col < 1 || col > len(cols) || rows[row-1].Header {
			return "", "", false
		}
		return rows[row-1].Label, cols[col-1], true
	}

	table.SetInputCapture(func(e *tcell.EventKey) *tcell.EventKey {
		if e.Key() == tcell.KeyTab {
			next := (optionIndex(workspace.StatementTypes, string(tab.Statement())) + 1) % len(workspace.StatementTypes)
			tab.SetStatement(workspace.StatementType(workspace.StatementTypes[next].Value))
			p.render()
			table.Select(1, 1)
			return nil
		}
		if e.Key() != tcell.KeyRune {
			return e
		}
		if tab.Statement() == workspace.StatementGST {
			switch e.Rune() {
			case 'e':
				row, _ := table.GetSelection()
				v.editFiling(tab.GST(), row-1, p.render)
			case 'g':
				v.editGSTRegistration(tab.GST(), p.render)
			default:
				return e
			}
			return nil
		}

		switch e.Rune() {
		case 'e':
			if label, col, ok := selectedCell(); ok {
				v.editFinancialCell(tab, label, col, p.render)
			}
		case 'a':
			if !tab.AddColumn() {
				ui.setStatusDirect("No more fiscal years can be added")
			}
			p.render()
		case 'x':
			_, col := table.GetSelection()
			if cols := tab.Columns(); col >= 1 && col <= len(cols) {
				tab.RemoveColumn(cols[col-1])
				p.render()
			}
		case 'r':
			_, col := table.GetSelection()
			if cols := tab.Columns(); col >= 1 && col <= len(cols) {
				v.renameYear(tab, cols[col-1], p.render)
			}
		default:
			return e
		}
		return nil
	})
	return p
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func filingColor(th Theme, st workspace.FilingStatus) tcell.Color {
	switch st {
	case workspace.FilingFiled:
		return hex(th.TagGreen)
	case workspace.FilingPending:
		return hex(th.TagYellow)
	case workspace.FilingDelayed:
		return hex(th.TagRed)
	}
	return th.TextMuted
}

func (v *detailView) editFinancialCell(tab *workspace.FinancialsTab, label, column string, done func()) {
	ui := v.ui
	stmt := tab.Statement()
	form := tview.NewForm()
	form.AddInputField("Value", tab.Cell(stmt, label, column), 24, nil, nil)
	form.AddButton("Save", func() {
		tab.SetCell(stmt, label, column, formText(form, "Value"))
		ui.popModalRoot()
		done()
	})
	form.AddButton("Cancel", ui.popModalRoot)
	ui.showForm(label+" · "+column, form, 50, 7)
}

func (v *detailView) renameYear(tab *workspace.FinancialsTab, from string, done func()) {
	ui := v.ui
	years := tab.FiscalYears()
	current := 0
	for i, y := range years {
		if y == from {
			current = i
		}
	}
	form := tview.NewForm()
	form.AddDropDown("Fiscal Year", years, current, nil)
	form.AddButton("Save", func() {
		_, to := form.GetFormItemByLabel("Fiscal Year").(*tview.DropDown).GetCurrentOption()
		if to != from && !tab.RenameColumn(from, to) {
			ui.setStatusDirect("%s is already shown", to)
		}
		ui.popModalRoot()
		done()
	})
	form.AddButton("Cancel", ui.popModalRoot)
	ui.showForm("Rename "+from, form, 44, 7)
}

func (v *detailView) editFiling(g *workspace.GSTState, i int, done func()) {
	ui := v.ui
	months := g.Months()
	if i < 0 || i >= len(months) {
		return
	}
	m := months[i]
	form := tview.NewForm()
	form.AddDropDown(string(workspace.GSTR1), optionLabels(workspace.FilingStatuses), optionIndex(workspace.FilingStatuses, string(m.GSTR1)), nil)
	form.AddDropDown(string(workspace.GSTR3B), optionLabels(workspace.FilingStatuses), optionIndex(workspace.FilingStatuses, string(m.GSTR3B)), nil)
	form.AddButton("Save", func() {
		g.SetFiling(i, workspace.GSTR1, workspace.FilingStatus(formOption(form, string(workspace.GSTR1), workspace.FilingStatuses)))
		g.SetFiling(i, workspace.GSTR3B, workspace.FilingStatus(formOption(form, string(workspace.GSTR3B), workspace.FilingStatuses)))
		ui.popModalRoot()
		done()
	})
	form.AddButton("Cancel", ui.popModalRoot)
	ui.showForm(m.Label, form, 44, 9)
}

func (v *detailView) editGSTRegistration(g *workspace.GSTState, done func()) {
	ui := v.ui
	form := tview.NewForm()
	form.AddInputField("GSTIN", g.GSTIN, 20, nil, nil)
	form.GetFormItemByLabel("GSTIN").(*tview.InputField).SetPlaceholder(workspace.GSTINPlaceholder)
	form.AddInputField("Registration Date", g.RegistrationDate, 12, nil, nil)
	form.AddDropDown("Compliance Rating", optionLabels(workspace.ComplianceRatings), optionIndex(workspace.ComplianceRatings, g.ComplianceRating), nil)
	form.AddDropDown("Filing Frequency", optionLabels(workspace.FilingFrequencies), optionIndex(workspace.FilingFrequencies, g.FilingFrequency), nil)
	form.AddButton("Save", func() {
		g.GSTIN = formText(form, "GSTIN")
		g.RegistrationDate = formText(form, "Registration Date")
		g.SetComplianceRating(formOption(form, "Compliance Rating", workspace.ComplianceRatings))
		g.SetFilingFrequency(formOption(form, "Filing Frequency", workspace.FilingFrequencies))
		ui.popModalRoot()
		done()
	})
	form.AddButton("Cancel", ui.popModalRoot)
	ui.showForm("GST Registration", form, 56, 13)
}

// PD++

func (v *detailView) pdPlusPane() *tabPane {
	ui, tab := v.ui, v.d.PDPlus()
	info := ui.newText("Personal Discussion  c:customer f:details k:call")
	people := ui.newTable("Participants  a:add d:remove e:rename")
	var ids []int

	p := &tabPane{focus: people}
	p.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(info, 0, 2, false).
		AddItem(people, 0, 1, true)

	p.render = func() {
		th := ui.theme
		sel := tab.Selected()
		var b strings.Builder
		fmt.Fprintf(&b, "[%s::b]%s[-::-]  [%s]%s · %s · %s (%s)[-]\n",
			th.TagTextPrimary, sel.Name, th.TagMuted, sel.Mobile, sel.Pincode, tab.AddressType(), tab.AddressStatus())
		fmt.Fprintf(&b, "[%s]PD Number[-] %s\n\n", th.TagMuted, workspace.OptionLabel(workspace.PDNumbers, tab.PDNumber))
		fmt.Fprintf(&b, "[%s::b]Summary[-::-]\n%s\n\n", th.TagAccent, orDash(tab.Summary))
		fmt.Fprintf(&b, "[%s::b]Key Highlights[-::-]\n", th.TagAccent)
		for i, h := range tab.Highlights {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, orDash(h))
		}
		fmt.Fprintf(&b, "\n[%s]Uploads: %s[-]", th.TagMuted, strings.Join(workspace.PDUploadTargets, " · "))
		info.SetText(b.String())

		people.Clear()
		ids = ids[:0]
		ui.setTableHeader(people, "#", "Name")
		for i, it := range tab.Participants() {
			people.SetCell(i+1, 0, cell(strconv.Itoa(i+1), th.TableRowMuted))
			people.SetCell(i+1, 1, cell(orDash(it.Value.Name), th.TableRow))
			ids = append(ids, it.ID)
		}
	}

	people.SetInputCapture(func(e *tcell.EventKey) *tcell.EventKey {
		if e.Key() != tcell.KeyRune {
			return e
		}
		id, ok := selectedID(people, ids)
		switch e.Rune() {
		case 'a':
			tab.AddParticipant()
			p.render()
			people.Select(people.GetRowCount()-1, 0)
		case 'd':
			if ok && !tab.RemoveParticipant(id) {
				ui.setStatusDirect("At least one participant is required")
			}
			p.render()
		case 'e':
			if ok {
				v.renameParticipant(tab, id, p.render)
			}
		case 'c':
			v.chooseCustomer(tab, p.render)
		case 'f':
			v.editPDDetails(tab, p.render)
		case 'k':
			v.callCustomer(tab)
		default:
			return e
		}
		return nil
	})
	return p
}

func (v *detailView) renameParticipant(tab *workspace.PDPlusTab, id int, done func()) {
	ui := v.ui
	name := ""
	for _, it := range tab.Participants() {
		if it.ID == id {
			name = it.Value.Name
		}
	}
	form := tview.NewForm()
	form.AddInputField("Name", name, 32, nil, nil)
	form.AddButton("Save", func() {
		tab.RenameParticipant(id, formText(form, "Name"))
		ui.popModalRoot()
		done()
	})
	form.AddButton("Cancel", ui.popModalRoot)
	ui.showForm("Participant", form, 50, 7)
}

func (v *detailView) chooseCustomer(tab *workspace.PDPlusTab, done func()) {
	ui := v.ui
	dir := tab.Directory()
	opts := make([]workspace.Option, len(dir))
	for i, c := range dir {
		opts[i] = workspace.Option{Value: c.ID, Label: c.Name}
	}
	form := tview.NewForm()
	form.AddDropDown("Customer", optionLabels(opts), optionIndex(opts, tab.Selected().ID), nil)
	form.AddButton("Select", func() {
		tab.Select(formOption(form, "Customer", opts))
		ui.popModalRoot()
		done()
	})
	form.AddButton("Cancel", ui.popModalRoot)
	ui.showForm("Select Customer", form, 48, 7)
}

func (v *detailView) editPDDetails(tab *workspace.PDPlusTab, done func()) {
	ui := v.ui
	form := tview.NewForm()
	form.AddDropDown("PD Number", optionLabels(workspace.PDNumbers), optionIndex(workspace.PDNumbers, tab.PDNumber), nil)
	form.AddTextArea("Summary", tab.Summary, 0, 4, 0, nil)
	for i, h := range tab.Highlights {
		form.AddInputField(fmt.Sprintf("Highlight %d", i+1), h, 48, nil, nil)
	}
	form.AddButton("Save", func() {
		tab.SetPDNumber(formOption(form, "PD Number", workspace.PDNumbers))
		tab.Summary = formText(form, "Summary")
		for i := 0; i < workspace.HighlightCount; i++ {
			tab.SetHighlight(i, formText(form, fmt.Sprintf("Highlight %d", i+1)))
		}
		ui.popModalRoot()
		done()
	})
	form.AddButton("Cancel", ui.popModalRoot)
	ui.showForm("PD Details", form, 70, 17)
}

func (v *detailView) callCustomer(tab *workspace.PDPlusTab) {
	ui := v.ui
	dlg := tab.OpenCall()
	ui.showChoice(dlg.Prompt+"\n\n"+dlg.Mobile, []string{"Later", "Call", "Call+"}, func(label string) {
		switch label {
		case "Call":
			ui.showMessage(tab.Call())
		case "Call+":
			ui.showMessage(tab.CallPlus())
		default:
			tab.Later()
		}
	})
}

// Credit++

func (v *detailView) creditPlusPane() *tabPane {
	ui, tab := v.ui, v.d.CreditPlus()
	tv := ui.newText("Credit++  m:model Enter:SEEKER v:result view")
	p := &tabPane{root: tv, focus: tv}

	p.render = func() {
		th := ui.theme
		var b strings.Builder
		for _, m := range workspace.AnalysisModels {
			marker, tag := "( )", th.TagMuted
			if m.ID == tab.Model() {
				marker, tag = "(•)", th.TagAccent
			}
			fmt.Fprintf(&b, "[%s::b]%s %s[-::-]\n    [%s]%s[-]\n", tag, marker, m.Name, th.TagMuted, m.Description)
		}
		seeker := "[ SEEKER ]"
		if tab.Processing() {
			seeker = "[ PROCESSING... ]"
		}
		fmt.Fprintf(&b, "\n[%s::b]%s[-::-]\n[%s]%s[-]\n", th.TagAccent, seeker, th.TagMuted, tab.StatusText())

		if res, ok := tab.Result(); ok {
			labels := optionLabels(workspace.ResultTabs)
			b.WriteString("\n" + renderTabBar(th, labels, optionIndex(workspace.ResultTabs, tab.ResultTab())) + "\n")
			if tab.ResultTab() == workspace.ResultSummary {
				fmt.Fprintf(&b, "Model               %s\n", res.Model)
				fmt.Fprintf(&b, "Credit++ Score      [%s::b]%d[-::-]\n", th.TagGreen, res.Score)
				fmt.Fprintf(&b, "Rating              %s\n", res.Rating)
				fmt.Fprintf(&b, "Percentile          %s\n", res.Percentile)
				fmt.Fprintf(&b, "Risk Level          %s\n", res.RiskLevel)
				fmt.Fprintf(&b, "Default Probability %s\n", res.DefaultProbability)
				fmt.Fprintf(&b, "Confidence          %s\n", res.Confidence)
			} else {
				fmt.Fprintf(&b, "[%s]%s[-]\n", th.TagMuted, workspace.ResultText(tab.ResultTab()))
			}
		}
		tv.SetText(b.String())
	}

	tv.SetInputCapture(func(e *tcell.EventKey) *tcell.EventKey {
		switch {
		case e.Key() == tcell.KeyEnter:
			v.confirmAnalysis(tab, p)
		case e.Key() == tcell.KeyRune && e.Rune() == 'm':
			if !tab.Processing() {
				next := 0
				for i, m := range workspace.AnalysisModels {
					if m.ID == tab.Model() {
						next = (i + 1) % len(workspace.AnalysisModels)
					}
				}
				tab.SelectModel(workspace.AnalysisModels[next].ID)
				p.render()
			}
		case e.Key() == tcell.KeyRune && e.Rune() == 'v':
			next := (optionIndex(workspace.ResultTabs, tab.ResultTab()) + 1) % len(workspace.ResultTabs)
			tab.SelectResultTab(workspace.ResultTabs[next].Value)
			p.render()
		default:
			return e
		}
		return nil
	})
	return p
}

func (v *detailView) confirmAnalysis(tab *workspace.CreditPlusTab, p *tabPane) {
	ui := v.ui
	dlg, ok := tab.OpenConfirm()
	if !ok {
		ui.setStatusDirect("Analysis already running")
		return
	}
	ui.showChoice(dlg.Title+"\n\n"+dlg.Body+"\n\n"+dlg.Question, []string{"Cancel", "Proceed"}, func(label string) {
		if label != "Proceed" {
			tab.DismissConfirm()
			return
		}
		v.startAnalysis(tab, p)
	})
}

// startAnalysis runs the confirmed analysis and redraws the pane when it
// finishes. Results of a closed view or a superseded run are dropped.
func (v *detailView) startAnalysis(tab *workspace.CreditPlusTab, p *tabPane) {
	ui, d := v.ui, v.d
	task := tab.Confirm()
	p.render()
	ui.goFetch(func() {
		<-task.Done()
		ui.queueUpdateDraw(func() {
			if ui.detail != d || tab.Task() != task {
				return
			}
			p.render()
			if res, err := task.Result(); err == nil {
				ui.recordAnalysis(d.ID(), res)
			}
		})
	})
}

// Placeholders

func (v *detailView) placeholderPane(t workspace.TabID) *tabPane {
	ui := v.ui
	tv := ui.newText("")
	p := &tabPane{root: tv, focus: tv}
	p.render = func() {
		title, body, _ := v.d.Placeholder(t)
		tv.SetTitle(" " + title + " ")
		tv.SetText(fmt.Sprintf("\n[%s]%s[-]", ui.theme.TagMuted, body))
	}
	return p
}

// Review & Submit

func (v *detailView) reviewPane() *tabPane {
	ui, tab := v.ui, v.d.Documents()
	docs := ui.newText("Documents  Tab:notes")
	form := tview.NewForm()
	form.SetBorder(true)
	form.SetTitle(" Notes ")
	form.SetTitleAlign(tview.AlignLeft)
	form.AddTextArea("Notes", tab.Notes, 0, 6, 0, func(text string) { tab.Notes = text })
	form.GetFormItemByLabel("Notes").(*tview.TextArea).SetPlaceholder(workspace.NotePlaceholder)
	form.AddButton("Save Note", func() {
		ui.showMessage(tab.SaveNote())
		ui.recordAction(v.d.ID(), store.ActionNote, map[string]interface{}{"note": tab.Notes})
	})
	form.SetCancelFunc(func() { ui.app.SetFocus(docs) })

	p := &tabPane{focus: docs}
	p.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(docs, 0, 1, true).
		AddItem(form, 11, 0, false)

	docs.SetInputCapture(func(e *tcell.EventKey) *tcell.EventKey {
		if e.Key() == tcell.KeyTab {
			ui.app.SetFocus(form)
			return nil
		}
		return e
	})

	p.render = func() {
		th := ui.theme
		ui.applyFormTheme(form)
		if msg := tab.EmptyMessage(); msg != "" {
			docs.SetText(fmt.Sprintf("[%s]%s[-]", th.TagMuted, msg))
			return
		}
		var b strings.Builder
		for _, d := range tab.Documents() {
			fmt.Fprintf(&b, "[%s]▪[-] %s  [%s]%s[-]\n", th.TagAccent, d.Name, th.TagMuted, d.Type)
		}
		docs.SetText(b.String())
	}
	return p
}
