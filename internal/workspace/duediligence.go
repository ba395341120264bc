package workspace

import "fmt"

var (
	// CheckHeadings are the fixed checks and the choices for added cards.
	CheckHeadings = []string{"Online Activity", "Media Check", "Residence checks", "Online Risk Check"}

	CheckSources = []Option{
		{Value: "google", Label: "Google"},
		{Value: "linkedin", Label: "LinkedIn"},
		{Value: "facebook", Label: "Facebook"},
		{Value: "twitter", Label: "Twitter"},
		{Value: "instagram", Label: "Instagram"},
		{Value: "official", Label: "Official Records"},
		{Value: "field", Label: "Field Visit"},
		{Value: "other", Label: "Other"},
	}
	AnalysisTypes = []Option{
		{Value: "basic", Label: "Basic"},
		{Value: "deep", Label: "Deep"},
	}
)

// CheckCard is one due-diligence check.
type CheckCard struct {
	Heading     string
	Source      string
	Result      string
	Remarks     string
	DocAttached bool
	Assisted    bool
}

// HistoryCard is a free-text narrative edited through a view/edit dialog.
type HistoryCard struct {
	Title   string
	Content string

	open    bool
	editing bool
	draft   string
}

// Expand opens the dialog in view mode.
func (h *HistoryCard) Expand() {
	h.open, h.editing = true, false
}

// Edit opens the dialog in edit mode with a fresh draft.
func (h *HistoryCard) Edit() {
	h.open, h.editing = true, true
	h.draft = h.Content
}

// SetDraft replaces the edit buffer.
func (h *HistoryCard) SetDraft(s string) { h.draft = s }

// Draft returns the edit buffer.
func (h *HistoryCard) Draft() string { return h.draft }

// Save commits the draft and closes the dialog.
func (h *HistoryCard) Save() {
	if h.editing {
		h.Content = h.draft
	}
	h.open, h.editing = false, false
}

// Dismiss closes the dialog, dropping the draft.
func (h *HistoryCard) Dismiss() {
	h.open, h.editing = false, false
}

func (h *HistoryCard) Open() bool    { return h.open }
func (h *HistoryCard) Editing() bool { return h.editing }

// DueDiligenceTab holds the history narratives and the check cards.
type DueDiligenceTab struct {
	history []*HistoryCard
	cards   *Collection[CheckCard]
	fixed   int

	URLs         string
	AnalysisType string
}

// NewDueDiligenceTab returns the three narratives and the four fixed checks.
func NewDueDiligenceTab() *DueDiligenceTab {
	seed := make([]CheckCard, len(CheckHeadings))
	for i, h := range CheckHeadings {
		seed[i] = CheckCard{Heading: h}
	}
	t := &DueDiligenceTab{
		history: []*HistoryCard{
			{Title: "Business Model", Content: "The business is a medium-sized manufacturing company specializing in automotive parts. They operate with a B2B model, supplying to major car manufacturers across the country. Their revenue streams include direct sales to manufacturers, aftermarket parts distribution, and recently developed maintenance service contracts."},
			{Title: "Background", Content: "Founded in 2010, the company has grown steadily over the past decade. The founder has 15+ years of experience in the automotive industry. The business survived the economic downturn in 2020 by pivoting to include essential vehicle parts. They have maintained good relationships with suppliers and have a reliable customer base."},
			{Title: "Fund Requirement Reasons", Content: "The company seeks funding primarily for capacity expansion due to increased demand from two major automotive manufacturers. Secondary use of funds includes modernizing equipment to improve efficiency and reduce costs. They also plan to allocate a portion for developing new product lines to diversify revenue streams."},
		},
		cards:        NewCollection(len(seed), seed...),
		fixed:        len(seed),
		AnalysisType: "basic",
	}
	t.cards.SetRemovable(func(it Item[CheckCard]) bool { return t.Dynamic(it.ID) })
	return t
}

// History returns the narrative cards.
func (t *DueDiligenceTab) History() []*HistoryCard { return t.history }

// Cards returns the check cards in display order.
func (t *DueDiligenceTab) Cards() []Item[CheckCard] { return t.cards.Items() }

// Dynamic reports whether card id was added by the user.
func (t *DueDiligenceTab) Dynamic(id int) bool { return id > t.fixed }

// AddCard appends a check headed with the first heading.
func (t *DueDiligenceTab) AddCard() int {
	return t.cards.Add(CheckCard{Heading: CheckHeadings[0]})
}

// RemoveCard deletes an added check. The fixed checks stay.
func (t *DueDiligenceTab) RemoveCard(id int) bool { return t.cards.Remove(id) }

// SetHeading changes the heading of an added check.
func (t *DueDiligenceTab) SetHeading(id int, heading string) bool {
	if !t.Dynamic(id) {
		return false
	}
	return t.cards.Update(id, func(c *CheckCard) { c.Heading = heading })
}

// UpdateCard edits the source, result and remarks or toggles of a check.
func (t *DueDiligenceTab) UpdateCard(id int, fn func(*CheckCard)) bool {
	return t.cards.Update(id, func(c *CheckCard) {
		heading := c.Heading
		fn(c)
		c.Heading = heading
	})
}

// ToggleDoc flips the attached-document marker of a check.
func (t *DueDiligenceTab) ToggleDoc(id int) bool {
	return t.cards.Update(id, func(c *CheckCard) { c.DocAttached = !c.DocAttached })
}

// ToggleAssist flips the AI-assist marker of a check.
func (t *DueDiligenceTab) ToggleAssist(id int) bool {
	return t.cards.Update(id, func(c *CheckCard) { c.Assisted = !c.Assisted })
}

// Connect acknowledges the Connect+ URL analysis dialog.
func (t *DueDiligenceTab) Connect() string {
	kind := "Deep"
	if t.AnalysisType == "basic" {
		kind = "Basic"
	}
	return fmt.Sprintf("Processing %s analysis for URLs: %s", kind, t.URLs)
}
