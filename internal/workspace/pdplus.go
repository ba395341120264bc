package workspace

import "github.com/credit-eval/cet-console/internal/model"

var (
	PDNumbers       = plainOptions("PD #1", "PD #2", "PD #3")
	PDUploadTargets = []string{"PD Report", "Photos", "Supporting Documents"}
)

// HighlightCount is the number of key highlight fields.
const HighlightCount = 3

// PDCustomer is an entry of the PD customer directory.
type PDCustomer struct {
	ID      string
	Name    string
	Mobile  string
	Pincode string
}

// Participant is a person attending the personal discussion.
type Participant struct {
	Name string
}

// CallDialog is the confirmation shown before calling a customer.
type CallDialog struct {
	Prompt string
	Mobile string
}

// PDPlusTab is the personal-discussion workflow.
type PDPlusTab struct {
	directory    []PDCustomer
	selected     string
	participants *Collection[Participant]
	callOpen     bool

	PDNumber   string
	Summary    string
	Highlights [HighlightCount]string
}

// NewPDPlusTab selects the case customer and lists them as the first
// participant.
func NewPDPlusTab(c model.Case) *PDPlusTab {
	dir := []PDCustomer{
		{ID: "1", Name: c.CustomerName, Mobile: "9876543210", Pincode: "560001"},
		{ID: "2", Name: "Jane Smith", Mobile: "8765432109", Pincode: "400001"},
		{ID: "3", Name: "Robert Johnson", Mobile: "7654321098", Pincode: "110001"},
	}
	return &PDPlusTab{
		directory:    dir,
		selected:     dir[0].ID,
		participants: NewCollection(1, Participant{Name: c.CustomerName}),
		PDNumber:     PDNumbers[0].Value,
	}
}

// Directory returns the selectable customers.
func (t *PDPlusTab) Directory() []PDCustomer {
	return append([]PDCustomer(nil), t.directory...)
}

// Select picks the customer with id.
func (t *PDPlusTab) Select(id string) bool {
	for _, c := range t.directory {
		if c.ID == id {
			t.selected = id
			return true
		}
	}
	return false
}

// Selected returns the chosen customer, falling back to the first.
func (t *PDPlusTab) Selected() PDCustomer {
	for _, c := range t.directory {
		if c.ID == t.selected {
			return c
		}
	}
	return t.directory[0]
}

// AddressType and AddressStatus describe the selected customer's address.
func (t *PDPlusTab) AddressType() string   { return "Residential" }
func (t *PDPlusTab) AddressStatus() string { return "Verified" }

// SetPDNumber picks the discussion round.
func (t *PDPlusTab) SetPDNumber(v string) bool {
	if !hasOption(PDNumbers, v) {
		return false
	}
	t.PDNumber = v
	return true
}

// SetHighlight sets key highlight i, counted from zero.
func (t *PDPlusTab) SetHighlight(i int, text string) bool {
	if i < 0 || i >= HighlightCount {
		return false
	}
	t.Highlights[i] = text
	return true
}

// Participants returns the attendee list.
func (t *PDPlusTab) Participants() []Item[Participant] { return t.participants.Items() }

// AddParticipant appends an empty attendee.
func (t *PDPlusTab) AddParticipant() int { return t.participants.Add(Participant{}) }

// RemoveParticipant deletes an attendee, keeping at least one.
func (t *PDPlusTab) RemoveParticipant(id int) bool { return t.participants.Remove(id) }

// RenameParticipant sets an attendee's name.
func (t *PDPlusTab) RenameParticipant(id int, name string) bool {
	return t.participants.Update(id, func(p *Participant) { p.Name = name })
}

// OpenCall shows the call confirmation for the selected customer.
func (t *PDPlusTab) OpenCall() CallDialog {
	t.callOpen = true
	return CallDialog{Prompt: "Call this number?", Mobile: t.Selected().Mobile}
}

func (t *PDPlusTab) CallOpen() bool { return t.callOpen }

// Later dismisses the call dialog.
func (t *PDPlusTab) Later() { t.callOpen = false }

// Call dismisses the dialog and acknowledges a plain call.
func (t *PDPlusTab) Call() string {
	t.callOpen = false
	return "Calling " + t.Selected().Mobile
}

// CallPlus dismisses the dialog and acknowledges an enhanced call.
func (t *PDPlusTab) CallPlus() string {
	t.callOpen = false
	return "Initiating enhanced call with " + t.Selected().Mobile
}
