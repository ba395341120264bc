package workspace

import "github.com/credit-eval/cet-console/internal/model"

// NoDocumentsMessage replaces an empty document list.
const NoDocumentsMessage = "No documents uploaded"

// DocumentsTab is the review tab: uploaded documents and case notes.
type DocumentsTab struct {
	docs  []model.Document
	Notes string
}

// NewDocumentsTab lists the case documents and seeds notes from comments.
func NewDocumentsTab(c model.Case) *DocumentsTab {
	return &DocumentsTab{
		docs:  append([]model.Document(nil), c.Details.Additional.Documents...),
		Notes: c.Details.Additional.Comments,
	}
}

// Documents returns the uploaded documents.
func (t *DocumentsTab) Documents() []model.Document {
	return append([]model.Document(nil), t.docs...)
}

// EmptyMessage is shown when no documents exist, and is empty otherwise.
func (t *DocumentsTab) EmptyMessage() string {
	if len(t.docs) == 0 {
		return NoDocumentsMessage
	}
	return ""
}

// SaveNote acknowledges the notes field. Nothing is written back.
func (t *DocumentsTab) SaveNote() string {
	return NoteSavedMessage
}
