package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreditBandBoundaries(t *testing.T) {
	cases := []struct {
		score int
		band  string
		tone  Tone
	}{
		{850, "Excellent", ToneGreen},
		{750, "Excellent", ToneGreen},
		{749, "Good", ToneBlue},
		{700, "Good", ToneBlue},
		{699, "Fair", ToneYellow},
		{650, "Fair", ToneYellow},
		{649, "Poor", ToneRed},
		{0, "Poor", ToneRed},
	}
	for _, c := range cases {
		assert.Equal(t, c.band, CreditBand(c.score), "score %d", c.score)
		assert.Equal(t, c.tone, CreditTone(c.score), "score %d", c.score)
	}
}

func TestPDTone(t *testing.T) {
	assert.Equal(t, ToneGreen, PDTone(0))
	assert.Equal(t, ToneGreen, PDTone(0.0299))
	assert.Equal(t, ToneYellow, PDTone(0.03))
	assert.Equal(t, ToneYellow, PDTone(0.0699))
	assert.Equal(t, ToneRed, PDTone(0.07))
	assert.Equal(t, ToneRed, PDTone(0.15))
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"assigned", "Draft", " submitted "} {
		st, err := ParseStatus(s)
		require.NoError(t, err)
		assert.True(t, st.Valid())
	}

	_, err := ParseStatus("approved")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidStatus))
	assert.False(t, Status("Assigned").Valid())
	assert.Equal(t, []Status{StatusAssigned, StatusDraft, StatusSubmitted}, Statuses())
	assert.Equal(t, "Drafts", StatusDraft.Label())
}

func TestFormatINR(t *testing.T) {
	assert.Equal(t, "₹500,000", FormatINR(500000))
	assert.Equal(t, "₹1,200,000", FormatINR(1200000))
	assert.Equal(t, "₹999", FormatINR(999))
	assert.Equal(t, "₹0", FormatINR(0))
	assert.Equal(t, "₹1,234.5", FormatINR(1234.5))
	assert.Equal(t, "₹-12,000", FormatINR(-12000))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "5.0%", FormatPercent(0.05))
	assert.Equal(t, "2.0%", FormatPercent(0.02))
	assert.Equal(t, "12.5%", FormatPercent(0.125))
}

func TestMaskAccount(t *testing.T) {
	assert.Equal(t, "XXXX7890", MaskAccount("1234567890"))
	assert.Equal(t, "XXXX1234", MaskAccount("XXXX1234"))
	assert.Equal(t, "XXXX12", MaskAccount("12"))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "15 Nov 2023", FormatDate("2023-11-15T14:30:00"))
	assert.Equal(t, "01 Feb 2024", FormatDate("2024-02-01T09:00:00Z"))
	assert.Equal(t, "not a date", FormatDate("not a date"))
}
