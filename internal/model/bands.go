package model

// Tone is the color family used to highlight a metric.
type Tone string

const (
	ToneNeutral Tone = "neutral"
	ToneGreen   Tone = "green"
	ToneBlue    Tone = "blue"
	ToneYellow  Tone = "yellow"
	ToneRed     Tone = "red"
)

// Credit score band thresholds, inclusive at the lower bound.
const (
	ExcellentScore = 750
	GoodScore      = 700
	FairScore      = 650
)

// Probability of default color thresholds, exclusive at the upper bound.
const (
	LowPD    = 0.03
	MediumPD = 0.07
)

// CreditBand returns the qualitative label for a bureau score.
func CreditBand(score int) string {
	switch {
	case score >= ExcellentScore:
		return "Excellent"
	case score >= GoodScore:
		return "Good"
	case score >= FairScore:
		return "Fair"
	default:
		return "Poor"
	}
}

// CreditTone returns the highlight color for a bureau score.
func CreditTone(score int) Tone {
	switch {
	case score >= ExcellentScore:
		return ToneGreen
	case score >= GoodScore:
		return ToneBlue
	case score >= FairScore:
		return ToneYellow
	default:
		return ToneRed
	}
}

// PDTone returns the highlight color for a probability of default.
func PDTone(pd float64) Tone {
	switch {
	case pd < LowPD:
		return ToneGreen
	case pd < MediumPD:
		return ToneYellow
	default:
		return ToneRed
	}
}
