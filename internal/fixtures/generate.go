package fixtures

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/credit-eval/cet-console/internal/model"
)

var (
	occupations   = []string{"Self-employed", "Salaried", "Business Owner", "Entrepreneur", "Freelancer"}
	businessTypes = []string{"Retail", "Services", "Manufacturing", "Technology", "Healthcare"}
	assignees     = []string{"Rahul Sharma", "Priya Patel", "Amar Singh", "Diya Kapoor"}
	banks         = []string{"HDFC Bank", "SBI", "ICICI Bank", "Axis Bank", "Kotak Mahindra"}
	riskLabels    = []string{"Low Risk", "Medium Risk", "High Risk"}
	docTypes      = []string{"ID Proof", "Address Proof", "Income Proof", "Bank Statement"}
)

// Generator produces random dummy cases for load and demo data.
type Generator struct {
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator returns a generator seeded with seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed)), now: time.Now}
}

// Generate returns n cases with ids CASE0001..CASEnnnn.
func (g *Generator) Generate(n int) []model.Case {
	cases := make([]model.Case, 0, n)
	for i := 1; i <= n; i++ {
		cases = append(cases, g.one(i))
	}
	return cases
}

func (g *Generator) one(i int) model.Case {
	now := g.now()
	statuses := model.Statuses()

	fin := model.Financials{
		MonthlyIncome:   float64(g.between(50000, 500000)),
		MonthlyExpenses: float64(g.between(20000, 200000)),
		ProfitMargin:    g.uniform(0.1, 0.4),
	}

	docs := make([]model.Document, g.between(0, 3))
	for j := range docs {
		docs[j] = model.Document{Name: fmt.Sprintf("Doc_%d.pdf", j+1), Type: g.pick(docTypes)}
	}

	name := fmt.Sprintf("Customer %d", i)
	return model.Case{
		ID:           fmt.Sprintf("CASE%04d", i),
		CustomerName: name,
		Status:       statuses[g.rng.Intn(len(statuses))],
		AssignedTo:   g.pick(assignees),
		LoanAmount:   float64(g.between(100000, 10000000)),
		Timestamp:    now.AddDate(0, 0, -g.between(0, 30)).Format("2006-01-02T15:04:05"),
		Details: model.CaseDetails{
			Basics: model.Basics{
				Name:              name,
				Age:               g.between(25, 60),
				Occupation:        g.pick(occupations),
				BusinessType:      g.pick(businessTypes),
				YearsInBusiness:   g.between(1, 20),
				EstablishmentYear: g.between(1990, 2020),
				AnnualIncome:      fin.MonthlyIncome * 12,
			},
			Banking: model.Banking{
				BankName:       g.pick(banks),
				AccountNumber:  fmt.Sprintf("XXXX%d", g.between(1000, 9999)),
				AverageBalance: float64(g.between(50000, 1000000)),
				Transactions:   []model.Transaction{},
			},
			Bureau: model.Bureau{
				CreditScore:      g.between(600, 850),
				ReportDate:       now.AddDate(0, 0, -g.between(1, 60)).Format("2006-01-02"),
				OutstandingLoans: g.between(0, 5),
				PaymentHistory:   []model.PaymentEntry{},
			},
			Financials: fin,
			PDDetails: model.PDDetails{
				ProbabilityOfDefault: g.uniform(0.01, 0.15),
				RiskScore:            g.between(60, 95),
				RiskCategory:         g.pick(riskLabels),
			},
			Additional: model.Additional{
				Notes:             "These are sample notes for the case.",
				DocumentsUploaded: len(docs),
				CompletionStatus:  g.uniform(0.1, 1.0),
				Documents:         docs,
				Comments:          "Sample comments about this case",
			},
		},
	}
}

// between returns an int in [lo, hi].
func (g *Generator) between(lo, hi int) int {
	return lo + g.rng.Intn(hi-lo+1)
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func (g *Generator) pick(pool []string) string {
	return pool[g.rng.Intn(len(pool))]
}
