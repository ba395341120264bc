// Package fixtures provides sample cases for local development and tests.
package fixtures

import "github.com/credit-eval/cet-console/internal/model"

// MockCases returns the three reference cases, one per workflow status.
func MockCases() []model.Case {
	return []model.Case{
		mockCase("CAS001", "John Doe", 500000, model.StatusAssigned, "2024-01-15T10:00:00",
			model.Basics{Name: "John Doe", Age: 35, Occupation: "Personal Loan", AnnualIncome: 1200000},
			model.Banking{BankName: "State Bank", AccountNumber: "1234567890", AverageBalance: 100000},
			model.Bureau{CreditScore: 750, OutstandingLoans: 0},
			model.Financials{MonthlyIncome: 100000, MonthlyExpenses: 40000},
			model.PDDetails{ProbabilityOfDefault: 0.05, RiskScore: 85, RiskCategory: "Low Risk"},
		),
		mockCase("CAS002", "Jane Smith", 750000, model.StatusDraft, "2024-01-18T11:30:00",
			model.Basics{Name: "Jane Smith", Age: 42, Occupation: "Home Loan", AnnualIncome: 2500000},
			model.Banking{BankName: "HDFC Bank", AccountNumber: "9876543210", AverageBalance: 350000},
			model.Bureau{CreditScore: 820, OutstandingLoans: 1},
			model.Financials{MonthlyIncome: 208000, MonthlyExpenses: 75000},
			model.PDDetails{ProbabilityOfDefault: 0.02, RiskScore: 92, RiskCategory: "Very Low Risk"},
		),
		mockCase("CAS003", "Robert Johnson", 1200000, model.StatusSubmitted, "2024-01-20T09:15:00",
			model.Basics{Name: "Robert Johnson", Age: 38, Occupation: "Business Loan", AnnualIncome: 3000000},
			model.Banking{BankName: "Axis Bank", AccountNumber: "1122334455", AverageBalance: 420000},
			model.Bureau{CreditScore: 780, OutstandingLoans: 2},
			model.Financials{MonthlyIncome: 250000, MonthlyExpenses: 100000},
			model.PDDetails{ProbabilityOfDefault: 0.03, RiskScore: 88, RiskCategory: "Low Risk"},
		),
	}
}

func mockCase(id, name string, amount float64, status model.Status, ts string,
	basics model.Basics, banking model.Banking, bureau model.Bureau,
	fin model.Financials, pd model.PDDetails) model.Case {
	banking.Transactions = []model.Transaction{}
	bureau.PaymentHistory = []model.PaymentEntry{}
	return model.Case{
		ID:           id,
		CustomerName: name,
		Status:       status,
		LoanAmount:   amount,
		Timestamp:    ts,
		Details: model.CaseDetails{
			Basics:     basics,
			Banking:    banking,
			Bureau:     bureau,
			Financials: fin,
			PDDetails:  pd,
			Additional: model.Additional{Documents: []model.Document{}},
		},
	}
}
