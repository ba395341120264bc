package model

// Case is a loan application tracked through the evaluation workflow.
type Case struct {
	ID           string      `json:"id" yaml:"id"`
	CustomerName string      `json:"customerName" yaml:"customerName"`
	Status       Status      `json:"status" yaml:"status"`
	AssignedTo   string      `json:"assignedTo" yaml:"assignedTo"`
	LoanAmount   float64     `json:"loanAmount" yaml:"loanAmount"`
	Timestamp    string      `json:"timestamp" yaml:"timestamp"`
	Details      CaseDetails `json:"details" yaml:"details"`
}

// CaseDetails aggregates the sections shown in the case workspace.
type CaseDetails struct {
	Basics     Basics     `json:"basics" yaml:"basics"`
	Banking    Banking    `json:"banking" yaml:"banking"`
	Bureau     Bureau     `json:"bureau" yaml:"bureau"`
	Financials Financials `json:"financials" yaml:"financials"`
	PDDetails  PDDetails  `json:"pdDetails" yaml:"pdDetails"`
	Additional Additional `json:"additional" yaml:"additional"`
}

type Basics struct {
	Name              string  `json:"name" yaml:"name"`
	Age               int     `json:"age" yaml:"age"`
	Occupation        string  `json:"occupation" yaml:"occupation"`
	BusinessType      string  `json:"businessType" yaml:"businessType"`
	YearsInBusiness   int     `json:"yearsInBusiness" yaml:"yearsInBusiness"`
	EstablishmentYear int     `json:"establishmentYear" yaml:"establishmentYear"`
	AnnualIncome      float64 `json:"annualIncome" yaml:"annualIncome"`
}

type Banking struct {
	BankName       string        `json:"bankName" yaml:"bankName"`
	AccountNumber  string        `json:"accountNumber" yaml:"accountNumber"`
	AverageBalance float64       `json:"averageBalance" yaml:"averageBalance"`
	Transactions   []Transaction `json:"transactions" yaml:"transactions"`
}

type Transaction struct {
	ID          string  `json:"id,omitempty" yaml:"id,omitempty"`
	Date        string  `json:"date" yaml:"date"`
	Amount      float64 `json:"amount" yaml:"amount"`
	Type        string  `json:"type" yaml:"type"`
	Description string  `json:"description" yaml:"description"`
}

type Bureau struct {
	CreditScore      int            `json:"creditScore" yaml:"creditScore"`
	ReportDate       string         `json:"reportDate" yaml:"reportDate"`
	OutstandingLoans int            `json:"outstandingLoans" yaml:"outstandingLoans"`
	PaymentHistory   []PaymentEntry `json:"paymentHistory" yaml:"paymentHistory"`
}

// PaymentEntry status is one of on_time, late, missed.
type PaymentEntry struct {
	ID     string  `json:"id,omitempty" yaml:"id,omitempty"`
	Date   string  `json:"date" yaml:"date"`
	Status string  `json:"status" yaml:"status"`
	Amount float64 `json:"amount" yaml:"amount"`
}

type Financials struct {
	MonthlyIncome   float64 `json:"monthlyIncome" yaml:"monthlyIncome"`
	MonthlyExpenses float64 `json:"monthlyExpenses" yaml:"monthlyExpenses"`
	ProfitMargin    float64 `json:"profitMargin" yaml:"profitMargin"`
}

// PDDetails carries the upstream risk assessment. ProbabilityOfDefault is a
// fraction and is expected in [0,1]; nothing enforces that.
type PDDetails struct {
	ProbabilityOfDefault float64 `json:"probabilityOfDefault" yaml:"probabilityOfDefault"`
	RiskScore            int     `json:"riskScore" yaml:"riskScore"`
	RiskCategory         string  `json:"riskCategory" yaml:"riskCategory"`
}

type Additional struct {
	Notes             string     `json:"notes" yaml:"notes"`
	DocumentsUploaded int        `json:"documentsUploaded" yaml:"documentsUploaded"`
	CompletionStatus  float64    `json:"completionStatus" yaml:"completionStatus"`
	Documents         []Document `json:"documents" yaml:"documents"`
	Comments          string     `json:"comments" yaml:"comments"`
}

type Document struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}
