package workspace

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/credit-eval/cet-console/internal/model"
)

const (
	dobLayout      = "2006-01-02"
	verifiedLayout = "2006-01-02T15:04:05"
	maturityYears  = 5
	maxPincodeLen  = 6
)

var (
	ApplicantTypes = plainOptions("Applicant", "Co-applicant")
	Relationships  = plainOptions("Proprietorship", "Trust", "Society", "Pvt Ltd")
	PropertyTypes  = plainOptions("Residential", "Commercial", "Industrial", "Agricultural", "Mixed-use")
	AddressUsages  = []Option{
		{Value: "Residence", Label: "Residence"},
		{Value: "Business", Label: "Business"},
		{Value: "Office", Label: "Office"},
		{Value: "Warehouse", Label: "Warehouse"},
		{Value: "Mailing", Label: "Mailing Only"},
		{Value: "Other", Label: "Other"},
	}
	Verifications = []Option{
		{Value: string(VerifyPositive), Label: "Positive"},
		{Value: string(VerifyPending), Label: "Pending"},
		{Value: string(VerifyNegative), Label: "Negative"},
	}
)

// Verification is the field-check outcome of an address.
type Verification string

const (
	VerifyPositive Verification = "positive"
	VerifyPending  Verification = "pending"
	VerifyNegative Verification = "negative"
)

// CustomerRow is one person on the case roster.
type CustomerRow struct {
	ApplicantType  string
	Name           string
	Relationship   string
	Shareholding   string
	BureauScore    int
	DOB            string
	Age            int
	AgeAtMaturity  int
	Mobile         string
	MobileVerified bool
	VerifiedAt     string
	Selected       bool
}

// AddressRow is one address linked to a roster row by its id.
type AddressRow struct {
	CustomerID   string
	PropertyType string
	Address      string
	Pincode      string
	UsedFor      string
	Verification Verification
}

// CustomersTab holds the roster and address grids.
type CustomersTab struct {
	now       func() time.Time
	customers *Collection[CustomerRow]
	addresses *Collection[AddressRow]
}

// NewCustomersTab seeds the roster with the case applicant and one address.
func NewCustomersTab(c model.Case, now func() time.Time) *CustomersTab {
	if now == nil {
		now = time.Now
	}
	age := c.Details.Basics.Age
	t := &CustomersTab{
		now: now,
		customers: NewCollection(1, CustomerRow{
			ApplicantType:  "Applicant",
			Name:           c.Details.Basics.Name,
			Relationship:   "Proprietorship",
			Shareholding:   "100%",
			BureauScore:    750,
			DOB:            "1985-01-15",
			Age:            age,
			AgeAtMaturity:  age + maturityYears,
			Mobile:         "9876543210",
			MobileVerified: true,
			VerifiedAt:     "2023-11-15T14:30:00",
			Selected:       true,
		}),
	}
	t.addresses = NewCollection(1, AddressRow{
		CustomerID:   "1",
		PropertyType: "Residential",
		Address:      "123 Main Street, Bangalore",
		Pincode:      "560001",
		UsedFor:      "Residence",
		Verification: VerifyPositive,
	})
	return t
}

// Customers returns the roster in display order.
func (t *CustomersTab) Customers() []Item[CustomerRow] { return t.customers.Items() }

// Customer returns the roster row with id.
func (t *CustomersTab) Customer(id int) (CustomerRow, bool) { return t.customers.Get(id) }

// AddCustomer appends an empty co-applicant row.
func (t *CustomersTab) AddCustomer() int {
	return t.customers.Add(CustomerRow{ApplicantType: "Co-applicant", Relationship: "Proprietorship"})
}

// RemoveCustomer deletes a roster row, keeping at least one.
func (t *CustomersTab) RemoveCustomer(id int) bool { return t.customers.Remove(id) }

// UpdateCustomer edits a roster row in place.
func (t *CustomersTab) UpdateCustomer(id int, fn func(*CustomerRow)) bool {
	return t.customers.Update(id, fn)
}

// SetDOB stores the date of birth and recomputes both ages. A date that does
// not parse leaves the ages unchanged.
func (t *CustomersTab) SetDOB(id int, dob string) bool {
	now := t.now()
	return t.customers.Update(id, func(r *CustomerRow) {
		r.DOB = dob
		born, err := time.Parse(dobLayout, dob)
		if err != nil {
			return
		}
		r.Age = AgeOn(born, now)
		r.AgeAtMaturity = r.Age + maturityYears
	})
}

// AgeOn returns the completed years between born and now.
func AgeOn(born, now time.Time) int {
	age := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}
	return age
}

// ToggleMobileVerified flips the mobile verification flag. Verifying stamps
// the current time; unverifying keeps the last stamp.
func (t *CustomersTab) ToggleMobileVerified(id int) bool {
	now := t.now()
	return t.customers.Update(id, func(r *CustomerRow) {
		r.MobileVerified = !r.MobileVerified
		if r.MobileVerified {
			r.VerifiedAt = now.Format(verifiedLayout)
		}
	})
}

// MobileButtonLabel is the caption of the verification dialog action.
func MobileButtonLabel(verified bool) string {
	if verified {
		return "Mark as Unverified"
	}
	return "Mark as Verified"
}

// Addresses returns the address grid in display order.
func (t *CustomersTab) Addresses() []Item[AddressRow] { return t.addresses.Items() }

// Address returns the address row with id.
func (t *CustomersTab) Address(id int) (AddressRow, bool) { return t.addresses.Get(id) }

// AddAddress appends a pending address linked to the first roster row.
func (t *CustomersTab) AddAddress() int {
	first := ""
	if it, ok := t.customers.At(0); ok {
		first = strconv.Itoa(it.ID)
	}
	return t.addresses.Add(AddressRow{
		CustomerID:   first,
		PropertyType: "Residential",
		UsedFor:      "Residence",
		Verification: VerifyPending,
	})
}

// RemoveAddress deletes an address row, keeping at least one.
func (t *CustomersTab) RemoveAddress(id int) bool { return t.addresses.Remove(id) }

// UpdateAddress edits an address row in place.
func (t *CustomersTab) UpdateAddress(id int, fn func(*AddressRow)) bool {
	return t.addresses.Update(id, fn)
}

// SetPincode keeps the digits of pin, at most six.
func (t *CustomersTab) SetPincode(id int, pin string) bool {
	return t.addresses.Update(id, func(r *AddressRow) {
		r.Pincode = CleanPincode(pin)
	})
}

// CleanPincode drops non-digits and truncates to six characters.
func CleanPincode(pin string) string {
	var b strings.Builder
	for _, r := range pin {
		if b.Len() == maxPincodeLen {
			break
		}
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SetVerification sets the verification outcome of an address.
func (t *CustomersTab) SetVerification(id int, v Verification) bool {
	if !hasOption(Verifications, string(v)) {
		return false
	}
	return t.addresses.Update(id, func(r *AddressRow) {
		r.Verification = v
	})
}

// CustomerOptions lists the roster for the address customer selector.
func (t *CustomersTab) CustomerOptions() []Option {
	var out []Option
	for _, it := range t.customers.Items() {
		label := it.Value.Name
		if label == "" {
			label = "Customer " + strconv.Itoa(it.ID)
		}
		out = append(out, Option{Value: strconv.Itoa(it.ID), Label: label})
	}
	return out
}
