package models

// Payment methods accepted by both ledgers.
const (
	MethodCash         = "Cash"
	MethodUPI          = "UPI"
	MethodCard         = "Card"
	MethodBankTransfer = "Bank Transfer"
	MethodCheck        = "Check"
)

// PaymentMethods lists every accepted method in display order.
var PaymentMethods = []string{MethodCash, MethodUPI, MethodCard, MethodBankTransfer, MethodCheck}

// PaymentStatusValue is the only status ever written to a history entry.
const PaymentStatusValue = "Paid"

// StudentPaymentInput records a fee payment.
type StudentPaymentInput struct {
	Amount float64 `json:"amount" validate:"gt=0"`
	Method string  `json:"method" validate:"omitempty,paymentmethod"`
	Notes  string  `json:"notes"`
}

// SalaryPaymentInput records a salary payment. BaseSalary defaults to the employee's.
type SalaryPaymentInput struct {
	BaseSalary *float64 `json:"baseSalary" validate:"omitempty,gte=0"`
	Deductions float64  `json:"deductions" validate:"gte=0"`
	Bonuses    float64  `json:"bonuses" validate:"gte=0"`
	Method     string   `json:"method" validate:"omitempty,paymentmethod"`
	Notes      string   `json:"notes"`
	Month      string   `json:"month"`
	Date       string   `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// LedgerEntry is a flattened payment row used by reports.
type LedgerEntry struct {
	PaymentID int64
	Date      string
	Month     string
	Party     string
	Reference string
	Method    string
	Amount    float64
	Notes     string
}
