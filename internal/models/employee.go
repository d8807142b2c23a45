package models

// Employee payment status values.
const (
	PaymentStatusPaid    = "Paid"
	PaymentStatusPending = "Pending"
)

// Employee status values.
const (
	EmployeeActive   = "Active"
	EmployeeInactive = "Inactive"
)

// Employee is a payroll record.
type Employee struct {
	ID              int             `json:"id"`
	EmployeeID      string          `json:"employeeId"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	Department      string          `json:"department"`
	Position        string          `json:"position"`
	BaseSalary      float64         `json:"baseSalary"`
	JoiningDate     string          `json:"joiningDate"`
	Status          string          `json:"status"`
	BankAccount     string          `json:"bankAccount"`
	Address         string          `json:"address"`
	PaymentHistory  []SalaryPayment `json:"paymentHistory"`
	TotalPaid       float64         `json:"totalPaid"`
	LastPaymentDate *string         `json:"lastPaymentDate,omitempty"`
	PaymentStatus   string          `json:"paymentStatus"`
}

// SalaryPayment is one entry in an employee's payment history.
type SalaryPayment struct {
	ID         int     `json:"id"`
	PaymentID  int64   `json:"paymentId,omitempty"`
	Date       string  `json:"date"`
	Month      string  `json:"month"`
	BaseSalary float64 `json:"baseSalary"`
	Deductions float64 `json:"deductions"`
	Bonuses    float64 `json:"bonuses"`
	NetSalary  float64 `json:"netSalary"`
	Method     string  `json:"method"`
	Status     string  `json:"status"`
	Notes      string  `json:"notes,omitempty"`
	Timestamp  string  `json:"timestamp,omitempty"`
}

// EmployeeFilter narrows employee listings.
type EmployeeFilter struct {
	Search        string
	Department    string
	PaymentStatus string
	Status        string
}

// EmployeeInput is the create/update form.
type EmployeeInput struct {
	EmployeeID  string  `json:"employeeId" validate:"omitempty,empid"`
	Name        string  `json:"name" validate:"required"`
	Email       string  `json:"email" validate:"required,looseemail"`
	Phone       string  `json:"phone" validate:"required"`
	Department  string  `json:"department" validate:"required"`
	Position    string  `json:"position" validate:"required"`
	BaseSalary  float64 `json:"baseSalary" validate:"gt=0"`
	JoiningDate string  `json:"joiningDate" validate:"omitempty,datetime=2006-01-02"`
	Status      string  `json:"status" validate:"omitempty,oneof=Active Inactive"`
	BankAccount string  `json:"bankAccount"`
	Address     string  `json:"address"`
}

// Department groups employees; EmployeeCount is derived from the employee collection.
type Department struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	EmployeeCount int    `json:"employeeCount"`
}

// DepartmentInput creates a department.
type DepartmentInput struct {
	Name string `json:"name" validate:"required"`
}
