package repository

import "github.com/noah-isme/ledgerdesk-api/internal/models"

func strPtr(s string) *string { return &s }

// SampleStudents is the library data written on first start.
func SampleStudents() []models.Student {
	return []models.Student{
		{
			ID: 1, Name: "Aarav Sharma", Email: "aarav.sharma@example.com", Phone: "+91 9876543210",
			Address: "12 MG Road, Pune", PlanType: models.PlanFullTime, SeatNumber: "01",
			JoinDate: "2024-01-05", LastFeeDate: strPtr("2024-02-05"), FeeAmount: 800,
			StudyHours: "09:00 - 21:00", Status: models.StudentActive, FeesPaid: true,
			PaymentHistory: []models.StudentPayment{
				{ID: 1, PaymentID: 2001, Date: "2024-01-05", Month: "Jan 2024", Amount: 800, Method: models.MethodCash, Status: models.PaymentStatusValue},
				{ID: 2, PaymentID: 2002, Date: "2024-02-05", Month: "Feb 2024", Amount: 800, Method: models.MethodUPI, Status: models.PaymentStatusValue},
			},
			TotalPaid: 1600,
		},
		{
			ID: 2, Name: "Priya Patel", Email: "priya.patel@example.com", Phone: "+91 9876543211",
			Address: "45 Station Road, Nagpur", PlanType: models.PlanHalfTime, SeatNumber: "02",
			JoinDate: "2024-01-12", FeeAmount: 500, StudyHours: "09:00 - 14:00",
			Status: models.StudentActive, PaymentHistory: []models.StudentPayment{},
		},
		{
			ID: 3, Name: "Rohan Gupta", Email: "rohan.gupta@example.com", Phone: "+91 9876543212",
			Address: "7 Lake View, Nashik", PlanType: models.PlanHalfTime, SeatNumber: "15",
			JoinDate: "2024-02-01", LastFeeDate: strPtr("2024-02-01"), FeeAmount: 500,
			StudyHours: "14:00 - 19:00", Status: models.StudentActive, FeesPaid: true,
			UseCustomTiming: true, CustomStartTime: "14:00", CustomEndTime: "19:00",
			PaymentHistory: []models.StudentPayment{
				{ID: 1, PaymentID: 2003, Date: "2024-02-01", Month: "Feb 2024", Amount: 500, Method: models.MethodCard, Status: models.PaymentStatusValue, Notes: "Evening batch"},
			},
			TotalPaid: 500,
		},
	}
}

// SampleEmployees is the payroll data written on first start.
func SampleEmployees() []models.Employee {
	return []models.Employee{
		{
			ID: 1, EmployeeID: "EMP001", Name: "John Smith", Email: "john.smith@company.com", Phone: "+1 555-0101",
			Department: "Engineering", Position: "Senior Developer", BaseSalary: 5000, JoiningDate: "2023-01-15",
			Status: "Active", BankAccount: "****1234", Address: "123 Main St, New York, NY",
			PaymentHistory: []models.SalaryPayment{
				salary(1, 1001, "2024-01-31", "January 2024", 5000, 500, 1000, "Regular monthly salary"),
				salary(2, 1002, "2024-02-29", "February 2024", 5000, 500, 0, "Regular monthly salary"),
			},
			TotalPaid: 10000, LastPaymentDate: strPtr("2024-02-29"), PaymentStatus: models.PaymentStatusPaid,
		},
		{
			ID: 2, EmployeeID: "EMP002", Name: "Sarah Johnson", Email: "sarah.johnson@company.com", Phone: "+1 555-0102",
			Department: "Marketing", Position: "Marketing Manager", BaseSalary: 4500, JoiningDate: "2023-03-20",
			Status: "Active", BankAccount: "****5678", Address: "456 Oak Ave, Los Angeles, CA",
			PaymentHistory: []models.SalaryPayment{
				salary(1, 1003, "2024-01-31", "January 2024", 4500, 450, 500, "Regular monthly salary + performance bonus"),
			},
			TotalPaid: 4550, LastPaymentDate: strPtr("2024-01-31"), PaymentStatus: models.PaymentStatusPending,
		},
		{
			ID: 3, EmployeeID: "EMP003", Name: "Michael Chen", Email: "michael.chen@company.com", Phone: "+1 555-0103",
			Department: "Sales", Position: "Sales Executive", BaseSalary: 4000, JoiningDate: "2023-06-10",
			Status: "Active", BankAccount: "****9012", Address: "789 Pine Rd, Chicago, IL",
			PaymentHistory: []models.SalaryPayment{
				salary(1, 1004, "2024-01-31", "January 2024", 4000, 400, 2000, "Regular salary + sales commission"),
				salary(2, 1005, "2024-02-29", "February 2024", 4000, 400, 1500, "Regular salary + sales commission"),
			},
			TotalPaid: 10700, LastPaymentDate: strPtr("2024-02-29"), PaymentStatus: models.PaymentStatusPaid,
		},
	}
}

// SampleDepartments is the department list written on first start.
func SampleDepartments() []models.Department {
	return []models.Department{
		{ID: 1, Name: "Engineering", EmployeeCount: 1},
		{ID: 2, Name: "Marketing", EmployeeCount: 1},
		{ID: 3, Name: "Sales", EmployeeCount: 1},
		{ID: 4, Name: "Human Resources"},
		{ID: 5, Name: "Finance"},
	}
}

func salary(id int, paymentID int64, date, month string, base, deductions, bonuses float64, notes string) models.SalaryPayment {
	return models.SalaryPayment{
		ID: id, PaymentID: paymentID, Date: date, Month: month,
		BaseSalary: base, Deductions: deductions, Bonuses: bonuses, NetSalary: base - deductions + bonuses,
		Method: models.MethodBankTransfer, Status: models.PaymentStatusValue, Notes: notes,
	}
}
