package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ledgerdesk-api/internal/models"
)

// RegisterRoutes mounts the domain endpoints under api.
func RegisterRoutes(api *gin.RouterGroup, library *LibraryHandler, payroll *PayrollHandler, backups *BackupHandler) {
	lib := api.Group("/library")
	lib.GET("/students", library.ListStudents)
	lib.POST("/students", library.CreateStudent)
	lib.GET("/students/recent", library.RecentStudents)
	lib.GET("/students/:id", library.GetStudent)
	lib.PUT("/students/:id", library.UpdateStudent)
	lib.DELETE("/students/:id", library.DeleteStudent)
	lib.PUT("/students/:id/timing", library.UpdateStudentTiming)
	lib.POST("/students/:id/payments", library.AddPayment)
	lib.POST("/students/:id/fee-toggle", library.ToggleFee)
	lib.GET("/seats", library.SeatLayout)
	lib.GET("/seats/available", library.AvailableSeats)
	lib.GET("/timings", library.Timings)
	lib.PUT("/timings", library.UpdateTimings)
	lib.GET("/stats", library.Stats)
	lib.GET("/reports/payments", library.PaymentsReport)

	pay := api.Group("/payroll")
	pay.GET("/employees", payroll.ListEmployees)
	pay.POST("/employees", payroll.CreateEmployee)
	pay.GET("/employees/next-id", payroll.NextEmployeeID)
	pay.GET("/employees/:id", payroll.GetEmployee)
	pay.PUT("/employees/:id", payroll.UpdateEmployee)
	pay.DELETE("/employees/:id", payroll.DeleteEmployee)
	pay.POST("/employees/:id/payments", payroll.AddPayment)
	pay.GET("/departments", payroll.ListDepartments)
	pay.POST("/departments", payroll.CreateDepartment)
	pay.DELETE("/departments/:name", payroll.DeleteDepartment)
	pay.GET("/settings", payroll.Settings)
	pay.PUT("/settings", payroll.UpdateSettings)
	pay.GET("/stats", payroll.Stats)
	pay.GET("/reports/payments", payroll.PaymentsReport)

	api.GET("/snapshots/download/:token", backups.DownloadSnapshot)
	for domain, group := range map[models.Domain]*gin.RouterGroup{models.DomainLibrary: lib, models.DomainPayroll: pay} {
		group := group.Group("", withDomain(domain))
		group.GET("/export", backups.Export)
		group.POST("/import", backups.Import)
		group.DELETE("/data", backups.Clear)
		group.POST("/snapshots", backups.CreateSnapshot)
		group.GET("/snapshots", backups.ListSnapshots)
		group.POST("/snapshots/restore", backups.RestoreSnapshot)
	}
}

// withDomain exposes the group's domain as the "domain" path parameter.
func withDomain(domain models.Domain) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Params = append(c.Params, gin.Param{Key: "domain", Value: string(domain)})
		c.Next()
	}
}
