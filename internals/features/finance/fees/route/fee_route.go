package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolhub_backend/internals/constants"
	feeCtl "schoolhub_backend/internals/features/finance/fees/controller"
	featuresMiddleware "schoolhub_backend/internals/middlewares/features"
)

// FeeAdminRoutes: /api/a/:school_id/finance/...
func FeeAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := feeCtl.NewFeeController(db, nil)
	finance := featuresMiddleware.RequireSchoolRoles("keuangan", constants.FinanceRoles...)
	approve := featuresMiddleware.RequireSchoolRoles("persetujuan keuangan", constants.RoleSchoolAdmin, constants.RoleAccountant)

	g := admin.Group("/finance", finance)

	ft := g.Group("/fee-types")
	ft.Get("/", ctl.ListFeeTypes)
	ft.Post("/", approve, ctl.CreateFeeType)
	ft.Get("/templates", ctl.ListTemplates)
	ft.Post("/templates/copy", approve, ctl.CopyTemplates)
	ft.Patch("/:id", approve, ctl.UpdateFeeType)
	ft.Delete("/:id", approve, ctl.DeleteFeeType)

	fs := g.Group("/fee-structures")
	fs.Get("/", ctl.ListStructures)
	fs.Post("/", approve, ctl.CreateStructure)
	fs.Post("/bulk", approve, ctl.BulkCreateStructures)
	fs.Get("/students/:student_id", ctl.StructuresForStudent)
	fs.Patch("/:id", approve, ctl.UpdateStructure)
	fs.Delete("/:id", approve, ctl.DeleteStructure)

	dc := g.Group("/discounts")
	dc.Get("/", ctl.ListDiscounts)
	dc.Post("/", approve, ctl.CreateDiscount)
	dc.Post("/assign", ctl.AssignDiscount)
	dc.Patch("/:id", approve, ctl.UpdateDiscount)
	dc.Delete("/:id", approve, ctl.DeleteDiscount)

	g.Get("/student-discounts", ctl.ListStudentDiscounts)
	g.Post("/student-discounts/:id/approve", approve, ctl.ApproveStudentDiscount)

	sf := g.Group("/student-fees")
	sf.Get("/", ctl.ListStudentFees)
	sf.Get("/calculate", ctl.Calculate)
	sf.Get("/outstanding", ctl.Outstanding)
	sf.Get("/students/:student_id/summary", ctl.StudentSummary)
	sf.Post("/assign", ctl.AssignToStudent)
	sf.Post("/bulk-assign", approve, ctl.BulkAssignToClass)
	sf.Post("/:id/waive", approve, ctl.Waive)
}
