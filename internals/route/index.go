// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	feeRoute "schoolhub_backend/internals/features/finance/fees/route"
	planRoute "schoolhub_backend/internals/features/finance/payment_plans/route"
	paymentRoute "schoolhub_backend/internals/features/finance/payments/route"
	refundRoute "schoolhub_backend/internals/features/finance/refunds/route"
	staffRoute "schoolhub_backend/internals/features/hr/staff/route"
	teacherRoute "schoolhub_backend/internals/features/hr/teachers/route"
	classRoute "schoolhub_backend/internals/features/school/academics/classes/route"
	classroomRoute "schoolhub_backend/internals/features/school/academics/classrooms/route"
	yearRoute "schoolhub_backend/internals/features/school/academics/school_years/route"
	attendanceRoute "schoolhub_backend/internals/features/school/attendance/route"
	conductRoute "schoolhub_backend/internals/features/school/conduct/route"
	curriculumRoute "schoolhub_backend/internals/features/school/curriculum/route"
	reportRoute "schoolhub_backend/internals/features/school/grades/report_cards/route"
	gradeRoute "schoolhub_backend/internals/features/school/grades/student_grades/route"
	messageRoute "schoolhub_backend/internals/features/school/messages/route"
	enrollmentRoute "schoolhub_backend/internals/features/school/students/enrollments/route"
	studentRoute "schoolhub_backend/internals/features/school/students/students/route"
	timetableRoute "schoolhub_backend/internals/features/school/timetables/route"
	auditRoute "schoolhub_backend/internals/features/schools/audit_logs/route"
	catalogRoute "schoolhub_backend/internals/features/schools/catalogs/route"
	schoolRoute "schoolhub_backend/internals/features/schools/schools/route"
	authRoute "schoolhub_backend/internals/features/users/auth/route"
	roleRoute "schoolhub_backend/internals/features/users/roles/route"

	"schoolhub_backend/internals/configs"
	helperAuth "schoolhub_backend/internals/helpers/auth"
	"schoolhub_backend/internals/helpers/mailer"
	authMiddleware "schoolhub_backend/internals/middlewares/auth_school"
	featuresMiddleware "schoolhub_backend/internals/middlewares/features"
)

var startTime time.Time

// jwtGuard: satu konfigurasi AuthJWT untuk semua group privat.
func jwtGuard(db *gorm.DB) fiber.Handler {
	return authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
		Secret: configs.JWTSecret,
		BlacklistChecker: func(c *fiber.Ctx, raw string) (bool, error) {
			return helperAuth.IsBlacklisted(c.UserContext(), db, raw, configs.JWTSecret)
		},
		AllowCookieFallback: true,
	})
}

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	startTime = time.Now()
	m := mailer.New()
	protected := jwtGuard(db)

	BaseRoutes(app, db)

	// ===================== AUTH =====================
	log.Println("[INFO] Setting up AuthRoutes...")
	authRoute.AuthRoutes(app, db, protected)

	// ===================== PUBLIC =====================
	log.Println("[INFO] Setting up PUBLIC group...")
	public := app.Group("/api/public")
	catalogRoute.CatalogPublicRoutes(public, db)
	paymentRoute.PaymentPublicRoutes(public, db)

	// ===================== USER =====================
	log.Println("[INFO] Setting up USER group...")
	user := app.Group("/api/u", protected)
	schoolRoute.SchoolUserRoutes(user, db)
	messageRoute.MessageUserRoutes(user, db, m)

	// ===================== ADMIN (per school) =====================
	log.Println("[INFO] Setting up ADMIN group (Auth + Scope + RoleCheck)...")
	admin := app.Group("/api/a/:school_id",
		protected,
		featuresMiddleware.UseSchoolScope(),
		featuresMiddleware.RequirePathScopeMatch(),
		featuresMiddleware.IsSchoolStaff(),
	)

	// akademik
	yearRoute.SchoolYearAdminRoutes(admin, db)
	classroomRoute.ClassroomAdminRoutes(admin, db)
	classRoute.ClassAdminRoutes(admin, db)
	timetableRoute.TimetableAdminRoutes(admin, db)
	curriculumRoute.CurriculumAdminRoutes(admin, db)

	// siswa & nilai
	studentRoute.StudentAdminRoutes(admin, db)
	enrollmentRoute.EnrollmentAdminRoutes(admin, db)
	gradeRoute.StudentGradeAdminRoutes(admin, db)
	reportRoute.ReportCardAdminRoutes(admin, db, m)
	attendanceRoute.AttendanceAdminRoutes(admin, db)
	conductRoute.ConductAdminRoutes(admin, db, m)
	messageRoute.MessageAdminRoutes(admin, db, m)

	// SDM
	staffRoute.StaffAdminRoutes(admin, db)
	teacherRoute.TeacherAdminRoutes(admin, db)
	roleRoute.RoleAdminRoutes(admin, db)

	// keuangan
	feeRoute.FeeAdminRoutes(admin, db)
	planRoute.PaymentPlanAdminRoutes(admin, db)
	paymentRoute.PaymentAdminRoutes(admin, db)
	refundRoute.RefundAdminRoutes(admin, db)

	auditRoute.AuditLogAdminRoutes(admin, db)

	// ===================== OWNER (GLOBAL) =====================
	log.Println("[INFO] Setting up OWNER group (Auth + owner global)...")
	owner := app.Group("/api/o", protected, featuresMiddleware.IsOwnerGlobal())
	schoolRoute.SchoolOwnerRoutes(owner, db)
	catalogRoute.CatalogOwnerRoutes(owner, db)
	roleRoute.RoleOwnerRoutes(owner, db)

	log.Printf("[INFO] Routes siap (%s)", time.Since(startTime))
}
