package database

import (
	"log"

	"gorm.io/gorm"

	feeModel "schoolhub_backend/internals/features/finance/fees/model"
	planModel "schoolhub_backend/internals/features/finance/payment_plans/model"
	paymentModel "schoolhub_backend/internals/features/finance/payments/model"
	refundModel "schoolhub_backend/internals/features/finance/refunds/model"
	staffModel "schoolhub_backend/internals/features/hr/staff/model"
	teacherModel "schoolhub_backend/internals/features/hr/teachers/model"
	classModel "schoolhub_backend/internals/features/school/academics/classes/model"
	classroomModel "schoolhub_backend/internals/features/school/academics/classrooms/model"
	yearModel "schoolhub_backend/internals/features/school/academics/school_years/model"
	attendanceModel "schoolhub_backend/internals/features/school/attendance/model"
	conductModel "schoolhub_backend/internals/features/school/conduct/model"
	curriculumModel "schoolhub_backend/internals/features/school/curriculum/model"
	reportModel "schoolhub_backend/internals/features/school/grades/report_cards/model"
	gradeModel "schoolhub_backend/internals/features/school/grades/student_grades/model"
	messageModel "schoolhub_backend/internals/features/school/messages/model"
	enrollmentModel "schoolhub_backend/internals/features/school/students/enrollments/model"
	studentModel "schoolhub_backend/internals/features/school/students/students/model"
	timetableModel "schoolhub_backend/internals/features/school/timetables/model"
	auditModel "schoolhub_backend/internals/features/schools/audit_logs/model"
	catalogModel "schoolhub_backend/internals/features/schools/catalogs/model"
	schoolModel "schoolhub_backend/internals/features/schools/schools/model"
	authModel "schoolhub_backend/internals/features/users/auth/model"
	roleModel "schoolhub_backend/internals/features/users/roles/model"
	userModel "schoolhub_backend/internals/features/users/user/model"
)

// Models: urutan mengikuti foreign key (master dulu, transaksi belakangan).
func Models() []any {
	return []any{
		// platform
		&userModel.UserModel{},
		&authModel.RefreshTokenModel{},
		&authModel.TokenBlacklistModel{},
		&catalogModel.EducationLevelModel{},
		&catalogModel.TrackModel{},
		&catalogModel.GradeModel{},
		&catalogModel.SerieModel{},
		&catalogModel.SubjectModel{},
		&schoolModel.SchoolModel{},
		&roleModel.RoleModel{},
		&roleModel.UserRoleModel{},
		&auditModel.AuditLogModel{},

		// akademik
		&yearModel.SchoolYearModel{},
		&yearModel.TermModel{},
		&classroomModel.ClassroomModel{},
		&classModel.ClassModel{},
		&classModel.ClassSubjectModel{},
		&staffModel.StaffModel{},
		&teacherModel.TeacherModel{},
		&teacherModel.TeacherSubjectModel{},

		// siswa
		&studentModel.StudentModel{},
		&studentModel.ParentModel{},
		&studentModel.StudentParentModel{},
		&studentModel.MatriculeSequenceModel{},
		&enrollmentModel.EnrollmentModel{},

		// nilai & rapor
		&gradeModel.StudentGradeModel{},
		&gradeModel.GradeValidationModel{},
		&gradeModel.StudentAverageModel{},
		&reportModel.ReportCardTemplateModel{},
		&reportModel.ReportCardModel{},
		&reportModel.TeacherCommentModel{},

		// jadwal, kurikulum, absensi, disiplin, pesan
		&timetableModel.TimetableSessionModel{},
		&curriculumModel.ProgramChapterModel{},
		&curriculumModel.ClassSessionModel{},
		&curriculumModel.ChapterCompletionModel{},
		&curriculumModel.CurriculumProgressModel{},
		&attendanceModel.AttendanceSettingsModel{},
		&attendanceModel.StudentAttendanceModel{},
		&attendanceModel.TeacherAttendanceModel{},
		&attendanceModel.AttendanceAlertModel{},
		&conductModel.ConductRecordModel{},
		&conductModel.ConductFollowUpModel{},
		&messageModel.MessageModel{},

		// keuangan
		&feeModel.FeeTypeTemplateModel{},
		&feeModel.FeeTypeModel{},
		&feeModel.FeeStructureModel{},
		&feeModel.DiscountModel{},
		&feeModel.StudentFeeModel{},
		&feeModel.StudentDiscountModel{},
		&planModel.PaymentPlanTemplateModel{},
		&planModel.PaymentPlanModel{},
		&planModel.InstallmentModel{},
		&paymentModel.PaymentModel{},
		&paymentModel.PaymentAllocationModel{},
		&paymentModel.PaymentGatewayEventModel{},
		&refundModel.RefundModel{},
	}
}

// AutoMigrate dipakai main (AUTO_MIGRATE=true) dan `schoolctl migrate`.
func AutoMigrate(db *gorm.DB) error {
	log.Println("🛠  AutoMigrate...")
	if err := db.AutoMigrate(Models()...); err != nil {
		log.Printf("❌ AutoMigrate gagal: %v", err)
		return err
	}
	log.Printf("✅ AutoMigrate selesai (%d tabel)", len(Models()))
	return nil
}
