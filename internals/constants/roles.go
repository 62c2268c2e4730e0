package constants

import "fmt"

// Slug role (harus sama dengan roles.role_slug hasil seed)
const (
	RoleOwner      = "owner"
	RoleSuperAdmin = "superadmin"

	RoleSchoolAdmin         = "school_administrator"
	RoleAcademicCoordinator = "academic_coordinator"
	RoleDisciplineOfficer   = "discipline_officer"
	RoleAccountant          = "accountant"
	RoleCashier             = "cashier"
	RoleRegistrar           = "registrar"
	RoleTeacher             = "teacher"
	RoleParent              = "parent"
	RoleStudent             = "student"
	RoleUser                = "user"
)

// Template pesan error role
const (
	ErrOnlyStaffCanAccess   = "❌ Hanya staf sekolah yang boleh mengakses fitur %s."
	ErrOnlyAdminsCanAccess  = "❌ Hanya admin sekolah yang boleh mengakses fitur %s."
	ErrOnlyFinanceCanAccess = "❌ Hanya bagian keuangan yang boleh mengakses fitur %s."
	ErrOnlyOwnersCanAccess  = "❌ Hanya owner yang boleh mengakses fitur %s."
)

func RoleErrorStaff(feature string) string   { return fmt.Sprintf(ErrOnlyStaffCanAccess, feature) }
func RoleErrorAdmin(feature string) string   { return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature) }
func RoleErrorFinance(feature string) string { return fmt.Sprintf(ErrOnlyFinanceCanAccess, feature) }
func RoleErrorOwner(feature string) string   { return fmt.Sprintf(ErrOnlyOwnersCanAccess, feature) }

// ==========================
// ✅ Grouped Role Slices
// ==========================
var (
	GlobalOwnerRoles = []string{
		RoleOwner,
		RoleSuperAdmin,
	}

	// semua yang boleh masuk /api/a/:school_id
	SchoolStaffRoles = []string{
		RoleSchoolAdmin,
		RoleAcademicCoordinator,
		RoleDisciplineOfficer,
		RoleAccountant,
		RoleCashier,
		RoleRegistrar,
		RoleTeacher,
	}

	AdminOnly = []string{
		RoleSchoolAdmin,
	}

	AcademicRoles = []string{
		RoleSchoolAdmin,
		RoleAcademicCoordinator,
		RoleTeacher,
	}

	// kelola struktur akademik (tahun ajaran, kelas, jadwal)
	AcademicAdminRoles = []string{
		RoleSchoolAdmin,
		RoleAcademicCoordinator,
	}

	// validasi nilai hanya koordinator/admin
	GradeValidatorRoles = []string{
		RoleSchoolAdmin,
		RoleAcademicCoordinator,
	}

	FinanceRoles = []string{
		RoleSchoolAdmin,
		RoleAccountant,
		RoleCashier,
	}

	RegistrarRoles = []string{
		RoleSchoolAdmin,
		RoleRegistrar,
		RoleAcademicCoordinator,
	}

	ConductRoles = []string{
		RoleSchoolAdmin,
		RoleDisciplineOfficer,
		RoleAcademicCoordinator,
		RoleTeacher,
	}
)
