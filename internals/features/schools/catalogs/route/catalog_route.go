package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	catalogCtl "schoolhub_backend/internals/features/schools/catalogs/controller"
)

// CatalogPublicRoutes: /api/public/catalogs
func CatalogPublicRoutes(public fiber.Router, db *gorm.DB) {
	ctl := catalogCtl.NewCatalogController(db, nil)
	g := public.Group("/catalogs")
	g.Get("/levels", ctl.ListLevels)
	g.Get("/tracks", ctl.ListTracks)
	g.Get("/grades", ctl.ListGrades)
	g.Get("/series", ctl.ListSeries)
	g.Get("/subjects", ctl.ListSubjects)
}

// CatalogOwnerRoutes: /api/o/catalogs
func CatalogOwnerRoutes(owner fiber.Router, db *gorm.DB) {
	ctl := catalogCtl.NewCatalogController(db, nil)
	g := owner.Group("/catalogs")
	g.Get("/stats", ctl.Stats)

	g.Post("/levels", ctl.CreateLevel)
	g.Put("/levels/:id", ctl.UpdateLevel)
	g.Delete("/levels/:id", ctl.DeleteLevel)

	g.Post("/tracks", ctl.CreateTrack)
	g.Put("/tracks/:id", ctl.UpdateTrack)
	g.Delete("/tracks/:id", ctl.DeleteTrack)

	g.Put("/grades/reorder", ctl.ReorderGrades)
	g.Post("/grades", ctl.CreateGrade)
	g.Put("/grades/:id", ctl.UpdateGrade)
	g.Delete("/grades/:id", ctl.DeleteGrade)

	g.Post("/series", ctl.CreateSerie)
	g.Put("/series/:id", ctl.UpdateSerie)
	g.Delete("/series/:id", ctl.DeleteSerie)

	g.Post("/subjects", ctl.CreateSubject)
	g.Put("/subjects/:id", ctl.UpdateSubject)
	g.Delete("/subjects/:id", ctl.DeleteSubject)
}
