package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"medregistry/internal/service"
)

// RegisterRoutes attaches the HTTP routes to the provided Fiber app.
// Handlers stay thin; every rule lives in the services.
func RegisterRoutes(
	app *fiber.App,
	db *sql.DB,
	docSvc service.DocumentService,
	statsSvc service.StatsService,
	userSvc service.UserService,
	exportSvc service.ExportService,
) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/api/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/api/login", Login(userSvc))
	app.Post("/api/signup", Signup(userSvc))
	app.Post("/api/create-user", CreateUser(userSvc))
	app.Get("/api/users", ListUsers(userSvc))
	app.Delete("/api/users/:userId", DeleteUser(userSvc))

	app.Post("/api/files/upload", UploadDocument(docSvc))
	app.Get("/api/files", ListDocuments(docSvc))
	app.Get("/api/files/:id/download", DownloadDocument(docSvc))
	app.Get("/api/files/:id/download-all", DownloadArchive(docSvc))
	app.Post("/api/files/:id/export", ExportDocument(exportSvc))

	app.Get("/api/dashboard-stats", DashboardStats(statsSvc))
	app.Get("/api/storage-trends", StorageTrends(statsSvc))
}
