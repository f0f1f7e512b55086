package replication

import (
	"errors"

	"heritage/core/backup"
	"heritage/core/logger"
	"heritage/core/versionstore"
	"heritage/feature/family"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for replication control.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the replication routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	syncGroup := app.Group("/sync")
	syncGroup.Get("/status", h.HandleStatus)
	syncGroup.Post("/test", h.HandleTestConnection)
	syncGroup.Post("/retry", h.HandleRetry)
	syncGroup.Post("/push", h.HandlePush)
	syncGroup.Get("/logs", h.HandleLogs)

	backups := app.Group("/backups")
	backups.Get("/", h.HandleListBackups)
	backups.Post("/", h.HandleCreateBackup)
	backups.Get("/:filename", h.HandleGetBackup)
	backups.Delete("/:filename", h.HandleDeleteBackup)
	backups.Post("/:filename/restore", h.HandleRestoreBackup)

	app.Post("/reconcile/lifespans", h.HandleReconcile)
}

// HandleStatus returns the sync status.
// @Summary Sync Status
// @Description Returns queue length, failure count, retry state and the last error of the replication engine.
// @Tags sync
// @Produce json
// @Success 200 {object} replication.Status
// @Router /sync/status [get]
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(h.service.Status())
}

// HandleTestConnection checks connectivity to the mirror.
// @Summary Test Connection
// @Description Pings the versioned store holding the mirrored dataset.
// @Tags sync
// @Produce json
// @Success 200 {object} replication.ConnectionResult
// @Failure 503 {object} replication.ConnectionResult
// @Router /sync/test [post]
func (h *Handler) HandleTestConnection(c *fiber.Ctx) error {
	res := h.service.TestConnection(c.Context())
	if !res.Connected {
		return c.Status(fiber.StatusServiceUnavailable).JSON(res)
	}
	return c.JSON(res)
}

// HandleRetry retries queued operations now.
// @Summary Manual Retry
// @Description Resets the backoff and processes pending sync operations immediately.
// @Tags sync
// @Produce json
// @Success 200 {object} replication.RetryResult
// @Router /sync/retry [post]
func (h *Handler) HandleRetry(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	res := h.service.ManualRetry()
	l.Info("Manual retry", zap.Bool("success", res.Success), zap.String("message", res.Message))
	return c.JSON(res)
}

// HandlePush pushes the current dataset.
// @Summary Push Dataset
// @Description Pushes the full dataset to the mirror as a bulk update. Failures are queued for retry.
// @Tags sync
// @Produce json
// @Success 200 {object} replication.Result
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/push [post]
func (h *Handler) HandlePush(c *fiber.Ctx) error {
	res, err := h.service.Push(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(res)
}

// HandleLogs returns recent sync log entries.
// @Summary Sync Logs
// @Description Returns the most recent sync log entries, newest first.
// @Tags sync
// @Produce json
// @Success 200 {array} replication.LogEntry
// @Router /sync/logs [get]
func (h *Handler) HandleLogs(c *fiber.Ctx) error {
	return c.JSON(h.service.Logs())
}

// HandleListBackups lists backups.
// @Summary List Backups
// @Description Lists dataset backups, newest first.
// @Tags backups
// @Produce json
// @Success 200 {array} backup.Metadata
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /backups [get]
func (h *Handler) HandleListBackups(c *fiber.Ctx) error {
	list, err := h.service.ListBackups(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	if list == nil {
		list = []backup.Metadata{}
	}
	return c.JSON(list)
}

// HandleCreateBackup takes a backup.
// @Summary Create Backup
// @Description Snapshots the current dataset. Only manual backups are exempt from retention.
// @Tags backups
// @Produce json
// @Param trigger query string false "Trigger (manual, auto-bulk, pre-restore)" default(manual)
// @Success 201 {object} backup.Metadata
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /backups [post]
func (h *Handler) HandleCreateBackup(c *fiber.Ctx) error {
	trigger, err := backup.ParseTrigger(c.Query("trigger", string(backup.TriggerManual)))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	meta, err := h.service.CreateBackup(c.Context(), trigger)
	if err != nil {
		return h.fail(c, err)
	}

	logger.WithRayID(h.service.logger, c).Info("Backup created", zap.String("filename", meta.Filename))
	return c.Status(fiber.StatusCreated).JSON(meta)
}

// HandleGetBackup returns the records of a backup.
// @Summary Get Backup
// @Description Returns the records stored in one backup.
// @Tags backups
// @Produce json
// @Param filename path string true "Backup filename"
// @Success 200 {array} dataset.Record
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /backups/{filename} [get]
func (h *Handler) HandleGetBackup(c *fiber.Ctx) error {
	records, err := h.service.GetBackupContent(c.Context(), c.Params("filename"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(records)
}

// HandleDeleteBackup deletes a backup.
// @Summary Delete Backup
// @Description Deletes one backup. This is the only way manual backups are removed.
// @Tags backups
// @Param filename path string true "Backup filename"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /backups/{filename} [delete]
func (h *Handler) HandleDeleteBackup(c *fiber.Ctx) error {
	if err := h.service.DeleteBackup(c.Context(), c.Params("filename")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleRestoreBackup restores a backup.
// @Summary Restore Backup
// @Description Replaces the dataset with a backup after taking a pre-restore snapshot.
// @Tags backups
// @Produce json
// @Param filename path string true "Backup filename"
// @Success 200 {object} RestoreResult
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 409 {object} map[string]string "Conflict"
// @Router /backups/{filename}/restore [post]
func (h *Handler) HandleRestoreBackup(c *fiber.Ctx) error {
	res, err := h.service.RestoreBackup(c.Context(), c.Params("filename"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(res)
}

// HandleReconcile recomputes monarch associations.
// @Summary Reconcile Lifespans
// @Description Recomputes which reigns overlap each member's lifetime. With dryRun=true nothing is written.
// @Tags reconcile
// @Produce json
// @Param dryRun query boolean false "Report without writing"
// @Success 200 {object} reconcile.Report
// @Failure 409 {object} map[string]string "Conflict"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /reconcile/lifespans [post]
func (h *Handler) HandleReconcile(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	dryRun := c.QueryBool("dryRun", false)

	l.Info("Reconciliation requested", zap.Bool("dry_run", dryRun))
	report, err := h.service.RunReconciliation(c.Context(), dryRun)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(report)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, backup.ErrInvalidFilename), errors.Is(err, family.ErrInvalid), errors.Is(err, family.ErrDuplicate):
		status = fiber.StatusBadRequest
	case errors.Is(err, versionstore.ErrNotFound), errors.Is(err, family.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, ErrBusy):
		status = fiber.StatusConflict
	}
	if status == fiber.StatusInternalServerError {
		logger.WithRayID(h.service.logger, c).Error("Request failed", zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
