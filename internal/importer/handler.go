package importer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fitnesspoint/internal/api"
	"fitnesspoint/internal/auth"
	"fitnesspoint/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type ImportStore interface {
	Create(ctx context.Context, job *MemberImport) error
	GetByID(ctx context.Context, id int) (*MemberImport, error)
	ListUnresolvedLogs(ctx context.Context, importID int) ([]MemberImportLog, error)
}

type Enqueuer interface {
	Enqueue(ctx context.Context, importID int) error
}

type Handler struct {
	jobs       ImportStore
	queue      Enqueuer
	storageDir string
}

func NewHandler(jobs ImportStore, queue Enqueuer, storageDir string) *Handler {
	return &Handler{
		jobs:       jobs,
		queue:      queue,
		storageDir: storageDir,
	}
}

type UploadRequest struct {
	Type                  Type `form:"type" binding:"required,oneof=individual corporate"`
	BranchID              int  `form:"branch_id" binding:"required,min=1"`
	PlanID                *int `form:"plan_id" binding:"required_if=Type individual,omitempty,min=1"`
	CompanySubscriptionID *int `form:"company_subscription_id" binding:"required_if=Type corporate,omitempty,min=1"`
}

type UploadResponse struct {
	Import *MemberImport `json:"import"`
	Queued bool          `json:"queued"`
}

func importID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("importID"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid import ID"})
		return 0, false
	}
	return id, true
}

// @Summary      Upload a member import
// @Description  Stores the file, creates a pending import job and queues it
// @Tags         imports
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file formData file true "CSV or XLSX file"
// @Param        type formData string true "individual or corporate"
// @Param        branch_id formData int true "Branch ID"
// @Param        plan_id formData int false "Plan ID (individual)"
// @Param        company_subscription_id formData int false "Company subscription ID (corporate)"
// @Success      201 {object} importer.UploadResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /imports [post]
func (h *Handler) Upload(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	var req UploadRequest
	if err := c.ShouldBind(&req); err != nil {
		api.RespondWithBindError(c, err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "file is required"})
		return
	}
	if !SupportedExtension(file.Filename) {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "file must be .csv or .xlsx"})
		return
	}

	if err := os.MkdirAll(h.storageDir, 0o755); err != nil {
		logger.WithError(err).Error("failed to create import storage dir")
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to store file"})
		return
	}
	dst := filepath.Join(h.storageDir, uuid.NewString()+strings.ToLower(filepath.Ext(file.Filename)))
	if err := c.SaveUploadedFile(file, dst); err != nil {
		logger.WithError(err).Error("failed to save import file")
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to store file"})
		return
	}

	job := &MemberImport{
		Type:      req.Type,
		BranchID:  req.BranchID,
		CreatedBy: userID,
		FilePath:  dst,
	}
	if req.Type == TypeIndividual {
		job.PlanID = req.PlanID
	} else {
		job.CompanySubscriptionID = req.CompanySubscriptionID
	}

	ctx := c.Request.Context()
	if err := h.jobs.Create(ctx, job); err != nil {
		logger.WithError(err).Error("failed to create import")
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create import"})
		return
	}

	queued := true
	if err := h.queue.Enqueue(ctx, job.ID); err != nil {
		queued = false
	}

	c.JSON(http.StatusCreated, UploadResponse{Import: job, Queued: queued})
}

// @Summary      Get an import
// @Tags         imports
// @Produce      json
// @Security     BearerAuth
// @Param        importID path int true "Import ID"
// @Success      200 {object} importer.MemberImport
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /imports/{importID} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := importID(c)
	if !ok {
		return
	}

	job, err := h.jobs.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrImportNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Import not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch import"})
		return
	}

	c.JSON(http.StatusOK, job)
}

// @Summary      Export failed rows
// @Description  CSV of the rows that could not be imported
// @Tags         imports
// @Produce      text/csv
// @Security     BearerAuth
// @Param        importID path int true "Import ID"
// @Success      200 {string} string
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /imports/{importID}/failed-rows [get]
func (h *Handler) FailedRows(c *gin.Context) {
	id, ok := importID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	job, err := h.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrImportNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Import not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch import"})
		return
	}

	logs, err := h.jobs.ListUnresolvedLogs(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch failed rows"})
		return
	}
	rows := lo.Map(logs, func(l MemberImportLog, _ int) FailedRow {
		return FailedRowFromLog(l)
	})

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="import-%d-failed-rows.csv"`, id))
	c.Status(http.StatusOK)
	if err := WriteFailedRowsCSV(c.Writer, job.Type, rows); err != nil {
		logger.WithError(err).Error("failed to write failed rows", "import_id", id)
	}
}
