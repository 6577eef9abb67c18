package controllers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/sujit-baniya/flash"

	"github.com/LukasBrandt/PaperFig/internal/pkg/diagram"
	"github.com/LukasBrandt/PaperFig/internal/pkg/entitlements"
	"github.com/LukasBrandt/PaperFig/internal/pkg/jobqueue"
	"github.com/LukasBrandt/PaperFig/internal/pkg/metrics/counter"
	"github.com/LukasBrandt/PaperFig/internal/pkg/preview"
	"github.com/LukasBrandt/PaperFig/internal/pkg/quota"
	"github.com/LukasBrandt/PaperFig/internal/pkg/security"
	"github.com/LukasBrandt/PaperFig/internal/pkg/session"
	"github.com/LukasBrandt/PaperFig/internal/pkg/usercontext"
	"github.com/LukasBrandt/PaperFig/internal/pkg/viewmodel"
)

const downloadTokenTTL = 15 * time.Minute

// consumeFigureQuota is a seam for tests; production code always goes
// through quota.ConsumeFigure.
var consumeFigureQuota = quota.ConsumeFigure

// Generous upper bound for one pipeline call including queue retries. A
// figure sitting in pending/processing longer than this lost its worker.
const figureStaleAfter = 45 * time.Minute

// diagramOption is one selectable diagram type in the workspace form
type diagramOption struct {
	Value string
	Label string
}

func allowedDiagramOptions(plan string) []diagramOption {
	methodology, flowchart, architecture := entitlements.AllowedDiagramTypes(entitlements.Normalize(plan))

	var opts []diagramOption
	if methodology {
		opts = append(opts, diagramOption{Value: string(diagram.DiagramTypeMethodology), Label: "Methodik-Diagramm"})
	}
	if flowchart {
		opts = append(opts, diagramOption{Value: string(diagram.DiagramTypeFlowchart), Label: "Flussdiagramm"})
	}
	if architecture {
		opts = append(opts, diagramOption{Value: string(diagram.DiagramTypeArchitecture), Label: "Architektur-Diagramm"})
	}
	return opts
}

// HandleGenerate accepts the workspace form, enqueues a generation job and
// redirects to the figure page, which polls until the figure is ready.
func HandleGenerate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	req := diagram.GenerationRequest{
		SourceText: c.FormValue("source_text"),
		Caption:    c.FormValue("caption"),
		Title:      c.FormValue("title"),
	}
	req.Normalize()

	diagramType, err := diagram.ParseDiagramType(c.FormValue("diagram_type"))
	if err != nil {
		return flashGenerateError(c, "Bitte wähle einen gültigen Diagrammtyp.")
	}
	req.DiagramType = diagramType

	if req.SourceText == "" || req.Caption == "" {
		return flashGenerateError(c, "Methodentext und Bildunterschrift dürfen nicht leer sein.")
	}

	if !planAllowsDiagram(userCtx.Plan, diagramType) {
		return flashGenerateError(c, "Dieser Diagrammtyp ist in deinem Plan nicht enthalten.")
	}

	if err := consumeFigureQuota(userCtx.UserID, entitlements.Normalize(userCtx.Plan)); err != nil {
		if errors.Is(err, quota.ErrExhausted) {
			return flashGenerateError(c, "Dein monatliches Diagramm-Kontingent ist aufgebraucht.")
		}
		fiberlog.Errorf("[Figure] Quota check for %s failed: %v", userCtx.UserID, err)
		return flashGenerateError(c, "Die Generierung konnte nicht gestartet werden. Bitte versuche es erneut.")
	}

	figureUUID := uuid.New().String()
	if err := diagram.SetFigureStatus(figureUUID, diagram.STATUS_PENDING); err != nil {
		fiberlog.Errorf("[Figure] Setting initial status for %s failed: %v", figureUUID, err)
		quota.RefundFigure(userCtx.UserID)
		return flashGenerateError(c, "Die Generierung konnte nicht gestartet werden. Bitte versuche es erneut.")
	}

	payload := jobqueue.FigureGenerationJobPayload{
		FigureUUID:  figureUUID,
		SourceText:  req.SourceText,
		Caption:     req.Caption,
		Title:       req.Title,
		DiagramType: string(diagramType),
		OwnerEmail:  userCtx.Email,
		Plan:        userCtx.Plan,
	}
	if _, err := jobqueue.GetManager().GetQueue().EnqueueJob(jobqueue.JobTypeFigureGeneration, payload.ToMap()); err != nil {
		fiberlog.Errorf("[Figure] Enqueueing generation for %s failed: %v", figureUUID, err)
		quota.RefundFigure(userCtx.UserID)
		return flashGenerateError(c, "Die Generierung konnte nicht gestartet werden. Bitte versuche es erneut.")
	}

	_ = session.SetSessionValue(c, usercontext.KeyLastFigure, figureUUID)

	return c.Redirect("/figure/"+figureUUID, fiber.StatusSeeOther)
}

// HandleGenerateAPI is the JSON variant of HandleGenerate for /api/v1.
func HandleGenerateAPI(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req diagram.GenerationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid JSON body"})
	}
	req.Normalize()

	diagramType, err := diagram.ParseDiagramType(string(req.DiagramType))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "unknown diagram type"})
	}
	req.DiagramType = diagramType

	if req.SourceText == "" || req.Caption == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "source_text and caption are required"})
	}

	if !planAllowsDiagram(userCtx.Plan, diagramType) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "diagram type not included in plan"})
	}

	if err := consumeFigureQuota(userCtx.UserID, entitlements.Normalize(userCtx.Plan)); err != nil {
		if errors.Is(err, quota.ErrExhausted) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "quota_exceeded", "message": "monthly figure quota exhausted"})
		}
		fiberlog.Errorf("[Figure] Quota check for %s failed: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal", "message": "could not start generation"})
	}

	figureUUID := uuid.New().String()
	if err := diagram.SetFigureStatus(figureUUID, diagram.STATUS_PENDING); err != nil {
		fiberlog.Errorf("[Figure] Setting initial status for %s failed: %v", figureUUID, err)
		quota.RefundFigure(userCtx.UserID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal", "message": "could not start generation"})
	}

	payload := jobqueue.FigureGenerationJobPayload{
		FigureUUID:  figureUUID,
		SourceText:  req.SourceText,
		Caption:     req.Caption,
		Title:       req.Title,
		DiagramType: string(diagramType),
		OwnerEmail:  userCtx.Email,
		Plan:        userCtx.Plan,
	}
	if _, err := jobqueue.GetManager().GetQueue().EnqueueJob(jobqueue.JobTypeFigureGeneration, payload.ToMap()); err != nil {
		fiberlog.Errorf("[Figure] Enqueueing generation for %s failed: %v", figureUUID, err)
		quota.RefundFigure(userCtx.UserID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal", "message": "could not start generation"})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"uuid":       figureUUID,
		"status":     diagram.STATUS_PENDING,
		"status_url": "/api/v1/figures/" + figureUUID + "/status",
	})
}

// HandleFigureStatus returns the generation status as JSON for polling
func HandleFigureStatus(c *fiber.Ctx) error {
	figureUUID := c.Params("uuid")
	if figureUUID == "" {
		return c.Status(fiber.StatusBadRequest).SendString("UUID missing")
	}

	status := diagram.GetFigureStatus(figureUUID)
	if status == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown figure"})
	}

	if status == diagram.STATUS_PENDING || status == diagram.STATUS_PROCESSING {
		if ts, err := diagram.GetFigureStatusTimestamp(figureUUID); err == nil && time.Since(ts) > figureStaleAfter {
			fiberlog.Warnf("[Figure] Marking stale figure %s as failed (status=%s since %s)", figureUUID, status, ts)
			status = diagram.STATUS_FAILED
			_ = diagram.SetFigureStatus(figureUUID, diagram.STATUS_FAILED)
			_ = diagram.SetFigureError(figureUUID, "Die Generierung wurde abgebrochen. Bitte versuche es erneut.")
		}
	}

	resp := fiber.Map{
		"status":   status,
		"complete": status == diagram.STATUS_COMPLETED,
	}
	if status == diagram.STATUS_COMPLETED {
		resp["view_url"] = "/figure/" + figureUUID
	}
	if status == diagram.STATUS_FAILED {
		resp["message"] = diagram.GetFigureError(figureUUID)
	}

	return c.JSON(resp)
}

// HandleFigureViewer renders the figure page. While generation is running
// the page shows a progress state and polls the status endpoint.
func HandleFigureViewer(c *fiber.Ctx) error {
	figureUUID := c.Params("uuid")
	if figureUUID == "" {
		return c.Status(fiber.StatusBadRequest).SendString("UUID missing")
	}

	status := diagram.GetFigureStatus(figureUUID)
	if status == "" {
		return c.Status(fiber.StatusNotFound).Render("error", fiber.Map{
			"Layout":  buildLayout(c, "error", flash.Get(c)),
			"Message": "Dieses Diagramm existiert nicht oder ist abgelaufen.",
		}, "layouts/main")
	}

	userCtx := usercontext.GetUserContext(c)
	cfg := getAppConfig()

	vm := viewmodel.Figure{
		Domain:       c.BaseURL(),
		UUID:         figureUUID,
		IsProcessing: status == diagram.STATUS_PENDING || status == diagram.STATUS_PROCESSING,
		IsFailed:     status == diagram.STATUS_FAILED,
	}

	if vm.IsFailed {
		vm.ErrorMessage = diagram.GetFigureError(figureUUID)
	}

	layout := buildLayout(c, "figure", flash.Get(c))

	if status == diagram.STATUS_COMPLETED {
		vm.FilePath = "/figures/" + figureUUID + ".png"

		previewPath := preview.PathFor(cfg.FigureDir, figureUUID)
		if _, err := os.Stat(previewPath); err == nil {
			vm.HasPreview = true
			vm.PreviewPath = "/figures/previews/" + filepath.Base(previewPath)
		}

		token, err := security.GenerateDownloadToken(figureUUID, userCtx.UserID, downloadTokenTTL, cfg.DownloadTokenSecret)
		if err != nil {
			fiberlog.Errorf("[Figure] Download token for %s failed: %v", figureUUID, err)
		} else {
			vm.DownloadURL = fmt.Sprintf("/figure/%s/download?token=%s", figureUUID, token)
		}

		layout.OGViewModel = &viewmodel.OpenGraph{
			Title:       "PaperFig Diagramm",
			Description: "Publikationsreifes Diagramm, generiert aus einem Methodentext.",
			Image:       vm.Domain + vm.FilePath,
			URL:         vm.Domain + "/figure/" + figureUUID,
		}
	}

	return c.Render("figure", fiber.Map{
		"Layout": layout,
		"Figure": vm,
	}, "layouts/main")
}

// HandleFigureDownload serves the original PNG. The link carries a signed
// token, so it works in download managers without a session cookie.
func HandleFigureDownload(c *fiber.Ctx) error {
	figureUUID := c.Params("uuid")
	token := c.Query("token")
	if figureUUID == "" || token == "" {
		return c.Status(fiber.StatusBadRequest).SendString("token missing")
	}

	claims, err := security.VerifyDownloadToken(token, getAppConfig().DownloadTokenSecret)
	if err != nil {
		return c.Status(fiber.StatusForbidden).SendString("invalid or expired token")
	}
	if claims.FigureUUID != figureUUID {
		return c.Status(fiber.StatusForbidden).SendString("token does not match figure")
	}

	filePath := filepath.Join(getAppConfig().FigureDir, figureUUID+".png")
	if _, err := os.Stat(filePath); err != nil {
		return c.Status(fiber.StatusNotFound).SendString("figure not found")
	}

	if err := counter.AddDownload(usercontext.GetPlan(c)); err != nil {
		fiberlog.Warnf("[Figure] Download counter failed: %v", err)
	}

	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.png"`, figureUUID))
	return c.SendFile(filePath)
}

func planAllowsDiagram(plan string, diagramType diagram.DiagramType) bool {
	methodology, flowchart, architecture := entitlements.AllowedDiagramTypes(entitlements.Normalize(plan))
	switch diagramType {
	case diagram.DiagramTypeMethodology:
		return methodology
	case diagram.DiagramTypeFlowchart:
		return flowchart
	case diagram.DiagramTypeArchitecture:
		return architecture
	default:
		return false
	}
}

func flashGenerateError(c *fiber.Ctx, message string) error {
	fm := fiber.Map{
		"type":    "error",
		"message": message,
	}
	return flash.WithError(c, fm).Redirect("/")
}
