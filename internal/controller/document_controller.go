package controller

import (
	"errors"

	"learning-hub-be/internal/dto"
	"learning-hub-be/internal/pkg/serverutils"
	"learning-hub-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Ingest(ctx *fiber.Ctx) error
	Related(ctx *fiber.Ctx) error
}

type documentController struct {
	ingestService service.IIngestService
	searchService service.ISearchService
}

func NewDocumentController(ingestService service.IIngestService, searchService service.ISearchService) IDocumentController {
	return &documentController{
		ingestService: ingestService,
		searchService: searchService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/document/v1")
	h.Post("", c.Ingest)
	h.Get(":id/related", c.Related)
}

func (c *documentController) Ingest(ctx *fiber.Ctx) error {
	var req dto.IngestDocumentsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.ingestService.Submit(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Documents queued for indexing", res))
}

func (c *documentController) Related(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	limit := ctx.QueryInt("limit", 5)

	res, err := c.searchService.RelatedDocuments(ctx.Context(), id, limit)
	if err != nil {
		if errors.Is(err, service.ErrDocumentNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Document not found")
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success related documents", res))
}
