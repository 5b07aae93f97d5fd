package controller

import (
	"learning-hub-be/internal/pkg/serverutils"
	"learning-hub-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISearchController interface {
	RegisterRoutes(r fiber.Router)
	Query(ctx *fiber.Ctx) error
}

type searchController struct {
	searchService service.ISearchService
}

func NewSearchController(searchService service.ISearchService) ISearchController {
	return &searchController{
		searchService: searchService,
	}
}

func (c *searchController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/search/v1")
	h.Get("query", c.Query)
}

func (c *searchController) Query(ctx *fiber.Ctx) error {
	q := ctx.Query("q", "")
	if q == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Missing query (query param 'q')")
	}

	res, err := c.searchService.Query(ctx.Context(), q)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success query", res))
}
