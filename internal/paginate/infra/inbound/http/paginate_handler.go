package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/davicafu/hexapaginate/internal/paginate/application"
	"github.com/davicafu/hexapaginate/internal/paginate/domain"
	"github.com/davicafu/hexapaginate/pkg/utils"
)

// PaginateHandler expone las colecciones adjuntas por HTTP.
type PaginateHandler struct {
	registry *application.Registry
	usage    domain.UsageReader
	log      *zap.Logger
}

// NewPaginateHandler crea el handler. usage puede ser nil: entonces no se
// registra el endpoint de estadísticas.
func NewPaginateHandler(registry *application.Registry, usage domain.UsageReader, log *zap.Logger) *PaginateHandler {
	return &PaginateHandler{registry: registry, usage: usage, log: log}
}

// ---------------- Handlers ----------------

// Health endpoint GET /health
func (h *PaginateHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListCollections endpoint GET /collections
func (h *PaginateHandler) ListCollections(c *gin.Context) {
	utils.SendSuccess(c, http.StatusOK, h.registry.Names())
}

// Paginate endpoint GET /collections/:name?filter=&sort=&page=&limit=&select=
// filter y sort llegan codificados en JSON y se traducen en el núcleo.
func (h *PaginateHandler) Paginate(c *gin.Context) {
	coll, err := h.registry.Get(c.Param("name"))
	if err != nil {
		utils.SendNotFound(c, err.Error())
		return
	}

	opts, err := optionsFromQuery(c)
	if err != nil {
		utils.SendBadRequest(c, "invalid_query", err.Error())
		return
	}

	var criteria domain.CriteriaValue
	if raw := c.Query("filter"); raw != "" {
		criteria = domain.CriteriaJSON(raw)
	}

	page, err := coll.Paginate(c.Request.Context(), criteria, opts)
	if err != nil {
		h.sendError(c, err)
		return
	}

	utils.SendSuccess(c, http.StatusOK, page)
}

// Usage endpoint GET /stats/usage?since=RFC3339 (por defecto, últimas 24h)
func (h *PaginateHandler) Usage(c *gin.Context) {
	since := time.Now().UTC().Add(-24 * time.Hour)
	if raw := c.Query("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.SendBadRequest(c, "invalid_query", "invalid since, use RFC3339")
			return
		}
		since = t
	}

	usage, err := h.usage.UsageSince(c.Request.Context(), since)
	if err != nil {
		h.log.Error("Failed to read usage stats", zap.Error(err))
		utils.SendInternalServerError(c, "could not read usage stats")
		return
	}
	utils.SendSuccess(c, http.StatusOK, usage)
}

// ---------------- Helpers ----------------

func optionsFromQuery(c *gin.Context) (domain.Options, error) {
	var opts domain.Options

	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return opts, errors.New("invalid limit")
		}
		opts.Limit = domain.Limit(n)
	}
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return opts, errors.New("invalid page")
		}
		opts.Page = domain.Page(n)
	}
	if raw := c.Query("sort"); raw != "" {
		opts.Sort = domain.SortJSON(raw)
	}
	if raw := c.Query("select"); raw != "" {
		opts.Select = domain.SelectFields(raw)
	}
	return opts, nil
}

// sendError traduce los errores del núcleo a códigos HTTP.
func (h *PaginateHandler) sendError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrConfiguration):
		// La configuración viene del servidor, no de la petición.
		h.log.Error("Paginate misconfigured", zap.Error(err))
		utils.SendInternalServerError(c, err.Error())
	case errors.Is(err, domain.ErrTranslation):
		utils.SendBadRequest(c, "translation", err.Error())
	case errors.Is(err, domain.ErrUnsupportedFilter), errors.Is(err, domain.ErrUnsupportedSort):
		utils.SendBadRequest(c, "unsupported", err.Error())
	case errors.Is(err, domain.ErrStore):
		utils.SendInternalServerError(c, "store error")
	default:
		h.log.Error("Unexpected paginate error", zap.Error(err))
		utils.SendInternalServerError(c, err.Error())
	}
}
