package store

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"translation-manager/core/logger"
	"translation-manager/core/pofile"
	storesync "translation-manager/feature/store/sync"
)

// Handler handles HTTP requests for translation stores.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the store routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/stores")
	group.Post("/", h.HandleCreateStore)
	group.Get("/", h.HandleListStores)
	group.Get("/:id", h.HandleGetStore)
	group.Get("/:id/units", h.HandleListUnits)
	group.Post("/:id/update", h.HandleUpdate)
	group.Post("/:id/sync", h.HandleSync)
	group.Get("/:id/download", h.HandleDownload)
}

// CreateStoreRequest is the payload for registering a new store.
type CreateStoreRequest struct {
	// Path is the unique logical path of the store (e.g. "de/app.po").
	Path string `json:"path"`
	// ObjectName is the backing object key; defaults to Path.
	ObjectName string `json:"object_name"`
}

func (h *Handler) storeID(c *fiber.Ctx) (uint64, error) {
	return strconv.ParseUint(c.Params("id"), 10, 64)
}

func (h *Handler) errorStatus(err error) int {
	switch {
	case errors.Is(err, ErrStoreNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrStoreExists),
		errors.Is(err, storesync.ErrInvalidStoreState),
		errors.Is(err, storesync.ErrMissingFile):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// HandleCreateStore registers a new store.
// @Summary Create Store
// @Description Register a new translation store under a unique path.
// @Tags stores
// @Accept json
// @Produce json
// @Param request body CreateStoreRequest true "Store definition"
// @Success 201 {object} models.Store "Created Store"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 409 {object} map[string]string "Path Already Exists"
// @Router /stores [post]
func (h *Handler) HandleCreateStore(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req CreateStoreRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Path == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "path is required"})
	}

	store, err := h.service.CreateStore(c.Context(), req.Path, req.ObjectName)
	if err != nil {
		l.Error("Store creation failed", zap.Error(err))
		return c.Status(h.errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(store)
}

// HandleListStores lists all registered stores.
// @Summary List Stores
// @Description List all registered translation stores.
// @Tags stores
// @Produce json
// @Success 200 {array} models.Store "Stores"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /stores [get]
func (h *Handler) HandleListStores(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	stores, err := h.service.ListStores(c.Context())
	if err != nil {
		l.Error("Store listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(stores)
}

// HandleGetStore returns one store.
// @Summary Get Store
// @Description Get a single store with its sync metadata.
// @Tags stores
// @Produce json
// @Param id path int true "Store ID"
// @Success 200 {object} models.Store "Store"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /stores/{id} [get]
func (h *Handler) HandleGetStore(c *fiber.Ctx) error {
	id, err := h.storeID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid store id"})
	}

	store, err := h.service.GetStore(c.Context(), id)
	if err != nil {
		return c.Status(h.errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(store)
}

// HandleListUnits returns a store's units in index order.
// @Summary List Units
// @Description List a store's translation units in file order.
// @Tags stores
// @Produce json
// @Param id path int true "Store ID"
// @Param include_obsolete query bool false "Include soft-deleted units"
// @Success 200 {array} models.Unit "Units"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /stores/{id}/units [get]
func (h *Handler) HandleListUnits(c *fiber.Ctx) error {
	id, err := h.storeID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid store id"})
	}

	units, err := h.service.ListUnits(c.Context(), id, c.QueryBool("include_obsolete"))
	if err != nil {
		return c.Status(h.errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(units)
}

// HandleUpdate merges file content into the store. The request body carries
// the raw file bytes; with an empty body the store's backing object is
// downloaded instead.
// @Summary Update Store
// @Description Merge uploaded file content (or the backing object) into the store's units.
// @Tags stores
// @Accept plain
// @Produce json
// @Param id path int true "Store ID"
// @Param baseline query int false "Revision the file was derived from (default: X-Revision header in the file)"
// @Param user query string false "Actor recorded on changes"
// @Param conservative query bool false "Keep existing unit positions (default true)"
// @Param overwrite query bool false "Skip conflict detection; file content always wins"
// @Param skip_missing query bool false "Tolerate a store without a backing object (no-op update)"
// @Success 200 {object} sync.UpdateResult "Update Summary"
// @Failure 400 {object} map[string]string "Unparsable Content"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 409 {object} map[string]string "Invalid Store State"
// @Router /stores/{id}/update [post]
func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	id, err := h.storeID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid store id"})
	}
	store, err := h.service.GetStore(c.Context(), id)
	if err != nil {
		return c.Status(h.errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	opts := storesync.DefaultUpdateOptions()
	if baseline := c.Query("baseline"); baseline != "" {
		v, err := strconv.ParseInt(baseline, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid baseline"})
		}
		opts.Baseline = v
	}
	if user := c.Query("user"); user != "" {
		opts.User = user
	}
	opts.Conservative = c.QueryBool("conservative", true)
	opts.Overwrite = c.QueryBool("overwrite")

	var res *storesync.UpdateResult
	if body := c.Body(); len(body) > 0 {
		res, err = h.service.UpdateFromBytes(c.Context(), store, body, opts)
	} else {
		res, err = h.service.UpdateFromStorage(c.Context(), store, opts)
		if err != nil && errors.Is(err, storesync.ErrMissingFile) && c.QueryBool("skip_missing") {
			return c.JSON(&storesync.UpdateResult{Changed: false})
		}
	}
	if err != nil {
		l.Error("Store update failed", zap.Uint64("store_id", id), zap.Error(err))
		status := h.errorStatus(err)
		if isParseError(err) {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(res)
}

// HandleSync serializes the store's units and uploads them to the backing
// object.
// @Summary Sync Store
// @Description Serialize the store's units and upload them to the backing object.
// @Tags stores
// @Produce json
// @Param id path int true "Store ID"
// @Param only_newer query bool false "Skip when nothing changed since the last sync (default true)"
// @Param skip_missing query bool false "Tolerate stores without a backing object"
// @Param include_obsolete query bool false "Emit soft-deleted units as obsolete entries"
// @Success 200 {object} sync.SyncResult "Sync Summary"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 409 {object} map[string]string "Invalid Store State"
// @Router /stores/{id}/sync [post]
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	id, err := h.storeID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid store id"})
	}
	store, err := h.service.GetStore(c.Context(), id)
	if err != nil {
		return c.Status(h.errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	opts := storesync.DefaultSyncOptions()
	opts.OnlyNewer = c.QueryBool("only_newer", true)
	opts.SkipMissing = c.QueryBool("skip_missing")
	opts.IncludeObsolete = c.QueryBool("include_obsolete")

	res, err := h.service.SyncToStorage(c.Context(), store, opts)
	if err != nil {
		l.Error("Store sync failed", zap.Uint64("store_id", id), zap.Error(err))
		return c.Status(h.errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(res)
}

// HandleDownload returns the store's current content as a file.
// @Summary Download Store
// @Description Serialize and download the store's current content.
// @Tags stores
// @Produce plain
// @Param id path int true "Store ID"
// @Param include_obsolete query bool false "Emit soft-deleted units as obsolete entries"
// @Success 200 {string} string "File Content"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 409 {object} map[string]string "Invalid Store State"
// @Router /stores/{id}/download [get]
func (h *Handler) HandleDownload(c *fiber.Ctx) error {
	id, err := h.storeID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid store id"})
	}
	store, err := h.service.GetStore(c.Context(), id)
	if err != nil {
		return c.Status(h.errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	res, err := h.service.Serialize(c.Context(), store, c.QueryBool("include_obsolete"))
	if err != nil {
		return c.Status(h.errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set(fiber.HeaderContentType, "text/x-gettext-translation; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+store.Path+`"`)
	return c.Send(res.Bytes)
}

func isParseError(err error) bool {
	var parseErr *pofile.ParseError
	return errors.As(err, &parseErr)
}
