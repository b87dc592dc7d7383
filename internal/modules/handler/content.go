package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/calabriando/api/internal/modules/model"
	"github.com/calabriando/api/internal/modules/serializer"
	"github.com/calabriando/api/internal/modules/service"
)

// ContentHandler exposes the generic editor engine: one set of routes
// serves every content category, selected by the :category path segment.
type ContentHandler struct {
	svc service.ContentService
}

func NewContentHandler(s service.ContentService) *ContentHandler {
	return &ContentHandler{svc: s}
}

// ListCategories godoc
//
//	@Summary		List content categories
//	@Description	Returns the category registry driving the admin screens
//	@Tags			content
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.CategoryConfig}
//	@Router			/admin/content [get]
func (h *ContentHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, serializer.Response{Data: h.svc.Categories()})
}

// ListEntities godoc
//
//	@Summary		List entities of one category
//	@Tags			content
//	@Produce		json
//	@Param			category	path	string	true	"Category slug"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.Entity}
//	@Router			/admin/content/{category} [get]
func (h *ContentHandler) ListEntities(c *gin.Context) {
	rows, err := h.svc.LoadAll(c.Request.Context(), c.Param("category"))
	if err != nil {
		respondContentErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: rows})
}

// NewTemplate godoc
//
//	@Summary		Build a fresh unsaved entity template
//	@Description	Empty translations for every configured field; subcategory pre-seeded from the active filter. No store side effect.
//	@Tags			content
//	@Produce		json
//	@Param			category	path	string	true	"Category slug"
//	@Param			subcategory	query	string	false	"Active list filter"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Entity}
//	@Router			/admin/content/{category}/template [get]
func (h *ContentHandler) NewTemplate(c *gin.Context) {
	e, err := h.svc.NewTemplate(c.Request.Context(), c.Param("category"), c.Query("subcategory"))
	if err != nil {
		respondContentErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: e})
}

// GetEntity godoc
//
//	@Summary	Get one entity
//	@Tags		content
//	@Produce	json
//	@Param		category	path	string	true	"Category slug"
//	@Param		id			path	string	true	"Entity ID"	Format(uuid)
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=model.Entity}
//	@Router		/admin/content/{category}/{id} [get]
func (h *ContentHandler) GetEntity(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	e, err := h.svc.Get(c.Request.Context(), c.Param("category"), id)
	if err != nil {
		respondContentErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: e})
}

// SaveEntity godoc
//
//	@Summary		Create or update an entity
//	@Description	Inserts when the body carries no id, updates otherwise. Validation failure blocks the write and returns the failing fields.
//	@Tags			content
//	@Accept			json
//	@Produce		json
//	@Param			category	path	string			true	"Category slug"
//	@Param			entity		body	model.Entity	true	"Entity buffer"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Entity}
//	@Failure		422	{object}	serializer.Response
//	@Router			/admin/content/{category} [post]
func (h *ContentHandler) SaveEntity(c *gin.Context) {
	var e model.Entity
	if err := c.ShouldBindJSON(&e); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	saved, err := h.svc.Save(c.Request.Context(), c.Param("category"), &e)
	if err != nil {
		respondContentErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: saved})
}

// DeleteEntity godoc
//
//	@Summary		Delete an entity
//	@Description	Cascades a best-effort delete of the entity's stored images before removing the row.
//	@Tags			content
//	@Produce		json
//	@Param			category	path	string	true	"Category slug"
//	@Param			id			path	string	true	"Entity ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response
//	@Router			/admin/content/{category}/{id} [delete]
func (h *ContentHandler) DeleteEntity(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	if err := h.svc.Delete(c.Request.Context(), c.Param("category"), id); err != nil {
		respondContentErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "deleted"})
}

type ReorderReq struct {
	Direction string `json:"direction" binding:"required,oneof=up down"`
}

// Reorder godoc
//
//	@Summary		Move an entity within its group
//	@Description	Swaps display order with the immediate neighbor. Rejected when the neighbor belongs to a different taxonomy group.
//	@Tags			content
//	@Accept			json
//	@Produce		json
//	@Param			category	path	string		true	"Category slug"
//	@Param			id			path	string		true	"Entity ID"	Format(uuid)
//	@Param			req			body	ReorderReq	true	"Direction"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response
//	@Router			/admin/content/{category}/{id}/reorder [post]
func (h *ContentHandler) Reorder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	var req ReorderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	if err := h.svc.Reorder(c.Request.Context(), c.Param("category"), id, req.Direction); err != nil {
		respondContentErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "reordered"})
}

type SlotReq struct {
	Date      string `json:"date" binding:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" binding:"timeofday"`
	EndTime   string `json:"end_time" binding:"timeofday"`
}

// AddSlot godoc
//
//	@Summary	Add an availability slot
//	@Tags		content
//	@Accept		json
//	@Produce	json
//	@Param		category	path	string	true	"Category slug"
//	@Param		id			path	string	true	"Entity ID"	Format(uuid)
//	@Param		slot		body	SlotReq	true	"Slot"
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=model.Entity}
//	@Router		/admin/content/{category}/{id}/slots [post]
func (h *ContentHandler) AddSlot(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	var req SlotReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	category := c.Param("category")
	e, err := h.svc.Get(c.Request.Context(), category, id)
	if err != nil {
		respondContentErr(c, err)
		return
	}
	if err := h.svc.AddSlot(e, model.AvailabilitySlot{Date: req.Date, StartTime: req.StartTime, EndTime: req.EndTime}); err != nil {
		respondContentErr(c, err)
		return
	}
	saved, err := h.svc.Save(c.Request.Context(), category, e)
	if err != nil {
		respondContentErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: saved})
}

// RemoveSlot godoc
//
//	@Summary	Remove an availability slot by date
//	@Tags		content
//	@Produce	json
//	@Param		category	path	string	true	"Category slug"
//	@Param		id			path	string	true	"Entity ID"	Format(uuid)
//	@Param		date		path	string	true	"Slot date (YYYY-MM-DD)"
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=model.Entity}
//	@Router		/admin/content/{category}/{id}/slots/{date} [delete]
func (h *ContentHandler) RemoveSlot(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	category := c.Param("category")
	e, err := h.svc.Get(c.Request.Context(), category, id)
	if err != nil {
		respondContentErr(c, err)
		return
	}
	if err := h.svc.RemoveSlot(e, c.Param("date")); err != nil {
		respondContentErr(c, err)
		return
	}
	saved, err := h.svc.Save(c.Request.Context(), category, e)
	if err != nil {
		respondContentErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: saved})
}

// respondContentErr maps editor errors onto the response envelope.
func respondContentErr(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, serializer.ValidationErr(ve.Fields))
	case errors.Is(err, service.ErrCategoryUnknown):
		c.JSON(http.StatusNotFound, serializer.Err(http.StatusNotFound, "unknown category", err))
	case errors.Is(err, service.ErrEntityNotFound):
		c.JSON(http.StatusNotFound, serializer.Err(http.StatusNotFound, "entity not found", err))
	case errors.Is(err, service.ErrCrossGroupReorder):
		c.JSON(http.StatusConflict, serializer.Err(http.StatusConflict, "cannot reorder across groups", err))
	case errors.Is(err, service.ErrNoNeighbor):
		c.JSON(http.StatusConflict, serializer.Err(http.StatusConflict, "nothing to swap with", err))
	case errors.Is(err, service.ErrSlotDuplicate):
		c.JSON(http.StatusConflict, serializer.Err(http.StatusConflict, "slot already exists for that date", err))
	case errors.Is(err, service.ErrSlotNotFound):
		c.JSON(http.StatusNotFound, serializer.Err(http.StatusNotFound, "slot not found", err))
	default:
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
	}
}
