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

// PublicHandler serves the unauthenticated site endpoints. Responses come
// from the read-through cache and carry a single locale's projection.
type PublicHandler struct {
	svc service.PublicService
}

func NewPublicHandler(s service.PublicService) *PublicHandler {
	return &PublicHandler{svc: s}
}

func localeFromQuery(c *gin.Context) string {
	loc := c.DefaultQuery("locale", model.LocaleIT)
	if loc != model.LocaleIT && loc != model.LocaleEN {
		loc = model.LocaleIT
	}
	return loc
}

// Home godoc
//
//	@Summary	Landing-page content in one locale
//	@Tags		public
//	@Produce	json
//	@Param		locale	query		string	false	"Locale code (it|en)"	default(it)
//	@Success	200		{object}	serializer.Response{data=map[string][]service.PublicEntity}
//	@Router		/public/home [get]
func (h *PublicHandler) Home(c *gin.Context) {
	data, err := h.svc.Home(c.Request.Context(), localeFromQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: data})
}

// Gastronomy godoc
//
//	@Summary	Visible recipe categories with localized dish lists
//	@Tags		public
//	@Produce	json
//	@Param		locale	query		string	false	"Locale code (it|en)"	default(it)
//	@Success	200		{object}	serializer.Response{data=[]service.PublicGastronomyCategory}
//	@Router		/public/gastronomy [get]
func (h *PublicHandler) Gastronomy(c *gin.Context) {
	data, err := h.svc.Gastronomy(c.Request.Context(), localeFromQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: data})
}

// List godoc
//
//	@Summary	Visible entities of one category, localized
//	@Tags		public
//	@Produce	json
//	@Param		category	path		string	true	"Category slug"
//	@Param		locale		query		string	false	"Locale code (it|en)"	default(it)
//	@Success	200			{object}	serializer.Response{data=[]service.PublicEntity}
//	@Router		/public/{category} [get]
func (h *PublicHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), c.Param("category"), localeFromQuery(c))
	if err != nil {
		respondPublicErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: items})
}

// Availability godoc
//
//	@Summary	Availability slots for one bookable entity
//	@Tags		public
//	@Produce	json
//	@Param		category	path		string	true	"Category slug"
//	@Param		id			path		string	true	"Entity ID"	Format(uuid)
//	@Success	200			{object}	serializer.Response{data=[]model.AvailabilitySlot}
//	@Router		/public/{category}/{id}/availability [get]
func (h *PublicHandler) Availability(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	slots, err := h.svc.Availability(c.Request.Context(), c.Param("category"), id)
	if err != nil {
		respondPublicErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: slots})
}

func respondPublicErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCategoryUnknown),
		errors.Is(err, service.ErrEntityNotFound):
		c.JSON(http.StatusNotFound, serializer.Err(http.StatusNotFound, "not found", err))
	default:
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
	}
}
