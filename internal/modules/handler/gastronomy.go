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

// GastronomyHandler drives the nested recipe editor: categories plus
// per-locale dish lists.
type GastronomyHandler struct {
	svc service.GastronomyService
}

func NewGastronomyHandler(s service.GastronomyService) *GastronomyHandler {
	return &GastronomyHandler{svc: s}
}

// ListCategories godoc
//
//	@Summary	List gastronomy categories
//	@Tags		gastronomy
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=[]model.GastronomyCategory}
//	@Router		/admin/gastronomy [get]
func (h *GastronomyHandler) ListCategories(c *gin.Context) {
	rows, err := h.svc.LoadAll(c.Request.Context())
	if err != nil {
		respondGastronomyErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: rows})
}

// SaveCategory godoc
//
//	@Summary		Create or update a gastronomy category
//	@Description	Inserts when the body carries no id, updates otherwise.
//	@Tags			gastronomy
//	@Accept			json
//	@Produce		json
//	@Param			category	body	model.GastronomyCategory	true	"Category buffer"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.GastronomyCategory}
//	@Failure		422	{object}	serializer.Response
//	@Router			/admin/gastronomy [post]
func (h *GastronomyHandler) SaveCategory(c *gin.Context) {
	var g model.GastronomyCategory
	if err := c.ShouldBindJSON(&g); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	saved, err := h.svc.Save(c.Request.Context(), &g)
	if err != nil {
		respondGastronomyErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: saved})
}

// DeleteCategory godoc
//
//	@Summary		Delete a gastronomy category
//	@Description	Cascades a best-effort delete of the category image and every dish image.
//	@Tags			gastronomy
//	@Produce		json
//	@Param			id	path	string	true	"Category ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response
//	@Router			/admin/gastronomy/{id} [delete]
func (h *GastronomyHandler) DeleteCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondGastronomyErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "deleted"})
}

// UpsertDish godoc
//
//	@Summary		Add or update a dish in one locale's list
//	@Description	A dish id minted in one locale is reused in the other so both language copies refer to the same dish. Lists may diverge between locales.
//	@Tags			gastronomy
//	@Accept			json
//	@Produce		json
//	@Param			id		path	string		true	"Category ID"	Format(uuid)
//	@Param			locale	path	string		true	"Locale code (it|en)"
//	@Param			dish	body	model.Dish	true	"Dish"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.GastronomyCategory}
//	@Router			/admin/gastronomy/{id}/dishes/{locale} [post]
func (h *GastronomyHandler) UpsertDish(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	var dish model.Dish
	if err := c.ShouldBindJSON(&dish); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	g, err := h.svc.UpsertDish(c.Request.Context(), id, c.Param("locale"), dish)
	if err != nil {
		respondGastronomyErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: g})
}

// RemoveDish godoc
//
//	@Summary		Remove a dish from one locale's list
//	@Description	The other locale's copy of the dish, when present, stays untouched.
//	@Tags			gastronomy
//	@Produce		json
//	@Param			id		path	string	true	"Category ID"	Format(uuid)
//	@Param			locale	path	string	true	"Locale code (it|en)"
//	@Param			dish_id	path	string	true	"Dish ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.GastronomyCategory}
//	@Router			/admin/gastronomy/{id}/dishes/{locale}/{dish_id} [delete]
func (h *GastronomyHandler) RemoveDish(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	dishID, err := uuid.Parse(c.Param("dish_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	g, err := h.svc.RemoveDish(c.Request.Context(), id, c.Param("locale"), dishID)
	if err != nil {
		respondGastronomyErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: g})
}

func respondGastronomyErr(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, serializer.ValidationErr(ve.Fields))
	case errors.Is(err, service.ErrEntityNotFound):
		c.JSON(http.StatusNotFound, serializer.Err(http.StatusNotFound, "category not found", err))
	case errors.Is(err, service.ErrDishNotFound):
		c.JSON(http.StatusNotFound, serializer.Err(http.StatusNotFound, "dish not found", err))
	default:
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
	}
}
