package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/calabriando/api/internal/modules/serializer"
	"github.com/calabriando/api/internal/modules/service"
)

// MediaHandler runs the shared image pipeline for every editor screen:
// upload (with gallery limit), replace (new-first, old deleted after), and
// slot removal with its backing asset.
type MediaHandler struct {
	content service.ContentService
	media   service.MediaService
}

func NewMediaHandler(content service.ContentService, media service.MediaService) *MediaHandler {
	return &MediaHandler{content: content, media: media}
}

// UploadImage godoc
//
//	@Summary		Upload an image for an entity
//	@Description	Appends an image slot. For single-image categories an existing image is replaced: the new upload happens first, the old asset is deleted only after it succeeds.
//	@Tags			media
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			category	path		string	true	"Category slug"
//	@Param			id			path		string	true	"Entity ID"	Format(uuid)
//	@Param			file		formData	file	true	"Image file"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Entity}
//	@Failure		409	{object}	serializer.Response	"Gallery slots full"
//	@Router			/admin/content/{category}/{id}/images [post]
func (h *MediaHandler) UploadImage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("file is required", err))
		return
	}

	category := c.Param("category")
	cfg, err := h.content.Config(category)
	if err != nil {
		respondContentErr(c, err)
		return
	}
	e, err := h.content.Get(c.Request.Context(), category, id)
	if err != nil {
		respondContentErr(c, err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	defer file.Close()

	var url string
	if cfg.MaxImages == 1 && len(e.Images) == 1 {
		url, err = h.media.Replace(c.Request.Context(), cfg, e.Images[0], fileHeader.Filename, file)
		if err == nil {
			e.Images = datatypes.JSONSlice[string]{url}
		}
	} else {
		url, err = h.media.Upload(c.Request.Context(), cfg, e.Images, fileHeader.Filename, file)
		if err == nil {
			e.Images = append(e.Images, url)
		}
	}
	if err != nil {
		respondMediaErr(c, err)
		return
	}

	saved, err := h.content.Save(c.Request.Context(), category, e)
	if err != nil {
		respondContentErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: saved})
}

// UploadDraftImage godoc
//
//	@Summary		Upload an image for an entity not yet saved
//	@Description	Stores the asset and returns its public URL so the editor can attach it to the create form before the first save. Categories that require an image depend on this: the row cannot be saved without one.
//	@Tags			media
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			category	path		string	true	"Category slug"
//	@Param			file		formData	file	true	"Image file"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=string}
//	@Router			/admin/content/{category}/images [post]
func (h *MediaHandler) UploadDraftImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("file is required", err))
		return
	}

	cfg, err := h.content.Config(c.Param("category"))
	if err != nil {
		respondContentErr(c, err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	defer file.Close()

	url, err := h.media.Upload(c.Request.Context(), cfg, nil, fileHeader.Filename, file)
	if err != nil {
		respondMediaErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: url})
}

type RemoveImageReq struct {
	URL string `form:"url" json:"url" binding:"required"`
}

// RemoveImage godoc
//
//	@Summary		Remove one image slot
//	@Description	Drops the slot from the entity and deletes the backing asset. Irreversible; the admin UI confirms before calling.
//	@Tags			media
//	@Accept			json
//	@Produce		json
//	@Param			category	path	string			true	"Category slug"
//	@Param			id			path	string			true	"Entity ID"	Format(uuid)
//	@Param			req			body	RemoveImageReq	true	"Stored image URL"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Entity}
//	@Router			/admin/content/{category}/{id}/images [delete]
func (h *MediaHandler) RemoveImage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	var req RemoveImageReq
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	category := c.Param("category")
	e, err := h.content.Get(c.Request.Context(), category, id)
	if err != nil {
		respondContentErr(c, err)
		return
	}

	idx := -1
	for i, u := range e.Images {
		if u == req.URL {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.JSON(http.StatusNotFound, serializer.Err(http.StatusNotFound, "image not on entity", nil))
		return
	}
	e.Images = append(e.Images[:idx], e.Images[idx+1:]...)

	// Row first; the asset goes away only once the reference is gone.
	saved, err := h.content.Save(c.Request.Context(), category, e)
	if err != nil {
		respondContentErr(c, err)
		return
	}
	h.media.Remove(c.Request.Context(), req.URL)

	c.JSON(http.StatusOK, serializer.Response{Data: saved})
}

func respondMediaErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGalleryFull):
		c.JSON(http.StatusConflict, serializer.Err(http.StatusConflict, "image slots are full", err))
	case errors.Is(err, service.ErrUnsupportedMedia):
		c.JSON(http.StatusBadRequest, serializer.ParamErr("only image uploads are accepted", err))
	default:
		c.JSON(http.StatusInternalServerError, serializer.Err(http.StatusInternalServerError, "upload failed", err))
	}
}
