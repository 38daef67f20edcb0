package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"dating-app/internal/services"

	"github.com/gin-gonic/gin"
)

// multipartOverhead is allowed on top of the file size limit for form
// boundaries and headers.
const multipartOverhead = 1 << 20

type UserHandler struct {
	members     *services.MemberService
	maxFileSize int64
}

func NewUserHandler(members *services.MemberService, maxFileSize int64) *UserHandler {
	return &UserHandler{members: members, maxFileSize: maxFileSize}
}

func (h *UserHandler) GetMembers(c *gin.Context) {
	members, err := h.members.ListMembers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, members)
}

func (h *UserHandler) GetMember(c *gin.Context) {
	member, err := h.members.GetMember(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, member)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.UpdateMemberInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.members.UpdateProfile(c.Request.Context(), userID, req); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) AddPhoto(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxFileSize+multipartOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, services.FileTooLarge(h.maxFileSize))
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	photo, err := h.members.AddPhoto(c.Request.Context(), userID, services.PhotoUpload{
		FileName: header.Filename,
		Size:     header.Size,
		Content:  file,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, photo)
}

func (h *UserHandler) SetMainPhoto(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	photoID, err := strconv.ParseUint(c.Param("photoId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid photo ID"})
		return
	}

	if err := h.members.SetMainPhoto(c.Request.Context(), userID, uint(photoID)); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) DeletePhoto(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	photoID, err := strconv.ParseUint(c.Param("photoId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid photo ID"})
		return
	}

	if err := h.members.DeletePhoto(c.Request.Context(), userID, uint(photoID)); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
