package controllers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/podcastr-backend/services"
)

const maxUploadBytes = 50 << 20

type MediaAPI interface {
	GenerateAudio(ctx context.Context, identity *services.Identity, in services.GenerateAudioInput) (*services.Asset, error)
	UploadThumbnail(ctx context.Context, identity *services.Identity, image io.Reader, title string) (*services.Asset, error)
	Upload(ctx context.Context, identity *services.Identity, data io.Reader, filename, contentType string) (*services.Asset, error)
	GenerateScript(ctx context.Context, identity *services.Identity, title, description string) (string, error)
	PromptFromDocument(ctx context.Context, identity *services.Identity, filename string, document io.Reader) (string, error)
}

type MediaController struct {
	media MediaAPI
}

func NewMediaController(media MediaAPI) *MediaController {
	return &MediaController{media: media}
}

// POST /api/generate/audio
func (mc *MediaController) GenerateAudio(c *gin.Context) {
	var input services.GenerateAudioInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	asset, err := mc.media.GenerateAudio(c.Request.Context(), identityFrom(c), input)
	if err != nil {
		respondError(c, err, "Error generating podcast audio")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Audio generated", "data": asset})
}

// POST /api/generate/thumbnail (multipart: file, podcast_title)
func (mc *MediaController) GenerateThumbnail(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing image file"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot read image file"})
		return
	}
	defer file.Close()

	asset, err := mc.media.UploadThumbnail(c.Request.Context(), identityFrom(c), file, c.PostForm("podcast_title"))
	if err != nil {
		respondError(c, err, "Error uploading thumbnail")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Thumbnail uploaded", "data": asset})
}

// POST /api/storage/upload (multipart: file)
func (mc *MediaController) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot read file"})
		return
	}
	defer file.Close()

	asset, err := mc.media.Upload(c.Request.Context(), identityFrom(c), file, fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		respondError(c, err, "Upload failed")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": asset})
}

type generateScriptInput struct {
	PodcastTitle       string `json:"podcast_title" binding:"required"`
	PodcastDescription string `json:"podcast_description"`
}

// POST /api/generate/script
func (mc *MediaController) GenerateScript(c *gin.Context) {
	var input generateScriptInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	script, err := mc.media.GenerateScript(c.Request.Context(), identityFrom(c), input.PodcastTitle, input.PodcastDescription)
	if err != nil {
		respondError(c, err, "Error drafting script")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"voice_prompt": script}})
}

// POST /api/generate/prompt-from-document (multipart: file)
func (mc *MediaController) PromptFromDocument(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing document"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot read document"})
		return
	}
	defer file.Close()

	text, err := mc.media.PromptFromDocument(c.Request.Context(), identityFrom(c), fileHeader.Filename, file)
	if err != nil {
		respondError(c, err, "Could not read document")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"voice_prompt": text}})
}
