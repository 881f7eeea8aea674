package services

import (
	"io"
	"log"

	"canvasSync/internal/enums"
	"canvasSync/internal/interfaces"
)

// MediaService is the media blob store collaborator for canvas objects.
type MediaService struct {
	fileManager interfaces.FileManager
}

func NewMediaService(fileManager interfaces.FileManager) *MediaService {
	return &MediaService{
		fileManager: fileManager,
	}
}

func (ms *MediaService) UploadCanvasMedia(fileName string, file io.Reader, fileSize int64, contentType string) (string, error) {
	return ms.fileManager.UploadFile(fileName, file, fileSize, contentType, enums.FILE_BUCKET_CANVAS_MEDIA)
}

// RemoveCanvasMedia is best-effort: a failure after the row is already gone
// is a low-severity storage leak, logged and not retried.
func (ms *MediaService) RemoveCanvasMedia(fileName string) {
	if fileName == "" {
		return
	}
	if err := ms.fileManager.RemoveFile(fileName, enums.FILE_BUCKET_CANVAS_MEDIA); err != nil {
		log.Printf("Error removing media blob %v: %v", fileName, err)
	}
}
