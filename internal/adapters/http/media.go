package http

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fastlab/regain-api/internal/infrastructure/config"
	"github.com/fastlab/regain-api/internal/infrastructure/logger"
)

var mimeTypes = map[string]string{
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
}

// svgSniffLimit is the size below which image-extension files are peeked
// for SVG content. Placeholder assets are generated as SVG bodies behind
// a .jpg name, and browsers refuse to render them under image/jpeg.
const svgSniffLimit = 10000

// MediaHandler streams exercise images and videos from local directories,
// standing in for the object store the deployed app uses.
type MediaHandler struct {
	cfg config.MediaConfig
	log *logger.Logger
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(cfg config.MediaConfig, log *logger.Logger) *MediaHandler {
	return &MediaHandler{cfg: cfg, log: log.WithComponent("media")}
}

// Register mounts the media routes.
func (h *MediaHandler) Register(e *echo.Echo) {
	e.GET("/files/*", h.Serve)
	e.GET("/presignedurl/:uploadId", h.PresignedURL)
}

// PresignedURL returns a local files URL in place of a real object-storage
// signed URL.
func (h *MediaHandler) PresignedURL(c echo.Context) error {
	uploadID := c.Param("uploadId")
	return c.JSON(http.StatusOK, map[string]string{
		"url": fmt.Sprintf("%s/files/%s", h.cfg.PublicBaseURL, uploadID),
	})
}

// Serve resolves the requested name against the files directory, then the
// videos directory, then its lower-resolution subfolder, and streams the
// first match. Range requests get a single-range 206 partial response.
func (h *MediaHandler) Serve(c echo.Context) error {
	name, err := url.PathUnescape(c.Param("*"))
	if err != nil {
		name = c.Param("*")
	}

	path, info := h.resolve(name)
	if path == "" {
		return c.String(http.StatusNotFound, "File not found")
	}

	contentType := h.contentType(name, path, info.Size())

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	res := c.Response()
	if rangeHeader := c.Request().Header.Get("Range"); rangeHeader != "" {
		if start, end, ok := parseRange(rangeHeader, info.Size()); ok {
			res.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, info.Size()))
			res.Header().Set("Accept-Ranges", "bytes")
			res.Header().Set(echo.HeaderContentLength, strconv.FormatInt(end-start+1, 10))
			res.Header().Set(echo.HeaderContentType, contentType)
			res.WriteHeader(http.StatusPartialContent)
			if _, err := f.Seek(start, io.SeekStart); err != nil {
				return err
			}
			_, err = io.CopyN(res, f, end-start+1)
			return err
		}
		// Unparsable range: fall through to a full response.
	}

	res.Header().Set(echo.HeaderContentLength, strconv.FormatInt(info.Size(), 10))
	res.Header().Set(echo.HeaderContentType, contentType)
	res.WriteHeader(http.StatusOK)
	_, err = io.Copy(res, f)
	return err
}

// resolve returns the first existing candidate path for name.
func (h *MediaHandler) resolve(name string) (string, os.FileInfo) {
	candidates := []string{
		filepath.Join(h.cfg.FilesDir, name),
		filepath.Join(h.cfg.VideosDir, name),
		filepath.Join(h.cfg.VideosDir, h.cfg.VideosSubdir, name),
	}
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, info
		}
	}
	return "", nil
}

// contentType infers the type from the extension, then corrects small
// image-extension files that actually hold SVG markup.
func (h *MediaHandler) contentType(name, path string, size int64) string {
	ext := strings.ToLower(filepath.Ext(name))
	contentType, ok := mimeTypes[ext]
	if !ok {
		contentType = "application/octet-stream"
	}

	if (ext == ".jpg" || ext == ".jpeg" || ext == ".png") && size < svgSniffLimit {
		if peek, err := readPrefix(path, 5); err == nil && string(peek) == "<svg " {
			contentType = "image/svg+xml"
		}
	}
	return contentType
}

func readPrefix(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, n)
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// parseRange parses a single-range "bytes=start-end" header. The end
// defaults to size-1 when omitted. Anything unparsable reports ok=false
// and the caller serves the whole file instead.
func parseRange(header string, size int64) (start, end int64, ok bool) {
	spec := strings.TrimPrefix(header, "bytes=")
	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}

	start, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || start < 0 {
		return 0, 0, false
	}

	if parts[1] == "" {
		return start, size - 1, true
	}
	end, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return start, end, true
}
