package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const (
	defaultQRSize = 256
	minQRSize     = 64
	maxQRSize     = 1024
)

// QRHandler отдает QR код короткой ссылки
type QRHandler struct {
	urls    URLResolver
	baseURL string
	log     *zap.Logger
}

// NewQRHandler создает обработчик QR кодов
func NewQRHandler(urls URLResolver, baseURL string, log *zap.Logger) *QRHandler {
	return &QRHandler{
		urls:    urls,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

// PNG рисует QR код короткого адреса
//
//	@Summary	QR code of a short URL
//	@Tags		Links
//	@Produce	png
//	@Param		short_code	path	string	true	"Short code"
//	@Param		size		query	int		false	"Image size in pixels"	default(256)	minimum(64)	maximum(1024)
//	@Success	200
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/v1/qr/{short_code} [get]
func (h *QRHandler) PNG(w http.ResponseWriter, r *http.Request) {
	size, ok := queryInt(r, "size", defaultQRSize)
	if !ok || size < minQRSize || size > maxQRSize {
		writeValidation(w, map[string]string{"size": "must be an integer between " + strconv.Itoa(minQRSize) + " and " + strconv.Itoa(maxQRSize)})
		return
	}

	url, err := h.urls.Resolve(r.Context(), chi.URLParam(r, "short_code"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	png, err := qrcode.Encode(h.baseURL+"/"+url.ShortCode, qrcode.Medium, size)
	if err != nil {
		h.log.Error("failed to render qr code", zap.String("short_code", url.ShortCode), zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
