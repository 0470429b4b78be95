package usecase

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
)

// アップロード上限 5MiB
const MaxUploadBytes = 5 << 20

// 許可する画像形式と拡張子
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type UploadUsecase struct {
	storage ObjectStorage
	baseURL string
	logger  *slog.Logger
}

// storage が nil なら 503
func NewUploadUsecase(storage ObjectStorage, publicBaseURL string, logger *slog.Logger) *UploadUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadUsecase{
		storage: storage,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:  logger,
	}
}

type UploadInput struct {
	Filename string
	Size     int64
	Body     io.Reader
}

type UploadOutput struct {
	URL string `json:"url"`
}

// UploadImage は products/<uuid>.<ext> として保存する（上書きしない）
func (u *UploadUsecase) UploadImage(ctx context.Context, in UploadInput) (UploadOutput, error) {
	if u.storage == nil {
		return UploadOutput{}, NewHTTPError(http.StatusServiceUnavailable, "storage not configured")
	}
	if in.Body == nil {
		return UploadOutput{}, NewHTTPError(http.StatusBadRequest, "Missing file")
	}
	if in.Size > MaxUploadBytes {
		return UploadOutput{}, NewHTTPError(http.StatusRequestEntityTooLarge, "file too large")
	}

	//中身から形式を判定する（ヘッダのContent-Typeは信用しない）
	br := bufio.NewReaderSize(in.Body, 512)
	head, err := br.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return UploadOutput{}, NewHTTPError(http.StatusBadRequest, "unreadable file")
	}
	if len(head) == 0 {
		return UploadOutput{}, NewHTTPError(http.StatusBadRequest, "Missing file")
	}

	contentType := http.DetectContentType(head)
	defExt, ok := imageExtensions[contentType]
	if !ok {
		return UploadOutput{}, NewHTTPError(http.StatusBadRequest, "unsupported file type")
	}

	ext := strings.ToLower(path.Ext(in.Filename))
	if ext == "" || len(ext) > 6 {
		ext = defExt
	}
	name := "products/" + uuid.NewString() + ext

	//上限+1まで読めたらサイズ超過
	limited := &io.LimitedReader{R: br, N: MaxUploadBytes + 1}
	if err := u.storage.Put(ctx, name, contentType, limited); err != nil {
		u.logger.ErrorContext(ctx, "upload image failed", "name", name, "err", err)
		return UploadOutput{}, NewHTTPError(http.StatusBadGateway, "upload failed")
	}
	if limited.N <= 0 {
		if err := u.storage.Delete(ctx, name); err != nil {
			u.logger.ErrorContext(ctx, "remove oversized upload failed", "name", name, "err", err)
		}
		return UploadOutput{}, NewHTTPError(http.StatusRequestEntityTooLarge, "file too large")
	}

	return UploadOutput{URL: u.baseURL + "/images/" + name}, nil
}

// OpenImage は /images/* の配信用
func (u *UploadUsecase) OpenImage(ctx context.Context, name string) (Object, error) {
	if u.storage == nil {
		return Object{}, NewHTTPError(http.StatusServiceUnavailable, "storage not configured")
	}

	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if name == "" || name == "." {
		return Object{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	obj, err := u.storage.Open(ctx, name)
	if errors.Is(err, ErrObjectNotFound) {
		return Object{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		u.logger.ErrorContext(ctx, "open image failed", "name", name, "err", err)
		return Object{}, NewHTTPError(http.StatusBadGateway, "storage error")
	}
	return obj, nil
}
