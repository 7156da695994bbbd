package actions

import (
	"bytes"
	"context"
	"errors"
	"path"
	"strings"

	"github.com/google/uuid"
	apperrors "github.com/orbtao/connectify/backend/pkg/errors"
	"github.com/orbtao/connectify/backend/pkg/storage"
)

// upload stores f under prefix and returns its public URL.
func (a *Actions) upload(ctx context.Context, prefix string, f *storage.File) (string, error) {
	if f == nil || len(f.Data) == 0 {
		return "", apperrors.Validation("file is empty")
	}
	key := prefix + "/" + uuid.NewString() + strings.ToLower(path.Ext(f.Name))
	url, err := a.uploader.Upload(ctx, key, f.ContentType, bytes.NewReader(f.Data))
	if errors.Is(err, storage.ErrDisabled) {
		return "", apperrors.Downstream(err, "Media uploads are not configured")
	}
	if err != nil {
		a.log.Error("upload failed", "key", key, "error", err)
		return "", apperrors.Downstream(err, "Failed to upload media")
	}
	return url, nil
}
