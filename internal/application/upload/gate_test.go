package upload

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tixflow/listing-service/internal/domain"
	"github.com/tixflow/listing-service/internal/infrastructure/memory"
)

const fiveMiB = 5 * 1024 * 1024

func newTestGate(store ObjectStore) *Gate {
	g := NewGate(store, Options{
		MaxBytes:     fiveMiB,
		AllowedTypes: []string{"image/jpeg", "image/png", "image/webp", "image/heic"},
		Prefix:       "images",
	})
	g.now = func() time.Time { return time.UnixMilli(1767225600000) }
	g.suffix = func() string { return "k3x9q" }
	return g
}

func file(name, ct string, size int) domain.File {
	return domain.File{Name: name, Size: int64(size), ContentType: ct, Body: bytes.NewReader(make([]byte, size))}
}

func TestGate_RejectsOversizedFileWithoutStorageCall(t *testing.T) {
	store := memory.NewObjectStore("https://cdn.test")
	g := newTestGate(store)

	res, err := g.Upload(context.Background(), file("big.png", "image/png", 6*1024*1024))
	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, domain.Is(err, domain.CodeValidation))

	var ae *domain.AppError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "Kích thước file không được vượt quá 5MB", ae.Message)
	assert.Equal(t, 0, store.Puts())
}

func TestGate_RejectsDisallowedTypeWithoutStorageCall(t *testing.T) {
	store := memory.NewObjectStore("https://cdn.test")
	g := newTestGate(store)

	_, err := g.Upload(context.Background(), file("anim.gif", "image/gif", 1024))
	require.Error(t, err)

	var ae *domain.AppError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, domain.CodeValidation, ae.Code)
	assert.Equal(t, domain.MsgFileTypeNotAllowed, ae.Message)
	assert.Equal(t, 0, store.Puts())
}

func TestGate_AcceptsExactlyMaxSize(t *testing.T) {
	store := memory.NewObjectStore("https://cdn.test")
	g := newTestGate(store)

	_, err := g.Upload(context.Background(), file("edge.jpg", "image/jpeg", fiveMiB))
	require.NoError(t, err)
	assert.Equal(t, 1, store.Puts())
}

func TestGate_StoresWithKeyAndMetadata(t *testing.T) {
	store := memory.NewObjectStore("https://cdn.test")
	g := newTestGate(store)

	res, err := g.Upload(context.Background(), file("Cover.PNG", "image/png; charset=binary", 512))
	require.NoError(t, err)

	const key = "images/1767225600000-k3x9q.png"
	assert.Equal(t, &domain.UploadResult{
		DownloadURL:      "https://cdn.test/" + key,
		OriginalFileName: "Cover.PNG",
		ContentType:      "image/png",
	}, res)

	obj, ok := store.Get(key)
	require.True(t, ok)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, "Cover.PNG", obj.Metadata["original-name"])
	assert.Len(t, obj.Data, 512)
}

func TestGate_StorageFailureIsUploadError(t *testing.T) {
	store := memory.NewObjectStore("https://cdn.test")
	store.FailWith(errors.New("connection reset"))
	g := newTestGate(store)

	_, err := g.Upload(context.Background(), file("a.webp", "image/webp", 10))
	require.Error(t, err)
	assert.True(t, domain.Is(err, domain.CodeUploadFailed))
	assert.False(t, domain.Is(err, domain.CodeValidation))
	assert.ErrorContains(t, err, "connection reset")
}

func TestGate_MissingBody(t *testing.T) {
	store := memory.NewObjectStore("https://cdn.test")
	g := newTestGate(store)

	_, err := g.Upload(context.Background(), domain.File{Name: "a.png", ContentType: "image/png"})
	assert.True(t, domain.Is(err, domain.CodeValidation))
	assert.Equal(t, 0, store.Puts())
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "heic", extension("IMG_0001.HEIC", "image/heic"))
	assert.Equal(t, "jpg", extension("noext", "image/jpeg"))
	assert.Equal(t, "webp", extension("", "image/webp"))
}

func TestRandomSuffix(t *testing.T) {
	a, b := randomSuffix(), randomSuffix()
	assert.Len(t, a, 10)
	assert.NotEqual(t, a, b)
}
