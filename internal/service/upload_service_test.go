package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-assign/internal/plugin/submissionfile"
)

func TestUploadServiceRejectsSize(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUploadService(&storageStub{}, 1, testLogger())

	file := buildFileHeader(t, "file.pdf", bytes.Repeat([]byte("a"), 2*1024*1024))

	_, err := svc.Store(context.Background(), env.store.Files, file, UploadTarget{Area: submissionfile.Area(1, 1), UserID: 1})
	require.ErrorIs(t, err, ErrUploadTooLarge)
}

func TestUploadServiceHonoursTargetLimit(t *testing.T) {
	env := newTestEnv(t)

	file := buildFileHeader(t, "notes.txt", bytes.Repeat([]byte("a"), 2048))

	_, err := env.uploads.Store(context.Background(), env.store.Files, file, UploadTarget{Area: submissionfile.Area(1, 1), UserID: 1, MaxBytes: 1024})
	require.ErrorIs(t, err, ErrUploadTooLarge)
}

func TestUploadServiceBlocksExecutables(t *testing.T) {
	env := newTestEnv(t)

	elf := append([]byte{0x7f, 'E', 'L', 'F', 0x02, 0x01, 0x01}, bytes.Repeat([]byte{0}, 64)...)
	file := buildFileHeader(t, "run.bin", elf)

	_, err := env.uploads.Store(context.Background(), env.store.Files, file, UploadTarget{Area: submissionfile.Area(1, 1), UserID: 1})
	require.ErrorIs(t, err, ErrUploadTypeNotAllowed)
}

func TestUploadServiceStoresIntoArea(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	area := submissionfile.Area(7, 3)

	file := buildFileHeader(t, "../Lab Photo.PNG", pngHeader)
	stored, err := env.uploads.Store(ctx, env.store.Files, file, UploadTarget{Area: area, UserID: 42, FilePath: "images"})
	require.NoError(t, err)
	require.Equal(t, "Lab Photo.PNG", stored.FileName)
	require.Equal(t, "/images/", stored.FilePath)
	require.Equal(t, "image/png", stored.MimeType)
	require.Len(t, stored.Checksum, 64)
	require.Equal(t, []string{"7-submission_files-3-lab-photo.png"}, env.storage.names)

	files, err := env.store.Files.ListArea(ctx, area)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, uint(42), files[0].UserID)
}
