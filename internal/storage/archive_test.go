package storage

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/mkhrrs89/TaskPoints/internal/engine"
)

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newMemStore()
	svc := newTestService(src)
	defer svc.Close()

	imgID, err := svc.SaveImageBlob(ctx, []byte("png-bytes"), "image/png")
	if err != nil {
		t.Fatalf("save image: %v", err)
	}
	state := engine.NormalizeState(nil)
	state.YouImageID = imgID
	state.Tasks = []engine.Task{{ID: "t1", Title: "Stretch"}}
	state.Completions = []engine.Completion{datedCompletion("c1", 1, 5)}
	if err := svc.SaveStateSnapshot(state, SaveOptions{Immediate: true}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var buf bytes.Buffer
	if err := svc.ExportArchive(ctx, &buf); err != nil {
		t.Fatalf("export: %v", err)
	}

	// Entries are stored uncompressed.
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	names := map[string]uint16{}
	for _, f := range zr.File {
		names[f.Name] = f.Method
	}
	if m, ok := names[ManifestName]; !ok || m != zip.Store {
		t.Fatalf("manifest entry = %v/%v", names[ManifestName], ok)
	}
	if m, ok := names[imgID+".png"]; !ok || m != zip.Store {
		t.Fatalf("image entry = %v/%v", m, ok)
	}

	// Import into a fresh store.
	dst := newMemStore()
	dstSvc := newTestService(dst)
	defer dstSvc.Close()

	res, err := dstSvc.Import(ctx, buf.Bytes())
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Images != 1 {
		t.Fatalf("images restored = %d, want 1", res.Images)
	}
	got := storedState(t, dst)
	if len(got.Tasks) != 1 || len(got.Completions) != 1 || got.YouImageID != imgID {
		t.Fatalf("imported state = tasks %d, completions %d, image %q",
			len(got.Tasks), len(got.Completions), got.YouImageID)
	}
	blob, err := dstSvc.GetImageBlob(ctx, imgID)
	if err != nil {
		t.Fatalf("imported image: %v", err)
	}
	if string(blob.Data) != "png-bytes" || blob.MIME != "image/png" {
		t.Fatalf("imported blob = %q %q", blob.MIME, blob.Data)
	}
}

func TestImportBareJSON(t *testing.T) {
	svc := newTestService(newMemStore())
	defer svc.Close()

	doc := []byte(`{"tasks":[{"id":"t1","title":"Stretch"}],"completions":[]}`)
	res, err := svc.Import(context.Background(), doc)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(res.State.Tasks) != 1 {
		t.Fatalf("tasks = %d", len(res.State.Tasks))
	}
}

func TestImportRejectsInvalidDocuments(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not json", "hello"},
		{"json scalar", `42`},
		{"missing tasks", `{"completions":[]}`},
		{"missing completions", `{"tasks":[]}`},
		{"tasks not an array", `{"tasks":{},"completions":[]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemStore()
			svc := newTestService(store)
			defer svc.Close()

			seed := engine.NormalizeState(nil)
			seed.Tasks = []engine.Task{{ID: "keep", Title: "Keep me"}}
			if err := svc.SaveStateSnapshot(seed, SaveOptions{Immediate: true}); err != nil {
				t.Fatalf("seed: %v", err)
			}

			_, err := svc.Import(context.Background(), []byte(tc.data))
			if !errors.Is(err, ErrImportInvalid) {
				t.Fatalf("err = %v, want ErrImportInvalid", err)
			}
			// A rejected import leaves the stored document alone.
			got := storedState(t, store)
			if len(got.Tasks) != 1 || got.Tasks[0].ID != "keep" {
				t.Fatalf("rejected import touched stored state: %+v", got.Tasks)
			}
		})
	}
}

func TestImportRejectsArchiveWithoutManifest(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	fw, err := zw.CreateHeader(&zip.FileHeader{Name: "stray.png", Method: zip.Store})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := fw.Write([]byte("data")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	svc := newTestService(newMemStore())
	defer svc.Close()
	if _, err := svc.Import(context.Background(), buf.Bytes()); !errors.Is(err, ErrImportInvalid) {
		t.Fatalf("err = %v, want ErrImportInvalid", err)
	}
}

func TestImportIgnoresDirectoryEntries(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if _, err := zw.CreateHeader(&zip.FileHeader{Name: "images/"}); err != nil {
		t.Fatalf("create dir entry: %v", err)
	}
	fw, err := zw.CreateHeader(&zip.FileHeader{Name: ManifestName, Method: zip.Store})
	if err != nil {
		t.Fatalf("create manifest: %v", err)
	}
	if _, err := fw.Write([]byte(`{"tasks":[],"completions":[]}`)); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store)
	defer svc.Close()

	res, err := svc.Import(ctx, buf.Bytes())
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Images != 0 {
		t.Fatalf("images = %d, want 0 (directory entries are not blobs)", res.Images)
	}
	if _, err := svc.GetImageBlob(ctx, "images"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("directory entry leaked into the blob store: %v", err)
	}
}

func TestExportSkipsDanglingImageReference(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemStore())
	defer svc.Close()

	state := engine.NormalizeState(nil)
	state.YouImageID = "gone"
	if err := svc.SaveStateSnapshot(state, SaveOptions{Immediate: true}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var buf bytes.Buffer
	if err := svc.ExportArchive(ctx, &buf); err != nil {
		t.Fatalf("export with dangling reference: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	if len(zr.File) != 1 || zr.File[0].Name != ManifestName {
		t.Fatalf("archive entries = %d", len(zr.File))
	}
}
