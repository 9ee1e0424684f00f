package storage

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/mkhrrs89/TaskPoints/internal/engine"
)

// ManifestName is the document entry inside an export archive. Images
// sit next to it as <imageId>.<ext>.
const ManifestName = "taskpoints.json"

var zipMagic = []byte("PK\x03\x04")

// mimeExts maps stored blob media types to archive file extensions.
var mimeExts = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

func extForMIME(mime string) string {
	if ext, ok := mimeExts[mime]; ok {
		return ext
	}
	return "bin"
}

func mimeForExt(ext string) string {
	for mime, e := range mimeExts {
		if e == ext {
			return mime
		}
	}
	if ext == "jpeg" {
		return "image/jpeg"
	}
	return "application/octet-stream"
}

// referencedImageIDs collects every image id the document points at.
func referencedImageIDs(state engine.AppState) []string {
	seen := map[string]bool{}
	var ids []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	add(state.YouImageID)
	for _, p := range state.Players {
		add(p.ImageID)
	}
	return ids
}

// ExportArchive writes the current document and its referenced images as
// an uncompressed archive. Entries use the stored (uncompressed) method;
// the payload is already dense JSON and image data, and stored entries
// keep import cheap.
func (s *Service) ExportArchive(ctx context.Context, w io.Writer) error {
	state, err := s.LoadState()
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)

	manifest, err := engine.EncodeState(&state)
	if err != nil {
		return err
	}
	if err := writeStored(zw, ManifestName, manifest); err != nil {
		return err
	}

	for _, id := range referencedImageIDs(state) {
		blob, err := s.blobs.GetBlob(ctx, id)
		if err != nil {
			// A dangling reference loses only that image.
			s.log.Warn("referenced image missing from blob store", "id", id, "err", err)
			continue
		}
		name := fmt.Sprintf("%s.%s", id, extForMIME(blob.MIME))
		if err := writeStored(zw, name, blob.Data); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish archive: %w", err)
	}
	return nil
}

func writeStored(zw *zip.Writer, name string, data []byte) error {
	fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
	if err != nil {
		return fmt.Errorf("archive entry %q: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("archive entry %q: %w", name, err)
	}
	return nil
}

// ImportResult reports what an import applied.
type ImportResult struct {
	State  engine.AppState
	Images int
}

// Import applies an exported document, either a bare JSON file or an
// archive with a manifest plus images. Validation happens before
// anything is written: a bad document leaves the stored state and blobs
// untouched. A valid one replaces the stored document wholesale
// (explicit imports override sticky keys) and restores its images.
func (s *Service) Import(ctx context.Context, data []byte) (ImportResult, error) {
	var manifest []byte
	var images []Blob

	if bytes.HasPrefix(data, zipMagic) {
		zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return ImportResult{}, fmt.Errorf("%w: unreadable archive: %v", ErrImportInvalid, err)
		}
		for _, f := range zr.File {
			if f.FileInfo().IsDir() {
				continue
			}
			content, err := readZipFile(f)
			if err != nil {
				return ImportResult{}, fmt.Errorf("%w: entry %q: %v", ErrImportInvalid, f.Name, err)
			}
			if path.Base(f.Name) == ManifestName {
				manifest = content
				continue
			}
			base := path.Base(f.Name)
			ext := strings.TrimPrefix(path.Ext(base), ".")
			id := strings.TrimSuffix(base, path.Ext(base))
			if id == "" {
				continue
			}
			images = append(images, Blob{ID: id, MIME: mimeForExt(ext), Data: content})
		}
		if manifest == nil {
			return ImportResult{}, fmt.Errorf("%w: archive has no %s", ErrImportInvalid, ManifestName)
		}
	} else {
		manifest = data
	}

	state, err := validateImportDocument(manifest)
	if err != nil {
		return ImportResult{}, err
	}

	for _, img := range images {
		if err := s.blobs.PutBlob(ctx, img); err != nil {
			return ImportResult{}, fmt.Errorf("restore image %q: %w", img.ID, err)
		}
	}
	if err := s.SaveStateSnapshot(state, SaveOptions{Immediate: true, OverrideSticky: true}); err != nil {
		return ImportResult{}, err
	}
	return ImportResult{State: state, Images: len(images)}, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// requiredImportArrays must be present as JSON arrays for a document to
// be importable; their absence signals a file that was never a
// TaskPoints export.
var requiredImportArrays = []string{"tasks", "completions"}

func validateImportDocument(data []byte) (engine.AppState, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return engine.AppState{}, fmt.Errorf("%w: not a JSON object: %v", ErrImportInvalid, err)
	}
	for _, key := range requiredImportArrays {
		b, ok := raw[key]
		if !ok {
			return engine.AppState{}, fmt.Errorf("%w: missing required array %q", ErrImportInvalid, key)
		}
		trimmed := bytes.TrimSpace(b)
		if len(trimmed) == 0 || trimmed[0] != '[' {
			return engine.AppState{}, fmt.Errorf("%w: field %q is not an array", ErrImportInvalid, key)
		}
	}
	state, err := engine.DecodeState(data)
	if err != nil {
		return engine.AppState{}, fmt.Errorf("%w: %v", ErrImportInvalid, err)
	}
	return state, nil
}
