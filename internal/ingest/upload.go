package ingest

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sagaeng/saga/internal/errors"
	"github.com/sagaeng/saga/internal/model"
)

// TextExtractor converts a non-plain-text upload (a PDF) into its plain
// text content. It is an external collaborator: this module does not
// implement PDF parsing itself.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

const defaultStreamChunkBytes = 64 * 1024
const defaultStreamThresholdBytes = 10 * 1024 * 1024

var uploadExtensions = map[string]bool{".txt": true, ".md": true, ".pdf": true}

// UploadFolderResult reports processUploadsFolder's outcome.
type UploadFolderResult struct {
	Processed int
	Errors    []string
}

// ProcessUploadFile reads one file from disk, converts it to plain text
// (PDFs via the configured extractor), ingests it through AddDocument,
// and mirrors the original file into the data directory under the
// resulting document id.
func (p *Pipeline) ProcessUploadFile(ctx context.Context, path string, meta model.Metadata) AddDocumentResult {
	ext := strings.ToLower(filepath.Ext(path))
	meta.OriginalFilename = filepath.Base(path)
	meta.FileExtension = ext
	if meta.Source == "" {
		meta.Source = model.SourceUpload
	}

	content, err := p.readUploadContent(ctx, path, ext)
	if err != nil {
		return AddDocumentResult{Rejected: errors.Wrap(errors.IoError, err)}
	}

	result := p.AddDocument(ctx, AddDocumentInput{
		Title:       meta.OriginalFilename,
		Content:     content,
		ContentType: contentTypeForExt(ext),
		Metadata:    meta,
	})
	if result.Document != nil {
		p.mirrorUpload(path, result.Document.ID, ext)
	}
	return result
}

// ProcessUploadsFolder iterates .txt, .md, and .pdf files directly
// under the configured uploads directory, ingesting each in turn and
// collecting per-file errors rather than aborting on the first one.
func (p *Pipeline) ProcessUploadsFolder(ctx context.Context) UploadFolderResult {
	entries, err := os.ReadDir(p.Config.UploadsDir)
	if err != nil {
		return UploadFolderResult{Errors: []string{err.Error()}}
	}

	var result UploadFolderResult
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !uploadExtensions[ext] {
			continue
		}
		path := filepath.Join(p.Config.UploadsDir, e.Name())
		out := p.ProcessUploadFile(ctx, path, model.Metadata{})
		if out.Rejected != nil {
			result.Errors = append(result.Errors, out.Rejected.Message)
			continue
		}
		result.Processed++
	}
	return result
}

// readUploadContent converts a file on disk into plain text. PDFs are
// routed through the configured extractor; text/markdown files are
// read directly, using a streaming reader above the configured size
// threshold so large uploads don't require a single oversized read.
func (p *Pipeline) readUploadContent(ctx context.Context, path, ext string) (string, error) {
	if ext == ".pdf" {
		if p.PDFExtractor == nil {
			return "", errors.New(errors.ValidationFailed, "no PDF extractor configured", nil)
		}
		return p.PDFExtractor.Extract(ctx, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	threshold := p.Config.StreamThreshold
	if threshold <= 0 {
		threshold = defaultStreamThresholdBytes
	}
	if info.Size() < int64(threshold) {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return readStreaming(path, p.streamChunkBytes())
}

func (p *Pipeline) streamChunkBytes() int {
	if p.Config.StreamChunkBytes > 0 {
		return p.Config.StreamChunkBytes
	}
	return defaultStreamChunkBytes
}

// readStreaming reads a file in fixed-size chunks via a buffered
// reader rather than a single os.ReadFile call.
func readStreaming(path string, chunkBytes int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var sb strings.Builder
	buf := make([]byte, chunkBytes)
	reader := bufio.NewReaderSize(f, chunkBytes)
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			sb.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// mirrorUpload copies the original uploaded file into the data
// directory, named by the resulting document id. Mirror failures are
// non-fatal to the ingest itself.
func (p *Pipeline) mirrorUpload(srcPath, documentID, ext string) {
	dataDir := p.Config.DataDir
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dataDir, documentID+ext))
	if err != nil {
		return
	}
	defer dst.Close()

	_, _ = io.Copy(dst, src)
}

func contentTypeForExt(ext string) string {
	switch ext {
	case ".md":
		return "markdown"
	case ".pdf":
		return "pdf"
	default:
		return "text"
	}
}
