package pkzip

import (
	"archive/zip"
	"bytes"
	"fmt"
	"hash/crc32"

	"github.com/klauspost/compress/flate"
)

// Entry is one file of a package to be archived.
type Entry struct {
	Path string
	Data []byte
}

// Archive builds ZIP archive bytes from the given entries. Entries are
// deflate-compressed up front and written with their sizes in the local
// headers, so the result is readable by ReadEntries and by spreadsheet
// applications alike.
func Archive(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, e := range entries {
		compressed, err := deflate(e.Data)
		if err != nil {
			return nil, fmt.Errorf("pkzip: compress %q: %w", e.Path, err)
		}

		hdr := &zip.FileHeader{
			Name:               e.Path,
			Method:             zip.Deflate,
			CRC32:              crc32.ChecksumIEEE(e.Data),
			CompressedSize64:   uint64(len(compressed)),
			UncompressedSize64: uint64(len(e.Data)),
		}
		w, err := zw.CreateRaw(hdr)
		if err != nil {
			return nil, fmt.Errorf("pkzip: create %q: %w", e.Path, err)
		}
		if _, err := w.Write(compressed); err != nil {
			return nil, fmt.Errorf("pkzip: write %q: %w", e.Path, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("pkzip: finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(data); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
