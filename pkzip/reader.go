// Package pkzip reads and builds the ZIP containers that carry xlsx
// packages. The reader walks the central directory itself so that a
// single corrupt entry degrades to a partial entry map instead of
// failing the whole import.
package pkzip

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"log/slog"

	"github.com/klauspost/compress/flate"
)

// ErrNoEOCD is returned when the buffer has no end-of-central-directory
// marker and therefore is not a ZIP archive.
var ErrNoEOCD = errors.New("pkzip: end of central directory not found")

const (
	sigEOCD    = 0x06054b50
	sigCentral = 0x02014b50
	sigLocal   = 0x04034b50

	methodStored  = 0
	methodDeflate = 8

	// EOCD search window: the fixed record plus the maximum comment.
	eocdWindow = 22 + 65535
)

// Options configures the reader.
type Options struct {
	log *slog.Logger
}

// Option configures ReadEntries.
type Option func(*Options)

// WithLogger sets the logger used for per-entry warnings.
func WithLogger(log *slog.Logger) Option {
	return func(o *Options) { o.log = log }
}

// ReadEntries extracts every entry of the archive into a path → content
// map. A missing EOCD record is fatal; anything wrong with an
// individual entry (truncated data, bad signature, unsupported
// compression) is logged and the entry skipped.
func ReadEntries(data []byte, opts ...Option) (map[string][]byte, error) {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	log := o.log
	if log == nil {
		log = slog.Default()
	}

	eocd := findEOCD(data)
	if eocd < 0 {
		return nil, ErrNoEOCD
	}

	entryCount := int(binary.LittleEndian.Uint16(data[eocd+10:]))
	cdOffset := int(binary.LittleEndian.Uint32(data[eocd+16:]))

	entries := make(map[string][]byte, entryCount)
	offset := cdOffset
	for i := 0; i < entryCount; i++ {
		if offset+46 > len(data) || binary.LittleEndian.Uint32(data[offset:]) != sigCentral {
			break
		}

		nameLen := int(binary.LittleEndian.Uint16(data[offset+28:]))
		extraLen := int(binary.LittleEndian.Uint16(data[offset+30:]))
		commentLen := int(binary.LittleEndian.Uint16(data[offset+32:]))
		centralSize := int(binary.LittleEndian.Uint32(data[offset+20:]))
		localOffset := int(binary.LittleEndian.Uint32(data[offset+42:]))
		next := offset + 46 + nameLen + extraLen + commentLen

		if nameLen > 1000 || offset+46+nameLen > len(data) {
			log.Warn("pkzip: invalid central directory name length", "offset", offset, "nameLen", nameLen)
			offset = next
			continue
		}
		name := string(data[offset+46 : offset+46+nameLen])

		content, ok := readLocalEntry(data, localOffset, centralSize, name, log)
		if ok {
			entries[name] = content
		}
		offset = next
	}

	return entries, nil
}

// readLocalEntry reads one entry through its local file header.
// centralSize is the compressed size recorded in the central directory;
// it is used when the local header carries zero sizes (streamed
// archives that defer sizes to a data descriptor).
func readLocalEntry(data []byte, offset, centralSize int, name string, log *slog.Logger) ([]byte, bool) {
	if offset < 0 || offset+30 > len(data) || binary.LittleEndian.Uint32(data[offset:]) != sigLocal {
		log.Warn("pkzip: bad local header", "entry", name, "offset", offset)
		return nil, false
	}

	method := int(binary.LittleEndian.Uint16(data[offset+8:]))
	compSize := int(binary.LittleEndian.Uint32(data[offset+18:]))
	nameLen := int(binary.LittleEndian.Uint16(data[offset+26:]))
	extraLen := int(binary.LittleEndian.Uint16(data[offset+28:]))
	dataStart := offset + 30 + nameLen + extraLen

	if compSize == 0 && centralSize > 0 {
		compSize = centralSize
	}
	if dataStart+compSize > len(data) {
		log.Warn("pkzip: entry data out of bounds", "entry", name, "compressedSize", compSize)
		return nil, false
	}

	raw := data[dataStart : dataStart+compSize]
	switch method {
	case methodStored:
		return bytes.Clone(raw), true
	case methodDeflate:
		content, err := inflate(raw)
		if err != nil {
			log.Warn("pkzip: inflate failed", "entry", name, "error", err)
			return nil, false
		}
		return content, true
	default:
		log.Warn("pkzip: unsupported compression method", "entry", name, "method", method)
		return nil, false
	}
}

// inflate runs raw-DEFLATE decompression over one entry's data.
func inflate(raw []byte) ([]byte, error) {
	fr := flate.NewReader(bytes.NewReader(raw))
	defer fr.Close()
	return io.ReadAll(fr)
}

// findEOCD scans backward for the EOCD signature, allowing for a
// trailing archive comment.
func findEOCD(data []byte) int {
	min := len(data) - eocdWindow
	if min < 0 {
		min = 0
	}
	for i := len(data) - 22; i >= min; i-- {
		if binary.LittleEndian.Uint32(data[i:]) == sigEOCD {
			return i
		}
	}
	return -1
}
