package logstore

import (
	"context"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/couchbase/tools-logstore/ratelimit"
)

// ExportFormat is the encoding used for each exported entry.
type ExportFormat string

const (
	// ExportFormatJSON writes one JSON object per line.
	ExportFormatJSON ExportFormat = "json"

	// ExportFormatText writes one '[date] [level] message' line per entry.
	ExportFormatText ExportFormat = "text"
)

// Compression is the compression applied to an export.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// textDateLayout is the layout used for dates in text exports.
const textDateLayout = "2006-01-02 15:04:05"

// ExportOptions encapsulates the options available when exporting a store.
type ExportOptions struct {
	// Format defaults to 'ExportFormatText'.
	Format ExportFormat

	// Compression defaults to 'CompressionNone'.
	Compression Compression

	// BytesPerSecond limits the rate at which the (compressed) export is written, zero means unlimited.
	BytesPerSecond int
}

// Export writes every entry in this store's scope to the given writer, oldest first.
func (s *Store) Export(ctx context.Context, w io.Writer, options ExportOptions) error {
	entries, err := s.ReadAll()
	if err != nil {
		return err
	}

	w = ratelimit.NewBytesPerSecondWriter(ctx, w, options.BytesPerSecond)

	cw, err := newCompressedWriter(w, options.Compression)
	if err != nil {
		return err
	}

	err = encodeEntries(cw, entries, options.Format)
	if err != nil {
		cw.Close()
		return err
	}

	err = cw.Close()
	if err != nil {
		return fmt.Errorf("failed to finish export: %w", err)
	}

	s.logger.Debugf("(Log Store) Exported %d entries", len(entries))

	return nil
}

func encodeEntries(w io.Writer, entries []Entry, format ExportFormat) error {
	switch format {
	case ExportFormatJSON:
		encoder := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)

		for _, entry := range entries {
			err := encoder.Encode(entry)
			if err != nil {
				return fmt.Errorf("failed to encode entry %d: %w", entry.ID, err)
			}
		}
	case ExportFormatText, "":
		for _, entry := range entries {
			_, err := fmt.Fprintf(w, "[%s] [%s] %s\n", entry.Date.Format(textDateLayout), entry.Level, entry.Message)
			if err != nil {
				return fmt.Errorf("failed to write entry %d: %w", entry.ID, err)
			}
		}
	default:
		return fmt.Errorf("unknown export format '%s'", format)
	}

	return nil
}

// nopWriteCloser allows uncompressed exports to share the compressed code path.
type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}

func newCompressedWriter(w io.Writer, compression Compression) (io.WriteCloser, error) {
	switch compression {
	case CompressionNone, "":
		return nopWriteCloser{Writer: w}, nil
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}

		return zw, nil
	}

	return nil, fmt.Errorf("unknown compression '%s'", compression)
}
