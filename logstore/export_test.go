package logstore

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"

	"github.com/couchbase/tools-logstore/core/log"
)

func newExportStore(t *testing.T) *Store {
	store, _ := newTestStore(t, StoreOptions{})

	_, err := store.Log(log.LevelInfo, "first", nil)
	require.NoError(t, err)

	_, err = store.Log(log.LevelError, "second", nil)
	require.NoError(t, err)

	return store
}

func TestExportText(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, newExportStore(t).Export(context.Background(), &buf, ExportOptions{}))

	expected := "[2025-06-01 12:00:00] [info] first\n[2025-06-01 12:00:00] [error] second\n"
	require.Equal(t, expected, buf.String())
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer

	err := newExportStore(t).Export(context.Background(), &buf, ExportOptions{Format: ExportFormatJSON})
	require.NoError(t, err)

	var (
		scanner = bufio.NewScanner(&buf)
		entries []Entry
	)

	for scanner.Scan() {
		var entry Entry
		require.NoError(t, jsoniter.Unmarshal(scanner.Bytes(), &entry))

		entries = append(entries, entry)
	}

	require.Len(t, entries, 2)
	require.Equal(t, int64(1), entries[0].ID)
	require.Equal(t, log.LevelInfo, entries[0].Level)
	require.Equal(t, "second", entries[1].Message)
	require.Equal(t, log.LevelError, entries[1].Level)
}

func TestExportCompressed(t *testing.T) {
	type test struct {
		name        string
		compression Compression
		reader      func(r io.Reader) (io.Reader, error)
	}

	tests := []test{
		{
			name:        "Gzip",
			compression: CompressionGzip,
			reader:      func(r io.Reader) (io.Reader, error) { return gzip.NewReader(r) },
		},
		{
			name:        "Zstd",
			compression: CompressionZstd,
			reader: func(r io.Reader) (io.Reader, error) {
				decoder, err := zstd.NewReader(r)
				if err != nil {
					return nil, err
				}

				return decoder.IOReadCloser(), nil
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var buf bytes.Buffer

			err := newExportStore(t).Export(context.Background(), &buf, ExportOptions{Compression: test.compression})
			require.NoError(t, err)

			r, err := test.reader(&buf)
			require.NoError(t, err)

			decompressed, err := io.ReadAll(r)
			require.NoError(t, err)
			require.Equal(t, 2, strings.Count(string(decompressed), "\n"))
			require.Contains(t, string(decompressed), "[error] second")
		})
	}
}

func TestExportInvalidOptions(t *testing.T) {
	store := newExportStore(t)

	require.Error(t, store.Export(context.Background(), io.Discard, ExportOptions{Format: "xml"}))
	require.Error(t, store.Export(context.Background(), io.Discard, ExportOptions{Compression: "lz4"}))
}
