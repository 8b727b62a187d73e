// Package store persists aggregated pipeline outputs in a key-value store
// for rapid retrieval by the interactive viewer.
//
// The aggregation pipeline writes condensed alignment tables, ordered ID
// lists, and a chunked distance matrix under fixed keys; the viewer reads
// them back without touching the original flat files.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/genemap/genemap/pkg/errors"
	"github.com/genemap/genemap/pkg/table"
)

// Keys under which the aggregation pipeline writes its outputs.
const (
	KeyAlignments   = "alignments"
	KeyGeneIndex    = "gene_ix"
	KeyGenomeIndex  = "genome_ix"
	KeyDistanceKeys = "distances_keys"
	KeyTSNE         = "tsne"
)

// DistanceChunkKey returns the key of the i-th distance matrix chunk.
func DistanceChunkKey(i int) string {
	return fmt.Sprintf("distances_%d", i)
}

// Store is a key-value byte store. Get reports a miss with found=false
// rather than an error.
type Store interface {
	Get(ctx context.Context, key string) (data []byte, found bool, err error)
	Set(ctx context.Context, key string, data []byte) error
	Close() error
}

// SetJSON marshals v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "encoding %q", key)
	}
	return s.Set(ctx, key, data)
}

// GetJSON loads key and unmarshals it into out. A missing key returns
// found=false and leaves out untouched.
func GetJSON(ctx context.Context, s Store, key string, out any) (bool, error) {
	data, found, err := s.Get(ctx, key)
	if err != nil || !found {
		return found, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return true, errors.Wrap(errors.ErrCodeStore, err, "decoding %q", key)
	}
	return true, nil
}

// MatrixDoc is the stored form of a named numeric matrix. Whole matrices
// (t-SNE coordinates) and distance chunks share this shape.
type MatrixDoc struct {
	RowIDs []string    `json:"row_ids"`
	ColIDs []string    `json:"col_ids"`
	Values [][]float64 `json:"values"`
}

// Matrix converts the document back into a matrix.
func (d MatrixDoc) Matrix() *table.Matrix {
	return table.NewMatrix(d.RowIDs, d.ColIDs, d.Values)
}

// WriteDistances stores the matrix in chunks of at most rowsPerChunk rows.
// Chunking bounds per-write payload size; row order is preserved across
// chunks and the exact chunk-key sequence is recorded under
// KeyDistanceKeys for reassembly.
func WriteDistances(ctx context.Context, s Store, m *table.Matrix, rowsPerChunk int) error {
	if rowsPerChunk < 1 {
		return errors.New(errors.ErrCodeInvalidArgument,
			"rows per chunk must be positive, got %d", rowsPerChunk)
	}

	var keys []string
	for start := 0; start < len(m.RowIDs); start += rowsPerChunk {
		end := start + rowsPerChunk
		if end > len(m.RowIDs) {
			end = len(m.RowIDs)
		}
		key := DistanceChunkKey(len(keys))
		chunk := MatrixDoc{
			RowIDs: m.RowIDs[start:end],
			ColIDs: m.ColIDs,
			Values: m.Values[start:end],
		}
		if err := SetJSON(ctx, s, key, chunk); err != nil {
			return err
		}
		keys = append(keys, key)
	}

	return SetJSON(ctx, s, KeyDistanceKeys, keys)
}

// ReadDistances reassembles the distance matrix from its recorded chunk-key
// sequence.
func ReadDistances(ctx context.Context, s Store) (*table.Matrix, error) {
	var keys []string
	found, err := GetJSON(ctx, s, KeyDistanceKeys, &keys)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.New(errors.ErrCodeStore, "no %q key in store", KeyDistanceKeys)
	}

	var rowIDs []string
	var colIDs []string
	var values [][]float64
	for _, key := range keys {
		var chunk MatrixDoc
		found, err := GetJSON(ctx, s, key, &chunk)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, errors.New(errors.ErrCodeStore, "missing distance chunk %q", key)
		}
		rowIDs = append(rowIDs, chunk.RowIDs...)
		values = append(values, chunk.Values...)
		colIDs = chunk.ColIDs
	}

	return table.NewMatrix(rowIDs, colIDs, values), nil
}
