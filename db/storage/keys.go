package storage

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"strings"

	"nanodb/db/errs"
	"nanodb/db/types"
)

// Key layout: every key lives under one of five top-level namespaces (the
// four below plus statsKey's "stats"), separated by a NUL byte from the
// table name that follows it so no table name can collide with a
// namespace tag.
var (
	metaPrefix = []byte("meta\x00")
	rowNS      = []byte("row\x00")
	idxNS      = []byte("idx\x00")
	seqNS      = []byte("seq\x00")
)

func metaKey(table string) []byte {
	return append(append([]byte{}, metaPrefix...), table...)
}

func rowPrefix(table string) []byte {
	return append(append(append([]byte{}, rowNS...), table...), 0)
}

func rowKey(table string, rowID uint64) []byte {
	k := rowPrefix(table)
	var id [8]byte
	binary.BigEndian.PutUint64(id[:], rowID)
	return append(k, id[:]...)
}

func rowIDFromKey(table string, key []byte) uint64 {
	prefix := rowPrefix(table)
	return binary.BigEndian.Uint64(key[len(prefix):])
}

func rowIDBytes(id uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], id)
	return b[:]
}

func rowIDFromBytes(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

func indexPrefix(table, indexName string) []byte {
	k := append(append([]byte{}, idxNS...), table...)
	k = append(k, 0)
	k = append(k, indexName...)
	return append(k, 0)
}

func seqKey(table string) []byte {
	return append(append([]byte{}, seqNS...), table...)
}

func statsKey(table string) []byte {
	return []byte("stats\x00" + table)
}

// compositeValue folds several column values into one key value, so a
// multi-column primary key or unique group can still be indexed through a
// single-column HashIndex. Values.String() is deterministic for every type
// NanoDB supports, which is all a composite uniqueness key needs.
func compositeValue(values []types.Value) types.Value {
	if len(values) == 1 {
		return values[0]
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}
	return types.NewString(types.TEXT, strings.Join(parts, "\x1f"))
}

func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, errs.Wrap(errs.IO, err, "storage: encoding")
	}
	return buf.Bytes(), nil
}

func decodeGob(data []byte, v interface{}) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return errs.Wrap(errs.IO, err, "storage: decoding")
	}
	return nil
}
