package proto

import "github.com/pkg/errors"

// DataEntryType tags the payload carried by a DataEntry.
type DataEntryType byte

const (
	DataBool DataEntryType = iota
	DataInt
	DataBinary
	DataString
	// DataEmpty means "delete this key" (DeleteEntry semantics).
	DataEmpty
)

// DataEntry is a single account-data write: a key plus a typed value,
// or Empty to mean deletion.
type DataEntry struct {
	Key    string
	Type   DataEntryType
	Bool   bool
	Int    int64
	Binary ByteStr
	String string
}

func NewBooleanEntry(key string, v bool) DataEntry {
	return DataEntry{Key: key, Type: DataBool, Bool: v}
}

func NewIntegerEntry(key string, v int64) DataEntry {
	return DataEntry{Key: key, Type: DataInt, Int: v}
}

func NewBinaryEntry(key string, v ByteStr) DataEntry {
	return DataEntry{Key: key, Type: DataBinary, Binary: v}
}

func NewStringEntry(key string, v string) DataEntry {
	return DataEntry{Key: key, Type: DataString, String: v}
}

func NewDeleteEntry(key string) DataEntry {
	return DataEntry{Key: key, Type: DataEmpty}
}

// IsEmpty reports whether this entry deletes its key.
func (e DataEntry) IsEmpty() bool { return e.Type == DataEmpty }

// BinarySize is the storage size counted against MaxTotalWriteSetSizeInBytes:
// the UTF-8 key plus the rendered value, per the legacy byte-counting
// convention used for write-set limits.
func (e DataEntry) BinarySize() int {
	n := len(e.Key) + 1 // type tag byte
	switch e.Type {
	case DataBool:
		n += 1
	case DataInt:
		n += 8
	case DataBinary:
		n += 2 + len(e.Binary)
	case DataString:
		n += 2 + len(e.String)
	case DataEmpty:
	}
	return n
}

// ValidateKey checks key length and non-emptiness per the active
// protocol version's key-size limit.
func ValidateKey(key string, maxKeySize int, emptyKeyAllowed bool) error {
	if len(key) == 0 && !emptyKeyAllowed {
		return errors.New("empty data key is not allowed")
	}
	if len(key) > maxKeySize {
		return errors.Errorf("data key size %d exceeds limit %d", len(key), maxKeySize)
	}
	return nil
}
