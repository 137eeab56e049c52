package ride

import (
	"encoding/binary"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Nekuips1x/Waves/pkg/crypto"
	"github.com/Nekuips1x/Waves/pkg/settings"
)

// Builtin is a pure, deterministic native function implementation.
// The complexity cost is looked up separately by the estimator (see
// estimator.go); Builtin only implements semantics.
type Builtin func(cfg BuiltinConfig, args []Value) (Value, error)

// BuiltinConfig threads the behavioural flags as explicit fields
// alongside the script's StdLibVersion; a builtin whose fix is
// version-gated (takeString/dropString) checks both its flag and
// Version.
type BuiltinConfig struct {
	Version             settings.StdLibVersion
	FixUnicodeFunctions bool
	UseNewPowPrecision  bool
	MaxBytesLength      int
	MaxStringLength     int
	MaxListLength        int
}

// Base58EncodeForRender exposes the base58 codec to Value.Render; kept
// as a thin indirection so pkg/ride never imports pkg/crypto just for
// rendering versus for the builtins table below (both do, but the
// separate name documents the two call sites' distinct purposes).
func Base58EncodeForRender(b []byte) string { return crypto.Base58Encode(b) }

func builtinToBase58(_ BuiltinConfig, args []Value) (Value, error) {
	v := args[0]
	s := crypto.Base58Encode(v.BytesValue)
	return NewString(s, 1<<20) // rendered string, not subject to the input cap
}

func builtinFromBase58(cfg BuiltinConfig, args []Value) (Value, error) {
	s := args[0].StringValue
	b, err := crypto.Base58Decode(s, false)
	if err != nil {
		return Value{}, NewThrow(err.Error())
	}
	return NewBytes(b, cfg.MaxBytesLength)
}

func builtinToBase64(_ BuiltinConfig, args []Value) (Value, error) {
	s := crypto.Base64Encode(args[0].BytesValue)
	return NewString(s, 1<<20)
}

func builtinFromBase64(cfg BuiltinConfig, args []Value) (Value, error) {
	b, err := crypto.Base64Decode(args[0].StringValue, false)
	if err != nil {
		return Value{}, NewThrow(err.Error())
	}
	return NewBytes(b, cfg.MaxBytesLength)
}

func builtinLongToBytes(_ BuiltinConfig, args []Value) (Value, error) {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(args[0].LongValue))
	return NewBytes(b, 8)
}

func builtinBytesToLong(_ BuiltinConfig, args []Value) (Value, error) {
	b := args[0].BytesValue
	if len(b) < 8 {
		return Value{}, NewThrow("Cannot parse 8-byte Long from less than 8 bytes")
	}
	return NewLong(int64(binary.BigEndian.Uint64(b[:8]))), nil
}

func builtinStringToBytes(cfg BuiltinConfig, args []Value) (Value, error) {
	return NewBytes([]byte(args[0].StringValue), cfg.MaxBytesLength)
}

func builtinUtf8String(cfg BuiltinConfig, args []Value) (Value, error) {
	b := args[0].BytesValue
	if !utf8.Valid(b) {
		return Value{}, NewThrow("invalid UTF-8 byte sequence")
	}
	return NewString(string(b), cfg.MaxStringLength)
}

// builtinTakeBytes saturates per historical behavior: requesting more
// bytes than present returns all of them rather than erroring. It has
// no checked variant: it saturates whatever FixUnicodeFunctions and
// Version are.
func builtinTakeBytes(cfg BuiltinConfig, args []Value) (Value, error) {
	b := args[0].BytesValue
	n := args[1].LongValue
	if n < 0 {
		n = 0
	}
	if int(n) > len(b) {
		n = int64(len(b)) // saturating: never error on over-length take
	}
	return NewBytes(b[:n], cfg.MaxBytesLength)
}

func builtinDropBytes(cfg BuiltinConfig, args []Value) (Value, error) {
	b := args[0].BytesValue
	n := args[1].LongValue
	if n < 0 {
		n = 0
	}
	if int(n) > len(b) {
		n = int64(len(b))
	}
	return NewBytes(b[n:], cfg.MaxBytesLength)
}

// builtinTakeString/DropString: since StdLibVersion >= V5 with
// FixUnicodeFunctions set, indices count Unicode code points instead
// of UTF-8 bytes.
func builtinTakeString(cfg BuiltinConfig, args []Value) (Value, error) {
	s := args[0].StringValue
	n := args[1].LongValue
	if n < 0 {
		n = 0
	}
	if cfg.FixUnicodeFunctions && cfg.Version.AtLeast(settings.V5) {
		runes := []rune(s)
		if int(n) > len(runes) {
			n = int64(len(runes))
		}
		return NewString(string(runes[:n]), cfg.MaxStringLength)
	}
	if int(n) > len(s) {
		n = int64(len(s))
	}
	return NewString(s[:n], cfg.MaxStringLength)
}

func builtinDropString(cfg BuiltinConfig, args []Value) (Value, error) {
	s := args[0].StringValue
	n := args[1].LongValue
	if n < 0 {
		n = 0
	}
	if cfg.FixUnicodeFunctions && cfg.Version.AtLeast(settings.V5) {
		runes := []rune(s)
		if int(n) > len(runes) {
			n = int64(len(runes))
		}
		return NewString(string(runes[n:]), cfg.MaxStringLength)
	}
	if int(n) > len(s) {
		n = int64(len(s))
	}
	return NewString(s[n:], cfg.MaxStringLength)
}

func builtinParseIntValue(_ BuiltinConfig, args []Value) (Value, error) {
	n, err := strconv.ParseInt(args[0].StringValue, 10, 64)
	if err != nil {
		return Value{}, NewThrow("failed to parse int: " + err.Error())
	}
	return NewLong(n), nil
}

func builtinSplitStr(cfg BuiltinConfig, args []Value) (Value, error) {
	parts := strings.Split(args[0].StringValue, args[1].StringValue)
	out := make([]Value, len(parts))
	for i, p := range parts {
		v, err := NewString(p, cfg.MaxStringLength)
		if err != nil {
			return Value{}, err
		}
		out[i] = v
	}
	return NewListChecked(out, cfg.MaxListLength)
}

func builtinAppendList(cfg BuiltinConfig, args []Value) (Value, error) {
	list := args[0].ListValues
	out := make([]Value, len(list)+1)
	copy(out, list)
	out[len(list)] = args[1]
	return NewListChecked(out, cfg.MaxListLength)
}

func builtinConcatList(cfg BuiltinConfig, args []Value) (Value, error) {
	a, b := args[0].ListValues, args[1].ListValues
	out := make([]Value, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return NewListChecked(out, cfg.MaxListLength)
}

func builtinGetList(_ BuiltinConfig, args []Value) (Value, error) {
	list := args[0].ListValues
	idx := args[1].LongValue
	if idx < 0 || int(idx) >= len(list) {
		return Value{}, NewThrow("list index out of bounds")
	}
	return list[idx], nil
}

func builtinIndexOf(_ BuiltinConfig, args []Value) (Value, error) {
	haystack, needle := args[0].StringValue, args[1].StringValue
	idx := strings.Index(haystack, needle)
	if idx < 0 {
		return NewUnit(), nil
	}
	return NewLong(int64(idx)), nil
}

func builtinBlake2b256(_ BuiltinConfig, args []Value) (Value, error) {
	d, err := crypto.SecureHash(args[0].BytesValue)
	if err != nil {
		return Value{}, err
	}
	return NewBytes(d.Bytes(), 32)
}

// SignatureVerifier is injected at evaluator construction time; the
// engine consumes hash/signature interfaces only and never implements
// a scheme itself.
type SignatureVerifier interface {
	Verify(message, signature, publicKey []byte) bool
}

func builtinSigVerify(verifier SignatureVerifier) Builtin {
	return func(_ BuiltinConfig, args []Value) (Value, error) {
		ok := verifier.Verify(args[0].BytesValue, args[1].BytesValue, args[2].BytesValue)
		return NewBool(ok), nil
	}
}

// DefaultBuiltins wires every built-in id to its
// implementation, given an injected SignatureVerifier.
func DefaultBuiltins(verifier SignatureVerifier) map[uint16]Builtin {
	return map[uint16]Builtin{
		FuncToBase58:      builtinToBase58,
		FuncFromBase58:    builtinFromBase58,
		FuncToBase64:      builtinToBase64,
		FuncFromBase64:    builtinFromBase64,
		FuncLongToBytes:   builtinLongToBytes,
		FuncBytesToLong:   builtinBytesToLong,
		FuncStringToBytes: builtinStringToBytes,
		FuncUtf8String:    builtinUtf8String,
		FuncTakeBytes:     builtinTakeBytes,
		FuncDropBytes:     builtinDropBytes,
		FuncTakeString:    builtinTakeString,
		FuncDropString:    builtinDropString,
		FuncParseIntValue: builtinParseIntValue,
		FuncSplitStr:      builtinSplitStr,
		FuncAppendList:    builtinAppendList,
		FuncConcatList:    builtinConcatList,
		FuncGetList:       builtinGetList,
		FuncIndexOf:       builtinIndexOf,
		FuncBlake2b256:    builtinBlake2b256,
		FuncSigVerify:     builtinSigVerify(verifier),
	}
}
