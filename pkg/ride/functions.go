package ride

// Built-in function ids: a stable u16 -> name table whose exact id
// assignment is wire-compatibility-critical. Kept as package-level
// read-only maps initialised at startup.
const (
	FuncToBase58   uint16 = 100
	FuncFromBase58 uint16 = 101
	FuncToBase64   uint16 = 102
	FuncFromBase64 uint16 = 103

	FuncSumString uint16 = 202

	FuncCreateList uint16 = 1100
	FuncGetList    uint16 = 1101
	FuncAppendList uint16 = 1102
	FuncConcatList uint16 = 1103
	FuncIndexOf    uint16 = 1104

	FuncParseIntValue uint16 = 1200
	FuncSplitStr      uint16 = 1201

	FuncLongToBytes   uint16 = 1300
	FuncBytesToLong   uint16 = 1301
	FuncStringToBytes uint16 = 1302
	FuncUtf8String    uint16 = 1303
	FuncTakeBytes     uint16 = 1304
	FuncDropBytes     uint16 = 1305
	FuncTakeString    uint16 = 1306
	FuncDropString    uint16 = 1307

	FuncSigVerify uint16 = 1400
	FuncBlake2b256 uint16 = 1401
)

// FunctionIDs maps each stable built-in id to its source name.
var FunctionIDs = map[uint16]string{
	FuncToBase58:      "toBase58String",
	FuncFromBase58:    "fromBase58String",
	FuncToBase64:      "toBase64String",
	FuncFromBase64:    "fromBase64String",
	FuncSumString:     "SumString",
	FuncCreateList:    "cons",
	FuncGetList:       "getElement",
	FuncAppendList:    "appendList",
	FuncConcatList:    "concatList",
	FuncIndexOf:       "indexOf",
	FuncParseIntValue: "parseIntValue",
	FuncSplitStr:      "splitStr",
	FuncLongToBytes:   "toBytes",
	FuncBytesToLong:   "toInt",
	FuncStringToBytes: "stringToBytes",
	FuncUtf8String:    "toUtf8String",
	FuncTakeBytes:     "take",
	FuncDropBytes:     "drop",
	FuncTakeString:    "takeString",
	FuncDropString:    "dropString",
	FuncSigVerify:     "sigVerify",
	FuncBlake2b256:    "blake2b256",
}

// FunctionNameToID is the reverse lookup of FunctionIDs.
var FunctionNameToID = invert(FunctionIDs)

func invert(m map[uint16]string) map[string]uint16 {
	out := make(map[string]uint16, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}
