package target

import "strconv"

// Condition codes share one numbering across three namespaces.
// Integer codes are 0-15, floating 16-31 and coprocessor 32-47.
const (
	FloatCCBase  = 16
	CoprocCCBase = 32
)

var condNames = [48]string{
	// integer
	0: "n", 1: "e", 2: "le", 3: "l", 4: "leu", 5: "cs", 6: "neg", 7: "vs",
	8: "a", 9: "ne", 10: "g", 11: "ge", 12: "gu", 13: "cc", 14: "pos", 15: "vc",

	// floating
	16: "n", 17: "ne", 18: "lg", 19: "ul", 20: "l", 21: "ug", 22: "g", 23: "u",
	24: "a", 25: "e", 26: "ue", 27: "ge", 28: "uge", 29: "le", 30: "ule", 31: "o",

	// coprocessor
	32: "n", 33: "123", 34: "12", 35: "13", 36: "1", 37: "23", 38: "2", 39: "3",
	40: "a", 41: "0", 42: "03", 43: "02", 44: "023", 45: "01", 46: "013", 47: "012",
}

// Renumber moves raw code cc read from an instruction of class cl
// into the absolute namespace.
func Renumber(cc int64, cl Class) int64 {
	switch cl {
	case ClassFloatCC:
		if cc < FloatCCBase {
			cc += FloatCCBase
		}
	case ClassCoprocCC:
		if cc < CoprocCCBase {
			cc += CoprocCCBase
		}
	}

	return cc
}

// CondName returns the mnemonic of absolute condition code cc.
func CondName(cc int64) string {
	if cc < 0 || cc >= int64(len(condNames)) {
		return "cc" + strconv.FormatInt(cc, 10)
	}

	return condNames[cc]
}
