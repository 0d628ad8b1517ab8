package target

import (
	"github.com/slowlang/isel/compiler/asm"
)

type (
	// Class groups opcodes by how their operands are rendered.
	Class int

	Desc struct {
		Name  string
		Class Class
	}
)

const (
	ClassGeneric Class = iota
	ClassTrap
	ClassFloatCC
	ClassCoprocCC
)

const (
	_ asm.Opcode = iota

	// alu
	SET
	ORrr
	ORri
	ADDrr
	ADDri
	SUBrr
	SUBri
	SMULrr
	SMULri
	ANDrr
	ANDri
	XORrr
	XORri
	SLLrr
	SLLri
	SRLrr
	SRLri
	SRArr
	SRAri
	SUBCCrr
	SUBCCri
	ORCCrr
	SETHIi
	BFEU
	BFES

	// memory
	LD
	LDV2
	LDV4
	LDG
	LDGV2
	LDGV4
	LDU
	LDUV2
	LDUV4
	ST
	STV2
	STV4

	// calling convention
	LDPARAM
	LDPARAMV2
	LDPARAMV4
	STRETVAL
	STRETVALV2
	STRETVALV4
	STPARAM
	STPARAMV2
	STPARAMV4

	CVTA
	CVTATO

	TEX1D
	TEX2D
	TEX3D
	SULD1D
	SULD2D
	SULD3D
	SUST1D
	SUST2D
	SUST3D
	TEXHANDLE

	POPC
	CLZ
	BREV
	MEMBAR

	// control
	JMPLrr
	JMPLri
	CALL
	BCOND
	BCONDA
	FBCOND
	FBCONDA
	BPFCC
	BPFCCA
	BPFCCNT
	BPFCCANT
	CBCOND
	CBCONDA

	MOVICCrr
	MOVICCri
	MOVFCCrr
	MOVFCCri
	V9MOVFCCrr
	V9MOVFCCri
	FMOVS_FCC
	FMOVD_FCC
	FMOVQ_FCC
	V9FMOVS_FCC
	V9FMOVD_FCC
	V9FMOVQ_FCC

	V9FCMPS
	V9FCMPD
	V9FCMPQ
	V9FCMPES
	V9FCMPED
	V9FCMPEQ

	TICCri
	TICCrr
	TRAPri
	TRAPrr
	TXCCri
	TXCCrr

	NumOpcodes
)

var descs = [NumOpcodes]Desc{
	SET:     {Name: "SET"},
	ORrr:    {Name: "ORrr"},
	ORri:    {Name: "ORri"},
	ADDrr:   {Name: "ADDrr"},
	ADDri:   {Name: "ADDri"},
	SUBrr:   {Name: "SUBrr"},
	SUBri:   {Name: "SUBri"},
	SMULrr:  {Name: "SMULrr"},
	SMULri:  {Name: "SMULri"},
	ANDrr:   {Name: "ANDrr"},
	ANDri:   {Name: "ANDri"},
	XORrr:   {Name: "XORrr"},
	XORri:   {Name: "XORri"},
	SLLrr:   {Name: "SLLrr"},
	SLLri:   {Name: "SLLri"},
	SRLrr:   {Name: "SRLrr"},
	SRLri:   {Name: "SRLri"},
	SRArr:   {Name: "SRArr"},
	SRAri:   {Name: "SRAri"},
	SUBCCrr: {Name: "SUBCCrr"},
	SUBCCri: {Name: "SUBCCri"},
	ORCCrr:  {Name: "ORCCrr"},
	SETHIi:  {Name: "SETHIi"},
	BFEU:    {Name: "BFEU"},
	BFES:    {Name: "BFES"},

	LD:    {Name: "LD"},
	LDV2:  {Name: "LDV2"},
	LDV4:  {Name: "LDV4"},
	LDG:   {Name: "LDG"},
	LDGV2: {Name: "LDGV2"},
	LDGV4: {Name: "LDGV4"},
	LDU:   {Name: "LDU"},
	LDUV2: {Name: "LDUV2"},
	LDUV4: {Name: "LDUV4"},
	ST:    {Name: "ST"},
	STV2:  {Name: "STV2"},
	STV4:  {Name: "STV4"},

	LDPARAM:    {Name: "LDPARAM"},
	LDPARAMV2:  {Name: "LDPARAMV2"},
	LDPARAMV4:  {Name: "LDPARAMV4"},
	STRETVAL:   {Name: "STRETVAL"},
	STRETVALV2: {Name: "STRETVALV2"},
	STRETVALV4: {Name: "STRETVALV4"},
	STPARAM:    {Name: "STPARAM"},
	STPARAMV2:  {Name: "STPARAMV2"},
	STPARAMV4:  {Name: "STPARAMV4"},

	CVTA:   {Name: "CVTA"},
	CVTATO: {Name: "CVTATO"},

	TEX1D:     {Name: "TEX1D"},
	TEX2D:     {Name: "TEX2D"},
	TEX3D:     {Name: "TEX3D"},
	SULD1D:    {Name: "SULD1D"},
	SULD2D:    {Name: "SULD2D"},
	SULD3D:    {Name: "SULD3D"},
	SUST1D:    {Name: "SUST1D"},
	SUST2D:    {Name: "SUST2D"},
	SUST3D:    {Name: "SUST3D"},
	TEXHANDLE: {Name: "TEXHANDLE"},

	POPC:   {Name: "POPC"},
	CLZ:    {Name: "CLZ"},
	BREV:   {Name: "BREV"},
	MEMBAR: {Name: "MEMBAR"},

	JMPLrr:   {Name: "JMPLrr"},
	JMPLri:   {Name: "JMPLri"},
	CALL:     {Name: "CALL"},
	BCOND:    {Name: "BCOND"},
	BCONDA:   {Name: "BCONDA"},
	FBCOND:   {Name: "FBCOND", Class: ClassFloatCC},
	FBCONDA:  {Name: "FBCONDA", Class: ClassFloatCC},
	BPFCC:    {Name: "BPFCC", Class: ClassFloatCC},
	BPFCCA:   {Name: "BPFCCA", Class: ClassFloatCC},
	BPFCCNT:  {Name: "BPFCCNT", Class: ClassFloatCC},
	BPFCCANT: {Name: "BPFCCANT", Class: ClassFloatCC},
	CBCOND:   {Name: "CBCOND", Class: ClassCoprocCC},
	CBCONDA:  {Name: "CBCONDA", Class: ClassCoprocCC},

	MOVICCrr:    {Name: "MOVICCrr"},
	MOVICCri:    {Name: "MOVICCri"},
	MOVFCCrr:    {Name: "MOVFCCrr", Class: ClassFloatCC},
	MOVFCCri:    {Name: "MOVFCCri", Class: ClassFloatCC},
	V9MOVFCCrr:  {Name: "V9MOVFCCrr", Class: ClassFloatCC},
	V9MOVFCCri:  {Name: "V9MOVFCCri", Class: ClassFloatCC},
	FMOVS_FCC:   {Name: "FMOVS_FCC", Class: ClassFloatCC},
	FMOVD_FCC:   {Name: "FMOVD_FCC", Class: ClassFloatCC},
	FMOVQ_FCC:   {Name: "FMOVQ_FCC", Class: ClassFloatCC},
	V9FMOVS_FCC: {Name: "V9FMOVS_FCC", Class: ClassFloatCC},
	V9FMOVD_FCC: {Name: "V9FMOVD_FCC", Class: ClassFloatCC},
	V9FMOVQ_FCC: {Name: "V9FMOVQ_FCC", Class: ClassFloatCC},

	V9FCMPS:  {Name: "V9FCMPS"},
	V9FCMPD:  {Name: "V9FCMPD"},
	V9FCMPQ:  {Name: "V9FCMPQ"},
	V9FCMPES: {Name: "V9FCMPES"},
	V9FCMPED: {Name: "V9FCMPED"},
	V9FCMPEQ: {Name: "V9FCMPEQ"},

	// immediates of the trap family are 7 bits wide
	TICCri: {Name: "TICCri", Class: ClassTrap},
	TICCrr: {Name: "TICCrr", Class: ClassTrap},
	TRAPri: {Name: "TRAPri", Class: ClassTrap},
	TRAPrr: {Name: "TRAPrr", Class: ClassTrap},
	TXCCri: {Name: "TXCCri", Class: ClassTrap},
	TXCCrr: {Name: "TXCCrr", Class: ClassTrap},
}

var byName = func() map[string]asm.Opcode {
	m := make(map[string]asm.Opcode, len(descs))

	for op, d := range descs {
		if d.Name != "" {
			m[d.Name] = asm.Opcode(op)
		}
	}

	return m
}()

func Describe(op asm.Opcode) Desc {
	if op <= 0 || op >= NumOpcodes {
		return Desc{Name: "UNKNOWN"}
	}

	return descs[op]
}

func OpcodeClass(op asm.Opcode) Class {
	return Describe(op).Class
}

func OpcodeName(op asm.Opcode) string {
	return Describe(op).Name
}

func LookupOpcode(name string) (asm.Opcode, bool) {
	op, ok := byName[name]
	return op, ok
}
