package insn

import (
	"fmt"
	"strings"
)

// Opcode identifies one instruction kind of the class-file instruction set.
// Opcodes keep their numeric encoding so decoders can convert bytes directly.
type Opcode int

// Pseudo is the opcode carried by label markers, frames and line markers.
const Pseudo Opcode = -1

const (
	// ========================================================================
	// Constants (0x00-0x14)
	// ========================================================================

	OpNop        Opcode = 0x00
	OpAconstNull Opcode = 0x01
	OpIconstM1   Opcode = 0x02
	OpIconst0    Opcode = 0x03
	OpIconst1    Opcode = 0x04
	OpIconst2    Opcode = 0x05
	OpIconst3    Opcode = 0x06
	OpIconst4    Opcode = 0x07
	OpIconst5    Opcode = 0x08
	OpLconst0    Opcode = 0x09
	OpLconst1    Opcode = 0x0A
	OpFconst0    Opcode = 0x0B
	OpFconst1    Opcode = 0x0C
	OpFconst2    Opcode = 0x0D
	OpDconst0    Opcode = 0x0E
	OpDconst1    Opcode = 0x0F
	OpBipush     Opcode = 0x10
	OpSipush     Opcode = 0x11
	OpLdc        Opcode = 0x12
	OpLdcW       Opcode = 0x13
	OpLdc2W      Opcode = 0x14

	// ========================================================================
	// Loads (0x15-0x35)
	// ========================================================================

	OpIload  Opcode = 0x15
	OpLload  Opcode = 0x16
	OpFload  Opcode = 0x17
	OpDload  Opcode = 0x18
	OpAload  Opcode = 0x19
	OpIload0 Opcode = 0x1A
	OpIload1 Opcode = 0x1B
	OpIload2 Opcode = 0x1C
	OpIload3 Opcode = 0x1D
	OpLload0 Opcode = 0x1E
	OpLload1 Opcode = 0x1F
	OpLload2 Opcode = 0x20
	OpLload3 Opcode = 0x21
	OpFload0 Opcode = 0x22
	OpFload1 Opcode = 0x23
	OpFload2 Opcode = 0x24
	OpFload3 Opcode = 0x25
	OpDload0 Opcode = 0x26
	OpDload1 Opcode = 0x27
	OpDload2 Opcode = 0x28
	OpDload3 Opcode = 0x29
	OpAload0 Opcode = 0x2A
	OpAload1 Opcode = 0x2B
	OpAload2 Opcode = 0x2C
	OpAload3 Opcode = 0x2D
	OpIaload Opcode = 0x2E
	OpLaload Opcode = 0x2F
	OpFaload Opcode = 0x30
	OpDaload Opcode = 0x31
	OpAaload Opcode = 0x32
	OpBaload Opcode = 0x33
	OpCaload Opcode = 0x34
	OpSaload Opcode = 0x35

	// ========================================================================
	// Stores (0x36-0x56)
	// ========================================================================

	OpIstore  Opcode = 0x36
	OpLstore  Opcode = 0x37
	OpFstore  Opcode = 0x38
	OpDstore  Opcode = 0x39
	OpAstore  Opcode = 0x3A
	OpIstore0 Opcode = 0x3B
	OpIstore1 Opcode = 0x3C
	OpIstore2 Opcode = 0x3D
	OpIstore3 Opcode = 0x3E
	OpLstore0 Opcode = 0x3F
	OpLstore1 Opcode = 0x40
	OpLstore2 Opcode = 0x41
	OpLstore3 Opcode = 0x42
	OpFstore0 Opcode = 0x43
	OpFstore1 Opcode = 0x44
	OpFstore2 Opcode = 0x45
	OpFstore3 Opcode = 0x46
	OpDstore0 Opcode = 0x47
	OpDstore1 Opcode = 0x48
	OpDstore2 Opcode = 0x49
	OpDstore3 Opcode = 0x4A
	OpAstore0 Opcode = 0x4B
	OpAstore1 Opcode = 0x4C
	OpAstore2 Opcode = 0x4D
	OpAstore3 Opcode = 0x4E
	OpIastore Opcode = 0x4F
	OpLastore Opcode = 0x50
	OpFastore Opcode = 0x51
	OpDastore Opcode = 0x52
	OpAastore Opcode = 0x53
	OpBastore Opcode = 0x54
	OpCastore Opcode = 0x55
	OpSastore Opcode = 0x56

	// ========================================================================
	// Stack (0x57-0x5F)
	// ========================================================================

	OpPop    Opcode = 0x57
	OpPop2   Opcode = 0x58
	OpDup    Opcode = 0x59
	OpDupX1  Opcode = 0x5A
	OpDupX2  Opcode = 0x5B
	OpDup2   Opcode = 0x5C
	OpDup2X1 Opcode = 0x5D
	OpDup2X2 Opcode = 0x5E
	OpSwap   Opcode = 0x5F

	// ========================================================================
	// Arithmetic and conversions (0x60-0x98)
	// ========================================================================

	OpIadd  Opcode = 0x60
	OpLadd  Opcode = 0x61
	OpFadd  Opcode = 0x62
	OpDadd  Opcode = 0x63
	OpIsub  Opcode = 0x64
	OpLsub  Opcode = 0x65
	OpFsub  Opcode = 0x66
	OpDsub  Opcode = 0x67
	OpImul  Opcode = 0x68
	OpLmul  Opcode = 0x69
	OpFmul  Opcode = 0x6A
	OpDmul  Opcode = 0x6B
	OpIdiv  Opcode = 0x6C
	OpLdiv  Opcode = 0x6D
	OpFdiv  Opcode = 0x6E
	OpDdiv  Opcode = 0x6F
	OpIrem  Opcode = 0x70
	OpLrem  Opcode = 0x71
	OpFrem  Opcode = 0x72
	OpDrem  Opcode = 0x73
	OpIneg  Opcode = 0x74
	OpLneg  Opcode = 0x75
	OpFneg  Opcode = 0x76
	OpDneg  Opcode = 0x77
	OpIshl  Opcode = 0x78
	OpLshl  Opcode = 0x79
	OpIshr  Opcode = 0x7A
	OpLshr  Opcode = 0x7B
	OpIushr Opcode = 0x7C
	OpLushr Opcode = 0x7D
	OpIand  Opcode = 0x7E
	OpLand  Opcode = 0x7F
	OpIor   Opcode = 0x80
	OpLor   Opcode = 0x81
	OpIxor  Opcode = 0x82
	OpLxor  Opcode = 0x83
	OpIinc  Opcode = 0x84
	OpI2l   Opcode = 0x85
	OpI2f   Opcode = 0x86
	OpI2d   Opcode = 0x87
	OpL2i   Opcode = 0x88
	OpL2f   Opcode = 0x89
	OpL2d   Opcode = 0x8A
	OpF2i   Opcode = 0x8B
	OpF2l   Opcode = 0x8C
	OpF2d   Opcode = 0x8D
	OpD2i   Opcode = 0x8E
	OpD2l   Opcode = 0x8F
	OpD2f   Opcode = 0x90
	OpI2b   Opcode = 0x91
	OpI2c   Opcode = 0x92
	OpI2s   Opcode = 0x93
	OpLcmp  Opcode = 0x94
	OpFcmpl Opcode = 0x95
	OpFcmpg Opcode = 0x96
	OpDcmpl Opcode = 0x97
	OpDcmpg Opcode = 0x98

	// ========================================================================
	// Control flow (0x99-0xB1)
	// ========================================================================

	OpIfeq         Opcode = 0x99
	OpIfne         Opcode = 0x9A
	OpIflt         Opcode = 0x9B
	OpIfge         Opcode = 0x9C
	OpIfgt         Opcode = 0x9D
	OpIfle         Opcode = 0x9E
	OpIfIcmpeq     Opcode = 0x9F
	OpIfIcmpne     Opcode = 0xA0
	OpIfIcmplt     Opcode = 0xA1
	OpIfIcmpge     Opcode = 0xA2
	OpIfIcmpgt     Opcode = 0xA3
	OpIfIcmple     Opcode = 0xA4
	OpIfAcmpeq     Opcode = 0xA5
	OpIfAcmpne     Opcode = 0xA6
	OpGoto         Opcode = 0xA7
	OpJsr          Opcode = 0xA8
	OpRet          Opcode = 0xA9
	OpTableswitch  Opcode = 0xAA
	OpLookupswitch Opcode = 0xAB
	OpIreturn      Opcode = 0xAC
	OpLreturn      Opcode = 0xAD
	OpFreturn      Opcode = 0xAE
	OpDreturn      Opcode = 0xAF
	OpAreturn      Opcode = 0xB0
	OpReturn       Opcode = 0xB1

	// ========================================================================
	// References (0xB2-0xC3)
	// ========================================================================

	OpGetstatic       Opcode = 0xB2
	OpPutstatic       Opcode = 0xB3
	OpGetfield        Opcode = 0xB4
	OpPutfield        Opcode = 0xB5
	OpInvokevirtual   Opcode = 0xB6
	OpInvokespecial   Opcode = 0xB7
	OpInvokestatic    Opcode = 0xB8
	OpInvokeinterface Opcode = 0xB9
	OpInvokedynamic   Opcode = 0xBA
	OpNew             Opcode = 0xBB
	OpNewarray        Opcode = 0xBC
	OpAnewarray       Opcode = 0xBD
	OpArraylength     Opcode = 0xBE
	OpAthrow          Opcode = 0xBF
	OpCheckcast       Opcode = 0xC0
	OpInstanceof      Opcode = 0xC1
	OpMonitorenter    Opcode = 0xC2
	OpMonitorexit     Opcode = 0xC3

	// ========================================================================
	// Extended (0xC4-0xC9)
	// ========================================================================

	OpWide           Opcode = 0xC4
	OpMultianewarray Opcode = 0xC5
	OpIfnull         Opcode = 0xC6
	OpIfnonnull      Opcode = 0xC7
	OpGotoW          Opcode = 0xC8
	OpJsrW           Opcode = 0xC9
)

// Kind names the node variant an opcode is carried by.
type Kind uint8

const (
	KindPlain Kind = iota
	KindInt
	KindVar
	KindType
	KindField
	KindMethod
	KindInvokeDynamic
	KindJump
	KindLabel
	KindLdc
	KindIinc
	KindTableSwitch
	KindLookupSwitch
	KindMultiANewArray
	KindFrame
	KindLine
)

var kindNames = [...]string{
	KindPlain:          "plain",
	KindInt:            "int",
	KindVar:            "var",
	KindType:           "type",
	KindField:          "field",
	KindMethod:         "method",
	KindInvokeDynamic:  "invokedynamic",
	KindJump:           "jump",
	KindLabel:          "label",
	KindLdc:            "ldc",
	KindIinc:           "iinc",
	KindTableSwitch:    "tableswitch",
	KindLookupSwitch:   "lookupswitch",
	KindMultiANewArray: "multianewarray",
	KindFrame:          "frame",
	KindLine:           "line",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// OpcodeInfo provides metadata about each opcode for disassembly and validation.
type OpcodeInfo struct {
	Name string // Lower-case mnemonic
	Kind Kind   // Node variant that carries the opcode
}

// opcodeInfoTable is indexed by opcode value. Compact load/store forms
// (iload_0 and friends) are listed as plain because decoders expand them
// into var instructions before they reach a list.
var opcodeInfoTable = [...]OpcodeInfo{
	OpNop:             {"nop", KindPlain},
	OpAconstNull:      {"aconst_null", KindPlain},
	OpIconstM1:        {"iconst_m1", KindPlain},
	OpIconst0:         {"iconst_0", KindPlain},
	OpIconst1:         {"iconst_1", KindPlain},
	OpIconst2:         {"iconst_2", KindPlain},
	OpIconst3:         {"iconst_3", KindPlain},
	OpIconst4:         {"iconst_4", KindPlain},
	OpIconst5:         {"iconst_5", KindPlain},
	OpLconst0:         {"lconst_0", KindPlain},
	OpLconst1:         {"lconst_1", KindPlain},
	OpFconst0:         {"fconst_0", KindPlain},
	OpFconst1:         {"fconst_1", KindPlain},
	OpFconst2:         {"fconst_2", KindPlain},
	OpDconst0:         {"dconst_0", KindPlain},
	OpDconst1:         {"dconst_1", KindPlain},
	OpBipush:          {"bipush", KindInt},
	OpSipush:          {"sipush", KindInt},
	OpLdc:             {"ldc", KindLdc},
	OpLdcW:            {"ldc_w", KindLdc},
	OpLdc2W:           {"ldc2_w", KindLdc},
	OpIload:           {"iload", KindVar},
	OpLload:           {"lload", KindVar},
	OpFload:           {"fload", KindVar},
	OpDload:           {"dload", KindVar},
	OpAload:           {"aload", KindVar},
	OpIload0:          {"iload_0", KindPlain},
	OpIload1:          {"iload_1", KindPlain},
	OpIload2:          {"iload_2", KindPlain},
	OpIload3:          {"iload_3", KindPlain},
	OpLload0:          {"lload_0", KindPlain},
	OpLload1:          {"lload_1", KindPlain},
	OpLload2:          {"lload_2", KindPlain},
	OpLload3:          {"lload_3", KindPlain},
	OpFload0:          {"fload_0", KindPlain},
	OpFload1:          {"fload_1", KindPlain},
	OpFload2:          {"fload_2", KindPlain},
	OpFload3:          {"fload_3", KindPlain},
	OpDload0:          {"dload_0", KindPlain},
	OpDload1:          {"dload_1", KindPlain},
	OpDload2:          {"dload_2", KindPlain},
	OpDload3:          {"dload_3", KindPlain},
	OpAload0:          {"aload_0", KindPlain},
	OpAload1:          {"aload_1", KindPlain},
	OpAload2:          {"aload_2", KindPlain},
	OpAload3:          {"aload_3", KindPlain},
	OpIaload:          {"iaload", KindPlain},
	OpLaload:          {"laload", KindPlain},
	OpFaload:          {"faload", KindPlain},
	OpDaload:          {"daload", KindPlain},
	OpAaload:          {"aaload", KindPlain},
	OpBaload:          {"baload", KindPlain},
	OpCaload:          {"caload", KindPlain},
	OpSaload:          {"saload", KindPlain},
	OpIstore:          {"istore", KindVar},
	OpLstore:          {"lstore", KindVar},
	OpFstore:          {"fstore", KindVar},
	OpDstore:          {"dstore", KindVar},
	OpAstore:          {"astore", KindVar},
	OpIstore0:         {"istore_0", KindPlain},
	OpIstore1:         {"istore_1", KindPlain},
	OpIstore2:         {"istore_2", KindPlain},
	OpIstore3:         {"istore_3", KindPlain},
	OpLstore0:         {"lstore_0", KindPlain},
	OpLstore1:         {"lstore_1", KindPlain},
	OpLstore2:         {"lstore_2", KindPlain},
	OpLstore3:         {"lstore_3", KindPlain},
	OpFstore0:         {"fstore_0", KindPlain},
	OpFstore1:         {"fstore_1", KindPlain},
	OpFstore2:         {"fstore_2", KindPlain},
	OpFstore3:         {"fstore_3", KindPlain},
	OpDstore0:         {"dstore_0", KindPlain},
	OpDstore1:         {"dstore_1", KindPlain},
	OpDstore2:         {"dstore_2", KindPlain},
	OpDstore3:         {"dstore_3", KindPlain},
	OpAstore0:         {"astore_0", KindPlain},
	OpAstore1:         {"astore_1", KindPlain},
	OpAstore2:         {"astore_2", KindPlain},
	OpAstore3:         {"astore_3", KindPlain},
	OpIastore:         {"iastore", KindPlain},
	OpLastore:         {"lastore", KindPlain},
	OpFastore:         {"fastore", KindPlain},
	OpDastore:         {"dastore", KindPlain},
	OpAastore:         {"aastore", KindPlain},
	OpBastore:         {"bastore", KindPlain},
	OpCastore:         {"castore", KindPlain},
	OpSastore:         {"sastore", KindPlain},
	OpPop:             {"pop", KindPlain},
	OpPop2:            {"pop2", KindPlain},
	OpDup:             {"dup", KindPlain},
	OpDupX1:           {"dup_x1", KindPlain},
	OpDupX2:           {"dup_x2", KindPlain},
	OpDup2:            {"dup2", KindPlain},
	OpDup2X1:          {"dup2_x1", KindPlain},
	OpDup2X2:          {"dup2_x2", KindPlain},
	OpSwap:            {"swap", KindPlain},
	OpIadd:            {"iadd", KindPlain},
	OpLadd:            {"ladd", KindPlain},
	OpFadd:            {"fadd", KindPlain},
	OpDadd:            {"dadd", KindPlain},
	OpIsub:            {"isub", KindPlain},
	OpLsub:            {"lsub", KindPlain},
	OpFsub:            {"fsub", KindPlain},
	OpDsub:            {"dsub", KindPlain},
	OpImul:            {"imul", KindPlain},
	OpLmul:            {"lmul", KindPlain},
	OpFmul:            {"fmul", KindPlain},
	OpDmul:            {"dmul", KindPlain},
	OpIdiv:            {"idiv", KindPlain},
	OpLdiv:            {"ldiv", KindPlain},
	OpFdiv:            {"fdiv", KindPlain},
	OpDdiv:            {"ddiv", KindPlain},
	OpIrem:            {"irem", KindPlain},
	OpLrem:            {"lrem", KindPlain},
	OpFrem:            {"frem", KindPlain},
	OpDrem:            {"drem", KindPlain},
	OpIneg:            {"ineg", KindPlain},
	OpLneg:            {"lneg", KindPlain},
	OpFneg:            {"fneg", KindPlain},
	OpDneg:            {"dneg", KindPlain},
	OpIshl:            {"ishl", KindPlain},
	OpLshl:            {"lshl", KindPlain},
	OpIshr:            {"ishr", KindPlain},
	OpLshr:            {"lshr", KindPlain},
	OpIushr:           {"iushr", KindPlain},
	OpLushr:           {"lushr", KindPlain},
	OpIand:            {"iand", KindPlain},
	OpLand:            {"land", KindPlain},
	OpIor:             {"ior", KindPlain},
	OpLor:             {"lor", KindPlain},
	OpIxor:            {"ixor", KindPlain},
	OpLxor:            {"lxor", KindPlain},
	OpIinc:            {"iinc", KindIinc},
	OpI2l:             {"i2l", KindPlain},
	OpI2f:             {"i2f", KindPlain},
	OpI2d:             {"i2d", KindPlain},
	OpL2i:             {"l2i", KindPlain},
	OpL2f:             {"l2f", KindPlain},
	OpL2d:             {"l2d", KindPlain},
	OpF2i:             {"f2i", KindPlain},
	OpF2l:             {"f2l", KindPlain},
	OpF2d:             {"f2d", KindPlain},
	OpD2i:             {"d2i", KindPlain},
	OpD2l:             {"d2l", KindPlain},
	OpD2f:             {"d2f", KindPlain},
	OpI2b:             {"i2b", KindPlain},
	OpI2c:             {"i2c", KindPlain},
	OpI2s:             {"i2s", KindPlain},
	OpLcmp:            {"lcmp", KindPlain},
	OpFcmpl:           {"fcmpl", KindPlain},
	OpFcmpg:           {"fcmpg", KindPlain},
	OpDcmpl:           {"dcmpl", KindPlain},
	OpDcmpg:           {"dcmpg", KindPlain},
	OpIfeq:            {"ifeq", KindJump},
	OpIfne:            {"ifne", KindJump},
	OpIflt:            {"iflt", KindJump},
	OpIfge:            {"ifge", KindJump},
	OpIfgt:            {"ifgt", KindJump},
	OpIfle:            {"ifle", KindJump},
	OpIfIcmpeq:        {"if_icmpeq", KindJump},
	OpIfIcmpne:        {"if_icmpne", KindJump},
	OpIfIcmplt:        {"if_icmplt", KindJump},
	OpIfIcmpge:        {"if_icmpge", KindJump},
	OpIfIcmpgt:        {"if_icmpgt", KindJump},
	OpIfIcmple:        {"if_icmple", KindJump},
	OpIfAcmpeq:        {"if_acmpeq", KindJump},
	OpIfAcmpne:        {"if_acmpne", KindJump},
	OpGoto:            {"goto", KindJump},
	OpJsr:             {"jsr", KindJump},
	OpRet:             {"ret", KindVar},
	OpTableswitch:     {"tableswitch", KindTableSwitch},
	OpLookupswitch:    {"lookupswitch", KindLookupSwitch},
	OpIreturn:         {"ireturn", KindPlain},
	OpLreturn:         {"lreturn", KindPlain},
	OpFreturn:         {"freturn", KindPlain},
	OpDreturn:         {"dreturn", KindPlain},
	OpAreturn:         {"areturn", KindPlain},
	OpReturn:          {"return", KindPlain},
	OpGetstatic:       {"getstatic", KindField},
	OpPutstatic:       {"putstatic", KindField},
	OpGetfield:        {"getfield", KindField},
	OpPutfield:        {"putfield", KindField},
	OpInvokevirtual:   {"invokevirtual", KindMethod},
	OpInvokespecial:   {"invokespecial", KindMethod},
	OpInvokestatic:    {"invokestatic", KindMethod},
	OpInvokeinterface: {"invokeinterface", KindMethod},
	OpInvokedynamic:   {"invokedynamic", KindInvokeDynamic},
	OpNew:             {"new", KindType},
	OpNewarray:        {"newarray", KindInt},
	OpAnewarray:       {"anewarray", KindType},
	OpArraylength:     {"arraylength", KindPlain},
	OpAthrow:          {"athrow", KindPlain},
	OpCheckcast:       {"checkcast", KindType},
	OpInstanceof:      {"instanceof", KindType},
	OpMonitorenter:    {"monitorenter", KindPlain},
	OpMonitorexit:     {"monitorexit", KindPlain},
	OpWide:            {"wide", KindPlain},
	OpMultianewarray:  {"multianewarray", KindMultiANewArray},
	OpIfnull:          {"ifnull", KindJump},
	OpIfnonnull:       {"ifnonnull", KindJump},
	OpGotoW:           {"goto_w", KindJump},
	OpJsrW:            {"jsr_w", KindJump},
}

var opcodeByName = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeInfoTable))
	for op, info := range opcodeInfoTable {
		m[info.Name] = Opcode(op)
	}
	return m
}()

// Valid reports whether op is a real opcode of the instruction set.
func (op Opcode) Valid() bool {
	return op >= 0 && int(op) < len(opcodeInfoTable)
}

// Info returns the metadata for op. The second result is false for Pseudo
// and out-of-range values.
func (op Opcode) Info() (OpcodeInfo, bool) {
	if !op.Valid() {
		return OpcodeInfo{}, false
	}
	return opcodeInfoTable[op], true
}

func (op Opcode) String() string {
	if op == Pseudo {
		return "pseudo"
	}
	if info, ok := op.Info(); ok {
		return info.Name
	}
	return fmt.Sprintf("Opcode(%d)", int(op))
}

// LookupOpcode resolves a mnemonic, ignoring case.
func LookupOpcode(name string) (Opcode, bool) {
	op, ok := opcodeByName[strings.ToLower(name)]
	return op, ok
}

// IsConditionalJump reports whether op branches on a condition and otherwise
// falls through.
func (op Opcode) IsConditionalJump() bool {
	return (op >= OpIfeq && op <= OpIfAcmpne) || op == OpIfnull || op == OpIfnonnull
}

// IsUnconditionalJump reports whether op always transfers to its label.
func (op Opcode) IsUnconditionalJump() bool {
	return op == OpGoto || op == OpGotoW
}

// IsSubroutineJump reports whether op is jsr or jsr_w. Subroutine calls
// return to the following instruction, so they are treated like
// conditional jumps by flow analysis.
func (op Opcode) IsSubroutineJump() bool {
	return op == OpJsr || op == OpJsrW
}

// IsReturn reports whether op returns from the method.
func (op Opcode) IsReturn() bool {
	return op >= OpIreturn && op <= OpReturn
}

// IsThrow reports whether op is athrow.
func (op Opcode) IsThrow() bool {
	return op == OpAthrow
}

// IsSwitch reports whether op is tableswitch or lookupswitch.
func (op Opcode) IsSwitch() bool {
	return op == OpTableswitch || op == OpLookupswitch
}

// IsTerminal reports whether control never falls through op: returns,
// athrow and ret.
func (op Opcode) IsTerminal() bool {
	return op.IsReturn() || op.IsThrow() || op == OpRet
}
