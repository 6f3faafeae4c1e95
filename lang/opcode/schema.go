package opcode

// ImmKind identifies the shape of an opcode's immediate operand.
type ImmKind uint8

const (
	ImmNone       ImmKind = iota
	ImmUInt               // variable-length unsigned ("IVA")
	ImmInt64              // fixed little-endian 8 bytes
	ImmDouble             // fixed little-endian 8 bytes
	ImmStr                // interned string id (32-bit)
	ImmArr                // interned array id (32-bit)
	ImmRAT                // opaque repo-auth-type blob
	ImmLocal              // IVA of a mapped local id
	ImmIter               // IVA of a raw iterator id
	ImmClsRef             // IVA of a raw class-ref slot id
	ImmSubOp              // single byte
	ImmBranch             // 32-bit signed offset relative to the opcode byte
	ImmBranchTab          // 32-bit count + N 32-bit relative offsets
	ImmSSwitchTab         // string-switch table: N-1 (string, offset) pairs + sentinel + default offset
	ImmIterTab            // 32-bit count + N (kind, id) pairs
	ImmKeyVec             // 32-bit count + N interned string ids
	ImmLocalRange         // IVA first + IVA count
	ImmMemberKey          // tag byte + variant payload
)

// variableStackEffect marks an opcode whose pop/push counts depend on its
// immediate operand rather than being statically fixed.
const variableStackEffect = -128

// Schema describes one opcode's immediate shape and static stack effect.
// A Pop or Push value of variableStackEffect means the real value must be
// computed from the instruction's immediate by StackEffect.
type Schema struct {
	Imm  ImmKind
	Pop  int
	Push int
}

var schemas = [...]Schema{
	Nop:             {ImmNone, 0, 0},
	EntryNop:        {ImmNone, 0, 0},
	Dup:             {ImmNone, 0, 1},
	Pop:             {ImmNone, 1, 0},
	Null:            {ImmNone, 0, 1},
	True:            {ImmNone, 0, 1},
	False:           {ImmNone, 0, 1},
	Int:             {ImmInt64, 0, 1},
	Double:          {ImmDouble, 0, 1},
	Add:             {ImmNone, 2, 1},
	Sub:             {ImmNone, 2, 1},
	Mul:             {ImmNone, 2, 1},
	Div:             {ImmNone, 2, 1},
	Mod:             {ImmNone, 2, 1},
	BitAnd:          {ImmNone, 2, 1},
	BitOr:           {ImmNone, 2, 1},
	BitXor:          {ImmNone, 2, 1},
	BitNot:          {ImmNone, 1, 1},
	Shl:             {ImmNone, 2, 1},
	Shr:             {ImmNone, 2, 1},
	Not:             {ImmNone, 1, 1},
	Concat:          {ImmNone, 2, 1},
	Same:            {ImmNone, 2, 1},
	NSame:           {ImmNone, 2, 1},
	Lt:              {ImmNone, 2, 1},
	Lte:             {ImmNone, 2, 1},
	Gt:              {ImmNone, 2, 1},
	Gte:             {ImmNone, 2, 1},
	Eq:              {ImmNone, 2, 1},
	Neq:             {ImmNone, 2, 1},
	String:          {ImmStr, 0, 1},
	Array:           {ImmArr, 0, 1},
	AssertRAT:       {ImmRAT, 1, 1},
	CGetL:           {ImmLocal, 0, 1},
	SetL:            {ImmLocal, 1, 1},
	ClsRefSlot:      {ImmClsRef, 0, 0},
	IterTab:         {ImmIterTab, 0, 0},
	CheckLocalRange: {ImmLocalRange, 0, 0},
	QueryM:          {ImmMemberKey, variableStackEffect, 1},
	Fatal:           {ImmSubOp, 1, 0},
	RetC:            {ImmNone, 1, 0},
	Throw:           {ImmNone, 1, 0},
	Jmp:             {ImmBranch, 0, 0},
	JmpNS:           {ImmBranch, 0, 0},
	JmpZ:            {ImmBranch, 1, 0},
	JmpNZ:           {ImmBranch, 1, 0},
	Switch:          {ImmBranchTab, 1, 0},
	SSwitch:         {ImmSSwitchTab, 1, 0},
	NewStruct:       {ImmKeyVec, variableStackEffect, 1},
	FPushFuncD:      {ImmStr, 0, 0},
	FCall:           {ImmUInt, variableStackEffect, 1},
	FCallD:          {ImmUInt, variableStackEffect, 1},
	DefCls:          {ImmUInt, 0, 0},
	DefClsNop:       {ImmUInt, 0, 0},
}

// SchemaOf returns the immediate schema for op.
func SchemaOf(op Opcode) Schema {
	return schemas[op]
}

// NumArgs unpacks an FCall/FCallD immediate into its positional and named
// argument counts: the high bits hold the positional count, the low byte
// the named count.
func NumArgs(imm uint32) (positional, named int) {
	return int(imm >> 8), int(imm & 0xff)
}

// StackEffect computes the real (pop, push) pair for op given its decoded
// immediate, resolving the variableStackEffect opcodes of Schema.
func StackEffect(op Opcode, imm Immediate) (pop, push int) {
	s := schemas[op]
	pop, push = s.Pop, s.Push
	switch op {
	case FCall, FCallD:
		positional, named := NumArgs(imm.UInt)
		pop = positional + 2*named // positional args + (name,value) pairs; the callee lives in the ActRec, not the eval stack
	case NewStruct:
		// keys are baked into the KeyVec immediate itself; only the paired
		// values remain on the operand stack.
		pop = len(imm.KeyVec)
	case QueryM:
		pop = 1 + imm.MemberKey.stackOperands()
	}
	return pop, push
}
