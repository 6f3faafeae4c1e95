package sink

// FuncSummary is a flattened, exported view of one function's finished
// emission, used by tooling (the CLI's emit command, the driver tests)
// that wants to inspect a MemSink's result without reaching into its
// unexported fields.
type FuncSummary struct {
	Name         string
	NumBytes     int
	MaxStackCells int
	ContainsCalls bool
	NumParams    int
	NumStatics   int
	NumFPIRegions int
	NumEHEntries int
}

// PreClassSummary is the exported view of one class's finished
// pre-class metadata.
type PreClassSummary struct {
	Name       string
	Parent     string
	NumMethods int
	NumProps   int
	NumConsts  int
	DefClsOff  Offset
}

// UnitSummary is the exported view of a MemSink's complete emission
// result.
type UnitSummary struct {
	Filename   string
	MergeOnly  bool
	MainReturn int64
	ReturnSeen bool
	Main       FuncSummary
	Functions  []FuncSummary
	Methods    []FuncSummary
	Classes    []PreClassSummary
	NumLitstrs int
	NumArrays  int
}

func summarizeFunc(fe *memFuncEmitter) FuncSummary {
	return FuncSummary{
		Name:          fe.name,
		NumBytes:      len(fe.buf),
		MaxStackCells: fe.maxStack,
		ContainsCalls: fe.containsCall,
		NumParams:     len(fe.params),
		NumStatics:    len(fe.staticLocals),
		NumFPIRegions: len(fe.fpiTable),
		NumEHEntries:  len(fe.ehTable),
	}
}

// Summary returns an exported snapshot of s's finished emission state.
func (s *MemSink) Summary() UnitSummary {
	sum := UnitSummary{
		Filename:   s.filename,
		MergeOnly:  s.mergeOnly,
		MainReturn: s.mainReturn,
		ReturnSeen: s.returnSeen,
		NumLitstrs: len(s.litstrByID),
		NumArrays:  len(s.arrayByID),
	}
	if s.main != nil {
		sum.Main = summarizeFunc(s.main)
	}
	for _, fe := range s.funcs {
		sum.Functions = append(sum.Functions, summarizeFunc(fe))
	}
	for _, fe := range s.methods {
		sum.Methods = append(sum.Methods, summarizeFunc(fe))
	}
	for _, pce := range s.preclasses {
		sum.Classes = append(sum.Classes, PreClassSummary{
			Name:       pce.name,
			Parent:     pce.parent,
			NumMethods: len(pce.methodNames),
			NumProps:   len(pce.properties),
			NumConsts:  len(pce.constants),
			DefClsOff:  pce.defClsOff,
		})
	}
	return sum
}
