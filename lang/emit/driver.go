package emit

import (
	"github.com/mna/calyx/lang/index"
	"github.com/mna/calyx/lang/ir"
	"github.com/mna/calyx/lang/opcode"
	"github.com/mna/calyx/lang/sink"
)

// EmitUnit drives the complete emission of unit into s, consulting idx
// for the typed-analysis facts the IR itself does not carry. It emits
// pseudomain, then every class, then every top-level function, then
// every type alias, and finally backpatches each class's recorded
// DefCls offset into its pre-class entry.
func EmitUnit(s sink.UnitEmitter, unit *ir.Unit, idx index.Index) error {
	s.SetFilename(unit.Filename)
	s.SetContentHash(unit.ContentHash)

	if unit.Flags.Has(ir.FlagIsSystemlib) {
		s.SetCapability(sink.CapSystemlibMerge, true)
		s.SetMergeOnly(true)
		s.SetMainReturn(1)
	} else {
		s.SetReturnSeen(true)
	}

	defCls := newDefClsTable(len(unit.Classes))

	if unit.Pseudomain != nil {
		s.InitMain()
		if err := emitFunction(s, unit.Pseudomain, defCls, idx, funcKindMain, ""); err != nil {
			return err
		}
	}

	for _, cls := range unit.Classes {
		if err := emitClass(s, cls, defCls, idx); err != nil {
			return err
		}
	}

	for _, fn := range unit.Functions {
		if err := emitFunction(s, fn, defCls, idx, funcKindTopLevel, ""); err != nil {
			return err
		}
	}

	for _, ta := range unit.TypeAliases {
		s.AddTypeAlias(ta)
		s.PushMergeableTypeAlias(ta.Name)
	}

	for classID, off := range defCls.offsets {
		if int(classID) >= len(unit.Classes) {
			continue
		}
		s.PreClass(int(classID)).SetDefClsOffset(off)
	}

	return nil
}

type funcKind uint8

const (
	funcKindMain funcKind = iota
	funcKindTopLevel
	funcKindMethod
)

// indexKey returns the name emitFunction uses to query idx for a
// function's typed-analysis facts: the bare name for pseudomain and
// top-level functions, "Class::method" for methods, matching the
// qualification MemSink uses for its own method emitters.
func indexKey(kind funcKind, className, fnName string) string {
	if kind == funcKindMethod {
		return className + "::" + fnName
	}
	return fnName
}

// emitFunction runs one function through block layout, instruction
// encoding, EH-table flattening, and metadata finalization, per the
// emission order a unit driver follows for every function it emits.
func emitFunction(s sink.UnitEmitter, fn *ir.Function, defCls *defClsTable, idx index.Index, kind funcKind, className string) error {
	fn.AssignLocalIDs()

	var fe sink.FuncEmitter
	switch kind {
	case funcKindMain:
		fe = s.GetMain()
	case funcKindMethod:
		fe = s.NewMethodEmitter(className, fn.Name)
	default:
		fe = s.NewFuncEmitter(fn.Name)
	}

	if fn.Source != nil {
		fe.SetSourceLoc(fn.Source.DefPos)
		fe.SetDocComment(fn.Source.DocBlock)
	}
	fe.SetAttributes(fn.Attributes)
	fe.SetTopLevel(kind != funcKindMethod)
	fe.SetStartOffset(s.BCPos())

	result, err := encodeFunction(s, fn, defCls)
	if err != nil {
		return err
	}

	fe.SetFPITable(result.fpiRegions)

	params := make([]sink.ParamMeta, len(fn.Params))
	for i, p := range fn.Params {
		meta := sink.ParamMeta{
			Name:           p.Name,
			TypeConstraint: p.TypeConstraint,
			UserType:       p.UserType,
			DefaultExpr:    p.DefaultExpr,
			Attributes:     p.Attributes,
			ByRef:          p.ByRef,
			Variadic:       p.Variadic,
			BuiltinType:    p.BuiltinType,
		}
		if p.DefaultEntry != nil {
			if bi, ok := result.infos[*p.DefaultEntry]; ok {
				meta.HasFunclet = true
				meta.FuncletOff = bi.offset
			}
		}
		params[i] = meta
	}
	fe.SetParams(params)

	statics := make([]sink.StaticLocalMeta, len(fn.StaticLocals))
	for i, sl := range fn.StaticLocals {
		statics[i] = sink.StaticLocalMeta{
			Name:        sl.Name,
			LocalID:     sl.LocalID,
			InitExpr:    sl.InitExpr,
			InitValueID: sl.InitValueID,
		}
	}
	fe.SetStaticLocals(statics)

	fe.SetNumIters(fn.NumIters)
	fe.SetNumClsRefSlots(fn.NumClsRefSlots)

	emitEHTable(fe, fn, result.order, result.infos)

	fe.SetFlags(fn.Flags)
	fe.SetReturnUserType(fn.ReturnUserType)
	fe.SetOrigFilename(fn.OrigFilename)

	key := indexKey(kind, className, fn.Name)
	if rt := idx.LookupReturnType(key); !rt.IsBottom() {
		internRAT(s, rt)
		fe.SetReturnType(rt)
		if rt.Kind == opcode.RATWaitH {
			if awaited, ok := idx.LookupAwaitedType(key); ok {
				internRAT(s, awaited)
				fe.SetAwaitedReturnType(awaited)
			}
		}
	}

	maxCells := maxStackCells(result.maxStack, fn.NumLocals(), fn.NumIters, fn.NumClsRefSlots, result.maxFPIDepth)
	fe.SetMaxStackCells(maxCells)
	fe.SetContainsCalls(result.containsCall)

	fe.Finish(s.BCPos())
	return nil
}

// internRAT registers rat's class-name literal (if any) in the sink's
// string table, mirroring the interning every other class-name
// reference in the unit goes through.
func internRAT(s sink.UnitEmitter, rat opcode.RepoAuthType) {
	if rat.Kind == opcode.RATClass && rat.ClsName != "" {
		s.MergeLitstr(rat.ClsName)
	}
}

// emitClass runs one class declaration through metadata finalization
// and emits each of its non-skippable methods.
func emitClass(s sink.UnitEmitter, cls *ir.Class, defCls *defClsTable, idx index.Index) error {
	pce := s.NewPreClassEmitter(cls.Name)

	if cls.Source != nil {
		pce.SetSourceLoc(cls.Source.DefPos)
	}
	pce.SetAttributes(nil)
	pce.SetParentName(cls.Parent)
	pce.SetDocComment(cls.DocComment)
	pce.SetUserAttributes(cls.Attributes)
	pce.SetFlags(cls.Flags)

	for _, iface := range cls.Interfaces {
		pce.AddInterface(iface)
	}
	for _, t := range cls.UsedTraits {
		pce.AddUsedTrait(t)
	}
	for _, r := range cls.Requirements {
		pce.AddRequirement(r)
	}
	for _, r := range cls.TraitPrecedence {
		pce.AddTraitPrecedence(r)
	}
	for _, r := range cls.TraitAlias {
		pce.AddTraitAlias(r)
	}
	pce.SetDeclaredMethodCount(cls.DeclaredMethodCnt)
	pce.SetIfaceVTableSlot(idx.LookupIfaceVTableSlot(cls.Name))

	needs86cinit := false
	for _, c := range cls.Constants {
		if c.IsUninitTyped {
			needs86cinit = true
		}
		pce.AddConstant(c)
	}

	useVars := idx.LookupClosureUseVars(cls.Name)
	for _, p := range cls.Properties {
		meta := sink.PropertyMeta{Name: p.Name, Kind: p.Kind, DefaultValue: p.DefaultValue}
		switch p.Kind {
		case ir.PropPrivateInstance:
			meta.InferredType = idx.LookupPrivateProps(cls.Name)[p.Name]
		case ir.PropPrivateStatic:
			meta.InferredType = idx.LookupPrivateStatics(cls.Name)[p.Name]
		case ir.PropPublicStatic:
			meta.InferredType = idx.LookupPublicStatic(cls.Name, p.Name)
		}
		if p.ClosureUseVarIndex >= 0 && p.ClosureUseVarIndex < len(useVars) {
			meta.InferredType = useVars[p.ClosureUseVarIndex]
		}
		pce.AddProperty(meta)
	}

	for _, m := range cls.Methods {
		if m.Name == "86cinit" && !needs86cinit {
			continue
		}
		pce.AddMethodName(m.Name)
		if err := emitFunction(s, m, defCls, idx, funcKindMethod, cls.Name); err != nil {
			return err
		}
	}

	pce.Finish()
	return nil
}
