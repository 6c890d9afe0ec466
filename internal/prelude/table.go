package prelude

// table2 is a tiny builder wrapper so each registerXxx function can append
// entries without repeating `t[name] = b` boilerplate at every call site.
type table2 map[string]Builtin

func (t table2) add(b Builtin) { t[b.Name] = b }

// buildTable assembles the full prelude catalog of §4.2 from the
// per-category register functions, each defined in its own file the way
// the teacher splits its builtin table across
// internal/bytecode/vm_builtins_*.go.
func buildTable() table2 {
	t := make(table2)
	registerArithmetic(t)
	registerComparison(t)
	registerLogic(t)
	registerList(t)
	registerObject(t)
	registerString(t)
	registerPath(t)
	registerHigherOrder(t)
	registerCollectionQueries(t)
	registerTypePredicates(t)
	registerTransformOps(t)
	registerConversion(t)
	registerErrorBuiltin(t)
	return t
}
