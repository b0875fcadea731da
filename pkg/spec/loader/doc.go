// Package loader turns raw, possibly hostile YAML text into a Document
// under strict security, size, and time limits.
//
// The loader never executes or constructs anything beyond plain scalars,
// mappings, and sequences. Inputs that try anything else are rejected with
// a SecurityViolation rather than silently ignored:
//
//   - documents larger than the size limit (checked before parsing)
//   - extended type tags (!!python/object, !!binary, custom tags, merge keys)
//   - nesting deeper than the depth limit
//   - anchor/alias expansion beyond the node budget ("billion laughs")
//   - loads exceeding the time budget, aborted during descent itself
//
// Malformed but honest YAML returns a ParseError with line and column when
// derivable.
//
// # Basic Usage
//
//	ldr := loader.New()
//	doc, err := ldr.Load(raw)
//	if err != nil {
//	    var sec *specerr.SecurityViolation
//	    if errors.As(err, &sec) {
//	        // input was hostile, not merely wrong
//	    }
//	    return err
//	}
//
// The loader is a pure function of its input and limits: no I/O, no shared
// state, deterministic. One Loader may be shared by any number of
// goroutines.
package loader
