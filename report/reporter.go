package report

import "sync"

// Reporter collects the diagnostics produced during one build session.  There
// is exactly one reporter per build, owned by the build context and threaded
// through every pipeline stage: no ambient global state.  The reporter is
// synchronized; its methods can be safely called from multiple goroutines
// building independent dependency subtrees.
type Reporter struct {
	// The mutex used to synchronize diagnostic recording.
	m *sync.Mutex

	diags []*Diagnostic

	// Count of diagnostics that are errors (currently all of them).
	errCount int
}

// NewReporter creates a new empty reporter.
func NewReporter() *Reporter {
	return &Reporter{m: &sync.Mutex{}}
}

// Report records a diagnostic.
func (r *Reporter) Report(d *Diagnostic) {
	r.m.Lock()
	defer r.m.Unlock()

	r.diags = append(r.diags, d)
	r.errCount++
}

// ErrorCount returns the number of errors recorded so far.  Stages snapshot
// this count before and after analyzing a module to decide whether the module
// may proceed to code generation.
func (r *Reporter) ErrorCount() int {
	r.m.Lock()
	defer r.m.Unlock()

	return r.errCount
}

// AnyErrors returns whether any errors have been recorded.
func (r *Reporter) AnyErrors() bool {
	return r.ErrorCount() > 0
}

// Diagnostics returns the diagnostics recorded so far.  The returned slice is
// a copy and safe to retain.
func (r *Reporter) Diagnostics() []*Diagnostic {
	r.m.Lock()
	defer r.m.Unlock()

	diags := make([]*Diagnostic, len(r.diags))
	copy(diags, r.diags)
	return diags
}

// -----------------------------------------------------------------------------

// CatchErrors converts local errors raised by panic during a phase of
// compilation into diagnostics on the reporter.  In effect, this handler
// determines where "unrecoverable" errors within a given subsection of the
// compiler stop bubbling.
// NB: This function must ALWAYS be deferred.
func (r *Reporter) CatchErrors(file string) {
	if x := recover(); x != nil {
		if lerr, ok := x.(*LocalError); ok {
			r.Report(&Diagnostic{
				File:    file,
				Span:    lerr.Span,
				Kind:    lerr.Kind,
				Message: lerr.Message,
			})
		} else {
			panic(x)
		}
	}
}
