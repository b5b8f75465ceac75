package replay

import "github.com/vburojevic/tdb/internal/trace"

// frame is the live view of one activation, updated in place so identity holds
type frame struct {
	rec    FrameRecord
	caller *frame
}

func (f *frame) Function() string { return f.rec.Function }
func (f *frame) Line() int        { return f.rec.Line }
func (f *frame) File() string     { return f.rec.File }

func (f *frame) Locals() map[string]any {
	if f.rec.Locals == nil {
		return map[string]any{}
	}
	return f.rec.Locals
}

func (f *frame) VariableNames() []string { return f.rec.VarNames }

func (f *frame) Caller() trace.Frame {
	if f.caller == nil {
		return nil
	}
	return f.caller
}

var _ trace.Frame = (*frame)(nil)
