package builtin

import "dataprep/pkg/frame"

// LabelEncode replaces the values of Column with first-appearance integer
// codes. The mapping of the last run is kept and exposed as the artifact
// "encoding.<column>".
type LabelEncode struct {
	Column string

	enc *frame.Encoding
}

func (*LabelEncode) Name() string { return "label_encode" }

func (l *LabelEncode) Apply(t *frame.Table) (*frame.Table, error) {
	out, enc, err := t.Encode(l.Column)
	if err != nil {
		return nil, err
	}
	l.enc = enc
	return out, nil
}

// Encoding returns the mapping built by the last Apply, or nil.
func (l *LabelEncode) Encoding() *frame.Encoding { return l.enc }

func (l *LabelEncode) Artifacts() map[string]*frame.Table {
	if l.enc == nil {
		return nil
	}
	return map[string]*frame.Table{"encoding." + l.Column: l.enc.Table()}
}
