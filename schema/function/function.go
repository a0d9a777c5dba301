package function

import "strings"

// Parameter directions.
const (
	In    = "IN"
	Out   = "OUT"
	InOut = "INOUT"
)

// Param is one formal parameter of a stored routine.
type Param struct {
	// Name is optional. Unnamed parameters are addressed by position.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
	// Type is the SQL type of the parameter (e.g., "varchar", "integer[]").
	Type string `yaml:"type" json:"type"`
	// Direction is one of In, Out or InOut. Empty means In.
	Direction string `yaml:"direction,omitempty" json:"direction,omitempty"`
}

// P returns a named parameter.
func P(name, typ string) Param {
	return Param{Name: name, Type: typ}
}

// T returns an unnamed parameter of the given type.
func T(typ string) Param {
	return Param{Type: typ}
}

// InSignature reports whether the parameter is part of the routine's
// identifying signature. OUT parameters are not.
func (p Param) InSignature() bool {
	return !strings.EqualFold(p.Direction, Out)
}

// Descriptor describes a routine to create.
//
// A nil Parameters slice means the caller did not specify parameters and is
// rejected. An empty, non-nil slice declares a routine with no parameters.
type Descriptor struct {
	Name       string         `yaml:"name" json:"name"`
	Parameters []Param        `yaml:"parameters" json:"parameters"`
	ReturnType string         `yaml:"returnType" json:"returnType"`
	Language   string         `yaml:"language" json:"language"`
	Body       string         `yaml:"body" json:"body"`
	Options    map[string]any `yaml:"options,omitempty" json:"options,omitempty"`
}

// OptionReplace is the reserved option key selecting replace semantics.
// It defaults to true.
const OptionReplace = "replace"

// Replace reports whether the routine should replace an existing one.
func (d Descriptor) Replace() bool {
	if v, ok := d.Options[OptionReplace].(bool); ok {
		return v
	}
	return true
}

// DropDescriptor identifies a routine to drop. Parameters are part of the
// identity since most dialects overload routines by signature.
type DropDescriptor struct {
	Name       string  `yaml:"name" json:"name"`
	Parameters []Param `yaml:"parameters" json:"parameters"`
}

// RenameDescriptor identifies a routine by its old name and signature,
// and gives its new name.
type RenameDescriptor struct {
	OldName    string  `yaml:"oldName" json:"oldName"`
	NewName    string  `yaml:"newName" json:"newName"`
	Parameters []Param `yaml:"parameters" json:"parameters"`
}

// Signature returns the parameters that identify the routine.
func Signature(params []Param) []Param {
	sig := make([]Param, 0, len(params))
	for _, p := range params {
		if p.InSignature() {
			sig = append(sig, p)
		}
	}
	return sig
}
