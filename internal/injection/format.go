// Package injection recognizes comment-guarded regions a plugin has woven
// into engine source (component C2): three surface forms (multiline,
// singleline, nextline) sharing one Tag/Content shape, and the Unpatch
// operation that strips an injection back out or restores a deletion it
// replaced.
package injection

// CommentTagFormat supplies the literal fragments that surround a tag in
// source comments. The zero value is not meaningful; use
// DefaultCommentTagFormat.
type CommentTagFormat struct {
	Prefix string
	Suffix string
	Begin  string
	End    string
}

// DefaultCommentTagFormat matches the built-in `// <Plugin>: Begin` /
// `// <Plugin>: End` convention.
func DefaultCommentTagFormat() CommentTagFormat {
	return CommentTagFormat{Prefix: " ", Suffix: "", Begin: ": Begin", End: ": End"}
}

// Form names the three ways a guarded region can appear in source.
type Form int

const (
	Multiline Form = iota
	Singleline
	Nextline
)

func (f Form) String() string {
	switch f {
	case Multiline:
		return "multiline"
	case Singleline:
		return "singleline"
	case Nextline:
		return "nextline"
	default:
		return "unknown"
	}
}
