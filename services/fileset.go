package services

// FileSet is an ordered, non-empty list of telegram file ids. The zero value
// is empty and is rejected wherever a batch is created.
type FileSet struct {
	refs []string
}

func NewFileSet(refs ...string) (FileSet, error) {
	if len(refs) == 0 {
		return FileSet{}, ErrEmptyBatch
	}
	for _, r := range refs {
		if r == "" {
			return FileSet{}, ErrInvalidFileRef
		}
	}
	cp := make([]string, len(refs))
	copy(cp, refs)
	return FileSet{refs: cp}, nil
}

func (f FileSet) Len() int {
	return len(f.refs)
}

// Refs returns a copy of the file ids in order.
func (f FileSet) Refs() []string {
	cp := make([]string, len(f.refs))
	copy(cp, f.refs)
	return cp
}
