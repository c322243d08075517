package block

// The list operations below are pure: each returns a fresh slice and leaves
// its input untouched. Committing the result (persistence, re-render) is the
// caller's responsibility.

// Append returns a new list with b added at the end.
func Append(list []Block, b Block) []Block {
	out := make([]Block, 0, len(list)+1)
	out = append(out, list...)
	return append(out, b)
}

// RemoveAt returns a new list with the element at index excluded. An
// out-of-range index returns an equivalent copy of the input.
func RemoveAt(list []Block, index int) []Block {
	if index < 0 || index >= len(list) {
		return clone(list)
	}
	out := make([]Block, 0, len(list)-1)
	out = append(out, list[:index]...)
	return append(out, list[index+1:]...)
}

// Patch describes a partial update of a block. Nil fields are left alone, so
// ID and Kind survive an edit unless explicitly overridden.
type Patch struct {
	ID        *string
	Kind      *Kind
	Text      *string
	ImageData *string
	ImageName *string
}

// UpdateAt returns a new list with patch merged into the element at index.
// An out-of-range index returns an equivalent copy of the input.
func UpdateAt(list []Block, index int, patch Patch) []Block {
	out := clone(list)
	if index < 0 || index >= len(out) {
		return out
	}
	b := out[index]
	if patch.ID != nil {
		b.ID = *patch.ID
	}
	if patch.Kind != nil {
		b.Kind = *patch.Kind
	}
	if patch.Text != nil {
		b.Text = *patch.Text
	}
	if patch.ImageData != nil {
		b.ImageData = *patch.ImageData
	}
	if patch.ImageName != nil {
		b.ImageName = *patch.ImageName
	}
	out[index] = b
	return out
}

// Move returns a new list with the element at from removed and reinserted at
// to. Splice semantics apply: the insertion index addresses the list with the
// source element already removed. When from equals to, or either index is out
// of range, the input is returned as an equivalent copy.
func Move(list []Block, from, to int) []Block {
	if from == to || from < 0 || from >= len(list) || to < 0 || to >= len(list) {
		return clone(list)
	}
	moved := list[from]
	out := make([]Block, 0, len(list))
	out = append(out, list[:from]...)
	out = append(out, list[from+1:]...)
	out = append(out[:to], append([]Block{moved}, out[to:]...)...)
	return out
}

func clone(list []Block) []Block {
	out := make([]Block, len(list))
	copy(out, list)
	return out
}
