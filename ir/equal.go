package ir

// Equal reports deep equality of two nodes.  Objects are equal when they
// have the same fields with equal values in the same declaration order;
// arrays when they have equal elements at every index.  Number equality is
// shape sensitive: an integer lexeme and a float lexeme of the same
// magnitude compare unequal.
func Equal(a, b *Node) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case NullType:
		return true
	case BoolType:
		return a.Bool == b.Bool
	case StringType:
		return a.String == b.String
	case NumberType:
		return numbersEqual(a, b)
	case ArrayType:
		if len(a.Values) != len(b.Values) {
			return false
		}
		for i := range a.Values {
			if !Equal(a.Values[i], b.Values[i]) {
				return false
			}
		}
		return true
	case ObjectType:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i].String != b.Fields[i].String {
				return false
			}
			if !Equal(a.Values[i], b.Values[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func numbersEqual(a, b *Node) bool {
	if (a.Int64 == nil) != (b.Int64 == nil) {
		return false
	}
	if (a.Float64 == nil) != (b.Float64 == nil) {
		return false
	}
	if a.Int64 != nil {
		return *a.Int64 == *b.Int64
	}
	if a.Float64 != nil {
		return *a.Float64 == *b.Float64
	}
	return a.Number == b.Number
}
