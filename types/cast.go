package types

// CastKind describes how a legal explicit cast converts its operand.  The
// semantic analyzer computes the kind once so that code generation can select
// the matching instruction without re-deriving signedness.
type CastKind int

const (
	CastIdentity CastKind = iota // same type or same-width sign reinterpretation
	CastTrunc                    // integer narrowing: high bits dropped
	CastSExt                     // integer widening from a signed source
	CastZExt                     // integer widening from an unsigned source
	CastFPTrunc                  // float narrowing
	CastFPExt                    // float widening
	CastSIToFP                   // signed integer to float
	CastUIToFP                   // unsigned integer to float
	CastFPToSI                   // float to signed integer
	CastFPToUI                   // float to unsigned integer
	CastBoolExt                  // bool to integer (zero-extension)
	CastEnumToInt                // enum to its backing integer representation
)

// LegalCast returns the cast kind for an explicit `as` cast from src to dst,
// and whether the cast is legal.  Only numeric, bool, and enum casts exist;
// truncation drops high bits, widening sign-extends signed sources and
// zero-extends unsigned ones.
func LegalCast(src, dst Type) (CastKind, bool) {
	src = InnerType(src)
	dst = InnerType(dst)

	if Equals(src, dst) {
		return CastIdentity, true
	}

	// An enum casts to any integer type its backing type casts to.
	if et, ok := src.(*EnumType); ok {
		if kind, ok := LegalCast(et.Backing, dst); ok {
			return kind, true
		}

		return 0, false
	}

	spt, ok := src.(*PrimType)
	if !ok {
		return 0, false
	}

	dpt, ok := dst.(*PrimType)
	if !ok {
		return 0, false
	}

	switch {
	case spt.Kind == PrimBool && dpt.IsInt():
		return CastBoolExt, true

	case spt.IsInt() && dpt.IsInt():
		switch {
		case spt.BitWidth() > dpt.BitWidth():
			return CastTrunc, true
		case spt.BitWidth() < dpt.BitWidth():
			if spt.IsSigned() {
				return CastSExt, true
			}

			return CastZExt, true
		default:
			// Same width, different signedness: bit pattern reinterpretation.
			return CastIdentity, true
		}

	case spt.IsFloat() && dpt.IsFloat():
		if spt.BitWidth() > dpt.BitWidth() {
			return CastFPTrunc, true
		}

		return CastFPExt, true

	case spt.IsInt() && dpt.IsFloat():
		if spt.IsSigned() {
			return CastSIToFP, true
		}

		return CastUIToFP, true

	case spt.IsFloat() && dpt.IsInt():
		if dpt.IsSigned() {
			return CastFPToSI, true
		}

		return CastFPToUI, true
	}

	return 0, false
}
