package reactivity

import "reflect"

// hasChanged reports whether newValue differs from oldValue by identity for
// maps and slices and by == for everything comparable. Funcs always differ.
func hasChanged(oldValue, newValue any) bool {
	if oldValue == nil || newValue == nil {
		return oldValue != newValue
	}

	ov, nv := reflect.ValueOf(oldValue), reflect.ValueOf(newValue)
	if ov.Type() != nv.Type() {
		return true
	}
	if ov.Comparable() && nv.Comparable() {
		return oldValue != newValue
	}

	switch ov.Kind() {
	case reflect.Func:
		return true
	case reflect.Map:
		return ov.UnsafePointer() != nv.UnsafePointer()
	case reflect.Slice:
		return ov.UnsafePointer() != nv.UnsafePointer() || ov.Len() != nv.Len()
	default:
		return !reflect.DeepEqual(oldValue, newValue)
	}
}
