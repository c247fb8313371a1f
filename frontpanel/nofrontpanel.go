//go:build !frontpanel || !cgo

package frontpanel

// Open always fails: this binary was built without the vendor library.
// Rebuild with "-tags frontpanel" and libokFrontPanel installed.
func Open(serial string) (Device, error) {
	return nil, ErrNotSupported
}
