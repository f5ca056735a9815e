//go:build !cgo

package store

func openKuzu(string) (Store, error) {
	return nil, ErrKuzuUnavailable
}
