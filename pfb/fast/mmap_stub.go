//go:build !unix

package fast

func probeMmap() error {
	return ErrNotSupported
}

func mapFile(path string) ([]byte, error) {
	return nil, ErrNotSupported
}

func unmapFile(data []byte) error {
	return nil
}
