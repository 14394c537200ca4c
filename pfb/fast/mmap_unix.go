//go:build unix

package fast

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/hydroframe/go-native-pfb/pfb/api"
)

// probeMmap maps and releases one anonymous page to prove the platform
// supports the accelerated codec.
func probeMmap() error {
	page, err := unix.Mmap(-1, 0, unix.Getpagesize(),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotSupported, err)
	}
	return unix.Munmap(page)
}

func mapFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	fi, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if fi.Size() == 0 {
		return nil, fmt.Errorf("%w: empty file: %s", api.ErrDecode, path)
	}
	data, err := unix.Mmap(int(file.Fd()), 0, int(fi.Size()),
		unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	return data, nil
}

func unmapFile(data []byte) error {
	return unix.Munmap(data)
}
