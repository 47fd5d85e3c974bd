package persistence

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"
)

var (
	// ErrBigEndian is returned when running on big-endian systems
	ErrBigEndian = errors.New("big-endian systems are not supported")

	// ErrUnalignedAccess is returned when attempting unaligned memory access
	ErrUnalignedAccess = errors.New("unaligned memory access detected")
)

// init performs startup validation of platform requirements
func init() {
	if err := validatePlatform(); err != nil {
		panic(fmt.Sprintf("hashvec/persistence: %v", err))
	}
}

// validatePlatform rejects hosts whose native byte order differs from the format.
func validatePlatform() error {
	if !isLittleEndian() {
		return fmt.Errorf("%w: %s", ErrBigEndian, runtime.GOARCH)
	}
	return nil
}

// isLittleEndian checks if the system is little-endian
func isLittleEndian() bool {
	var test uint16 = 0x0001
	firstByte := *(*byte)(unsafe.Pointer(&test))
	return firstByte == 1
}

// validateAlignment checks that the first element of s is naturally aligned.
func validateAlignment[T Word](s []T) error {
	if len(s) == 0 {
		return nil
	}

	ptr := uintptr(unsafe.Pointer(&s[0]))
	if align := unsafe.Alignof(s[0]); ptr%align != 0 {
		return fmt.Errorf("%w: %d-byte slice at address 0x%x", ErrUnalignedAccess, align, ptr)
	}

	return nil
}

// PlatformInfo returns information about the current platform
func PlatformInfo() string {
	endian := "little-endian"
	if !isLittleEndian() {
		endian = "big-endian"
	}
	return fmt.Sprintf("GOOS=%s GOARCH=%s endianness=%s", runtime.GOOS, runtime.GOARCH, endian)
}
