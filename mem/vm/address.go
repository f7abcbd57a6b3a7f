package vm

import "fmt"

// An AddressSpace splits addresses into page numbers and offsets using a
// fixed page size.
type AddressSpace struct {
	log2PageSize uint64
}

// NewAddressSpace creates an address space with the given page size. The page
// size must be a power of 2.
func NewAddressSpace(pageSize uint64) (AddressSpace, error) {
	if pageSize == 0 || pageSize&(pageSize-1) != 0 {
		return AddressSpace{}, fmt.Errorf(
			"page size %d is not a power of 2", pageSize)
	}

	log2 := uint64(0)
	for size := pageSize; size > 1; size >>= 1 {
		log2++
	}

	return AddressSpace{log2PageSize: log2}, nil
}

// PageSize returns the page size in bytes.
func (s AddressSpace) PageSize() uint64 {
	return 1 << s.log2PageSize
}

// PageNumber returns the number of the page that contains the address.
func (s AddressSpace) PageNumber(addr uint64) uint64 {
	return addr >> s.log2PageSize
}

// Offset returns the position of the address inside its page.
func (s AddressSpace) Offset(addr uint64) uint64 {
	return addr & (s.PageSize() - 1)
}

// Address composes a page number and an offset back into an address.
func (s AddressSpace) Address(pageNumber, offset uint64) uint64 {
	return pageNumber<<s.log2PageSize | offset
}
