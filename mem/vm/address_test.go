package vm

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AddressSpace", func() {
	It("should reject page sizes that are not a power of 2", func() {
		_, err := NewAddressSpace(3000)
		Expect(err).To(HaveOccurred())

		_, err = NewAddressSpace(0)
		Expect(err).To(HaveOccurred())
	})

	It("should split addresses", func() {
		s, err := NewAddressSpace(4096)
		Expect(err).NotTo(HaveOccurred())

		Expect(s.PageSize()).To(Equal(uint64(4096)))
		Expect(s.PageNumber(0x4123)).To(Equal(uint64(4)))
		Expect(s.Offset(0x4123)).To(Equal(uint64(0x123)))
		Expect(s.Address(7, 0x123)).To(Equal(uint64(0x7123)))
	})

	It("should support one-byte pages", func() {
		s, err := NewAddressSpace(1)
		Expect(err).NotTo(HaveOccurred())

		Expect(s.PageNumber(42)).To(Equal(uint64(42)))
		Expect(s.Offset(42)).To(BeZero())
	})
})
