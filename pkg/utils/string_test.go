package utils

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("truncate", func() {
	It("returns the string unchanged when within the limit", func() {
		Expect(Truncate("short", 10)).To(Equal("short"))
	})

	It("returns the string unchanged when exactly at the limit", func() {
		Expect(Truncate("12345", 5)).To(Equal("12345"))
	})

	It("truncates with ellipsis when over the limit", func() {
		result := Truncate("this is a long string", 10)
		Expect(result).To(Equal("this is a ..."))
	})
})

var _ = Describe("mask", func() {
	It("returns an empty string unchanged", func() {
		Expect(Mask("")).To(BeEmpty())
	})

	It("hides short secrets entirely", func() {
		Expect(Mask("abcd1234")).To(Equal("********"))
	})

	It("keeps the last four characters of longer secrets", func() {
		Expect(Mask("secret-key-9876")).To(Equal("***********9876"))
	})
})
