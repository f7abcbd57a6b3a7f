package hooking

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type countingHook struct {
	count int
	last  HookCtx
}

func (h *countingHook) Func(ctx HookCtx) {
	h.count++
	h.last = ctx
}

var _ = Describe("HookableBase", func() {
	var (
		base *HookableBase
		pos  = &HookPos{Name: "Pos"}
	)

	BeforeEach(func() {
		base = &HookableBase{}
	})

	It("should invoke all hooks", func() {
		h1 := &countingHook{}
		h2 := &countingHook{}
		base.AcceptHook(h1)
		base.AcceptHook(h2)

		base.InvokeHook(HookCtx{Pos: pos, Item: 42})

		Expect(base.NumHooks()).To(Equal(2))
		Expect(h1.count).To(Equal(1))
		Expect(h2.count).To(Equal(1))
		Expect(h2.last.Pos).To(BeIdenticalTo(pos))
		Expect(h2.last.Item).To(Equal(42))
	})

	It("should panic on duplicated hooks", func() {
		h := &countingHook{}
		base.AcceptHook(h)

		Expect(func() { base.AcceptHook(h) }).To(Panic())
	})

	It("should accept hook funcs", func() {
		called := 0
		f := HookFunc(func(HookCtx) { called++ })
		base.AcceptHook(f)
		base.AcceptHook(f)

		base.InvokeHook(HookCtx{Pos: pos})

		Expect(called).To(Equal(2))
	})

	It("should return a copy of the hook list", func() {
		base.AcceptHook(&countingHook{})

		hooks := base.Hooks()
		hooks[0] = nil

		Expect(base.Hooks()[0]).NotTo(BeNil())
	})
})
