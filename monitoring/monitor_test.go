package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/tlbsim/mem/vm/tlb"
)

func get(h http.Handler, url string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

	return rec
}

var _ = Describe("Monitor", func() {
	var (
		m      *Monitor
		l1     *tlb.Comp
		router http.Handler
	)

	BeforeEach(func() {
		m = NewMonitor()
		l1 = tlb.MakeBuilder().WithCapacity(4).Build("L1TLB")
		l1.Insert(1, 10)
		l1.Insert(2, 20)
		l1.Lookup(1)
		l1.Lookup(3)
		m.RegisterTLB(l1)
		router = m.Router()
	})

	It("should fall back to a random port for reserved ports", func() {
		m.WithPortNumber(80)
		Expect(m.portNumber).To(Equal(0))

		m.WithPortNumber(8080)
		Expect(m.portNumber).To(Equal(8080))
	})

	It("should list the TLBs", func() {
		rec := get(router, "/api/list_components")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(`["L1TLB"]`))
	})

	It("should report the TLB statistics", func() {
		rec := get(router, "/api/tlb/L1TLB")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(`{
			"name": "L1TLB",
			"capacity": 4,
			"len": 2,
			"hits": 1,
			"misses": 1,
			"hit_rate": 50
		}`))
	})

	It("should report the TLB entries from the most recently used", func() {
		rec := get(router, "/api/tlb/L1TLB/entries")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(`[
			{"virtual_page": 1, "physical_page": 10, "dirty": false},
			{"virtual_page": 2, "physical_page": 20, "dirty": false}
		]`))
	})

	It("should report the status and entries of the same moment", func() {
		status := get(router, "/api/tlb/L1TLB")
		entries := get(router, "/api/tlb/L1TLB/entries")

		var s tlbStatusRsp
		Expect(json.Unmarshal(status.Body.Bytes(), &s)).To(Succeed())
		var e []entryRsp
		Expect(json.Unmarshal(entries.Body.Bytes(), &e)).To(Succeed())

		Expect(s.Len).To(Equal(len(e)))
	})

	It("should count the TLB events since registration", func() {
		l1.Lookup(2)
		l1.Insert(5, 50)

		rec := get(router, "/api/tlb/L1TLB/events")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(`{
			"TLBHit": 1,
			"TLBInsert": 1
		}`))
	})

	It("should return 404 for unknown TLBs", func() {
		Expect(get(router, "/api/tlb/L2TLB").Code).
			To(Equal(http.StatusNotFound))
		Expect(get(router, "/api/tlb/L2TLB/entries").Code).
			To(Equal(http.StatusNotFound))
		Expect(get(router, "/api/tlb/L2TLB/events").Code).
			To(Equal(http.StatusNotFound))
		Expect(get(router, "/api/component/L2TLB").Code).
			To(Equal(http.StatusNotFound))
	})

	It("should serialize the TLB details", func() {
		rec := get(router, "/api/component/L1TLB")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("L1TLB"))
	})

	It("should list the progress bars", func() {
		bar := m.CreateProgressBar("T1", 10)
		bar.IncrementFinished(3)
		done := m.CreateProgressBar("T2", 5)
		m.CompleteProgressBar(done)

		rec := get(router, "/api/progress")

		var bars []progressBarStatus
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0].ID).To(Equal(bar.ID))
		Expect(bars[0].Name).To(Equal("T1"))
		Expect(bars[0].Total).To(Equal(uint64(10)))
		Expect(bars[0].Finished).To(Equal(uint64(3)))
	})

	It("should report the resource usage", func() {
		rec := get(router, "/api/resource")

		Expect(rec.Code).To(Equal(http.StatusOK))

		var rsp resourceRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})

	It("should serve the web page", func() {
		rec := get(router, "/")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(HavePrefix("<!DOCTYPE html>"))
		Expect(rec.Body.String()).To(ContainSubstring("/api/list_components"))
		Expect(rec.Body.String()).To(ContainSubstring(`"/api/tlb/"`))
		Expect(rec.Body.String()).To(ContainSubstring(`"/events"`))
		Expect(rec.Body.String()).To(ContainSubstring("/api/progress"))
	})

	It("should not open a browser before the server starts", func() {
		Expect(m.OpenInBrowser()).NotTo(Succeed())
	})

	It("should serve over HTTP", func() {
		url, err := m.StartServer()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(m.Shutdown, context.Background())

		rsp, err := http.Get(url + "/api/list_components")
		Expect(err).NotTo(HaveOccurred())
		defer rsp.Body.Close()

		Expect(rsp.StatusCode).To(Equal(http.StatusOK))
	})
})

var _ = Describe("ProgressBar", func() {
	It("should move items from in progress to finished", func() {
		bar := &ProgressBar{Total: 10}

		bar.IncrementInProgress(4)
		bar.MoveInProgressToFinished(3)

		s := bar.status()
		Expect(s.InProgress).To(Equal(uint64(1)))
		Expect(s.Finished).To(Equal(uint64(3)))
	})
})
