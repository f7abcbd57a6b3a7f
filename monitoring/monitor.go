// Package monitoring turns a running simulation into a web server so that
// the TLBs and the tasks can be watched while the trace is replayed.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/rs/xid"
	"github.com/sarchlab/tlbsim/mem/vm/tlb"
	"github.com/sarchlab/tlbsim/monitoring/web"
	"github.com/sarchlab/tlbsim/sim/hooking"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// Monitor can turn a simulation into a server and allows external monitoring
// of the simulation.
type Monitor struct {
	portNumber int
	tlbs       []*watchedTLB

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar

	server *http.Server
	url    string
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// watchedTLB is a registered TLB together with the counter of its events.
type watchedTLB struct {
	*tlb.Comp
	events *hooking.PosCounter
}

// RegisterTLB registers a TLB to be monitored. All the TLBs must be
// registered before the server starts.
func (m *Monitor) RegisterTLB(c *tlb.Comp) {
	events := hooking.NewPosCounter()
	c.AcceptHook(events)

	m.tlbs = append(m.tlbs, &watchedTLB{Comp: c, events: events})
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router returns the handler that serves the monitoring API and the web page.
func (m *Monitor) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/list_components", m.listComponents)
	r.HandleFunc("/api/tlb/{name}", m.tlbStatus)
	r.HandleFunc("/api/tlb/{name}/entries", m.tlbEntries)
	r.HandleFunc("/api/tlb/{name}/events", m.tlbEvents)
	r.HandleFunc("/api/component/{name}", m.listComponentDetails)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts the monitor as a web server with a custom port if wanted.
// It returns the URL of the web page.
func (m *Monitor) StartServer() (string, error) {
	actualPort := ":0"
	if m.portNumber > 0 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return "", fmt.Errorf("starting monitoring server: %w", err)
	}

	m.url = fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	m.server = &http.Server{
		Handler:           m.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", m.url)

	go func() {
		err := m.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Panic(err)
		}
	}()

	return m.url, nil
}

// OpenInBrowser opens the web page of a started server.
func (m *Monitor) OpenInBrowser() error {
	if m.url == "" {
		return errors.New("monitoring server is not started")
	}

	return browser.OpenURL(m.url)
}

// Shutdown stops the web server.
func (m *Monitor) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(m.tlbs))
	for _, c := range m.tlbs {
		names = append(names, c.Name())
	}

	writeJSON(w, names)
}

type tlbStatusRsp struct {
	Name     string  `json:"name"`
	Capacity int     `json:"capacity"`
	Len      int     `json:"len"`
	Hits     uint64  `json:"hits"`
	Misses   uint64  `json:"misses"`
	HitRate  float64 `json:"hit_rate"`
}

func (m *Monitor) tlbStatus(w http.ResponseWriter, r *http.Request) {
	c := m.findTLBOr404(w, mux.Vars(r)["name"])
	if c == nil {
		return
	}

	snapshot := c.Snapshot()
	writeJSON(w, tlbStatusRsp{
		Name:     snapshot.Name,
		Capacity: snapshot.Capacity,
		Len:      len(snapshot.Entries),
		Hits:     snapshot.Stats.Hits,
		Misses:   snapshot.Stats.Misses,
		HitRate:  snapshot.Stats.HitRate(),
	})
}

type entryRsp struct {
	VirtualPage  uint64 `json:"virtual_page"`
	PhysicalPage uint64 `json:"physical_page"`
	Dirty        bool   `json:"dirty"`
}

func (m *Monitor) tlbEntries(w http.ResponseWriter, r *http.Request) {
	c := m.findTLBOr404(w, mux.Vars(r)["name"])
	if c == nil {
		return
	}

	entries := c.Entries()
	rsp := make([]entryRsp, 0, len(entries))
	for _, e := range entries {
		rsp = append(rsp, entryRsp{
			VirtualPage:  e.VirtualPage,
			PhysicalPage: e.PhysicalPage,
			Dirty:        e.Dirty,
		})
	}

	writeJSON(w, rsp)
}

func (m *Monitor) tlbEvents(w http.ResponseWriter, r *http.Request) {
	c := m.findTLBOr404(w, mux.Vars(r)["name"])
	if c == nil {
		return
	}

	writeJSON(w, c.events.Counts())
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	c := m.findTLBOr404(w, mux.Vars(r)["name"])
	if c == nil {
		return
	}

	snapshot := c.Snapshot()

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&snapshot)
	serializer.SetMaxDepth(2)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

func (m *Monitor) findTLBOr404(
	w http.ResponseWriter,
	name string,
) *watchedTLB {
	for _, c := range m.tlbs {
		if c.Name() == name {
			return c
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Component not found"))
	dieOnErr(err)

	return nil
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	statuses := make([]progressBarStatus, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		statuses = append(statuses, b.status())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, statuses)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	cpuPercent, err := process.CPUPercent()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	memorySize, err := process.MemoryInfo()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
