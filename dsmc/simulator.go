package dsmc

import (
	"sync"
	"time"
)

// Transfer records one BlockRead or BlockWrite seen by a Simulator.
type Transfer struct {
	Entry       Entry
	StartSector int32
	SectorCount int32
}

// fault makes an entry fail with status once it has succeeded after times.
type fault struct {
	after  int
	status Status
}

// Simulator is an in-memory DSMC device object. It stores sectors sparsely,
// enforces the native call order, counts calls per entry and can inject
// failures. Unwritten sectors read back as 0xFF, like erased NAND.
//
// Simulator is safe for concurrent inspection while a single caller drives it.
type Simulator struct {
	mu sync.Mutex

	version      int32
	blockSize    int
	totalSectors int64
	digest       [DigestSize]byte
	latency      time.Duration

	sectors map[int64][]byte

	initialized bool
	programming bool
	released    bool
	safe        bool
	port        int32
	progressCB  uintptr

	calls     map[Entry]int
	faults    map[Entry]fault
	releases  int
	transfers []Transfer
}

// SimOption configures a Simulator.
type SimOption func(*Simulator)

// WithInterfaceVersion sets the version reported by GetInterfaceVersion.
func WithInterfaceVersion(version int32) SimOption {
	return func(s *Simulator) {
		s.version = version
	}
}

// WithSectors sets the simulated block size and sector count.
func WithSectors(blockSize int, totalSectors int64) SimOption {
	return func(s *Simulator) {
		if blockSize > 0 && totalSectors > 0 {
			s.blockSize = blockSize
			s.totalSectors = totalSectors
		}
	}
}

// WithDigest sets the digest returned by GetExpDigest1SMCBL.
func WithDigest(digest [DigestSize]byte) SimOption {
	return func(s *Simulator) {
		s.digest = digest
	}
}

// WithLatency adds a delay to every transfer, to mimic the programmer bus.
func WithLatency(d time.Duration) SimOption {
	return func(s *Simulator) {
		s.latency = d
	}
}

// NewSimulator creates a Simulator reporting InterfaceVersion with a
// 5056 MiB address space of BlockSize sectors.
func NewSimulator(opts ...SimOption) *Simulator {
	s := &Simulator{
		version:      InterfaceVersion,
		blockSize:    BlockSize,
		totalSectors: (5056 << 20) / BlockSize,
		sectors:      make(map[int64][]byte),
		calls:        make(map[Entry]int),
		faults:       make(map[Entry]fault),
	}
	for i := range s.digest {
		s.digest[i] = byte(0xA0 + i)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FailOn makes every call to entry return status.
func (s *Simulator) FailOn(entry Entry, status Status) {
	s.FailAfter(entry, 0, status)
}

// FailAfter lets entry succeed n times, then return status on every later call.
func (s *Simulator) FailAfter(entry Entry, n int, status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[entry] = fault{after: n, status: status}
}

// ClearFaults removes all injected failures.
func (s *Simulator) ClearFaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = make(map[Entry]fault)
}

// Calls returns how many times entry has been invoked.
func (s *Simulator) Calls(entry Entry) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[entry]
}

// TotalCalls returns the number of calls across all entries.
func (s *Simulator) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

// Releases returns how many times Release has been called.
func (s *Simulator) Releases() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.releases
}

// Transfers returns the block transfers issued so far, in order.
func (s *Simulator) Transfers() []Transfer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Transfer, len(s.transfers))
	copy(out, s.transfers)
	return out
}

// SafeTransferMode reports the last value passed to SetSafeTransferMode.
func (s *Simulator) SafeTransferMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.safe
}

// Port returns the port passed to Initialize.
func (s *Simulator) Port() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// Programming reports whether a programming session is open.
func (s *Simulator) Programming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.programming
}

// Sector returns a copy of the stored sector, or nil if it was never written.
func (s *Simulator) Sector(n int64) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.sectors[n]
	if !ok {
		return nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out
}

// enter records a call and returns the injected status, if any.
// Callers hold s.mu.
func (s *Simulator) enter(entry Entry) (Status, bool) {
	n := s.calls[entry]
	s.calls[entry] = n + 1
	if f, ok := s.faults[entry]; ok && n >= f.after {
		return f.status, true
	}
	return StatusSuccess, false
}

func (s *Simulator) GetInterfaceVersion() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enter(EntryGetInterfaceVersion)
	return s.version
}

func (s *Simulator) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enter(EntryRelease)
	s.releases++
	s.released = true
	s.programming = false
	s.initialized = false
}

func (s *Simulator) Initialize(port int32) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.enter(EntryInitialize); ok {
		return st
	}
	if s.released {
		return StatusHandle
	}
	if s.initialized {
		return StatusUnexpected
	}
	s.port = port
	s.initialized = true
	return StatusSuccess
}

func (s *Simulator) BeginProgramming() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.enter(EntryBeginProgramming); ok {
		return st
	}
	if s.released {
		return StatusHandle
	}
	if !s.initialized || s.programming {
		return StatusUnexpected
	}
	s.programming = true
	return StatusSuccess
}

func (s *Simulator) RegisterProgress(callback, state uintptr) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.enter(EntryRegisterProgress); ok {
		return st
	}
	if s.released {
		return StatusHandle
	}
	if !s.initialized {
		return StatusUnexpected
	}
	s.progressCB = callback
	return StatusSuccess
}

// checkTransfer validates a block transfer. Callers hold s.mu.
func (s *Simulator) checkTransfer(startSector int32, buf []byte, sectorCount int32) Status {
	if s.released {
		return StatusHandle
	}
	if !s.programming {
		return StatusUnexpected
	}
	if startSector < 0 || sectorCount <= 0 {
		return StatusInvalidArg
	}
	if int64(startSector)+int64(sectorCount) > s.totalSectors {
		return StatusInvalidArg
	}
	if len(buf) < int(sectorCount)*s.blockSize {
		return StatusPointer
	}
	return StatusSuccess
}

func (s *Simulator) BlockWrite(startSector int32, buf []byte, sectorCount int32) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.enter(EntryBlockWrite); ok {
		return st
	}
	if st := s.checkTransfer(startSector, buf, sectorCount); st != StatusSuccess {
		return st
	}
	s.transfers = append(s.transfers, Transfer{Entry: EntryBlockWrite, StartSector: startSector, SectorCount: sectorCount})

	for i := 0; i < int(sectorCount); i++ {
		sector := make([]byte, s.blockSize)
		copy(sector, buf[i*s.blockSize:(i+1)*s.blockSize])
		s.sectors[int64(startSector)+int64(i)] = sector
	}

	if s.latency > 0 {
		time.Sleep(s.latency)
	}
	return StatusSuccess
}

func (s *Simulator) BlockRead(startSector int32, buf []byte, sectorCount int32) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.enter(EntryBlockRead); ok {
		return st
	}
	if st := s.checkTransfer(startSector, buf, sectorCount); st != StatusSuccess {
		return st
	}
	s.transfers = append(s.transfers, Transfer{Entry: EntryBlockRead, StartSector: startSector, SectorCount: sectorCount})

	for i := 0; i < int(sectorCount); i++ {
		dst := buf[i*s.blockSize : (i+1)*s.blockSize]
		if data, ok := s.sectors[int64(startSector)+int64(i)]; ok {
			copy(dst, data)
			continue
		}
		for j := range dst {
			dst[j] = 0xFF
		}
	}

	if s.latency > 0 {
		time.Sleep(s.latency)
	}
	return StatusSuccess
}

func (s *Simulator) EndProgramming() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.enter(EntryEndProgramming); ok {
		return st
	}
	if s.released {
		return StatusHandle
	}
	if !s.programming {
		return StatusUnexpected
	}
	s.programming = false
	return StatusSuccess
}

func (s *Simulator) PowerButton() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.enter(EntryPowerButton); ok {
		return st
	}
	if s.released {
		return StatusHandle
	}
	if !s.initialized {
		return StatusUnexpected
	}
	return StatusSuccess
}

func (s *Simulator) SetSafeTransferMode(safe bool) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.enter(EntrySetSafeTransferMode); ok {
		return st
	}
	if s.released {
		return StatusHandle
	}
	if !s.initialized {
		return StatusUnexpected
	}
	s.safe = safe
	return StatusSuccess
}

func (s *Simulator) GetExpDigest1SMCBL(digest, scratch []byte) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.enter(EntryGetExpDigest1SMCBL); ok {
		return st
	}
	if s.released {
		return StatusHandle
	}
	if !s.initialized {
		return StatusUnexpected
	}
	if len(digest) < DigestSize || len(scratch) < DigestScratchSize {
		return StatusPointer
	}
	copy(digest, s.digest[:])
	for i := range scratch[:DigestScratchSize] {
		scratch[i] = byte(i)
	}
	return StatusSuccess
}

func (s *Simulator) SetExitEvent() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.enter(EntrySetExitEvent); ok {
		return st
	}
	if s.released {
		return StatusHandle
	}
	return StatusSuccess
}
