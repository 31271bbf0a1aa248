package scraper

import (
	"sync"

	"github.com/google/uuid"
)

// Snapshot is the JSON shape appended to the statistics file after each run.
// The per-program count maps carry the " Faculty" key suffix the output file
// has always used.
type Snapshot struct {
	RunID                     string          `json:"run_id"`
	BaseURL                   string          `json:"base_url"`
	NumWorkers                int             `json:"num_threads"`
	ScrapeTimeMinutes         int             `json:"scrape_time_minutes"`
	CollegesCount             int             `json:"colleges_count"`
	ProgramsVisited           int             `json:"programs_visited"`
	TotalPagesVisited         int             `json:"total_pages_visited"`
	TotalEmailsRecorded       int             `json:"total_emails_recorded"`
	ProgramsWithFacultyURL    map[string]bool `json:"programs_with_faculty_url"`
	ProgramsWithoutFacultyURL map[string]bool `json:"programs_without_faculty_url"`
	ProgramPersonnelCount     map[string]int  `json:"program_personnel_count"`
	ProgramCompleteRecords    map[string]int  `json:"program_complete_records"`
	ProgramIncompleteRecords  map[string]int  `json:"program_incomplete_records"`
}

// Statistics aggregates run-wide counters. Every stage updates it; one mutex
// guards all fields and no lock is held across I/O.
type Statistics struct {
	mu sync.Mutex

	runID             string
	baseURL           string
	numWorkers        int
	scrapeTimeMinutes int

	collegesCount       int
	programsVisited     int
	totalPagesVisited   int
	totalEmailsRecorded int

	programsWithFacultyURL    map[string]bool
	programsWithoutFacultyURL map[string]bool
	programPersonnelCount     map[string]int
	programCompleteRecords    map[string]int
	programIncompleteRecords  map[string]int
}

// NewStatistics creates an aggregator for one run. The page counter starts at
// one to account for the root page fetched during discovery.
func NewStatistics(baseURL string, numWorkers, scrapeTimeMinutes int) *Statistics {
	return &Statistics{
		runID:                     uuid.NewString(),
		baseURL:                   baseURL,
		numWorkers:                numWorkers,
		scrapeTimeMinutes:         scrapeTimeMinutes,
		totalPagesVisited:         1,
		programsWithFacultyURL:    make(map[string]bool),
		programsWithoutFacultyURL: make(map[string]bool),
		programPersonnelCount:     make(map[string]int),
		programCompleteRecords:    make(map[string]int),
		programIncompleteRecords:  make(map[string]int),
	}
}

// RecordCollege counts one discovered college.
func (s *Statistics) RecordCollege() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collegesCount++
}

// RecordProgramVisit counts a program page dequeue, which is also a page
// visit.
func (s *Statistics) RecordProgramVisit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.programsVisited++
	s.totalPagesVisited++
}

// RecordFacultyURLSuccess marks program as having a working faculty directory
// URL and counts the directory page that will be visited for it.
func (s *Statistics) RecordFacultyURLSuccess(program string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.programsWithFacultyURL[program] = true
	s.totalPagesVisited++
}

// RecordFacultyURLFailure marks program as missing a faculty directory URL.
func (s *Statistics) RecordFacultyURLFailure(program string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.programsWithoutFacultyURL[program] = true
}

// RecordPersonnelFound counts one contact stub extracted for program.
func (s *Statistics) RecordPersonnelFound(program string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.programPersonnelCount[program]++
}

// RecordCompleteRecord counts a contact whose email was found. It also feeds
// the run-wide email total.
func (s *Statistics) RecordCompleteRecord(program string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.programCompleteRecords[program]++
	s.totalEmailsRecorded++
}

// RecordIncompleteRecord counts a contact whose profile page yielded no
// email.
func (s *Statistics) RecordIncompleteRecord(program string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.programIncompleteRecords[program]++
}

// CollegesCount returns the number of colleges discovered so far.
func (s *Statistics) CollegesCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collegesCount
}

// TotalEmailsRecorded returns the run-wide email count so far.
func (s *Statistics) TotalEmailsRecorded() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalEmailsRecorded
}

// CompleteRecords returns the complete-record count for program.
func (s *Statistics) CompleteRecords(program string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.programCompleteRecords[program]
}

// IncompleteRecords returns the incomplete-record count for program.
func (s *Statistics) IncompleteRecords(program string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.programIncompleteRecords[program]
}

// HasFacultyURL reports whether program resolved a faculty directory URL.
func (s *Statistics) HasFacultyURL(program string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.programsWithFacultyURL[program]
}

// Snapshot copies the current counters into the file shape.
func (s *Statistics) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		RunID:                     s.runID,
		BaseURL:                   s.baseURL,
		NumWorkers:                s.numWorkers,
		ScrapeTimeMinutes:         s.scrapeTimeMinutes,
		CollegesCount:             s.collegesCount,
		ProgramsVisited:           s.programsVisited,
		TotalPagesVisited:         s.totalPagesVisited,
		TotalEmailsRecorded:       s.totalEmailsRecorded,
		ProgramsWithFacultyURL:    copyBoolMap(s.programsWithFacultyURL),
		ProgramsWithoutFacultyURL: copyBoolMap(s.programsWithoutFacultyURL),
		ProgramPersonnelCount:     suffixIntMap(s.programPersonnelCount),
		ProgramCompleteRecords:    suffixIntMap(s.programCompleteRecords),
		ProgramIncompleteRecords:  suffixIntMap(s.programIncompleteRecords),
	}
}

func copyBoolMap(src map[string]bool) map[string]bool {
	dst := make(map[string]bool, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func suffixIntMap(src map[string]int) map[string]int {
	dst := make(map[string]int, len(src))
	for k, v := range src {
		dst[k+" Faculty"] = v
	}
	return dst
}
