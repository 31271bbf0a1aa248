// Package scraper implements the three-stage faculty scraping pipeline:
// program pages are resolved to faculty directories, directories are parsed
// into contact stubs, and profile pages are rendered to extract emails.
package scraper

// ContactRecord is one row of scraper output. The directory stage creates it
// as a stub without an email; the profile stage fills the email in before the
// record reaches the result sink. Ownership moves with the record through the
// queues, so only one goroutine writes to it at a time.
type ContactRecord struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Office     string `json:"office"`
	Department string `json:"department"`
	ProfileURL string `json:"profile_url"`
}

// ProgramItem is the unit of work for the program stage: one academic program
// page discovered from the root navigation.
type ProgramItem struct {
	College string
	Program string
	URL     string
}

// DirectoryItem is the unit of work for the directory stage: a resolved
// faculty-directory URL for one program.
type DirectoryItem struct {
	College    string
	Program    string
	FacultyURL string
}

// ProgramLink is one program entry found under a college submenu.
type ProgramLink struct {
	Name string
	URL  string
}

// CollegeMenu is the discovery result for one college, in menu order.
type CollegeMenu struct {
	College  string
	Programs []ProgramLink
}

// PersonCard is a raw (name, href) pair extracted from a directory page
// before deduplication and URL resolution.
type PersonCard struct {
	Name string
	Href string
}
