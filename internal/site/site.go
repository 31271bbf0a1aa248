// Package site encodes the selector rules for the target university site.
// These rules are the part of the system expected to rot when the site is
// redesigned, so they live behind scraper.SiteParser and nothing else depends
// on them directly.
package site

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rpineda26/facultyscraper/internal/scraper"
)

// programCodes maps the computer programs whose directory sections sit under
// a short-code container div (directory layout one).
var programCodes = map[string]string{
	"Computer Technology":    "CT",
	"Information Technology": "IT",
	"Software Technology":    "ST",
}

// facultyProfilesPlaceholder is the literal anchor text used for the section
// heading link on directory pages; it never names a person.
const facultyProfilesPlaceholder = "Faculty Profiles"

// Parser implements scraper.SiteParser.
type Parser struct{}

// New returns a Parser.
func New() *Parser {
	return &Parser{}
}

// Navigation walks main menu → Academics → Colleges → per-college submenu →
// program links. Every level is required; a missing one returns an error so
// the run fails loudly instead of guessing at the structure.
func (p *Parser) Navigation(doc *goquery.Document) ([]scraper.CollegeMenu, error) {
	mainMenu := doc.Find("ul.nav.navbar-nav.menu-main-menu").First()
	if mainMenu.Length() == 0 {
		return nil, fmt.Errorf("main menu not found")
	}

	academics := childWithAnchorText(mainMenu, "Academics")
	if academics == nil {
		return nil, fmt.Errorf("academics menu not found")
	}
	academicsMenu := academics.ChildrenFiltered("ul").First()
	if academicsMenu.Length() == 0 {
		return nil, fmt.Errorf("academics submenu not found")
	}

	colleges := childWithAnchorText(academicsMenu, "Colleges")
	if colleges == nil {
		return nil, fmt.Errorf("colleges menu not found")
	}
	collegesMenu := colleges.ChildrenFiltered("ul").First()
	if collegesMenu.Length() == 0 {
		return nil, fmt.Errorf("colleges submenu not found")
	}

	var menus []scraper.CollegeMenu
	collegesMenu.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		name := strings.TrimSpace(li.Find("a").First().Text())
		if name == "" {
			return
		}
		menu := scraper.CollegeMenu{College: name}
		programMenu := li.ChildrenFiltered("ul").First()
		if programMenu.Length() > 0 {
			menu.Programs = []scraper.ProgramLink{}
			programMenu.ChildrenFiltered("li").Each(func(_ int, pli *goquery.Selection) {
				anchor := pli.Find("a").First()
				href := strings.TrimSpace(anchor.AttrOr("href", ""))
				programName := strings.TrimSpace(anchor.Text())
				if href == "" || programName == "" {
					return
				}
				menu.Programs = append(menu.Programs, scraper.ProgramLink{
					Name: programName,
					URL:  href,
				})
			})
		}
		menus = append(menus, menu)
	})
	return menus, nil
}

// FacultyLink returns the first anchor whose href contains "faculty" and
// whose visible text contains "faculty profile", both case-insensitive.
func (p *Parser) FacultyLink(doc *goquery.Document) (string, bool) {
	var href string
	found := false
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		h := a.AttrOr("href", "")
		if !strings.Contains(strings.ToLower(h), "faculty") {
			return true
		}
		if !strings.Contains(strings.ToLower(a.Text()), "faculty profile") {
			return true
		}
		href = h
		found = true
		return false
	})
	return href, found
}

// DirectoryCards extracts person cards with an ordered layout fallback: the
// program-code sibling scan, then the generic person-card classes, then the
// looser text-block classes. More specific layouts go first so they are not
// over-matched by the generic ones.
func (p *Parser) DirectoryCards(doc *goquery.Document, program string) []scraper.PersonCard {
	cards := p.programSectionCards(doc, program)
	if len(cards) == 0 {
		cards = extractCards(doc.Find("div.wpb_column, div.vc_column_container, div.vc_col-sm-4"))
	}
	if len(cards) == 0 {
		cards = extractCards(doc.Find("div.wpb_text_column, div.wpb_content_element"))
	}
	return cards
}

// programSectionCards handles the layout where each computer program's
// section starts at a div with a short-code id. Siblings are scanned until
// the next program's container begins; person cards are nested inside the
// fluid row containers in between.
func (p *Parser) programSectionCards(doc *goquery.Document, program string) []scraper.PersonCard {
	code, ok := programCodes[program]
	if !ok {
		return nil
	}
	start := doc.Find("div#" + code).First()
	if start.Length() == 0 {
		return nil
	}

	var cards []scraper.PersonCard
	for sibling := start.Next(); sibling.Length() > 0; sibling = sibling.Next() {
		if id, exists := sibling.Attr("id"); exists && isProgramCode(id) {
			break
		}
		if !sibling.Is("div.vc_row.wpb_row.vc_row-fluid") {
			continue
		}
		nested := sibling.Find("div.wpb_column, div.vc_column_container, div.vc_col-sm-4")
		cards = append(cards, extractCards(nested)...)
	}
	return cards
}

func extractCards(elements *goquery.Selection) []scraper.PersonCard {
	var cards []scraper.PersonCard
	elements.Each(func(_ int, el *goquery.Selection) {
		anchor := el.Find("a").First()
		if anchor.Length() == 0 {
			return
		}
		name := strings.TrimSpace(anchor.Text())
		href := strings.TrimSpace(anchor.AttrOr("href", ""))
		if name == "" || href == "" || name == facultyProfilesPlaceholder {
			return
		}
		cards = append(cards, scraper.PersonCard{Name: name, Href: href})
	})
	return cards
}

// childWithAnchorText returns the direct li child whose first direct anchor
// has exactly the given text, or nil.
func childWithAnchorText(parent *goquery.Selection, text string) *goquery.Selection {
	var match *goquery.Selection
	parent.ChildrenFiltered("li").EachWithBreak(func(_ int, li *goquery.Selection) bool {
		anchor := li.ChildrenFiltered("a").First()
		if strings.TrimSpace(anchor.Text()) == text {
			match = li
			return false
		}
		return true
	})
	return match
}

func isProgramCode(id string) bool {
	for _, code := range programCodes {
		if id == code {
			return true
		}
	}
	return false
}
