package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/lineage/pkg/family"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// =============================================================================
// File Output
// =============================================================================

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// =============================================================================
// Key-Value Output
// =============================================================================

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// People Display
// =============================================================================

// printPerson prints one person with resolved relatives.
func printPerson(p family.Person, t family.Tree) {
	fmt.Println(StyleTitle.Render(p.FullName()) + " " + StyleDim.Render("("+p.ID+")"))
	printKeyValue("Gender", string(p.Gender))
	if s := formatEvent(p.BirthDate, p.BirthPlace); s != "" {
		printKeyValue("Born", s)
	}
	if s := formatEvent(p.DeathDate, p.DeathPlace); s != "" {
		printKeyValue("Died", s)
	}
	if father, ok := t.Get(p.FatherID); ok {
		printKeyValue("Father", personRef(father))
	}
	if mother, ok := t.Get(p.MotherID); ok {
		printKeyValue("Mother", personRef(mother))
	}
	if spouses := t.Resolve(p.SpouseIDs); len(spouses) > 0 {
		printKeyValue("Spouses", joinRefs(spouses))
	}
	if children := t.Resolve(p.ChildrenIDs); len(children) > 0 {
		printKeyValue("Children", joinRefs(children))
	}
	if p.Photo != "" {
		photo := "embedded image"
		if !strings.HasPrefix(p.Photo, "data:") {
			photo = StyleLink.Render(p.Photo)
		}
		printKeyValue("Photo", photo)
	}
	if p.Bio != "" {
		fmt.Println()
		fmt.Println(lipgloss.NewStyle().Width(72).Foreground(colorGray).Render(p.Bio))
	}
}

// peopleTable renders people as a bordered table.
func peopleTable(people []family.Person) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	rows := make([][]string, len(people))
	for i, p := range people {
		rows[i] = []string{p.ID, p.FullName(), string(p.Gender), lifespan(p)}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Gender", "Life").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorDim)
			case col == 1:
				return lipgloss.NewStyle().Foreground(colorWhite)
			default:
				return lipgloss.NewStyle().Foreground(colorGray)
			}
		}).
		Render()
}

// lifespan formats birth and death years as "1920–1990", "b. 1920" or "".
func lifespan(p family.Person) string {
	born, died := year(p.BirthDate), year(p.DeathDate)
	switch {
	case born != "" && died != "":
		return born + "–" + died
	case born != "":
		return "b. " + born
	case died != "":
		return "d. " + died
	default:
		return ""
	}
}

func year(date string) string {
	if len(date) >= 4 {
		return date[:4]
	}
	return date
}

func formatEvent(date, place string) string {
	switch {
	case date != "" && place != "":
		return date + StyleDim.Render(" · ") + place
	case date != "":
		return date
	default:
		return place
	}
}

func personRef(p family.Person) string {
	return p.FullName() + StyleDim.Render(" ("+p.ID+")")
}

func joinRefs(people []family.Person) string {
	refs := make([]string, len(people))
	for i, p := range people {
		refs[i] = personRef(p)
	}
	return strings.Join(refs, ", ")
}

// =============================================================================
// Commands & Next Steps
// =============================================================================

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}
