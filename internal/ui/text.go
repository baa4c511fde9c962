package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// shortIDLen is how many fingerprint characters ShortID keeps.
const shortIDLen = 12

// Formatter renders one kind of CLI text. With color enabled it paints the
// text; otherwise it wraps it in the lead and trail markers.
type Formatter struct {
	color *color.Color
	lead  string
	trail string
}

func styled(attr color.Attribute, lead, trail string) Formatter {
	return Formatter{color: color.New(attr), lead: lead, trail: trail}
}

func (f Formatter) render(text string) string {
	if noColor() {
		return f.lead + text + f.trail
	}
	return f.color.Sprint(text)
}

// Sprint renders fmt.Sprint(a...).
func (f Formatter) Sprint(a ...interface{}) string {
	return f.render(fmt.Sprint(a...))
}

// Sprintf renders fmt.Sprintf(format, a...).
func (f Formatter) Sprintf(format string, a ...interface{}) string {
	return f.render(fmt.Sprintf(format, a...))
}

// ShortID trims a member fingerprint for display.
func ShortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

// noColor reports whether NO_COLOR is set or color has been turned off.
func noColor() bool {
	_, set := os.LookupEnv("NO_COLOR")
	return set || color.NoColor
}

var (
	// Code marks a command the user can run: `groupenc rotate`.
	Code = styled(color.FgYellow, "`", "`")
	// Path marks vault, key and config file locations.
	Path = styled(color.FgYellow, "", "")
	// Flag marks an option such as --confirm.
	Flag = styled(color.FgYellow, "", "")

	Success = styled(color.FgGreen, "", "")
	Error   = styled(color.FgRed, "", "")
	Warning = styled(color.FgYellow, "", "")
	Info    = styled(color.FgCyan, "", "")

	// Highlight marks secret names and fingerprints: 'db_password'.
	Highlight = styled(color.FgCyan, "'", "'")
	// Muted marks asides such as (you).
	Muted = styled(color.FgHiBlack, "(", ")")
)
