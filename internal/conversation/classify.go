package conversation

import "regexp"

var (
	timePattern = regexp.MustCompile(`\d{1,2}[.:-]\d{2}(?:\s?[APMapm]{2})?`)
	datePattern = regexp.MustCompile(`\d{1,2}(?:st|nd|rd|th)?\s+\w+\s+\d{4}`)
)

// Line is a cleaned line together with the tokens found in it
type Line struct {
	Text string // Clean(raw)
	Time string // first timestamp match, verbatim
	Date string // first date match, verbatim
}

// HasTime reports whether a timestamp was found
func (l Line) HasTime() bool { return l.Time != "" }

// HasDate reports whether a date was found
func (l Line) HasDate() bool { return l.Date != "" }

// Classify cleans a raw line and searches it for a timestamp and a date. The
// two searches are independent and both may succeed on the same line. The
// timestamp search runs on the cleaned text with ':' retained, since Clean
// would otherwise turn "14:30" into "1430".
func Classify(raw string) Line {
	text := Clean(raw)
	return Line{
		Text: text,
		Time: timePattern.FindString(timeView(raw)),
		Date: datePattern.FindString(text),
	}
}
