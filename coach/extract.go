// ABOUTME: Calendar action extraction from model-generated reply text
// ABOUTME: Parses the first fenced json block into a validated CalendarAction
package coach

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/harperreed/mindcoach/models"
)

// ExtractStatus is the outcome of scanning a reply for a calendar action.
// Extraction is advisory: both ExtractNone and ExtractInvalid mean "no intent
// present" to the caller, the distinction exists for tests and logging.
type ExtractStatus int

const (
	// ExtractNone means the reply carried no fenced json block.
	ExtractNone ExtractStatus = iota
	// ExtractInvalid means a block was found but was not a valid action.
	ExtractInvalid
	// ExtractOK means a complete create_event action was parsed.
	ExtractOK
)

// actionBlockPattern matches a ```json fenced block. The model is instructed
// to emit at most one; only the first match is considered.
var actionBlockPattern = regexp.MustCompile("(?s)```json\\s*\\n(.*?)\\n\\s*```")

// ExtractAction scans reply text for an embedded calendar action. A populated
// action is returned only when the block decodes cleanly, is tagged
// create_event, and carries summary, date, and time. Duration stays as-is
// here; the default is applied at the point of use.
func ExtractAction(reply string) (models.CalendarAction, ExtractStatus) {
	match := actionBlockPattern.FindStringSubmatch(reply)
	if match == nil {
		return models.CalendarAction{}, ExtractNone
	}

	var action models.CalendarAction
	if err := json.Unmarshal([]byte(match[1]), &action); err != nil {
		return models.CalendarAction{}, ExtractInvalid
	}

	if action.Action != models.ActionCreateEvent || action.Summary == "" || action.Date == "" || action.Time == "" {
		return models.CalendarAction{}, ExtractInvalid
	}

	return action, ExtractOK
}

// StripActionBlocks removes every fenced json block from the reply so the
// user sees prose only.
func StripActionBlocks(reply string) string {
	return strings.TrimSpace(actionBlockPattern.ReplaceAllString(reply, ""))
}
