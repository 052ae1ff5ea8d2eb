package common

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/thrasher-corp/barsim/log"
)

// String implements the stringer interface
func (p Phase) String() string {
	switch p {
	case Open:
		return "open"
	case Close:
		return "close"
	default:
		return "unknown"
	}
}

// Valid reports whether p is open or close
func (p Phase) Valid() bool {
	return p == Open || p == Close
}

// ParsePhase converts "open" or "close" into a Phase
func ParsePhase(s string) (Phase, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "open", "begin":
		return Open, nil
	case "close", "end":
		return Close, nil
	default:
		return 0, fmt.Errorf("%w '%v'", ErrInvalidPhase, s)
	}
}

// RegisterBacktesterSubLoggers sets up all custom Backtester sub-loggers
func RegisterBacktesterSubLoggers() error {
	var err error
	for k := range SubLoggers {
		SubLoggers[k], err = log.NewSubLogger(k)
		if err != nil {
			return err
		}
	}
	return nil
}

// FitStringToLimit ensures a string is of the length of the limit
// either by truncating the string with ellipses or padding with the spacer
func FitStringToLimit(str, spacer string, limit int, upper bool) string {
	if limit < 0 {
		return str
	}
	if limit == 0 {
		return ""
	}
	limResp := str
	if upper {
		limResp = strings.ToUpper(limResp)
	}
	if len(limResp) > limit {
		if limit > 3 {
			return limResp[:limit-3] + "..."
		}
		return limResp[:limit]
	}
	if spacer == "" {
		spacer = " "
	}
	for len(limResp) < limit {
		limResp += spacer
	}
	return limResp[:limit]
}

// Logo returns the logo with the current colour scheme
func Logo() string {
	return CMDColours.H1 + ASCIILogo + CMDColours.Default
}

// PurgeColours removes colour information
func PurgeColours() {
	CMDColours = Colours{}
}

var fileNameSanitiser = regexp.MustCompile(`[^a-z0-9_]+`)

// GenerateFileName will convert a proposed filename into something that is more
// OS friendly
func GenerateFileName(fileName, extension string) (string, error) {
	if fileName == "" || extension == "" {
		return "", fmt.Errorf("%w missing filename or extension", errCannotGenerateFileName)
	}
	fileName = fileNameSanitiser.ReplaceAllString(strings.ToLower(fileName), "")
	extension = fileNameSanitiser.ReplaceAllString(strings.ToLower(extension), "")
	if fileName == "" || extension == "" {
		return "", fmt.Errorf("%w invalid characters", errCannotGenerateFileName)
	}
	return fileName + "." + extension, nil
}
