package artifact

import (
	"fmt"
	"regexp"
	"time"

	"github.com/encartelab/flyer-tracker/constants"
)

var reNonDigits = regexp.MustCompile(`[^0-9]`)

// ObjectPath builds the storage path for one flyer image:
// {prefix}/encarte-{digits of contact}-{unix nanos}.{ext}. The shape is
// deterministic but the nanosecond timestamp keeps concurrent submissions
// from the same sender on distinct paths.
func ObjectPath(prefix, sourceContact, mimeType string, now time.Time) string {
	digits := reNonDigits.ReplaceAllString(sourceContact, "")
	ext := constants.ExtForMIME(mimeType)
	return fmt.Sprintf("%s/encarte-%s-%d.%s", prefix, digits, now.UnixNano(), ext)
}
