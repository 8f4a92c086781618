package usecase

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	hrefRe      = regexp.MustCompile(`href="(https?://[^"]+)"`)
	bodyCloseRe = regexp.MustCompile(`(?i)</body>`)
)

// LinkInstrumenter rewrites outbound HTML so that opens and clicks flow
// through the tracking endpoints of this service.
type LinkInstrumenter struct {
	baseURL string
}

func NewLinkInstrumenter(baseURL string) *LinkInstrumenter {
	return &LinkInstrumenter{baseURL: strings.TrimRight(baseURL, "/")}
}

// Instrument wraps every absolute link through the click-redirect endpoint
// and appends the tracking pixel for deliveryID. The pixel lands right
// before </body> when the document has one, otherwise at the end.
func (li *LinkInstrumenter) Instrument(html []byte, deliveryID string) []byte {
	out := hrefRe.ReplaceAllStringFunc(string(html), func(m string) string {
		target := hrefRe.FindStringSubmatch(m)[1]
		return fmt.Sprintf(`href="%s/tracking/link/%s?url=%s"`, li.baseURL, deliveryID, url.QueryEscape(target))
	})

	pixel := fmt.Sprintf(`<img src="%s/tracking/pixel/%s" width="1" height="1" alt="" style="display:none">`, li.baseURL, deliveryID)
	if locs := bodyCloseRe.FindAllStringIndex(out, -1); len(locs) > 0 {
		idx := locs[len(locs)-1][0]
		out = out[:idx] + pixel + out[idx:]
	} else {
		out += pixel
	}
	return []byte(out)
}
