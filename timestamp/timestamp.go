//Package timestamp converts posting times between their storage format
//(epoch milliseconds) and their wire format, e.g. "2020-12-21T07:57:47.123Z".
package timestamp

import "time"

//Layout is the wire format for posting times
const Layout = "2006-01-02T15:04:05.000Z07:00"

//ToString formats an epoch-millisecond timestamp for the wire
func ToString(epochMillis int64) string {
	return time.UnixMilli(epochMillis).UTC().Format(Layout)
}

//ToMillis parses a wire timestamp back into epoch milliseconds
func ToMillis(value string) (int64, error) {
	t, err := time.Parse(Layout, value)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}
