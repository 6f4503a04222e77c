package callstate

import "strings"

// CallRoute is the dedicated full-screen call route.
const CallRoute = "/call"

// IndicatorVisible decides whether the floating minimized-call affordance is
// shown on the given route. It is a pure function; surfaces recompute it on
// every route change and on every store update.
func IndicatorVisible(route string, s Snapshot) bool {
	return s.InCall && route != CallRoute
}

// WidgetVisible decides whether the embedded vendor voice widget is shown on
// the given route. The root route matches exactly; every other allow-listed
// route matches by prefix.
func WidgetVisible(route string, allowed []string) bool {
	for _, a := range allowed {
		if a == "/" {
			if route == "/" {
				return true
			}
			continue
		}
		if strings.HasPrefix(route, a) {
			return true
		}
	}
	return false
}
