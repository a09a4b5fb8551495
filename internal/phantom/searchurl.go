package phantom

import (
	"fmt"
	"net/url"
)

// BuildSearchURL returns the LinkedIn people-search URL the agent is pointed
// at for one title/company pair. The company is wrapped in quotes so the
// search treats it as an exact token.
func BuildSearchURL(title, company string) string {
	q := url.Values{}
	q.Set("keywords", fmt.Sprintf("%s %q", title, company))
	return "https://www.linkedin.com/search/results/people/?" + q.Encode()
}
