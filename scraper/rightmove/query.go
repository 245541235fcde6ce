package rightmove

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// DefaultSearchPath is the results page a search URL is built on.
const DefaultSearchPath = "https://www.rightmove.co.uk/property-for-sale/find.html"

// newestListedSort is the sortType value for most recently listed first.
const newestListedSort = "6"

// Query is a structured property search.
type Query struct {
	Location      string
	MinBeds       *int
	MaxBeds       *int
	MinPrice      *int
	MaxPrice      *int
	PropertyTypes []string
}

// BuildSearchURL serialises q for the resolved locationID. Parameters are
// emitted in lexicographic key order, and the sort and empty-valued filter
// parameters are always present, so equal queries give equal URLs.
func BuildSearchURL(searchPath, locationID string, q Query) string {
	if searchPath == "" {
		searchPath = DefaultSearchPath
	}

	types := make([]string, 0, len(q.PropertyTypes))
	for _, t := range q.PropertyTypes {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}
	sort.Strings(types)

	v := url.Values{}
	v.Set("locationIdentifier", locationID)
	v.Set("sortType", newestListedSort)
	v.Set("propertyTypes", strings.Join(types, ","))
	v.Set("includeSSTC", "false")
	v.Set("mustHave", "")
	v.Set("dontShow", "")
	v.Set("furnishTypes", "")
	v.Set("keywords", "")
	setInt(v, "minBedrooms", q.MinBeds)
	setInt(v, "maxBedrooms", q.MaxBeds)
	setInt(v, "minPrice", q.MinPrice)
	setInt(v, "maxPrice", q.MaxPrice)

	return searchPath + "?" + v.Encode()
}

func setInt(v url.Values, key string, n *int) {
	if n != nil {
		v.Set(key, strconv.Itoa(*n))
	}
}
