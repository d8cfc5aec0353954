package extract

import "github.com/PuerkitoBio/goquery"

// Locate tries each candidate selector in order against root and returns
// the first element that matches, along with the selector that won. A nil
// selection means no candidate matched; the caller decides whether that
// is a reportable failure.
func Locate(root *goquery.Selection, candidates ...string) (*goquery.Selection, string) {
	for _, candidate := range candidates {
		found := root.Find(candidate)
		if found.Length() > 0 {
			return found.First(), candidate
		}
	}
	return nil, ""
}

// LocateAll is Locate without narrowing to the first element: it returns
// every match of the first candidate that matches anything.
func LocateAll(root *goquery.Selection, candidates ...string) (*goquery.Selection, string) {
	for _, candidate := range candidates {
		found := root.Find(candidate)
		if found.Length() > 0 {
			return found, candidate
		}
	}
	return nil, ""
}
