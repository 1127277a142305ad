package openalex

import "encoding/json"

// SearchResponse is the OpenAlex /works search response envelope.
type SearchResponse struct {
	Meta    Meta   `json:"meta"`
	Results []Work `json:"results"`
}

// Meta carries result counts and the opaque continuation cursor.
// NextCursor is empty when the result set is exhausted.
type Meta struct {
	Count      int    `json:"count"`
	NextCursor string `json:"next_cursor"`
}

// Work is a discovered-work record as returned by OpenAlex.
type Work struct {
	ID                    string           `json:"id"`
	DOI                   string           `json:"doi"`
	Title                 string           `json:"title"`
	Authorships           []Authorship     `json:"authorships"`
	CitedByCount          int              `json:"cited_by_count"`
	PublicationYear       int              `json:"publication_year"`
	OpenAccess            *OpenAccess      `json:"open_access"`
	AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index"`
	HostVenue             *HostVenue       `json:"host_venue"`
}

// Authorship links a work to one author.
type Authorship struct {
	Author *Author `json:"author"`
}

// Author holds the display name of a work author.
type Author struct {
	DisplayName string `json:"display_name"`
}

// OpenAccess describes the open-access state of a work.
type OpenAccess struct {
	IsOA  bool   `json:"is_oa"`
	OAURL string `json:"oa_url"`
}

// HostVenue describes the venue hosting a work, including fallback ISSN
// candidates used when the secondary source yields none. ISSNL is the
// linking ISSN.
type HostVenue struct {
	DisplayName string     `json:"display_name"`
	ISSN        StringList `json:"issn"`
	ISSNL       string     `json:"issn_l"`
}

// AuthorNames extracts the ordered author display names of a work,
// skipping authorships without an author record.
func (w *Work) AuthorNames() []string {
	names := make([]string, 0, len(w.Authorships))
	for _, a := range w.Authorships {
		if a.Author != nil && a.Author.DisplayName != "" {
			names = append(names, a.Author.DisplayName)
		}
	}
	return names
}

// StringList decodes a JSON value that is either a single string or a list
// of strings. OpenAlex has been observed returning both shapes for
// host_venue.issn.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *StringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*s = StringList{single}
	return nil
}
