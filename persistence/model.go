package persistence

type UserRecord struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
	Nickname string `json:"userNickname"`
}

type MessageRecord struct {
	LocationName          string   `json:"locationName"`
	LocationDescription   string   `json:"locationDescription"`
	LocationCity          string   `json:"locationCity"`
	LocationCountry       string   `json:"locationCountry"`
	LocationStreetAddress string   `json:"locationStreetAddress"`
	OriginalPoster        string   `json:"originalPoster,omitempty"`
	OriginalPostingTime   string   `json:"originalPostingTime"`
	Latitude              *float64 `json:"latitude,omitempty"`
	Longitude             *float64 `json:"longitude,omitempty"`
	Weather               string   `json:"weather,omitempty"`
}

// HasCoordinates reports whether the message carries a full coordinate pair.
// A single coordinate on its own counts as no coordinates at all.
func (m *MessageRecord) HasCoordinates() bool {
	return m.Latitude != nil && m.Longitude != nil
}
