package source

// playlistHeaderResponse is the wire shape of a playlist header (without tracks).
type playlistHeaderResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	OwnerName       string `json:"owner_name"`
	SnapshotID      string `json:"snapshot_id"`
	Public          bool   `json:"public"`
	Collaborative   bool   `json:"collaborative"`
	TotalTrackCount int    `json:"total_track_count"`
}

// playlistTracksPageResponse is one page of a paginated playlist-items listing.
type playlistTracksPageResponse struct {
	Items []playlistItem `json:"items"`
	Total int            `json:"total"`
	Next  string         `json:"next"`
}

// playlistItem wraps one playlist slot; Track is nil when the platform has removed the item.
type playlistItem struct {
	AddedAt string      `json:"added_at"`
	Track   *trackStub  `json:"track"`
}

// trackStub is the minimal per-item track shape returned inline with playlist pages.
type trackStub struct {
	ID string `json:"id"`
}

// tracksMetadataResponse is the response of a batch track-metadata lookup.
type tracksMetadataResponse struct {
	Tracks []trackMetadata `json:"tracks"`
}

// trackMetadata is the full per-track metadata returned by a batch lookup.
type trackMetadata struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Artists     []string          `json:"artists"`
	DurationMs  int               `json:"duration_ms"`
	Explicit    bool              `json:"explicit"`
	TrackNumber int               `json:"track_number"`
	DiscNumber  int               `json:"disc_number"`
	ISRC        string            `json:"isrc"`
	Available   bool              `json:"available"`
	PreviewURL  string            `json:"preview_url"`
	Album       trackMetadataAlbum `json:"album"`
}

type trackMetadataAlbum struct {
	ID      string              `json:"id"`
	Name    string              `json:"name"`
	Artists []string            `json:"artists"`
	Genres  []string            `json:"genres"`
	Covers  []trackMetadataCover `json:"covers"`
	Release struct {
		Year  int `json:"year"`
		Month int `json:"month"`
		Day   int `json:"day"`
	} `json:"release_date"`
}

type trackMetadataCover struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}
