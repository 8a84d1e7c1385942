package metadata

type Artist struct {
	ID      uint64
	Name    string
	Picture string
}

type Album struct {
	ID         uint64
	Title      string
	ArtistName string
	Cover      string
}

type Playlist struct {
	ID     uint64
	Title  string
	Tracks int
}

// Track is a track row as returned by search and browse pages.
type Track struct {
	ID       uint64
	Title    string
	Version  string
	Duration int
	Artists  []Artist
	Album    Album
}

// TrackDetails is what it takes to locate and decrypt a track: the identifier, the origin content hash and the
// media version. Decoding guarantees MD5Origin is 32 hex characters.
type TrackDetails struct {
	ID           uint64
	Title        string
	ArtistName   string
	AlbumTitle   string
	Duration     int
	MD5Origin    string
	MediaVersion uint64
}

type SearchResult struct {
	Query string
	// Corrected holds the revised query when the server autocorrected the input
	Corrected string
	Top       *Artist
	Tracks    []Track
	Artists   []Artist
	Albums    []Album
	Playlists []Playlist
}

// UserData is the answer to the session initialization call.
type UserData struct {
	UserID       uint64
	Name         string
	CheckForm    string
	LicenseToken string
}

// Details is implemented by *ArtistDetails, *AlbumDetails and *PlaylistDetails.
type Details interface {
	details()
}

type ArtistDetails struct {
	Artist    Artist
	TopTracks []Track
	Albums    []Album
}

type AlbumDetails struct {
	Album  Album
	Tracks []Track
}

type PlaylistDetails struct {
	Playlist Playlist
	Tracks   []Track
}

func (*ArtistDetails) details()   {}
func (*AlbumDetails) details()    {}
func (*PlaylistDetails) details() {}

// Entity is something whose details page can be fetched: an Artist, an Album or a Playlist.
type Entity interface {
	// DetailsQuery returns the RPC method and request body of the details page
	DetailsQuery() (method string, body map[string]interface{})
	// DecodeDetails decodes the results of that RPC
	DecodeDetails(results []byte) (Details, error)
}
