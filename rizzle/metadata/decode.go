package metadata

import (
	"bytes"
	"encoding/hex"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"github.com/rizzle-org/rizzle-golang/rizzle/errs"
)

// flexUint accepts a JSON number or a string holding one; the gateway uses both for identifiers.
type flexUint uint64

func (f *flexUint) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}

	v, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return errors.Errorf("not an unsigned integer: %q", data)
	}
	*f = flexUint(v)
	return nil
}

type rawPage[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

type rawArtist struct {
	ID      *flexUint `json:"ART_ID"`
	Name    *string   `json:"ART_NAME"`
	Picture string    `json:"ART_PICTURE"`
}

type rawAlbum struct {
	ID         *flexUint `json:"ALB_ID"`
	Title      *string   `json:"ALB_TITLE"`
	Cover      string    `json:"ALB_PICTURE"`
	ArtistName string    `json:"ART_NAME"`
}

type rawPlaylist struct {
	ID     *flexUint `json:"PLAYLIST_ID"`
	Title  *string   `json:"TITLE"`
	Tracks flexUint  `json:"NB_SONG"`
}

type rawTrack struct {
	ID         *flexUint   `json:"SNG_ID"`
	Title      *string     `json:"SNG_TITLE"`
	Version    string      `json:"VERSION"`
	Duration   flexUint    `json:"DURATION"`
	Artists    []rawArtist `json:"ARTISTS"`
	ArtistID   flexUint    `json:"ART_ID"`
	ArtistName string      `json:"ART_NAME"`
	AlbumID    flexUint    `json:"ALB_ID"`
	AlbumTitle string      `json:"ALB_TITLE"`
	AlbumCover string      `json:"ALB_PICTURE"`
}

type rawTrackDetails struct {
	ID           *flexUint `json:"SNG_ID"`
	Title        string    `json:"SNG_TITLE"`
	ArtistName   string    `json:"ART_NAME"`
	AlbumTitle   string    `json:"ALB_TITLE"`
	Duration     flexUint  `json:"DURATION"`
	MD5Origin    *string   `json:"MD5_ORIGIN"`
	MediaVersion *flexUint `json:"MEDIA_VERSION"`
}

type rawUserData struct {
	CheckForm *string `json:"checkForm"`
	User      *struct {
		ID      *flexUint `json:"USER_ID"`
		Name    string    `json:"BLOG_NAME"`
		Options *struct {
			LicenseToken *string `json:"license_token"`
		} `json:"OPTIONS"`
	} `json:"USER"`
}

type rawSearch struct {
	Query        string                `json:"QUERY"`
	Autocorrect  bool                  `json:"AUTOCORRECT"`
	RevisedQuery string                `json:"REVISED_QUERY"`
	TopResult    []rawArtist           `json:"TOP_RESULT"`
	Tracks       *rawPage[rawTrack]    `json:"TRACK"`
	Artists      *rawPage[rawArtist]   `json:"ARTIST"`
	Albums       *rawPage[rawAlbum]    `json:"ALBUM"`
	Playlists    *rawPage[rawPlaylist] `json:"PLAYLIST"`
}

func unmarshal(op string, data []byte, v interface{}) error {
	if err := sonic.ConfigStd.Unmarshal(data, v); err != nil {
		return errs.Wrap(errs.Schema, op, err)
	}
	return nil
}

func (r *rawArtist) decode(op string) (Artist, error) {
	if r.ID == nil || r.Name == nil {
		return Artist{}, errs.New(errs.Schema, op, "artist without ART_ID or ART_NAME")
	}
	return Artist{ID: uint64(*r.ID), Name: *r.Name, Picture: r.Picture}, nil
}

func (r *rawAlbum) decode(op string) (Album, error) {
	if r.ID == nil || r.Title == nil {
		return Album{}, errs.New(errs.Schema, op, "album without ALB_ID or ALB_TITLE")
	}
	return Album{ID: uint64(*r.ID), Title: *r.Title, ArtistName: r.ArtistName, Cover: r.Cover}, nil
}

func (r *rawPlaylist) decode(op string) (Playlist, error) {
	if r.ID == nil || r.Title == nil {
		return Playlist{}, errs.New(errs.Schema, op, "playlist without PLAYLIST_ID or TITLE")
	}
	return Playlist{ID: uint64(*r.ID), Title: *r.Title, Tracks: int(r.Tracks)}, nil
}

func (r *rawTrack) decode(op string) (Track, error) {
	if r.ID == nil || r.Title == nil {
		return Track{}, errs.New(errs.Schema, op, "track without SNG_ID or SNG_TITLE")
	}

	track := Track{
		ID:       uint64(*r.ID),
		Title:    *r.Title,
		Version:  r.Version,
		Duration: int(r.Duration),
		Album: Album{
			ID:         uint64(r.AlbumID),
			Title:      r.AlbumTitle,
			ArtistName: r.ArtistName,
			Cover:      r.AlbumCover,
		},
	}

	for i := range r.Artists {
		artist, err := r.Artists[i].decode(op)
		if err != nil {
			return Track{}, err
		}
		track.Artists = append(track.Artists, artist)
	}
	// Older pages only carry the main artist inline
	if len(track.Artists) == 0 && r.ArtistName != "" {
		track.Artists = []Artist{{ID: uint64(r.ArtistID), Name: r.ArtistName}}
	}

	return track, nil
}

func decodeList[R any, T any](op string, raw []R, decode func(*R, string) (T, error)) ([]T, error) {
	out := make([]T, 0, len(raw))
	for i := range raw {
		v, err := decode(&raw[i], op)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// DecodeUserData decodes the results of deezer.getUserData. The license token is only required for a signed in
// user; an anonymous answer (UserID zero) carries none.
func DecodeUserData(results []byte) (*UserData, error) {
	const op = "deezer.getUserData"

	raw := rawUserData{}
	if err := unmarshal(op, results, &raw); err != nil {
		return nil, err
	}

	if raw.CheckForm == nil || *raw.CheckForm == "" {
		return nil, errs.New(errs.Schema, op, "missing checkForm")
	}
	if raw.User == nil || raw.User.ID == nil {
		return nil, errs.New(errs.Schema, op, "missing USER.USER_ID")
	}

	data := &UserData{
		UserID:    uint64(*raw.User.ID),
		Name:      raw.User.Name,
		CheckForm: *raw.CheckForm,
	}

	if data.UserID != 0 {
		if raw.User.Options == nil || raw.User.Options.LicenseToken == nil {
			return nil, errs.New(errs.Schema, op, "missing USER.OPTIONS.license_token")
		}
		data.LicenseToken = *raw.User.Options.LicenseToken
	}

	return data, nil
}

// DecodeSearch decodes the results of deezer.pageSearch.
func DecodeSearch(results []byte) (*SearchResult, error) {
	const op = "deezer.pageSearch"

	raw := rawSearch{}
	if err := unmarshal(op, results, &raw); err != nil {
		return nil, err
	}

	if raw.Tracks == nil || raw.Artists == nil {
		return nil, errs.New(errs.Schema, op, "missing TRACK or ARTIST section")
	}

	result := &SearchResult{Query: raw.Query}
	if raw.Autocorrect {
		result.Corrected = raw.RevisedQuery
	}

	// The top result is not always an artist; anything else is left out
	if len(raw.TopResult) > 0 && raw.TopResult[0].ID != nil {
		top, err := raw.TopResult[0].decode(op)
		if err != nil {
			return nil, err
		}
		result.Top = &top
	}

	var err error
	if result.Tracks, err = decodeList(op, raw.Tracks.Data, (*rawTrack).decode); err != nil {
		return nil, err
	}
	if result.Artists, err = decodeList(op, raw.Artists.Data, (*rawArtist).decode); err != nil {
		return nil, err
	}
	if raw.Albums != nil {
		if result.Albums, err = decodeList(op, raw.Albums.Data, (*rawAlbum).decode); err != nil {
			return nil, err
		}
	}
	if raw.Playlists != nil {
		if result.Playlists, err = decodeList(op, raw.Playlists.Data, (*rawPlaylist).decode); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// DecodeTrackDetails decodes the first entry of the results of song.getListData.
func DecodeTrackDetails(results []byte) (*TrackDetails, error) {
	const op = "song.getListData"

	raw := struct {
		Data []rawTrackDetails `json:"data"`
	}{}
	if err := unmarshal(op, results, &raw); err != nil {
		return nil, err
	}
	if len(raw.Data) == 0 {
		return nil, errs.New(errs.Schema, op, "empty data")
	}

	d := &raw.Data[0]
	if d.ID == nil || *d.ID == 0 {
		return nil, errs.New(errs.Schema, op, "missing SNG_ID")
	}
	if d.MD5Origin == nil || !isMD5Hex(*d.MD5Origin) {
		return nil, errs.New(errs.Schema, op, "missing or malformed MD5_ORIGIN")
	}
	if d.MediaVersion == nil {
		return nil, errs.New(errs.Schema, op, "missing MEDIA_VERSION")
	}

	return &TrackDetails{
		ID:           uint64(*d.ID),
		Title:        d.Title,
		ArtistName:   d.ArtistName,
		AlbumTitle:   d.AlbumTitle,
		Duration:     int(d.Duration),
		MD5Origin:    *d.MD5Origin,
		MediaVersion: uint64(*d.MediaVersion),
	}, nil
}

// DecodeArtistDetails decodes the results of deezer.pageArtist.
func DecodeArtistDetails(results []byte) (*ArtistDetails, error) {
	const op = "deezer.pageArtist"

	raw := struct {
		Data   *rawArtist         `json:"DATA"`
		Top    *rawPage[rawTrack] `json:"TOP"`
		Albums *rawPage[rawAlbum] `json:"ALBUMS"`
	}{}
	if err := unmarshal(op, results, &raw); err != nil {
		return nil, err
	}
	if raw.Data == nil || raw.Top == nil {
		return nil, errs.New(errs.Schema, op, "missing DATA or TOP section")
	}

	artist, err := raw.Data.decode(op)
	if err != nil {
		return nil, err
	}
	details := &ArtistDetails{Artist: artist}

	if details.TopTracks, err = decodeList(op, raw.Top.Data, (*rawTrack).decode); err != nil {
		return nil, err
	}
	if raw.Albums != nil {
		if details.Albums, err = decodeList(op, raw.Albums.Data, (*rawAlbum).decode); err != nil {
			return nil, err
		}
	}

	return details, nil
}

// DecodeAlbumDetails decodes the results of deezer.pageAlbum.
func DecodeAlbumDetails(results []byte) (*AlbumDetails, error) {
	const op = "deezer.pageAlbum"

	raw := struct {
		Data  *rawAlbum          `json:"DATA"`
		Songs *rawPage[rawTrack] `json:"SONGS"`
	}{}
	if err := unmarshal(op, results, &raw); err != nil {
		return nil, err
	}
	if raw.Data == nil || raw.Songs == nil {
		return nil, errs.New(errs.Schema, op, "missing DATA or SONGS section")
	}

	album, err := raw.Data.decode(op)
	if err != nil {
		return nil, err
	}
	tracks, err := decodeList(op, raw.Songs.Data, (*rawTrack).decode)
	if err != nil {
		return nil, err
	}

	return &AlbumDetails{Album: album, Tracks: tracks}, nil
}

// DecodePlaylistDetails decodes the results of deezer.pagePlaylist.
func DecodePlaylistDetails(results []byte) (*PlaylistDetails, error) {
	const op = "deezer.pagePlaylist"

	raw := struct {
		Data  *rawPlaylist       `json:"DATA"`
		Songs *rawPage[rawTrack] `json:"SONGS"`
	}{}
	if err := unmarshal(op, results, &raw); err != nil {
		return nil, err
	}
	if raw.Data == nil || raw.Songs == nil {
		return nil, errs.New(errs.Schema, op, "missing DATA or SONGS section")
	}

	playlist, err := raw.Data.decode(op)
	if err != nil {
		return nil, err
	}
	tracks, err := decodeList(op, raw.Songs.Data, (*rawTrack).decode)
	if err != nil {
		return nil, err
	}

	return &PlaylistDetails{Playlist: playlist, Tracks: tracks}, nil
}

func isMD5Hex(s string) bool {
	if len(s) != 32 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
